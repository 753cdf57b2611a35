package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	apperr "coursemarket/internal/errors"
)

// SessionTokenExpiry is the default lifetime of a login token.
const SessionTokenExpiry = 24 * time.Hour

// Claims represents JWT claims. Subject holds the identity id.
type Claims struct {
	Kind Kind `json:"kind"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies signed, time-bound identity tokens.
type JWTService struct {
	secret     []byte
	sessionTTL time.Duration
	now        func() time.Time
}

// NewJWTService creates a new JWT service with the given secret and session lifetime.
func NewJWTService(secret string, sessionTTL time.Duration) *JWTService {
	if sessionTTL <= 0 {
		sessionTTL = SessionTokenExpiry
	}
	return &JWTService{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// SessionTTL returns the lifetime used by IssueSession.
func (s *JWTService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Issue signs a token for subjectID of the given kind, expiring at now+ttl.
func (s *JWTService) Issue(subjectID uuid.UUID, kind Kind, ttl time.Duration) (string, time.Time, error) {
	if !kind.Valid() {
		return "", time.Time{}, apperr.Internal("issue token", fmt.Errorf("unknown identity kind %q", kind))
	}
	now := s.now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subjectID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, apperr.Internal("sign token", err)
	}
	return signed, expiresAt, nil
}

// IssueSession issues a token with the configured session lifetime.
func (s *JWTService) IssueSession(subjectID uuid.UUID, kind Kind) (string, time.Time, error) {
	return s.Issue(subjectID, kind, s.sessionTTL)
}

// Verify validates a token and returns the identity it encodes. Expired tokens
// fail with ErrTokenExpired; anything else wrong fails with ErrTokenInvalid.
func (s *JWTService) Verify(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, apperr.ErrTokenExpired.Wrap(err)
		}
		return Identity{}, apperr.ErrTokenInvalid.Wrap(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, apperr.ErrTokenInvalid
	}
	if claims.ExpiresAt == nil {
		return Identity{}, apperr.ErrTokenInvalid.Wrap(errors.New("token has no expiry"))
	}
	if !claims.Kind.Valid() {
		return Identity{}, apperr.ErrTokenInvalid.Wrap(fmt.Errorf("unknown identity kind %q", claims.Kind))
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, apperr.ErrTokenInvalid.Wrap(err)
	}

	return Identity{ID: id, Kind: claims.Kind}, nil
}
