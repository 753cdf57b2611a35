package auth

import (
	"strings"

	apperr "coursemarket/internal/errors"
)

const bearerScheme = "Bearer"

// TokenVerifier verifies a raw token into an identity.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// Guard gates requests on a bearer token of a required identity kind.
type Guard struct {
	tokens TokenVerifier
}

// NewGuard creates a guard backed by tokens.
func NewGuard(tokens TokenVerifier) *Guard {
	return &Guard{tokens: tokens}
}

// Authenticate resolves the caller from a raw Authorization header value of
// the form "Bearer <token>" and requires the given kind.
func (g *Guard) Authenticate(header string, kind Kind) (Identity, error) {
	token, err := ExtractBearer(header)
	if err != nil {
		return Identity{}, err
	}
	return g.AuthenticateToken(token, kind)
}

// AuthenticateToken verifies an already extracted token and requires the given kind.
// An empty kind accepts either identity space.
func (g *Guard) AuthenticateToken(token string, kind Kind) (Identity, error) {
	if token == "" {
		return Identity{}, apperr.ErrMissingToken
	}
	id, err := g.tokens.Verify(token)
	if err != nil {
		return Identity{}, err
	}
	if kind != "" {
		if err := id.Require(kind); err != nil {
			return Identity{}, err
		}
	}
	return id, nil
}

// ExtractBearer returns the token from a "Bearer <token>" header value.
func ExtractBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", apperr.ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", apperr.ErrTokenInvalid
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperr.ErrMissingToken
	}
	return token, nil
}
