package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "coursemarket/internal/errors"
)

const testSecret = "test-secret-0123456789"

func TestJWTService_IssueVerifyRoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	for _, kind := range []Kind{KindAdmin, KindUser} {
		t.Run(string(kind), func(t *testing.T) {
			id := uuid.New()
			token, expiresAt, err := svc.IssueSession(id, kind)
			require.NoError(t, err)
			assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

			got, err := svc.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, Identity{ID: id, Kind: kind}, got)
		})
	}
}

func TestJWTService_DefaultSessionTTL(t *testing.T) {
	svc := NewJWTService(testSecret, 0)
	assert.Equal(t, 24*time.Hour, svc.SessionTTL())
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService(testSecret, SessionTokenExpiry)
	svc.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }

	token, _, err := svc.IssueSession(uuid.New(), KindUser)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, apperr.ErrTokenExpired)
	assert.NotErrorIs(t, err, apperr.ErrTokenInvalid)
}

func TestJWTService_Invalid(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	other := NewJWTService("another-secret-0123456789", time.Hour)

	foreign, _, err := other.IssueSession(uuid.New(), KindAdmin)
	require.NoError(t, err)

	valid, _, err := svc.IssueSession(uuid.New(), KindAdmin)
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	noKind := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	noKindToken, err := noKind.SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Kind:             KindUser,
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
	})
	noExpiryToken, err := noExpiry.SignedString([]byte(testSecret))
	require.NoError(t, err)

	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Kind: KindUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	badSubjectToken, err := badSubject.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.jwt"},
		{"empty", ""},
		{"wrong secret", foreign},
		{"tampered payload", tampered},
		{"missing kind", noKindToken},
		{"missing expiry", noExpiryToken},
		{"bad subject", badSubjectToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, apperr.ErrTokenInvalid)
		})
	}
}

func TestJWTService_IssueRejectsUnknownKind(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	_, _, err := svc.Issue(uuid.New(), Kind("root"), time.Hour)

	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
