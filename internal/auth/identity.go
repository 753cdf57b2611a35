package auth

import (
	"context"

	"github.com/google/uuid"

	apperr "coursemarket/internal/errors"
)

// Kind tags which identity space a subject id belongs to.
type Kind string

const (
	KindAdmin Kind = "admin"
	KindUser  Kind = "user"
)

// Valid reports whether k is a known identity kind.
func (k Kind) Valid() bool {
	return k == KindAdmin || k == KindUser
}

// Identity is the authenticated caller resolved from a token.
type Identity struct {
	ID   uuid.UUID `json:"id"`
	Kind Kind      `json:"kind"`
}

// Require fails with ErrWrongIdentityKind unless the caller is of the given kind.
func (i Identity) Require(kind Kind) error {
	if i.Kind != kind || i.ID == uuid.Nil {
		return apperr.ErrWrongIdentityKind
	}
	return nil
}

type identityKey struct{}

// WithIdentity attaches the caller identity to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the caller identity attached by the guard, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
