package identity

import (
	"context"

	"github.com/google/uuid"
)

// AccessProvider supplies the current actor's role and, for telemarketers,
// the seller set they are delegated to act for. Implementations live in
// infrastructure; the engines only consume this port.
type AccessProvider interface {
	// ActorFor resolves a user ID to a fully populated Actor, including the
	// delegation set when the role is telemarketer.
	ActorFor(ctx context.Context, userID uuid.UUID) (Actor, error)

	// DelegatedSellers returns the seller IDs a telemarketer may act for
	DelegatedSellers(ctx context.Context, telemarketerID uuid.UUID) ([]uuid.UUID, error)
}
