package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DelegationStore caches the seller set a telemarketer may act for. A miss is
// reported through the boolean, not an error; errors are reserved for backend
// failures.
type DelegationStore interface {
	Get(ctx context.Context, telemarketerID uuid.UUID) ([]uuid.UUID, bool, error)
	Set(ctx context.Context, telemarketerID uuid.UUID, sellerIDs []uuid.UUID, ttl time.Duration) error
	Invalidate(ctx context.Context, telemarketerID uuid.UUID) error
}
