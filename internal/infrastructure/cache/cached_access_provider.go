package cache

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDelegationTTL bounds how stale a cached delegation set may be.
const DefaultDelegationTTL = 5 * time.Minute

// CachedAccessProvider decorates an identity.AccessProvider with a delegation
// cache. Role resolution always hits the source; only the delegation lookup,
// which runs on every telemarketer request, is cached.
type CachedAccessProvider struct {
	source identity.AccessProvider
	store  DelegationStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedAccessProvider creates a caching decorator around source
func NewCachedAccessProvider(source identity.AccessProvider, store DelegationStore, ttl time.Duration, logger *zap.Logger) *CachedAccessProvider {
	if ttl <= 0 {
		ttl = DefaultDelegationTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedAccessProvider{
		source: source,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// ActorFor resolves a user ID to an Actor, serving the delegation set from
// cache when possible.
func (p *CachedAccessProvider) ActorFor(ctx context.Context, userID uuid.UUID) (identity.Actor, error) {
	actor, err := p.source.ActorFor(ctx, userID)
	if err != nil {
		return identity.Actor{}, err
	}
	if actor.Role != identity.RoleTelemarketer {
		return actor, nil
	}

	sellers, err := p.DelegatedSellers(ctx, userID)
	if err != nil {
		return identity.Actor{}, err
	}
	return actor.WithDelegations(sellers), nil
}

// DelegatedSellers returns the seller IDs a telemarketer may act for,
// consulting the cache first.
func (p *CachedAccessProvider) DelegatedSellers(ctx context.Context, telemarketerID uuid.UUID) ([]uuid.UUID, error) {
	cached, hit, err := p.store.Get(ctx, telemarketerID)
	if err != nil {
		p.logger.Warn("delegation cache read failed",
			zap.String("telemarketer_id", telemarketerID.String()),
			zap.Error(err))
	} else if hit {
		return cached, nil
	}

	sellers, err := p.source.DelegatedSellers(ctx, telemarketerID)
	if err != nil {
		return nil, err
	}

	if err := p.store.Set(ctx, telemarketerID, sellers, p.ttl); err != nil {
		p.logger.Warn("delegation cache write failed",
			zap.String("telemarketer_id", telemarketerID.String()),
			zap.Error(err))
	}
	return sellers, nil
}

// Invalidate drops the cached delegation set after an assignment change
func (p *CachedAccessProvider) Invalidate(ctx context.Context, telemarketerID uuid.UUID) error {
	return p.store.Invalidate(ctx, telemarketerID)
}
