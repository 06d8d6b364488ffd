package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisDelegationStore implements DelegationStore using Redis. Suitable for
// deployments where multiple instances share delegation state.
type RedisDelegationStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisDelegationStore creates a Redis-backed delegation store and verifies
// the connection.
func NewRedisDelegationStore(cfg config.RedisConfig) (*RedisDelegationStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisDelegationStore{
		client:    client,
		keyPrefix: "access:delegations:",
	}, nil
}

// NewRedisDelegationStoreWithClient creates a store with an existing client.
// Useful for testing or when sharing a client across components.
func NewRedisDelegationStoreWithClient(client *redis.Client, keyPrefix string) *RedisDelegationStore {
	if keyPrefix == "" {
		keyPrefix = "access:delegations:"
	}
	return &RedisDelegationStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached seller set for a telemarketer
func (s *RedisDelegationStore) Get(ctx context.Context, telemarketerID uuid.UUID) ([]uuid.UUID, bool, error) {
	raw, err := s.client.Get(ctx, s.keyPrefix+telemarketerID.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var sellerIDs []uuid.UUID
	if err := json.Unmarshal([]byte(raw), &sellerIDs); err != nil {
		// A corrupt entry behaves like a miss so the caller reloads it.
		return nil, false, nil
	}
	return sellerIDs, true, nil
}

// Set stores the seller set for a telemarketer with a TTL
func (s *RedisDelegationStore) Set(ctx context.Context, telemarketerID uuid.UUID, sellerIDs []uuid.UUID, ttl time.Duration) error {
	raw, err := json.Marshal(sellerIDs)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.keyPrefix+telemarketerID.String(), raw, ttl).Err()
}

// Invalidate drops the cached seller set for a telemarketer
func (s *RedisDelegationStore) Invalidate(ctx context.Context, telemarketerID uuid.UUID) error {
	return s.client.Del(ctx, s.keyPrefix+telemarketerID.String()).Err()
}

// Close closes the underlying Redis client
func (s *RedisDelegationStore) Close() error {
	return s.client.Close()
}
