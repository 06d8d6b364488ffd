package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type delegationEntry struct {
	sellerIDs []uuid.UUID
	expiresAt time.Time
}

// InMemoryDelegationStore implements DelegationStore using an in-memory map.
// Suitable for single-instance deployments and testing.
type InMemoryDelegationStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]delegationEntry
}

// NewInMemoryDelegationStore creates a new in-memory delegation store
func NewInMemoryDelegationStore() *InMemoryDelegationStore {
	return &InMemoryDelegationStore{
		entries: make(map[uuid.UUID]delegationEntry),
	}
}

// Get returns the cached seller set for a telemarketer
func (s *InMemoryDelegationStore) Get(_ context.Context, telemarketerID uuid.UUID) ([]uuid.UUID, bool, error) {
	s.mu.RLock()
	entry, exists := s.entries[telemarketerID]
	s.mu.RUnlock()

	if !exists || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.sellerIDs, true, nil
}

// Set stores the seller set for a telemarketer with a TTL
func (s *InMemoryDelegationStore) Set(_ context.Context, telemarketerID uuid.UUID, sellerIDs []uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[telemarketerID] = delegationEntry{
		sellerIDs: sellerIDs,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Invalidate drops the cached seller set for a telemarketer
func (s *InMemoryDelegationStore) Invalidate(_ context.Context, telemarketerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, telemarketerID)
	return nil
}
