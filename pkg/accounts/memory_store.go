package accounts

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of the Store interface.
// Suitable for development and testing.
type MemoryStore struct {
	accounts map[uuid.UUID]Account
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[uuid.UUID]Account)}
}

func (s *MemoryStore) Get(_ context.Context, contractorID uuid.UUID) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[contractorID]
	if !ok {
		return nil, ErrContractorNotFound
	}
	// Return a copy to prevent external mutation of stored data.
	out := acc
	return &out, nil
}

// Put creates or replaces an account record.
func (s *MemoryStore) Put(_ context.Context, acc Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[acc.ID] = acc
	return nil
}
