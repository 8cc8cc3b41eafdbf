package notifications

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of the Store interface.
// Suitable for development and testing.
type MemoryStore struct {
	notifications map[uuid.UUID][]Notification // contractorID -> notifications
	mu            sync.RWMutex
}

// NewMemoryStore creates a new in-memory notification store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notifications: make(map[uuid.UUID][]Notification)}
}

func (s *MemoryStore) Create(_ context.Context, notif Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notif.ID == "" {
		return errors.New("notification ID is required")
	}
	if notif.ContractorID == uuid.Nil {
		return errors.New("contractor ID is required")
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}

	s.notifications[notif.ContractorID] = append(s.notifications[notif.ContractorID], notif)
	return nil
}

func (s *MemoryStore) List(_ context.Context, contractorID uuid.UUID, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Notification
	for _, n := range s.notifications[contractorID] {
		if n.Archived {
			continue
		}
		if opts.OnlyUnread && n.Read {
			continue
		}
		filtered = append(filtered, n)
	}

	slices.SortFunc(filtered, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(filtered) {
			return []Notification{}, nil
		}
		filtered = filtered[opts.Offset:]
	}
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered, nil
}

func (s *MemoryStore) MarkRead(_ context.Context, contractorID uuid.UUID, notifIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.notifications[contractorID]
	for i := range list {
		if slices.Contains(notifIDs, list[i].ID) && !list[i].Read {
			list[i].MarkAsRead()
		}
	}
	return nil
}

func (s *MemoryStore) CountUnread(_ context.Context, contractorID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, n := range s.notifications[contractorID] {
		if !n.Read && !n.Archived {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CountOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, list := range s.notifications {
		for _, n := range list {
			if !n.Archived && n.CreatedAt.Before(cutoff) {
				count++
			}
		}
	}
	return count, nil
}

func (s *MemoryStore) MarkArchivedOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var archived int64
	for id, list := range s.notifications {
		for i := range list {
			if !list[i].Archived && list[i].CreatedAt.Before(cutoff) {
				list[i].Archived = true
				at := now
				list[i].ArchivedAt = &at
				archived++
			}
		}
		s.notifications[id] = list
	}
	return archived, nil
}

func (s *MemoryStore) DeleteReadOlderThan(_ context.Context, cutoff time.Time, limit int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, list := range s.notifications {
		kept := list[:0]
		for _, n := range list {
			if (limit <= 0 || deleted < int64(limit)) && n.Read && n.CreatedAt.Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, n)
		}
		s.notifications[id] = kept
	}
	return deleted, nil
}
