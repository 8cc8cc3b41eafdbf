package usage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldserve/fieldkit/pkg/tiers"
)

// MemoryStore is an in-memory implementation of the Store interface.
// Suitable for development and testing.
type MemoryStore struct {
	rows map[uuid.UUID]*Counters
	mu   sync.RWMutex
	now  func() time.Time
}

// NewMemoryStore creates a new in-memory usage store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[uuid.UUID]*Counters),
		now:  time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, contractorID uuid.UUID) (*Counters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[contractorID]
	if !ok {
		return nil, ErrUsageNotFound
	}
	out := *row
	return &out, nil
}

func (s *MemoryStore) Increment(_ context.Context, contractorID uuid.UUID, l tiers.Limit, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.row(contractorID)
	field := counterField(row, l)
	if field == nil {
		return ErrUnknownCounter
	}
	*field = max(0, *field+delta)
	row.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) ResetPeriodCounters(_ context.Context, contractorID uuid.UUID, periodStart time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.row(contractorID)
	row.InvoicesThisMonth = 0
	row.CurrentPeriodStart = periodStart
	row.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) SetLastDailyCheck(_ context.Context, contractorID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.row(contractorID)
	row.LastDailyCheckAt = &at
	row.UpdatedAt = s.now()
	return nil
}

// Put replaces a contractor's usage row, mainly for test setup.
func (s *MemoryStore) Put(_ context.Context, c Counters) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := c
	s.rows[c.ContractorID] = &row
	return nil
}

// row returns the stored counters, creating an empty row on first use.
// Must be called with the write lock held.
func (s *MemoryStore) row(contractorID uuid.UUID) *Counters {
	row, ok := s.rows[contractorID]
	if !ok {
		row = &Counters{ContractorID: contractorID, CurrentPeriodStart: s.now()}
		s.rows[contractorID] = row
	}
	return row
}

func counterField(c *Counters, l tiers.Limit) *int64 {
	switch l {
	case tiers.LimitActiveJobs:
		return &c.ActiveJobs
	case tiers.LimitInvoicesPerMonth:
		return &c.InvoicesThisMonth
	case tiers.LimitCustomers:
		return &c.TotalCustomers
	case tiers.LimitTeamMembers:
		return &c.TeamMembers
	case tiers.LimitInventoryItems:
		return &c.InventoryItems
	case tiers.LimitEquipmentItems:
		return &c.EquipmentItems
	case tiers.LimitActiveLeads:
		return &c.ActiveLeads
	default:
		return nil
	}
}
