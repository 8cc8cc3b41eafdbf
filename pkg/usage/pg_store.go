package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldserve/fieldkit/pkg/tiers"
)

// counterColumns whitelists the column behind each limit name. Column names
// must never come from request input.
var counterColumns = map[tiers.Limit]string{
	tiers.LimitActiveJobs:       "active_jobs",
	tiers.LimitInvoicesPerMonth: "invoices_this_month",
	tiers.LimitCustomers:        "total_customers",
	tiers.LimitTeamMembers:      "team_members",
	tiers.LimitInventoryItems:   "inventory_items",
	tiers.LimitEquipmentItems:   "equipment_items",
	tiers.LimitActiveLeads:      "active_leads",
}

// PGStore is a PostgreSQL implementation of the Store interface backed by
// the usage_counters table.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a Postgres-backed usage store.
// Panics if pool is nil to fail fast during initialization.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("usage: pgxpool is required")
	}
	return &PGStore{pool: pool}
}

func (s *PGStore) Get(ctx context.Context, contractorID uuid.UUID) (*Counters, error) {
	const query = `
		SELECT contractor_id, active_jobs, invoices_this_month, total_customers,
		       team_members, inventory_items, equipment_items, active_leads,
		       current_period_start, last_daily_check_at, updated_at
		FROM usage_counters
		WHERE contractor_id = $1`

	var c Counters
	err := s.pool.QueryRow(ctx, query, contractorID).Scan(
		&c.ContractorID, &c.ActiveJobs, &c.InvoicesThisMonth, &c.TotalCustomers,
		&c.TeamMembers, &c.InventoryItems, &c.EquipmentItems, &c.ActiveLeads,
		&c.CurrentPeriodStart, &c.LastDailyCheckAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUsageNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *PGStore) Increment(ctx context.Context, contractorID uuid.UUID, l tiers.Limit, delta int64) error {
	column, ok := counterColumns[l]
	if !ok {
		return ErrUnknownCounter
	}

	// GREATEST enforces the counters-never-negative invariant at the
	// database so racing decrements cannot push a counter below zero.
	query := fmt.Sprintf(`
		INSERT INTO usage_counters (contractor_id, %[1]s, current_period_start, updated_at)
		VALUES ($1, GREATEST(0, $2::bigint), now(), now())
		ON CONFLICT (contractor_id) DO UPDATE
		SET %[1]s = GREATEST(0, usage_counters.%[1]s + $2), updated_at = now()`, column)

	_, err := s.pool.Exec(ctx, query, contractorID, delta)
	return err
}

func (s *PGStore) ResetPeriodCounters(ctx context.Context, contractorID uuid.UUID, periodStart time.Time) error {
	// Absolute write: repeating it for the same period is a no-op, which is
	// what lets concurrent requests race on the reset safely.
	const query = `
		INSERT INTO usage_counters (contractor_id, invoices_this_month, current_period_start, updated_at)
		VALUES ($1, 0, $2, now())
		ON CONFLICT (contractor_id) DO UPDATE
		SET invoices_this_month = 0, current_period_start = $2, updated_at = now()`

	_, err := s.pool.Exec(ctx, query, contractorID, periodStart)
	return err
}

func (s *PGStore) SetLastDailyCheck(ctx context.Context, contractorID uuid.UUID, at time.Time) error {
	const query = `
		INSERT INTO usage_counters (contractor_id, current_period_start, last_daily_check_at, updated_at)
		VALUES ($1, now(), $2, now())
		ON CONFLICT (contractor_id) DO UPDATE
		SET last_daily_check_at = $2, updated_at = now()`

	_, err := s.pool.Exec(ctx, query, contractorID, at)
	return err
}
