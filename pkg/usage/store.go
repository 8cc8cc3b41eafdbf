package usage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fieldserve/fieldkit/pkg/tiers"
)

// Store defines persistence for per-contractor usage counters.
//
// Contractors without a usage row are reported via ErrUsageNotFound; the
// gate treats that as all counters at zero, never as a failure.
type Store interface {
	// Get retrieves the usage counters for a contractor.
	// Returns ErrUsageNotFound if no row exists yet.
	Get(ctx context.Context, contractorID uuid.UUID) (*Counters, error)

	// Increment adjusts one counter by delta, clamping the result at zero.
	// Creates the row on first use.
	Increment(ctx context.Context, contractorID uuid.UUID, l tiers.Limit, delta int64) error

	// ResetPeriodCounters zeroes the period-scoped counters and records
	// periodStart as the active billing period. The write is absolute
	// (last-writer-wins), so concurrent resets for the same period are
	// harmless. Creates the row if it does not exist.
	ResetPeriodCounters(ctx context.Context, contractorID uuid.UUID, periodStart time.Time) error

	// SetLastDailyCheck records when the daily usage check last ran.
	SetLastDailyCheck(ctx context.Context, contractorID uuid.UUID, at time.Time) error
}
