package maintenance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fieldserve/fieldkit/pkg/accounts"
	"github.com/fieldserve/fieldkit/pkg/logger"
	"github.com/fieldserve/fieldkit/pkg/metrics"
	"github.com/fieldserve/fieldkit/pkg/usage"
)

// MonthlyReset detects billing-period rollovers and zeroes the
// period-scoped counters once per period.
//
// The check runs on the synchronous path of every gated request, so many
// concurrent requests may observe the same stale period and race to reset
// it. That is tolerated: the underlying write is absolute
// (last-writer-wins), so repeating it within one period is a no-op.
type MonthlyReset struct {
	accounts accounts.Store
	usage    usage.Store
	log      *slog.Logger
	now      func() time.Time
}

// MonthlyResetOption configures a MonthlyReset.
type MonthlyResetOption func(*MonthlyReset)

// WithResetLogger sets the service logger.
func WithResetLogger(log *slog.Logger) MonthlyResetOption {
	return func(s *MonthlyReset) {
		if log != nil {
			s.log = log
		}
	}
}

// WithResetClock overrides the time source, for tests.
func WithResetClock(now func() time.Time) MonthlyResetOption {
	return func(s *MonthlyReset) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMonthlyReset creates the monthly reset service.
// Panics if a required store is nil to fail fast during initialization.
func NewMonthlyReset(accountStore accounts.Store, usageStore usage.Store, opts ...MonthlyResetOption) *MonthlyReset {
	if accountStore == nil {
		panic("maintenance: accounts.Store is required")
	}
	if usageStore == nil {
		panic("maintenance: usage.Store is required")
	}

	s := &MonthlyReset{
		accounts: accountStore,
		usage:    usageStore,
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckAndReset zeroes the period-scoped counters if the stored period
// precedes the period containing now, and records the new period marker.
// It reports whether a reset was performed. Calling it again within the
// same period performs no write and reports false.
func (s *MonthlyReset) CheckAndReset(ctx context.Context, contractorID uuid.UUID) (bool, error) {
	acc, err := s.accounts.Get(ctx, contractorID)
	if err != nil {
		return false, err
	}

	counters, err := s.usage.Get(ctx, contractorID)
	if err != nil {
		if errors.Is(err, usage.ErrUsageNotFound) {
			// No counters yet means nothing period-scoped to reset; the
			// row picks up its period marker when it is first written.
			return false, nil
		}
		return false, err
	}

	anchor := acc.BillingAnchor
	if anchor.IsZero() {
		anchor = acc.CreatedAt
	}

	period := PeriodStart(anchor, s.now())
	if !counters.CurrentPeriodStart.Before(period) {
		return false, nil
	}

	if err := s.usage.ResetPeriodCounters(ctx, contractorID, period); err != nil {
		return false, err
	}

	metrics.MonthlyResetsTotal.Inc()
	s.log.InfoContext(ctx, "billing period counters reset",
		logger.ContractorID(contractorID),
		slog.Time("period_start", period))
	return true, nil
}

// PeriodStart returns the start of the billing period containing now, for
// an account anchored to the given date. The period boundary is the monthly
// anniversary of the anchor's day-of-month, clamped to shorter months (an
// account anchored on the 31st rolls over on Feb 28/29). A zero anchor
// falls back to calendar months.
func PeriodStart(anchor, now time.Time) time.Time {
	now = now.UTC()
	day := 1
	if !anchor.IsZero() {
		day = anchor.UTC().Day()
	}

	start := clampedDate(now.Year(), now.Month(), day)
	if start.After(now) {
		// The anniversary has not happened yet this month; step back one
		// month by arithmetic, not AddDate, to avoid day normalization.
		year, month := now.Year(), now.Month()
		if month == time.January {
			year, month = year-1, time.December
		} else {
			month--
		}
		start = clampedDate(year, month, day)
	}
	return start
}

// clampedDate builds a UTC midnight date, clamping day to the month's length.
func clampedDate(year int, month time.Month, day int) time.Time {
	// Day zero of the next month is the last day of this one.
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
