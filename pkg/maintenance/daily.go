package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldserve/fieldkit/pkg/async"
	"github.com/fieldserve/fieldkit/pkg/gate"
	"github.com/fieldserve/fieldkit/pkg/metrics"
	"github.com/fieldserve/fieldkit/pkg/notifications"
	"github.com/fieldserve/fieldkit/pkg/tiers"
	"github.com/fieldserve/fieldkit/pkg/usage"
)

// CheckFunc is the per-contractor daily work: usage evaluation,
// notification fan-out, whatever the deployment wires in.
type CheckFunc func(ctx context.Context, contractorID uuid.UUID) error

// DailyCheck runs a per-contractor check at most once per calendar day,
// triggered from ordinary request traffic.
//
// The caller awaits only the triggering decision; the check itself runs
// fire-and-forget. A per-contractor single-flight guard keeps concurrent
// requests from launching the same contractor's check twice.
type DailyCheck struct {
	usage usage.Store
	check CheckFunc
	log   *slog.Logger
	now   func() time.Time

	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
}

// DailyCheckOption configures a DailyCheck.
type DailyCheckOption func(*DailyCheck)

// WithDailyLogger sets the service logger.
func WithDailyLogger(log *slog.Logger) DailyCheckOption {
	return func(s *DailyCheck) {
		if log != nil {
			s.log = log
		}
	}
}

// WithDailyClock overrides the time source, for tests.
func WithDailyClock(now func() time.Time) DailyCheckOption {
	return func(s *DailyCheck) {
		if now != nil {
			s.now = now
		}
	}
}

// NewDailyCheck creates the daily check service. A nil check is allowed
// and only advances the marker.
// Panics if the usage store is nil to fail fast during initialization.
func NewDailyCheck(usageStore usage.Store, check CheckFunc, opts ...DailyCheckOption) *DailyCheck {
	if usageStore == nil {
		panic("maintenance: usage.Store is required")
	}

	s := &DailyCheck{
		usage:    usageStore,
		check:    check,
		log:      slog.Default(),
		now:      time.Now,
		inflight: make(map[uuid.UUID]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunIfNeeded triggers the contractor's daily check when a calendar day has
// elapsed since the last one. It reports whether a check was launched; the
// check itself completes in the background with no completion guarantee
// beyond "no unhandled failure".
func (s *DailyCheck) RunIfNeeded(ctx context.Context, contractorID uuid.UUID) (bool, error) {
	counters, err := s.usage.Get(ctx, contractorID)
	if err != nil && !errors.Is(err, usage.ErrUsageNotFound) {
		return false, err
	}

	now := s.now().UTC()
	if counters != nil && counters.LastDailyCheckAt != nil && sameDay(counters.LastDailyCheckAt.UTC(), now) {
		return false, nil
	}

	s.mu.Lock()
	if _, running := s.inflight[contractorID]; running {
		s.mu.Unlock()
		return false, nil
	}
	s.inflight[contractorID] = struct{}{}
	s.mu.Unlock()

	async.Fire(ctx, s.log, "daily_check", func(ctx context.Context) error {
		defer func() {
			s.mu.Lock()
			delete(s.inflight, contractorID)
			s.mu.Unlock()
		}()

		if s.check != nil {
			if err := s.check(ctx, contractorID); err != nil {
				return fmt.Errorf("daily check for contractor %s: %w", contractorID, err)
			}
		}

		// The marker advances only after a successful check so a failed
		// day retries on the next request.
		if err := s.usage.SetLastDailyCheck(ctx, contractorID, now); err != nil {
			return fmt.Errorf("record daily check for contractor %s: %w", contractorID, err)
		}

		metrics.DailyChecksTotal.Inc()
		return nil
	})
	return true, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// NewUsageAlertCheck builds the default daily work: evaluate every tracked
// limit in one batch and notify the contractor about limits that are
// approaching or exhausted.
func NewUsageAlertCheck(g *gate.Gate, store notifications.Store) CheckFunc {
	if g == nil {
		panic("maintenance: gate is required")
	}
	if store == nil {
		panic("maintenance: notifications.Store is required")
	}

	return func(ctx context.Context, contractorID uuid.UUID) error {
		checks, err := g.CheckLimits(ctx, contractorID, tiers.TrackedLimits...)
		if err != nil {
			return err
		}

		for _, check := range checks {
			var notif notifications.Notification
			switch {
			case check.IsAtLimit:
				notif = notifications.Notification{
					Type:  notifications.TypeError,
					Title: "Plan limit reached",
					Message: fmt.Sprintf("You have used %d of %d %s on your plan. Upgrade to add more.",
						check.Current, check.Limit, limitLabel(check.Name)),
				}
			case check.IsApproaching:
				notif = notifications.Notification{
					Type:  notifications.TypeWarning,
					Title: "Approaching plan limit",
					Message: fmt.Sprintf("You have used %d of %d %s (%d%%).",
						check.Current, check.Limit, limitLabel(check.Name), check.Percentage),
				}
			default:
				continue
			}

			notif.ID = uuid.NewString()
			notif.ContractorID = contractorID
			if err := store.Create(ctx, notif); err != nil {
				return err
			}
		}
		return nil
	}
}

func limitLabel(l tiers.Limit) string {
	switch l {
	case tiers.LimitActiveJobs:
		return "active jobs"
	case tiers.LimitInvoicesPerMonth:
		return "invoices this month"
	case tiers.LimitCustomers:
		return "customers"
	case tiers.LimitTeamMembers:
		return "team members"
	case tiers.LimitInventoryItems:
		return "inventory items"
	case tiers.LimitEquipmentItems:
		return "equipment items"
	case tiers.LimitActiveLeads:
		return "active leads"
	default:
		return string(l)
	}
}
