package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/fieldserve/fieldkit/pkg/async"
	"github.com/fieldserve/fieldkit/pkg/metrics"
	"github.com/fieldserve/fieldkit/pkg/notifications"
)

// Cleanup retention defaults.
const (
	// DefaultCleanupProbability amortizes the sweep across request
	// traffic: roughly one in a hundred eligible requests pays for it.
	DefaultCleanupProbability = 0.01
	// DefaultArchiveAfter is the age at which notifications are archived.
	DefaultArchiveAfter = 30 * 24 * time.Hour
	// DefaultDeleteAfter is the age at which read notifications are deleted.
	DefaultDeleteAfter = 7 * 24 * time.Hour
	// DefaultDeleteBatchSize bounds each delete statement so a sweep never
	// holds a long-running transaction.
	DefaultDeleteBatchSize = 100
)

// Cleanup sweeps old notifications: an archive phase for anything past the
// retention window, then a batched hard-delete of read records.
//
// There is no scheduler process; MaybeCleanup is called from request
// traffic and launches a sweep with probability DefaultCleanupProbability.
// A single-flight guard scoped to this Cleanup instance prevents
// overlapping sweeps within one process. It does not coordinate across
// instances; each instance sweeps independently, which is safe because
// both phases are idempotent.
type Cleanup struct {
	store        notifications.Store
	probability  float64
	archiveAfter time.Duration
	deleteAfter  time.Duration
	batchSize    int
	randFn       func() float64
	log          *slog.Logger
	now          func() time.Time

	running atomic.Bool
	lastRun atomic.Pointer[time.Time]
}

// CleanupOption configures a Cleanup.
type CleanupOption func(*Cleanup)

// WithCleanupProbability overrides the per-call trigger probability.
// Values outside (0, 1] are ignored.
func WithCleanupProbability(p float64) CleanupOption {
	return func(c *Cleanup) {
		if p > 0 && p <= 1 {
			c.probability = p
		}
	}
}

// WithArchiveAfter overrides the archive age threshold.
func WithArchiveAfter(d time.Duration) CleanupOption {
	return func(c *Cleanup) {
		if d > 0 {
			c.archiveAfter = d
		}
	}
}

// WithDeleteAfter overrides the delete age threshold for read notifications.
func WithDeleteAfter(d time.Duration) CleanupOption {
	return func(c *Cleanup) {
		if d > 0 {
			c.deleteAfter = d
		}
	}
}

// WithDeleteBatchSize overrides the delete batch size.
func WithDeleteBatchSize(n int) CleanupOption {
	return func(c *Cleanup) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithCleanupRand overrides the probability source, for tests.
func WithCleanupRand(fn func() float64) CleanupOption {
	return func(c *Cleanup) {
		if fn != nil {
			c.randFn = fn
		}
	}
}

// WithCleanupLogger sets the service logger.
func WithCleanupLogger(log *slog.Logger) CleanupOption {
	return func(c *Cleanup) {
		if log != nil {
			c.log = log
		}
	}
}

// WithCleanupClock overrides the time source, for tests.
func WithCleanupClock(now func() time.Time) CleanupOption {
	return func(c *Cleanup) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCleanup creates the notification cleanup service.
// Panics if the store is nil to fail fast during initialization.
func NewCleanup(store notifications.Store, opts ...CleanupOption) *Cleanup {
	if store == nil {
		panic("maintenance: notifications.Store is required")
	}

	c := &Cleanup{
		store:        store,
		probability:  DefaultCleanupProbability,
		archiveAfter: DefaultArchiveAfter,
		deleteAfter:  DefaultDeleteAfter,
		batchSize:    DefaultDeleteBatchSize,
		randFn:       rand.Float64,
		log:          slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaybeCleanup rolls the dice and, on success, launches a sweep in the
// background, returning immediately. It reports whether a sweep was
// launched. The roll short-circuits to false while a sweep is in flight,
// so the probability never stacks trigger attempts behind a running sweep.
func (c *Cleanup) MaybeCleanup(ctx context.Context) bool {
	if c.running.Load() {
		return false
	}
	if c.randFn() >= c.probability {
		return false
	}
	if !c.running.CompareAndSwap(false, true) {
		// Lost the race to a concurrent trigger.
		return false
	}

	async.Fire(ctx, c.log, "notification_cleanup", func(ctx context.Context) error {
		defer c.running.Store(false)
		return c.sweep(ctx)
	})
	return true
}

// ForceCleanup runs a sweep synchronously, for administrative and test use.
// It fails with ErrCleanupAlreadyRunning rather than queueing behind an
// in-flight sweep.
func (c *Cleanup) ForceCleanup(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrCleanupAlreadyRunning
	}
	defer c.running.Store(false)
	return c.sweep(ctx)
}

// IsRunning reports whether a sweep is currently in flight.
func (c *Cleanup) IsRunning() bool {
	return c.running.Load()
}

// LastRunAt returns when the last sweep completed, if any has.
func (c *Cleanup) LastRunAt() (time.Time, bool) {
	t := c.lastRun.Load()
	if t == nil {
		return time.Time{}, false
	}
	return *t, true
}

// sweep performs the two idempotent phases. Interrupting it mid-way leaves
// no partial corruption, only work a later sweep naturally continues.
func (c *Cleanup) sweep(ctx context.Context) error {
	metrics.CleanupSweepsTotal.Inc()
	now := c.now()
	deleteCutoff := now.Add(-c.deleteAfter)

	// Backlog is measured before the phases run: how much aged material
	// this sweep found waiting.
	backlog, err := c.store.CountOlderThan(ctx, deleteCutoff)
	if err != nil {
		return fmt.Errorf("backlog count: %w", err)
	}

	archived, err := c.store.MarkArchivedOlderThan(ctx, now.Add(-c.archiveAfter))
	if err != nil {
		return fmt.Errorf("archive phase: %w", err)
	}
	metrics.NotificationsArchivedTotal.Add(float64(archived))

	var deleted int64
	for {
		n, err := c.store.DeleteReadOlderThan(ctx, deleteCutoff, c.batchSize)
		if err != nil {
			return fmt.Errorf("delete phase: %w", err)
		}
		deleted += n
		metrics.NotificationsDeletedTotal.Add(float64(n))
		if n < int64(c.batchSize) {
			break
		}
	}

	finished := c.now()
	c.lastRun.Store(&finished)

	c.log.InfoContext(ctx, "notification cleanup sweep finished",
		slog.Int64("backlog", backlog),
		slog.Int64("archived", archived),
		slog.Int64("deleted", deleted))
	return nil
}
