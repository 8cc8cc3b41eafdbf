package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/fieldserve/fieldkit/pkg/async"
	"github.com/fieldserve/fieldkit/pkg/tiers"
	"github.com/fieldserve/fieldkit/pkg/usage"
)

// approachingThreshold is the usage percentage at which a limit counts as
// "approaching", for upgrade nudges before the hard stop.
const approachingThreshold = 80

// TierResolver resolves a contractor's current tier. Implemented by
// tiercache.Resolver; declared here so the gate depends on behavior, not on
// a concrete cache.
type TierResolver interface {
	Resolve(ctx context.Context, contractorID uuid.UUID) (tiers.Tier, error)
	Invalidate(ctx context.Context, contractorID uuid.UUID) error
	Clear(ctx context.Context) error
}

// Gate is the per-request decision API: feature-access checks and usage
// limit checks. It never mutates counters; it only reads and reports.
//
// Error policy: a gating decision must never fail open by accident, so the
// read APIs propagate every unexpected failure (including an unknown
// contractor). Only the monitor emission is best-effort.
type Gate struct {
	resolver TierResolver
	usage    usage.Store
	catalog  *tiers.Catalog
	monitor  Monitor
	log      *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithMonitor sets the monitoring collaborator for limit violations.
func WithMonitor(m Monitor) Option {
	return func(g *Gate) {
		if m != nil {
			g.monitor = m
		}
	}
}

// WithLogger sets the gate's logger.
func WithLogger(log *slog.Logger) Option {
	return func(g *Gate) {
		if log != nil {
			g.log = log
		}
	}
}

// New creates a feature gate.
// Panics if a required dependency is nil to fail fast during initialization.
func New(resolver TierResolver, usageStore usage.Store, catalog *tiers.Catalog, opts ...Option) *Gate {
	if resolver == nil {
		panic("gate: TierResolver is required")
	}
	if usageStore == nil {
		panic("gate: usage.Store is required")
	}
	if catalog == nil {
		panic("gate: tiers.Catalog is required")
	}

	g := &Gate{
		resolver: resolver,
		usage:    usageStore,
		catalog:  catalog,
		monitor:  NopMonitor{},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CanAccessFeature reports whether the contractor's tier grants a feature.
// When denied, the result carries the cheapest tier that would grant it.
func (g *Gate) CanAccessFeature(ctx context.Context, contractorID uuid.UUID, f tiers.Feature) (FeatureAccess, error) {
	tier, err := g.resolver.Resolve(ctx, contractorID)
	if err != nil {
		return FeatureAccess{}, err
	}

	access := FeatureAccess{
		Allowed: tier.HasFeature(f),
		Feature: f,
		Tier:    tier.Name,
	}
	if access.Allowed {
		return access, nil
	}

	if required, ok := g.catalog.MinimumTierFor(f); ok {
		access.RequiredTier = required
		access.Reason = fmt.Sprintf("requires the %s plan or higher", required)
	} else {
		access.Reason = "not available on any plan"
	}
	return access, nil
}

// CheckLimit compares one usage counter against the contractor's tier
// ceiling. A contractor without a usage row reads as zero on every counter.
// When the contractor is at the limit, one violation observation is emitted
// to the monitor, fire-and-forget.
func (g *Gate) CheckLimit(ctx context.Context, contractorID uuid.UUID, l tiers.Limit) (LimitCheck, error) {
	tier, counters, err := g.load(ctx, contractorID)
	if err != nil {
		return LimitCheck{}, err
	}

	check, err := g.evaluate(tier, counters, l)
	if err != nil {
		return LimitCheck{}, err
	}

	if check.IsAtLimit {
		g.reportViolation(ctx, contractorID, tier.Name, check)
	}
	return check, nil
}

// CheckLimits evaluates several limits with exactly one tier lookup and one
// usage lookup, regardless of how many limits are requested. Handlers that
// gate an operation on more than one counter must use this form instead of
// repeated CheckLimit calls.
func (g *Gate) CheckLimits(ctx context.Context, contractorID uuid.UUID, limits ...tiers.Limit) (map[tiers.Limit]LimitCheck, error) {
	tier, counters, err := g.load(ctx, contractorID)
	if err != nil {
		return nil, err
	}

	results := make(map[tiers.Limit]LimitCheck, len(limits))
	for _, l := range limits {
		check, err := g.evaluate(tier, counters, l)
		if err != nil {
			return nil, err
		}
		if check.IsAtLimit {
			g.reportViolation(ctx, contractorID, tier.Name, check)
		}
		results[l] = check
	}
	return results, nil
}

// UsageOverview returns tier metadata plus a snapshot of every tracked
// limit, for dashboards. Overviews are read-only reporting, so no violation
// observations are emitted.
func (g *Gate) UsageOverview(ctx context.Context, contractorID uuid.UUID) (Overview, error) {
	tier, counters, err := g.load(ctx, contractorID)
	if err != nil {
		return Overview{}, err
	}

	overview := Overview{
		Tier:         tier.Name,
		DisplayName:  tier.DisplayName,
		MonthlyPrice: tier.MonthlyPrice,
		Usage:        make(map[tiers.Limit]LimitCheck, len(tiers.TrackedLimits)),
	}
	for _, l := range tiers.TrackedLimits {
		check, err := g.evaluate(tier, counters, l)
		if err != nil {
			return Overview{}, err
		}
		overview.Usage[l] = check
	}
	return overview, nil
}

// InvalidateCache drops the contractor's cached tier. Administrative; must
// be called synchronously by code paths that change a tier.
func (g *Gate) InvalidateCache(ctx context.Context, contractorID uuid.UUID) error {
	return g.resolver.Invalidate(ctx, contractorID)
}

// ClearCache empties the tier cache. Administrative.
func (g *Gate) ClearCache(ctx context.Context) error {
	return g.resolver.Clear(ctx)
}

// load performs the single tier lookup and single usage lookup every check
// path shares. A missing usage row is not an error: it reads as all
// counters at zero.
func (g *Gate) load(ctx context.Context, contractorID uuid.UUID) (tiers.Tier, *usage.Counters, error) {
	tier, err := g.resolver.Resolve(ctx, contractorID)
	if err != nil {
		return tiers.Tier{}, nil, err
	}

	counters, err := g.usage.Get(ctx, contractorID)
	if err != nil {
		if errors.Is(err, usage.ErrUsageNotFound) {
			return tier, &usage.Counters{ContractorID: contractorID}, nil
		}
		return tiers.Tier{}, nil, err
	}
	return tier, counters, nil
}

// evaluate computes a LimitCheck from already-loaded state. Pure.
func (g *Gate) evaluate(tier tiers.Tier, counters *usage.Counters, l tiers.Limit) (LimitCheck, error) {
	if _, configured := tier.Limits[l]; !configured && !slices.Contains(tiers.TrackedLimits, l) {
		return LimitCheck{}, fmt.Errorf("%w: %s", ErrUnknownLimit, l)
	}

	limit := tier.LimitFor(l)
	current := counters.Value(l)

	check := LimitCheck{
		Name:    l,
		Current: current,
		Limit:   limit,
	}

	if limit == tiers.Unlimited {
		check.Allowed = true
		check.Unlimited = true
		check.Remaining = tiers.Unlimited
		check.Percentage = 0
		return check, nil
	}

	check.Remaining = max(0, limit-current)
	if limit > 0 {
		check.Percentage = int(math.Round(float64(current) * 100 / float64(limit)))
	} else {
		// Limit 0 means the counted feature is unavailable on the tier.
		check.Percentage = 100
	}
	check.IsAtLimit = current >= limit
	check.IsApproaching = check.Percentage >= approachingThreshold && check.Percentage < 100
	check.Allowed = current < limit
	return check, nil
}

// reportViolation emits one observation to the monitor without blocking the
// request path. Monitor failures are logged by async.Fire and dropped.
func (g *Gate) reportViolation(ctx context.Context, contractorID uuid.UUID, tier tiers.Name, check LimitCheck) {
	v := Violation{
		ContractorID: contractorID,
		Limit:        check.Name,
		Current:      check.Current,
		Max:          check.Limit,
		Tier:         tier,
		At:           time.Now().UTC(),
	}
	async.Fire(ctx, g.log, "limit_violation_report", func(ctx context.Context) error {
		g.monitor.LogLimitViolation(ctx, v)
		return nil
	})
}
