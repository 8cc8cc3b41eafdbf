package tiercache

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fieldserve/fieldkit/pkg/accounts"
	"github.com/fieldserve/fieldkit/pkg/logger"
	"github.com/fieldserve/fieldkit/pkg/metrics"
	"github.com/fieldserve/fieldkit/pkg/tiers"
)

// Resolver resolves a contractor's current tier, consulting the cache
// before the account store.
//
// A missing contractor is propagated as accounts.ErrContractorNotFound,
// never defaulted: a gating decision for a non-existent account must fail,
// not silently grant starter access.
type Resolver struct {
	cache    Cache
	accounts accounts.Store
	catalog  *tiers.Catalog
	log      *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger used for degraded-mode reporting.
func WithResolverLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// NewResolver creates a tier resolver.
// Panics if any required dependency is nil to fail fast during initialization.
func NewResolver(cache Cache, store accounts.Store, catalog *tiers.Catalog, opts ...ResolverOption) *Resolver {
	if cache == nil {
		panic("tiercache: Cache is required")
	}
	if store == nil {
		panic("tiercache: accounts.Store is required")
	}
	if catalog == nil {
		panic("tiercache: tiers.Catalog is required")
	}

	r := &Resolver{
		cache:    cache,
		accounts: store,
		catalog:  catalog,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the contractor's current tier definition.
// Cache hits within the TTL skip the account store entirely; misses load
// the account, normalize the stored tier string and refresh the cache.
func (r *Resolver) Resolve(ctx context.Context, contractorID uuid.UUID) (tiers.Tier, error) {
	if name, ok := r.cache.Get(ctx, contractorID); ok {
		if tier, found := r.catalog.Get(name); found {
			metrics.TierCacheHits.Inc()
			return tier, nil
		}
		// Cached name no longer in the catalog; fall through to a reload.
	}
	metrics.TierCacheMisses.Inc()

	acc, err := r.accounts.Get(ctx, contractorID)
	if err != nil {
		return tiers.Tier{}, err
	}

	name := tiers.Normalize(acc.Tier)
	if err := r.cache.Set(ctx, contractorID, name); err != nil {
		// The cache is best-effort; a failed set only costs the next
		// request a store round trip.
		r.log.WarnContext(ctx, "tier cache set failed",
			logger.ContractorID(contractorID), logger.Error(err))
	}

	tier, ok := r.catalog.Get(name)
	if !ok {
		// Normalize always yields a catalog tier as long as starter is
		// defined, which the catalog validates at load time.
		return tiers.Tier{}, tiers.ErrTierNotFound
	}
	return tier, nil
}

// Invalidate removes a contractor's cache entry. Call it synchronously with
// any tier change, otherwise the old tier can be served for up to the TTL.
func (r *Resolver) Invalidate(ctx context.Context, contractorID uuid.UUID) error {
	return r.cache.Invalidate(ctx, contractorID)
}

// Clear empties the tier cache.
func (r *Resolver) Clear(ctx context.Context) error {
	return r.cache.Clear(ctx)
}
