package tiercache

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fieldserve/fieldkit/pkg/tiers"
)

// DefaultTTL bounds how long a resolved tier may be served without
// re-reading the account store. Tier changes propagate within this window
// unless the changing code path calls Invalidate.
const DefaultTTL = 5 * time.Minute

// Cache stores resolved tier names per contractor with a TTL.
//
// The cache is an explicit dependency rather than process-global state so
// deployments choose the scope: the in-memory implementation is
// per-instance best-effort, the Redis implementation is shared across
// instances. Implementations treat the cache as best-effort: backend
// failures surface as misses on the read path, never as resolution errors.
type Cache interface {
	// Get returns the cached tier and true on a fresh hit.
	// Expired or missing entries report false.
	Get(ctx context.Context, contractorID uuid.UUID) (tiers.Name, bool)

	// Set stores the tier for a contractor, replacing any previous entry.
	Set(ctx context.Context, contractorID uuid.UUID, tier tiers.Name) error

	// Invalidate removes a single contractor's entry. Must be called
	// synchronously by any code path that changes a contractor's tier.
	Invalidate(ctx context.Context, contractorID uuid.UUID) error

	// Clear empties the cache. Used for tests and administrative resets.
	Clear(ctx context.Context) error
}
