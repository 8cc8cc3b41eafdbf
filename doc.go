// Package fieldkit gates contractor SaaS features behind subscription
// tiers and keeps the bookkeeping those gates depend on current without a
// scheduler.
//
// The library splits into a read side and a maintenance side. On the read
// side, pkg/tiers defines the plan catalog, pkg/tiercache resolves a
// contractor's tier through a TTL cache, and pkg/gate answers the
// questions handlers ask: can this contractor use this feature, and is
// this usage counter within its plan limit. On the maintenance side,
// pkg/maintenance rolls monthly counters over at billing-period
// boundaries, runs per-contractor daily usage checks, and sweeps old
// notifications, all triggered inline from request traffic through its
// Orchestrator.
//
// Storage is pluggable: pkg/accounts and pkg/usage ship memory and
// Postgres stores, pkg/notifications ships memory and MongoDB stores, and
// the tier cache has in-process and Redis backends. The remaining
// packages (pkg/logger, pkg/config, pkg/pg, pkg/redis, pkg/mongo,
// pkg/metrics, pkg/async) are the plumbing the rest of the library is
// wired with.
package fieldkit
