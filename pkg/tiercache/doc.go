// Package tiercache resolves a contractor's subscription tier through a
// time-to-live cache, avoiding an account-store round trip on every gated
// request.
//
// The cache backend is an injected dependency: MemoryCache is per-instance
// best-effort state, RedisCache shares entries (and invalidations) across
// process instances. Either way an entry older than the TTL is treated as
// absent, so a stale tier can never outlive the window by more than one
// request.
//
// Code paths that change a contractor's tier must call Invalidate
// synchronously with the change; the TTL only bounds staleness for changes
// the process never learned about.
package tiercache
