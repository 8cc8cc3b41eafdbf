// Package redis connects the shared tier cache to its Redis backend:
// env-driven configuration, a retrying Connect, and a health probe.
//
// Multi-instance deployments hand the returned client to
// tiercache.NewRedisCache so every instance observes the same cached tier
// assignments.
package redis
