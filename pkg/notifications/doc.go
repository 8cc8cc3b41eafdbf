// Package notifications persists contractor notifications and exposes the
// batch operations the cleanup sweep is built on: counting and archiving
// records past the retention window, and hard-deleting read records in
// bounded batches.
//
// Retention policy lives with the caller (pkg/maintenance); this package
// only provides the primitives. MemoryStore serves development and tests,
// MongoStore serves production.
package notifications
