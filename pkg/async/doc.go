// Package async provides small helpers for running work off the request
// path: a generic Future for computations whose result a caller may await,
// and Fire for fire-and-forget tasks that must never propagate a panic or
// an error back to the request that triggered them.
//
// Fire detaches the task from the caller's cancellation with
// context.WithoutCancel, so background maintenance keeps running after the
// triggering request completes.
package async
