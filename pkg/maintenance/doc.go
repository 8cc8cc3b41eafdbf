// Package maintenance performs the periodic bookkeeping that keeps usage
// quotas accurate, without a dedicated scheduler process: every ordinary
// API request pays a small, bounded toll.
//
// Three services compose through the Orchestrator, called at the top of
// request handlers:
//
//   - MonthlyReset runs synchronously before the handler reads counters,
//     zeroing period-scoped counters exactly once per billing period.
//     Concurrent requests may race to perform it; the write is
//     last-writer-wins idempotent, so the race is harmless.
//   - DailyCheck fires a per-contractor usage check at most once per
//     calendar day, guarded per contractor against duplicate launches.
//   - Cleanup archives and batch-deletes old notifications, triggered
//     probabilistically (p=0.01) and guarded against self-overlap within
//     the process.
//
// The orchestrator is fail-open: a broken maintenance step is recorded
// in the Result and the user's request proceeds. The feature gate never
// fails open; handlers must not confuse the two.
package maintenance
