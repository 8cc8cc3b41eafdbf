// Package usage persists the per-contractor counters the feature gate
// compares against tier limits: active jobs, invoices this month, customers,
// team members, inventory items, equipment items and active leads.
//
// The row also carries two maintenance markers: the start of the billing
// period the period-scoped counters belong to, and the timestamp of the
// last daily usage check. Counter writes clamp at zero and period resets
// are absolute writes, so redundant concurrent maintenance is harmless.
package usage
