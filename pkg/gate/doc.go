// Package gate decides, per request, whether a contractor may use a
// feature or has exceeded a usage quota.
//
// The gate is read-only: it resolves the contractor's tier (through the
// injected TierResolver, normally a tiercache.Resolver), reads the usage
// counters, and reports. Counters are mutated elsewhere, by the features
// that create and remove the counted entities.
//
// Checks never fail open: an unknown contractor or a failing store surfaces
// as an error to the caller. The only best-effort path is the monitor
// emission on an at-limit check, which runs fire-and-forget.
//
// Handlers needing more than one limit for the same operation must use
// CheckLimits, which issues exactly one tier lookup and one usage lookup
// for the whole batch.
package gate
