// Package accounts provides read access to the contractor account record,
// scoped to the fields the feature gate needs: the stored subscription tier
// and the billing-period anchor date.
//
// The billing subsystem owns the account; this package never writes it.
// A missing contractor is always surfaced as ErrContractorNotFound so
// callers cannot silently default a non-existent account to the cheapest
// tier.
package accounts
