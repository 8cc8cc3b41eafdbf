// Package tiers defines the static subscription-tier catalog: tier names,
// feature capabilities, and numeric usage limits.
//
// The catalog is pure data with lookup functions. It performs no I/O at
// lookup time, has no error conditions on the read path, and is safe for
// concurrent use. A limit value of -1 means unlimited; 0 means the counted
// feature is unavailable on the tier.
//
// Normalize maps legacy tier strings (written by older billing code) to
// their current equivalents, falling back to the starter tier for anything
// unknown:
//
//	tier := tiers.Normalize(account.Tier) // "basic" -> tiers.Starter
//
// The compiled-in table can be replaced by loading from a Source, for
// example a YAML file:
//
//	catalog, err := tiers.NewCatalogFromSource(ctx, tiers.NewYAMLSource("tiers.yaml"))
package tiers
