// Package metrics exposes Prometheus collectors for the feature gate and
// the inline maintenance services: tier cache hit rates, limit violations,
// reset/check/sweep counts.
//
// Collectors register on the default registry via promauto; expose them
// with promhttp in the host application.
package metrics
