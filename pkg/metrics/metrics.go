package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fieldkit"

// Tier cache metrics
var (
	TierCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_cache_hits_total",
			Help:      "Total number of tier resolutions served from cache",
		},
	)

	TierCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_cache_misses_total",
			Help:      "Total number of tier resolutions that hit the account store",
		},
	)
)

// Feature gate metrics
var (
	LimitViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "limit_violations_total",
			Help:      "Total number of limit checks that found a contractor at its limit",
		},
		[]string{"tier", "limit"},
	)
)

// Background maintenance metrics
var (
	MonthlyResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monthly_resets_total",
			Help:      "Total number of billing-period counter resets performed",
		},
	)

	DailyChecksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daily_checks_total",
			Help:      "Total number of per-contractor daily usage checks performed",
		},
	)

	CleanupSweepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_sweeps_total",
			Help:      "Total number of notification cleanup sweeps started",
		},
	)

	NotificationsArchivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_archived_total",
			Help:      "Total number of notifications archived by cleanup sweeps",
		},
	)

	NotificationsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_deleted_total",
			Help:      "Total number of notifications hard-deleted by cleanup sweeps",
		},
	)
)
