// Package metrics exposes the engine's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Deliveries counts successful channel send calls.
	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usernotify_deliveries_total",
		Help: "Total number of successful channel deliveries.",
	}, []string{"kind"})

	// DeliveryFailures counts failed channel send calls. Failures are
	// isolated per (recipient, channel) and never fail the firing.
	DeliveryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usernotify_delivery_failures_total",
		Help: "Total number of failed channel deliveries.",
	}, []string{"kind"})

	// Revocations counts channel revoke calls, by kind and result.
	Revocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usernotify_revocations_total",
		Help: "Total number of channel revoke calls.",
	}, []string{"kind", "result"})

	// Firings counts engine fire operations, by result.
	Firings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usernotify_firings_total",
		Help: "Total number of fired notification events.",
	}, []string{"result"})

	// CountCacheHits and CountCacheMisses track unread-count cache reads.
	CountCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "usernotify_count_cache_hits_total",
		Help: "Unread count cache hits.",
	})
	CountCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "usernotify_count_cache_misses_total",
		Help: "Unread count cache misses.",
	})
)
