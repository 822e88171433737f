// Package metrics holds the Prometheus collectors of the console.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackendRequests counts REST backend calls by method, resource and HTTP status ("error" on transport failure).
	BackendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "backend_requests_total",
		Help:      "REST backend requests issued by the console.",
	}, []string{"method", "resource", "status"})

	// BackendLatency observes REST backend round trips.
	BackendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "backend_request_duration_seconds",
		Help:      "REST backend request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "resource"})

	// OrderTransitions counts order workflow actions by action and outcome.
	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "order_actions_total",
		Help:      "Order workflow actions by outcome.",
	}, []string{"action", "outcome"})
)
