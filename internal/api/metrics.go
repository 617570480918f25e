package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clash_tracker",
			Subsystem: "api",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result (hit, miss, stale).",
		},
		[]string{"result"},
	)

	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clash_tracker",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Upstream requests by outcome.",
		},
		[]string{"outcome"},
	)
)
