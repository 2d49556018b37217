// Package metrics exposes Prometheus instrumentation for the resolver.
// Nothing in internal/resolver's control flow depends on these values;
// removing every call here would change no DNS behavior.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueriesTotal counts resolved queries by query type and final response code.
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recdns_queries_total",
		Help: "Total number of DNS queries handled, by query type and response code.",
	}, []string{"qtype", "rcode"})

	// LookupDuration measures wall-clock time spent walking delegations for
	// a single query, from the root hint to a terminal answer.
	LookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recdns_lookup_duration_seconds",
		Help:    "Time spent performing a single recursive lookup.",
		Buckets: prometheus.DefBuckets,
	})
)
