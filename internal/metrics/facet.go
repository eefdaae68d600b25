package metrics

import "github.com/prometheus/client_golang/prometheus"

// Facet engine metrics, registered explicitly from the composition root
// (no init()) so embedding the engine as a library never mutates the
// default registry.
var (
	// ComposeDuration observes one registry Apply pass over a request.
	ComposeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "facet",
			Name:      "query_compose_duration_seconds",
			Help:      "Time spent composing active filters into a query",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	// ActiveFiltersApplied counts filter contributions per filter name.
	ActiveFiltersApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facet",
			Name:      "active_filters_applied_total",
			Help:      "Filter contributions to composed queries",
		},
		[]string{"filter"},
	)

	// TermLookups counts taxonomy term fetches by outcome.
	TermLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facet",
			Name:      "term_lookups_total",
			Help:      "Taxonomy term lookups",
		},
		[]string{"taxonomy", "outcome"},
	)
)

// RegisterFacetMetrics registers the facet engine metrics.
func RegisterFacetMetrics() {
	prometheus.MustRegister(ComposeDuration)
	prometheus.MustRegister(ActiveFiltersApplied)
	prometheus.MustRegister(TermLookups)
}
