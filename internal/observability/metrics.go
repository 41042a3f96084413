package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CatalogLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clap_catalog_lookups_total",
			Help: "Catalog part lookups by outcome (found, missing, error)",
		},
		[]string{"outcome"},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clap_generation_requests_total",
			Help: "Generation service round trips by outcome (ok, error)",
		},
		[]string{"outcome"},
	)

	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clap_generation_duration_seconds",
			Help:    "Wall time of one generation round trip",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func Start(port string) {
	prometheus.MustRegister(CatalogLookupsTotal, GenerationRequestsTotal, GenerationDuration)
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, nil)
}
