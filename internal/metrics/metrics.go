package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	BackendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_requests_total",
		Help: "Requests issued against the storefront backend, by operation and outcome",
	}, []string{"operation", "outcome"})

	CollectionResyncs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collection_resyncs_total",
		Help: "Full collection re-fetches triggered by page loads and mutations",
	}, []string{"collection"})
)

func Init() {
	prometheus.MustRegister(BackendRequests, CollectionResyncs)
}
