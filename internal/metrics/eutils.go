package metrics

import "github.com/prometheus/client_golang/prometheus"

// E-utilities and pipeline Prometheus metrics.
var (
	EUtilsRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gsefetch",
			Name:      "eutils_requests_total",
			Help:      "Total number of E-utilities requests",
		},
		[]string{"endpoint", "db", "status"}, // status: ok / empty / failed
	)

	EUtilsRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gsefetch",
			Name:      "eutils_request_duration_seconds",
			Help:      "E-utilities request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint", "db"},
	)

	ExperimentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gsefetch",
			Name:      "experiments_total",
			Help:      "Experiments summarized, by outcome",
		},
		[]string{"outcome"}, // "microarray" / "rnaseq" / "error"
	)

	RecordsExtractedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gsefetch",
			Name:      "records_extracted_total",
			Help:      "Rows extracted from summaries",
		},
		[]string{"table"}, // "microarray" / "rnaseq"
	)
)

func init() {
	prometheus.MustRegister(EUtilsRequestsTotal)
	prometheus.MustRegister(EUtilsRequestDuration)
	prometheus.MustRegister(ExperimentsTotal)
	prometheus.MustRegister(RecordsExtractedTotal)
}
