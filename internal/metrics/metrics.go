package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashlog"

// Registry is the process-wide registry served on /metrics.
var Registry = prometheus.NewRegistry()

// AppInfo exposes build information as labels; the value is always 1.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date", "component"},
)

// Ingestion metrics
var (
	EntriesIngestedTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_ingested_total",
			Help:      "Total number of usage entries accepted by the ingestion endpoint",
		},
	)

	IngestRejectedTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_rejected_total",
			Help:      "Total number of ingestion requests that did not store an entry",
		},
		[]string{"reason"}, // reason: missing_fields|decode|store|unauthorized|panic
	)
)

// Store metrics
var (
	StoreOperationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of entry store operations",
		},
		[]string{"backend", "operation", "result"}, // result: success|failure
	)

	StoreOperationDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Entry store operation latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"backend", "operation"},
	)
)

// Sender metrics
var (
	SendsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sender_sends_total",
			Help:      "Total number of send attempts by outcome",
		},
		[]string{"result"}, // result: success|status|connection|no_tokens|error
	)

	SendDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sender_send_duration_seconds",
			Help:      "Latency of POSTs to the receiver in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	TokenRequestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_requests_total",
			Help:      "Total number of identity provider token requests by outcome",
		},
		[]string{"result"}, // result: success|missing_config|failure
	)

	LastSuccessfulSend = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sender_last_success_timestamp_seconds",
			Help:      "Unix time of the last send the receiver accepted",
		},
	)
)

// Init registers runtime collectors and records build information. It must
// be called at most once per process.
func Init(version, commit, buildDate, component string) {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	AppInfo.WithLabelValues(version, commit, buildDate, component).Set(1)
}

// Result maps an error to the success|failure label used by store metrics.
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
