package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(statusPollsTotal, fetchErrorsTotal, trackersFinishedTotal, fetchLatencyMs)
}

var statusPollsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "generation_status_polls_total",
		Help: "Successful status polls, labeled by observed status.",
	},
	[]string{"status"},
)

var fetchErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "generation_fetch_errors_total",
		Help: "Failed status fetch attempts, labeled by error kind.",
	},
	[]string{"kind"}, // 'auth_missing', 'request_failed', 'malformed'
)

var trackersFinishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "generation_trackers_finished_total",
		Help: "Trackers that reached a terminal state, labeled by outcome.",
	},
	[]string{"outcome"}, // 'completed', 'failed', 'errored'
)

var fetchLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "generation_fetch_latency_ms",
		Help:    "Status fetch latency distribution in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
	},
	[]string{"success"},
)

func ObservePoll(status string) {
	statusPollsTotal.WithLabelValues(norm(status)).Inc()
}

func IncFetchError(kind string) {
	fetchErrorsTotal.WithLabelValues(norm(kind)).Inc()
}

func TrackerFinished(outcome string) {
	trackersFinishedTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveFetchLatency(ms int, success bool) {
	fetchLatencyMs.WithLabelValues(strconv.FormatBool(success)).Observe(float64(ms))
}
