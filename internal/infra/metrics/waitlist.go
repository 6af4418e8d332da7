package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(waitlistSignupsTotal) }

var waitlistSignupsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "waitlist_signups_total",
		Help: "Waitlist signup attempts, labeled by outcome.",
	},
	[]string{"outcome"}, // 'accepted', 'duplicate', 'rejected', 'rate_limited'
)

func IncWaitlistSignup(outcome string) {
	waitlistSignupsTotal.WithLabelValues(norm(outcome)).Inc()
}
