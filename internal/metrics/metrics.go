// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the dispatch counters exposed on /metrics.
type Metrics struct {
	DispatchRuns   prometheus.Counter
	MessagesSent   *prometheus.CounterVec
	MessagesFailed *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DispatchRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "campaignhub_dispatch_runs_total",
			Help: "Completed schedule dispatch runs.",
		}),
		MessagesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campaignhub_messages_sent_total",
			Help: "Messages the delivery gateway reported as sent.",
		}, []string{"channel"}),
		MessagesFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "campaignhub_messages_failed_total",
			Help: "Messages the delivery gateway reported as failed.",
		}, []string{"channel"}),
	}
}

// NewNop returns metrics backed by a throwaway registry, for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
