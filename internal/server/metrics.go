package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for stv_tallies_total.
const (
	OutcomeOK           = "ok"
	OutcomeInvalidInput = "invalid_input"
	OutcomeAmbiguous    = "ambiguous"
	OutcomeStalled      = "stalled"
	OutcomeError        = "error"
)

// Metrics holds the tally collectors registered by a server.
type Metrics struct {
	Tallies  *prometheus.CounterVec
	Rounds   prometheus.Histogram
	Duration prometheus.Histogram
}

// NewMetrics creates the tally collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Tallies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stv_tallies_total",
				Help: "Total number of tallies counted, by outcome",
			},
			[]string{"outcome"},
		),
		Rounds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stv_tally_rounds",
				Help:    "Number of counting rounds per successful tally",
				Buckets: prometheus.LinearBuckets(0, 2, 10),
			},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stv_tally_duration_seconds",
				Help:    "Duration of tally counts",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.Tallies, m.Rounds, m.Duration)
	return m
}

// observe records one finished count.
func (m *Metrics) observe(outcome string, rounds int, elapsed time.Duration) {
	m.Tallies.WithLabelValues(outcome).Inc()
	m.Duration.Observe(elapsed.Seconds())
	if outcome == OutcomeOK {
		m.Rounds.Observe(float64(rounds))
	}
}
