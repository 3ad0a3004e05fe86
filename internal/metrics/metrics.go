package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service
type Metrics struct {
	TransactionsCreated prometheus.Counter
	Outcomes            *prometheus.CounterVec
	AttemptDuration     prometheus.Histogram
	BrowsersActive      prometheus.Gauge
	AttemptsQueued      prometheus.Gauge
	ManualResolutions   prometheus.Counter
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TransactionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "liker_transactions_created_total",
			Help: "Total number of accepted like requests",
		}),
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "liker_fulfillment_outcomes_total",
			Help: "Fulfillment attempts by terminal reason and whether the result was simulated",
		}, []string{"reason", "simulated"}),
		AttemptDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "liker_fulfillment_duration_seconds",
			Help:    "Wall time of one fulfillment attempt",
			Buckets: []float64{0.1, 1, 5, 10, 20, 30, 60, 120, 180},
		}),
		BrowsersActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "liker_browsers_active",
			Help: "Browser processes currently held by fulfillment attempts",
		}),
		AttemptsQueued: factory.NewGauge(prometheus.GaugeOpts{
			Name: "liker_attempts_queued",
			Help: "Dispatched attempts waiting for a browser slot",
		}),
		ManualResolutions: factory.NewCounter(prometheus.CounterOpts{
			Name: "liker_manual_resolutions_total",
			Help: "Transactions completed through manual challenge resolution",
		}),
	}
}

func (m *Metrics) IncrementTransactionsCreated() {
	m.TransactionsCreated.Inc()
}

func (m *Metrics) ObserveOutcome(reason string, simulated bool, elapsed time.Duration) {
	if reason == "" {
		reason = "classified"
	}
	m.Outcomes.WithLabelValues(reason, strconv.FormatBool(simulated)).Inc()
	m.AttemptDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) BrowserAcquired() {
	m.BrowsersActive.Inc()
}

func (m *Metrics) BrowserReleased() {
	m.BrowsersActive.Dec()
}

func (m *Metrics) IncrementManualResolutions() {
	m.ManualResolutions.Inc()
}
