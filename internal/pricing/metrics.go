package pricing

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts pricing activity.
type Metrics struct {
	quotes      prometheus.Counter
	simulations *prometheus.CounterVec
}

// NewMetrics registers pricing collectors on registerer. A nil registerer
// yields unregistered collectors, which is what tests want.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	quotes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "odyssey_pricing_quotes_total",
		Help: "Net price quotes computed outside simulations.",
	})
	simulations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_pricing_simulations_total",
		Help: "Pricing simulation lifecycle events.",
	}, []string{"event"})
	if registerer != nil {
		registerer.MustRegister(quotes, simulations)
	}
	return &Metrics{quotes: quotes, simulations: simulations}
}

func (m *Metrics) quoted() {
	if m == nil {
		return
	}
	m.quotes.Inc()
}

func (m *Metrics) simulation(event string) {
	if m == nil {
		return
	}
	m.simulations.WithLabelValues(event).Inc()
}
