package order

import "github.com/prometheus/client_golang/prometheus"

const (
	resultConfirmed = "confirmed"
	resultShortfall = "shortfall"
	resultEmpty     = "empty"
	resultError     = "error"
)

type Metrics struct {
	Checkouts *prometheus.CounterVec
	Pruned    prometheus.Counter
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Checkouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_checkouts_total",
				Help: "Checkout attempts by result",
			},
			[]string{"result"},
		),
		Pruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "storefront_stock_pruned_total",
				Help: "Products removed from the catalog after selling out",
			},
		),
	}

	reg.MustRegister(m.Checkouts, m.Pruned)
	return m
}

func (m *Metrics) observe(result string) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(result).Inc()
}
