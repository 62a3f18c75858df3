package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records counters for cart mutations and checkouts.
type CartMetrics struct {
	updates   *prometheus.CounterVec
	checkouts *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	updates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_updates_total",
		Help: "Cart line updates by outcome.",
	}, []string{"outcome"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Cart to order conversions by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(updates, checkouts)
	return &CartMetrics{
		updates:   updates,
		checkouts: checkouts,
	}
}

// IncUpdate increments the cart update counter for an outcome
// (updated, deleted, rejected, failed).
func (m *CartMetrics) IncUpdate(outcome string) {
	if m == nil || m.updates == nil {
		return
	}
	m.updates.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncCheckout increments the checkout counter for an outcome (ok, failed).
func (m *CartMetrics) IncCheckout(outcome string) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
