// Package metrics holds the Prometheus collectors for the inventory core.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors is nil-safe: a nil *Collectors or one built without a registerer
// records nothing.
type Collectors struct {
	checkouts         *prometheus.CounterVec
	decisions         *prometheus.CounterVec
	stockRecompute    prometheus.Histogram
	insufficientStock prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Collectors {
	if reg == nil {
		return &Collectors{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_checkouts_total",
		Help: "Checkout attempts by result.",
	}, []string{"result"})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_decisions_total",
		Help: "Owner decisions by subject and outcome.",
	}, []string{"subject", "decision"})
	stockRecompute := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_stock_recompute_seconds",
		Help:    "Time spent deriving current stock from the ledger.",
		Buckets: prometheus.DefBuckets,
	})
	insufficientStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_insufficient_stock_total",
		Help: "Operations refused because stock would go negative.",
	})
	reg.MustRegister(checkouts, decisions, stockRecompute, insufficientStock)
	return &Collectors{
		checkouts:         checkouts,
		decisions:         decisions,
		stockRecompute:    stockRecompute,
		insufficientStock: insufficientStock,
	}
}

func (c *Collectors) Checkout(result string) {
	if c == nil || c.checkouts == nil {
		return
	}
	c.checkouts.WithLabelValues(normalizeLabel(result)).Inc()
}

// Decision counts an approve or reject on a movement, request or reversal.
func (c *Collectors) Decision(subject, decision string) {
	if c == nil || c.decisions == nil {
		return
	}
	c.decisions.WithLabelValues(normalizeLabel(subject), normalizeLabel(decision)).Inc()
}

func (c *Collectors) ObserveStockRecompute(d time.Duration) {
	if c == nil || c.stockRecompute == nil {
		return
	}
	c.stockRecompute.Observe(d.Seconds())
}

func (c *Collectors) InsufficientStock() {
	if c == nil || c.insufficientStock == nil {
		return
	}
	c.insufficientStock.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
