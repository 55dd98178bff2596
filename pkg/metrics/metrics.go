// Package metrics exposes the prometheus collectors of the storefront.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the storefront collectors. A nil *Metrics is a no-op.
type Metrics struct {
	cartOps     *prometheus.CounterVec
	payments    *prometheus.CounterVec
	catalogSync prometheus.Histogram
	syncedTotal prometheus.Counter
}

// New registers the collectors on reg. A nil registerer yields a no-op value.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_operations_total",
		Help: "Cart mutations by operation and outcome.",
	}, []string{"op", "outcome"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_payments_total",
		Help: "Payment attempts by method and outcome.",
	}, []string{"method", "outcome"})
	catalogSync := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_catalog_sync_duration_seconds",
		Help:    "Duration of a full catalog sync.",
		Buckets: prometheus.DefBuckets,
	})
	syncedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_catalog_products_synced_total",
		Help: "Products written by catalog syncs.",
	})
	reg.MustRegister(cartOps, payments, catalogSync, syncedTotal)
	return &Metrics{
		cartOps:     cartOps,
		payments:    payments,
		catalogSync: catalogSync,
		syncedTotal: syncedTotal,
	}
}

// CartOp counts a cart mutation.
func (m *Metrics) CartOp(op string, ok bool) {
	if m == nil || m.cartOps == nil {
		return
	}
	m.cartOps.WithLabelValues(op, outcome(ok)).Inc()
}

// Payment counts a payment attempt.
func (m *Metrics) Payment(method string, ok bool) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.WithLabelValues(normalizeLabel(method), outcome(ok)).Inc()
}

// CatalogSynced records a finished sync.
func (m *Metrics) CatalogSynced(products int, took time.Duration) {
	if m == nil || m.catalogSync == nil {
		return
	}
	m.catalogSync.Observe(took.Seconds())
	m.syncedTotal.Add(float64(products))
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
