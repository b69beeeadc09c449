// Package metrics holds the Prometheus collectors of the bakery admin.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-bakery/pkg/dependent"
	"github.com/goliatone/go-bakery/pkg/inventory"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bakery_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bakery_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})
)

// Product lookup metrics
var (
	LookupRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bakery_lookup_requests_total",
		Help: "Product lookups settled by the dependent field synchronizer, by outcome",
	}, []string{"product_type", "outcome"})
)

// Inventory metrics
var (
	StockTransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bakery_stock_transactions_total",
		Help: "Total number of recorded stock transactions",
	}, []string{"type"})
)

// ObserveLookup counts a settled product load. Resets of the empty type do
// not issue a lookup and are ignored.
func ObserveLookup(event dependent.Event) {
	if event.Outcome == dependent.OutcomeReset {
		return
	}
	LookupRequestsTotal.WithLabelValues(event.ProductType, string(event.Outcome)).Inc()
}

// ObserveTransaction counts a recorded stock movement.
func ObserveTransaction(tx inventory.Transaction) {
	StockTransactionsTotal.WithLabelValues(string(tx.Type)).Inc()
}

// NormalizePath collapses request paths into a bounded label set.
func NormalizePath(path string) string {
	switch {
	case path == "" || path == "/":
		return "/"
	case strings.HasPrefix(path, "/static/"):
		return "/static/*"
	}

	switch strings.TrimSuffix(path, "/") {
	case "/inventory/new", "/transactions", "/transactions/new",
		"/bakery/get-products", "/bakery/get-products/openapi.json",
		"/bakery/product-choices", "/healthz", "/metrics":
		return path
	}
	return "/other"
}
