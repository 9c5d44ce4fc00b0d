package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductsCreated counts products added to the catalogue.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_products_created_total",
		Help: "The total number of products created",
	})

	// TransactionsCreated counts committed transactions by type.
	TransactionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_transactions_created_total",
		Help: "The total number of transactions created",
	}, []string{"type"})

	// StockRejections counts sales rejected for insufficient stock.
	StockRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_stock_rejections_total",
		Help: "The total number of stock changes rejected because stock would go negative",
	})

	// LowStockAlerts counts low-stock notifications raised.
	LowStockAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_low_stock_alerts_total",
		Help: "The total number of low stock alerts raised",
	})

	// AlertsDropped counts alerts whose delivery failed.
	AlertsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_low_stock_alerts_failed_total",
		Help: "The total number of low stock alerts that could not be delivered",
	})

	// HTTPRequestDuration observes request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
