package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Adapter metrics
	ItemsScraped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyfloat_items_scraped_total",
			Help: "Total number of raw items emitted by source adapters",
		},
		[]string{"source"},
	)

	ScrapeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyfloat_scrape_errors_total",
			Help: "Total number of failed upstream requests",
		},
		[]string{"source"},
	)

	EndpointHealthy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "polyfloat_endpoint_healthy",
			Help: "1 if the pool endpoint responded to its last health probe",
		},
		[]string{"endpoint"},
	)

	// Queue metrics
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "polyfloat_queue_depth",
			Help: "Current depth of a pipeline queue",
		},
		[]string{"queue"},
	)

	// Processing metrics
	ItemsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "polyfloat_items_processed_total",
			Help: "Total number of news items enriched and persisted",
		},
	)

	ItemsDeduped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "polyfloat_items_deduped_total",
			Help: "Total number of items dropped as duplicate URLs",
		},
	)

	ItemsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "polyfloat_items_purged_total",
			Help: "Total number of items deleted by the retention purge",
		},
	)

	// Fan-out metrics
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "polyfloat_active_connections",
			Help: "Number of live subscriber connections",
		},
	)

	BroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "polyfloat_broadcasts_total",
			Help: "Total number of events broadcast to at least one subscriber",
		},
	)

	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyfloat_deliveries_total",
			Help: "Total number of per-subscriber event deliveries",
		},
		[]string{"status"},
	)

	// API metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyfloat_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"key"},
	)
)
