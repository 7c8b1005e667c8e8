// Package metrics provides Prometheus metrics for the card search proxy.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tcg_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Search Cache Metrics
	SearchCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_search_cache_lookups_total",
			Help: "Search cache lookups by result",
		},
		[]string{"provider", "result"}, // result: "hit" or "miss"
	)

	SearchCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tcg_search_cache_entries",
			Help: "Number of entries currently held in the search cache",
		},
	)

	SearchCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tcg_search_cache_evictions_total",
			Help: "Expired search cache entries dropped by eviction scans",
		},
	)

	// Upstream Provider Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_upstream_requests_total",
			Help: "Upstream provider requests by outcome",
		},
		[]string{"provider", "outcome"}, // outcome: "success" or an error kind
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tcg_upstream_request_duration_seconds",
			Help:    "Upstream provider request latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider"},
	)

	UpstreamRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_upstream_retries_total",
			Help: "Upstream requests retried after a transient failure",
		},
		[]string{"provider"},
	)

	PriceTrackerQuotaRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tcg_pricetracker_quota_remaining",
			Help: "Remaining local pricetracker request budget",
		},
	)

	PriceTrackerQuotaLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tcg_pricetracker_quota_limit",
			Help: "Daily pricetracker request limit",
		},
	)

	// Collection Metrics
	CollectionCardsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tcg_collection_cards_total",
			Help: "Total number of cards in collection",
		},
	)

	CollectionValueUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tcg_collection_value_usd",
			Help: "Total estimated value of collection in USD",
		},
	)

	CollectionPricelessCards = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tcg_collection_priceless_cards",
			Help: "Cards in the collection with no resolvable price",
		},
	)
)
