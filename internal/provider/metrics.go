package provider

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Provider HTTP calls by endpoint and resulting status",
		},
		[]string{"endpoint", "status"},
	)
	cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_cache_hits_total",
			Help: "Provider results served from the in-memory cache within TTL",
		},
		[]string{"endpoint"},
	)
	staleFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_stale_fallbacks_total",
			Help: "Network failures answered with the last cached result",
		},
		[]string{"endpoint"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Provider HTTP round trip latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(cacheHitsTotal)
	prometheus.MustRegister(staleFallbacksTotal)
	prometheus.MustRegister(requestDuration)
}
