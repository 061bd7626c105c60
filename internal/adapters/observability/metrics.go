package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roomrate", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "roomrate", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roomrate", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels/stale/invalid."},
		[]string{"cache", "event"},
	)
	PricingCalcs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roomrate", Name: "pricing_calculations_total", Help: "Price computations by strategy and outcome."},
		[]string{"strategy", "outcome"}, // outcome: calculated|redis|memory|error
	)
	PricingLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "roomrate", Name: "pricing_calculation_duration_seconds",
			Help:    "Price computation duration seconds (cache hits included).",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)
	WarmRuns = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "roomrate", Name: "cache_warm_runs_total", Help: "Completed cache warm-up runs."},
	)
	WarmRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roomrate", Name: "cache_warm_requests_total", Help: "Warm-up price computations."},
		[]string{"outcome"}, // ok|error
	)
)

func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, CacheEvents, PricingCalcs, PricingLatency, WarmRuns, WarmRequests)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del|stale|invalid
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObservePricing(strategy, outcome string, dur time.Duration) {
	PricingCalcs.WithLabelValues(strategy, outcome).Inc()
	PricingLatency.WithLabelValues(strategy).Observe(dur.Seconds())
}

func ObserveWarmRun(requests, failures int, _ time.Duration) {
	WarmRuns.Inc()
	WarmRequests.WithLabelValues("ok").Add(float64(requests - failures))
	WarmRequests.WithLabelValues("error").Add(float64(failures))
}
