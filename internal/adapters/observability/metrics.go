package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"directboost/internal/domain"
)

const namespace = "directboost"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "pipeline_runs_total", Help: "Offer generation runs by outcome."},
		[]string{"status"},
	)
	PipelineLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "pipeline_duration_seconds",
			Help:    "Offer generation run duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	PipelineFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "pipeline_failures_total", Help: "Failed offer generation runs by cause."},
		[]string{"reason"}, // reason: not_found|validation|canceled|internal
	)
	RowSkips = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "forecast_rows_skipped_total", Help: "Forecast rows skipped by the matcher."},
		[]string{"reason"},
	)
	OffersGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "offers_generated_total", Help: "Persisted offers by type."},
		[]string{"type"},
	)
	DiscountPct = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "offer_discount_pct",
			Help:    "Discount percentage of generated discount offers.",
			Buckets: []float64{5, 10, 15, 20, 25, 30, 40, 50},
		},
	)
)

// Serve exposes the metrics registry on addr for processes without an HTTP API.
// An empty addr disables it and returns nil.
func Serve(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	reg := InitRegistry()
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		PipelineRuns, PipelineLatency, PipelineFailures, RowSkips, OffersGenerated, DiscountPct)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObservePipeline(status string, dur time.Duration) {
	PipelineRuns.WithLabelValues(status).Inc()
	PipelineLatency.WithLabelValues(status).Observe(dur.Seconds())
}

func ObserveRowSkips(skips map[string]int) {
	for reason, n := range skips {
		if n > 0 {
			RowSkips.WithLabelValues(reason).Add(float64(n))
		}
	}
}

func ObserveOffers(offers []domain.FinalOffer) {
	for _, o := range offers {
		OffersGenerated.WithLabelValues(string(o.OfferType)).Inc()
		if o.OfferType == domain.OfferDiscount {
			DiscountPct.Observe(o.DiscountPct)
		}
	}
}

func ObserveFailure(err error) {
	if err != nil {
		PipelineFailures.WithLabelValues(LabelErr(err)).Inc()
	}
}

// LabelErr maps an error to a low-cardinality metric label.
func LabelErr(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case domain.IsValidation(err):
		return "validation"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
