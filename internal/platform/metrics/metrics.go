package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "temples",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "temples",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"method", "path"})

	// Core metrics
	RouteEstimates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "temples",
		Subsystem: "routing",
		Name:      "estimates_total",
		Help:      "Route estimates produced, by source (routed or estimated)",
	}, []string{"source"})

	RouteProviderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "temples",
		Subsystem: "routing",
		Name:      "provider_duration_seconds",
		Help:      "Latency of calls to the external routing service",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30},
	})

	LocationResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "temples",
		Subsystem: "search",
		Name:      "resolutions_total",
		Help:      "Location queries resolved, by provenance (service, gazetteer or none)",
	}, []string{"provenance"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "temples",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "temples",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request metrics. pattern maps a request to a low-cardinality
// path label; the raw path is used when it returns "".
func Middleware(next http.Handler, pattern func(*http.Request) string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := ""
		if pattern != nil {
			path = pattern(r)
		}
		if path == "" {
			path = r.URL.Path
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the Prometheus /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
