package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tokenprices",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tokenprices",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "path"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tokenprices",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Price lookups by token and whether they were served from cache.",
		},
		[]string{"token", "cached"},
	)

	upstreamFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tokenprices",
			Subsystem: "upstream",
			Name:      "fetches_total",
			Help:      "Upstream price requests by token and result.",
		},
		[]string{"token", "result"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tokenprices",
			Subsystem: "upstream",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of upstream price requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 11),
		},
		[]string{"token"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		cacheLookups,
		upstreamFetches,
		upstreamDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registered collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordHTTPRequest(method, path string, status int, d time.Duration) {
	if status == 0 {
		status = http.StatusOK
	}
	p := canonicalPath(path)
	httpRequests.WithLabelValues(strings.ToUpper(method), p, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(strings.ToUpper(method), p).Observe(d.Seconds())
}

func RecordCacheLookup(token string, cached bool) {
	cacheLookups.WithLabelValues(token, strconv.FormatBool(cached)).Inc()
}

// RecordUpstreamFetch counts one upstream attempt. result is "ok" or a short failure class.
func RecordUpstreamFetch(token, result string, d time.Duration) {
	upstreamFetches.WithLabelValues(token, result).Inc()
	upstreamDuration.WithLabelValues(token).Observe(d.Seconds())
}

// canonicalPath keeps label cardinality bounded.
func canonicalPath(raw string) string {
	switch {
	case raw == "/api/prices":
		return raw
	case strings.HasPrefix(raw, "/api/prices/"):
		return "/api/prices/:token"
	case raw == "/healthz", raw == "/readyz", raw == "/metrics":
		return raw
	default:
		return "other"
	}
}
