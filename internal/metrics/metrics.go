package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route pattern, method and status",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern and method",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	MongoConnectionState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mongo_connection_state",
		Help: "0 disconnected, 1 connected, 2 connecting, 3 disconnecting",
	})

	MongoConnectAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mongo_connect_attempts_total",
		Help: "Initial MongoDB connection attempts by result",
	}, []string{"result"})

	ListCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "list_cache_lookups_total",
		Help: "List cache lookups by collection and result",
	}, []string{"collection", "result"})
)

// MustRegister registers every collector of the service.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		MongoConnectionState,
		MongoConnectAttempts,
		ListCacheLookups,
	)
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(route, method string, status int, start time.Time) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
}

// ObserveConnectAttempt counts a connect attempt of the connection manager.
func ObserveConnectAttempt(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	MongoConnectAttempts.WithLabelValues(result).Inc()
}

// ObserveCacheLookup counts a list cache hit or miss.
func ObserveCacheLookup(collection string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ListCacheLookups.WithLabelValues(collection, result).Inc()
}
