package internal

import (
	"duitku/entity"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the relay's Prometheus collectors on a private registry.
// A nil *Metrics records nothing.
type Metrics struct {
	registry           *prometheus.Registry
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	notificationsTotal *prometheus.CounterVec
	gatewayDuration    *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duitku_relay_requests_total",
				Help: "Total number of inbound requests by route and status class",
			},
			[]string{"route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "duitku_relay_request_duration_seconds",
				Help:    "Inbound request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		notificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duitku_relay_notifications_total",
				Help: "Gateway notifications by outcome",
			},
			[]string{"outcome"},
		),
		gatewayDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "duitku_relay_gateway_duration_seconds",
				Help:    "Outbound gateway call duration by operation and response code",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "code"},
		),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRequest(route string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, getStatusLabel(statusCode)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Metrics) RecordNotification(outcome *entity.Outcome) {
	if m == nil || outcome == nil {
		return
	}
	label := string(outcome.Reason)
	if outcome.Accepted {
		label = string(outcome.Status)
	}
	m.notificationsTotal.WithLabelValues(label).Inc()
}

// RecordGatewayCall takes code 0 for calls that got no response.
func (m *Metrics) RecordGatewayCall(operation string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.gatewayDuration.WithLabelValues(operation, strconv.Itoa(code)).Observe(duration.Seconds())
}

func getStatusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "unknown"
}
