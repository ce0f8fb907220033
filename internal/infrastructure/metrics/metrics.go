// Package metrics expone contadores Prometheus de la API en un registro propio.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los colectores de la aplicación.
type Metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	auditFailures *prometheus.CounterVec
}

// New registra los colectores (más los de runtime y proceso) en un registro nuevo.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "obras_http_requests_total",
			Help: "Peticiones atendidas por acción y código HTTP.",
		}, []string{"action", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "obras_http_request_duration_seconds",
			Help:    "Latencia de las peticiones por acción.",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),
		auditFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "obras_audit_failures_total",
			Help: "Escrituras de auditoría fallidas por hoja.",
		}, []string{"sheet"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.auditFailures,
	)
	return m
}

// ObserveRequest registra una petición terminada.
func (m *Metrics) ObserveRequest(action, status string, seconds float64) {
	m.requests.WithLabelValues(action, status).Inc()
	m.duration.WithLabelValues(action).Observe(seconds)
}

// AuditFailure cuenta un fallo de auditoría en sheet.
func (m *Metrics) AuditFailure(sheet string) {
	m.auditFailures.WithLabelValues(sheet).Inc()
}

// Handler sirve el registro en formato de exposición de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry expone el registro (tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
