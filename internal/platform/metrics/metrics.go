package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the operational counters the incident core exposes.
// Audit journal fallbacks and decrypt failures are alert conditions, not
// just trends, so they get dedicated counters.
type Collector struct {
	registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AccessDenied    prometheus.Counter
	AuditFallbacks  prometheus.Counter
	AuditDropped    prometheus.Counter
	DecryptFailures prometheus.Counter
	Submissions     *prometheus.CounterVec
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "speakup_requests_total",
			Help: "HTTP requests by status class.",
		}, []string{"status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "speakup_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		AccessDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "speakup_access_denied_total",
			Help: "Denied report reads and transitions.",
		}),
		AuditFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "speakup_audit_journal_fallback_total",
			Help: "Audit entries written to the local journal after a store failure.",
		}),
		AuditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "speakup_audit_dropped_total",
			Help: "Audit entries lost entirely. Must stay at zero.",
		}),
		DecryptFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "speakup_contact_decrypt_failure_total",
			Help: "Contact envelopes that failed authentication on read.",
		}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "speakup_report_submissions_total",
			Help: "Accepted submissions by severity.",
		}, []string{"severity"}),
	}
	c.registry.MustRegister(
		c.Requests,
		c.RequestDuration,
		c.AccessDenied,
		c.AuditFallbacks,
		c.AuditDropped,
		c.DecryptFailures,
		c.Submissions,
	)
	return c
}

// ObserveRequest records one served request. Status is bucketed by class so
// the label set stays small.
func (c *Collector) ObserveRequest(method string, status int, duration time.Duration) {
	c.Requests.WithLabelValues(fmt.Sprintf("%dxx", status/100)).Inc()
	c.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
