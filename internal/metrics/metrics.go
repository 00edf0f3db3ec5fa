package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder interface {
	ObserveRequest(route, method string, status int, duration time.Duration)
	ObserveReminderScan(due int, duration time.Duration)
	IncReminderOutcome(outcome string)
}

// Reminder outcome labels.
const (
	OutcomeAdvanced    = "advanced"
	OutcomeDeactivated = "deactivated"
	OutcomeInvalid     = "invalid_pattern"
	OutcomeConflict    = "conflict"
	OutcomeFailed      = "failed"
)

type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	scanDuration     prometheus.Histogram
	dueReminders     prometheus.Gauge
	reminderOutcomes *prometheus.CounterVec
	gatherer         prometheus.Gatherer
}

func (m *Metrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(route, method, statusBucket(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

func (m *Metrics) ObserveReminderScan(due int, duration time.Duration) {
	m.dueReminders.Set(float64(due))
	m.scanDuration.Observe(duration.Seconds())
}

func (m *Metrics) IncReminderOutcome(outcome string) {
	m.reminderOutcomes.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func statusBucket(code int) string {
	if code < 100 || code > 599 {
		return strconv.Itoa(code)
	}
	return strconv.Itoa(code/100) + "xx"
}

// New registers the collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "journal_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "method", "status"}),

		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "journal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),

		scanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "journal_reminder_scan_duration_seconds",
			Help:    "Duration of one reminder scan in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		dueReminders: f.NewGauge(prometheus.GaugeOpts{
			Name: "journal_reminders_due",
			Help: "Number of reminders found due by the last scan",
		}),

		reminderOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "journal_reminder_outcomes_total",
			Help: "Due reminders processed, by outcome",
		}, []string{"outcome"}),

		gatherer: reg,
	}
}

// Noop discards everything. Used when metrics are disabled.
type Noop struct{}

func (Noop) ObserveRequest(string, string, int, time.Duration) {}
func (Noop) ObserveReminderScan(int, time.Duration)            {}
func (Noop) IncReminderOutcome(string)                         {}
