package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records scheduling activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	scheduled    *prometheus.CounterVec
	cancelled    prometheus.Counter
	failures     *prometheus.CounterVec
	fired        prometheus.Counter
	syncRuns     *prometheus.CounterVec
	syncDuration prometheus.Histogram
}

// New registers the scheduler metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		scheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_scheduled_total",
			Help: "Notifications handed to the store, by kind.",
		}, []string{"kind"}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifications_cancelled_total",
			Help: "Notifications removed from the store.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_schedule_failures_total",
			Help: "Items that ended up with no notification, by reason.",
		}, []string{"reason"}),
		fired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifications_fired_total",
			Help: "Due notifications delivered by the dispatcher.",
		}),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_sync_runs_total",
			Help: "Synchronization passes, by result.",
		}, []string{"result"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "notification_sync_duration_seconds",
			Help:    "Duration of synchronization passes in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.scheduled, m.cancelled, m.failures, m.fired, m.syncRuns, m.syncDuration)
	return m
}

// IncScheduled counts one notification of the given kind.
func (m *Metrics) IncScheduled(kind string) {
	if m == nil || m.scheduled == nil {
		return
	}
	m.scheduled.WithLabelValues(normalizeLabel(kind)).Inc()
}

// AddCancelled counts n removed notifications.
func (m *Metrics) AddCancelled(n int) {
	if m == nil || m.cancelled == nil || n <= 0 {
		return
	}
	m.cancelled.Add(float64(n))
}

// IncFailure counts an item that could not be scheduled.
func (m *Metrics) IncFailure(reason string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncFired counts a delivered notification.
func (m *Metrics) IncFired() {
	if m == nil || m.fired == nil {
		return
	}
	m.fired.Inc()
}

// ObserveSync records one synchronization pass.
func (m *Metrics) ObserveSync(result string, d time.Duration) {
	if m == nil || m.syncRuns == nil {
		return
	}
	m.syncRuns.WithLabelValues(normalizeLabel(result)).Inc()
	m.syncDuration.Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
