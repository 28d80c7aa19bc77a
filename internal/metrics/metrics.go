// Package metrics exposes Prometheus counters for store, timer and reminder
// events.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements store.Observer, timer.Observer and reminder.Observer.
type Collector struct {
	records          *prometheus.CounterVec
	storageFailures  *prometheus.CounterVec
	timerSessions    *prometheus.CounterVec
	feedingDuration  prometheus.Histogram
	tickPanics       prometheus.Counter
	remindersFired   *prometheus.CounterVec
	remindersSkipped *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "babylog_records_total",
			Help: "Record mutations by category and operation.",
		}, []string{"category", "op"}),
		storageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "babylog_storage_failures_total",
			Help: "Failed backend operations.",
		}, []string{"op"}),
		timerSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "babylog_timer_sessions_total",
			Help: "Feeding timer sessions by outcome.",
		}, []string{"outcome"}),
		feedingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "babylog_timer_feeding_duration_seconds",
			Help:    "Duration of stopped feeding timer sessions.",
			Buckets: []float64{60, 300, 600, 900, 1200, 1800, 2700, 3600},
		}),
		tickPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "babylog_timer_tick_panics_total",
			Help: "Recovered panics in timer tick callbacks.",
		}),
		remindersFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "babylog_reminders_fired_total",
			Help: "Reminders delivered to the notifier.",
		}, []string{"category"}),
		remindersSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "babylog_reminders_suppressed_total",
			Help: "Due reminders held back by the permission gate.",
		}, []string{"category", "reason"}),
	}

	reg.MustRegister(
		c.records,
		c.storageFailures,
		c.timerSessions,
		c.feedingDuration,
		c.tickPanics,
		c.remindersFired,
		c.remindersSkipped,
	)
	return c
}

func (c *Collector) RecordAdded(category string) {
	c.records.WithLabelValues(category, "add").Inc()
}

func (c *Collector) RecordUpdated(category string) {
	c.records.WithLabelValues(category, "update").Inc()
}

func (c *Collector) RecordDeleted(category string) {
	c.records.WithLabelValues(category, "delete").Inc()
}

func (c *Collector) StorageFailure(op string) {
	c.storageFailures.WithLabelValues(op).Inc()
}

func (c *Collector) TimerStarted() {
	c.timerSessions.WithLabelValues("started").Inc()
}

func (c *Collector) TimerStopped(d time.Duration) {
	c.timerSessions.WithLabelValues("stopped").Inc()
	c.feedingDuration.Observe(d.Seconds())
}

func (c *Collector) TimerCancelled() {
	c.timerSessions.WithLabelValues("cancelled").Inc()
}

func (c *Collector) TickPanicked() {
	c.tickPanics.Inc()
}

func (c *Collector) ReminderFired(category string) {
	c.remindersFired.WithLabelValues(category).Inc()
}

func (c *Collector) ReminderSuppressed(category, reason string) {
	c.remindersSkipped.WithLabelValues(category, reason).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NewMux serves Handler under /metrics.
func NewMux(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
