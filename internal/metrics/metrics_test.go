package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rcliao/babylog/internal/reminder"
	"github.com/rcliao/babylog/internal/store"
	"github.com/rcliao/babylog/internal/timer"
)

var (
	_ store.Observer    = (*Collector)(nil)
	_ timer.Observer    = (*Collector)(nil)
	_ reminder.Observer = (*Collector)(nil)
)

func TestRecordCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAdded("feeding")
	c.RecordAdded("feeding")
	c.RecordUpdated("feeding")
	c.RecordDeleted("diaper")
	c.StorageFailure("add_record")

	if got := testutil.ToFloat64(c.records.WithLabelValues("feeding", "add")); got != 2 {
		t.Errorf("feeding adds = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.records.WithLabelValues("diaper", "delete")); got != 1 {
		t.Errorf("diaper deletes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.storageFailures.WithLabelValues("add_record")); got != 1 {
		t.Errorf("storage failures = %v, want 1", got)
	}
}

func TestTimerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.TimerStarted()
	c.TimerStopped(12 * time.Minute)
	c.TimerCancelled()
	c.TickPanicked()

	if got := testutil.ToFloat64(c.timerSessions.WithLabelValues("stopped")); got != 1 {
		t.Errorf("stopped sessions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.tickPanics); got != 1 {
		t.Errorf("tick panics = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "babylog_timer_feeding_duration_seconds" {
			found = true
			h := mf.GetMetric()[0].GetHistogram()
			if h.GetSampleCount() != 1 || h.GetSampleSum() != 720 {
				t.Errorf("histogram count=%d sum=%v, want 1 and 720", h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	if !found {
		t.Error("babylog_timer_feeding_duration_seconds metric not found")
	}
}

func TestReminderMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ReminderFired("feeding")
	c.ReminderSuppressed("feeding", "denied")
	c.ReminderSuppressed("feeding", "denied")

	if got := testutil.ToFloat64(c.remindersFired.WithLabelValues("feeding")); got != 1 {
		t.Errorf("fired = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.remindersSkipped.WithLabelValues("feeding", "denied")); got != 2 {
		t.Errorf("suppressed = %v, want 2", got)
	}
}

func TestMuxServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordAdded("sleep")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	NewMux(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `babylog_records_total{category="sleep",op="add"} 1`) {
		t.Errorf("response missing record counter:\n%s", body)
	}
}
