package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.IncScheduled("reminder")
	m.IncScheduled("reminder")
	m.IncScheduled("expiry")
	m.AddCancelled(3)
	m.IncFailure("expired")
	m.IncFired()
	m.ObserveSync("ok", 150*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	checks := []struct {
		name, label, value string
		want               float64
	}{
		{"notifications_scheduled_total", "kind", "reminder", 2},
		{"notifications_scheduled_total", "kind", "expiry", 1},
		{"notifications_schedule_failures_total", "reason", "expired", 1},
		{"notification_sync_runs_total", "result", "ok", 1},
		{"notifications_cancelled_total", "", "", 3},
		{"notifications_fired_total", "", "", 1},
	}
	for _, c := range checks {
		got, err := fetchCounterValue(mfs, c.name, c.label, c.value)
		if err != nil {
			t.Fatalf("fetch %s: %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s{%s=%s}: expected %v, got %v", c.name, c.label, c.value, c.want, got)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.IncScheduled("expiry")
	m.AddCancelled(1)
	m.IncFailure("")
	m.IncFired()
	m.ObserveSync("ok", time.Second)

	unregistered := New(nil)
	unregistered.IncScheduled("expiry")
	unregistered.ObserveSync("failed", time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if label == "" || matchesLabel(metric.GetLabel(), label, value) {
				return metric.GetCounter().GetValue(), nil
			}
		}
		return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
	}
	return 0, fmt.Errorf("metric %q not found", name)
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, l := range labels {
		if l.GetName() == name && l.GetValue() == value {
			return true
		}
	}
	return false
}
