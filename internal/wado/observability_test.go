package wado

import (
	"context"
	"expvar"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"dicomstatic/internal/blob"
)

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

func (c *captureMetricsRecorder) count(op string) int {
	n := 0
	for _, call := range c.calls {
		if call.op == op {
			n++
		}
	}
	return n
}

func TestOperationsObserveMetrics(t *testing.T) {
	ctx := context.Background()
	metrics := &captureMetricsRecorder{}
	store := blob.NewMemory()

	a, err := NewArchive(ctx, store, WithMetrics(metrics))
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	if _, err := a.Ingest(ctx, testObject()); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if !metrics.has("ingest", true) {
		t.Fatal("expected metrics success entry for ingest")
	}

	if _, err := a.Ingest(ctx, testObject().SetString("StudyInstanceUID", "")); err == nil {
		t.Fatal("expected ingest failure for missing study UID")
	}
	if !metrics.has("ingest", false) {
		t.Fatal("expected metrics error entry for failed ingest")
	}

	r := NewRetriever(store, WithMetrics(metrics))
	if _, err := r.GetMetadata(ctx, "1.2.3", "4.5.6", "7.8.9"); err != nil {
		t.Fatalf("GetMetadata: %v", err)
	}
	if !metrics.has("get_metadata", true) {
		t.Fatal("expected metrics success entry for get_metadata")
	}

	if _, err := r.GetFrame(ctx, "1.2.3", "4.5.6", "7.8.9", 99); !IsNotFound(err) {
		t.Fatalf("GetFrame error = %v, want NotFoundError", err)
	}
	if !metrics.has("get_frame", false) {
		t.Fatal("expected metrics error entry for missing frame")
	}

	// The composed accessors observe once, not once per internal read.
	before := metrics.count("get_metadata")
	if _, err := r.GetSeriesMetadata(ctx, "1.2.3", "4.5.6"); err != nil {
		t.Fatalf("GetSeriesMetadata: %v", err)
	}
	if !metrics.has("get_series_metadata", true) {
		t.Fatal("expected metrics success entry for get_series_metadata")
	}
	if got := metrics.count("get_metadata"); got != before {
		t.Fatalf("composed accessor leaked inner get_metadata observations: %d -> %d", before, got)
	}
}

func TestExpvarMetricsRecorderExports(t *testing.T) {
	recorder := NewExpvarMetricsRecorder("")
	if recorder.Name() == "" {
		t.Fatal("expected recorder to have export name")
	}
	recorder.Observe(context.Background(), "test_op", true, 10*time.Millisecond)
	recorder.Observe(context.Background(), "test_op", false, 5*time.Millisecond)

	snapshot := recorder.Snapshot()
	if snapshot.DurationsMS["test_op"] <= 0 {
		t.Fatalf("expected positive duration, snapshot=%+v", snapshot)
	}
	if snapshot.Results["test_op"]["success"] != 1 || snapshot.Results["test_op"]["error"] != 1 {
		t.Fatalf("unexpected results snapshot=%+v", snapshot)
	}

	if v := expvar.Get(recorder.Name()); v == nil {
		t.Fatal("expected expvar export to be registered")
	} else if !strings.Contains(v.String(), "test_op") {
		t.Fatalf("expected expvar output to contain operation: %s", v.String())
	}
}

func TestPrometheusMetricsRecorderExports(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("NewPrometheusMetricsRecorder: %v", err)
	}
	recorder.Observe(context.Background(), "ingest", true, 20*time.Millisecond)
	recorder.Observe(context.Background(), "ingest", true, 5*time.Millisecond)
	recorder.Observe(context.Background(), "get_frame", false, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var sawTotal, sawDuration bool
	for _, mf := range families {
		switch mf.GetName() {
		case "dicomstatic_operations_total":
			sawTotal = true
			for _, m := range mf.GetMetric() {
				labels := map[string]string{}
				for _, lp := range m.GetLabel() {
					labels[lp.GetName()] = lp.GetValue()
				}
				switch {
				case labels["operation"] == "ingest" && labels["success"] == "true":
					if got := m.GetCounter().GetValue(); got != 2 {
						t.Errorf("ingest success counter = %v, want 2", got)
					}
				case labels["operation"] == "get_frame" && labels["success"] == "false":
					if got := m.GetCounter().GetValue(); got != 1 {
						t.Errorf("get_frame error counter = %v, want 1", got)
					}
				}
			}
		case "dicomstatic_operation_duration_seconds":
			sawDuration = true
		}
	}
	if !sawTotal {
		t.Error("dicomstatic_operations_total not gathered")
	}
	if !sawDuration {
		t.Error("dicomstatic_operation_duration_seconds not gathered")
	}

	// Double registration on the same registry must fail loudly.
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}
