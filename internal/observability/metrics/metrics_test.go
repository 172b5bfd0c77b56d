package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("operation", "create"),
		attribute.String("meter_id", "456"),
		attribute.String("outcome", "success"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "operation" && attrs[1].Key != "operation" {
		t.Fatalf("expected operation to be retained")
	}
	if attrs[0].Key != "outcome" && attrs[1].Key != "outcome" {
		t.Fatalf("expected outcome to be retained")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordMeterOperation(context.Background(), "create", OutcomeSuccess)
	m.RecordListPage(context.Background(), 3)

	var h *HTTPMetrics
	h.Observe("list", "GET", 200, time.Millisecond)
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.RecordMeterOperation(context.Background(), "delete", OutcomeRejected)
}

func TestHTTPMetricsObserve(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newHTTPMetrics(registry, Config{ServiceName: "metr", Environment: "test"})

	m.Observe("list", "get", 200, 15*time.Millisecond)
	m.Observe("list", "GET", 200, 20*time.Millisecond)
	m.Observe("", "POST", 400, time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("list", "GET", "200")); got != 2 {
		t.Fatalf("expected 2 list requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("unknown", "POST", "400")); got != 1 {
		t.Fatalf("expected 1 unknown request, got %v", got)
	}
	if count := testutil.CollectAndCount(m.duration); count != 2 {
		t.Fatalf("expected 2 histogram series, got %d", count)
	}
}
