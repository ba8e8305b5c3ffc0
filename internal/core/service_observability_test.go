package core

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

type metricRecord struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	records []metricRecord
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.records = append(c.records, metricRecord{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, rec := range c.records {
		if rec.op == op && rec.success == success {
			return true
		}
	}
	return false
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	ended []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	return ctx, &captureSpan{tracer: c, op: op}
}

func (c *captureTracer) has(op string, success bool) bool {
	for _, rec := range c.ended {
		if rec.op == op && (rec.err == nil) == success {
			return true
		}
	}
	return false
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

func TestServiceObservesOperations(t *testing.T) {
	ctx := context.Background()
	metrics := &captureMetricsRecorder{}
	tracer := &captureTracer{}

	svc := NewInMemoryService(NewRulesEngine(),
		WithMetricsRecorder(metrics),
		WithTracer(tracer),
	)

	if _, _, err := svc.CreateLocation(ctx, Location{Name: "Main Warehouse"}); err != nil {
		t.Fatalf("create location: %v", err)
	}
	if !metrics.has("create_location", true) {
		t.Fatal("expected success metric for create_location")
	}
	if !tracer.has("create_location", true) {
		t.Fatal("expected success span for create_location")
	}

	// A typeless ledger entry is the one mutation that errors.
	if _, _, err := svc.CreateLedgerEntry(ctx, LedgerEntry{Description: "broken"}); err == nil {
		t.Fatal("expected error for ledger entry without type")
	}
	if !metrics.has("create_ledger_entry", false) {
		t.Fatal("expected error metric for create_ledger_entry")
	}
	if !tracer.has("create_ledger_entry", false) {
		t.Fatal("expected error span for create_ledger_entry")
	}
}

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if !strings.HasPrefix(rec.Name(), "inventorycore_service_metrics_") {
		t.Fatalf("unexpected generated name %q", rec.Name())
	}

	ctx := context.Background()
	rec.Observe(ctx, "record_purchase", true, 5*time.Millisecond)
	rec.Observe(ctx, "record_purchase", false, 3*time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	snap := rec.Snapshot()
	if snap.DurationsMS["record_purchase"] != 8 {
		t.Fatalf("expected 8ms recorded, got %v", snap.DurationsMS["record_purchase"])
	}
	if snap.Results["record_purchase"]["success"] != 1 || snap.Results["record_purchase"]["error"] != 1 {
		t.Fatalf("unexpected result counters: %v", snap.Results["record_purchase"])
	}
	if len(snap.DurationsMS) != 1 {
		t.Fatal("empty operation names must be ignored")
	}
}

func TestJSONTracerEmitsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)

	_, span := tracer.Start(context.Background(), "record_sale")
	span.End(nil)

	entries := tracer.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one span, got %d", len(entries))
	}
	if entries[0].Operation != "record_sale" || entries[0].Status != "success" {
		t.Fatalf("unexpected span: %+v", entries[0])
	}
	if !strings.Contains(buf.String(), `"operation":"record_sale"`) {
		t.Fatalf("expected span written as JSON line, got %q", buf.String())
	}
}
