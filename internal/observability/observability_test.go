package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"customer-dashboard/internal/config"
)

func TestNewLoggerTo_Formats(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "info", Format: "json"})
	logger.Debug("hidden")
	logger.Info("shown", "k", "v")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "shown" || entry["k"] != "v" || entry["service"] != "customer-dashboard" {
		t.Errorf("unexpected entry %v", entry)
	}

	buf.Reset()
	text := NewLoggerTo(&buf, config.LoggerConfig{Level: "debug", Format: "text"})
	text.Debug("visible")
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Errorf("text handler output = %q", buf.String())
	}
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	if got := GetRequestID(ctx); got != "" {
		t.Errorf("GetRequestID() on empty context = %q", got)
	}
	ctx = WithRequestID(ctx, "abc")
	if got := GetRequestID(ctx); got != "abc" {
		t.Errorf("GetRequestID() = %q, want abc", got)
	}
}

func TestSpan_Nesting(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "request")
	_, child := StartSpan(ctx, "recompute")

	if child.TraceID != parent.TraceID {
		t.Error("child should share the parent trace id")
	}
	if child.ParentID != parent.SpanID {
		t.Error("child should point at the parent span")
	}
	if GetSpan(ctx) != parent {
		t.Error("GetSpan should return the span stored in the context")
	}

	child.SetTag("rows", "3")
	child.SetError(errors.New("boom"))
	child.Finish()

	if child.Status != SpanStatusError || child.Error != "boom" {
		t.Errorf("status = %s, error = %q", child.Status, child.Error)
	}
	if child.Tag("rows") != "3" {
		t.Errorf("Tag(rows) = %q", child.Tag("rows"))
	}
	if child.Duration < 0 {
		t.Error("duration should not be negative")
	}
}
