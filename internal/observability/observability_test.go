package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"autosales-dashboard/internal/config"
)

func TestNewLoggerTo_Formats(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "info", Format: "json"})
	logger.Info("hello", "k", "v")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hello" || entry["k"] != "v" {
		t.Errorf("unexpected entry %v", entry)
	}

	buf.Reset()
	logger = NewLoggerTo(&buf, config.LoggerConfig{Level: "warn", Format: "text"})
	logger.Info("dropped")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "dropped") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(buf.String(), "msg=kept") {
		t.Errorf("expected text output, got %q", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := GetRequestID(ctx); got != "abc" {
		t.Errorf("GetRequestID() = %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("expected empty request id, got %q", got)
	}
}

func TestStartSpan_Nesting(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "GET /")
	_, child := StartSpan(ctx, "build report")

	if child.TraceID != parent.TraceID {
		t.Error("child should inherit trace id")
	}
	if child.ParentID != parent.SpanID {
		t.Error("child should reference parent span")
	}
	if len(parent.SpanID) != 16 {
		t.Errorf("expected 16 char span id, got %q", parent.SpanID)
	}

	child.SetTag("report_type", "Yearly Statistics")
	child.SetError(errors.New("boom"))
	child.Finish()

	if child.Status != SpanStatusError || child.Duration == nil {
		t.Errorf("unexpected finished span %+v", child)
	}

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("span", "span", child)
	if !strings.Contains(buf.String(), "span.operation=\"build report\"") {
		t.Errorf("span should log its operation, got %q", buf.String())
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest(http.MethodGet, "/sse/report", http.StatusOK, 15*time.Millisecond)
	m.ObserveReport("Yearly Statistics", 4, 5*time.Millisecond)
	m.ObserveReport("", 0, time.Millisecond)
	m.ChartRenderFailed()
	m.DatasetLoaded(528, time.Second)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := w.Body.String()
	for _, want := range []string{
		`autosales_http_requests_total{method="GET",route="/sse/report",status="200"} 1`,
		`autosales_reports_built_total{charts="4",report_type="Yearly Statistics"} 1`,
		`autosales_reports_built_total{charts="0",report_type="none"} 1`,
		`autosales_chart_render_failures_total 1`,
		`autosales_dataset_records 528`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.ObserveReport("x", 1, time.Millisecond)
	m.ChartRenderFailed()
	m.DatasetLoaded(1, time.Millisecond)
}
