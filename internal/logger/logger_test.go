package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"Warn":    slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(LogConfig{Level: "INFO", Format: "json"}, &buf); err != nil {
		t.Fatalf("init: %v", err)
	}

	Trade(context.Background(), "GOLDBEES", "BUY", 10, 55.5, "SIM-1")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if line["type"] != "TRADE" || line["symbol"] != "GOLDBEES" || line["order_id"] != "SIM-1" {
		t.Fatalf("unexpected fields: %v", line)
	}
}

func TestDebugSuppressedWithoutDetailedLogging(t *testing.T) {
	var buf bytes.Buffer
	_ = InitWithWriter(LogConfig{Level: "DEBUG", Format: "text"}, &buf)

	Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}

	_ = InitWithWriter(LogConfig{Level: "DEBUG", Format: "text", DetailedLogging: true}, &buf)
	Debug(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") || !strings.Contains(buf.String(), "source") {
		t.Fatalf("expected debug line with source, got %q", buf.String())
	}
}

func TestOperationTimerLogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	_ = InitWithWriter(LogConfig{Level: "DEBUG", Format: "json", DetailedLogging: true}, &buf)

	op := StartOperation(context.Background(), "broker.Holdings", "symbol", "GOLDBEES")
	if op.GetContext() == nil {
		t.Fatal("operation context must be set")
	}
	op.End("count", 2)
	if !strings.Contains(buf.String(), `"msg":"Operation completed"`) ||
		!strings.Contains(buf.String(), `"count":2`) || !strings.Contains(buf.String(), `"duration_ms"`) {
		t.Fatalf("missing completion line: %q", buf.String())
	}

	buf.Reset()
	_ = InitWithWriter(LogConfig{Level: "ERROR", Format: "json"}, &buf)
	op = StartOperation(context.Background(), "broker.AvailableCash")
	op.EndWithError(errors.New("margins: timeout"))

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if line["level"] != "ERROR" || line["msg"] != "Operation failed" || line["error"] != "margins: timeout" {
		t.Fatalf("unexpected failure line: %v", line)
	}
}

func TestToAttributesSkipsUnsupported(t *testing.T) {
	attrs := toAttributes([]any{"symbol", "GOLDBEES", "qty", 3, "price", 55.5, "ok", true, 7, "bad-key", "obj", struct{}{}, "dangling"})
	if len(attrs) != 4 {
		t.Fatalf("attrs = %v, want 4 typed attributes", attrs)
	}
}
