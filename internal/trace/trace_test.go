package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestSpansExportedOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, false); err != nil {
		t.Fatalf("init: %v", err)
	}

	ctx, span := StartSpan(context.Background(), "engine.Step")
	traceID, _, ok := GetTraceFields(ctx)
	span.End()
	if !ok || traceID == "" {
		t.Fatal("expected trace fields inside a span")
	}

	if err := Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "engine.Step") || !strings.Contains(buf.String(), traceID) {
		t.Fatalf("span not exported: %q", buf.String())
	}
	if Enabled() {
		t.Fatal("tracing should be disabled after shutdown")
	}
}

func TestDisabledTracingIsNoop(t *testing.T) {
	t.Setenv("LOG_TRACING_ENABLED", "false")
	if err := Init(); err != nil {
		t.Fatal(err)
	}
	ctx, span := StartSpan(context.Background(), "noop")
	span.End()
	if _, _, ok := GetTraceFields(ctx); ok {
		t.Fatal("no trace fields expected when disabled")
	}
}
