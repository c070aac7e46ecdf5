package tracing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"paracord-hq/gateway/pkg/config"

	"go.opentelemetry.io/otel/trace"
)

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil, "dev"); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestNew_Disabled(t *testing.T) {
	tr, err := New(&config.TracingConfig{Enabled: false}, "dev")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if tr.Enabled() {
		t.Error("Expected disabled tracer")
	}

	ctx, span := tr.Start(context.Background(), "signaling.forward")
	SetError(span, errors.New("boom"))
	span.End()
	if ctx == nil {
		t.Error("Expected non-nil context")
	}
	if err := tr.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestInjectExtract(t *testing.T) {
	tr := NewNoop()

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := http.Header{}
	tr.Inject(ctx, headers)
	want := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	if got := headers.Get("traceparent"); got != want {
		t.Errorf("Expected traceparent %q, got %q", want, got)
	}

	extracted := trace.SpanContextFromContext(tr.Extract(context.Background(), headers))
	if extracted.TraceID() != traceID {
		t.Errorf("Expected trace id %s, got %s", traceID, extracted.TraceID())
	}
}
