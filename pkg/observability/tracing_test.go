package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/aretw0/brownian"
	"github.com/aretw0/brownian/pkg/config"
	"github.com/aretw0/brownian/pkg/domain"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracedUpdateSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	cfg := config.Default()
	cfg.ModelPath = "../../models/redgreen.txt"
	cfg.Seed = 5
	proc, err := brownian.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = proc.Close() })

	traced := Traced(proc, tp)
	if traced.Name() != proc.Name() {
		t.Errorf("name = %q, want %q", traced.Name(), proc.Name())
	}

	state, err := traced.InitialState()
	if err != nil {
		t.Fatalf("InitialState: %v", err)
	}
	if _, err := traced.Update(context.Background(), state, 1); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := traced.Update(context.Background(), state, 0); !errors.Is(err, domain.ErrInvalidInterval) {
		t.Fatalf("Update(0) err = %v, want ErrInvalidInterval", err)
	}

	spans := exp.GetSpans()
	if len(spans) != 3 {
		t.Fatalf("got %d spans, want 3", len(spans))
	}
	if spans[0].Name != "brownian.initial_state" || spans[1].Name != "brownian.update" {
		t.Errorf("span names = %q, %q", spans[0].Name, spans[1].Name)
	}
	if spans[1].Status.Code == codes.Error {
		t.Errorf("successful update marked as error")
	}
	if spans[2].Status.Code != codes.Error || len(spans[2].Events) == 0 {
		t.Errorf("failed update span: status %v, %d events", spans[2].Status.Code, len(spans[2].Events))
	}
}

func TestInitTracing(t *testing.T) {
	ctx := context.Background()

	shutdown, err := InitTracing(ctx, TracingConfig{Exporter: "none"}, nil)
	if err != nil {
		t.Fatalf("InitTracing(none): %v", err)
	}
	if err := shutdown(ctx); err != nil {
		t.Errorf("noop shutdown: %v", err)
	}

	if _, err := InitTracing(ctx, TracingConfig{Exporter: "jaeger"}, nil); err == nil {
		t.Error("unknown exporter accepted")
	}

	var buf bytes.Buffer
	shutdown, err = InitTracing(ctx, TracingConfig{Exporter: "stdout", Writer: &buf}, nil)
	if err != nil {
		t.Fatalf("InitTracing(stdout): %v", err)
	}
	t.Cleanup(func() { _, _ = InitTracing(ctx, TracingConfig{}, nil) })

	cfg := config.Default()
	cfg.ModelPath = "../../models/decay.txt"
	proc, err := brownian.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer proc.Close()

	if _, err := Traced(proc, nil).InitialState(); err != nil {
		t.Fatalf("InitialState: %v", err)
	}
	ShutdownTracing(ctx, shutdown, nil)
	if !bytes.Contains(buf.Bytes(), []byte("brownian.initial_state")) {
		t.Errorf("stdout exporter output missing span: %s", buf.String())
	}
}
