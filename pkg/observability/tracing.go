package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/brownian/pkg/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/aretw0/brownian/pkg/observability"

// TracingConfig governs how interval tracing is initialised.
type TracingConfig struct {
	// Exporter is "none" or "stdout".
	Exporter    string
	ServiceName string
	SampleRatio float64
	// Writer receives stdout spans. Defaults to os.Stderr.
	Writer io.Writer
}

// InitTracing installs a global tracer provider for cfg and returns a function
// that flushes and stops it.
func InitTracing(ctx context.Context, cfg TracingConfig, logger *slog.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	switch strings.ToLower(cfg.Exporter) {
	case "", "none":
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	case "stdout":
	default:
		return nil, fmt.Errorf("unsupported tracing exporter: %s", cfg.Exporter)
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithoutTimestamps())
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	service := cfg.ServiceName
	if service == "" {
		service = "brownian"
	}
	res, err := resource.New(ctx, resource.WithAttributes(attribute.String("service.name", service)))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing enabled", "exporter", cfg.Exporter, "service_name", service, "sample_ratio", ratio)
	return tp.Shutdown, nil
}

// ShutdownTracing invokes shutdown with a bounded timeout, logging any failure.
func ShutdownTracing(ctx context.Context, shutdown func(context.Context) error, logger *slog.Logger) {
	if shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil && logger != nil {
		logger.Warn("tracing shutdown failed", "error", err)
	}
}

// NamedProcess is a process that carries a name.
type NamedProcess interface {
	ports.Process
	Name() string
}

// Traced wraps proc so every InitialState and Update call runs in its own span.
// A nil tp selects the global provider.
func Traced(proc NamedProcess, tp trace.TracerProvider) NamedProcess {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &tracedProcess{NamedProcess: proc, tracer: tp.Tracer(tracerName)}
}

type tracedProcess struct {
	NamedProcess
	tracer trace.Tracer
}

func (p *tracedProcess) InitialState() (map[string]any, error) {
	_, span := p.tracer.Start(context.Background(), "brownian.initial_state",
		trace.WithAttributes(attribute.String("process", p.Name())))
	defer span.End()

	state, err := p.NamedProcess.InitialState()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return state, err
}

func (p *tracedProcess) Update(ctx context.Context, state map[string]any, interval float64) (map[string]any, error) {
	ctx, span := p.tracer.Start(ctx, "brownian.update", trace.WithAttributes(
		attribute.String("process", p.Name()),
		attribute.Float64("interval", interval),
	))
	defer span.End()

	update, err := p.NamedProcess.Update(ctx, state, interval)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return update, nil
}
