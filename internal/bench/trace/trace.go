// Package trace records a batch's execution as OpenTelemetry spans written
// to a JSON file under the batch's trace directory.
package trace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	FileName   = "trace.json"
	tracerName = "github.com/DjordjeVuckovic/microbench/internal/bench/trace"
)

type Session struct {
	path     string
	file     *os.File
	provider *sdktrace.TracerProvider
	tracer   oteltrace.Tracer
	span     oteltrace.Span
}

// Start opens <dir>/<runID>/trace.json and begins the batch span. The
// returned context carries that span.
func Start(ctx context.Context, dir, runID, name string) (context.Context, *Session, error) {
	traceDir := filepath.Join(dir, runID)
	if err := os.MkdirAll(traceDir, 0o755); err != nil {
		return ctx, nil, fmt.Errorf("create trace dir: %w", err)
	}
	path := filepath.Join(traceDir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return ctx, nil, fmt.Errorf("create trace file: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		f.Close()
		return ctx, nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	s := &Session{
		path:     path,
		file:     f,
		provider: tp,
		tracer:   tp.Tracer(tracerName),
	}
	ctx, s.span = s.tracer.Start(ctx, name, oteltrace.WithAttributes(
		attribute.String("benchmark.name", name),
		attribute.String("run.id", runID),
	))
	return ctx, s, nil
}

// StartStep begins a child span for one parameter set. A nil session
// returns the context unchanged and a no-op span.
func (s *Session) StartStep(ctx context.Context, index int, params string) (context.Context, oteltrace.Span) {
	if s == nil {
		return ctx, oteltrace.SpanFromContext(context.Background())
	}
	return s.tracer.Start(ctx, fmt.Sprintf("param_set_%d", index), oteltrace.WithAttributes(
		attribute.Int("param_set.index", index),
		attribute.String("param_set.values", params),
	))
}

// Stop ends the batch span, flushes it to disk and returns the trace path.
func (s *Session) Stop(ctx context.Context) (string, error) {
	if s == nil {
		return "", nil
	}
	s.span.End()
	if err := s.provider.Shutdown(ctx); err != nil {
		s.file.Close()
		return "", fmt.Errorf("shutdown tracer provider: %w", err)
	}
	if err := s.file.Close(); err != nil {
		return "", fmt.Errorf("close trace file: %w", err)
	}
	return s.path, nil
}

func (s *Session) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}
