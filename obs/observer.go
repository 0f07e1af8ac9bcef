// Package obs provides the passive metrics/trace sink the repositories
// invoke around each operation. Observers never influence control flow; a
// broken exporter costs visibility, not correctness.
package obs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// EndFn closes a span or stops a duration measurement.
type EndFn func()

// Observer is invoked by the repositories around every cache/store
// interaction.
type Observer interface {
	// Span opens a trace span covering one repository operation.
	Span(ctx context.Context, name string) (context.Context, EndFn)
	// CacheHit records whether a read was served from cache.
	CacheHit(ctx context.Context, entity string, hit bool)
	// DBOp counts one store round-trip and measures its duration until the
	// returned EndFn runs.
	DBOp(ctx context.Context, entity, op string) EndFn
}

// OTel is the OpenTelemetry-backed Observer.
type OTel struct {
	tracer   trace.Tracer
	dbOps    metric.Int64Counter
	dbTiming metric.Float64Histogram
}

// NewOTel builds an observer on the globally registered tracer and meter
// providers. The name scopes the instrumentation, typically the module path.
func NewOTel(name string) (*OTel, error) {
	meter := otel.Meter(name)
	dbOps, err := meter.Int64Counter("db.requests",
		metric.WithDescription("store round-trips by entity and operation"))
	if err != nil {
		return nil, err
	}
	dbTiming, err := meter.Float64Histogram("db.request.duration",
		metric.WithDescription("store round-trip duration in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &OTel{
		tracer:   otel.Tracer(name),
		dbOps:    dbOps,
		dbTiming: dbTiming,
	}, nil
}

func (o *OTel) Span(ctx context.Context, name string) (context.Context, EndFn) {
	ctx, span := o.tracer.Start(ctx, name)
	return ctx, func() { span.End() }
}

func (o *OTel) CacheHit(ctx context.Context, entity string, hit bool) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Bool("cache.hit", hit),
		attribute.String("entity", entity),
	)
}

func (o *OTel) DBOp(ctx context.Context, entity, op string) EndFn {
	attrs := metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("db.operation", op),
	)
	o.dbOps.Add(ctx, 1, attrs)
	start := time.Now()
	return func() {
		o.dbTiming.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

// Nop is an Observer that records nothing.
type Nop struct{}

func (Nop) Span(ctx context.Context, _ string) (context.Context, EndFn) {
	return ctx, func() {}
}
func (Nop) CacheHit(context.Context, string, bool) {}
func (Nop) DBOp(context.Context, string, string) EndFn {
	return func() {}
}
