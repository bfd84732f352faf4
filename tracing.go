package pillar

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// storeTracer wraps the OpenTelemetry tracer for action spans. The
// global provider is a no-op until the host process installs one, so
// tracing costs nothing by default.
type storeTracer struct {
	tracer trace.Tracer
}

func newStoreTracer(name string) storeTracer {
	return storeTracer{tracer: otel.Tracer(name)}
}

// start opens a span for one action dispatch.
func (t storeTracer) start(ctx context.Context, action string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "pillar."+action,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("pillar.action", action)),
	)
}

// end records the outcome and closes the span. cacheHit marks dispatches
// that never reached the network.
func (t storeTracer) end(span trace.Span, err error, cacheHit bool) {
	span.SetAttributes(attribute.Bool("pillar.cache_hit", cacheHit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
