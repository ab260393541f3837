package client

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/adamwoolhether/qbit/client"

const (
	spanLogin    = "qbit.login"
	spanDispatch = "qbit.dispatch"
)

func (c *Client) startSpan(ctx context.Context, name, op, path string) (context.Context, trace.Span) {
	ctx, span := c.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("qbit.op", op),
		attribute.String("url.path", apiPrefix+path),
	)

	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if k, ok := KindOf(err); ok {
			span.SetAttributes(attribute.String("qbit.error.kind", k.String()))
		}
	}
	span.End()
}

// traceID returns the active trace id, or a random one when the span is
// not recording so log lines still carry an id.
func traceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.TraceID().IsValid() {
		return sc.TraceID().String()
	}

	return uuid.New().String()
}
