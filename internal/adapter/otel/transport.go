package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/societyq/societyq/internal/domain"
)

// TracingTransport wraps a domain.Transport with OpenTelemetry tracing.
// Each delivery creates a span with the destination and event attributes
// and records errors.
type TracingTransport struct {
	next   domain.Transport
	tracer trace.Tracer
}

// Compile-time check: TracingTransport implements domain.Transport.
var _ domain.Transport = (*TracingTransport)(nil)

// NewTracingTransport creates a tracing decorator around the given transport.
func NewTracingTransport(next domain.Transport) *TracingTransport {
	return &TracingTransport{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (t *TracingTransport) SendToUser(ctx context.Context, userID string, env domain.Envelope) error {
	ctx, span := t.tracer.Start(ctx, "Transport.SendToUser",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("event.type", string(env.Type)),
		),
	)
	defer span.End()

	err := t.next.SendToUser(ctx, userID, env)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (t *TracingTransport) SendToTopic(ctx context.Context, topic string, env domain.Envelope) error {
	ctx, span := t.tracer.Start(ctx, "Transport.SendToTopic",
		trace.WithAttributes(
			attribute.String("topic", topic),
			attribute.String("event.type", string(env.Type)),
		),
	)
	defer span.End()

	err := t.next.SendToTopic(ctx, topic, env)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
