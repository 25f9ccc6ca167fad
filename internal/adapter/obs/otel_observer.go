package obs

import (
	"context"

	"movie-rag/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "movie-rag/pipeline"

// OtelObserver implements domain.Observer over OpenTelemetry. Session and
// user identifiers ride on every span as attributes so traces can be
// correlated per query; feedback scores become events on the active span.
type OtelObserver struct {
	tracer trace.Tracer
}

// NewOtelObserver creates an observer using the globally registered tracer
// provider.
func NewOtelObserver() *OtelObserver {
	return &OtelObserver{tracer: otel.Tracer(tracerName)}
}

func (o *OtelObserver) StartSpan(ctx context.Context, name string, handle domain.TraceHandle) (context.Context, domain.Span) {
	ctx, span := o.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("session.id", handle.SessionID),
		attribute.String("user.id", handle.UserID),
	))
	return ctx, &otelSpan{span: span}
}

func (o *OtelObserver) Score(ctx context.Context, handle domain.TraceHandle, name string, score domain.FeedbackScore) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent("feedback", trace.WithAttributes(
		attribute.String("feedback.name", name),
		attribute.String("feedback.score", string(score)),
		attribute.String("session.id", handle.SessionID),
		attribute.String("user.id", handle.UserID),
	))
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) Annotate(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

func (s *otelSpan) Fail(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *otelSpan) End() {
	s.span.End()
}

var _ domain.Observer = (*OtelObserver)(nil)
