package obs

import (
	"context"

	"movie-rag/internal/domain"
)

// NoopObserver discards all tracing calls. Used when tracing is disabled and
// in tests.
type NoopObserver struct{}

func NewNoopObserver() *NoopObserver {
	return &NoopObserver{}
}

func (o *NoopObserver) StartSpan(ctx context.Context, _ string, _ domain.TraceHandle) (context.Context, domain.Span) {
	return ctx, noopSpan{}
}

func (o *NoopObserver) Score(context.Context, domain.TraceHandle, string, domain.FeedbackScore) {}

type noopSpan struct{}

func (noopSpan) Annotate(string, string) {}
func (noopSpan) Fail(error)              {}
func (noopSpan) End()                    {}

var _ domain.Observer = (*NoopObserver)(nil)
