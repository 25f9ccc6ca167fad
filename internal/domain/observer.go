package domain

import "context"

// TraceHandle identifies one traced query. It is created by the orchestrator
// and forwarded explicitly to every nested call; there is no ambient global
// tracer state in pipeline code.
type TraceHandle struct {
	SessionID string
	UserID    string
}

// FeedbackScore is a categorical score attached to a completed trace.
type FeedbackScore string

const (
	ScoreThumbUp   FeedbackScore = "THUMB_UP"
	ScoreThumbDown FeedbackScore = "THUMB_DOWN"
)

// Span is a single traced operation.
type Span interface {
	// Annotate attaches a key/value pair to the span.
	Annotate(key, value string)
	// Fail marks the span as errored.
	Fail(err error)
	// End completes the span.
	End()
}

// Observer abstracts the tracing backend so a single orchestrator serves any
// of them. Implementations must be safe for concurrent use.
type Observer interface {
	StartSpan(ctx context.Context, name string, handle TraceHandle) (context.Context, Span)
	// Score records a categorical feedback score against the trace active in ctx.
	Score(ctx context.Context, handle TraceHandle, name string, score FeedbackScore)
}
