package domain

import (
	"errors"
	"fmt"
)

// Stage names a pipeline stage for error attribution.
type Stage string

const (
	StageExpansion Stage = "expansion"
	StageRetrieval Stage = "retrieval"
	StageRerank    Stage = "rerank"
	StageSynthesis Stage = "synthesis"
)

// ErrEmptyCompletion reports an LLM reply that is empty after trimming. The
// pipeline treats unusable completions as hard failures instead of trusting
// downstream stages to cope.
var ErrEmptyCompletion = errors.New("llm returned empty completion")

// StageError wraps a failure with the pipeline stage it occurred in. Stage
// failures are fatal for the query; the orchestrator performs no local
// recovery or fallback.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// AsStageError returns the StageError in err's chain, if any.
func AsStageError(err error) (*StageError, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
