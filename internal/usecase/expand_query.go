package usecase

import (
	"context"
	"fmt"
	"strings"

	"movie-rag/internal/domain"
)

const hydePromptTemplate = `Consider the following query, related to a movie: %s
Create a one-sentence summary for a movie relevant to the query.
You do not need to describe an existing movie, feel free to invent, but stay relevant to the query.`

// QueryExpander fabricates a hypothetical one-sentence movie summary for a
// query (HyDE). The synthetic summary is used as a second retrieval probe to
// improve recall for underspecified queries.
type QueryExpander struct {
	llm domain.LLMClient
}

// NewQueryExpander creates an expander backed by the given LLM client.
func NewQueryExpander(llm domain.LLMClient) *QueryExpander {
	return &QueryExpander{llm: llm}
}

// Expand returns the hypothetical summary for query. An LLM error or an empty
// completion is a hard failure; there is no fallback expansion.
func (e *QueryExpander) Expand(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf(hydePromptTemplate, query)

	text, err := e.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to expand query: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyCompletion
	}
	return text, nil
}
