package usecase

import (
	"context"
	"fmt"
	"strings"

	"movie-rag/internal/domain"
)

const answerPromptTemplate = `Consider the following query, related to a movie: %s
The following movies were proposed as relevant to the query:

%s

Provide an answer to the query, choosing the most relevant movie, in a friendly and open tone.`

// AnswerSynthesizer produces the final natural-language answer from the
// reranked context and the original query.
type AnswerSynthesizer struct {
	llm domain.LLMClient
}

// NewAnswerSynthesizer creates a synthesizer backed by the given LLM client.
func NewAnswerSynthesizer(llm domain.LLMClient) *AnswerSynthesizer {
	return &AnswerSynthesizer{llm: llm}
}

// Answer embeds the reranked context verbatim plus the query and returns the
// raw LLM text. An empty context is valid input; the prompt still goes out so
// the model can answer with "no candidates" framing.
func (s *AnswerSynthesizer) Answer(ctx context.Context, contextText, query string) (string, error) {
	prompt := fmt.Sprintf(answerPromptTemplate, query, contextText)

	text, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to synthesize answer: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyCompletion
	}
	return text, nil
}
