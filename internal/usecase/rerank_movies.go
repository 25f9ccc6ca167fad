package usecase

import (
	"context"
	"fmt"
	"strings"

	"movie-rag/internal/domain"
)

const rerankPromptTemplate = `Consider the following query, related to a movie: %s
The following movies were proposed as relevant to the query:
%s
Please re-rank the movies based on their relevance to the query, removing any duplicate and any irrelevant item.
Only return the updated list, with all the information for each movie.`

// ResultReranker merges the two retrieval result sets into a text block and
// delegates deduplication, filtering, and reordering to the LLM. The output
// is unstructured text: it is the literal context handed to synthesis, not
// reparsed into records.
type ResultReranker struct {
	llm domain.LLMClient
}

// NewResultReranker creates a reranker backed by the given LLM client.
func NewResultReranker(llm domain.LLMClient) *ResultReranker {
	return &ResultReranker{llm: llm}
}

// Rerank serializes movies and asks the LLM for a deduplicated, filtered,
// relevance-ordered list. An empty movies slice still issues the call with an
// empty context block so synthesis receives "no candidates" framing.
func (r *ResultReranker) Rerank(ctx context.Context, movies []domain.MovieRecord, query string) (string, error) {
	prompt := fmt.Sprintf(rerankPromptTemplate, query, FormatMovies(movies))

	text, err := r.llm.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to rerank %d movies: %w", len(movies), err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyCompletion
	}
	return text, nil
}

// FormatMovies renders one human-readable block per record: title, genre,
// release date, then overview, newline-separated.
func FormatMovies(movies []domain.MovieRecord) string {
	blocks := make([]string, 0, len(movies))
	for _, movie := range movies {
		blocks = append(blocks, fmt.Sprintf("**%s** - Genre: %s - Release: %s \n %s",
			movie.Title, movie.Genre, movie.ReleaseDate.Format("2006-01-02"), movie.Overview))
	}
	return strings.Join(blocks, "\n")
}
