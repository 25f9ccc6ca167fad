package usecase

import (
	"context"
	"fmt"

	"movie-rag/internal/domain"
)

// DefaultSearchLimit is the per-query-variant result count used when the
// caller does not specify one.
const DefaultSearchLimit = 3

// SemanticRetriever is a typed pass-through to the movie store. The store
// embeds the query text and ranks by its own similarity metric; the retriever
// performs no ranking math.
type SemanticRetriever struct {
	store domain.MovieStore
}

// NewSemanticRetriever creates a retriever over the given store.
func NewSemanticRetriever(store domain.MovieStore) *SemanticRetriever {
	return &SemanticRetriever{store: store}
}

// Search returns up to limit records for query, most-similar first. A limit of
// zero or less yields an empty result without touching the store. An empty
// table yields an empty result, not an error.
func (r *SemanticRetriever) Search(ctx context.Context, table, query string, limit int) ([]domain.MovieRecord, error) {
	if limit <= 0 {
		return []domain.MovieRecord{}, nil
	}

	movies, err := r.store.Search(ctx, table, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search table %q: %w", table, err)
	}
	return movies, nil
}
