package usecase_test

import (
	"context"
	"errors"
	"testing"

	"movie-rag/internal/domain"
	"movie-rag/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemanticRetriever_PassThrough(t *testing.T) {
	want := []domain.MovieRecord{
		{ID: 7, Title: "Seventh Seal"},
		{ID: 8, Title: "Eighth Wonder"},
	}
	store := &fakeStore{
		search: func(_ context.Context, table, query string, limit int) ([]domain.MovieRecord, error) {
			assert.Equal(t, "movie", table)
			assert.Equal(t, "chess with death", query)
			assert.Equal(t, 2, limit)
			return want, nil
		},
	}

	got, err := usecase.NewSemanticRetriever(store).Search(context.Background(), "movie", "chess with death", 2)
	require.NoError(t, err)
	assert.Equal(t, want, got, "similarity order from the store is preserved")
}

func TestSemanticRetriever_ZeroLimit(t *testing.T) {
	store := &fakeStore{
		search: func(context.Context, string, string, int) ([]domain.MovieRecord, error) {
			t.Fatal("store must not be called for a non-positive limit")
			return nil, nil
		},
	}

	got, err := usecase.NewSemanticRetriever(store).Search(context.Background(), "movie", "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSemanticRetriever_EmptyTable(t *testing.T) {
	store := &fakeStore{
		search: func(context.Context, string, string, int) ([]domain.MovieRecord, error) {
			return []domain.MovieRecord{}, nil
		},
	}

	got, err := usecase.NewSemanticRetriever(store).Search(context.Background(), "movie", "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, got, "an empty table is not an error")
}

func TestSemanticRetriever_StoreError(t *testing.T) {
	wantErr := errors.New("connection refused")
	store := &fakeStore{
		search: func(context.Context, string, string, int) ([]domain.MovieRecord, error) {
			return nil, wantErr
		},
	}

	_, err := usecase.NewSemanticRetriever(store).Search(context.Background(), "movie", "anything", 3)
	assert.ErrorIs(t, err, wantErr)
}
