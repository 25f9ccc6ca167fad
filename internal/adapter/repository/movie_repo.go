package repository

import (
	"context"
	"fmt"

	"movie-rag/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type movieRepository struct {
	pool    *pgxpool.Pool
	encoder domain.VectorEncoder
}

// NewMovieRepository creates a MovieStore over PostgreSQL with pgvector. The
// encoder is invoked on every write and on every search, so stored vectors
// always match the current overview text.
func NewMovieRepository(pool *pgxpool.Pool, encoder domain.VectorEncoder) domain.MovieStore {
	return &movieRepository{pool: pool, encoder: encoder}
}

func (r *movieRepository) EnsureSchema(ctx context.Context, table string, dims int) error {
	ident := pgx.Identifier{table}.Sanitize()
	idxIdent := pgx.Identifier{table + "_embedding_idx"}.Sanitize()

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id bigint PRIMARY KEY,
			title text NOT NULL,
			release_date timestamptz NOT NULL,
			runtime integer NOT NULL,
			genre text NOT NULL,
			overview text NOT NULL,
			embedding vector(%d) NOT NULL
		)`, ident, dims),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING ivfflat (embedding vector_cosine_ops)`, idxIdent, ident),
	}

	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema for %q: %w", table, err)
		}
	}
	return nil
}

func (r *movieRepository) Upsert(ctx context.Context, table string, movies []domain.MovieRecord) error {
	if len(movies) == 0 {
		return nil
	}

	overviews := make([]string, len(movies))
	for i, movie := range movies {
		overviews[i] = movie.Overview
	}

	embeddings, err := r.encoder.Encode(ctx, overviews)
	if err != nil {
		return fmt.Errorf("failed to embed overviews: %w", err)
	}
	if len(embeddings) != len(movies) {
		return fmt.Errorf("embedding count mismatch: got %d for %d movies", len(embeddings), len(movies))
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, title, release_date, runtime, genre, overview, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			release_date = EXCLUDED.release_date,
			runtime = EXCLUDED.runtime,
			genre = EXCLUDED.genre,
			overview = EXCLUDED.overview,
			embedding = EXCLUDED.embedding
	`, pgx.Identifier{table}.Sanitize())

	batch := &pgx.Batch{}
	for i, movie := range movies {
		batch.Queue(stmt,
			movie.ID,
			movie.Title,
			movie.ReleaseDate,
			movie.Runtime,
			movie.Genre,
			movie.Overview,
			pgvector.NewVector(embeddings[i]),
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range movies {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to upsert movies: %w", err)
		}
	}
	return nil
}

func (r *movieRepository) Search(ctx context.Context, table, query string, limit int) ([]domain.MovieRecord, error) {
	if limit <= 0 {
		return []domain.MovieRecord{}, nil
	}

	embeddings, err := r.encoder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	stmt := fmt.Sprintf(`
		SELECT id, title, release_date, runtime, genre, overview, embedding
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgx.Identifier{table}.Sanitize())

	rows, err := r.pool.Query(ctx, stmt, pgvector.NewVector(embeddings[0]), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	movies := []domain.MovieRecord{}
	for rows.Next() {
		var m domain.MovieRecord
		if err := rows.Scan(&m.ID, &m.Title, &m.ReleaseDate, &m.Runtime, &m.Genre, &m.Overview, &m.Embedding); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return movies, nil
}
