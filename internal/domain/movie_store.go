package domain

import "context"

// MovieStore persists movie records and serves nearest-neighbor search over
// their overview embeddings. The store embeds query text itself, so callers
// only ever deal in plain strings and typed records.
type MovieStore interface {
	// EnsureSchema creates the table, the vector extension, and the ANN index
	// if they do not exist. dims must match the embedding model output size.
	EnsureSchema(ctx context.Context, table string, dims int) error

	// Upsert writes records, re-embedding each overview. An existing id is
	// overwritten together with its embedding.
	Upsert(ctx context.Context, table string, movies []MovieRecord) error

	// Search returns up to limit records ordered most-similar first.
	// A limit of zero or less yields an empty result without error.
	Search(ctx context.Context, table string, query string, limit int) ([]MovieRecord, error)
}
