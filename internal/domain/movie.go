package domain

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// MovieRecord is the unit of retrieval. Embedding is derived from Overview by
// the store on every write; callers never set it directly.
type MovieRecord struct {
	ID          int
	Title       string
	ReleaseDate time.Time
	Runtime     int
	Genre       string
	Overview    string
	Embedding   pgvector.Vector
}
