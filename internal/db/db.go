// Package db defines the storage facade shared by the catalogue search backends.
package db

import (
	"context"
	"time"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/compiled"
)

// Store is the main database facade combining all sub-interfaces.
type Store interface {
	Pinger
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	EnsureIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher executes compiled catalogue queries.
// Implementations return ErrUnsupportedQuery for node kinds they cannot express.
type Searcher interface {
	Search(ctx context.Context, index string, q *compiled.Query) (*SearchResult, error)
	Count(ctx context.Context, index string, q *compiled.Query) (int64, error)
}
