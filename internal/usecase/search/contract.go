package search

import (
	"context"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/compiled"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/result"
)

// Backend executes compiled queries against the search index.
// Every call returns its own result; nothing is retained between calls.
type Backend interface {
	Execute(ctx context.Context, index string, q *compiled.Query) (*result.Raw, error)
	Count(ctx context.Context, index string, q *compiled.Query) (int64, error)
}
