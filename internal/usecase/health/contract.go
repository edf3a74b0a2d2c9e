package health

import "context"

// BackendPinger checks search backend availability.
type BackendPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports whether the catalogue index exists.
type IndexChecker interface {
	IndexExists(ctx context.Context, name string) (bool, error)
}
