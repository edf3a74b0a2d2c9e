package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrIndexNotFound    = errors.New("db: index not found")
	ErrIndexExists      = errors.New("db: index already exists")
	ErrUnsupportedQuery = errors.New("db: query not supported by backend")
)

// Op names used for error context and metrics labels.
const (
	OpPing        = "ping"
	OpCreateIndex = "create_index"
	OpIndexExists = "index_exists"
	OpSearch      = "search"
	OpCount       = "count"
	OpAggregate   = "aggregate"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
