// Package search adapts a search backend driver to the search usecase.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/db"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/compiled"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, index string, q *compiled.Query) (*db.SearchResult, error)
	Count(ctx context.Context, index string, q *compiled.Query) (int64, error)
}

// Repo implements usecase/search.Backend.
type Repo struct {
	store    store
	driver   string
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// New creates a search repository for the named driver.
// duration (labels "driver", "op") and errs (labels "driver", "op", "error_type")
// are passed explicitly; nil disables them.
func New(s store, driver string, duration *prometheus.HistogramVec, errs *prometheus.CounterVec) *Repo {
	return &Repo{store: s, driver: driver, duration: duration, errors: errs}
}

// Execute runs q and converts the driver result into raw hits and aggregations.
func (r *Repo) Execute(ctx context.Context, index string, q *compiled.Query) (*result.Raw, error) {
	start := time.Now()
	sr, err := r.store.Search(ctx, index, q)
	r.observe(db.OpSearch, start)
	if err != nil {
		return nil, r.classify(db.OpSearch, index, err)
	}
	return toRaw(sr), nil
}

// Count returns the number of documents matching q.
func (r *Repo) Count(ctx context.Context, index string, q *compiled.Query) (int64, error) {
	start := time.Now()
	n, err := r.store.Count(ctx, index, q)
	r.observe(db.OpCount, start)
	if err != nil {
		return 0, r.classify(db.OpCount, index, err)
	}
	return n, nil
}

func (r *Repo) observe(op string, start time.Time) {
	if r.duration != nil {
		r.duration.WithLabelValues(r.driver, op).Observe(time.Since(start).Seconds())
	}
}

// classify maps driver failures onto the domain taxonomy: queries the driver
// cannot express are not allowed, everything else is internal.
func (r *Repo) classify(op, index string, err error) error {
	kind, errType := domain.ErrInternal, "backend"
	switch {
	case errors.Is(err, db.ErrUnsupportedQuery):
		kind, errType = domain.ErrOperationNotAllowed, "unsupported"
	case errors.Is(err, db.ErrIndexNotFound):
		errType = "index_not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		errType = "canceled"
	}
	if r.errors != nil {
		r.errors.WithLabelValues(r.driver, op, errType).Inc()
	}
	return fmt.Errorf("%w: %s %s on %s: %w", kind, r.driver, op, index, err)
}

// toRaw converts db.SearchResult into result.Raw.
func toRaw(sr *db.SearchResult) *result.Raw {
	if sr == nil {
		return &result.Raw{}
	}
	raw := &result.Raw{
		Total:        sr.Total,
		Hits:         make([]result.Hit, 0, len(sr.Entries)),
		Aggregations: sr.Aggregations,
	}
	for _, e := range sr.Entries {
		raw.Hits = append(raw.Hits, result.Hit{ID: e.ID, Score: e.Score, Source: e.Source})
	}
	return raw
}
