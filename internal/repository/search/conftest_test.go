package search

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/db"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/compiled"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn func(ctx context.Context, index string, q *compiled.Query) (*db.SearchResult, error)
	countFn  func(ctx context.Context, index string, q *compiled.Query) (int64, error)
}

func (m *mockStore) Search(ctx context.Context, index string, q *compiled.Query) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, index, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Count(ctx context.Context, index string, q *compiled.Query) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, index, q)
	}
	return 0, nil
}

type testMetrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

func newTestRepo(t *testing.T) (*Repo, *mockStore, testMetrics) {
	t.Helper()
	m := testMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_duration"}, []string{"driver", "op"}),
		errors:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_errors"}, []string{"driver", "op", "error_type"}),
	}
	ms := &mockStore{}
	return New(ms, "elasticsearch", m.duration, m.errors), ms, m
}
