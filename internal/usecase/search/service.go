package search

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/access"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/compiled"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/mode"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/request"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/result"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/logger"
)

// Service compiles catalogue requests, executes them and shapes the results.
// The requester identity is read from the context (see access.ContextWith).
type Service struct {
	backend  Backend
	index    string
	rejected *prometheus.CounterVec
}

// New creates a search service.
// rejected is a counter vec with label "kind", passed explicitly; nil disables it.
func New(backend Backend, index string, rejected *prometheus.CounterVec) *Service {
	return &Service{backend: backend, index: index, rejected: rejected}
}

// Search runs a search request and shapes hits according to m.
func (s *Service) Search(ctx context.Context, req *request.Request, m mode.Result) (result.Response, error) {
	q, err := Compile(req, access.FromContext(ctx))
	if err != nil {
		return result.Response{}, s.reject(ctx, err)
	}
	if m.SkipsHits() {
		q.Limit, q.Offset, q.Sort = 0, 0, nil
	}

	raw, err := s.execute(ctx, q)
	if err != nil {
		return result.Response{}, err
	}
	resp, err := ShapeResults(raw, m)
	if err != nil {
		return result.Response{}, s.reject(ctx, err)
	}
	if len(q.Aggregations) > 0 {
		facets, err := FlattenAggregations(raw.Aggregations, mode.Keys, "")
		if err != nil {
			return result.Response{}, err
		}
		resp = resp.WithFacets(facets)
	}
	return resp, nil
}

// Count returns the number of documents matching req.
func (s *Service) Count(ctx context.Context, req *request.Request) (int64, error) {
	q, err := Compile(req, access.FromContext(ctx))
	if err != nil {
		return 0, s.reject(ctx, err)
	}
	countOnly(q)

	n, err := s.backend.Count(ctx, s.index, q)
	if err != nil {
		return 0, s.backendFailed(ctx, "count", err)
	}
	return n, nil
}

// List runs a faceted listing. For mode.CountMap the first facet is flattened.
func (s *Service) List(ctx context.Context, l *request.List, m mode.Facets) (result.Facets, error) {
	if !m.IsValid() {
		return result.Facets{}, s.reject(ctx, domain.Invalid(domain.ErrInvalidPropertyValue, "unknown facet mode %q", m))
	}
	q, err := CompileList(l, access.FromContext(ctx))
	if err != nil {
		return result.Facets{}, s.reject(ctx, err)
	}
	raw, err := s.execute(ctx, q)
	if err != nil {
		return result.Facets{}, err
	}
	return FlattenAggregations(raw.Aggregations, m, l.Facets()[0])
}

// ParentInfo returns the identifying fields of one catalogue item.
func (s *Service) ParentInfo(ctx context.Context, id string) (result.Item, error) {
	q, err := CompileParentInfo(id, access.FromContext(ctx))
	if err != nil {
		return result.Item{}, s.reject(ctx, err)
	}
	raw, err := s.execute(ctx, q)
	if err != nil {
		return result.Item{}, err
	}
	if len(raw.Hits) == 0 {
		return result.Item{}, fmt.Errorf("item %q: %w", id, domain.ErrNotFound)
	}
	h := raw.Hits[0]
	return result.NewItem(h.ID, cloneSource(h.Source)), nil
}

func (s *Service) execute(ctx context.Context, q *compiled.Query) (*result.Raw, error) {
	raw, err := s.backend.Execute(ctx, s.index, q)
	if err != nil {
		return nil, s.backendFailed(ctx, "execute", err)
	}
	if raw == nil {
		raw = &result.Raw{}
	}
	return raw, nil
}

func (s *Service) reject(ctx context.Context, err error) error {
	kind := domain.KindName(err)
	if s.rejected != nil {
		s.rejected.WithLabelValues(kind).Inc()
	}
	logger.FromContext(ctx).Debug("Search request rejected",
		zap.String("kind", kind),
		zap.String("detail", domain.Detail(err)),
	)
	return err
}

func (s *Service) backendFailed(ctx context.Context, op string, err error) error {
	logger.FromContext(ctx).Error("Search backend failed",
		zap.String("op", op),
		zap.String("index", s.index),
		zap.Error(err),
	)
	return fmt.Errorf("%s: %w", op, err)
}
