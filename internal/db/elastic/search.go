package elastic

import (
	"context"
	"encoding/json"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/db"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/compiled"
)

type searchResponse struct {
	Hits struct {
		Total struct {
			Value json.Number `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string         `json:"_id"`
			Score  *json.Number   `json:"_score"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]any `json:"aggregations"`
}

type countResponse struct {
	Count json.Number `json:"count"`
}

// Search runs a compiled query via the _search API.
func (s *Store) Search(ctx context.Context, index string, q *compiled.Query) (*db.SearchResult, error) {
	body, err := searchBody(q)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	r, err := encodeBody(body)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(r),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer closeBody(res)
	if res.IsError() {
		return nil, responseError(db.OpSearch, res)
	}

	var sr searchResponse
	if err := decodeBody(res, &sr); err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return toSearchResult(&sr), nil
}

// Count runs a compiled query via the _count API.
func (s *Store) Count(ctx context.Context, index string, q *compiled.Query) (int64, error) {
	body, err := countBody(q)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	r, err := encodeBody(body)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}

	res, err := s.client.Count(
		s.client.Count.WithContext(ctx),
		s.client.Count.WithIndex(index),
		s.client.Count.WithBody(r),
	)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	defer closeBody(res)
	if res.IsError() {
		return 0, responseError(db.OpCount, res)
	}

	var cr countResponse
	if err := decodeBody(res, &cr); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	n, err := cr.Count.Int64()
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

func toSearchResult(sr *searchResponse) *db.SearchResult {
	total, _ := sr.Hits.Total.Value.Int64()
	out := &db.SearchResult{
		Total:        total,
		Entries:      make([]db.SearchEntry, 0, len(sr.Hits.Hits)),
		Aggregations: sr.Aggregations,
	}
	for _, h := range sr.Hits.Hits {
		e := db.SearchEntry{ID: h.ID, Source: h.Source}
		if h.Score != nil {
			e.Score, _ = h.Score.Float64()
		}
		out.Entries = append(out.Entries, e)
	}
	return out
}
