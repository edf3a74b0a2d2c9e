package search

import (
	"errors"
	"reflect"
	"testing"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/mode"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/page"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/result"
)

func pageSize(n int) page.Params { return page.Params{Size: &n} }

func rawHits() *result.Raw {
	return &result.Raw{
		Total: 120,
		Hits: []result.Hit{
			{ID: "a", Source: map[string]any{"label": "A", "_summary": "s", "_word_vector": []any{1.0}}},
			{ID: "b", Source: map[string]any{"label": "B"}},
		},
	}
}

func TestShapeResults(t *testing.T) {
	tests := []struct {
		mode  mode.Result
		check func(t *testing.T, r result.Response)
	}{
		{mode.IDs, func(t *testing.T, r result.Response) {
			if !reflect.DeepEqual(r.IDs(), []string{"a", "b"}) {
				t.Errorf("IDs() = %v", r.IDs())
			}
		}},
		{mode.SourceWithID, func(t *testing.T, r result.Response) {
			items := r.Items()
			if len(items) != 2 || items[1].ID() != "b" || items[1].Source()["label"] != "B" {
				t.Errorf("Items() = %+v", items)
			}
		}},
		{mode.GeoEnriched, func(t *testing.T, r result.Response) {
			if r.Sources()[0]["doc_id"] != "a" || r.Sources()[1]["doc_id"] != "b" {
				t.Errorf("Sources() = %v", r.Sources())
			}
		}},
		{mode.Stripped, func(t *testing.T, r result.Response) {
			want := map[string]any{"label": "A"}
			if !reflect.DeepEqual(r.Sources()[0], want) {
				t.Errorf("Sources()[0] = %v, want %v", r.Sources()[0], want)
			}
		}},
		{mode.AggregationOnly, func(t *testing.T, r result.Response) {
			if r.Len() != 0 {
				t.Errorf("Len() = %d, want no hits shaped", r.Len())
			}
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			raw := rawHits()
			r, err := ShapeResults(raw, tt.mode)
			if err != nil {
				t.Fatalf("ShapeResults: %v", err)
			}
			if r.Total() != 120 {
				t.Errorf("Total() = %d, want 120", r.Total())
			}
			tt.check(t, r)
			if _, ok := raw.Hits[0].Source["_summary"]; !ok {
				t.Error("raw source was modified")
			}
			if _, ok := raw.Hits[0].Source["doc_id"]; ok {
				t.Error("raw source was enriched in place")
			}
		})
	}
}

func TestShapeResults_NilAndInvalid(t *testing.T) {
	r, err := ShapeResults(nil, mode.IDs)
	if err != nil || r.Total() != 0 || r.Len() != 0 {
		t.Errorf("nil raw: %+v, %v", r, err)
	}
	if _, err := ShapeResults(rawHits(), mode.Result("full")); !errors.Is(err, domain.ErrInvalidPropertyValue) {
		t.Errorf("unknown mode: err = %v", err)
	}
}

func TestShapeResults_NilSource(t *testing.T) {
	r, err := ShapeResults(&result.Raw{Total: 1, Hits: []result.Hit{{ID: "x"}}}, mode.GeoEnriched)
	if err != nil {
		t.Fatal(err)
	}
	if r.Sources()[0]["doc_id"] != "x" {
		t.Errorf("Sources() = %v", r.Sources())
	}
}
