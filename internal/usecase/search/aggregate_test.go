package search

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/access"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/aggregation"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/mode"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/request"
)

func rawAggregations(t *testing.T) map[string]any {
	t.Helper()
	var raw map[string]any
	body := `{
		"tags": {"buckets": [{"key": "flood", "doc_count": 4}, {"key": "rain", "doc_count": 2}]},
		"provider": {"buckets": [{"key": "p1", "doc_count": 7}]},
		"avg_size": {"value": 12.5}
	}`
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestCompileList_MultiType(t *testing.T) {
	size := 25
	l, err := request.NewList(request.ListParams{
		ItemTypes: []string{"adex:Apps", "adex:AiModel"},
		Facets:    []string{"tags", "provider"},
		Instance:  "pune",
		Page:      pageSize(size),
	})
	if err != nil {
		t.Fatal(err)
	}
	q, err := CompileList(&l, access.Anonymous())
	if err != nil {
		t.Fatalf("CompileList: %v", err)
	}

	wantAggs := []aggregation.Named{
		{Name: "tags", Node: aggregation.Terms{Field: "tags.keyword", Size: size}},
		{Name: "provider", Node: aggregation.Terms{Field: "provider.keyword", Size: size}},
	}
	if !reflect.DeepEqual(q.Aggregations, wantAggs) {
		t.Errorf("aggregations = %+v, want %+v", q.Aggregations, wantAggs)
	}
	if q.Limit != 0 || !q.AggregationOnly() {
		t.Errorf("listing must not request hits, limit = %d", q.Limit)
	}
	wantFilter := []query.Node{
		query.Term{Field: "instance.keyword", Value: "pune"},
		query.Terms{Field: "type.keyword", Values: []string{"adex:Apps", "adex:AiModel"}},
	}
	if !reflect.DeepEqual(q.Bool.Filter, wantFilter) {
		t.Errorf("filter = %+v, want %+v", q.Bool.Filter, wantFilter)
	}
	if len(q.Bool.MustNot) != 3 {
		t.Errorf("must_not = %d nodes, want PRIVATE plus two upload exclusions", len(q.Bool.MustNot))
	}
}

func TestCompileList_SingleType(t *testing.T) {
	l, err := request.NewList(request.ListParams{ItemType: "adex:Provider"})
	if err != nil {
		t.Fatal(err)
	}
	q, err := CompileList(&l, access.New("u1", ""))
	if err != nil {
		t.Fatalf("CompileList: %v", err)
	}
	if !reflect.DeepEqual(q.Bool.Filter, []query.Node{query.Term{Field: "type.keyword", Value: "adex:Provider"}}) {
		t.Errorf("filter = %+v", q.Bool.Filter)
	}
	if q.Aggregations[0].Node.(aggregation.Terms).Field != "id.keyword" {
		t.Errorf("aggregations = %+v", q.Aggregations)
	}
}

func TestCompileParentInfo(t *testing.T) {
	q, err := CompileParentInfo(" item-1 ", access.Anonymous())
	if err != nil {
		t.Fatalf("CompileParentInfo: %v", err)
	}
	if q.Limit != 1 || q.Aggregations != nil {
		t.Errorf("limit = %d, aggregations = %v", q.Limit, q.Aggregations)
	}
	if !reflect.DeepEqual(q.Projection.Include, ParentInfoFields) {
		t.Errorf("include = %v", q.Projection.Include)
	}
	want := query.Terms{Field: "id.keyword", Values: []string{"item-1"}}
	if !reflect.DeepEqual(q.Bool.Filter, []query.Node{want}) {
		t.Errorf("filter = %+v", q.Bool.Filter)
	}

	if _, err := CompileParentInfo("  ", access.Anonymous()); !errors.Is(err, domain.ErrInvalidSyntax) {
		t.Errorf("blank id: err = %v", err)
	}
}

func TestFlattenAggregations_Keys(t *testing.T) {
	f, err := FlattenAggregations(rawAggregations(t), mode.Keys, "")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]any{"tags": {"flood", "rain"}, "provider": {"p1"}}
	if !reflect.DeepEqual(f.Keys(), want) {
		t.Errorf("Keys() = %v, want %v", f.Keys(), want)
	}
}

func TestFlattenAggregations_CountMap(t *testing.T) {
	f, err := FlattenAggregations(rawAggregations(t), mode.CountMap, "tags")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int64{"flood": 4, "rain": 2}
	if !reflect.DeepEqual(f.Counts(), want) {
		t.Errorf("Counts() = %v, want %v", f.Counts(), want)
	}

	if _, err := FlattenAggregations(rawAggregations(t), mode.CountMap, "missing"); !errors.Is(err, domain.ErrInvalidPropertyValue) {
		t.Errorf("missing aggregation: err = %v", err)
	}

	metricOnly := map[string]any{"avg_size": map[string]any{"value": 3.5}}
	if _, err := FlattenAggregations(metricOnly, mode.CountMap, "avg_size"); !errors.Is(err, domain.ErrInvalidPropertyValue) {
		t.Errorf("bucket-less aggregation: err = %v", err)
	}

	empty := map[string]any{"tags": map[string]any{"buckets": []any{}}}
	f, err = FlattenAggregations(empty, mode.CountMap, "tags")
	if err != nil || f.Counts() == nil || len(f.Counts()) != 0 {
		t.Errorf("empty buckets: %v, %v", f.Counts(), err)
	}

	if _, err := FlattenAggregations(nil, mode.CountMap, ""); !errors.Is(err, domain.ErrInvalidSyntax) {
		t.Errorf("unnamed count map: err = %v", err)
	}
}

func TestFlattenAggregations_Raw(t *testing.T) {
	raw := rawAggregations(t)
	f, err := FlattenAggregations(raw, mode.Raw, "")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(f.Raw(), raw) {
		t.Errorf("Raw() = %v, want passthrough", f.Raw())
	}
}

func TestFlattenAggregations_UnknownMode(t *testing.T) {
	if _, err := FlattenAggregations(nil, mode.Facets("tree"), ""); !errors.Is(err, domain.ErrInvalidPropertyValue) {
		t.Errorf("err = %v", err)
	}
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		in   any
		want int64
	}{
		{3, 3}, {int64(4), 4}, {5.0, 5}, {json.Number("6"), 6}, {"7", 0}, {nil, 0},
	}
	for _, tt := range tests {
		if got := toInt64(tt.in); got != tt.want {
			t.Errorf("toInt64(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
