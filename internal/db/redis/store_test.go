package redis

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/db"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/aggregation"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/compiled"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/page"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"
)

const testIndex = "catalogue"

// newCatalogueStore returns a store with the catalogue schema registered.
func newCatalogueStore(t *testing.T, c *mock.Client) *Store {
	t.Helper()
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE" && cmd[1] == testIndex
		})).
		Return(mock.Result(mock.RedisString("OK")))

	def, err := db.CatalogueIndex(testIndex, "cat:item:")
	if err != nil {
		t.Fatalf("CatalogueIndex() error: %v", err)
	}
	s := NewStoreForTest(c)
	if err := s.EnsureIndex(context.Background(), def); err != nil {
		t.Fatalf("EnsureIndex() error: %v", err)
	}
	return s
}

func argAfter(cmd []string, key string) string {
	i := slices.Index(cmd, key)
	if i < 0 || i+1 >= len(cmd) {
		return ""
	}
	return cmd[i+1]
}

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		s, sub string
		want   bool
	}{
		{"Index Already Exists", "index already exists", true},
		{"UNKNOWN INDEX NAME", "unknown index name", true},
		{"hello world", "world", true},
		{"short", "longer than input", false},
		{"exact", "exact", true},
		{"", "", true},
		{"notempty", "", true},
	}
	for _, tc := range tests {
		got := containsIgnoreCase(tc.s, tc.sub)
		if got != tc.want {
			t.Errorf("containsIgnoreCase(%q, %q) = %v, want %v", tc.s, tc.sub, got, tc.want)
		}
	}
}

// --- index.go tests ---

func TestEnsureIndex_Args(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var got []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			got = cmd
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	def := db.NewIndex("idx").Prefix("p:").Keyword("label").KeywordList("tags").
		Date("itemCreatedAt").Bool("uploadStatus").GeoShape("location.geometry").MustBuild()
	if err := NewStoreForTest(c).EnsureIndex(context.Background(), def); err != nil {
		t.Fatalf("EnsureIndex() error: %v", err)
	}

	want := []string{
		"FT.CREATE", "idx", "ON", "JSON", "PREFIX", "1", "p:", "SCHEMA",
		"$.label", "AS", "label", "TEXT",
		"$.label", "AS", "label__keyword", "TAG", "SORTABLE",
		"$.tags[*]", "AS", "tags", "TEXT",
		"$.tags[*]", "AS", "tags__keyword", "TAG",
		"$.itemCreatedAt", "AS", "itemCreatedAt", "NUMERIC", "SORTABLE",
		"$.uploadStatus", "AS", "uploadStatus", "TAG",
		"$.location.geometry", "AS", "location__geometry", "GEOSHAPE", "SPHERICAL",
	}
	if !slices.Equal(got, want) {
		t.Errorf("FT.CREATE args:\n got %v\nwant %v", got, want)
	}
}

func TestEnsureIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	def := db.NewIndex("idx").Tag("f").MustBuild()
	if err := s.EnsureIndex(context.Background(), def); err != nil {
		t.Fatalf("EnsureIndex() error: %v", err)
	}
	if _, err := s.schema("idx"); err != nil {
		t.Errorf("schema not registered: %v", err)
	}
}

func TestEnsureIndex_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.ErrorResult(errors.New("connection refused")))

	s := NewStoreForTest(c)
	err := s.EnsureIndex(context.Background(), db.NewIndex("idx").Tag("f").MustBuild())
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpCreateIndex {
		t.Fatalf("err = %v, want db.Error with op create_index", err)
	}
	if _, err := s.schema("idx"); !errors.Is(err, db.ErrIndexNotFound) {
		t.Error("schema must not be registered on failure")
	}
}

func TestEnsureIndex_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	if err := NewStoreForTest(c).EnsureIndex(context.Background(), &db.IndexDefinition{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestIndexExists(t *testing.T) {
	tests := []struct {
		name    string
		reply   rueidis.RedisResult
		want    bool
		wantErr bool
	}{
		{"exists", mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString(testIndex))), true, false},
		{"unknown", mock.Result(mock.RedisError("Unknown Index name")), false, false},
		{"no such index", mock.Result(mock.RedisError("catalogue: no such index")), false, false},
		{"failure", mock.ErrorResult(errors.New("boom")), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)
			c.EXPECT().Do(gomock.Any(), mock.Match("FT.INFO", testIndex)).Return(tt.reply)

			got, err := NewStoreForTest(c).IndexExists(context.Background(), testIndex)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("exists = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- search.go tests ---

func TestSearch_UnknownIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	_, err := NewStoreForTest(c).Search(context.Background(), "nope", &compiled.Query{Limit: 1})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("err = %v, want ErrIndexNotFound", err)
	}
}

func TestSearch_Hits(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := newCatalogueStore(t, c)

	var got []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			got = cmd
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("cat:item:a"),
			mock.RedisString("1.5"),
			mock.RedisArray(mock.RedisString("$"), mock.RedisString(`{"id":"a","label":"Rain","size":10}`)),
			mock.RedisString("cat:item:b"),
			mock.RedisString("0.5"),
			mock.RedisArray(mock.RedisString("$"), mock.RedisString(`{"label":"Wind"}`)),
		)))

	q := &compiled.Query{
		Bool:       query.Bool{Filter: []query.Node{query.Term{Field: "type.keyword", Value: "adex:AiModel"}}},
		Sort:       []page.Sort{{Field: page.ScoreField, Order: page.Desc}, {Field: "itemCreatedAt", Order: page.Desc}},
		Projection: compiled.Projection{Include: []string{"id", "label"}},
		Limit:      20,
		Offset:     40,
	}
	res, err := s.Search(context.Background(), testIndex, q)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	if got[1] != testIndex || got[2] != `(@type__keyword:{adex\:AiModel})` {
		t.Errorf("query = %v", got[:3])
	}
	if argAfter(got, "SORTBY") != "itemCreatedAt" || argAfter(got, "itemCreatedAt") != "DESC" {
		t.Errorf("sort args = %v", got)
	}
	if argAfter(got, "LIMIT") != "40" || argAfter(got, "40") != "20" {
		t.Errorf("limit args = %v", got)
	}
	if argAfter(got, "DIALECT") != "2" {
		t.Errorf("dialect args = %v", got)
	}
	if slices.Contains(got, "PARAMS") {
		t.Errorf("unexpected PARAMS in %v", got)
	}

	if res.Total != 2 || len(res.Entries) != 2 {
		t.Fatalf("result = %+v", res)
	}
	if res.Entries[0].ID != "a" || res.Entries[0].Score != 1.5 {
		t.Errorf("entry[0] = %+v", res.Entries[0])
	}
	if _, ok := res.Entries[0].Source["size"]; ok {
		t.Error("projection must drop size")
	}
	if res.Entries[1].ID != "b" {
		t.Errorf("entry[1] id = %q, want key without prefix", res.Entries[1].ID)
	}
}

func TestSearch_GeoParams(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := newCatalogueStore(t, c)

	var got []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			got = cmd
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	q := &compiled.Query{
		Bool: query.Bool{Filter: []query.Node{query.GeoShape{
			Field:       "location.geometry",
			Type:        query.GeometryPoint,
			Coordinates: [][2]float64{{77.5, 12.9}},
			Relation:    "Within",
		}}},
		Limit: 10,
	}
	res, err := s.Search(context.Background(), testIndex, q)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if res.Total != 0 {
		t.Errorf("total = %d, want 0", res.Total)
	}
	if got[2] != "(@location__geometry:[WITHIN $shape0])" {
		t.Errorf("query = %q", got[2])
	}
	if argAfter(got, "PARAMS") != "2" || argAfter(got, "shape0") != "POINT (77.5 12.9)" {
		t.Errorf("params = %v", got)
	}
}

func TestSearch_Aggregations(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := newCatalogueStore(t, c)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && argAfter(cmd, "LIMIT") == "0" && argAfter(cmd, "0") == "0"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(3))))
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.AGGREGATE" && argAfter(cmd, "1") == "@type__keyword"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisArray(mock.RedisString("type__keyword"), mock.RedisString("adex:AiModel"),
				mock.RedisString("doc_count"), mock.RedisString("2")),
			mock.RedisArray(mock.RedisString("type__keyword"), mock.RedisString("adex:Apps"),
				mock.RedisString("doc_count"), mock.RedisString("1")),
		)))

	q := &compiled.Query{
		Bool: query.Bool{Filter: []query.Node{query.MatchAll{}}},
		Aggregations: []aggregation.Named{
			{Name: "type", Node: aggregation.Terms{Field: "type.keyword", Size: 5}},
		},
	}
	res, err := s.Search(context.Background(), testIndex, q)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if res.Total != 3 {
		t.Errorf("total = %d, want 3", res.Total)
	}
	raw, _ := json.Marshal(res.Aggregations)
	want := `{"type":{"buckets":[{"doc_count":2,"key":"adex:AiModel"},{"doc_count":1,"key":"adex:Apps"}]}}`
	if string(raw) != want {
		t.Errorf("aggregations = %s, want %s", raw, want)
	}
}

func TestSearch_MetricAggregation(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := newCatalogueStore(t, c)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(4))))
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.AGGREGATE" && argAfter(cmd, "REDUCE") == "MAX"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisArray(mock.RedisString("value"), mock.RedisString("1700000000")),
		)))

	q := &compiled.Query{
		Bool: query.Bool{Filter: []query.Node{query.MatchAll{}}},
		Aggregations: []aggregation.Named{
			{Name: "latest", Node: aggregation.Metric{Op: aggregation.KindMax, Field: "itemCreatedAt"}},
		},
	}
	res, err := s.Search(context.Background(), testIndex, q)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	latest := res.Aggregations["latest"].(map[string]any)
	if latest["value"] != float64(1700000000) {
		t.Errorf("value = %v", latest["value"])
	}
}

func TestSearch_UnsupportedAggregation(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := newCatalogueStore(t, c)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	q := &compiled.Query{
		Bool:         query.Bool{Filter: []query.Node{query.MatchAll{}}},
		Aggregations: []aggregation.Named{{Name: "all", Node: aggregation.Global{}}},
	}
	_, err := s.Search(context.Background(), testIndex, q)
	if !errors.Is(err, db.ErrUnsupportedQuery) {
		t.Fatalf("err = %v, want ErrUnsupportedQuery", err)
	}
}

func TestSearch_ScriptScoreUnsupported(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := newCatalogueStore(t, c)

	q := &compiled.Query{
		Bool:  query.Bool{Must: []query.Node{query.MatchAll{}}},
		Score: &compiled.Script{Source: "_score"},
		Limit: 1,
	}
	_, err := s.Search(context.Background(), testIndex, q)
	if !errors.Is(err, db.ErrUnsupportedQuery) {
		t.Fatalf("err = %v, want ErrUnsupportedQuery", err)
	}
}

func TestSearch_NoSuchIndexReply(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := newCatalogueStore(t, c)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.Result(mock.RedisError("catalogue: no such index")))

	_, err := s.Search(context.Background(), testIndex, &compiled.Query{Limit: 1})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("err = %v, want ErrIndexNotFound", err)
	}
}

func TestCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := newCatalogueStore(t, c)

	var got []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			got = cmd
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(7))))

	q := &compiled.Query{
		Bool:  query.Bool{MustNot: []query.Node{query.Match{Field: "accessPolicy", Value: "PRIVATE"}}},
		Score: &compiled.Script{Source: "ignored by count"},
	}
	n, err := s.Count(context.Background(), testIndex, q)
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if n != 7 {
		t.Errorf("count = %d, want 7", n)
	}
	if got[2] != "(-(@accessPolicy:(PRIVATE)))" {
		t.Errorf("query = %q", got[2])
	}
	if slices.Contains(got, "WITHSCORES") {
		t.Error("count must not request scores")
	}
}

func TestDocumentID(t *testing.T) {
	prefixes := []string{"cat:item:"}
	tests := []struct {
		name   string
		key    string
		source map[string]any
		want   string
	}{
		{"source id", "cat:item:x", map[string]any{"id": "a"}, "a"},
		{"prefix trimmed", "cat:item:x", map[string]any{}, "x"},
		{"foreign key", "other:x", nil, "other:x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := documentID(tt.key, tt.source, prefixes); got != tt.want {
				t.Errorf("documentID() = %q, want %q", got, tt.want)
			}
		})
	}
}
