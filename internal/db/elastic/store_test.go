package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/db"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/compiled"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"
)

func newTestStore(t *testing.T, h http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	s, err := NewStore(Config{Addrs: []string{srv.URL}})
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	return s
}

func TestNewStore_NoAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

func TestStore_Ping(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

func TestStore_PingFailure(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestStore_WaitForReady_Timeout(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if err := s.WaitForReady(context.Background(), 250*time.Millisecond); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestStore_Search(t *testing.T) {
	var gotBody map[string]any
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalogue/_search" {
			t.Errorf("path = %q, want /catalogue/_search", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = io.WriteString(w, `{
			"hits": {
				"total": {"value": 2, "relation": "eq"},
				"hits": [
					{"_id": "a", "_score": 1.5, "_source": {"id": "a", "size": 10}},
					{"_id": "b", "_score": null, "_source": {"id": "b"}}
				]
			},
			"aggregations": {"type": {"buckets": [{"key": "adex:AiModel", "doc_count": 2}]}}
		}`)
	})

	q := &compiled.Query{Bool: query.Bool{Filter: []query.Node{query.MatchAll{}}}, Limit: 10}
	res, err := s.Search(context.Background(), "catalogue", q)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("total = %d, want 2", res.Total)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(res.Entries))
	}
	if res.Entries[0].ID != "a" || res.Entries[0].Score != 1.5 {
		t.Errorf("entry[0] = %+v", res.Entries[0])
	}
	if n, ok := res.Entries[0].Source["size"].(json.Number); !ok || n.String() != "10" {
		t.Errorf("size = %#v, want json.Number 10", res.Entries[0].Source["size"])
	}
	if res.Entries[1].Score != 0 {
		t.Errorf("null score = %v, want 0", res.Entries[1].Score)
	}
	if _, ok := res.Aggregations["type"]; !ok {
		t.Error("aggregations not passed through")
	}
	if gotBody["size"] != float64(10) {
		t.Errorf("request size = %v, want 10", gotBody["size"])
	}
}

func TestStore_SearchIndexNotFound(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"index_not_found_exception","reason":"no such index [x]"},"status":404}`)
	})

	q := &compiled.Query{Bool: query.Bool{Filter: []query.Node{query.MatchAll{}}}, Limit: 1}
	_, err := s.Search(context.Background(), "x", q)
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("err = %v, want ErrIndexNotFound", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSearch {
		t.Errorf("err = %v, want db.Error with op search", err)
	}
}

func TestStore_SearchServerError(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"type":"parsing_exception","reason":"bad"},"status":400}`)
	})

	q := &compiled.Query{Bool: query.Bool{Filter: []query.Node{query.MatchAll{}}}, Limit: 1}
	_, err := s.Search(context.Background(), "catalogue", q)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, db.ErrIndexNotFound) {
		t.Error("parsing error must not map to ErrIndexNotFound")
	}
}

func TestStore_SearchUnsupportedNode(t *testing.T) {
	called := false
	s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
	})

	q := &compiled.Query{Bool: query.Bool{Filter: []query.Node{bogusNode{}}}, Limit: 1}
	_, err := s.Search(context.Background(), "catalogue", q)
	if !errors.Is(err, db.ErrUnsupportedQuery) {
		t.Fatalf("err = %v, want ErrUnsupportedQuery", err)
	}
	if called {
		t.Error("backend must not be called for an unsupported query")
	}
}

func TestStore_Count(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalogue/_count" {
			t.Errorf("path = %q, want /catalogue/_count", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"count": 42}`)
	})

	q := &compiled.Query{Bool: query.Bool{Filter: []query.Node{query.MatchAll{}}}}
	n, err := s.Count(context.Background(), "catalogue", q)
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if n != 42 {
		t.Errorf("count = %d, want 42", n)
	}
}

func TestStore_EnsureIndex(t *testing.T) {
	def, err := db.CatalogueIndex("catalogue", "")
	if err != nil {
		t.Fatalf("CatalogueIndex() error: %v", err)
	}

	t.Run("exists", func(t *testing.T) {
		s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodHead {
				t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
		})
		if err := s.EnsureIndex(context.Background(), def); err != nil {
			t.Fatalf("EnsureIndex() error: %v", err)
		}
	})

	t.Run("creates", func(t *testing.T) {
		var created map[string]any
		s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodHead:
				w.WriteHeader(http.StatusNotFound)
			case http.MethodPut:
				raw, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(raw, &created)
				_, _ = io.WriteString(w, `{"acknowledged": true}`)
			default:
				t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			}
		})
		if err := s.EnsureIndex(context.Background(), def); err != nil {
			t.Fatalf("EnsureIndex() error: %v", err)
		}
		if _, ok := created["mappings"]; !ok {
			t.Errorf("create body = %v, want mappings", created)
		}
	})

	t.Run("race already exists", func(t *testing.T) {
		s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"type":"resource_already_exists_exception","reason":"exists"},"status":400}`)
		})
		if err := s.EnsureIndex(context.Background(), def); err != nil {
			t.Fatalf("EnsureIndex() error: %v", err)
		}
	})

	t.Run("invalid definition", func(t *testing.T) {
		s := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
			t.Error("backend must not be called")
		})
		if err := s.EnsureIndex(context.Background(), &db.IndexDefinition{}); err == nil {
			t.Fatal("expected validation error")
		}
	})
}
