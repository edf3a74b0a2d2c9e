package elastic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/db"
)

// keywordIgnoreAbove matches the dynamic-mapping default for keyword sub-fields.
const keywordIgnoreAbove = 256

// IndexExists reports whether the index exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := s.client.Indices.Exists([]string{name}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, &db.Error{Op: db.OpIndexExists, Err: err}
	}
	defer closeBody(res)

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, responseError(db.OpIndexExists, res)
	}
}

// EnsureIndex creates the index with a mapping derived from def unless it already exists.
func (s *Store) EnsureIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid index definition: %w", err)
	}
	exists, err := s.IndexExists(ctx, def.Name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	body, err := encodeBody(map[string]any{"mappings": buildMapping(def)})
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	res, err := s.client.Indices.Create(def.Name,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(body),
	)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	defer closeBody(res)

	if res.IsError() {
		err := responseError(db.OpCreateIndex, res)
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return err
	}
	return nil
}

// buildMapping converts the schema into an explicit mapping. Dotted field
// names become nested object properties.
func buildMapping(def *db.IndexDefinition) map[string]any {
	root := map[string]any{}
	for i := range def.Fields {
		f := &def.Fields[i]
		props := root
		segments := strings.Split(f.Name, ".")
		for _, seg := range segments[:len(segments)-1] {
			obj, ok := props[seg].(map[string]any)
			if !ok {
				obj = map[string]any{"properties": map[string]any{}}
				props[seg] = obj
			}
			props = obj["properties"].(map[string]any)
		}
		props[segments[len(segments)-1]] = fieldMapping(f)
	}
	return map[string]any{"properties": root}
}

func fieldMapping(f *db.IndexField) map[string]any {
	switch f.Type {
	case db.IndexFieldText:
		m := map[string]any{"type": "text"}
		if f.Keyword {
			m["fields"] = map[string]any{
				"keyword": map[string]any{"type": "keyword", "ignore_above": keywordIgnoreAbove},
			}
		}
		return m
	case db.IndexFieldTag:
		return map[string]any{"type": "keyword"}
	case db.IndexFieldNumeric:
		return map[string]any{"type": "double"}
	case db.IndexFieldDate:
		return map[string]any{"type": "date"}
	case db.IndexFieldBool:
		return map[string]any{"type": "boolean"}
	case db.IndexFieldGeoShape:
		return map[string]any{"type": "geo_shape"}
	default:
		return map[string]any{"type": "keyword"}
	}
}
