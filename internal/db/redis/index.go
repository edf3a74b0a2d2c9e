package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/db"
)

// keywordAttrSuffix names the TAG attribute shadowing a keyword text field.
const keywordAttrSuffix = "__keyword"

// EnsureIndex creates the FT index unless it exists and records its schema
// for query translation.
func (s *Store) EnsureIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil && !isRedisErr(err, "index already exists") {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.mu.Lock()
	s.schemas[def.Name] = def
	s.mu.Unlock()
	return nil
}

// IndexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexExists, Err: err}
	}
	return true, nil
}

func (s *Store) schema(index string) (*db.IndexDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.schemas[index]
	if !ok {
		return nil, db.ErrIndexNotFound
	}
	return def, nil
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, fmt.Errorf("invalid index definition: %w", err)
	}

	args := []string{idx.Name, "ON", "JSON"}

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}

	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	path := jsonPath(f)
	args := []string{path, "AS", attrName(f.Name)}

	switch f.Type {
	case db.IndexFieldText:
		args = append(args, "TEXT")
	case db.IndexFieldTag, db.IndexFieldBool:
		args = append(args, "TAG")
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}
	case db.IndexFieldNumeric, db.IndexFieldDate:
		args = append(args, "NUMERIC")
		if f.Sortable {
			args = append(args, "SORTABLE")
		}
	case db.IndexFieldGeoShape:
		args = append(args, "GEOSHAPE", "SPHERICAL")
	default:
		return nil, errors.New("unknown field type")
	}

	if f.Keyword {
		args = append(args, path, "AS", keywordAttr(f.Name), "TAG")
		if f.Sortable {
			args = append(args, "SORTABLE")
		}
	}

	return args, nil
}

// attrName maps a dotted document path to an attribute name.
func attrName(field string) string {
	return strings.ReplaceAll(field, ".", "__")
}

func keywordAttr(field string) string {
	return attrName(field) + keywordAttrSuffix
}

func jsonPath(f *db.IndexField) string {
	p := "$." + f.Name
	if f.Multi {
		p += "[*]"
	}
	return p
}
