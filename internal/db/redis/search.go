package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/db"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/aggregation"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/compiled"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/page"
)

// defaultBucketCount applies to terms aggregations without a size.
const defaultBucketCount = 10

// Search runs a compiled query via FT.SEARCH, plus one FT.AGGREGATE per aggregation.
func (s *Store) Search(ctx context.Context, index string, q *compiled.Query) (*db.SearchResult, error) {
	def, err := s.schema(index)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	tr := newTranslator(def)
	expr, err := tr.node(q.Root())
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	sortArgs, err := buildSortArgs(tr, q.Sort)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	args := []string{index, expr, "WITHSCORES", "RETURN", "1", "$"}
	args = append(args, sortArgs...)
	args = append(args, "LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit))
	args = append(args, tr.paramArgs()...)
	args = append(args, "DIALECT", "2")

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: searchErr(err)}
	}

	res, err := parseSearchResult(raw, def.Prefixes)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	for i := range res.Entries {
		res.Entries[i].Source = project(res.Entries[i].Source, q.Projection)
	}

	if len(q.Aggregations) > 0 {
		res.Aggregations = make(map[string]any, len(q.Aggregations))
		for _, a := range q.Aggregations {
			out, err := s.aggregate(ctx, index, expr, tr, a.Node)
			if err != nil {
				return nil, &db.Error{Op: db.OpAggregate, Err: fmt.Errorf("%s: %w", a.Name, err)}
			}
			res.Aggregations[a.Name] = out
		}
	}
	return res, nil
}

// Count returns the number of matching documents via FT.SEARCH with LIMIT 0 0.
func (s *Store) Count(ctx context.Context, index string, q *compiled.Query) (int64, error) {
	def, err := s.schema(index)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	tr := newTranslator(def)
	expr, err := tr.node(q.Bool)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}

	args := []string{index, expr, "LIMIT", "0", "0"}
	args = append(args, tr.paramArgs()...)
	args = append(args, "DIALECT", "2")

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: searchErr(err)}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: fmt.Errorf("parse count: %w", err)}
	}
	return total, nil
}

// buildSortArgs emits SORTBY for the first non-score key; FT.SEARCH sorts on one attribute only.
func buildSortArgs(tr *translator, sorts []page.Sort) ([]string, error) {
	for _, srt := range sorts {
		if srt.Field == page.ScoreField {
			continue
		}
		name, _, err := tr.attr(srt.Field)
		if err != nil {
			return nil, err
		}
		return []string{"SORTBY", name, strings.ToUpper(string(srt.Order))}, nil
	}
	return nil, nil
}

func (s *Store) aggregate(
	ctx context.Context, index, expr string, tr *translator, n aggregation.Node,
) (map[string]any, error) {
	if len(n.Subs()) > 0 {
		return nil, fmt.Errorf("%w: nested aggregations", db.ErrUnsupportedQuery)
	}

	args := []string{index, expr}
	switch v := n.(type) {
	case aggregation.Terms:
		name, _, err := tr.attr(v.Field)
		if err != nil {
			return nil, err
		}
		size := v.Size
		if size <= 0 {
			size = defaultBucketCount
		}
		args = append(args,
			"GROUPBY", "1", "@"+name,
			"REDUCE", "COUNT", "0", "AS", "doc_count",
			"SORTBY", "2", "@doc_count", "DESC",
			"LIMIT", "0", strconv.Itoa(size),
		)
		args = append(args, tr.paramArgs()...)
		args = append(args, "DIALECT", "2")
		rows, err := s.aggregateRows(ctx, args)
		if err != nil {
			return nil, err
		}
		buckets := make([]any, 0, len(rows))
		for _, row := range rows {
			count, _ := strconv.ParseInt(row["doc_count"], 10, 64)
			buckets = append(buckets, map[string]any{"key": row[name], "doc_count": count})
		}
		return map[string]any{"buckets": buckets}, nil

	case aggregation.Metric:
		name, _, err := tr.attr(v.Field)
		if err != nil {
			return nil, err
		}
		reducer, ok := metricReducers[v.Op]
		if !ok {
			return nil, fmt.Errorf("%w: metric %s", db.ErrUnsupportedQuery, v.Op)
		}
		args = append(args, "GROUPBY", "0", "REDUCE", reducer, "1", "@"+name, "AS", "value")
		args = append(args, tr.paramArgs()...)
		args = append(args, "DIALECT", "2")
		rows, err := s.aggregateRows(ctx, args)
		if err != nil {
			return nil, err
		}
		out := map[string]any{"value": nil}
		if len(rows) > 0 {
			if f, err := strconv.ParseFloat(rows[0]["value"], 64); err == nil {
				out["value"] = f
			}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: aggregation %s", db.ErrUnsupportedQuery, n.Kind())
	}
}

var metricReducers = map[aggregation.Kind]string{
	aggregation.KindAvg:         "AVG",
	aggregation.KindSum:         "SUM",
	aggregation.KindMin:         "MIN",
	aggregation.KindMax:         "MAX",
	aggregation.KindCardinality: "COUNT_DISTINCT",
}

func (s *Store) aggregateRows(ctx context.Context, args []string) ([]map[string]string, error) {
	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, searchErr(err)
	}
	rows := make([]map[string]string, 0, len(raw))
	// [count, row1, row2, ...]; each row is a flat field/value array
	for i := 1; i < len(raw); i++ {
		fields, err := raw[i].ToArray()
		if err != nil {
			continue
		}
		rows = append(rows, parseFieldPairs(fields))
	}
	return rows, nil
}

// --- Result parsing ---

func parseSearchResult(raw []rueidis.RedisMessage, prefixes []string) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}
		source, err := decodeSource(parseFieldPairs(fields)["$"])
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", key, err)
		}

		entries = append(entries, db.SearchEntry{
			ID:     documentID(key, source, prefixes),
			Score:  score,
			Source: source,
		})
	}

	return &db.SearchResult{Total: total, Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

func decodeSource(doc string) (map[string]any, error) {
	if doc == "" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(doc)))
	dec.UseNumber()
	var source map[string]any
	if err := dec.Decode(&source); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return source, nil
}

// documentID prefers the document's own id attribute and falls back to the
// key without its index prefix.
func documentID(key string, source map[string]any, prefixes []string) string {
	if id, ok := source["id"].(string); ok && id != "" {
		return id
	}
	for _, p := range prefixes {
		if trimmed, ok := strings.CutPrefix(key, p); ok {
			return trimmed
		}
	}
	return key
}

// searchErr maps server replies about missing indexes onto db.ErrIndexNotFound.
func searchErr(err error) error {
	if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
		return db.ErrIndexNotFound
	}
	return err
}
