package db

// SearchResult is the output of a search operation.
// Aggregations use the bucket layout {"buckets": [{"key", "doc_count"}]} per name,
// or {"value": v} for metrics, whatever the backend.
type SearchResult struct {
	Total        int64
	Entries      []SearchEntry
	Aggregations map[string]any
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	ID     string
	Score  float64
	Source map[string]any
}
