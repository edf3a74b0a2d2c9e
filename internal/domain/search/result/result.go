// Package result holds raw backend results and their shaped responses.
package result

// Hit is a single raw backend hit.
type Hit struct {
	ID     string
	Score  float64
	Source map[string]any
}

// Raw is what one backend execution returns. Each call owns its own Raw.
type Raw struct {
	Total        int64
	Hits         []Hit
	Aggregations map[string]any
}

// Item is an {id, source} pair.
type Item struct {
	id     string
	source map[string]any
}

// NewItem creates an item.
func NewItem(id string, source map[string]any) Item {
	return Item{id: id, source: source}
}

// ID returns the document identifier.
func (i *Item) ID() string { return i.id }

// Source returns the document source.
func (i *Item) Source() map[string]any { return i.source }

// Response is a shaped result page. Exactly one of ids, items or sources is
// populated, depending on the shaping mode.
type Response struct {
	total   int64
	ids     []string
	items   []Item
	sources []map[string]any
	facets  Facets
}

// NewIDs creates an ids-only response.
func NewIDs(total int64, ids []string) Response {
	return Response{total: total, ids: ids}
}

// NewItems creates an {id, source} response.
func NewItems(total int64, items []Item) Response {
	return Response{total: total, items: items}
}

// NewSources creates a bare-source response.
func NewSources(total int64, sources []map[string]any) Response {
	return Response{total: total, sources: sources}
}

// NewTotal creates a response without hits.
func NewTotal(total int64) Response {
	return Response{total: total}
}

// WithFacets returns a copy carrying facets.
func (r Response) WithFacets(f Facets) Response {
	r.facets = f
	return r
}

// Total returns the total number of matching documents, independent of the page.
func (r *Response) Total() int64 { return r.total }

// IDs returns the document ids (ids mode).
func (r *Response) IDs() []string { return r.ids }

// Items returns the {id, source} pairs (source_with_id mode).
func (r *Response) Items() []Item { return r.items }

// Sources returns the shaped sources (geo_enriched and stripped modes).
func (r *Response) Sources() []map[string]any { return r.sources }

// Facets returns the flattened aggregations, if any.
func (r *Response) Facets() Facets { return r.facets }

// Len returns the number of hits on the page.
func (r *Response) Len() int {
	return len(r.ids) + len(r.items) + len(r.sources)
}

// Facets is a flattened aggregation response. Which field is populated
// depends on the facet mode.
type Facets struct {
	keys   map[string][]any
	counts map[string]int64
	raw    map[string]any
}

// NewKeyFacets creates facets holding bucket keys per aggregation name.
func NewKeyFacets(keys map[string][]any) Facets { return Facets{keys: keys} }

// NewCountFacets creates facets holding doc counts per bucket key of one aggregation.
func NewCountFacets(counts map[string]int64) Facets { return Facets{counts: counts} }

// NewRawFacets creates facets passing the backend aggregations through.
func NewRawFacets(raw map[string]any) Facets { return Facets{raw: raw} }

// Keys returns bucket keys per aggregation name.
func (f *Facets) Keys() map[string][]any { return f.keys }

// Counts returns {bucketKey: docCount}.
func (f *Facets) Counts() map[string]int64 { return f.counts }

// Raw returns the unmodified backend aggregations.
func (f *Facets) Raw() map[string]any { return f.raw }

// IsEmpty reports whether no facet data is present.
func (f *Facets) IsEmpty() bool {
	return f.keys == nil && f.counts == nil && f.raw == nil
}
