// Package mode enumerates result and facet shaping modes.
package mode

// Result selects how raw hits are shaped.
type Result string

// Result modes.
const (
	// IDs returns document ids only.
	IDs Result = "ids"
	// SourceWithID returns {id, source} pairs.
	SourceWithID Result = "source_with_id"
	// GeoEnriched returns the source with the document id injected as doc_id.
	GeoEnriched Result = "geo_enriched"
	// Stripped returns the source without internal fields.
	Stripped Result = "stripped"
	// AggregationOnly skips hit shaping; the query runs with size 0.
	AggregationOnly Result = "aggregation_only"
)

// IsValid checks if the mode is one of the supported values.
func (m Result) IsValid() bool {
	switch m {
	case IDs, SourceWithID, GeoEnriched, Stripped, AggregationOnly:
		return true
	}
	return false
}

// SkipsHits reports whether hits are neither requested nor shaped.
func (m Result) SkipsHits() bool { return m == AggregationOnly }

// Facets selects how raw aggregations are flattened.
type Facets string

// Facet modes.
const (
	// Keys returns bucket keys per aggregation name.
	Keys Facets = "keys"
	// CountMap returns {key: doc_count} for one named aggregation.
	CountMap Facets = "count_map"
	// Raw passes the backend aggregation JSON through unmodified.
	Raw Facets = "raw"
)

// IsValid checks if the mode is one of the supported values.
func (m Facets) IsValid() bool {
	return m == Keys || m == CountMap || m == Raw
}
