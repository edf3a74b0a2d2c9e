package search

import (
	"maps"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/mode"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/result"
)

// ShapeResults maps raw hits into the response shape selected by m.
// Sources are copied; the raw result is never modified.
func ShapeResults(raw *result.Raw, m mode.Result) (result.Response, error) {
	if !m.IsValid() {
		return result.Response{}, domain.Invalid(domain.ErrInvalidPropertyValue, "unknown result mode %q", m)
	}
	if raw == nil {
		return result.NewTotal(0), nil
	}
	if m.SkipsHits() {
		return result.NewTotal(raw.Total), nil
	}

	switch m {
	case mode.IDs:
		ids := make([]string, len(raw.Hits))
		for i, h := range raw.Hits {
			ids[i] = h.ID
		}
		return result.NewIDs(raw.Total, ids), nil
	case mode.SourceWithID:
		items := make([]result.Item, len(raw.Hits))
		for i, h := range raw.Hits {
			items[i] = result.NewItem(h.ID, cloneSource(h.Source))
		}
		return result.NewItems(raw.Total, items), nil
	case mode.GeoEnriched:
		sources := make([]map[string]any, len(raw.Hits))
		for i, h := range raw.Hits {
			src := cloneSource(h.Source)
			src[domain.FieldDocID] = h.ID
			sources[i] = src
		}
		return result.NewSources(raw.Total, sources), nil
	default:
		sources := make([]map[string]any, len(raw.Hits))
		for i, h := range raw.Hits {
			src := cloneSource(h.Source)
			delete(src, domain.FieldSummary)
			delete(src, domain.FieldWordVector)
			sources[i] = src
		}
		return result.NewSources(raw.Total, sources), nil
	}
}

func cloneSource(src map[string]any) map[string]any {
	if src == nil {
		return map[string]any{}
	}
	return maps.Clone(src)
}
