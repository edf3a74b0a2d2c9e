package search

import (
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/clause"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/geo"
)

// decorateGeo validates the geo sub-request and adds its GeoShape to FILTER.
func decorateGeo(a *assembly, p geo.Params) error {
	shape, err := geo.Resolve(p)
	if err != nil {
		return err
	}
	return a.clauses.Add(clause.Filter, shape.Node())
}
