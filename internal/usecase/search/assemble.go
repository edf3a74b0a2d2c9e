package search

import (
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/access"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/clause"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/compiled"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/request"
)

// assembly is what the decorator pipeline produces for one request.
type assembly struct {
	clauses    *clause.Map
	projection compiled.Projection
}

func newAssembly() *assembly {
	return &assembly{clauses: clause.New()}
}

// assemble runs the decorators in their fixed order. The first failure aborts
// the pipeline; the partially filled assembly is discarded by the caller.
func assemble(req *request.Request, ac access.Context) (*assembly, error) {
	a := newAssembly()
	types := req.SearchTypes()

	if err := decorateText(a, types.Text, req.Text()); err != nil {
		return nil, err
	}
	if err := decorateCriteria(a, req.Criteria(), req.Fuzzy()); err != nil {
		return nil, err
	}
	if types.Geo {
		if err := decorateGeo(a, req.Geo()); err != nil {
			return nil, err
		}
	}
	if err := decorateIDs(a, req.IDs()); err != nil {
		return nil, err
	}

	if a.clauses.IsEmpty() && !types.ResponseFilter && len(req.Facets()) == 0 {
		return nil, domain.Invalid(domain.ErrInvalidSyntax, "empty query: no search condition was produced")
	}

	if err := decorateAccess(a, ac); err != nil {
		return nil, err
	}
	if err := decorateScope(a, req.Instance(), req.ItemTypes()); err != nil {
		return nil, err
	}
	if err := decorateUploadExclusion(a, req.ItemTypes()); err != nil {
		return nil, err
	}
	if types.ResponseFilter {
		if err := decorateProjection(a, req.IsSearch(), req.ResponseFilter()); err != nil {
			return nil, err
		}
	}
	return a, nil
}
