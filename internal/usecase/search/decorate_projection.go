package search

import (
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/request"
)

// decorateProjection selects the returned source fields. attribute[] wins over filter[].
func decorateProjection(a *assembly, search bool, rf request.ResponseFilter) error {
	if !search || rf.CountAPI {
		return domain.Invalid(domain.ErrOperationNotAllowed, "response filtering is not allowed on count requests")
	}
	fields := rf.Attributes
	if len(fields) == 0 {
		fields = rf.Filters
	}
	if len(fields) == 0 {
		return domain.Invalid(domain.ErrBadFilter, "attribute or filter must name at least one field")
	}
	a.projection.Include = append([]string(nil), fields...)
	return nil
}
