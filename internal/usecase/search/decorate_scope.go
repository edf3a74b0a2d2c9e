package search

import (
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/clause"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"
)

// decorateIDs restricts the request to a direct-id lookup.
func decorateIDs(a *assembly, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return a.clauses.Add(clause.Filter, query.Terms{
		Field:  domain.Keyword(domain.FieldID),
		Values: append([]string(nil), ids...),
	})
}

// decorateScope filters by instance and item type.
func decorateScope(a *assembly, instance string, itemTypes []string) error {
	if instance != "" {
		err := a.clauses.Add(clause.Filter, query.Term{Field: domain.Keyword(domain.FieldInstance), Value: instance})
		if err != nil {
			return err
		}
	}
	switch len(itemTypes) {
	case 0:
		return nil
	case 1:
		return a.clauses.Add(clause.Filter, query.Term{Field: domain.Keyword(domain.FieldType), Value: itemTypes[0]})
	default:
		return a.clauses.Add(clause.Filter, query.Terms{
			Field:  domain.Keyword(domain.FieldType),
			Values: append([]string(nil), itemTypes...),
		})
	}
}

// decorateUploadExclusion hides upload-gated categories until their upload
// completes. It applies to every request scoped by item type.
func decorateUploadExclusion(a *assembly, itemTypes []string) error {
	if len(itemTypes) == 0 {
		return nil
	}
	for _, category := range domain.UploadGatedTypes {
		excluded := query.AllOf(
			query.Term{Field: domain.Keyword(domain.FieldType), Value: category},
			query.Term{Field: domain.FieldUploadStatus, Value: false},
		)
		if err := a.clauses.Add(clause.MustNot, excluded); err != nil {
			return err
		}
	}
	return nil
}
