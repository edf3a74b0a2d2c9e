package search

import (
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/access"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/clause"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"
)

// decorateAccess enforces row-level visibility and runs for every request.
// A PRIVATE document is admitted only when its owner is the requester.
func decorateAccess(a *assembly, ac access.Context) error {
	if subject, ok := ac.Subject(); ok {
		if err := a.clauses.Add(clause.Must, accessGroup(subject)); err != nil {
			return err
		}
	} else if err := a.clauses.Add(clause.MustNot, policyMatch(domain.AccessPrivate)); err != nil {
		return err
	}

	if ac.IsAssetSearchOnly() {
		return a.clauses.Add(clause.Filter, query.Terms{
			Field:  domain.Keyword(domain.FieldType),
			Values: append([]string(nil), domain.AssetTypes...),
		})
	}
	return nil
}

func accessGroup(subject string) query.Bool {
	return query.AnyOf(
		policyMatch(domain.AccessOpen),
		policyMatch(domain.AccessRestricted),
		query.AllOf(
			policyMatch(domain.AccessPrivate),
			// The keyword sub-field is not analyzed, so the owner must match exactly.
			query.Match{Field: domain.Keyword(domain.FieldOwnerUserID), Value: subject},
		),
	)
}

func policyMatch(p domain.AccessPolicy) query.Match {
	return query.Match{Field: domain.FieldAccessPolicy, Value: string(p)}
}
