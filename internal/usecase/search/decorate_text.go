package search

import (
	"strings"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/clause"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/request"
)

// AutoCompleteBoost weights prefix matches above the other text strategies.
const AutoCompleteBoost = 3

// TextFields are searched by fuzzy and autocomplete text queries.
var TextFields = []string{domain.FieldLabel, domain.FieldTags, domain.FieldDescription}

// decorateText adds a should-group of text strategies to MUST: at least one must match.
func decorateText(a *assembly, active bool, t request.Text) error {
	if !active {
		return nil
	}
	q := strings.TrimSpace(t.Query)
	if q == "" {
		return domain.Invalid(domain.ErrBadTextQuery, "q must not be blank")
	}

	var alternatives []query.Node
	if t.Fuzzy {
		alternatives = append(alternatives, query.MultiMatch{
			Fields:    textFields(),
			Query:     q,
			Fuzziness: query.FuzzinessAuto,
			Type:      query.MultiMatchBestFields,
		})
	}
	if t.AutoComplete {
		alternatives = append(alternatives, query.MultiMatch{
			Fields: textFields(),
			Query:  q,
			Type:   query.MultiMatchBoolPrefix,
			Boost:  AutoCompleteBoost,
		})
	}
	if len(alternatives) == 0 {
		alternatives = append(alternatives, query.QueryString{Query: q})
	}
	return a.clauses.Add(clause.Must, query.AnyOf(alternatives...))
}

func textFields() []string {
	return append([]string(nil), TextFields...)
}
