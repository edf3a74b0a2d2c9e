package redis

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/db"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"
)

// translator renders a compiled query tree into DIALECT 2 FT.SEARCH syntax.
// Geometries are passed out of band as PARAMS.
type translator struct {
	def    *db.IndexDefinition
	params []string
}

func newTranslator(def *db.IndexDefinition) *translator {
	return &translator{def: def}
}

// paramArgs returns the PARAMS clause, or nil when no parameters were bound.
func (t *translator) paramArgs() []string {
	if len(t.params) == 0 {
		return nil
	}
	args := []string{"PARAMS", strconv.Itoa(len(t.params))}
	return append(args, t.params...)
}

func (t *translator) bind(value string) string {
	name := "shape" + strconv.Itoa(len(t.params)/2)
	t.params = append(t.params, name, value)
	return name
}

// attr resolves a document field to its index attribute and type.
func (t *translator) attr(field string) (string, db.IndexFieldType, error) {
	f, keyword, ok := t.def.Lookup(field)
	if !ok {
		return "", 0, fmt.Errorf("%w: field %q is not indexed", db.ErrUnsupportedQuery, field)
	}
	if keyword {
		return keywordAttr(f.Name), db.IndexFieldTag, nil
	}
	return attrName(f.Name), f.Type, nil
}

func (t *translator) node(n query.Node) (string, error) {
	switch v := n.(type) {
	case query.MatchAll:
		return "*", nil
	case query.Match:
		return t.match(v)
	case query.MatchPhrase:
		return t.phrase(v.Field, v.Value)
	case query.Term:
		return t.term(v)
	case query.Terms:
		return t.terms(v)
	case query.Range:
		return t.rangeExpr(v)
	case query.Wildcard:
		return t.wildcard(v)
	case query.GeoShape:
		return t.geoShape(v)
	case query.MultiMatch:
		return t.multiMatch(v)
	case query.QueryString:
		return queryString(v.Query)
	case query.Bool:
		return t.boolExpr(v)
	default:
		return "", fmt.Errorf("%w: node %s", db.ErrUnsupportedQuery, n.Kind())
	}
}

func (t *translator) match(m query.Match) (string, error) {
	name, typ, err := t.attr(m.Field)
	if err != nil {
		return "", err
	}
	switch typ {
	case db.IndexFieldText:
		words := strings.Fields(m.Value)
		if len(words) == 0 {
			return "", fmt.Errorf("%w: empty match on %q", db.ErrUnsupportedQuery, m.Field)
		}
		sep := " | "
		if strings.EqualFold(m.Operator, "and") {
			sep = " "
		}
		return fmt.Sprintf("@%s:(%s)", name, joinWords(words, m.Fuzziness != "", false, sep)), nil
	case db.IndexFieldTag, db.IndexFieldBool:
		return tagExpr(name, m.Value), nil
	default:
		return t.term(query.Term{Field: m.Field, Value: m.Value})
	}
}

func (t *translator) phrase(field, value string) (string, error) {
	name, typ, err := t.attr(field)
	if err != nil {
		return "", err
	}
	switch typ {
	case db.IndexFieldText:
		return fmt.Sprintf(`@%s:("%s")`, name, phraseEscaper.Replace(value)), nil
	case db.IndexFieldTag, db.IndexFieldBool:
		return tagExpr(name, value), nil
	default:
		return "", fmt.Errorf("%w: phrase on %s field %q", db.ErrUnsupportedQuery, typ, field)
	}
}

func (t *translator) term(term query.Term) (string, error) {
	name, typ, err := t.attr(term.Field)
	if err != nil {
		return "", err
	}
	switch typ {
	case db.IndexFieldTag, db.IndexFieldBool:
		return tagExpr(name, scalarString(term.Value)), nil
	case db.IndexFieldNumeric, db.IndexFieldDate:
		v, err := numericBound(term.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("@%s:[%s %s]", name, v, v), nil
	case db.IndexFieldText:
		return t.phrase(term.Field, scalarString(term.Value))
	default:
		return "", fmt.Errorf("%w: term on %s field %q", db.ErrUnsupportedQuery, typ, term.Field)
	}
}

func (t *translator) terms(terms query.Terms) (string, error) {
	name, typ, err := t.attr(terms.Field)
	if err != nil {
		return "", err
	}
	if len(terms.Values) == 0 {
		return "", fmt.Errorf("%w: empty terms on %q", db.ErrUnsupportedQuery, terms.Field)
	}
	switch typ {
	case db.IndexFieldTag, db.IndexFieldBool:
		escaped := make([]string, 0, len(terms.Values))
		for _, v := range terms.Values {
			escaped = append(escaped, tagEscaper.Replace(v))
		}
		return fmt.Sprintf("@%s:{%s}", name, strings.Join(escaped, " | ")), nil
	case db.IndexFieldText:
		parts := make([]string, 0, len(terms.Values))
		for _, v := range terms.Values {
			p, err := t.phrase(terms.Field, v)
			if err != nil {
				return "", err
			}
			parts = append(parts, p)
		}
		return "(" + strings.Join(parts, " | ") + ")", nil
	default:
		return "", fmt.Errorf("%w: terms on %s field %q", db.ErrUnsupportedQuery, typ, terms.Field)
	}
}

func (t *translator) rangeExpr(r query.Range) (string, error) {
	name, typ, err := t.attr(r.Field)
	if err != nil {
		return "", err
	}
	if typ != db.IndexFieldNumeric && typ != db.IndexFieldDate {
		return "", fmt.Errorf("%w: range on %s field %q", db.ErrUnsupportedQuery, typ, r.Field)
	}

	minBound, maxBound := "-inf", "+inf"
	if r.GT != nil {
		v, err := numericBound(r.GT)
		if err != nil {
			return "", err
		}
		minBound = "(" + v
	} else if r.GTE != nil {
		v, err := numericBound(r.GTE)
		if err != nil {
			return "", err
		}
		minBound = v
	}
	if r.LT != nil {
		v, err := numericBound(r.LT)
		if err != nil {
			return "", err
		}
		maxBound = "(" + v
	} else if r.LTE != nil {
		v, err := numericBound(r.LTE)
		if err != nil {
			return "", err
		}
		maxBound = v
	}
	return fmt.Sprintf("@%s:[%s %s]", name, minBound, maxBound), nil
}

func (t *translator) wildcard(w query.Wildcard) (string, error) {
	name, typ, err := t.attr(w.Field)
	if err != nil {
		return "", err
	}
	pattern := wildcardEscaper.Replace(w.Value)
	if w.CaseInsensitive {
		pattern = strings.ToLower(pattern)
	}
	switch typ {
	case db.IndexFieldTag:
		return fmt.Sprintf("@%s:{w'%s'}", name, pattern), nil
	case db.IndexFieldText:
		return fmt.Sprintf("@%s:(w'%s')", name, pattern), nil
	default:
		return "", fmt.Errorf("%w: wildcard on %s field %q", db.ErrUnsupportedQuery, typ, w.Field)
	}
}

func (t *translator) geoShape(g query.GeoShape) (string, error) {
	name, typ, err := t.attr(g.Field)
	if err != nil {
		return "", err
	}
	if typ != db.IndexFieldGeoShape {
		return "", fmt.Errorf("%w: geo_shape on %s field %q", db.ErrUnsupportedQuery, typ, g.Field)
	}
	wkt, err := shapeWKT(g)
	if err != nil {
		return "", err
	}
	param := t.bind(wkt)
	return fmt.Sprintf("@%s:[%s $%s]", name, strings.ToUpper(g.Relation), param), nil
}

func (t *translator) multiMatch(m query.MultiMatch) (string, error) {
	names := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		name, typ, err := t.attr(f)
		if err != nil {
			return "", err
		}
		if typ != db.IndexFieldText {
			return "", fmt.Errorf("%w: multi_match on %s field %q", db.ErrUnsupportedQuery, typ, f)
		}
		names = append(names, name)
	}
	words := strings.Fields(m.Query)
	if len(names) == 0 || len(words) == 0 {
		return "", fmt.Errorf("%w: empty multi_match", db.ErrUnsupportedQuery)
	}

	prefix := m.Type == query.MultiMatchBoolPrefix
	expr := fmt.Sprintf("@%s:(%s)", strings.Join(names, "|"), joinWords(words, m.Fuzziness != "", prefix, " | "))
	if m.Boost != 0 && m.Boost != 1 {
		expr = fmt.Sprintf("(%s) => { $weight: %s; }", expr, strconv.FormatFloat(m.Boost, 'f', -1, 64))
	}
	return expr, nil
}

// queryString maps the AND/OR/NOT operators of a query string onto
// RediSearch syntax and escapes everything else.
func queryString(q string) (string, error) {
	tokens := strings.Fields(q)
	out := make([]string, 0, len(tokens))
	negate := false
	for _, tok := range tokens {
		switch tok {
		case "AND":
			continue
		case "OR":
			out = append(out, "|")
			continue
		case "NOT":
			negate = true
			continue
		}
		w := queryEscaper.Replace(tok)
		if negate {
			w = "-" + w
			negate = false
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("%w: empty query string", db.ErrUnsupportedQuery)
	}
	return "(" + strings.Join(out, " ") + ")", nil
}

func (t *translator) boolExpr(b query.Bool) (string, error) {
	if b.IsEmpty() {
		return "*", nil
	}

	var required []string
	for _, group := range [][]query.Node{b.Must, b.Filter} {
		for _, c := range group {
			s, err := t.node(c)
			if err != nil {
				return "", err
			}
			if s != "*" {
				required = append(required, s)
			}
		}
	}
	matchAll := len(required) == 0 && len(b.Should) == 0 && len(b.MustNot) == 0
	if matchAll {
		return "*", nil
	}

	if len(b.Should) > 0 {
		should := make([]string, 0, len(b.Should))
		for _, c := range b.Should {
			s, err := t.node(c)
			if err != nil {
				return "", err
			}
			should = append(should, s)
		}
		msm := b.MinimumShouldMatch
		if msm <= 0 && len(required) == 0 {
			msm = 1
		}
		switch {
		case msm <= 0:
			required = append(required, "~("+strings.Join(should, " | ")+")")
		case msm == 1:
			required = append(required, "("+strings.Join(should, " | ")+")")
		case msm >= len(should):
			required = append(required, should...)
		default:
			return "", fmt.Errorf("%w: minimum_should_match %d of %d", db.ErrUnsupportedQuery, msm, len(should))
		}
	}

	for _, c := range b.MustNot {
		s, err := t.node(c)
		if err != nil {
			return "", err
		}
		required = append(required, "-("+s+")")
	}

	return "(" + strings.Join(required, " ") + ")", nil
}

func joinWords(words []string, fuzzy, prefixLast bool, sep string) string {
	out := make([]string, 0, len(words))
	for i, w := range words {
		w = queryEscaper.Replace(w)
		switch {
		case prefixLast && i == len(words)-1:
			w += "*"
		case fuzzy:
			w = "%" + w + "%"
		}
		out = append(out, w)
	}
	return strings.Join(out, sep)
}

func tagExpr(name, value string) string {
	return fmt.Sprintf("@%s:{%s}", name, tagEscaper.Replace(value))
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// numericBound renders a range bound. Timestamps become Unix seconds.
func numericBound(v any) (string, error) {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		}
		ts, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return "", fmt.Errorf("%w: bound %q is neither numeric nor a timestamp", db.ErrUnsupportedQuery, x)
		}
		return strconv.FormatInt(ts.Unix(), 10), nil
	default:
		return "", fmt.Errorf("%w: bound of type %T", db.ErrUnsupportedQuery, v)
	}
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`.`, `\.`,
	`,`, `\,`,
)

var phraseEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// wildcardEscaper keeps * and ? as placeholders and only protects the quote.
var wildcardEscaper = strings.NewReplacer(`'`, `\'`)
