package chi

import (
	"maps"
	"net/url"
	"strconv"
	"strings"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/criterion"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/geo"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/page"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/request"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/result"
)

// --- Requests ---

type textRequest struct {
	Q            string `json:"q"`
	Fuzzy        bool   `json:"fuzzy"`
	AutoComplete bool   `json:"autoComplete"`
	BoostRecent  bool   `json:"boostRecent"`
}

type criterionRequest struct {
	Field      string   `json:"field"`
	SearchType string   `json:"searchType"`
	Values     []string `json:"values"`
}

type geoRequest struct {
	Geometry    string      `json:"geometry"`
	Coordinates [][]float64 `json:"coordinates"`
	Lat         *float64    `json:"lat"`
	Lon         *float64    `json:"lon"`
	Radius      *float64    `json:"radius"`
	Georel      string      `json:"georel"`
	Geoproperty string      `json:"geoproperty"`
}

type responseFilterRequest struct {
	Attribute []string `json:"attribute"`
	Filter    []string `json:"filter"`
}

type pageRequest struct {
	Size   *int `json:"size"`
	Page   *int `json:"page"`
	Limit  *int `json:"limit"`
	Offset *int `json:"offset"`
}

func (p pageRequest) toParams() page.Params {
	return page.Params{Limit: p.Limit, Offset: p.Offset, Size: p.Size, Page: p.Page}
}

type searchRequest struct {
	pageRequest

	Fuzzy          bool                   `json:"fuzzy"`
	ID             []string               `json:"id"`
	Filter         []string               `json:"filter"`
	Text           *textRequest           `json:"text"`
	SearchCriteria []criterionRequest     `json:"searchCriteria"`
	Geo            *geoRequest            `json:"geo"`
	Instance       string                 `json:"instance"`
	ItemTypes      []string               `json:"itemTypes"`
	ResponseFilter *responseFilterRequest `json:"responseFilter"`
	Sort           string                 `json:"sort"`
}

// toDomain validates the body into a request. countAPI marks the response filter
// as coming from the count endpoint.
func (b *searchRequest) toDomain(isSearch, countAPI bool) (request.Request, error) {
	p := request.Params{
		Search:    isSearch,
		Fuzzy:     b.Fuzzy,
		IDs:       b.ID,
		Facets:    b.Filter,
		Instance:  b.Instance,
		ItemTypes: b.ItemTypes,
		Page:      b.toParams(),
		Sort:      b.Sort,
	}
	if b.Text != nil {
		p.Text = &request.Text{
			Query:        b.Text.Q,
			Fuzzy:        b.Text.Fuzzy,
			AutoComplete: b.Text.AutoComplete,
			BoostRecent:  b.Text.BoostRecent,
		}
	}
	if b.Geo != nil {
		p.Geo = &geo.Params{
			Geometry:    b.Geo.Geometry,
			Coordinates: b.Geo.Coordinates,
			Lat:         b.Geo.Lat,
			Lon:         b.Geo.Lon,
			Radius:      b.Geo.Radius,
			Relation:    b.Geo.Georel,
			Property:    b.Geo.Geoproperty,
		}
	}
	if b.ResponseFilter != nil {
		p.ResponseFilter = &request.ResponseFilter{
			Attributes: b.ResponseFilter.Attribute,
			Filters:    b.ResponseFilter.Filter,
			CountAPI:   countAPI,
		}
	}
	if len(b.SearchCriteria) > request.MaxCriteria {
		return request.Request{}, domain.Invalid(domain.ErrInvalidSyntax,
			"too many search criteria (max %d), got %d", request.MaxCriteria, len(b.SearchCriteria))
	}
	for _, c := range b.SearchCriteria {
		typ := criterion.Type(strings.ToUpper(strings.TrimSpace(c.SearchType)))
		crit, err := criterion.New(c.Field, typ, c.Values)
		if err != nil {
			return request.Request{}, err
		}
		p.Criteria = append(p.Criteria, crit)
	}
	return request.New(p)
}

type listRequest struct {
	pageRequest

	ItemTypes []string `json:"itemTypes"`
	Filter    []string `json:"filter"`
	Instance  string   `json:"instance"`
}

func (b *listRequest) toParams() request.ListParams {
	return request.ListParams{
		ItemTypes: b.ItemTypes,
		Facets:    b.Filter,
		Instance:  b.Instance,
		Page:      b.pageRequest.toParams(),
	}
}

// listParamsFromQuery reads a single-type listing from the path and query string.
// filter accepts repeated and comma-separated values.
func listParamsFromQuery(itemType string, q url.Values) (request.ListParams, error) {
	p := request.ListParams{
		ItemType: itemType,
		Instance: q.Get("instance"),
	}
	for _, v := range q["filter"] {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				p.Facets = append(p.Facets, f)
			}
		}
	}
	var err error
	if p.Page.Size, err = intParam(q, "size"); err != nil {
		return request.ListParams{}, err
	}
	if p.Page.Page, err = intParam(q, "page"); err != nil {
		return request.ListParams{}, err
	}
	if p.Page.Limit, err = intParam(q, "limit"); err != nil {
		return request.ListParams{}, err
	}
	if p.Page.Offset, err = intParam(q, "offset"); err != nil {
		return request.ListParams{}, err
	}
	return p, nil
}

func intParam(q url.Values, name string) (*int, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, domain.Invalid(domain.ErrInvalidPropertyValue, "%s must be an integer, got %q", name, v)
	}
	return &n, nil
}

// --- Responses ---

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type searchResponse struct {
	TotalHits int64 `json:"totalHits"`
	Results   []any `json:"results"`
	Facets    any   `json:"facets,omitempty"`
}

type countResponse struct {
	TotalHits int64 `json:"totalHits"`
}

type listResponse struct {
	Results any `json:"results"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func searchResponseFrom(r *result.Response) searchResponse {
	resp := searchResponse{
		TotalHits: r.Total(),
		Results:   make([]any, 0, r.Len()),
	}
	for _, id := range r.IDs() {
		resp.Results = append(resp.Results, id)
	}
	for _, item := range r.Items() {
		resp.Results = append(resp.Results, itemJSON(&item))
	}
	for _, src := range r.Sources() {
		resp.Results = append(resp.Results, src)
	}
	facets := r.Facets()
	resp.Facets = facetsJSON(&facets)
	return resp
}

// itemJSON flattens an item into its source with the document id under "id".
func itemJSON(item *result.Item) map[string]any {
	out := maps.Clone(item.Source())
	if out == nil {
		out = make(map[string]any, 1)
	}
	out[domain.FieldID] = item.ID()
	return out
}

func facetsJSON(f *result.Facets) any {
	switch {
	case f.Keys() != nil:
		return f.Keys()
	case f.Counts() != nil:
		return f.Counts()
	case f.Raw() != nil:
		return f.Raw()
	default:
		return nil
	}
}
