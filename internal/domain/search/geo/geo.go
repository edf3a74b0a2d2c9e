// Package geo validates geo-spatial search parameters.
package geo

import (
	"strconv"
	"strings"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"
)

// Geo limits.
const (
	MaxDecimals     = 6
	MaxPairs        = 64
	MaxRadiusMeters = 10000
)

// Client geometry names.
const (
	GeometryPoint      = "point"
	GeometryPolygon    = "polygon"
	GeometryLineString = "linestring"
	GeometryBBox       = "bbox"
)

// Relation is a spatial predicate between the indexed shape and the query shape.
type Relation string

// Relations.
const (
	Within     Relation = "within"
	Intersects Relation = "intersects"
	Disjoint   Relation = "disjoint"
	Contains   Relation = "contains"
	// Near is accepted for circles and evaluated as Intersects.
	Near Relation = "near"
)

// ParseRelation accepts any casing of a supported relation.
func ParseRelation(s string) (Relation, bool) {
	switch r := Relation(strings.ToLower(strings.TrimSpace(s))); r {
	case Within, Intersects, Disjoint, Contains, Near:
		return r, true
	}
	return "", false
}

// FormatRelation returns the backend relation token: first letter upper, rest lower.
// Near maps to Intersects. Unknown input is title-cased unchanged.
func FormatRelation(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if Relation(s) == Near {
		s = string(Intersects)
	}
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Params is the raw geo sub-request. Coordinates are [lon, lat] pairs.
type Params struct {
	Geometry    string
	Coordinates [][]float64
	Lat         *float64
	Lon         *float64
	Radius      *float64
	Relation    string
	Property    string
}

// Shape is a validated geometry ready to become a GeoShape node.
type Shape struct {
	Property    string
	Type        query.GeometryType
	Coordinates [][2]float64
	// RadiusMeters is set for circles only.
	RadiusMeters float64
	Relation     string
}

// Node returns the GeoShape query for s.
func (s Shape) Node() query.GeoShape {
	n := query.GeoShape{
		Field:       s.Property,
		Type:        s.Type,
		Coordinates: s.Coordinates,
		Relation:    s.Relation,
	}
	if s.Type == query.GeometryCircle {
		n.Radius = strconv.FormatFloat(s.RadiusMeters, 'f', -1, 64) + "m"
	}
	return n
}

// Resolve validates p. A missing georel or geoproperty fails with ErrInvalidGeoParam
// before the geometry is looked at.
func Resolve(p Params) (Shape, error) {
	if strings.TrimSpace(p.Relation) == "" {
		return Shape{}, domain.Invalid(domain.ErrInvalidGeoParam, "georel is required")
	}
	rel, ok := ParseRelation(p.Relation)
	if !ok {
		return Shape{}, domain.Invalid(domain.ErrInvalidGeoParam, "unsupported georel %q", p.Relation)
	}
	property := strings.TrimSpace(p.Property)
	if property == "" {
		return Shape{}, domain.Invalid(domain.ErrInvalidGeoParam, "geoproperty is required")
	}
	if !domain.IsValidFieldName(property) {
		return Shape{}, domain.Invalid(domain.ErrInvalidPropertyValue, "invalid geoproperty %q", property)
	}

	geometry := strings.ToLower(strings.TrimSpace(p.Geometry))
	if geometry == "" && (p.Lat != nil || p.Lon != nil) {
		geometry = GeometryPoint
	}
	if rel == Near && geometry != GeometryPoint {
		return Shape{}, domain.Invalid(domain.ErrInvalidGeoParam, "georel near is only valid for point searches")
	}

	s := Shape{Property: property, Relation: string(rel)}
	var err error
	switch geometry {
	case GeometryPoint:
		s.Type = query.GeometryCircle
		s.Coordinates, s.RadiusMeters, err = circle(p)
	case GeometryPolygon:
		s.Type = query.GeometryPolygon
		s.Coordinates, err = ring(p.Coordinates)
	case GeometryLineString:
		s.Type = query.GeometryLineString
		s.Coordinates, err = pairs(p.Coordinates, 2)
	case GeometryBBox:
		s.Type = query.GeometryEnvelope
		s.Coordinates, err = envelope(p.Coordinates)
	case "":
		return Shape{}, domain.Invalid(domain.ErrInvalidGeoParam, "geometry is required")
	default:
		return Shape{}, domain.Invalid(domain.ErrInvalidGeoParam, "unsupported geometry %q", p.Geometry)
	}
	if err != nil {
		return Shape{}, err
	}
	return s, nil
}

func circle(p Params) ([][2]float64, float64, error) {
	if p.Lat == nil || p.Lon == nil || p.Radius == nil {
		return nil, 0, domain.Invalid(domain.ErrInvalidGeoParam, "point search requires lat, lon and radius")
	}
	if err := checkPoint(*p.Lon, *p.Lat); err != nil {
		return nil, 0, err
	}
	r := *p.Radius
	if r <= 0 || r > MaxRadiusMeters {
		return nil, 0, domain.Invalid(domain.ErrInvalidPropertyValue,
			"radius must be in (0, %d] metres, got %v", MaxRadiusMeters, r)
	}
	return [][2]float64{{*p.Lon, *p.Lat}}, r, nil
}

// ring validates a polygon outer ring, which must be closed.
func ring(coords [][]float64) ([][2]float64, error) {
	out, err := pairs(coords, 4)
	if err != nil {
		return nil, err
	}
	if !IsClosed(out) {
		return nil, domain.Invalid(domain.ErrInvalidGeoValue, "polygon ring is not closed: first and last coordinates differ")
	}
	return out, nil
}

// envelope expects the top-left and bottom-right corners.
func envelope(coords [][]float64) ([][2]float64, error) {
	if len(coords) != 2 {
		return nil, domain.Invalid(domain.ErrInvalidGeoValue, "bbox requires exactly 2 coordinate pairs, got %d", len(coords))
	}
	return pairs(coords, 2)
}

func pairs(coords [][]float64, minPairs int) ([][2]float64, error) {
	if len(coords) < minPairs {
		return nil, domain.Invalid(domain.ErrInvalidGeoValue, "at least %d coordinate pairs required, got %d", minPairs, len(coords))
	}
	if len(coords) > MaxPairs {
		return nil, domain.Invalid(domain.ErrInvalidPropertyValue, "at most %d coordinate pairs allowed, got %d", MaxPairs, len(coords))
	}
	out := make([][2]float64, len(coords))
	for i, c := range coords {
		if len(c) != 2 {
			return nil, domain.Invalid(domain.ErrInvalidGeoValue, "coordinate %d must be a [lon, lat] pair", i)
		}
		if err := checkPoint(c[0], c[1]); err != nil {
			return nil, err
		}
		out[i] = [2]float64{c[0], c[1]}
	}
	return out, nil
}

func checkPoint(lon, lat float64) error {
	if lat < -90 || lat > 90 {
		return domain.Invalid(domain.ErrInvalidPropertyValue, "latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return domain.Invalid(domain.ErrInvalidPropertyValue, "longitude %v out of range", lon)
	}
	if Decimals(lat) > MaxDecimals || Decimals(lon) > MaxDecimals {
		return domain.Invalid(domain.ErrInvalidPropertyValue, "coordinates allow at most %d decimal places", MaxDecimals)
	}
	return nil
}

// IsClosed reports whether the ring starts and ends at the same coordinate.
func IsClosed(ring [][2]float64) bool {
	return len(ring) > 0 && ring[0] == ring[len(ring)-1]
}

// Decimals returns the number of decimal places in the shortest representation of v.
func Decimals(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if _, frac, ok := strings.Cut(s, "."); ok {
		return len(frac)
	}
	return 0
}
