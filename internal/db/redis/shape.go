package redis

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/db"
	"github.com/datakaveri/tgdex-catalogue-server-sub000/internal/domain/search/query"
)

const (
	// circleSegments is the vertex count of the polygon approximating a circle.
	circleSegments = 32
	// metersPerDegree is the length of one degree of latitude.
	metersPerDegree = 111320.0
)

// shapeWKT renders a query geometry as WKT for GEOSHAPE queries. Only points
// and polygons are indexable, so circles and envelopes become polygons.
func shapeWKT(g query.GeoShape) (string, error) {
	if len(g.Coordinates) == 0 {
		return "", fmt.Errorf("%w: %s without coordinates", db.ErrUnsupportedQuery, g.Type)
	}

	var shape geom.T
	switch g.Type {
	case query.GeometryPoint:
		c := g.Coordinates[0]
		shape = geom.NewPointFlat(geom.XY, []float64{c[0], c[1]})
	case query.GeometryPolygon:
		ring := make([]geom.Coord, 0, len(g.Coordinates))
		for _, c := range g.Coordinates {
			ring = append(ring, geom.Coord{c[0], c[1]})
		}
		p, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{ring})
		if err != nil {
			return "", fmt.Errorf("polygon: %w", err)
		}
		shape = p
	case query.GeometryEnvelope:
		if len(g.Coordinates) != 2 {
			return "", fmt.Errorf("%w: envelope needs 2 corners", db.ErrUnsupportedQuery)
		}
		shape = envelopePolygon(g.Coordinates[0], g.Coordinates[1])
	case query.GeometryCircle:
		radius, err := parseRadius(g.Radius)
		if err != nil {
			return "", err
		}
		shape = circlePolygon(g.Coordinates[0], radius)
	default:
		return "", fmt.Errorf("%w: geometry %q", db.ErrUnsupportedQuery, g.Type)
	}

	out, err := wkt.Marshal(shape)
	if err != nil {
		return "", fmt.Errorf("encode wkt: %w", err)
	}
	return out, nil
}

// envelopePolygon closes the box spanned by the top-left and bottom-right corners.
func envelopePolygon(topLeft, bottomRight [2]float64) *geom.Polygon {
	minX, maxY := topLeft[0], topLeft[1]
	maxX, minY := bottomRight[0], bottomRight[1]
	return geom.NewPolygonFlat(geom.XY, []float64{
		minX, minY,
		maxX, minY,
		maxX, maxY,
		minX, maxY,
		minX, minY,
	}, []int{10})
}

// circlePolygon approximates a circle of radius meters around center ([lon, lat]).
func circlePolygon(center [2]float64, radius float64) *geom.Polygon {
	dLat := radius / metersPerDegree
	dLon := radius / (metersPerDegree * math.Cos(center[1]*math.Pi/180))

	flat := make([]float64, 0, 2*(circleSegments+1))
	for i := range circleSegments {
		theta := 2 * math.Pi * float64(i) / circleSegments
		flat = append(flat, center[0]+dLon*math.Cos(theta), center[1]+dLat*math.Sin(theta))
	}
	flat = append(flat, flat[0], flat[1])
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
}

// parseRadius reads a distance such as "500m".
func parseRadius(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "m"), 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: radius %q", db.ErrUnsupportedQuery, s)
	}
	return v, nil
}
