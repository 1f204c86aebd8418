// Package geom contains the line geometries of input features and the
// arc-length sampling of planar lines.
package geom

import (
	"github.com/paulmach/orb"
)

// Geometry is the geometry of a single input feature, resolved once when
// the feature is read. It is one of Line, MultiLine or Unsupported.
type Geometry interface {
	// GeoJSONType returns the type name of the input geometry.
	GeoJSONType() string
	lineGeometry()
}

// Line is a single polyline.
type Line orb.LineString

// MultiLine is an ordered collection of polylines. Members are never
// merged, even if they share endpoints.
type MultiLine []orb.LineString

// Unsupported marks input geometries that are neither a line nor a
// collection of lines (points, polygons, empty/null geometries).
type Unsupported struct {
	Type string
}

func (Line) GeoJSONType() string      { return "LineString" }
func (MultiLine) GeoJSONType() string { return "MultiLineString" }
func (u Unsupported) GeoJSONType() string {
	if u.Type == "" {
		return "null"
	}
	return u.Type
}

func (Line) lineGeometry()        {}
func (MultiLine) lineGeometry()   {}
func (Unsupported) lineGeometry() {}

// FromOrb converts an orb geometry as read by a source.
func FromOrb(g orb.Geometry) Geometry {
	switch g := g.(type) {
	case orb.LineString:
		return Line(g)
	case orb.MultiLineString:
		lines := make(MultiLine, len(g))
		copy(lines, g)
		return lines
	case nil:
		return Unsupported{}
	default:
		return Unsupported{Type: g.GeoJSONType()}
	}
}
