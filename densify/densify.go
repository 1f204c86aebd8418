// Package densify places sample points along the line geometries of
// features.
package densify

import (
	"iter"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/treepedia/streetpoints/geom"
	"github.com/treepedia/streetpoints/proj"
)

var ErrUnsupportedGeometry = errors.New("unsupported geometry type")

// Densifier samples geographic lines in a planar CRS and returns the
// sampled points in geographic coordinates.
type Densifier struct {
	proj    proj.Projector
	sampler *geom.Sampler
}

// New returns a Densifier for the given spacing in planar units (meters
// for proj.WebMercator).
func New(p proj.Projector, spacing float64) (*Densifier, error) {
	sampler, err := geom.NewSampler(spacing)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = proj.WebMercator{}
	}
	return &Densifier{proj: p, sampler: sampler}, nil
}

func (d *Densifier) Spacing() float64 { return d.sampler.Spacing() }

// Densify returns the sample points of g. The points of each member of a
// MultiLine follow the points of the previous member.
//
// Unsupported geometries return ErrUnsupportedGeometry, vertices outside
// of the projection domain return proj.ErrOutOfDomain. Both errors are
// returned before any point is produced. Degenerate lines (less than two
// distinct points, non-finite length) are no error, they just produce no
// points.
func (d *Densifier) Densify(g geom.Geometry) (iter.Seq[orb.Point], error) {
	switch g := g.(type) {
	case geom.Line:
		line, err := proj.LineToPlanar(d.proj, orb.LineString(g))
		if err != nil {
			return nil, err
		}
		return d.points([]orb.LineString{line}), nil
	case geom.MultiLine:
		lines := make([]orb.LineString, len(g))
		for i, ls := range g {
			var err error
			lines[i], err = proj.LineToPlanar(d.proj, ls)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", i)
			}
		}
		return d.points(lines), nil
	case nil:
		return nil, errors.Wrap(ErrUnsupportedGeometry, "null")
	default:
		return nil, errors.Wrap(ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

func (d *Densifier) points(lines []orb.LineString) iter.Seq[orb.Point] {
	return func(yield func(orb.Point) bool) {
		for _, line := range lines {
			for p := range d.sampler.Points(line) {
				if !yield(d.proj.ToGeographic(p)) {
					return
				}
			}
		}
	}
}
