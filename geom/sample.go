package geom

import (
	"iter"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

var ErrInvalidSpacing = errors.New("spacing must be a positive number")

// Sampler places points at a fixed spacing along planar lines.
type Sampler struct {
	spacing float64
}

func NewSampler(spacing float64) (*Sampler, error) {
	if err := CheckSpacing(spacing); err != nil {
		return nil, err
	}
	return &Sampler{spacing: spacing}, nil
}

// CheckSpacing returns ErrInvalidSpacing for zero, negative and non-finite
// values.
func CheckSpacing(spacing float64) error {
	if !(spacing > 0) || math.IsInf(spacing, 1) {
		return errors.Wrapf(ErrInvalidSpacing, "got %v", spacing)
	}
	return nil
}

func (s *Sampler) Spacing() float64 { return s.spacing }

// Points returns the points at the arc-length offsets 0, spacing,
// 2*spacing, ... of ls. Only offsets below the truncated length of ls are
// sampled, the remainder of the line is not. An offset that falls on a
// vertex returns that vertex.
//
// Lines with less than two points and lines without a finite, positive
// length produce no points. The sequence can be iterated multiple times.
func (s *Sampler) Points(ls orb.LineString) iter.Seq[orb.Point] {
	return func(yield func(orb.Point) bool) {
		if len(ls) < 2 {
			return
		}
		length := planar.Length(ls)
		if math.IsNaN(length) || math.IsInf(length, 0) || length <= 0 {
			return
		}
		limit := math.Trunc(length)

		seg := 0
		segStart := 0.0
		segLen := planar.Distance(ls[0], ls[1])
		for i := 0; ; i++ {
			// multiply instead of summing up to avoid drift on long lines
			d := float64(i) * s.spacing
			if d >= limit {
				return
			}
			for seg < len(ls)-2 && d >= segStart+segLen {
				segStart += segLen
				seg++
				segLen = planar.Distance(ls[seg], ls[seg+1])
			}
			if !yield(interpolate(ls[seg], ls[seg+1], d-segStart, segLen)) {
				return
			}
		}
	}
}

func interpolate(a, b orb.Point, offset, length float64) orb.Point {
	if offset <= 0 || length == 0 {
		return a
	}
	t := offset / length
	return orb.Point{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
	}
}
