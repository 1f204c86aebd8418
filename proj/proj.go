// Package proj converts between geographic WGS84 (EPSG:4326) and spherical
// web mercator (EPSG:3857) coordinates.
package proj

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

const pole = 6378137 * math.Pi // 20037508.342789244

// MaxLat is the latitude where web mercator y reaches ±pole. Points beyond
// this latitude are outside of the EPSG:3857 domain.
const MaxLat = 85.0511287798066

// ErrOutOfDomain is returned for coordinates that can not be projected.
var ErrOutOfDomain = errors.New("coordinate outside of projection domain")

// Projector transforms points between a geographic and a planar CRS.
// Points are orb.Points with X=longitude and Y=latitude for geographic
// coordinates and X/Y in meters for planar coordinates.
type Projector interface {
	ToPlanar(p orb.Point) (orb.Point, error)
	ToGeographic(p orb.Point) orb.Point
}

// WebMercator implements Projector for EPSG:4326 <-> EPSG:3857.
//
// ToPlanar rejects latitudes beyond ±MaxLat (including the poles, where
// the mercator y is infinite) and longitudes outside of ±180 with
// ErrOutOfDomain. Coordinates are never clamped.
type WebMercator struct{}

func (WebMercator) ToPlanar(p orb.Point) (orb.Point, error) {
	long, lat := p[0], p[1]
	if math.IsNaN(long) || math.IsNaN(lat) ||
		math.Abs(long) > 180 || math.Abs(lat) > MaxLat {
		return orb.Point{}, errors.Wrapf(ErrOutOfDomain, "long=%v lat=%v", long, lat)
	}
	x, y := WgsToMerc(long, lat)
	return orb.Point{x, y}, nil
}

func (WebMercator) ToGeographic(p orb.Point) orb.Point {
	long, lat := MercToWgs(p[0], p[1])
	return orb.Point{long, lat}
}

func WgsToMerc(long, lat float64) (x, y float64) {
	x = long * pole / 180.0
	y = math.Log(math.Tan((90.0+lat)*math.Pi/360.0)) / math.Pi * pole
	return x, y
}

func MercToWgs(x, y float64) (long, lat float64) {
	long = 180.0 * x / pole
	lat = 180.0 / math.Pi * (2*math.Atan(math.Exp((y/pole)*math.Pi)) - math.Pi/2)
	return long, lat
}

// LineToPlanar projects all vertices of a geographic line. The first
// vertex outside of the projection domain aborts the transformation.
func LineToPlanar(p Projector, ls orb.LineString) (orb.LineString, error) {
	result := make(orb.LineString, len(ls))
	for i, pt := range ls {
		var err error
		result[i], err = p.ToPlanar(pt)
		if err != nil {
			return nil, errors.Wrapf(err, "vertex %d", i)
		}
	}
	return result, nil
}
