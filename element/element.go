package element

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/treepedia/streetpoints/geom"
)

// PointID is the id attribute of all sampled points. Ids do not identify
// points, callers must not depend on their uniqueness.
const PointID int64 = 1

type Tags map[string]string

func (t *Tags) String() string {
	return fmt.Sprintf("%v", (map[string]string)(*t))
}

// Feature is a single input feature with geographic (WGS84) line geometry.
type Feature struct {
	// ID is the position or id of the feature within the source. Only
	// used for reporting.
	ID       int64
	Geometry geom.Geometry
	// Tags contains the attribute values of the feature. Missing and
	// null values are not included.
	Tags Tags
	// Keys lists all attribute keys of the source schema in schema order,
	// including keys without a value for this feature.
	Keys []string
}

// Value returns the attribute value for key. ok is false if the value is
// absent.
func (f *Feature) Value(key string) (value string, ok bool) {
	value, ok = f.Tags[key]
	return value, ok
}

// InSchema returns whether key is part of the source schema.
func (f *Feature) InSchema(key string) bool {
	for _, k := range f.Keys {
		if k == key {
			return true
		}
	}
	return false
}

func (f *Feature) String() string {
	if f.Geometry == nil {
		return fmt.Sprintf("feature #%d (null)", f.ID)
	}
	return fmt.Sprintf("feature #%d (%s)", f.ID, f.Geometry.GeoJSONType())
}

// SampledPoint is a single output point in geographic (WGS84) coordinates.
type SampledPoint struct {
	Point orb.Point
	ID    int64
}

// Long returns the longitude of the point.
func (p SampledPoint) Long() float64 { return p.Point[0] }

// Lat returns the latitude of the point.
func (p SampledPoint) Lat() float64 { return p.Point[1] }
