package geom

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestFromOrb(t *testing.T) {
	ls := orb.LineString{{0, 0}, {1, 1}}
	if g, ok := FromOrb(ls).(Line); !ok || len(g) != 2 {
		t.Fatal(g)
	}

	mls := orb.MultiLineString{ls, {{2, 2}, {3, 3}, {4, 4}}}
	g, ok := FromOrb(mls).(MultiLine)
	if !ok || len(g) != 2 || len(g[1]) != 3 {
		t.Fatal(g)
	}
	if g.GeoJSONType() != "MultiLineString" {
		t.Fatal(g.GeoJSONType())
	}

	for _, tc := range []struct {
		geom     orb.Geometry
		expected string
	}{
		{orb.Point{1, 2}, "Point"},
		{orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, "Polygon"},
		{nil, "null"},
	} {
		g := FromOrb(tc.geom)
		if _, ok := g.(Unsupported); !ok {
			t.Errorf("%v not unsupported", tc.geom)
		}
		if g.GeoJSONType() != tc.expected {
			t.Errorf("%q != %q", g.GeoJSONType(), tc.expected)
		}
	}
}
