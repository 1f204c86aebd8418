package reader

import (
	"testing"

	osm "github.com/omniscale/go-osm"
	"github.com/treepedia/streetpoints/cache"
	"github.com/treepedia/streetpoints/geom"
)

func testCoords(t *testing.T) cache.Coords {
	c, err := cache.Open(t.TempDir(), cache.Badger)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })

	nodes := make([]osm.Node, 3)
	for i := range nodes {
		nodes[i].ID = int64(i + 1)
		nodes[i].Long = 8 + float64(i)*0.001
		nodes[i].Lat = 53
	}
	if err := c.PutCoords(nodes); err != nil {
		t.Fatal(err)
	}
	return c
}

func way(id int64, tags osm.Tags, refs ...int64) *osm.Way {
	w := &osm.Way{Refs: refs}
	w.ID = id
	w.Tags = tags
	return w
}

func TestWayFeature(t *testing.T) {
	coords := testCoords(t)
	src := &pbfSource{opts: Options{FilterKey: "highway"}}

	f, ok := src.wayFeature(coords, way(42, osm.Tags{"highway": "residential", "name": "Main St"}, 1, 2, 3))
	if !ok {
		t.Fatal("way with highway skipped")
	}
	if f.ID != 42 || len(f.Keys) != 1 || f.Keys[0] != "highway" || f.Tags["name"] != "Main St" {
		t.Fatal(f)
	}
	line, ok := f.Geometry.(geom.Line)
	if !ok || len(line) != 3 || line[2][0] < 8.0019 || line[2][1] < 52.9999 {
		t.Fatalf("%#v", f.Geometry)
	}

	if _, ok := src.wayFeature(coords, way(43, osm.Tags{"building": "yes"}, 1, 2, 3)); ok {
		t.Fatal("way without highway not skipped")
	}

	f, ok = src.wayFeature(coords, way(44, osm.Tags{"highway": "service"}, 1, 99))
	if !ok {
		t.Fatal("incomplete way skipped")
	}
	if _, ok := f.Geometry.(geom.Unsupported); !ok {
		t.Fatalf("%#v", f.Geometry)
	}
}

func TestWayFeatureAllWays(t *testing.T) {
	coords := testCoords(t)
	src := &pbfSource{opts: Options{FilterKey: "highway", AllWays: true}}

	if _, ok := src.wayFeature(coords, way(43, osm.Tags{"building": "yes"}, 1, 2, 3, 1)); !ok {
		t.Fatal("way skipped")
	}
	if _, ok := src.wayFeature(coords, way(44, nil)); ok {
		t.Fatal("way without refs not skipped")
	}
}
