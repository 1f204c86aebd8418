package reader

import (
	"iter"
	"testing"

	"github.com/pkg/errors"
	"github.com/treepedia/streetpoints/element"
)

func TestDetectFormat(t *testing.T) {
	for filename, expected := range map[string]Format{
		"roads.geojson":      GeoJSON,
		"roads.JSON":         GeoJSON,
		"roads.geojsonl":     GeoJSONSeq,
		"roads.geojsons":     GeoJSONSeq,
		"/tmp/roads.ndjson":  GeoJSONSeq,
		"roads.shp":          Shapefile,
		"bremen.osm.pbf":     PBF,
		"bremen-latest.pbf":  PBF,
		"data/roads.v2.shp":  Shapefile,
		"data/roads.osm.PBF": PBF,
	} {
		format, err := DetectFormat(filename)
		if err != nil || format != expected {
			t.Errorf("%s: %v %v", filename, format, err)
		}
	}
	for _, filename := range []string{"roads.gpkg", "roads", "roads.osm"} {
		if _, err := DetectFormat(filename); err == nil {
			t.Errorf("no error for %s", filename)
		}
	}
}

func TestOpenMissing(t *testing.T) {
	for _, filename := range []string{"missing.geojson", "missing.shp", "missing.osm.pbf"} {
		if _, err := Open(filename, Options{}); err == nil {
			t.Errorf("no error for %s", filename)
		}
	}
}

type failingSource struct {
	n   int
	err error
}

func (s *failingSource) Features() iter.Seq2[*element.Feature, error] {
	return func(yield func(*element.Feature, error) bool) {
		for i := 0; i < s.n; i++ {
			if !yield(&element.Feature{ID: int64(i)}, nil) {
				return
			}
		}
		yield(nil, s.err)
	}
}

func (s *failingSource) Close() error { return nil }

func TestAll(t *testing.T) {
	errRead := errors.New("read error")
	src := &failingSource{n: 3, err: errRead}

	var err error
	n := 0
	for range All(src, &err) {
		n++
	}
	if n != 3 || err != errRead {
		t.Fatal(n, err)
	}

	err = nil
	for range All(src, &err) {
		break
	}
	if err != nil {
		t.Fatal(err)
	}
}
