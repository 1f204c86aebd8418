package config

import (
	"errors"
	"flag"
	"strings"
	"testing"
)

func TestParseDensifyDefaults(t *testing.T) {
	o, errs := ParseDensify([]string{"-input", "roads.shp", "-output", "points.geojson"})
	if len(errs) != 0 {
		t.Fatal(errs)
	}
	if o.Spacing != 20 || o.Workers != 1 || o.Schema != "public" || o.Table != "street_points" || o.CacheBackend != "leveldb" {
		t.Fatalf("%+v", o)
	}
	f, err := o.Filter()
	if err != nil {
		t.Fatal(err)
	}
	if f.Key != "highway" || !f.Exclude.Empty() {
		t.Fatal(f.Key, f.Exclude)
	}
}

func TestParseDensifyInputArg(t *testing.T) {
	o, errs := ParseDensify([]string{"-output", "points.shp", "roads.osm.pbf"})
	if len(errs) != 0 {
		t.Fatal(errs)
	}
	if o.Input != "roads.osm.pbf" {
		t.Fatal(o.Input)
	}
}

func TestParseDensifyErrors(t *testing.T) {
	_, errs := ParseDensify([]string{"-spacing", "0", "-workers", "-1", "-cachebackend", "rocksdb"})
	if len(errs) != 5 {
		t.Fatal(errs)
	}
	for i, expected := range []string{"missing -input", "missing -output", "spacing", "workers", "rocksdb"} {
		if !strings.Contains(errs[i].Error(), expected) {
			t.Errorf("%q not in %q", expected, errs[i])
		}
	}

	_, errs = ParseDensify([]string{"-input", "roads.gpkg", "-output", "points.csv", "-spacing", "-5"})
	if len(errs) != 3 {
		t.Fatal(errs)
	}

	_, errs = ParseDensify([]string{"-unknown"})
	if len(errs) != 1 {
		t.Fatal(errs)
	}

	_, errs = ParseDensify([]string{"-help"})
	if len(errs) != 1 || !errors.Is(errs[0], flag.ErrHelp) {
		t.Fatal(errs)
	}
}

func TestConfigFile(t *testing.T) {
	o, errs := ParseDensify([]string{"-config", "testdata/densify.json", "-exclude", "footway", "-table", "points"})
	if len(errs) != 0 {
		t.Fatal(errs)
	}
	if o.Input != "roads.geojson" || o.Output != "points.geojson" {
		t.Fatalf("%+v", o)
	}
	if o.Spacing != 10 || o.Workers != 4 || o.Schema != "streets" || o.Table != "points" || o.CacheBackend != "badger" {
		t.Fatalf("%+v", o)
	}
	f, err := o.Filter()
	if err != nil {
		t.Fatal(err)
	}
	if v := f.Exclude.Values(); len(v) != 3 || v[0] != "footway" || v[1] != "motorway" {
		t.Fatal(v)
	}

	// command line options are not overwritten
	o, errs = ParseDensify([]string{"-config", "testdata/densify.json", "-spacing", "5", "-input", "other.shp"})
	if len(errs) != 0 {
		t.Fatal(errs)
	}
	if o.Spacing != 5 || o.Input != "other.shp" {
		t.Fatalf("%+v", o)
	}

	_, errs = ParseDensify([]string{"-config", "testdata/missing.json"})
	if len(errs) != 1 {
		t.Fatal(errs)
	}
}

func TestFilter(t *testing.T) {
	o := &DensifyOptions{Exclusions: "testdata/exclusions.yml", Exclude: "primary, ~"}
	f, err := o.Filter()
	if err != nil {
		t.Fatal(err)
	}
	if f.Key != "fclass" {
		t.Error(f.Key)
	}
	if v := f.Exclude.Values(); len(v) != 3 || !f.Exclude.Contains("", false) {
		t.Error(f.Exclude)
	}

	o.FilterKey = "highway"
	f, err = o.Filter()
	if err != nil {
		t.Fatal(err)
	}
	if f.Key != "highway" {
		t.Error(f.Key)
	}

	o.Exclusions = "testdata/missing.yml"
	if _, err := o.Filter(); err == nil {
		t.Error("no error for missing exclusions")
	}
}

func TestReaderWriterOptions(t *testing.T) {
	o := &DensifyOptions{CacheBackend: "badger", CacheDir: "/tmp/cache", Connection: "postgis://localhost/gis", Overwrite: true}
	if r := o.ReaderOptions(); r.CacheBackend != "badger" || r.CacheDir != "/tmp/cache" {
		t.Error(r)
	}
	if w := o.WriterOptions(); !w.Overwrite || w.Connection != "postgis://localhost/gis" {
		t.Error(w)
	}
}
