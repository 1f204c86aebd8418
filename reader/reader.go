// Package reader reads line features from GeoJSON, Shapefile and OSM PBF
// files.
package reader

import (
	"iter"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/treepedia/streetpoints/cache"
	"github.com/treepedia/streetpoints/element"
)

// Source is an opened feature file.
type Source interface {
	// Features returns all features of the source in file order. An error
	// stops the sequence. Features of invalid geometries are no error,
	// they are returned with a geom.Unsupported geometry.
	Features() iter.Seq2[*element.Feature, error]
	Close() error
}

type Options struct {
	// FilterKey selects the ways of OSM files. Only ways with a value for
	// FilterKey are read, unless AllWays is set.
	FilterKey string
	AllWays   bool
	// CacheDir for the node coordinates of OSM files. A temporary
	// directory is used if empty.
	CacheDir     string
	CacheBackend cache.Backend
	// Concurrency of the OSM parser. Defaults to the number of CPUs.
	Concurrency int
}

type Format string

const (
	GeoJSON    Format = "geojson"
	GeoJSONSeq Format = "geojsonseq"
	Shapefile  Format = "shapefile"
	PBF        Format = "pbf"
)

// DetectFormat returns the format of filename by its extension.
func DetectFormat(filename string) (Format, error) {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".osm.pbf") {
		return PBF, nil
	}
	switch ext := filepath.Ext(lower); ext {
	case ".geojson", ".json":
		return GeoJSON, nil
	case ".geojsonl", ".geojsons", ".ndjson":
		return GeoJSONSeq, nil
	case ".shp":
		return Shapefile, nil
	case ".pbf":
		return PBF, nil
	default:
		return "", errors.Errorf("unsupported input format %q", ext)
	}
}

// Open opens filename. The format is detected by the file extension.
func Open(filename string, opts Options) (Source, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	var src Source
	switch format {
	case GeoJSON:
		src, err = openGeoJSON(filename, false)
	case GeoJSONSeq:
		src, err = openGeoJSON(filename, true)
	case Shapefile:
		src, err = openShapefile(filename)
	case PBF:
		src, err = openPBF(filename, opts)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", filename)
	}
	return src, nil
}

// All returns the features of src. The sequence stops at the first error,
// which is stored in *errp.
func All(src Source, errp *error) iter.Seq[*element.Feature] {
	return func(yield func(*element.Feature) bool) {
		for f, err := range src.Features() {
			if err != nil {
				*errp = err
				return
			}
			if !yield(f) {
				return
			}
		}
	}
}
