// Package writer writes sample points as GeoJSON, Shapefile or into a
// PostGIS table.
package writer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/treepedia/streetpoints/element"
)

// Sink receives the sample points of a run. Close must be called to
// complete the output.
type Sink interface {
	Write(p element.SampledPoint) error
	Close() error
	// Abort discards all written points. Files created by the sink are
	// removed.
	Abort()
}

type Options struct {
	// Overwrite existing files, or existing rows of the PostGIS table.
	Overwrite bool
	// Connection to PostGIS (postgis:// or postgres:// URL). Points are
	// written to PostGIS if set, the output filename is ignored.
	Connection string
	Schema     string
	Table      string
}

type Format string

const (
	GeoJSON   Format = "geojson"
	Shapefile Format = "shapefile"
	PostGIS   Format = "postgis"
)

const (
	DefaultSchema = "public"
	DefaultTable  = "street_points"
)

func isConnection(s string) bool {
	return strings.HasPrefix(s, "postgis://") || strings.HasPrefix(s, "postgres://") ||
		strings.HasPrefix(s, "postgresql://")
}

// DetectFormat returns the output format by the connection or the
// extension of filename.
func DetectFormat(filename string, opts Options) (Format, error) {
	if opts.Connection != "" || isConnection(filename) {
		return PostGIS, nil
	}
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".geojson", ".json":
		return GeoJSON, nil
	case ".shp":
		return Shapefile, nil
	default:
		return "", errors.Errorf("unsupported output format %q", ext)
	}
}

func Create(filename string, opts Options) (Sink, error) {
	format, err := DetectFormat(filename, opts)
	if err != nil {
		return nil, err
	}
	if format == PostGIS {
		conn := opts.Connection
		if conn == "" {
			conn = filename
		}
		sink, err := newPostGIS(conn, opts)
		if err != nil {
			return nil, errors.Wrap(err, "creating PostGIS output")
		}
		return sink, nil
	}

	if err := checkOverwrite(filename, opts.Overwrite); err != nil {
		return nil, err
	}
	var sink Sink
	switch format {
	case GeoJSON:
		sink, err = newGeoJSON(filename)
	case Shapefile:
		sink, err = newShapefile(filename)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", filename)
	}
	return sink, nil
}

func checkOverwrite(filename string, overwrite bool) error {
	_, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !overwrite {
		return errors.Errorf("output %s already exists", filename)
	}
	return nil
}
