package reader

import (
	"io/ioutil"
	"iter"
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/treepedia/streetpoints/element"
	"github.com/treepedia/streetpoints/geom"
	"github.com/treepedia/streetpoints/log"
)

type shapefileSource struct {
	filename string
	r        *shp.Reader
}

func openShapefile(filename string) (*shapefileSource, error) {
	r, err := shp.Open(filename)
	if err != nil {
		return nil, err
	}
	checkPrj(filename)
	return &shapefileSource{filename: filename, r: r}, nil
}

// checkPrj warns if the .prj of filename is not geographic WGS84. The
// coordinates are read as WGS84 in any case.
func checkPrj(filename string) {
	prjName := strings.TrimSuffix(filename, ".shp")
	if prjName == filename {
		prjName = strings.TrimSuffix(filename, ".SHP")
	}
	data, err := ioutil.ReadFile(prjName + ".prj")
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[warn] reading projection of %s: %s", filename, err)
		}
		return
	}
	if !isGeographicWGS84(string(data)) {
		log.Printf("[warn] %s is not in geographic WGS84 (EPSG:4326), coordinates are read as WGS84 anyway", filename)
	}
}

func isGeographicWGS84(wkt string) bool {
	wkt = strings.ToUpper(strings.TrimSpace(wkt))
	if !strings.HasPrefix(wkt, "GEOGCS[") {
		return false
	}
	return strings.Contains(wkt, "WGS_1984") || strings.Contains(wkt, "WGS 84") || strings.Contains(wkt, "WGS84")
}

func (s *shapefileSource) Close() error {
	return s.r.Close()
}

// Features reads the shapes of the file. A shapefile can only be iterated
// once.
func (s *shapefileSource) Features() iter.Seq2[*element.Feature, error] {
	return func(yield func(*element.Feature, error) bool) {
		fields := s.r.Fields()
		keys := make([]string, len(fields))
		for i, f := range fields {
			keys[i] = f.String()
		}

		for s.r.Next() {
			n, shape := s.r.Shape()
			tags := make(element.Tags, len(keys))
			for i, k := range keys {
				// unset DBF values are padded with spaces or zero bytes
				if v := strings.Trim(s.r.ReadAttribute(n, i), "\x00 "); v != "" {
					tags[k] = v
				}
			}
			f := &element.Feature{
				ID:       int64(n),
				Geometry: shapeGeometry(shape),
				Tags:     tags,
				Keys:     keys,
			}
			if !yield(f, nil) {
				return
			}
		}
		if err := s.r.Err(); err != nil {
			yield(nil, err)
		}
	}
}

func shapeGeometry(shape shp.Shape) geom.Geometry {
	switch shape := shape.(type) {
	case *shp.PolyLine:
		return partsGeometry(shape.Parts, shape.Points)
	case *shp.PolyLineZ:
		return partsGeometry(shape.Parts, shape.Points)
	case *shp.PolyLineM:
		return partsGeometry(shape.Parts, shape.Points)
	case *shp.Null, nil:
		return geom.Unsupported{}
	default:
		return geom.Unsupported{Type: shapeTypeName(shape)}
	}
}

func shapeTypeName(shape shp.Shape) string {
	switch shape.(type) {
	case *shp.Point, *shp.PointZ, *shp.PointM:
		return "Point"
	case *shp.MultiPoint, *shp.MultiPointZ, *shp.MultiPointM:
		return "MultiPoint"
	case *shp.Polygon, *shp.PolygonZ, *shp.PolygonM:
		return "Polygon"
	}
	return "Unknown"
}

// partsGeometry returns a Line for a single part and a MultiLine
// otherwise.
func partsGeometry(parts []int32, points []shp.Point) geom.Geometry {
	if len(parts) == 0 {
		return geom.Unsupported{}
	}
	lines := make([]orb.LineString, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || end > int32(len(points)) {
			return geom.Unsupported{Type: "MultiLineString"}
		}
		ls := make(orb.LineString, 0, end-start)
		for _, p := range points[start:end] {
			ls = append(ls, orb.Point{p.X, p.Y})
		}
		lines = append(lines, ls)
	}
	if len(lines) == 1 {
		return geom.Line(lines[0])
	}
	return geom.MultiLine(lines)
}
