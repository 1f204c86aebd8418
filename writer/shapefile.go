package writer

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/treepedia/streetpoints/element"
)

const wgs84WKT = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

type shapefileSink struct {
	w    *shp.Writer
	base string
}

func newShapefile(filename string) (*shapefileSink, error) {
	w, err := shp.Create(filename, shp.POINT)
	if err != nil {
		return nil, err
	}
	if err := w.SetFields([]shp.Field{shp.NumberField("id", 10)}); err != nil {
		w.Close()
		return nil, err
	}
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if err := ioutil.WriteFile(base+".prj", []byte(wgs84WKT), 0644); err != nil {
		w.Close()
		return nil, err
	}
	return &shapefileSink{w: w, base: base}, nil
}

func (s *shapefileSink) Write(p element.SampledPoint) error {
	n := s.w.Write(&shp.Point{X: p.Long(), Y: p.Lat()})
	return s.w.WriteAttribute(int(n), 0, int(p.ID))
}

func (s *shapefileSink) Close() error {
	s.w.Close()
	return nil
}

func (s *shapefileSink) Abort() {
	s.w.Close()
	for _, ext := range []string{".shp", ".shx", ".dbf", ".prj"} {
		os.Remove(s.base + ext)
	}
}
