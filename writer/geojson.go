package writer

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/treepedia/streetpoints/element"
)

const crs84 = "urn:ogc:def:crs:OGC:1.3:CRS84"

type geojsonSink struct {
	f     *os.File
	w     *bufio.Writer
	first bool
}

type collectionHeader struct {
	Type string `json:"type"`
	Name string `json:"name"`
	CRS  struct {
		Type       string            `json:"type"`
		Properties map[string]string `json:"properties"`
	} `json:"crs"`
}

func newGeoJSON(filename string) (*geojsonSink, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	s := &geojsonSink{f: f, w: bufio.NewWriterSize(f, 256*1024), first: true}

	header := collectionHeader{
		Type: "FeatureCollection",
		Name: strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)),
	}
	header.CRS.Type = "name"
	header.CRS.Properties = map[string]string{"name": crs84}
	data, err := json.Marshal(header)
	if err != nil {
		f.Close()
		return nil, err
	}
	// reopen the object to append the features array
	s.w.Write(data[:len(data)-1])
	s.w.WriteString(",\n\"features\": [\n")
	return s, nil
}

func (s *geojsonSink) Write(p element.SampledPoint) error {
	f := geojson.NewFeature(p.Point)
	f.Properties["id"] = p.ID
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if !s.first {
		s.w.WriteString(",\n")
	}
	s.first = false
	_, err = s.w.Write(data)
	return err
}

func (s *geojsonSink) Close() error {
	s.w.WriteString("\n]\n}\n")
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

func (s *geojsonSink) Abort() {
	s.f.Close()
	os.Remove(s.f.Name())
}
