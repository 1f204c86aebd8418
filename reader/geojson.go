package reader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"iter"
	"os"
	"strconv"

	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"github.com/treepedia/streetpoints/element"
	"github.com/treepedia/streetpoints/geom"
	"github.com/treepedia/streetpoints/log"
)

// maxLineSize of GeoJSON text sequences.
const maxLineSize = 64 * 1024 * 1024

type geojsonSource struct {
	f   *os.File
	seq bool
	// keys of all features in first-seen order, nil until the first read
	keys []string
}

func openGeoJSON(filename string, seq bool) (*geojsonSource, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	return &geojsonSource{f: f, seq: seq}, nil
}

func (s *geojsonSource) Close() error {
	return s.f.Close()
}

// Features returns all features of the file. All features share the same
// Keys: the property keys of the whole file, in the order in which they
// first appear.
func (s *geojsonSource) Features() iter.Seq2[*element.Feature, error] {
	return func(yield func(*element.Feature, error) bool) {
		if s.keys == nil {
			keys, err := s.scanKeys()
			if err != nil {
				yield(nil, err)
				return
			}
			s.keys = keys
		}
		if _, err := s.f.Seek(0, io.SeekStart); err != nil {
			yield(nil, err)
			return
		}
		err := s.decode(func(id int64, raw *rawFeature) bool {
			return yield(newFeature(id, raw, s.keys), nil)
		})
		if err != nil {
			yield(nil, err)
		}
	}
}

// scanKeys collects the property keys of all features. Decoding errors
// are reported by the following read.
func (s *geojsonSource) scanKeys() ([]string, error) {
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	keys := []string{}
	seen := make(map[string]struct{})
	s.decode(func(_ int64, raw *rawFeature) bool {
		_, fkeys, _ := parseProperties(raw.Properties)
		for _, k := range fkeys {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
		return true
	})
	return keys, nil
}

func (s *geojsonSource) decode(fn func(id int64, raw *rawFeature) bool) error {
	if s.seq {
		return decodeGeoJSONSeq(s.f, fn)
	}
	return decodeFeatureCollection(s.f, fn)
}

type rawFeature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

// decodeFeatureCollection decodes the entries of the features array one
// by one. A single Feature object is also accepted.
func decodeFeatureCollection(r io.Reader, fn func(id int64, raw *rawFeature) bool) error {
	dec := json.NewDecoder(bufio.NewReader(r))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	var id int64
	var single rawFeature
	sawFeatures := false
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.Wrap(err, "decoding GeoJSON")
		}
		key, _ := tok.(string)
		switch key {
		case "features":
			sawFeatures = true
			if err := expectDelim(dec, '['); err != nil {
				return err
			}
			for dec.More() {
				raw := rawFeature{}
				if err := dec.Decode(&raw); err != nil {
					return errors.Wrapf(err, "decoding feature #%d", id)
				}
				if !fn(id, &raw) {
					return nil
				}
				id++
			}
			if err := expectDelim(dec, ']'); err != nil {
				return err
			}
		case "type":
			if err := dec.Decode(&single.Type); err != nil {
				return errors.Wrap(err, "decoding GeoJSON type")
			}
		case "geometry":
			if err := dec.Decode(&single.Geometry); err != nil {
				return errors.Wrap(err, "decoding GeoJSON geometry")
			}
		case "properties":
			if err := dec.Decode(&single.Properties); err != nil {
				return errors.Wrap(err, "decoding GeoJSON properties")
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return errors.Wrapf(err, "decoding GeoJSON member %q", key)
			}
		}
	}

	if sawFeatures {
		return nil
	}
	if single.Type != "Feature" {
		return errors.Errorf("GeoJSON is not a FeatureCollection or Feature but %q", single.Type)
	}
	fn(0, &single)
	return nil
}

func expectDelim(dec *json.Decoder, delim json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "decoding GeoJSON")
	}
	if d, ok := tok.(json.Delim); !ok || d != delim {
		return errors.Errorf("decoding GeoJSON: expected '%s', found '%v'", delim, tok)
	}
	return nil
}

// decodeGeoJSONSeq reads one feature per line. Empty lines and RFC 8142
// record separators are ignored.
func decodeGeoJSONSeq(r io.Reader, fn func(id int64, raw *rawFeature) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var id int64
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(bytes.TrimLeft(scanner.Bytes(), "\x1e"))
		if len(line) == 0 {
			continue
		}
		raw := rawFeature{}
		if err := json.Unmarshal(line, &raw); err != nil {
			return errors.Wrapf(err, "decoding feature in line %d", lineNum)
		}
		if !fn(id, &raw) {
			return nil
		}
		id++
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "reading line %d", lineNum+1)
	}
	return nil
}

// newFeature never fails. Entries that are no valid features are
// returned with an Unsupported geometry.
func newFeature(id int64, raw *rawFeature, keys []string) *element.Feature {
	f := &element.Feature{ID: id, Keys: keys}
	if raw.Type != "" && raw.Type != "Feature" {
		log.Printf("[debug] feature #%d: type is %q", id, raw.Type)
		f.Geometry = geom.Unsupported{Type: raw.Type}
		return f
	}
	tags, _, err := parseProperties(raw.Properties)
	if err != nil {
		log.Printf("[debug] feature #%d: %s", id, err)
		f.Geometry = geom.Unsupported{Type: "invalid properties"}
		return f
	}
	f.Tags = tags
	f.Geometry = parseGeometry(id, raw.Geometry)
	return f
}

func parseGeometry(id int64, data json.RawMessage) geom.Geometry {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return geom.Unsupported{}
	}
	typ := struct {
		Type string `json:"type"`
	}{}
	if err := json.Unmarshal(data, &typ); err != nil {
		log.Printf("[debug] feature #%d: invalid geometry: %s", id, err)
		return geom.Unsupported{}
	}
	if typ.Type != "LineString" && typ.Type != "MultiLineString" {
		return geom.Unsupported{Type: typ.Type}
	}
	g := geojson.Geometry{}
	if err := json.Unmarshal(data, &g); err != nil {
		log.Printf("[debug] feature #%d: invalid geometry: %s", id, err)
		return geom.Unsupported{Type: typ.Type}
	}
	return geom.FromOrb(g.Geometry())
}

// parseProperties returns the property values as strings and all property
// keys in file order. Null values are absent.
func parseProperties(data json.RawMessage) (element.Tags, []string, error) {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, errors.Wrap(err, "properties")
	}

	tags := make(element.Tags)
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, errors.Wrap(err, "properties")
		}
		key := tok.(string)
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return nil, nil, errors.Wrapf(err, "property %q", key)
		}
		keys = append(keys, key)
		if v == nil {
			continue
		}
		tags[key] = propertyString(v)
	}
	return tags, keys, nil
}

func propertyString(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}
