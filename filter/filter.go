// Package filter decides which features are densified, based on the value
// of a single attribute.
package filter

import (
	"fmt"
	"io/ioutil"
	"sort"

	"github.com/pkg/errors"
	"github.com/treepedia/streetpoints/element"
	"gopkg.in/yaml.v2"
)

// DefaultKey is the attribute that classifies OpenStreetMap roads.
const DefaultKey = "highway"

// ExclusionSet is a set of attribute values. A feature without a value
// for the attribute matches if the set contains the absent value.
type ExclusionSet struct {
	values map[string]struct{}
	absent bool
}

func NewExclusionSet(values ...string) ExclusionSet {
	s := ExclusionSet{}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

func (s *ExclusionSet) Add(value string) {
	if s.values == nil {
		s.values = make(map[string]struct{})
	}
	s.values[value] = struct{}{}
}

// AddAbsent adds the absent value to the set.
func (s *ExclusionSet) AddAbsent() {
	s.absent = true
}

// Contains checks value for exact membership. ok=false checks for the
// absent value.
func (s ExclusionSet) Contains(value string, ok bool) bool {
	if !ok {
		return s.absent
	}
	_, found := s.values[value]
	return found
}

func (s ExclusionSet) Empty() bool {
	return len(s.values) == 0 && !s.absent
}

// Values returns all values (without the absent value) in sorted order.
func (s ExclusionSet) Values() []string {
	values := make([]string, 0, len(s.values))
	for v := range s.values {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func (s ExclusionSet) String() string {
	if s.absent {
		return fmt.Sprintf("%q + <absent>", s.Values())
	}
	return fmt.Sprintf("%q", s.Values())
}

// Filter drops features by the value of Key.
type Filter struct {
	Key     string
	Exclude ExclusionSet
}

func New(key string, exclude ExclusionSet) *Filter {
	if key == "" {
		key = DefaultKey
	}
	return &Filter{Key: key, Exclude: exclude}
}

func (f *Filter) Keep(feature *element.Feature) bool {
	return Keep(feature, f.Key, f.Exclude)
}

// Keep returns false if the value of key is part of exclude.
//
// If key is not part of the schema of the feature, then the first key of
// the schema is checked instead. An empty exclude set keeps all features.
func Keep(feature *element.Feature, key string, exclude ExclusionSet) bool {
	if exclude.Empty() {
		return true
	}
	value, ok := feature.Value(LookupKey(feature, key))
	return !exclude.Contains(value, ok)
}

// LookupKey returns the attribute key that Keep checks for feature.
func LookupKey(feature *element.Feature, key string) string {
	if len(feature.Keys) == 0 || feature.InSchema(key) {
		return key
	}
	return feature.Keys[0]
}

type fileConfig struct {
	Key     string        `yaml:"key"`
	Exclude []interface{} `yaml:"exclude"`
}

// Parse reads a filter from YAML:
//
//	key: highway
//	exclude: [motorway, footway, ~]
//
// A null entry adds the absent value.
func Parse(data []byte) (*Filter, error) {
	conf := fileConfig{}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, errors.Wrap(err, "parsing exclusions")
	}
	exclude := ExclusionSet{}
	for _, v := range conf.Exclude {
		switch v := v.(type) {
		case nil:
			exclude.AddAbsent()
		case string:
			exclude.Add(v)
		case int, int64, float64, bool:
			exclude.Add(fmt.Sprint(v))
		default:
			return nil, errors.Errorf("exclude value '%v' not a scalar", v)
		}
	}
	return New(conf.Key, exclude), nil
}

func LoadFile(filename string) (*Filter, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading exclusions %q", filename)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "in %q", filename)
	}
	return f, nil
}
