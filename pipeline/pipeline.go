// Package pipeline filters features and densifies the geometries of the
// kept features into sample points.
package pipeline

import (
	"fmt"
	"iter"
	"sync"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/treepedia/streetpoints/densify"
	"github.com/treepedia/streetpoints/element"
	"github.com/treepedia/streetpoints/filter"
	"github.com/treepedia/streetpoints/log"
	"github.com/treepedia/streetpoints/proj"
	"github.com/treepedia/streetpoints/stats"
)

// FeatureError is the error of a single feature. It never stops a run.
type FeatureError struct {
	ID  int64
	Err error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("feature #%d: %s", e.ID, e.Err)
}

// Cause returns the wrapped error, for errors.Cause.
func (e *FeatureError) Cause() error { return e.Err }

func (e *FeatureError) Unwrap() error { return e.Err }

type Options struct {
	// Spacing between sample points in meters.
	Spacing float64
	// Filter selects the densified features. All features are kept if
	// Filter is nil.
	Filter *filter.Filter
	// Projector defaults to proj.WebMercator.
	Projector proj.Projector
	// OnError is called for each feature that could not be densified.
	// Errors are logged as warnings if OnError is nil. OnError is called
	// from the worker goroutines in RunParallel.
	OnError func(*FeatureError)
	// Stats defaults to a new stats.Statistics.
	Stats *stats.Statistics
}

type Pipeline struct {
	filter    *filter.Filter
	densifier *densify.Densifier
	onError   func(*FeatureError)
	stats     *stats.Statistics

	fallbackOnce sync.Once
}

// New returns a Pipeline or geom.ErrInvalidSpacing if opts.Spacing is not
// a positive, finite number.
func New(opts Options) (*Pipeline, error) {
	d, err := densify.New(opts.Projector, opts.Spacing)
	if err != nil {
		return nil, errors.Wrap(err, "creating pipeline")
	}
	p := &Pipeline{
		filter:    opts.Filter,
		densifier: d,
		onError:   opts.OnError,
		stats:     opts.Stats,
	}
	if p.onError == nil {
		p.onError = func(err *FeatureError) {
			log.Printf("[warn] skipping %s", err)
		}
	}
	if p.stats == nil {
		p.stats = stats.New()
	}
	return p, nil
}

func (p *Pipeline) Stats() *stats.Statistics {
	return p.stats
}

// Run returns the sample points of all kept features, in the order of
// features and of the points along each geometry. Features are read
// from features while the returned sequence is iterated. Stopping the
// iteration stops reading features.
func (p *Pipeline) Run(features iter.Seq[*element.Feature]) iter.Seq[element.SampledPoint] {
	return func(yield func(element.SampledPoint) bool) {
		for f := range features {
			points := p.points(f)
			if points == nil {
				continue
			}
			n := 0
			for pt := range points {
				n++
				if !yield(element.SampledPoint{Point: pt, ID: element.PointID}) {
					// f is only partially densified
					p.stats.AddPoints(n)
					return
				}
			}
			p.densified(f, n)
		}
	}
}

// points returns the sample points of f, or nil if f is filtered or
// failed.
func (p *Pipeline) points(f *element.Feature) iter.Seq[orb.Point] {
	p.stats.AddFeature()
	if !p.keep(f) {
		p.stats.AddFiltered()
		return nil
	}
	points, err := p.densifier.Densify(f.Geometry)
	if err != nil {
		p.stats.AddFailed()
		p.onError(&FeatureError{ID: f.ID, Err: err})
		return nil
	}
	return points
}

func (p *Pipeline) keep(f *element.Feature) bool {
	if p.filter == nil {
		return true
	}
	if !p.filter.Exclude.Empty() {
		if key := filter.LookupKey(f, p.filter.Key); key != p.filter.Key {
			p.fallbackOnce.Do(func() {
				log.Printf("[warn] filter key %q not in attributes of %s, filtering by first attribute %q",
					p.filter.Key, f, key)
			})
		}
	}
	return p.filter.Keep(f)
}

func (p *Pipeline) densified(f *element.Feature, n int) {
	if n == 0 {
		p.stats.AddEmpty()
		log.Printf("[debug] %s is too short or degenerate, no points", f)
		return
	}
	p.stats.AddDensified(n)
}
