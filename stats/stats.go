// Package stats counts the features and points of a densification run.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/treepedia/streetpoints/log"
)

var (
	featuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "streetpoints",
		Name:      "features_total",
		Help:      "Features processed, by result",
	}, []string{"status"})

	pointsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "streetpoints",
		Name:      "points_total",
		Help:      "Sample points emitted",
	})
)

// Counts is a snapshot of the counters of a run.
type Counts struct {
	// Features is the number of all read features.
	Features int64
	// Filtered features were dropped by the exclusion filter.
	Filtered int64
	// Failed features had an unsupported geometry or coordinates outside
	// of the projection domain.
	Failed int64
	// Empty features were densified without producing any point
	// (degenerate or too short lines).
	Empty int64
	// Densified features produced at least one point. Features whose
	// points were not all consumed are not counted.
	Densified int64
	Points    int64
}

// Kept returns the number of features that passed the filter.
func (c Counts) Kept() int64 {
	return c.Features - c.Filtered
}

func (c Counts) String() string {
	return fmt.Sprintf("Features: %d (filtered: %d, failed: %d, empty: %d, densified: %d) Points: %d",
		c.Features, c.Filtered, c.Failed, c.Empty, c.Densified, c.Points)
}

// Statistics counts features and points. All methods are safe for
// concurrent use.
type Statistics struct {
	features *RpsCounter
	points   *RpsCounter
	filtered  int64
	failed    int64
	empty     int64
	densified int64
}

func New() *Statistics {
	return &Statistics{
		features: NewRpsCounter(),
		points:   NewRpsCounter(),
	}
}

func (s *Statistics) AddFeature() {
	s.features.Add(1)
}

func (s *Statistics) AddFiltered() {
	atomic.AddInt64(&s.filtered, 1)
	featuresTotal.WithLabelValues("filtered").Inc()
}

func (s *Statistics) AddFailed() {
	atomic.AddInt64(&s.failed, 1)
	featuresTotal.WithLabelValues("failed").Inc()
}

func (s *Statistics) AddEmpty() {
	atomic.AddInt64(&s.empty, 1)
	featuresTotal.WithLabelValues("empty").Inc()
}

// AddDensified counts a feature that produced n > 0 points.
func (s *Statistics) AddDensified(n int) {
	atomic.AddInt64(&s.densified, 1)
	featuresTotal.WithLabelValues("densified").Inc()
	s.AddPoints(n)
}

func (s *Statistics) AddPoints(n int) {
	s.points.Add(n)
	pointsTotal.Add(float64(n))
}

func (s *Statistics) Counts() Counts {
	return Counts{
		Features:  s.features.Value(),
		Filtered:  atomic.LoadInt64(&s.filtered),
		Failed:    atomic.LoadInt64(&s.failed),
		Empty:     atomic.LoadInt64(&s.empty),
		Densified: atomic.LoadInt64(&s.densified),
		Points:    s.points.Value(),
	}
}

// StartReporter logs a progress line every interval until the returned
// func is called.
func (s *Statistics) StartReporter(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case now := <-tick.C:
				s.report(now)
			case <-done:
				return
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

func (s *Statistics) report(now time.Time) {
	featuresPS := int64(s.features.Tick(now)/10) * 10
	pointsPS := int64(s.points.Tick(now)/100) * 100
	c := s.Counts()
	log.Printf("[progress] Features: %7d/s (%9d) Points: %8d/s (%10d) Filtered: %8d Failed: %6d",
		featuresPS, c.Features, pointsPS, c.Points, c.Filtered, c.Failed)
}
