package pipeline

import (
	"context"
	"iter"
	"runtime"
	"sync"

	"github.com/paulmach/orb"
	"github.com/treepedia/streetpoints/element"
)

type ParallelOptions struct {
	// Workers defaults to the number of CPUs.
	Workers int
	// Ordered emits the points in the order of the features, as Run does.
	// Points of a single feature are always emitted in order.
	Ordered bool
}

// reorderWindow is the number of features per worker that can be in
// flight while an earlier feature is still processed.
const reorderWindow = 16

type job struct {
	seq     int
	feature *element.Feature
}

type result struct {
	seq    int
	points []orb.Point
}

// RunParallel densifies features with a pool of workers. emit is called
// for each sample point from the goroutine of the caller. The run stops
// with the first error returned by emit or when ctx is canceled. All
// goroutines have returned when RunParallel returns.
func (p *Pipeline) RunParallel(ctx context.Context, features iter.Seq[*element.Feature], opts ParallelOptions, emit func(element.SampledPoint) error) error {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	window := make(chan struct{}, workers*reorderWindow)
	jobs := make(chan job, workers)
	results := make(chan result, workers)

	// total is only set if all features were read
	total := -1
	produced := make(chan struct{})
	go func() {
		defer close(produced)
		defer close(jobs)
		seq := 0
		for f := range features {
			select {
			case window <- struct{}{}:
			case <-ctx.Done():
				return
			}
			select {
			case jobs <- job{seq: seq, feature: f}:
			case <-ctx.Done():
				return
			}
			seq++
		}
		total = seq
	}()

	wg := sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				r := result{seq: j.seq}
				if points := p.points(j.feature); points != nil {
					for pt := range points {
						r.points = append(r.points, pt)
					}
					p.densified(j.feature, len(r.points))
				}
				select {
				case results <- r:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var err error
	emitAll := func(points []orb.Point) {
		for _, pt := range points {
			if err = emit(element.SampledPoint{Point: pt, ID: element.PointID}); err != nil {
				cancel()
				return
			}
		}
	}

	pending := make(map[int][]orb.Point)
	next := 0
	done := 0
	for r := range results {
		if err != nil {
			// drain until all workers returned
			continue
		}
		if !opts.Ordered {
			emitAll(r.points)
			<-window
			done++
			continue
		}
		pending[r.seq] = r.points
		for {
			points, ok := pending[next]
			if !ok || err != nil {
				break
			}
			delete(pending, next)
			emitAll(points)
			<-window
			next++
			done++
		}
	}

	cancel()
	<-produced
	if err != nil {
		return err
	}
	if done == total {
		return nil
	}
	// results is also closed after cancellation of the parent context
	return parent.Err()
}
