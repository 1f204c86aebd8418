package reader

import (
	"context"
	"iter"
	"os"
	"runtime"
	"sync"

	osm "github.com/omniscale/go-osm"
	"github.com/omniscale/go-osm/parser/pbf"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/treepedia/streetpoints/cache"
	"github.com/treepedia/streetpoints/element"
	"github.com/treepedia/streetpoints/filter"
	"github.com/treepedia/streetpoints/geom"
	"github.com/treepedia/streetpoints/log"
)

type pbfSource struct {
	filename string
	opts     Options
}

func openPBF(filename string, opts Options) (*pbfSource, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, err
	}
	if opts.FilterKey == "" {
		opts.FilterKey = filter.DefaultKey
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	return &pbfSource{filename: filename, opts: opts}, nil
}

func (s *pbfSource) Close() error { return nil }

// Features parses the file and returns all selected ways as lines. All
// node coordinates are cached before the first way is returned. The file
// must be sorted by type (nodes before ways).
func (s *pbfSource) Features() iter.Seq2[*element.Feature, error] {
	return func(yield func(*element.Feature, error) bool) {
		if err := s.read(yield); err != nil {
			yield(nil, err)
		}
	}
}

func (s *pbfSource) read(yield func(*element.Feature, error) bool) error {
	f, err := os.Open(s.filename)
	if err != nil {
		return err
	}
	defer f.Close()

	cacheDir := s.opts.CacheDir
	if cacheDir == "" {
		cacheDir, err = os.MkdirTemp("", "streetpoints-cache")
		if err != nil {
			return errors.Wrap(err, "creating cache dir")
		}
		defer os.RemoveAll(cacheDir)
	} else if cache.Exists(cacheDir) {
		log.Printf("[info] removing existing coords cache in %s", cacheDir)
		if err := cache.Remove(cacheDir); err != nil {
			return err
		}
	}
	coordsCache, err := cache.Open(cacheDir, s.opts.CacheBackend)
	if err != nil {
		return err
	}
	defer coordsCache.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nCoords := s.opts.Concurrency
	coords := make(chan []osm.Node, 4)
	ways := make(chan []osm.Way, 4)

	coordsSynced := sync.WaitGroup{}
	coordsSynced.Add(nCoords)
	parser := pbf.New(f, pbf.Config{
		Coords:      coords,
		Ways:        ways,
		Concurrency: s.opts.Concurrency,
		OnFirstWay: func() {
			for i := 0; i < nCoords; i++ {
				coords <- nil
			}
			coordsSynced.Wait()
			log.Println("[info] all coords cached, reading ways")
		},
	})

	header, err := parser.Header()
	if err != nil {
		return errors.Wrapf(err, "parsing %s", s.filename)
	}
	if header.Time.Unix() > 0 {
		log.Printf("[info] reading %s with data till %v", s.filename, header.Time.Local())
	}

	var putErr error
	putErrOnce := sync.Once{}
	coordsDone := sync.WaitGroup{}
	for i := 0; i < nCoords; i++ {
		coordsDone.Add(1)
		go func() {
			defer coordsDone.Done()
			for nds := range coords {
				if nds == nil {
					coordsSynced.Done()
					continue
				}
				if err := coordsCache.PutCoords(nds); err != nil {
					putErrOnce.Do(func() {
						putErr = errors.Wrap(err, "caching coords")
						cancel()
					})
				}
			}
		}()
	}

	parseErr := make(chan error, 1)
	go func() {
		parseErr <- parser.Parse(ctx)
	}()

	stopped := false
	for ws := range ways {
		if stopped {
			continue
		}
		for i := range ws {
			feature, ok := s.wayFeature(coordsCache, &ws[i])
			if !ok {
				continue
			}
			if !yield(feature, nil) {
				stopped = true
				cancel()
				break
			}
		}
	}
	coordsDone.Wait()

	err = <-parseErr
	if stopped {
		return nil
	}
	if putErr != nil {
		return putErr
	}
	if err != nil {
		return errors.Wrapf(err, "parsing %s", s.filename)
	}
	return nil
}

func (s *pbfSource) wayFeature(coords cache.Coords, w *osm.Way) (*element.Feature, bool) {
	if s.opts.AllWays {
		if len(w.Refs) == 0 {
			return nil, false
		}
	} else if _, ok := w.Tags[s.opts.FilterKey]; !ok {
		return nil, false
	}

	f := &element.Feature{
		ID:   w.ID,
		Tags: element.Tags(w.Tags),
		Keys: []string{s.opts.FilterKey},
	}
	nodes, err := cache.WayNodes(coords, w.Refs)
	if err != nil {
		log.Printf("[debug] way %d: %s", w.ID, err)
		f.Geometry = geom.Unsupported{Type: "incomplete LineString"}
		return f, true
	}
	line := make(orb.LineString, len(nodes))
	for i, nd := range nodes {
		line[i] = orb.Point{nd.Long, nd.Lat}
	}
	f.Geometry = geom.Line(line)
	return f, true
}
