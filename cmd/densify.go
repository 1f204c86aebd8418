package cmd

import (
	"context"
	"flag"
	"time"

	"github.com/pkg/errors"
	"github.com/treepedia/streetpoints/config"
	"github.com/treepedia/streetpoints/log"
	"github.com/treepedia/streetpoints/pipeline"
	"github.com/treepedia/streetpoints/reader"
	"github.com/treepedia/streetpoints/stats"
	"github.com/treepedia/streetpoints/writer"
)

const memprofInterval = 30 * time.Second

// Densify reads all features of the input, densifies the kept features
// and writes the sample points to the output. The output is discarded if
// the run fails.
func Densify(o *config.DensifyOptions) (stats.Counts, error) {
	f, err := o.Filter()
	if err != nil {
		return stats.Counts{}, err
	}
	if !f.Exclude.Empty() {
		log.Printf("[info] excluding features with %s in %s", f.Key, f.Exclude)
	}

	p, err := pipeline.New(pipeline.Options{
		Spacing: o.Spacing,
		Filter:  f,
	})
	if err != nil {
		return stats.Counts{}, err
	}

	readerOpts := o.ReaderOptions()
	readerOpts.FilterKey = f.Key
	src, err := reader.Open(o.Input, readerOpts)
	if err != nil {
		return stats.Counts{}, err
	}
	defer src.Close()

	sink, err := writer.Create(o.Output, o.WriterOptions())
	if err != nil {
		return stats.Counts{}, err
	}

	if o.Progress > 0 {
		stop := p.Stats().StartReporter(o.Progress)
		defer stop()
	}

	step := log.Step("Densifying " + o.Input)
	var readErr error
	features := reader.All(src, &readErr)
	if o.Workers == 1 {
		for pt := range p.Run(features) {
			if err = sink.Write(pt); err != nil {
				break
			}
		}
	} else {
		err = p.RunParallel(context.Background(), features, pipeline.ParallelOptions{
			Workers: o.Workers,
			Ordered: !o.Unordered,
		}, sink.Write)
	}
	if err != nil {
		sink.Abort()
		return p.Stats().Counts(), errors.Wrap(err, "writing points")
	}
	if readErr != nil {
		sink.Abort()
		return p.Stats().Counts(), errors.Wrapf(readErr, "reading %s", o.Input)
	}
	if err := sink.Close(); err != nil {
		return p.Stats().Counts(), errors.Wrap(err, "closing output")
	}
	step()
	return p.Stats().Counts(), nil
}

func densify(args []string) int {
	opts, errs := config.ParseDensify(args)
	if len(errs) == 1 && errs[0] == flag.ErrHelp {
		config.UsageDensify()
		return 0
	}
	if len(errs) != 0 {
		config.ReportErrors(errs)
		config.UsageDensify()
		return 1
	}
	if opts.Quiet {
		log.SetMinLevel(log.LInfo)
	}
	if opts.Httpprofile != "" {
		stats.StartHttpPProf(opts.Httpprofile)
	}
	if opts.Memprofile != "" {
		stop, err := stats.MemProfiler(opts.Memprofile, memprofInterval)
		if err != nil {
			log.Printf("[error] %s", err)
			return 1
		}
		defer stop()
	}

	counts, err := Densify(opts)
	if err != nil {
		log.Printf("[error] %s", err)
		return 2
	}
	log.Printf("[info] %s", counts)
	return 0
}
