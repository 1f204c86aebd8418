package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/pkg/errors"
	"github.com/treepedia/streetpoints/log"
)

// MemProfiler writes a heap profile to dir every interval until the
// returned func is called.
func MemProfiler(dir string, interval time.Duration) (stop func(), err error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, errors.Wrap(err, "creating memprofile dir")
	}

	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		i := 0
		for {
			select {
			case <-ticker.C:
			case <-done:
				return
			}
			filename := filepath.Join(dir, fmt.Sprintf("memprof-%03d.pprof", i))
			if err := writeHeapProfile(filename); err != nil {
				log.Println("[warn] writing heap profile:", err)
			}
			i++
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}, nil
}

func writeHeapProfile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := pprof.WriteHeapProfile(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
