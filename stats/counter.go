package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

// RpsCounter counts events and reports the rate since the last Tick.
type RpsCounter struct {
	counter int64
	mu      sync.Mutex
	last    int64
	lastAt  time.Time
}

func NewRpsCounter() *RpsCounter {
	return &RpsCounter{lastAt: time.Now()}
}

func (r *RpsCounter) Add(n int) {
	atomic.AddInt64(&r.counter, int64(n))
}

func (r *RpsCounter) Value() int64 {
	return atomic.LoadInt64(&r.counter)
}

// Tick returns the events per second since the previous Tick (or since
// the counter was created).
func (r *RpsCounter) Tick(now time.Time) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	value := atomic.LoadInt64(&r.counter)
	d := now.Sub(r.lastAt).Seconds()
	var rps float64
	if d > 0 {
		rps = float64(value-r.last) / d
	}
	r.last = value
	r.lastAt = now
	return rps
}
