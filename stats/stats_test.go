package stats

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/treepedia/streetpoints/log"
)

func TestCounts(t *testing.T) {
	s := New()
	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.AddFeature()
				switch j % 4 {
				case 0:
					s.AddFiltered()
				case 1:
					s.AddFailed()
				case 2:
					s.AddEmpty()
				default:
					s.AddDensified(5)
				}
			}
		}()
	}
	wg.Wait()

	c := s.Counts()
	expected := Counts{Features: 800, Filtered: 200, Failed: 200, Empty: 200, Densified: 200, Points: 1000}
	if c != expected {
		t.Fatal(c)
	}
	if c.Kept() != 600 {
		t.Fatal(c.Kept())
	}
	if str := c.String(); str != "Features: 800 (filtered: 200, failed: 200, empty: 200, densified: 200) Points: 1000" {
		t.Fatal(str)
	}
}

func TestRpsCounter(t *testing.T) {
	r := NewRpsCounter()
	start := time.Now()
	r.Add(50)
	r.Tick(start)
	r.Add(100)
	if rps := r.Tick(start.Add(2 * time.Second)); rps != 50 {
		t.Fatal(rps)
	}
	if rps := r.Tick(start.Add(2 * time.Second)); rps != 0 {
		t.Fatal(rps)
	}
	if r.Value() != 150 {
		t.Fatal(r.Value())
	}
}

func TestReport(t *testing.T) {
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	defer log.SetOutput(nopWriter{})

	s := New()
	s.AddFeature()
	s.AddPoints(7)
	s.report(time.Now())
	if out := buf.String(); !strings.Contains(out, "[progress] Features:") || !strings.Contains(out, "(         7)") {
		t.Fatal(out)
	}

	stop := s.StartReporter(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	stop()
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
