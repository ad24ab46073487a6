package resilience

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentLoads(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var loads atomic.Int32
	var shared atomic.Int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			val, err, wasShared := g.Do("venue-catalog", func() (any, error) {
				loads.Add(1)
				time.Sleep(20 * time.Millisecond)
				return "catalog", nil
			})
			if err != nil || val != "catalog" {
				t.Errorf("unexpected result %v %v", val, err)
			}
			if wasShared {
				shared.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := loads.Load(); got != 1 {
		t.Fatalf("expected one load, got %d", got)
	}
	if got := shared.Load(); got != workers-1 {
		t.Fatalf("expected %d shared results, got %d", workers-1, got)
	}
	if g.InFlight() != 0 {
		t.Fatalf("expected no calls in flight")
	}
}

func TestSingleFlight_PanicBecomesError(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	_, err, _ := g.Do("series-titles", func() (any, error) {
		panic("boom")
	})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected panic error, got %v", err)
	}

	val, err, _ := g.Do("series-titles", func() (any, error) { return 1, nil })
	if err != nil || val != 1 {
		t.Fatalf("key must be reusable after a panic: %v %v", val, err)
	}
}

func TestSingleFlight_ForgetStartsFreshCall(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = g.Do("venue-catalog", func() (any, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()
	<-started

	g.Forget("venue-catalog")
	val, err, shared := g.Do("venue-catalog", func() (any, error) { return "fresh", nil })
	if err != nil || val != "fresh" || shared {
		t.Fatalf("expected a fresh call, got %v %v shared=%v", val, err, shared)
	}

	close(release)
	<-done
}
