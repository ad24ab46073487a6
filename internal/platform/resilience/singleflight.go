package resilience

import (
	"fmt"
	"sync"
)

// SingleFlight collapses concurrent loads of the same key into one call. The
// venue catalog and series title caches load through it.
type SingleFlight struct {
	mu    sync.Mutex
	calls map[string]*flight
}

type flight struct {
	done chan struct{}
	val  any
	err  error
}

// Do runs fn once per key at a time. shared reports whether the result came
// from a call started by another goroutine. A panic in fn is returned as an
// error to every waiter.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (val any, err error, shared bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*flight)
	}
	if f, ok := g.calls[key]; ok {
		g.mu.Unlock()
		<-f.done
		return f.val, f.err, true
	}
	f := &flight{done: make(chan struct{})}
	g.calls[key] = f
	g.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			f.val, f.err = nil, fmt.Errorf("singleflight %s: panic: %v", key, r)
		}
		g.mu.Lock()
		if g.calls[key] == f {
			delete(g.calls, key)
		}
		g.mu.Unlock()
		close(f.done)
		val, err, shared = f.val, f.err, false
	}()

	f.val, f.err = fn()
	return f.val, f.err, false
}

// Forget detaches an in-flight call so the next Do for key starts a fresh one.
func (g *SingleFlight) Forget(key string) {
	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()
}

// ForgetAll detaches every in-flight call.
func (g *SingleFlight) ForgetAll() {
	g.mu.Lock()
	g.calls = nil
	g.mu.Unlock()
}

// InFlight is the number of keys currently loading.
func (g *SingleFlight) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}
