package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "venue-catalog", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "venues:ent-1", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "venue-catalog" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiresAfterTTLAndInvalidate(t *testing.T) {
	t.Parallel()

	current := time.Date(2025, time.August, 15, 9, 0, 0, 0, time.UTC)
	store := NewStore(5 * time.Minute).WithClock(func() time.Time { return current })
	var calls atomic.Int32
	loader := func(context.Context) ([]string, error) {
		calls.Add(1)
		return []string{"The Star", "Crown"}, nil
	}

	ctx := context.Background()
	got, err := Load(ctx, store, "venues", loader)
	if err != nil || len(got) != 2 {
		t.Fatalf("typed load: got=%v err=%v", got, err)
	}
	current = current.Add(4 * time.Minute)
	if _, err := Load(ctx, store, "venues", loader); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected cached value inside ttl, calls=%d", calls.Load())
	}

	current = current.Add(2 * time.Minute)
	if _, err := Load(ctx, store, "venues", loader); err != nil {
		t.Fatalf("reload after ttl: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected reload after ttl, calls=%d", calls.Load())
	}

	store.Invalidate()
	if store.Len() != 0 {
		t.Fatalf("expected empty store after invalidate")
	}
	if _, err := Load(ctx, store, "venues", loader); err != nil {
		t.Fatalf("reload after invalidate: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected reload after invalidate, calls=%d", calls.Load())
	}
}

func TestLoad_RejectsMismatchedType(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	store.Set(context.Background(), "k", 42)
	_, err := Load(context.Background(), store, "k", func(context.Context) (string, error) { return "x", nil })
	if err == nil {
		t.Fatalf("expected type mismatch error")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")

func TestStore_InvalidateDropsInFlightLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = store.GetOrLoad(context.Background(), "venues", func(context.Context) (any, error) {
			close(started)
			<-release
			return "stale-catalog", nil
		})
	}()
	<-started

	store.Invalidate()
	close(release)
	<-done

	if _, ok := store.Get(context.Background(), "venues"); ok {
		t.Fatalf("a load started before Invalidate must not be cached")
	}
	v, err := store.GetOrLoad(context.Background(), "venues", func(context.Context) (any, error) {
		return "fresh-catalog", nil
	})
	if err != nil || v != "fresh-catalog" {
		t.Fatalf("expected fresh load, got %v %v", v, err)
	}
}
