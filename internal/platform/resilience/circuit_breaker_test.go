package resilience

import (
	"errors"
	"testing"
	"time"
)

func newTestBreaker(threshold, probes int) (*CircuitBreaker, *time.Time) {
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: threshold,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   probes,
	})
	now := time.Date(2025, time.March, 6, 8, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	t.Parallel()

	b, now := newTestBreaker(2, 1)
	var transitions []string
	b.OnStateChange(func(from, to CircuitState) {
		transitions = append(transitions, string(from)+">"+string(to))
	})

	if err := b.Allow(); err != nil {
		t.Fatalf("closed breaker must allow: %v", err)
	}
	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after one failure, got %s", state)
	}
	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open at threshold, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open error, got %v", err)
	}

	*now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe must pass after the open timeout: %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("second probe must wait, got %v", err)
	}
	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after a good probe, got %s", state)
	}

	want := []string{"closed>open", "open>half_open", "half_open>closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions=%v want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transitions=%v want %v", transitions, want)
		}
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	t.Parallel()

	b, now := newTestBreaker(1, 1)
	b.RecordFailure()
	*now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe must pass: %v", err)
	}
	b.RecordFailure()

	snap := b.Snapshot()
	if snap.State != CircuitStateOpen || snap.RetryAt == nil || !snap.RetryAt.Equal(now.Add(5*time.Second)) {
		t.Fatalf("unexpected snapshot after failed probe: %+v", snap)
	}
}

func TestCircuitBreaker_SnapshotReportsHalfOpenBeforeAllow(t *testing.T) {
	t.Parallel()

	b, now := newTestBreaker(1, 1)
	b.RecordFailure()
	*now = now.Add(5 * time.Second)
	if state := b.Snapshot().State; state != CircuitStateHalfOpen {
		t.Fatalf("expected half_open once retryAt is reached, got %s", state)
	}
}
