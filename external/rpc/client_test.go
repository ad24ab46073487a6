package rpc

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/resilience"
)

func TestPostJSON_SendsBodyAndDecodesResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/echo" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization header %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(raw), `"name":"Thursday Grind"`) {
			t.Errorf("unexpected body %s", raw)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"id":"g-1"}`))
	}))
	defer srv.Close()

	c, err := New("echo", Config{BaseURL: srv.URL + "/", Token: "secret"}, logging.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	var out struct {
		OK bool   `json:"ok"`
		ID string `json:"id"`
	}
	if err := c.PostJSON(context.Background(), "v1/echo", map[string]string{"name": "Thursday Grind"}, &out); err != nil {
		t.Fatalf("post json: %v", err)
	}
	if !out.OK || out.ID != "g-1" {
		t.Fatalf("unexpected response %+v", out)
	}
}

func TestPostJSON_TransientFailuresOpenCircuit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := New("flaky", Config{
		BaseURL: srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	for i := 0; i < 2; i++ {
		err := c.PostJSON(context.Background(), "/x", map[string]any{}, nil)
		if !crerr.Is(err, resilience.ErrTransient) {
			t.Fatalf("expected transient error, got %v", err)
		}
	}
	if err := c.PostJSON(context.Background(), "/x", map[string]any{}, nil); !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", got)
	}
	if c.CircuitState() != resilience.CircuitStateOpen {
		t.Fatalf("expected open state, got %s", c.CircuitState())
	}
	if snap := c.Circuit(); snap.RetryAt == nil || snap.ConsecutiveFailures != 2 {
		t.Fatalf("unexpected circuit snapshot: %+v", snap)
	}
}

func TestPostJSON_ClientErrorIsNotTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"missing game"}`))
	}))
	defer srv.Close()

	c, err := New("strict", Config{BaseURL: srv.URL}, logging.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	err = c.PostJSON(context.Background(), "/x", map[string]any{}, nil)
	if err == nil || crerr.Is(err, resilience.ErrTransient) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if !strings.Contains(err.Error(), "status=400") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestNew_RejectsInvalidBaseURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://saver", "http://"} {
		if _, err := New("bad", Config{BaseURL: raw}, nil); err == nil {
			t.Fatalf("expected error for base url %q", raw)
		}
	}
}

func TestBuildCurlPreviewMasksToken(t *testing.T) {
	t.Parallel()

	got := buildCurlPreview("https://saver/v1/games/save", `{"game":"it's"}`, true)
	if strings.Contains(got, "secret") || !strings.Contains(got, "Bearer ***") {
		t.Fatalf("token must be masked: %s", got)
	}
	if !strings.Contains(got, `'{"game":"it'"'"'s"}'`) {
		t.Fatalf("body must be shell quoted: %s", got)
	}
}

func TestPostJSON_CanceledContextSkipsCall(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New("canceled", Config{BaseURL: srv.URL}, logging.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.PostJSON(ctx, "/x", map[string]any{}, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if got := calls.Load(); got != 0 {
		t.Fatalf("expected no upstream calls, got %d", got)
	}
}
