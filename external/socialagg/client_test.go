package socialagg

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riskibarqy/tournament-reconciler/external/rpc"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
	"github.com/riskibarqy/tournament-reconciler/internal/usecase"
)

func TestAggregatePostsOptionsToGamePath(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/games/game-1/social-aggregate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(raw), `"triggerFinancials":true`) {
			t.Errorf("expected triggerFinancials in body, got %s", raw)
		}
		_, _ = w.Write([]byte(`{"success":true,"linkedPostCount":2,"dataExtracted":true}`))
	}))
	defer srv.Close()

	c, err := NewClient(rpc.Config{BaseURL: srv.URL}, logging.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	res, err := c.Aggregate(context.Background(), "game-1", usecase.AggregateOptions{TriggerFinancials: true})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if !res.Success || res.LinkedPostCount != 2 || !res.DataExtracted {
		t.Fatalf("unexpected result %+v", res)
	}

	if _, err := c.Aggregate(context.Background(), "", usecase.AggregateOptions{}); err == nil {
		t.Fatalf("expected error for empty game id")
	}
}
