package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
)

const opsOrigin = "https://ops.reconciler.example.com"

func TestCORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		wantStatus  int
		wantAllow   string
		wantVary    bool
		wantMethods bool
	}{
		{name: "configured origin", allowed: []string{opsOrigin}, method: http.MethodPost, origin: opsOrigin, wantStatus: http.StatusOK, wantAllow: opsOrigin, wantVary: true, wantMethods: true},
		{name: "wildcard preflight", allowed: []string{"*"}, method: http.MethodOptions, origin: opsOrigin, wantStatus: http.StatusNoContent, wantAllow: "*", wantMethods: true},
		{name: "unknown origin", allowed: []string{"https://allowed.example.com"}, method: http.MethodPost, origin: opsOrigin, wantStatus: http.StatusOK},
		{name: "unknown origin preflight", allowed: []string{"https://allowed.example.com"}, method: http.MethodOptions, origin: opsOrigin, wantStatus: http.StatusNoContent},
		{name: "no origin header", allowed: []string{"*"}, method: http.MethodPost, wantStatus: http.StatusOK},
		{name: "blank entries ignored", allowed: []string{" ", opsOrigin + " "}, method: http.MethodPost, origin: opsOrigin, wantStatus: http.StatusOK, wantAllow: opsOrigin, wantVary: true, wantMethods: true},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tc.method, "/v1/ops/enrichGameData", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()
			CORS(tc.allowed, next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status=%d want %d", rec.Code, tc.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantAllow {
				t.Fatalf("Access-Control-Allow-Origin=%q want %q", got, tc.wantAllow)
			}
			if got := rec.Header().Get("Vary") == "Origin"; got != tc.wantVary {
				t.Fatalf("Vary Origin=%v want %v", got, tc.wantVary)
			}
			if got := rec.Header().Get("Access-Control-Allow-Methods") != ""; got != tc.wantMethods {
				t.Fatalf("Access-Control-Allow-Methods set=%v want %v", got, tc.wantMethods)
			}
		})
	}
}

func TestRequireBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		token      string
		header     string
		wantStatus int
	}{
		{name: "open when unset", token: "", wantStatus: http.StatusOK},
		{name: "missing header", token: "s3cret", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", token: "s3cret", header: "Basic s3cret", wantStatus: http.StatusUnauthorized},
		{name: "wrong token", token: "s3cret", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "case-insensitive scheme", token: "s3cret", header: "bearer s3cret", wantStatus: http.StatusOK},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/v1/ops/mergeRecurringGames", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			RequireBearerToken(tc.token, next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status=%d want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestRequestLogging_RecordsStatus(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := logging.FromZap(zap.New(core))
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/ops/linkSocialPostToGame", nil)
	RequestLogging(logger, next).ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["http_status"] != int64(http.StatusConflict) || fields["http_path"] != "/v1/ops/linkSocialPostToGame" {
		t.Fatalf("unexpected request log fields: %+v", fields)
	}
}
