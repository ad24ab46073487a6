package logging

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return FromZap(zap.New(core)), logs
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]Level{
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		" error ": LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%s want %s", in, got, want)
		}
	}
}

func TestLogger_RedactsSecrets(t *testing.T) {
	t.Parallel()

	logger, logs := newObserved()
	dbURL, _ := url.Parse("postgres://reconciler:hunter2@db:5432/reconciler")
	logger.Info("dependency configured",
		"dependency", "game-saver",
		"auth_token", "abc123",
		"Authorization", "Bearer abc123",
		"db_url", dbURL,
	)

	fields := logs.All()[0].ContextMap()
	if fields["auth_token"] != redacted || fields["Authorization"] != redacted {
		t.Fatalf("secrets leaked: %+v", fields)
	}
	if fields["dependency"] != "game-saver" {
		t.Fatalf("plain field lost: %+v", fields)
	}
	if got := fields["db_url"]; got != "postgres://reconciler:xxxxx@db:5432/reconciler" {
		t.Fatalf("url password not redacted: %v", got)
	}
}

func TestLogger_ContextFields(t *testing.T) {
	t.Parallel()

	logger, logs := newObserved()
	ctx := WithFields(context.Background(), "operation", "enrichGameData")
	ctx = WithFields(ctx, "game_id", "g-1")
	logger.WarnContext(ctx, "venue fallback", "error", errors.New("catalog miss"))
	logger.Warn("no context")

	entries := logs.All()
	first := entries[0].ContextMap()
	if first["operation"] != "enrichGameData" || first["game_id"] != "g-1" || first["error"] != "catalog miss" {
		t.Fatalf("unexpected context fields: %+v", first)
	}
	if _, ok := entries[1].ContextMap()["operation"]; ok {
		t.Fatalf("plain calls must not carry context fields")
	}
}

func TestLogger_SyncOnceAcrossDerivedLoggers(t *testing.T) {
	t.Parallel()

	logger := NewNop()
	child := logger.With("component", "matcher")
	if err := child.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !logger.closed.Load() {
		t.Fatalf("derived logger must share the sync flag")
	}
}

func TestLogger_NilFallsBackToDefault(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("nil logger is safe")
	logger.InfoContext(context.Background(), "nil logger is safe")
	if logger.With("k", "v") == nil {
		t.Fatalf("With on nil must return a logger")
	}
}

func TestLogger_DebugAndZapShareCore(t *testing.T) {
	t.Parallel()

	logger, logs := newObserved()
	logger.Debug("router configured", "metrics", true)
	logger.Zap().Warn("raw zap entry")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].ContextMap()["metrics"] != true {
		t.Fatalf("unexpected debug entry: %+v", entries[0])
	}
	if entries[1].Message != "raw zap entry" {
		t.Fatalf("unexpected zap entry: %+v", entries[1])
	}

	var nilLogger *Logger
	if nilLogger.Zap() == nil {
		t.Fatalf("nil logger must return a usable zap logger")
	}
}
