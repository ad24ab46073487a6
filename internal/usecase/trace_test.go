package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestSpanComponent(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"usecase.EnrichmentService.Enrich": "EnrichmentService",
		"usecase.LinkService.Link":         "LinkService",
		"httpapi.Handler.Dispatch":         "",
		"usecase.Enrich":                   "",
	}
	for in, want := range tests {
		if got := spanComponent(in); got != want {
			t.Fatalf("spanComponent(%q)=%q want %q", in, got, want)
		}
	}
}

func TestIsExpected(t *testing.T) {
	t.Parallel()

	if !isExpected(fmt.Errorf("%w: social post=p1", ErrNotFound)) {
		t.Fatalf("not found must be an expected outcome")
	}
	if isExpected(fmt.Errorf("save game: %w", ErrDependencyUnavailable)) {
		t.Fatalf("dependency failures must mark the span")
	}
	if isExpected(errors.New("boom")) {
		t.Fatalf("unknown errors must mark the span")
	}
}

func TestStartUsecaseSpan_NoParentIsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	got, span := startUsecaseSpan(ctx, "usecase.LinkService.Link")
	if got != ctx || span != usecaseNoopSpan {
		t.Fatalf("expected no span without a parent trace")
	}
	failSpan(span, errors.New("boom"))
}
