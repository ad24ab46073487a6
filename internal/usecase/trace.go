package usecase

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("tournament-reconciler/internal/usecase")
var usecaseNoopSpan = trace.SpanFromContext(context.Background())

// startUsecaseSpan opens a child span named "usecase.<Component>.<Method>".
// Spans are only created under an existing trace so background jobs and the
// CLI do not emit orphan roots.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, usecaseNoopSpan
	}
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}
	if component := spanComponent(name); component != "" {
		attrs = append(attrs, attribute.String("reconciler.component", component))
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func spanComponent(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) < 3 || parts[0] != "usecase" {
		return ""
	}
	return parts[1]
}

// failSpan marks the span as failed. Input and lookup errors are expected
// outcomes and leave the status unset.
func failSpan(span trace.Span, err error) {
	if err == nil || isExpected(err) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func isExpected(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict)
}
