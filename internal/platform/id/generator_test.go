package id

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator_NewID(t *testing.T) {
	t.Parallel()

	gen := NewUUIDGenerator()
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("expected uuid, got %q: %v", first, err)
	}
	second, _ := gen.NewID()
	if first == second {
		t.Fatalf("expected distinct ids")
	}
}

func TestSequenceGenerator_NewID(t *testing.T) {
	t.Parallel()

	gen := &SequenceGenerator{Prefix: "series"}
	a, _ := gen.NewID()
	b, _ := gen.NewID()
	if a != "series-1" || b != "series-2" {
		t.Fatalf("unexpected sequence %s %s", a, b)
	}
}
