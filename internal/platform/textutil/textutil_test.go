package textutil

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"  The Star -- Sydney!! ": "the star sydney",
		"King's Cross Poker":      "kings cross poker",
		"Café Royale":             "cafe royale",
		"Rooty Hill RSL & Club":   "rooty hill rsl and club",
		"":                        "",
	}
	for input, want := range tests {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q)=%q want %q", input, got, want)
		}
	}
}

func TestDiceCoefficient(t *testing.T) {
	t.Parallel()

	if got := DiceCoefficient("Colossus", "colossus"); got != 1 {
		t.Fatalf("identical values should score 1, got %v", got)
	}
	if got := DiceCoefficient("a", "b"); got != 0 {
		t.Fatalf("single characters should score 0, got %v", got)
	}
	// night/nacht share only "ht": 2*1/(4+4).
	if got := DiceCoefficient("night", "nacht"); math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("unexpected dice score %v", got)
	}
	high := DiceCoefficient("Sydney Championship Series", "Sydney Championships Series")
	low := DiceCoefficient("Sydney Championship Series", "Thursday Grind")
	if high <= 0.9 || low >= 0.3 {
		t.Fatalf("unexpected ordering high=%v low=%v", high, low)
	}
}

func TestNameSimilarity(t *testing.T) {
	t.Parallel()

	if got := NameSimilarity("Colossus", "Colossus August 2025"); got < 0.7 {
		t.Fatalf("containment should score at least 0.7, got %v", got)
	}
	if got := NameSimilarity("", "anything"); got != 0 {
		t.Fatalf("empty values should score 0, got %v", got)
	}
	if got := Jaccard("monday night grind", "grind monday night"); got != 1 {
		t.Fatalf("reordered tokens should have jaccard 1, got %v", got)
	}
}

func TestStripWordsAndContainsWord(t *testing.T) {
	t.Parallel()

	if got := StripWords("Star Sydney Thursday Grind $120", []string{"star sydney", "thursday"}); got != "grind 120" {
		t.Fatalf("unexpected stripped value %q", got)
	}
	if !ContainsWord("Results from The Star tonight", "the star") {
		t.Fatalf("expected phrase match")
	}
	if ContainsWord("Starlight lounge", "star") {
		t.Fatalf("did not expect partial word match")
	}
}

func TestParseMoney(t *testing.T) {
	t.Parallel()

	tests := map[string]float64{
		"$1,200": 1200,
		"30k":    30000,
		"$30K":   30000,
		"1.5k":   1500,
		"2m":     2000000,
		"$98.50": 98.5,
		"$500.":  500,
		"120":    120,
	}
	for input, want := range tests {
		got, ok := ParseMoney(input)
		if !ok || got != want {
			t.Fatalf("ParseMoney(%q)=%v,%v want %v", input, got, ok, want)
		}
	}
	if _, ok := ParseMoney("abc"); ok {
		t.Fatalf("expected failure for non-numeric input")
	}
}

func TestFinitePtr(t *testing.T) {
	t.Parallel()

	if FinitePtr(math.NaN()) != nil || FinitePtr(math.Inf(1)) != nil {
		t.Fatalf("non-finite values must become nil")
	}
	if got := FinitePtr(12.5); got == nil || *got != 12.5 {
		t.Fatalf("finite value should be kept")
	}
}
