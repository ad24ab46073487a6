package game

import (
	"math"
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

func mustTime(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return &parsed
}

func TestDurationRoundTrip(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 59, 60, 3599, 3600, 20188, 86400, 359999} {
		got, err := ParseDurationToSeconds(FormatSecondsToHHMMSS(n))
		if err != nil {
			t.Fatalf("parse formatted %d: %v", n, err)
		}
		if got != n {
			t.Fatalf("round trip %d -> %s -> %d", n, FormatSecondsToHHMMSS(n), got)
		}
	}
	for n := 0; n <= 359999; n += 7919 {
		got, _ := ParseDurationToSeconds(FormatSecondsToHHMMSS(n))
		if got != n {
			t.Fatalf("round trip failed for %d", n)
		}
	}
}

func TestParseDurationToSeconds_Formats(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		"05:36:28": 20188,
		"36:28":    2188,
		"7200":     7200,
	}
	for input, want := range tests {
		got, err := ParseDurationToSeconds(input)
		if err != nil || got != want {
			t.Fatalf("ParseDurationToSeconds(%q)=%d,%v want %d", input, got, err, want)
		}
	}
	for _, bad := range []string{"", "abc", "1:2:3:4", "01:75:00", "-5"} {
		if _, err := ParseDurationToSeconds(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestCompleteDuration_CalculatesEnd(t *testing.T) {
	t.Parallel()

	g := Game{
		GameStartDateTime: mustTime(t, "2025-08-15T19:00:00Z"),
		TotalDuration:     Duration{Raw: "05:36:28"},
	}
	diag := NewDiagnostics()
	CompleteDuration(&g, diag)

	if g.TotalDuration.Seconds == nil || *g.TotalDuration.Seconds != 20188 {
		t.Fatalf("unexpected duration %+v", g.TotalDuration)
	}
	if g.GameEndDateTime == nil || g.GameEndDateTime.Format(time.RFC3339) != "2025-08-16T00:36:28Z" {
		t.Fatalf("unexpected end %v", g.GameEndDateTime)
	}
	if g.GameEndDateTimeSource != EndSourceCalculated {
		t.Fatalf("unexpected end source %s", g.GameEndDateTimeSource)
	}
	if len(diag.Warnings) != 0 {
		t.Fatalf("unexpected warnings %+v", diag.Warnings)
	}
}

func TestCompleteDuration_MismatchAndBadFormat(t *testing.T) {
	t.Parallel()

	g := Game{
		GameStartDateTime: mustTime(t, "2025-08-15T19:00:00Z"),
		GameEndDateTime:   mustTime(t, "2025-08-15T21:00:00Z"),
		TotalDuration:     DurationOf(3600),
	}
	diag := NewDiagnostics()
	CompleteDuration(&g, diag)
	if !diag.HasWarning(CodeDurationMismatch) {
		t.Fatalf("expected DURATION_MISMATCH warning")
	}

	within := Game{
		GameStartDateTime: mustTime(t, "2025-08-15T19:00:00Z"),
		GameEndDateTime:   mustTime(t, "2025-08-15T21:00:00Z"),
		TotalDuration:     DurationOf(7200 + 45),
	}
	diag = NewDiagnostics()
	CompleteDuration(&within, diag)
	if diag.HasWarning(CodeDurationMismatch) {
		t.Fatalf("45 seconds is inside the tolerance")
	}

	bad := Game{GameStartDateTime: mustTime(t, "2025-08-15T19:00:00Z"), TotalDuration: Duration{Raw: "five hours"}}
	diag = NewDiagnostics()
	CompleteDuration(&bad, diag)
	if !diag.HasWarning(CodeInvalidDurationFormat) || bad.GameEndDateTime != nil {
		t.Fatalf("expected INVALID_DURATION_FORMAT and no end time")
	}
}

func TestCompleteDuration_PrefersActualStartAndDerivesSeconds(t *testing.T) {
	t.Parallel()

	g := Game{
		GameStartDateTime:       mustTime(t, "2025-08-15T09:00:00Z"),
		GameActualStartDateTime: mustTime(t, "2025-08-15T09:10:00Z"),
		GameEndDateTime:         mustTime(t, "2025-08-15T12:10:00Z"),
	}
	CompleteDuration(&g, NewDiagnostics())
	if g.TotalDuration.Seconds == nil || *g.TotalDuration.Seconds != 3*3600 {
		t.Fatalf("expected duration from actual start, got %+v", g.TotalDuration)
	}
}

func TestDuration_JSON(t *testing.T) {
	t.Parallel()

	var g Game
	if err := sonic.Unmarshal([]byte(`{"name":"x","totalDuration":"05:36:28"}`), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if g.TotalDuration.Raw != "05:36:28" || g.TotalDuration.Seconds != nil {
		t.Fatalf("expected raw string kept, got %+v", g.TotalDuration)
	}
	if err := sonic.Unmarshal([]byte(`{"name":"x","totalDuration":20188}`), &g); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if g.TotalDuration.Seconds == nil || *g.TotalDuration.Seconds != 20188 {
		t.Fatalf("expected seconds, got %+v", g.TotalDuration)
	}
	out, err := sonic.Marshal(DurationOf(90))
	if err != nil || string(out) != "90" {
		t.Fatalf("marshal: %s %v", out, err)
	}
}

func TestCalculateFinancials_GuaranteeInference(t *testing.T) {
	t.Parallel()

	g := Game{
		GameType:            TypeTournament,
		BuyIn:               floatPtr(100),
		TotalInitialEntries: intPtr(50),
		Rake:                floatPtr(20),
		VenueFee:            floatPtr(0),
		PrizepoolPaid:       floatPtr(6000),
		HasGuarantee:        boolPtr(false),
	}
	diag := NewDiagnostics()
	fin, ok := CalculateFinancials(&g, diag)
	if !ok {
		t.Fatalf("expected financials to be computed")
	}
	if fin.PrizepoolPlayerContributions != 4000 {
		t.Fatalf("contributions=%v want 4000", fin.PrizepoolPlayerContributions)
	}
	if *g.GuaranteeAmount != 6000 || !*g.HasGuarantee || !*g.GuaranteeWasInferred {
		t.Fatalf("guarantee not inferred: %+v", g)
	}
	if *g.GuaranteeOverlayCost != 2000 || *g.GameProfit != -1000 || !*g.IsUnderwater {
		t.Fatalf("unexpected overlay/profit %v %v", *g.GuaranteeOverlayCost, *g.GameProfit)
	}
	if len(diag.Warnings) != 1 || diag.Warnings[0].Code != CodeGuaranteeInferred {
		t.Fatalf("expected one GUARANTEE_INFERRED warning, got %+v", diag.Warnings)
	}
	details := diag.Warnings[0].Details
	if details["prizepoolPaid"] != 6000.0 || details["prizepoolPlayerContributions"] != 4000.0 {
		t.Fatalf("warning should carry source values, got %+v", details)
	}

	// A second run sees the inferred guarantee and changes nothing.
	before := g.Clone()
	diag = NewDiagnostics()
	CalculateFinancials(&g, diag)
	if changed := ChangedFields(before, g); len(changed) != 0 {
		t.Fatalf("second run changed %v", changed)
	}
	if diag.HasWarning(CodeGuaranteeInferred) {
		t.Fatalf("guarantee must not be inferred twice")
	}
}

func TestCalculateFinancials_EntryStructureTable(t *testing.T) {
	t.Parallel()

	g := Game{
		BuyIn:               floatPtr(110),
		Rake:                floatPtr(10),
		TotalInitialEntries: intPtr(40),
		TotalRebuys:         intPtr(10),
		TotalAddons:         intPtr(20),
		EntryStructure:      EntryRebuyAddon,
		GuaranteeAmount:     floatPtr(5000),
		HasGuarantee:        boolPtr(true),
	}
	fin, _ := CalculateFinancials(&g, NewDiagnostics())
	if fin.RakedEntries != 50 || fin.RakeRevenue != 500 {
		t.Fatalf("addons should not be raked: %+v", fin)
	}
	if fin.TotalBuyInsCollected != 7700 || fin.PrizepoolPlayerContributions != 7200 {
		t.Fatalf("unexpected totals %+v", fin)
	}
	if fin.GuaranteeOverlayCost != 0 || fin.PrizepoolSurplus != 2200 || fin.IsUnderwater {
		t.Fatalf("unexpected overlay %+v", fin)
	}

	odd := Game{BuyIn: floatPtr(50), TotalInitialEntries: intPtr(10), EntryStructure: "MYSTERY"}
	diag := NewDiagnostics()
	CalculateFinancials(&odd, diag)
	if !diag.HasWarning(CodeEntryStructureOutOfBand) {
		t.Fatalf("expected out-of-band entry structure warning")
	}

	if _, ok := CalculateFinancials(&Game{GameType: TypeCashGame, BuyIn: floatPtr(5)}, NewDiagnostics()); ok {
		t.Fatalf("cash games have no tournament financials")
	}
}

func TestSanitizeNumbers(t *testing.T) {
	t.Parallel()

	g := Game{BuyIn: floatPtr(math.NaN()), Rake: floatPtr(math.Inf(1)), VenueFee: floatPtr(5)}
	SanitizeNumbers(&g)
	if g.BuyIn != nil || g.Rake != nil || g.VenueFee == nil {
		t.Fatalf("non-finite values should become nil: %+v", g)
	}
}
