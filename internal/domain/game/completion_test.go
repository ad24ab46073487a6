package game

import (
	"testing"
	"time"
)

func TestParseSeriesDetails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		day       int
		flight    string
		event     int
		finalDay  bool
		mainEvent bool
	}{
		{name: "Colossus Day 1A", day: 1, flight: "A"},
		{name: "Sydney Millions Main Event Day 2", day: 2, finalDay: true, mainEvent: true},
		{name: "Event #12 - $330 NLHE 1C", day: 1, flight: "C", event: 12},
		{name: "APPT Ev 7 Final Table", event: 7, finalDay: true},
		{name: "Winter Series D3 FT", day: 3, finalDay: true},
		{name: "Flight B Starter", flight: "B"},
		{name: "Thursday Grind"},
	}

	for _, tc := range tests {
		got := ParseSeriesDetails(tc.name)
		if tc.day == 0 && got.DayNumber != nil {
			t.Fatalf("%s: unexpected day %d", tc.name, *got.DayNumber)
		}
		if tc.day != 0 && (got.DayNumber == nil || *got.DayNumber != tc.day) {
			t.Fatalf("%s: day=%v want %d", tc.name, got.DayNumber, tc.day)
		}
		if got.FlightLetter != tc.flight {
			t.Fatalf("%s: flight=%q want %q", tc.name, got.FlightLetter, tc.flight)
		}
		if tc.event != 0 && (got.EventNumber == nil || *got.EventNumber != tc.event) {
			t.Fatalf("%s: event=%v want %d", tc.name, got.EventNumber, tc.event)
		}
		if got.FinalDay != tc.finalDay || got.IsMainEvent != tc.mainEvent {
			t.Fatalf("%s: finalDay=%v mainEvent=%v", tc.name, got.FinalDay, got.IsMainEvent)
		}
	}
}

func TestCompleteData_Defaults(t *testing.T) {
	t.Parallel()

	g := Game{
		GameStatus:          StatusRunning,
		TotalInitialEntries: intPtr(80),
		TotalRebuys:         intPtr(12),
		GuaranteeAmount:     floatPtr(10000),
		TournamentType:      "SATELLITE",
	}
	CompleteData(&g)

	if *g.TotalEntries != 92 || *g.TotalAddons != 0 {
		t.Fatalf("unexpected totals entries=%d addons=%d", *g.TotalEntries, *g.TotalAddons)
	}
	if !*g.HasGuarantee || !*g.IsSatellite || *g.IsSeries || *g.IsRegular {
		t.Fatalf("unexpected flags %+v", g)
	}
	if g.RegistrationStatus != RegistrationOpen || g.GameType != TypeTournament || g.GameVariant != "NLHE" {
		t.Fatalf("unexpected defaults reg=%s type=%s variant=%s", g.RegistrationStatus, g.GameType, g.GameVariant)
	}
	if g.VenueAssignmentStatus != AssignmentPending || g.SeriesAssignmentStatus != AssignmentNotSeries {
		t.Fatalf("unexpected assignment defaults")
	}
}

func TestRegistrationStatusFor(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"INITIATING":    RegistrationScheduled,
		"scheduled":     RegistrationScheduled,
		"REGISTERING":   RegistrationOpen,
		"RUNNING":       RegistrationOpen,
		"CLOCK_STOPPED": RegistrationClosed,
		"FINISHED":      RegistrationClosed,
		"CANCELLED":     RegistrationClosed,
		"UNKNOWN":       RegistrationNA,
	}
	for input, want := range tests {
		if got := RegistrationStatusFor(input); got != want {
			t.Fatalf("RegistrationStatusFor(%s)=%s want %s", input, got, want)
		}
	}
}

func TestValidateGameData(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.August, 15, 9, 0, 0, 0, time.UTC)
	res := ValidateGameData(Game{Name: "  Thursday   Grind ", GameStartDateTime: &start, GameType: "cash"}, "ent-1")
	if !res.IsValid {
		t.Fatalf("expected valid, got %+v", res.Errors)
	}
	if res.Corrected.Name != "Thursday Grind" || res.Corrected.EntityID != "ent-1" || res.Corrected.GameType != TypeCashGame {
		t.Fatalf("unexpected corrected record %+v", res.Corrected)
	}

	res = ValidateGameData(Game{BuyIn: floatPtr(-5)}, "")
	if res.IsValid {
		t.Fatalf("expected invalid")
	}
	fields := map[string]bool{}
	for _, e := range res.Errors {
		fields[e.Field] = true
	}
	for _, f := range []string{"name", "entityId", "gameStartDateTime", "buyIn"} {
		if !fields[f] {
			t.Fatalf("expected error on %s, got %+v", f, res.Errors)
		}
	}
}

func TestDeriveClassification(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.August, 15, 9, 0, 0, 0, time.UTC)
	g := Game{GameType: TypeTournament, GameVariant: "PLO", BuyIn: floatPtr(150)}
	DeriveClassification(&g, now)
	if g.Variant != VariantOmahaHi || g.BettingStructure != BettingPotLimit || g.SessionMode != SessionTournament || g.BuyInTier != TierLow {
		t.Fatalf("unexpected classification %+v", g)
	}
	if g.ClassificationSource != ClassificationDerived || g.LastClassifiedAt == nil {
		t.Fatalf("classification should be stamped")
	}

	cash := Game{GameType: TypeCashGame, GameVariant: "Pineapple"}
	DeriveClassification(&cash, now)
	if cash.SessionMode != SessionCash || cash.Variant != VariantOther || cash.BettingStructure != BettingOther {
		t.Fatalf("unexpected cash classification %+v", cash)
	}

	preset := Game{Variant: VariantHoldem, BettingStructure: BettingNoLimit, SessionMode: SessionTournament}
	DeriveClassification(&preset, now)
	if preset.LastClassifiedAt != nil {
		t.Fatalf("nothing derived, so no stamp expected")
	}
}

func TestBuyInTier(t *testing.T) {
	t.Parallel()

	tests := map[float64]string{0: TierFreeroll, 55: TierMicro, 56: TierLow, 150: TierLow, 500: TierMid, 2000: TierHigh, 2500: TierSuperHigh}
	for amount, want := range tests {
		if got := BuyInTier(amount); got != want {
			t.Fatalf("BuyInTier(%v)=%s want %s", amount, got, want)
		}
	}
}

func TestApplyClassification_MutualExclusion(t *testing.T) {
	t.Parallel()

	g := Game{IsSeries: boolPtr(true), IsRegular: boolPtr(true), RecurringGameID: "rg-1"}
	g.ApplyClassification(g.Classify())
	if !*g.IsSeries || *g.IsRegular {
		t.Fatalf("series must clear isRegular")
	}

	r := Game{RecurringGameID: "rg-1"}
	r.ApplyClassification(r.Classify())
	if *r.IsSeries || !*r.IsRegular {
		t.Fatalf("recurring assignment should set isRegular")
	}
}

func TestChangedFieldsAndApply(t *testing.T) {
	t.Parallel()

	g := Game{Name: "Thursday Grind"}
	diag := NewDiagnostics()
	changed := Apply(&g, diag, func(x *Game) {
		x.GameType = TypeTournament
		x.DayNumber = intPtr(1)
	})
	if len(changed) != 2 || len(diag.FieldsCompleted) != 2 {
		t.Fatalf("unexpected changes %v", changed)
	}
	changed = Apply(&g, diag, func(x *Game) {
		x.DayNumber = intPtr(1)
	})
	if len(changed) != 0 {
		t.Fatalf("same value should not count as a change: %v", changed)
	}
	if len(ChangedFields(g, g.Clone())) != 0 {
		t.Fatalf("clone must be equal")
	}
}
