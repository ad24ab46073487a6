package satellite

import (
	"testing"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ttype    string
		want     bool
		satType  string
		seats    int
		target   string
		minConf  float64
		ratioPer int
	}{
		{name: "Sunday Colossus Satty - 2 Seats GTD", want: true, satType: TypeSatellite, seats: 2, target: "colossus", minConf: 0.9},
		{name: "Sydney Millions Mega Satellite 12 Seats GTD", want: true, satType: TypeMegaSatellite, seats: 12, target: "sydney millions", minConf: 0.95},
		{name: "Main Event Qualifier 1 in 10", want: true, satType: TypeQualifier, target: "main event", minConf: 0.85, ratioPer: 10},
		{name: "Step 2 Satellite to Grand Final", want: true, satType: TypeStepSatellite, target: "grand final", minConf: 0.95},
		{name: "Winter Classic Sat - 6 packages", want: true, satType: TypeSuperSatellite, seats: 6, target: "winter classic", minConf: 0.75},
		{name: "Freeroll", ttype: "SATELLITE", want: true, satType: TypeSatellite, minConf: 0.95},
		{name: "Sat 5pm Deepstack $30K GTD", want: false},
		{name: "Thursday Grind", want: false},
	}

	for _, tc := range tests {
		got := Detect(tc.name, tc.ttype)
		if got.IsSatellite != tc.want {
			t.Fatalf("%s: isSatellite=%v want %v (%+v)", tc.name, got.IsSatellite, tc.want, got)
		}
		if !tc.want {
			continue
		}
		if got.SatelliteType != tc.satType {
			t.Fatalf("%s: type=%s want %s", tc.name, got.SatelliteType, tc.satType)
		}
		if tc.seats != 0 && (got.SeatsAwarded == nil || *got.SeatsAwarded != tc.seats) {
			t.Fatalf("%s: seats=%v want %d", tc.name, got.SeatsAwarded, tc.seats)
		}
		if got.Target != tc.target {
			t.Fatalf("%s: target=%q want %q", tc.name, got.Target, tc.target)
		}
		if got.Confidence < tc.minConf {
			t.Fatalf("%s: confidence=%v want >= %v", tc.name, got.Confidence, tc.minConf)
		}
		if tc.ratioPer != 0 && (got.SeatRatio == nil || got.SeatRatio.Per != tc.ratioPer || got.SeatRatio.Winners != 1) {
			t.Fatalf("%s: ratio=%+v", tc.name, got.SeatRatio)
		}
	}
}

func TestDetect_SeatRatioNeedsSeatContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
		per  int
	}{
		{name: "Event 5 in 2025", want: false},
		{name: "Main Event 1 per 10", want: false},
		{name: "Deepstack 1 in 10 Seats", want: true, per: 10},
		{name: "Grand Final 2 per 20 tickets", want: true, per: 20},
	}
	for _, tc := range tests {
		got := Detect(tc.name, "")
		if got.IsSatellite != tc.want {
			t.Fatalf("%s: isSatellite=%v want %v (%+v)", tc.name, got.IsSatellite, tc.want, got)
		}
		if tc.want && (got.SeatRatio == nil || got.SeatRatio.Per != tc.per) {
			t.Fatalf("%s: ratio=%+v want per %d", tc.name, got.SeatRatio, tc.per)
		}
	}
}

func TestCleanTarget(t *testing.T) {
	t.Parallel()

	if got := CleanTarget("Grand Final $550 Re-Entry 14th Sep"); got != "grand final" {
		t.Fatalf("unexpected cleaned target %q", got)
	}
}

func TestScoreTarget(t *testing.T) {
	t.Parallel()

	satStart := aest.FromAEST(2025, time.August, 3, 12, 0, 0)
	colossus := TargetCandidate{
		SeriesID:   "S1",
		SeriesName: "Colossus August 2025",
		TitleNames: []string{"Colossus"},
		Start:      aest.FromAEST(2025, time.August, 1, 0, 0, 0),
	}
	other := TargetCandidate{
		SeriesID:   "S2",
		SeriesName: "Winter Series 2025",
		TitleNames: []string{"Winter Series"},
		Start:      aest.FromAEST(2025, time.June, 1, 0, 0, 0),
	}

	good := ScoreTarget("colossus", colossus, satStart)
	bad := ScoreTarget("colossus", other, satStart)
	if good < TargetAcceptScore || bad >= TargetAcceptScore {
		t.Fatalf("unexpected scores good=%v bad=%v", good, bad)
	}
	if ScoreTarget("", colossus, satStart) != 0 {
		t.Fatalf("empty target must score 0")
	}
}
