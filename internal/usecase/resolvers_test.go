package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/series"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/venue"
	"github.com/riskibarqy/tournament-reconciler/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/cache"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/id"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/ptr"
)

func newTestVenues() *VenueResolver {
	return NewVenueResolver(memory.NewVenueRepository(memory.SeedVenues()), cache.NewStore(time.Minute), nil)
}

func TestVenueResolver_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		game       game.Game
		input      VenueInput
		wantStatus string
		wantVenue  string
		wantSource string
		wantWarn   bool
	}{
		{
			name:       "caller id is manual",
			game:       game.Game{Name: "Friday Freeroll"},
			input:      VenueInput{VenueID: memory.VenueIDRootyHill},
			wantStatus: game.AssignmentManuallyAssigned,
			wantVenue:  memory.VenueIDRootyHill,
			wantSource: venue.SourceProvided,
		},
		{
			name:       "name match is auto",
			game:       game.Game{Name: "Monday Madness at The Star"},
			wantStatus: game.AssignmentAutoAssigned,
			wantVenue:  memory.VenueIDStarSydney,
		},
		{
			name:       "unknown id falls back to pending",
			game:       game.Game{Name: "Friday Freeroll"},
			input:      VenueInput{VenueID: "venue-missing", VenueName: "Mystery Club"},
			wantStatus: game.AssignmentPending,
			wantSource: venue.SourceNone,
			wantWarn:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			g := tc.game
			diag := game.NewDiagnostics()
			res, err := newTestVenues().Resolve(context.Background(), &g, tc.input, diag)
			if err != nil {
				t.Fatalf("resolve venue: %v", err)
			}
			if res.Status != tc.wantStatus || g.VenueAssignmentStatus != tc.wantStatus {
				t.Fatalf("status=%s game status=%s want %s", res.Status, g.VenueAssignmentStatus, tc.wantStatus)
			}
			if res.VenueID != tc.wantVenue || g.VenueID != tc.wantVenue {
				t.Fatalf("venue=%q game venue=%q want %q", res.VenueID, g.VenueID, tc.wantVenue)
			}
			if tc.wantSource != "" && res.MatchSource != tc.wantSource {
				t.Fatalf("source=%s want %s", res.MatchSource, tc.wantSource)
			}
			if got := diag.HasWarning(game.CodeVenueResolutionError); got != tc.wantWarn {
				t.Fatalf("venue warning=%v want %v: %+v", got, tc.wantWarn, diag.Warnings)
			}
		})
	}
}

func TestVenueResolver_Resolve_InheritsFeeAndEntity(t *testing.T) {
	t.Parallel()

	g := game.Game{Name: "Friday Freeroll"}
	if _, err := newTestVenues().Resolve(context.Background(), &g, VenueInput{VenueID: memory.VenueIDStarSydney}, game.NewDiagnostics()); err != nil {
		t.Fatalf("resolve venue: %v", err)
	}
	if g.VenueFee == nil || *g.VenueFee != 3 {
		t.Fatalf("expected venue fee 3, got %v", g.VenueFee)
	}
	if g.EntityID != memory.EntityIDSydney {
		t.Fatalf("expected entity from venue, got %q", g.EntityID)
	}
	if g.VenueAssignmentConfidence == nil || *g.VenueAssignmentConfidence != 1 {
		t.Fatalf("expected full confidence, got %v", g.VenueAssignmentConfidence)
	}
}

func TestVenueResolver_Resolve_SuggestsNameWhenUnmatched(t *testing.T) {
	t.Parallel()

	g := game.Game{Name: "Friday Freeroll"}
	res, err := newTestVenues().Resolve(context.Background(), &g, VenueInput{VenueName: "Mystery Club"}, game.NewDiagnostics())
	if err != nil {
		t.Fatalf("resolve venue: %v", err)
	}
	if res.SuggestedVenueName != "Mystery Club" || g.SuggestedVenueName != "Mystery Club" {
		t.Fatalf("unexpected suggestion %q/%q", res.SuggestedVenueName, g.SuggestedVenueName)
	}
	if g.VenueID != "" {
		t.Fatalf("unmatched venue must not set an id, got %q", g.VenueID)
	}
}

func TestSatelliteResolver_Resolve(t *testing.T) {
	t.Parallel()

	augustStart := aest.FromAEST(2025, time.August, 1, 0, 0, 0)
	seriesRepo := memory.NewSeriesRepository(memory.SeedSeriesTitles(), []series.Series{{
		ID:                      "series-colossus-aug",
		Name:                    "Colossus August 2025",
		Year:                    2025,
		Month:                   ptr.To(8),
		StartDate:               &augustStart,
		TournamentSeriesTitleID: memory.TitleIDColossus,
		VenueID:                 memory.VenueIDStarSydney,
		EntityID:                memory.EntityIDSydney,
		Status:                  series.StatusLive,
	}})
	resolver := NewSatelliteResolver(seriesRepo, nil)

	t.Run("links to target series", func(t *testing.T) {
		g := game.Game{
			Name:              "Sunday Colossus Satty - 2 Seats GTD",
			VenueID:           memory.VenueIDStarSydney,
			GameStartDateTime: aestTime(2025, time.August, 3, 12, 0),
		}
		res, err := resolver.Resolve(context.Background(), &g, game.NewDiagnostics())
		if err != nil {
			t.Fatalf("resolve satellite: %v", err)
		}
		if res.Status != game.SatelliteLinkedToSeries || res.TargetSeriesID != "series-colossus-aug" {
			t.Fatalf("unexpected resolution: %+v", res)
		}
		if !g.SatelliteFlag() || g.SatelliteTargetSeriesID != "series-colossus-aug" {
			t.Fatalf("expected satellite target on game, got %+v", g)
		}
		if g.SatelliteSeatsAwarded == nil || *g.SatelliteSeatsAwarded != 2 {
			t.Fatalf("expected 2 seats, got %v", g.SatelliteSeatsAwarded)
		}
		if g.TournamentSeriesID != "" {
			t.Fatalf("satellite stage must not set tournamentSeriesId, got %q", g.TournamentSeriesID)
		}
	})

	t.Run("suggests unknown target", func(t *testing.T) {
		g := game.Game{
			Name:              "Winter Classic Sat - 6 packages",
			VenueID:           memory.VenueIDRootyHill,
			GameStartDateTime: aestTime(2025, time.June, 7, 12, 0),
		}
		res, err := resolver.Resolve(context.Background(), &g, game.NewDiagnostics())
		if err != nil {
			t.Fatalf("resolve satellite: %v", err)
		}
		if res.Status != game.SatelliteDetectedNoTarget || res.SuggestedTarget != "winter classic" {
			t.Fatalf("unexpected resolution: %+v", res)
		}
		if g.SuggestedSatelliteTarget != "winter classic" {
			t.Fatalf("expected suggested target on game, got %q", g.SuggestedSatelliteTarget)
		}
	})

	t.Run("regular game", func(t *testing.T) {
		g := game.Game{Name: "Thursday Grind"}
		res, err := resolver.Resolve(context.Background(), &g, game.NewDiagnostics())
		if err != nil {
			t.Fatalf("resolve satellite: %v", err)
		}
		if res.Status != game.SatelliteNotSatellite || g.SatelliteFlag() {
			t.Fatalf("unexpected resolution: %+v", res)
		}
		if g.TournamentPurpose != game.PurposeStandard {
			t.Fatalf("expected standard purpose, got %q", g.TournamentPurpose)
		}
	})
}

func TestSeriesResolver_Resolve_CreatesThenReusesInstance(t *testing.T) {
	t.Parallel()

	venues := newTestVenues()
	seriesRepo := memory.NewSeriesRepository(memory.SeedSeriesTitles(), nil)
	resolver := NewSeriesResolver(seriesRepo, venues, &id.SequenceGenerator{Prefix: "series"}, nil)
	ctx := context.Background()

	first := game.Game{
		Name:              "Colossus Day 1A",
		EntityID:          memory.EntityIDSydney,
		VenueID:           memory.VenueIDStarSydney,
		GameStartDateTime: aestTime(2025, time.August, 2, 12, 0),
	}
	created, err := resolver.Resolve(ctx, &first, SeriesInput{}, ResolveOptions{AutoCreate: true}, game.NewDiagnostics())
	if err != nil {
		t.Fatalf("resolve series: %v", err)
	}
	if created.Status != game.AssignmentCreatedNew || !created.SeriesCreated {
		t.Fatalf("expected created instance, got %+v", created)
	}
	if created.TitleID != memory.TitleIDColossus || created.TitleStatus != game.AssignmentMatchedExisting {
		t.Fatalf("expected existing Colossus title, got %+v", created)
	}
	if first.TournamentSeriesID != created.SeriesID || first.SeriesYear == nil || *first.SeriesYear != 2025 {
		t.Fatalf("series not applied to game: %+v", first)
	}

	second := game.Game{
		Name:              "Colossus Day 1B",
		EntityID:          memory.EntityIDSydney,
		VenueID:           memory.VenueIDStarSydney,
		GameStartDateTime: aestTime(2025, time.August, 3, 12, 0),
	}
	reused, err := resolver.Resolve(ctx, &second, SeriesInput{}, ResolveOptions{AutoCreate: true}, game.NewDiagnostics())
	if err != nil {
		t.Fatalf("resolve series: %v", err)
	}
	if reused.Status != game.AssignmentAutoAssigned || reused.SeriesID != created.SeriesID {
		t.Fatalf("expected reuse of %s, got %+v", created.SeriesID, reused)
	}

	items, err := seriesRepo.ListSeriesByTitle(ctx, memory.TitleIDColossus)
	if err != nil {
		t.Fatalf("list series: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one Colossus instance, got %d", len(items))
	}
}

func TestSeriesResolver_Resolve_PendingPaths(t *testing.T) {
	t.Parallel()

	venues := newTestVenues()
	resolver := NewSeriesResolver(memory.NewSeriesRepository(memory.SeedSeriesTitles(), nil), venues, &id.SequenceGenerator{Prefix: "series"}, nil)
	ctx := context.Background()

	t.Run("auto create disabled", func(t *testing.T) {
		g := game.Game{Name: "Colossus Day 1A", GameStartDateTime: aestTime(2025, time.August, 2, 12, 0)}
		res, err := resolver.Resolve(ctx, &g, SeriesInput{}, ResolveOptions{}, game.NewDiagnostics())
		if err != nil {
			t.Fatalf("resolve series: %v", err)
		}
		if res.Status != game.AssignmentPending || res.SuggestedSeriesName != "Colossus" {
			t.Fatalf("unexpected resolution: %+v", res)
		}
		if g.TournamentSeriesID != "" {
			t.Fatalf("pending resolution must not assign a series")
		}
	})

	t.Run("missing start", func(t *testing.T) {
		g := game.Game{Name: "Colossus Day 1A"}
		res, err := resolver.Resolve(ctx, &g, SeriesInput{}, ResolveOptions{AutoCreate: true}, game.NewDiagnostics())
		if err != nil {
			t.Fatalf("resolve series: %v", err)
		}
		if res.Status != game.AssignmentPending {
			t.Fatalf("unexpected resolution: %+v", res)
		}
	})

	t.Run("unknown series id warns", func(t *testing.T) {
		g := game.Game{Name: "Thursday Grind", GameStartDateTime: aestTime(2025, time.March, 6, 19, 0)}
		diag := game.NewDiagnostics()
		res, err := resolver.Resolve(ctx, &g, SeriesInput{TournamentSeriesID: "series-missing"}, ResolveOptions{AutoCreate: true}, diag)
		if err != nil {
			t.Fatalf("resolve series: %v", err)
		}
		if res.Status != game.AssignmentNotSeries {
			t.Fatalf("unexpected resolution: %+v", res)
		}
		if !diag.HasWarning(game.CodeSeriesResolutionError) {
			t.Fatalf("expected series warning, got %+v", diag.Warnings)
		}
	})
}

func TestRecurringResolver_Resolve(t *testing.T) {
	t.Parallel()

	newResolver := func() (*RecurringResolver, *memory.RecurringRepository) {
		repo := memory.NewRecurringRepository(memory.SeedRecurringGames())
		return NewRecurringResolver(repo, newTestVenues(), &id.SequenceGenerator{Prefix: "rec"}, DefaultRecurringThresholds(), nil), repo
	}
	ctx := context.Background()

	t.Run("auto assigns and inherits", func(t *testing.T) {
		resolver, _ := newResolver()
		g := game.Game{
			Name:              "Thursday Grind",
			VenueID:           memory.VenueIDStarSydney,
			BuyIn:             ptr.To(120.0),
			GameStartDateTime: aestTime(2025, time.March, 6, 19, 0),
		}
		res, err := resolver.Resolve(ctx, &g, ResolveOptions{}, game.NewDiagnostics())
		if err != nil {
			t.Fatalf("resolve recurring: %v", err)
		}
		if res.Status != game.AssignmentAutoAssigned || g.RecurringGameID != "recurring-star-thursday-grind" {
			t.Fatalf("unexpected resolution: %+v", res)
		}
		if g.GuaranteeAmount == nil || *g.GuaranteeAmount != 5000 {
			t.Fatalf("expected inherited guarantee, got %v", g.GuaranteeAmount)
		}
		if g.HasAccumulatorTickets == nil || !*g.HasAccumulatorTickets {
			t.Fatalf("expected inherited accumulator flag")
		}
	})

	t.Run("series games are skipped", func(t *testing.T) {
		resolver, _ := newResolver()
		g := game.Game{
			Name:              "Thursday Grind",
			VenueID:           memory.VenueIDStarSydney,
			IsSeries:          ptr.To(true),
			GameStartDateTime: aestTime(2025, time.March, 6, 19, 0),
		}
		res, err := resolver.Resolve(ctx, &g, ResolveOptions{AutoCreate: true}, game.NewDiagnostics())
		if err != nil {
			t.Fatalf("resolve recurring: %v", err)
		}
		if res.Status != game.AssignmentSkipped || g.RecurringGameAssignmentStatus != game.AssignmentNotRecurring {
			t.Fatalf("unexpected resolution: %+v / %s", res, g.RecurringGameAssignmentStatus)
		}
	})

	t.Run("no venue is skipped", func(t *testing.T) {
		resolver, _ := newResolver()
		g := game.Game{Name: "Thursday Grind", GameStartDateTime: aestTime(2025, time.March, 6, 19, 0)}
		res, err := resolver.Resolve(ctx, &g, ResolveOptions{AutoCreate: true}, game.NewDiagnostics())
		if err != nil {
			t.Fatalf("resolve recurring: %v", err)
		}
		if res.Status != game.AssignmentSkipped {
			t.Fatalf("unexpected resolution: %+v", res)
		}
	})

	t.Run("unmatched without auto create", func(t *testing.T) {
		resolver, _ := newResolver()
		g := game.Game{
			Name:              "Monday Madness",
			VenueID:           memory.VenueIDRootyHill,
			GameStartDateTime: aestTime(2025, time.March, 3, 19, 0),
		}
		res, err := resolver.Resolve(ctx, &g, ResolveOptions{}, game.NewDiagnostics())
		if err != nil {
			t.Fatalf("resolve recurring: %v", err)
		}
		if res.RecurringGameID != "" || g.RecurringGameAssignmentStatus != game.AssignmentNotRecurring {
			t.Fatalf("unexpected resolution: %+v", res)
		}
	})

	t.Run("unmatched with auto create", func(t *testing.T) {
		resolver, repo := newResolver()
		g := game.Game{
			Name:              "Monday Madness",
			VenueID:           memory.VenueIDRootyHill,
			EntityID:          memory.EntityIDSydney,
			BuyIn:             ptr.To(60.0),
			GameStartDateTime: aestTime(2025, time.March, 3, 19, 0),
		}
		res, err := resolver.Resolve(ctx, &g, ResolveOptions{AutoCreate: true}, game.NewDiagnostics())
		if err != nil {
			t.Fatalf("resolve recurring: %v", err)
		}
		if res.Status != game.AssignmentCreatedNew || !res.Created {
			t.Fatalf("unexpected resolution: %+v", res)
		}
		template, ok, err := repo.GetByID(ctx, res.RecurringGameID)
		if err != nil || !ok {
			t.Fatalf("created template not stored: ok=%v err=%v", ok, err)
		}
		if template.DayOfWeek != "MONDAY" || template.StartTime != "19:00" {
			t.Fatalf("unexpected template schedule: %s %s", template.DayOfWeek, template.StartTime)
		}
		if template.TypicalBuyIn == nil || *template.TypicalBuyIn != 60 {
			t.Fatalf("expected typical buy-in from game, got %v", template.TypicalBuyIn)
		}
	})
}

func TestRecurringResolver_Resolve_ForceIgnoresExistingTemplate(t *testing.T) {
	t.Parallel()

	templates := memory.SeedRecurringGames()
	turbo := templates[0]
	turbo.ID = "recurring-star-thursday-turbo"
	turbo.Name = "Thursday Turbo"
	templates = append(templates, turbo)
	ctx := context.Background()

	tests := []struct {
		name  string
		force bool
		want  string
	}{
		{name: "existing kept", force: false, want: "recurring-star-thursday-turbo"},
		{name: "force re-ranks", force: true, want: "recurring-star-thursday-grind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resolver := NewRecurringResolver(memory.NewRecurringRepository(templates), newTestVenues(), &id.SequenceGenerator{Prefix: "rec"}, DefaultRecurringThresholds(), nil)
			g := game.Game{
				Name:                          "Thursday Grind",
				VenueID:                       memory.VenueIDStarSydney,
				BuyIn:                         ptr.To(120.0),
				GameStartDateTime:             aestTime(2025, time.March, 6, 19, 0),
				RecurringGameID:               "recurring-star-thursday-turbo",
				RecurringGameAssignmentStatus: game.AssignmentAutoAssigned,
			}
			res, err := resolver.Resolve(ctx, &g, ResolveOptions{Force: tt.force}, game.NewDiagnostics())
			if err != nil {
				t.Fatalf("resolve recurring: %v", err)
			}
			if res.RecurringGameID != tt.want || g.RecurringGameID != tt.want {
				t.Fatalf("expected %s, got %+v", tt.want, res)
			}
		})
	}
}

func TestRecurringResolver_ThresholdsFor(t *testing.T) {
	t.Parallel()

	resolver := NewRecurringResolver(memory.NewRecurringRepository(nil), newTestVenues(), &id.SequenceGenerator{Prefix: "rec"}, DefaultRecurringThresholds(), nil)
	def := DefaultRecurringThresholds()

	tests := []struct {
		name       string
		threshold  float64
		wantHigh   float64
		wantMedium float64
	}{
		{name: "unset keeps defaults", threshold: 0, wantHigh: def.HighConfidence, wantMedium: def.MediumConfidence},
		{name: "out of range keeps defaults", threshold: 60, wantHigh: def.HighConfidence, wantMedium: def.MediumConfidence},
		{name: "raised cutoff", threshold: 0.95, wantHigh: 95, wantMedium: def.MediumConfidence},
		{name: "lowered cutoff caps medium", threshold: 0.5, wantHigh: 50, wantMedium: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := resolver.thresholdsFor(ResolveOptions{Threshold: tt.threshold})
			if math.Abs(got.HighConfidence-tt.wantHigh) > 1e-9 || math.Abs(got.MediumConfidence-tt.wantMedium) > 1e-9 {
				t.Fatalf("expected %v/%v, got %+v", tt.wantHigh, tt.wantMedium, got)
			}
			if got.CrossDaySuggestion != def.CrossDaySuggestion {
				t.Fatalf("cross-day suggestion must not change, got %v", got.CrossDaySuggestion)
			}
		})
	}
}
