package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/satellite"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/series"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
)

type SatelliteResolution struct {
	Status           string              `json:"status"`
	Detection        satellite.Detection `json:"detection"`
	TargetSeriesID   string              `json:"targetSeriesId,omitempty"`
	TargetSeriesName string              `json:"targetSeriesName,omitempty"`
	TargetScore      float64             `json:"targetScore,omitempty"`
	SuggestedTarget  string              `json:"suggestedTarget,omitempty"`
}

// SatelliteResolver flags satellites and links them to the series they feed.
// It never touches tournamentSeriesId.
type SatelliteResolver struct {
	seriesRepo series.Repository
	logger     *logging.Logger
}

func NewSatelliteResolver(seriesRepo series.Repository, logger *logging.Logger) *SatelliteResolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &SatelliteResolver{seriesRepo: seriesRepo, logger: logger}
}

func (r *SatelliteResolver) Resolve(ctx context.Context, g *game.Game, diag *game.Diagnostics) (SatelliteResolution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SatelliteResolver.Resolve")
	defer span.End()

	det := satellite.Detect(g.Name, g.TournamentType)
	if !det.IsSatellite {
		game.Apply(g, diag, func(g *game.Game) {
			f := false
			g.IsSatellite = &f
			if g.TournamentPurpose == "" {
				g.TournamentPurpose = game.PurposeStandard
			}
		})
		return SatelliteResolution{Status: game.SatelliteNotSatellite}, nil
	}

	res := SatelliteResolution{Status: game.SatelliteDetectedNoTarget, Detection: det}
	if det.Target != "" {
		start := time.Time{}
		if s := g.EffectiveStart(); s != nil {
			start = *s
		}
		best, score, err := r.bestTarget(ctx, det.Target, g.VenueID, start)
		if err != nil {
			return res, err
		}
		if score >= satellite.TargetAcceptScore {
			res.Status = game.SatelliteLinkedToSeries
			res.TargetSeriesID = best.SeriesID
			res.TargetSeriesName = best.SeriesName
			res.TargetScore = score
		} else {
			res.SuggestedTarget = det.Target
		}
	}

	game.Apply(g, diag, func(g *game.Game) {
		t := true
		g.IsSatellite = &t
		g.TournamentPurpose = det.SatelliteType
		g.SatelliteType = det.SatelliteType
		if det.SeatsAwarded != nil {
			seats := *det.SeatsAwarded
			g.SatelliteSeatsAwarded = &seats
		}
		if det.SeatRatio != nil {
			g.SatelliteSeatRatio = &game.SeatRatio{Winners: det.SeatRatio.Winners, Per: det.SeatRatio.Per}
		}
		if res.TargetSeriesID != "" {
			g.SatelliteTargetSeriesID = res.TargetSeriesID
			g.SatelliteTargetSeriesName = res.TargetSeriesName
			score := res.TargetScore
			g.SatelliteTargetConfidence = &score
			g.SuggestedSatelliteTarget = ""
		} else if res.SuggestedTarget != "" {
			g.SuggestedSatelliteTarget = res.SuggestedTarget
		}
	})
	r.logger.DebugContext(ctx, "satellite resolved", "game_name", g.Name, "status", res.Status, "target", det.Target)
	return res, nil
}

// bestTarget scans the venue's series, or the satellite's year when no venue
// is known.
func (r *SatelliteResolver) bestTarget(ctx context.Context, target, venueID string, start time.Time) (satellite.TargetCandidate, float64, error) {
	var (
		items []series.Series
		err   error
	)
	if venueID != "" {
		items, err = r.seriesRepo.ListSeriesByVenue(ctx, venueID)
	} else if !start.IsZero() {
		items, err = r.seriesRepo.ListSeriesByYear(ctx, aest.ToAEST(start).Year())
	}
	if err != nil {
		return satellite.TargetCandidate{}, 0, fmt.Errorf("list target series: %w", err)
	}

	titleNames := make(map[string][]string)
	var (
		best      satellite.TargetCandidate
		bestScore float64
	)
	for _, s := range items {
		names, ok := titleNames[s.TournamentSeriesTitleID]
		if !ok {
			t, found, err := r.seriesRepo.GetTitle(ctx, s.TournamentSeriesTitleID)
			if err != nil {
				return satellite.TargetCandidate{}, 0, fmt.Errorf("get series title: %w", err)
			}
			if found {
				names = t.Names()
			}
			titleNames[s.TournamentSeriesTitleID] = names
		}
		c := satellite.TargetCandidate{SeriesID: s.ID, SeriesName: s.Name, TitleNames: names, Start: seriesStart(s)}
		if score := satellite.ScoreTarget(target, c, start); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore, nil
}

// seriesStart is the explicit start date, else the first of the series month.
func seriesStart(s series.Series) time.Time {
	if s.StartDate != nil {
		return *s.StartDate
	}
	if s.Month != nil && s.Year > 0 {
		return aest.FromAEST(s.Year, time.Month(*s.Month), 1, 0, 0, 0)
	}
	return time.Time{}
}
