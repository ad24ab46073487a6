package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/series"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/textutil"
)

// SeriesResolution explains how a game was tied to a series instance.
type SeriesResolution struct {
	SeriesID            string   `json:"seriesId,omitempty"`
	SeriesName          string   `json:"seriesName,omitempty"`
	TitleID             string   `json:"titleId,omitempty"`
	TitleName           string   `json:"titleName,omitempty"`
	Status              string   `json:"status"`
	Confidence          float64  `json:"confidence"`
	MatchType           string   `json:"matchType,omitempty"`
	InstanceScore       int      `json:"instanceScore,omitempty"`
	SeriesCreated       bool     `json:"seriesCreated"`
	TitleStatus         string   `json:"titleStatus,omitempty"`
	SuggestedSeriesName string   `json:"suggestedSeriesName,omitempty"`
	Reasons             []string `json:"reasons,omitempty"`
}

// titleHit is a title-level match before an instance is chosen. Title.ID is
// empty when the hit came from a pattern or keyword with no catalog row yet.
type titleHit struct {
	title      series.Title
	category   string
	confidence float64
	matchType  string
	reasons    []string
}

type SeriesResolver struct {
	seriesRepo series.Repository
	venues     *VenueResolver
	ids        IDGenerator
	logger     *logging.Logger
	now        func() time.Time
}

func NewSeriesResolver(seriesRepo series.Repository, venues *VenueResolver, ids IDGenerator, logger *logging.Logger) *SeriesResolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &SeriesResolver{
		seriesRepo: seriesRepo,
		venues:     venues,
		ids:        ids,
		logger:     logger,
		now:        time.Now,
	}
}

// Resolve assigns the game to one series instance. Order: provided id, the
// id already on the record, title catalog exact then fuzzy, tour patterns,
// keyword heuristics. opts.Force skips the id already on the record;
// opts.Threshold outside (0,1] uses the default fuzzy cutoff.
func (r *SeriesResolver) Resolve(ctx context.Context, g *game.Game, input SeriesInput, opts ResolveOptions, diag *game.Diagnostics) (SeriesResolution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeriesResolver.Resolve")
	defer span.End()

	if id := strings.TrimSpace(input.TournamentSeriesID); id != "" {
		res, ok, err := r.fromSeriesID(ctx, id, game.AssignmentManuallyAssigned, 1.0)
		if err != nil {
			return SeriesResolution{}, err
		}
		if ok {
			res.MatchType = series.MatchProvidedID
			r.apply(g, res, diag)
			return res, nil
		}
		diag.Warn("tournamentSeriesId", game.CodeSeriesResolutionError, "series id not found", map[string]any{"tournamentSeriesId": id})
	}

	if !opts.Force && g.TournamentSeriesID != "" && assigned(g.SeriesAssignmentStatus) {
		confidence := 1.0
		if g.SeriesAssignmentConfidence != nil {
			confidence = *g.SeriesAssignmentConfidence
		}
		res, ok, err := r.fromSeriesID(ctx, g.TournamentSeriesID, g.SeriesAssignmentStatus, confidence)
		if err != nil {
			return SeriesResolution{}, err
		}
		if ok {
			res.MatchType = series.MatchProvidedID
			r.apply(g, res, diag)
			return res, nil
		}
	}

	titles, err := r.seriesRepo.ListTitles(ctx)
	if err != nil {
		return SeriesResolution{}, fmt.Errorf("list series titles: %w", err)
	}

	hit, ok := r.detectTitle(ctx, g, input, titles, opts.Threshold)
	if !ok {
		res := SeriesResolution{Status: game.AssignmentNotSeries}
		if g.SeriesFlag() {
			res.Status = game.AssignmentPending
			res.SuggestedSeriesName = strings.TrimSpace(input.SeriesName)
		}
		r.apply(g, res, diag)
		return res, nil
	}

	if hit.title.ID == "" {
		if existing, found := findTitle(titles, hit.title.Title); found {
			hit.title = existing
		}
	}

	start := g.EffectiveStart()
	if start == nil {
		res := SeriesResolution{Status: game.AssignmentPending, SuggestedSeriesName: hit.title.Title, MatchType: hit.matchType, Reasons: hit.reasons}
		r.apply(g, res, diag)
		return res, nil
	}

	if hit.title.ID != "" {
		instances, err := r.seriesRepo.ListSeriesByTitle(ctx, hit.title.ID)
		if err != nil {
			return SeriesResolution{}, fmt.Errorf("list series by title: %w", err)
		}
		if best, found := series.BestInstance(instances, *start, input.SeriesName, g.VenueID); found {
			res := SeriesResolution{
				SeriesID:      best.Series.ID,
				SeriesName:    best.Series.Name,
				TitleID:       hit.title.ID,
				TitleName:     hit.title.Title,
				Status:        game.AssignmentAutoAssigned,
				Confidence:    hit.confidence,
				MatchType:     hit.matchType,
				InstanceScore: best.Total,
				Reasons:       hit.reasons,
			}
			r.apply(g, res, diag)
			return res, nil
		}
	}

	if !opts.AutoCreate {
		res := SeriesResolution{Status: game.AssignmentPending, TitleID: hit.title.ID, TitleName: hit.title.Title, MatchType: hit.matchType, SuggestedSeriesName: hit.title.Title, Reasons: hit.reasons}
		r.apply(g, res, diag)
		return res, nil
	}

	res, err := r.createInstance(ctx, g, hit, titles, *start, diag)
	if err != nil {
		return SeriesResolution{}, err
	}
	r.apply(g, res, diag)
	return res, nil
}

func assigned(status string) bool {
	switch status {
	case game.AssignmentAutoAssigned, game.AssignmentManuallyAssigned, game.AssignmentCreatedNew, game.AssignmentMatchedExisting:
		return true
	}
	return false
}

func (r *SeriesResolver) fromSeriesID(ctx context.Context, seriesID, status string, confidence float64) (SeriesResolution, bool, error) {
	s, ok, err := r.seriesRepo.GetSeries(ctx, seriesID)
	if err != nil {
		return SeriesResolution{}, false, fmt.Errorf("get series: %w", err)
	}
	if !ok {
		return SeriesResolution{}, false, nil
	}
	res := SeriesResolution{SeriesID: s.ID, SeriesName: s.Name, TitleID: s.TournamentSeriesTitleID, Status: status, Confidence: confidence}
	if t, found, err := r.seriesRepo.GetTitle(ctx, s.TournamentSeriesTitleID); err == nil && found {
		res.TitleName = t.Title
	}
	return res, true, nil
}

func (r *SeriesResolver) detectTitle(ctx context.Context, g *game.Game, input SeriesInput, titles []series.Title, fuzzyThreshold float64) (titleHit, bool) {
	if id := strings.TrimSpace(input.SeriesTitleID); id != "" {
		for _, t := range titles {
			if t.ID == id {
				return titleHit{title: t, category: t.SeriesCategory, confidence: 1.0, matchType: series.MatchProvidedID, reasons: []string{"provided_title"}}, true
			}
		}
	}

	var (
		best    series.Title
		bestLen int
	)
	for _, t := range titles {
		if matched, ok := series.ExactTitleMatch(g.Name, t); ok && len(matched) > bestLen {
			best, bestLen = t, len(matched)
		}
	}
	if bestLen > 0 {
		return titleHit{title: best, category: best.SeriesCategory, confidence: 1.0, matchType: series.MatchDatabaseExact, reasons: []string{"title:" + best.Title}}, true
	}

	if fuzzyThreshold <= 0 || fuzzyThreshold > 1 {
		fuzzyThreshold = series.FuzzyTitleThreshold
	}
	cleaned := series.CleanGameName(g.Name, r.venues.Names(ctx, g.VenueID))
	bestScore := 0.0
	for _, t := range titles {
		if s := series.FuzzyTitleScore(cleaned, t); s > bestScore {
			best, bestScore = t, s
		}
	}
	if bestScore >= fuzzyThreshold {
		return titleHit{title: best, category: best.SeriesCategory, confidence: bestScore, matchType: series.MatchDatabaseFuzzy, reasons: []string{fmt.Sprintf("fuzzy:%s:%.2f", best.Title, bestScore)}}, true
	}

	if det, ok := series.DetectTourPattern(g.Name); ok {
		return titleHit{title: series.Title{Title: det.Title, SeriesCategory: det.Category}, category: det.Category, confidence: det.Confidence, matchType: det.MatchType, reasons: det.Reasons}, true
	}
	if det, ok := series.DetectKeywords(g.Name, g.EffectiveStart()); ok {
		return titleHit{title: series.Title{Title: det.Title, SeriesCategory: det.Category}, category: det.Category, confidence: det.Confidence, matchType: det.MatchType, reasons: det.Reasons}, true
	}
	return titleHit{}, false
}

// findTitle looks a title up by exact name or alias, then by Dice similarity
// at the reuse threshold.
func findTitle(titles []series.Title, name string) (series.Title, bool) {
	cleaned := series.CleanTitle(name)
	if cleaned == "" {
		return series.Title{}, false
	}
	for _, t := range titles {
		for _, n := range t.Names() {
			if strings.EqualFold(strings.TrimSpace(n), cleaned) {
				return t, true
			}
		}
	}
	var (
		best      series.Title
		bestScore float64
	)
	for _, t := range titles {
		for _, n := range t.Names() {
			if s := textutil.DiceCoefficient(cleaned, n); s > bestScore {
				best, bestScore = t, s
			}
		}
	}
	if bestScore >= series.TitleReuseThreshold {
		return best, true
	}
	return series.Title{}, false
}

func (r *SeriesResolver) createInstance(ctx context.Context, g *game.Game, hit titleHit, titles []series.Title, start time.Time, diag *game.Diagnostics) (SeriesResolution, error) {
	title := hit.title
	titleStatus := game.AssignmentMatchedExisting
	if title.ID == "" {
		if existing, ok := findTitle(titles, title.Title); ok {
			title = existing
		} else {
			created, err := r.createTitle(ctx, title.Title, hit.category)
			if err != nil {
				return SeriesResolution{}, err
			}
			title = created
			titleStatus = game.AssignmentCreatedNew
		}
	}

	existing, err := r.seriesRepo.ListSeriesByTitle(ctx, title.ID)
	if err != nil {
		return SeriesResolution{}, fmt.Errorf("list series by title: %w", err)
	}
	plan := series.PlanInstance(title.Title, start, existing)

	entityID := g.EntityID
	if entityID == "" && g.VenueID != "" {
		if v, ok, err := r.venues.Get(ctx, g.VenueID); err == nil && ok {
			entityID = v.EntityID
		}
	}
	if entityID == "" {
		diag.Warn("entityId", game.CodeSeriesEntityMissing, "series created without an entity", map[string]any{"seriesName": plan.Name})
	}

	seriesID, err := r.ids.NewID()
	if err != nil {
		return SeriesResolution{}, fmt.Errorf("generate series id: %w", err)
	}
	now := r.now().UTC()
	day := aest.StartOfDay(start).UTC()
	item := series.Series{
		ID:                      seriesID,
		Name:                    plan.Name,
		Year:                    plan.Year,
		Month:                   plan.Month,
		Quarter:                 plan.Quarter,
		StartDate:               &day,
		TournamentSeriesTitleID: title.ID,
		VenueID:                 g.VenueID,
		EntityID:                entityID,
		Status:                  series.StatusLive,
		SeriesCategory:          series.NormalizeCategory(hit.category),
		NumberOfEvents:          1,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := r.seriesRepo.CreateSeries(ctx, item); err != nil {
		return SeriesResolution{}, fmt.Errorf("create series: %w", err)
	}
	r.logger.InfoContext(ctx, "series created", "series_id", item.ID, "series_name", item.Name, "title_id", title.ID)

	return SeriesResolution{
		SeriesID:      item.ID,
		SeriesName:    item.Name,
		TitleID:       title.ID,
		TitleName:     title.Title,
		Status:        game.AssignmentCreatedNew,
		Confidence:    hit.confidence,
		MatchType:     hit.matchType,
		SeriesCreated: true,
		TitleStatus:   titleStatus,
		Reasons:       hit.reasons,
	}, nil
}

func (r *SeriesResolver) createTitle(ctx context.Context, name, category string) (series.Title, error) {
	titleID, err := r.ids.NewID()
	if err != nil {
		return series.Title{}, fmt.Errorf("generate title id: %w", err)
	}
	now := r.now().UTC()
	t := series.Title{
		ID:             titleID,
		Title:          series.CleanTitle(name),
		SeriesCategory: series.NormalizeCategory(category),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := r.seriesRepo.CreateTitle(ctx, t); err != nil {
		return series.Title{}, fmt.Errorf("create series title: %w", err)
	}
	r.logger.InfoContext(ctx, "series title created", "title_id", t.ID, "title", t.Title)
	return t, nil
}

func (r *SeriesResolver) apply(g *game.Game, res SeriesResolution, diag *game.Diagnostics) {
	game.Apply(g, diag, func(g *game.Game) {
		g.SeriesAssignmentStatus = res.Status
		if res.SeriesID == "" {
			if res.SuggestedSeriesName != "" {
				g.SuggestedSeriesName = res.SuggestedSeriesName
			}
			return
		}
		g.TournamentSeriesID = res.SeriesID
		g.TournamentSeriesTitleID = res.TitleID
		g.SeriesName = res.SeriesName
		confidence := res.Confidence
		g.SeriesAssignmentConfidence = &confidence
		g.SuggestedSeriesName = ""
		g.ApplyClassification(game.SeriesClassification{SeriesID: res.SeriesID, TitleID: res.TitleID})
		if start := g.EffectiveStart(); start != nil && g.SeriesYear == nil {
			year := aest.ToAEST(*start).Year()
			g.SeriesYear = &year
		}
	})
}
