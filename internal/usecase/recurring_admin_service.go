package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/recurring"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
	"github.com/riskibarqy/tournament-reconciler/internal/platform/logging"
)

const (
	defaultGapWindowDays = 90
	gapWorkers           = 4
)

// RecurringStats summarises the template catalog, optionally for one venue.
type RecurringStats struct {
	Total            int            `json:"total"`
	Active           int            `json:"active"`
	Paused           int            `json:"paused"`
	Inactive         int            `json:"inactive"`
	Merged           int            `json:"merged"`
	WithAccumulators int            `json:"withAccumulators"`
	TotalGamesLinked int            `json:"totalGamesLinked"`
	ByDayOfWeek      map[string]int `json:"byDayOfWeek"`
	ByFrequency      map[string]int `json:"byFrequency"`
}

type MergeResult struct {
	PrimaryID     string   `json:"primaryId"`
	MergedIDs     []string `json:"mergedIds"`
	GamesMoved    int      `json:"gamesMoved"`
	DryRun        bool     `json:"dryRun"`
	SkippedIDs    []string `json:"skippedIds,omitempty"`
	PrimaryLinked int      `json:"primaryLinked"`
}

type OrphanCleanupResult struct {
	Orphans []string `json:"orphans"`
	Deleted int      `json:"deleted"`
	DryRun  bool     `json:"dryRun"`
}

type VenueReresolution struct {
	RecurringGameID string  `json:"recurringGameId"`
	Name            string  `json:"name"`
	OldVenueID      string  `json:"oldVenueId"`
	NewVenueID      string  `json:"newVenueId,omitempty"`
	Confidence      float64 `json:"confidence"`
	Updated         bool    `json:"updated"`
}

type MissedInstanceInput struct {
	RecurringGameID string `json:"recurringGameId" validate:"required"`
	ExpectedDate    string `json:"expectedDate" validate:"required"`
	Status          string `json:"status,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type GapOptions struct {
	VenueID        string     `json:"venueId,omitempty"`
	From           *time.Time `json:"from,omitempty"`
	To             *time.Time `json:"to,omitempty"`
	RecordMissing  bool       `json:"recordMissing"`
	RecordObserved bool       `json:"recordObserved"`
}

// TemplateGaps lists the expected dates of one template with no game.
type TemplateGaps struct {
	RecurringGameID string   `json:"recurringGameId"`
	Name            string   `json:"name"`
	VenueID         string   `json:"venueId"`
	Expected        int      `json:"expected"`
	Observed        int      `json:"observed"`
	MissingDates    []string `json:"missingDates"`
	Recorded        int      `json:"recorded"`
}

type GapReport struct {
	From          string         `json:"from"`
	To            string         `json:"to"`
	Templates     []TemplateGaps `json:"templates"`
	TotalExpected int            `json:"totalExpected"`
	TotalMissing  int            `json:"totalMissing"`
}

type ComplianceReport struct {
	Rows []recurring.Compliance `json:"rows"`
	CSV  string                 `json:"csv"`
}

// RecurringAdminService holds the maintenance operations over recurring
// templates and their instances.
type RecurringAdminService struct {
	recurringRepo recurring.Repository
	instanceRepo  recurring.InstanceRepository
	gameRepo      game.Repository
	venues        *VenueResolver
	ids           IDGenerator
	logger        *logging.Logger
	now           func() time.Time
}

func NewRecurringAdminService(recurringRepo recurring.Repository, instanceRepo recurring.InstanceRepository, gameRepo game.Repository, venues *VenueResolver, ids IDGenerator, logger *logging.Logger) *RecurringAdminService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecurringAdminService{
		recurringRepo: recurringRepo,
		instanceRepo:  instanceRepo,
		gameRepo:      gameRepo,
		venues:        venues,
		ids:           ids,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *RecurringAdminService) templates(ctx context.Context, venueID string) ([]recurring.RecurringGame, error) {
	var (
		items []recurring.RecurringGame
		err   error
	)
	if strings.TrimSpace(venueID) != "" {
		items, err = s.recurringRepo.ListByVenue(ctx, venueID)
	} else {
		items, err = s.recurringRepo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list recurring games: %w", err)
	}
	return items, nil
}

func (s *RecurringAdminService) Stats(ctx context.Context, venueID string) (RecurringStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecurringAdminService.Stats")
	defer span.End()

	items, err := s.templates(ctx, venueID)
	if err != nil {
		return RecurringStats{}, err
	}
	out := RecurringStats{ByDayOfWeek: make(map[string]int), ByFrequency: make(map[string]int)}
	for _, item := range items {
		out.Total++
		switch {
		case item.MergedIntoID != "":
			out.Merged++
		case !item.IsActive:
			out.Inactive++
		case item.IsPaused:
			out.Paused++
		default:
			out.Active++
		}
		if item.HasAccumulatorTickets {
			out.WithAccumulators++
		}
		out.TotalGamesLinked += item.TotalGamesLinked
		out.ByDayOfWeek[strings.ToUpper(item.DayOfWeek)]++
		out.ByFrequency[recurring.NormalizeFrequency(item.Frequency)]++
	}
	return out, nil
}

func (s *RecurringAdminService) FindDuplicates(ctx context.Context, venueID string) ([]recurring.DuplicatePair, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecurringAdminService.FindDuplicates")
	defer span.End()

	items, err := s.templates(ctx, venueID)
	if err != nil {
		return nil, err
	}
	names := make(map[string][]string)
	for _, item := range items {
		if _, ok := names[item.VenueID]; !ok {
			names[item.VenueID] = s.venues.Names(ctx, item.VenueID)
		}
	}
	return recurring.FindDuplicates(items, names), nil
}

// Merge folds duplicates into primary: their games are relinked and the
// duplicates are deactivated with mergedIntoId set.
func (s *RecurringAdminService) Merge(ctx context.Context, primaryID string, duplicateIDs []string, dryRun bool) (MergeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecurringAdminService.Merge")
	defer span.End()

	primary, ok, err := s.recurringRepo.GetByID(ctx, primaryID)
	if err != nil {
		return MergeResult{}, fmt.Errorf("get recurring game: %w", err)
	}
	if !ok {
		return MergeResult{}, fmt.Errorf("%w: recurring game %s", ErrNotFound, primaryID)
	}
	if primary.MergedIntoID != "" {
		return MergeResult{}, fmt.Errorf("%w: recurring game %s is already merged", ErrConflict, primaryID)
	}

	out := MergeResult{PrimaryID: primaryID, DryRun: dryRun, MergedIDs: []string{}}
	now := s.now().UTC()
	for _, dupID := range duplicateIDs {
		if dupID == primaryID {
			out.SkippedIDs = append(out.SkippedIDs, dupID)
			continue
		}
		dup, ok, err := s.recurringRepo.GetByID(ctx, dupID)
		if err != nil {
			return MergeResult{}, fmt.Errorf("get recurring game: %w", err)
		}
		if !ok || dup.MergedIntoID != "" {
			out.SkippedIDs = append(out.SkippedIDs, dupID)
			continue
		}
		games, err := s.gameRepo.ListByRecurringGame(ctx, dupID)
		if err != nil {
			return MergeResult{}, fmt.Errorf("list games by recurring game: %w", err)
		}
		out.GamesMoved += len(games)
		out.MergedIDs = append(out.MergedIDs, dupID)
		if dryRun {
			continue
		}
		for _, g := range games {
			g.RecurringGameID = primaryID
			g.UpdatedAt = now
			if err := s.gameRepo.Upsert(ctx, g); err != nil {
				return MergeResult{}, fmt.Errorf("relink game %s: %w", g.ID, err)
			}
		}
		dup.MergedIntoID = primaryID
		dup.IsActive = false
		dup.TotalGamesLinked = 0
		dup.UpdatedAt = now
		if err := s.recurringRepo.Update(ctx, dup); err != nil {
			return MergeResult{}, fmt.Errorf("update merged recurring game: %w", err)
		}
		primary.TotalGamesLinked += len(games)
	}
	out.PrimaryLinked = primary.TotalGamesLinked
	if !dryRun && len(out.MergedIDs) > 0 {
		primary.UpdatedAt = now
		if err := s.recurringRepo.Update(ctx, primary); err != nil {
			return MergeResult{}, fmt.Errorf("update primary recurring game: %w", err)
		}
		s.logger.InfoContext(ctx, "recurring games merged", "primary_id", primaryID, "merged", len(out.MergedIDs), "games_moved", out.GamesMoved)
	}
	return out, nil
}

// CleanupOrphans removes templates that have no linked games and are either
// merged, inactive or pointing at a venue missing from the catalog.
func (s *RecurringAdminService) CleanupOrphans(ctx context.Context, dryRun bool) (OrphanCleanupResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecurringAdminService.CleanupOrphans")
	defer span.End()

	items, err := s.recurringRepo.List(ctx)
	if err != nil {
		return OrphanCleanupResult{}, fmt.Errorf("list recurring games: %w", err)
	}
	out := OrphanCleanupResult{Orphans: []string{}, DryRun: dryRun}
	for _, item := range items {
		games, err := s.gameRepo.ListByRecurringGame(ctx, item.ID)
		if err != nil {
			return OrphanCleanupResult{}, fmt.Errorf("list games by recurring game: %w", err)
		}
		if len(games) > 0 {
			continue
		}
		orphan := item.MergedIntoID != "" || !item.IsActive
		if !orphan {
			_, found, err := s.venues.Get(ctx, item.VenueID)
			if err != nil {
				return OrphanCleanupResult{}, err
			}
			orphan = !found
		}
		if !orphan {
			continue
		}
		out.Orphans = append(out.Orphans, item.ID)
		if dryRun {
			continue
		}
		if err := s.instanceRepo.DeleteByRecurringGame(ctx, item.ID); err != nil {
			return OrphanCleanupResult{}, fmt.Errorf("delete recurring instances: %w", err)
		}
		if err := s.recurringRepo.Delete(ctx, item.ID); err != nil {
			return OrphanCleanupResult{}, fmt.Errorf("delete recurring game: %w", err)
		}
		out.Deleted++
	}
	return out, nil
}

// ReresolveVenues re-matches templates whose venue is missing from the
// catalog using their display name and name.
func (s *RecurringAdminService) ReresolveVenues(ctx context.Context, dryRun bool) ([]VenueReresolution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecurringAdminService.ReresolveVenues")
	defer span.End()

	s.venues.Invalidate()
	items, err := s.recurringRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring games: %w", err)
	}
	out := []VenueReresolution{}
	for _, item := range items {
		if _, found, err := s.venues.Get(ctx, item.VenueID); err != nil {
			return nil, err
		} else if found {
			continue
		}
		row := VenueReresolution{RecurringGameID: item.ID, Name: item.Name, OldVenueID: item.VenueID}
		for _, text := range []string{item.DisplayName, item.Name} {
			if strings.TrimSpace(text) == "" {
				continue
			}
			match, err := s.venues.MatchText(ctx, text)
			if err != nil {
				return nil, err
			}
			if match.Found() {
				row.NewVenueID = match.VenueID
				row.Confidence = match.Confidence
				break
			}
		}
		if row.NewVenueID != "" && !dryRun {
			item.VenueID = row.NewVenueID
			if v, ok, err := s.venues.Get(ctx, row.NewVenueID); err == nil && ok && v.EntityID != "" {
				item.EntityID = v.EntityID
			}
			item.UpdatedAt = s.now().UTC()
			if err := s.recurringRepo.Update(ctx, item); err != nil {
				return nil, fmt.Errorf("update recurring game venue: %w", err)
			}
			row.Updated = true
		}
		out = append(out, row)
	}
	return out, nil
}

// RecordMissedInstance marks an expected date as not run. The status defaults
// to NO_SHOW; a date already confirmed by a game is a conflict.
func (s *RecurringAdminService) RecordMissedInstance(ctx context.Context, input MissedInstanceInput) (recurring.Instance, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecurringAdminService.RecordMissedInstance")
	defer span.End()

	status := recurring.InstanceNoShow
	if strings.TrimSpace(input.Status) != "" {
		normalized, ok := recurring.NormalizeInstanceStatus(input.Status)
		if !ok || normalized == recurring.InstanceConfirmed {
			return recurring.Instance{}, fmt.Errorf("%w: status %q", ErrInvalidInput, input.Status)
		}
		status = normalized
	}
	date, err := aest.ParseDate(input.ExpectedDate)
	if err != nil {
		return recurring.Instance{}, fmt.Errorf("%w: expectedDate: %v", ErrInvalidInput, err)
	}
	template, ok, err := s.recurringRepo.GetByID(ctx, input.RecurringGameID)
	if err != nil {
		return recurring.Instance{}, fmt.Errorf("get recurring game: %w", err)
	}
	if !ok {
		return recurring.Instance{}, fmt.Errorf("%w: recurring game %s", ErrNotFound, input.RecurringGameID)
	}

	now := s.now().UTC()
	inst, found, err := s.instanceRepo.Get(ctx, template.ID, aest.Date(date))
	if err != nil {
		return recurring.Instance{}, fmt.Errorf("get recurring instance: %w", err)
	}
	if found && inst.GameID != "" {
		return recurring.Instance{}, fmt.Errorf("%w: %s already has game %s", ErrConflict, inst.ExpectedDate, inst.GameID)
	}
	if !found {
		instanceID, err := s.ids.NewID()
		if err != nil {
			return recurring.Instance{}, fmt.Errorf("generate instance id: %w", err)
		}
		inst = recurring.NewInstance(instanceID, template, date, status, now)
	}
	inst.Status = status
	inst.Notes = strings.TrimSpace(input.Notes)
	inst.NeedsReview = false
	inst.ReviewReason = ""
	inst.UpdatedAt = now
	if err := s.instanceRepo.Upsert(ctx, inst); err != nil {
		return recurring.Instance{}, fmt.Errorf("upsert recurring instance: %w", err)
	}
	return inst, nil
}

// DetectGaps compares each template's expected dates with the games linked to
// it. Templates are checked concurrently.
func (s *RecurringAdminService) DetectGaps(ctx context.Context, opts GapOptions) (GapReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecurringAdminService.DetectGaps")
	defer span.End()

	to := s.now()
	if opts.To != nil {
		to = *opts.To
	}
	from := aest.AddDays(to, -defaultGapWindowDays)
	if opts.From != nil {
		from = *opts.From
	}
	if from.After(to) {
		return GapReport{}, fmt.Errorf("%w: from is after to", ErrInvalidInput)
	}

	items, err := s.templates(ctx, opts.VenueID)
	if err != nil {
		return GapReport{}, err
	}

	p := pool.NewWithResults[TemplateGaps]().WithContext(ctx).WithMaxGoroutines(gapWorkers)
	for _, item := range items {
		if !item.Schedulable() || item.MergedIntoID != "" {
			continue
		}
		template := item
		p.Go(func(ctx context.Context) (TemplateGaps, error) {
			return s.templateGaps(ctx, template, from, to, opts)
		})
	}
	rows, err := p.Wait()
	if err != nil {
		return GapReport{}, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].RecurringGameID < rows[j].RecurringGameID })

	out := GapReport{From: aest.Date(from), To: aest.Date(to), Templates: rows}
	for _, row := range rows {
		out.TotalExpected += row.Expected
		out.TotalMissing += len(row.MissingDates)
	}
	return out, nil
}

func (s *RecurringAdminService) templateGaps(ctx context.Context, template recurring.RecurringGame, from, to time.Time, opts GapOptions) (TemplateGaps, error) {
	expected := recurring.ExpectedDates(template, from, to)
	row := TemplateGaps{RecurringGameID: template.ID, Name: template.Name, VenueID: template.VenueID, Expected: len(expected), MissingDates: []string{}}
	if len(expected) == 0 {
		return row, nil
	}

	games, err := s.gameRepo.ListByRecurringGame(ctx, template.ID)
	if err != nil {
		return row, fmt.Errorf("list games by recurring game: %w", err)
	}
	played := make(map[string]string, len(games))
	for _, g := range games {
		if start := g.EffectiveStart(); start != nil {
			played[aest.Date(*start)] = g.ID
		}
	}

	now := s.now().UTC()
	for _, date := range expected {
		gameID, ok := played[date]
		if ok {
			row.Observed++
			if opts.RecordObserved {
				if err := s.recordInstance(ctx, template, date, recurring.InstanceConfirmed, gameID, now); err != nil {
					return row, err
				}
			}
			continue
		}
		inst, found, err := s.instanceRepo.Get(ctx, template.ID, date)
		if err != nil {
			return row, fmt.Errorf("get recurring instance: %w", err)
		}
		if found && inst.Status != recurring.InstanceUnknown {
			continue
		}
		row.MissingDates = append(row.MissingDates, date)
		if opts.RecordMissing && !found {
			if err := s.recordInstance(ctx, template, date, recurring.InstanceUnknown, "", now); err != nil {
				return row, err
			}
			row.Recorded++
		}
	}
	return row, nil
}

func (s *RecurringAdminService) recordInstance(ctx context.Context, template recurring.RecurringGame, date, status, gameID string, now time.Time) error {
	inst, found, err := s.instanceRepo.Get(ctx, template.ID, date)
	if err != nil {
		return fmt.Errorf("get recurring instance: %w", err)
	}
	if found && inst.Status == status && inst.GameID == gameID {
		return nil
	}
	if !found {
		day, err := aest.ParseDate(date)
		if err != nil {
			return fmt.Errorf("parse expected date: %w", err)
		}
		instanceID, err := s.ids.NewID()
		if err != nil {
			return fmt.Errorf("generate instance id: %w", err)
		}
		inst = recurring.NewInstance(instanceID, template, day, status, now)
	}
	inst.Status = status
	inst.GameID = gameID
	inst.NeedsReview = status == recurring.InstanceUnknown
	if inst.NeedsReview {
		inst.ReviewReason = "no game found for expected date"
	} else {
		inst.ReviewReason = ""
	}
	inst.UpdatedAt = now
	if err := s.instanceRepo.Upsert(ctx, inst); err != nil {
		return fmt.Errorf("upsert recurring instance: %w", err)
	}
	return nil
}

// ComplianceReport summarises instance statuses per template and renders the
// rows as CSV.
func (s *RecurringAdminService) ComplianceReport(ctx context.Context, venueID string) (ComplianceReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecurringAdminService.ComplianceReport")
	defer span.End()

	items, err := s.templates(ctx, venueID)
	if err != nil {
		return ComplianceReport{}, err
	}
	rows := make([]recurring.Compliance, 0, len(items))
	for _, item := range items {
		if item.MergedIntoID != "" {
			continue
		}
		instances, err := s.instanceRepo.ListByRecurringGame(ctx, item.ID)
		if err != nil {
			return ComplianceReport{}, fmt.Errorf("list recurring instances: %w", err)
		}
		rows = append(rows, recurring.Summarise(item, instances))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ComplianceRate != rows[j].ComplianceRate {
			return rows[i].ComplianceRate < rows[j].ComplianceRate
		}
		return rows[i].RecurringGameID < rows[j].RecurringGameID
	})
	return ComplianceReport{Rows: rows, CSV: renderComplianceCSV(rows)}, nil
}

func renderComplianceCSV(rows []recurring.Compliance) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("recurring_game_id,name,venue_id,day_of_week,expected,confirmed,missed,needs_review,compliance_rate\n")
	for _, row := range rows {
		fields := []string{
			row.RecurringGameID,
			csvQuote(row.Name),
			row.VenueID,
			row.DayOfWeek,
			strconv.Itoa(row.Expected),
			strconv.Itoa(row.Confirmed),
			strconv.Itoa(row.Missed),
			strconv.Itoa(row.NeedsReview),
			strconv.FormatFloat(row.ComplianceRate, 'f', 2, 64),
		}
		_, _ = buf.WriteString(strings.Join(fields, ","))
		_ = buf.WriteByte('\n')
	}
	return buf.String()
}

func csvQuote(value string) string {
	if !strings.ContainsAny(value, ",\"\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
