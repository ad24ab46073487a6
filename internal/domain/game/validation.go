package game

import (
	"strings"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/textutil"
)

// ValidationResult is the outcome of ValidateGameData. Corrected is the
// trimmed and normalized copy later stages continue from.
type ValidationResult struct {
	IsValid   bool    `json:"isValid"`
	Errors    []Issue `json:"errors"`
	Warnings  []Issue `json:"warnings"`
	Corrected Game    `json:"-"`
}

// ValidateGameData checks required fields and normalizes enums. entityID
// fills the record's entity when the record carries none.
func ValidateGameData(g Game, entityID string) ValidationResult {
	diag := NewDiagnostics()
	out := g.Clone()

	out.Name = textutil.CollapseSpaces(out.Name)
	if out.Name == "" {
		diag.Error("name", CodeRequiredField, "name is required", nil)
	}

	if strings.TrimSpace(out.EntityID) == "" {
		out.EntityID = strings.TrimSpace(entityID)
	}
	if out.EntityID == "" {
		diag.Error("entityId", CodeRequiredField, "entityId is required", nil)
	}

	if out.GameStartDateTime == nil || out.GameStartDateTime.IsZero() {
		diag.Error("gameStartDateTime", CodeRequiredField, "gameStartDateTime is required", nil)
	} else {
		start := out.GameStartDateTime.UTC()
		out.GameStartDateTime = &start
	}

	if gameType, ok := NormalizeGameType(out.GameType); ok {
		out.GameType = gameType
	} else {
		diag.Warn("gameType", CodeInvalidValue, "unrecognized gameType, defaulting to TOURNAMENT", map[string]any{"value": g.GameType})
		out.GameType = TypeTournament
	}
	out.GameStatus = NormalizeGameStatus(out.GameStatus)
	out.GameVariant = strings.ToUpper(strings.TrimSpace(out.GameVariant))
	out.TournamentType = strings.ToUpper(strings.TrimSpace(out.TournamentType))
	out.EntryStructure = strings.ToUpper(strings.TrimSpace(out.EntryStructure))

	for field, value := range map[string]**float64{
		"buyIn":           &out.BuyIn,
		"rake":            &out.Rake,
		"venueFee":        &out.VenueFee,
		"guaranteeAmount": &out.GuaranteeAmount,
		"prizepoolPaid":   &out.PrizepoolPaid,
	} {
		if *value == nil {
			continue
		}
		if !textutil.IsFinite(**value) {
			diag.Warn(field, CodeInvalidValue, "non-finite value dropped", nil)
			*value = nil
			continue
		}
		if **value < 0 {
			diag.Error(field, CodeInvalidValue, field+" must not be negative", map[string]any{"value": **value})
		}
	}

	for field, value := range map[string]*int{
		"totalInitialEntries": out.TotalInitialEntries,
		"totalRebuys":         out.TotalRebuys,
		"totalAddons":         out.TotalAddons,
		"totalEntries":        out.TotalEntries,
	} {
		if value != nil && *value < 0 {
			diag.Error(field, CodeInvalidValue, field+" must not be negative", map[string]any{"value": *value})
		}
	}

	if out.GameEndDateTime != nil && out.GameStartDateTime != nil && out.GameEndDateTime.Before(*out.GameStartDateTime) {
		diag.Warn("gameEndDateTime", CodeInvalidValue, "gameEndDateTime is before gameStartDateTime", nil)
	}

	return ValidationResult{
		IsValid:   !diag.HasErrors(),
		Errors:    diag.Errors,
		Warnings:  diag.Warnings,
		Corrected: out,
	}
}
