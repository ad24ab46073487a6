package main

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/tournament-reconciler/internal/usecase"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "enrich <input.json|->",
		Short: "Run the enrichment pipeline over one game without saving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			var input usecase.EnrichInput
			if err := sonic.Unmarshal(raw, &input); err != nil {
				return fmt.Errorf("decode enrich input: %w", err)
			}
			opts := usecase.DefaultEnrichmentOptions()
			if input.Options != nil {
				opts = *input.Options
			}
			opts.SaveToDatabase = save
			input.Options = &opts

			services, err := ctx.ensureServices(cmd.Context())
			if err != nil {
				return err
			}
			result := services.Enrichment.Enrich(cmd.Context(), input)
			if ctx.json() {
				return writeJSON(cmd, result)
			}
			renderEnrichResult(cmd, result)
			if !result.Success {
				return fmt.Errorf("enrichment failed with %d error(s)", len(result.Validation.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Forward the enriched game to the save collaborator")
	return cmd
}

func renderEnrichResult(cmd *cobra.Command, result usecase.EnrichResult) {
	meta := result.EnrichmentMetadata
	rows := make([][]string, 0, 5)
	if v := meta.Venue; v != nil {
		rows = append(rows, []string{"venue", v.Status, formatScore(v.Confidence), orDash(firstNonEmpty(v.VenueName, v.SuggestedVenueName))})
	}
	if s := meta.Series; s != nil {
		rows = append(rows, []string{"series", s.Status, formatScore(s.Confidence), orDash(firstNonEmpty(s.SeriesName, s.TitleName))})
	}
	if s := meta.Satellite; s != nil {
		rows = append(rows, []string{"satellite", s.Status, formatScore(s.TargetScore), orDash(firstNonEmpty(s.TargetSeriesName, s.SuggestedTarget))})
	}
	if r := meta.Recurring; r != nil {
		rows = append(rows, []string{"recurring", r.Status, formatScore(r.Confidence), orDash(r.Name)})
	}
	printTable(cmd, "Resolution", []string{"Stage", "Status", "Confidence", "Match"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})

	if f := meta.Financials; f != nil {
		printTable(cmd, "Financials", []string{"Metric", "Value"}, [][]string{
			{"entries", fmt.Sprintf("%d", f.Entries)},
			{"buy-ins collected", formatMoney(&f.TotalBuyInsCollected)},
			{"rake revenue", formatMoney(&f.RakeRevenue)},
			{"prizepool calculated", formatMoney(&f.PrizepoolCalculated)},
			{"overlay", formatMoney(&f.GuaranteeOverlayCost)},
			{"profit", formatMoney(&f.GameProfit)},
			{"underwater", yesNo(f.IsUnderwater)},
		}, []columnAlignment{alignLeft, alignRight})
	}

	issues := make([][]string, 0, len(result.Validation.Errors)+len(result.Validation.Warnings))
	for _, e := range result.Validation.Errors {
		issues = append(issues, []string{"error", e.Field, e.Code, e.Message})
	}
	for _, w := range result.Validation.Warnings {
		issues = append(issues, []string{"warning", w.Field, w.Code, w.Message})
	}
	if len(issues) > 0 {
		printTable(cmd, "Issues", []string{"Level", "Field", "Code", "Message"}, issues, nil)
	}
	if len(meta.FieldsCompleted) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "fields completed: %s\n", strings.Join(meta.FieldsCompleted, ", "))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
