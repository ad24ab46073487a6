package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/tournament-reconciler/internal/usecase"
)

func newRecurringCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Inspect recurring game templates",
	}
	cmd.AddCommand(newRecurringStatsCommand(ctx))
	cmd.AddCommand(newRecurringDuplicatesCommand(ctx))
	cmd.AddCommand(newRecurringGapsCommand(ctx))
	return cmd
}

func newRecurringStatsCommand(ctx *commandContext) *cobra.Command {
	var venueID string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise templates by state and day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := ctx.ensureServices(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := services.Recurring.Stats(cmd.Context(), venueID)
			if err != nil {
				return err
			}
			if ctx.json() {
				return writeJSON(cmd, stats)
			}

			printTable(cmd, "Templates", []string{"State", "Count"}, [][]string{
				{"total", strconv.Itoa(stats.Total)},
				{"active", strconv.Itoa(stats.Active)},
				{"paused", strconv.Itoa(stats.Paused)},
				{"inactive", strconv.Itoa(stats.Inactive)},
				{"merged", strconv.Itoa(stats.Merged)},
				{"with accumulators", strconv.Itoa(stats.WithAccumulators)},
				{"games linked", strconv.Itoa(stats.TotalGamesLinked)},
			}, []columnAlignment{alignLeft, alignRight})
			printTable(cmd, "By day", []string{"Day", "Count"}, countRows(stats.ByDayOfWeek), []columnAlignment{alignLeft, alignRight})
			return nil
		},
	}

	cmd.Flags().StringVar(&venueID, "venue", "", "Restrict to one venue id")
	return cmd
}

func newRecurringDuplicatesCommand(ctx *commandContext) *cobra.Command {
	var venueID string

	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "List template pairs that look like the same weekly game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := ctx.ensureServices(cmd.Context())
			if err != nil {
				return err
			}
			pairs, err := services.Recurring.FindDuplicates(cmd.Context(), venueID)
			if err != nil {
				return err
			}
			if ctx.json() {
				return writeJSON(cmd, pairs)
			}
			if len(pairs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No duplicate templates")
				return nil
			}

			rows := make([][]string, 0, len(pairs))
			for _, p := range pairs {
				rows = append(rows, []string{
					p.Primary.ID,
					p.Primary.Name,
					p.Duplicate.ID,
					p.Duplicate.Name,
					p.Primary.DayOfWeek,
					formatScore(p.Similarity),
				})
			}
			printTable(cmd, "Duplicates", []string{"Primary", "Name", "Duplicate", "Name", "Day", "Similarity"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight})
			return nil
		},
	}

	cmd.Flags().StringVar(&venueID, "venue", "", "Restrict to one venue id")
	return cmd
}

func newRecurringGapsCommand(ctx *commandContext) *cobra.Command {
	var venueID string

	cmd := &cobra.Command{
		Use:   "gaps",
		Short: "Show expected dates with no matching game (read only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := ctx.ensureServices(cmd.Context())
			if err != nil {
				return err
			}
			report, err := services.Recurring.DetectGaps(cmd.Context(), usecase.GapOptions{VenueID: venueID})
			if err != nil {
				return err
			}
			if ctx.json() {
				return writeJSON(cmd, report)
			}

			rows := make([][]string, 0, len(report.Templates))
			for _, tg := range report.Templates {
				rows = append(rows, []string{
					tg.RecurringGameID,
					tg.Name,
					strconv.Itoa(tg.Expected),
					strconv.Itoa(tg.Observed),
					orDash(strings.Join(tg.MissingDates, " ")),
				})
			}
			title := fmt.Sprintf("Gaps %s to %s (%d missing of %d)", report.From, report.To, report.TotalMissing, report.TotalExpected)
			printTable(cmd, title, []string{"Template", "Name", "Expected", "Observed", "Missing"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft})
			return nil
		},
	}

	cmd.Flags().StringVar(&venueID, "venue", "", "Restrict to one venue id")
	return cmd
}

func countRows(counts map[string]int) [][]string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, strconv.Itoa(counts[k])})
	}
	return rows
}
