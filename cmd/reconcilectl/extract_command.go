package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/tournament-reconciler/internal/usecase"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var (
		file     string
		postedAt string
		postType string
	)

	cmd := &cobra.Command{
		Use:   "extract [content]",
		Short: "Classify a social post and show what the extractor pulls from it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := contentArg(cmd, args, file)
			if err != nil {
				return err
			}
			posted, err := parsePostedAt(postedAt)
			if err != nil {
				return err
			}

			services, err := ctx.ensureServices(cmd.Context())
			if err != nil {
				return err
			}
			preview, err := services.Social.PreviewContentExtraction(cmd.Context(), usecase.PreviewExtractionInput{
				Content:  content,
				PostedAt: posted,
				PostType: postType,
			})
			if err != nil {
				return err
			}
			if ctx.json() {
				return writeJSON(cmd, preview)
			}
			renderPreview(cmd, preview)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Read post content from a file (\"-\" for stdin)")
	cmd.Flags().StringVar(&postedAt, "posted-at", "", "Post timestamp (RFC3339); defaults to now")
	cmd.Flags().StringVar(&postType, "post-type", "", "Post type, e.g. POST or PHOTO")
	return cmd
}

func contentArg(cmd *cobra.Command, args []string, file string) (string, error) {
	if strings.TrimSpace(file) != "" {
		raw, err := readInput(cmd.InOrStdin(), file)
		if err != nil {
			return "", fmt.Errorf("read content: %w", err)
		}
		return string(raw), nil
	}
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("content argument or --file is required")
	}
	return args[0], nil
}

func parsePostedAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --posted-at %q: %w", raw, err)
	}
	return ts, nil
}

func renderPreview(cmd *cobra.Command, preview usecase.PreviewResult) {
	cls := preview.Classification
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "content type: %s (confidence %s, result %s, promo %s)\n",
		cls.ContentType, formatScore(cls.Confidence), formatScore(cls.ResultScore), formatScore(cls.PromoScore))
	if preview.SkipReason != "" {
		fmt.Fprintf(out, "skipped: %s\n", preview.SkipReason)
	}
	if patterns := cls.MatchedPatterns(); len(patterns) > 0 {
		fmt.Fprintf(out, "patterns: %s\n", strings.Join(patterns, ", "))
	}

	data := preview.Extraction
	rows := [][]string{
		{"name", orDash(data.ExtractedName)},
		{"recurring name", orDash(data.ExtractedRecurringGameName)},
		{"recurring day", orDash(data.ExtractedRecurringDayOfWeek)},
		{"tournament url", orDash(data.ExtractedTournamentURL)},
		{"buy-in", formatMoney(data.ExtractedBuyIn)},
		{"rake", formatMoney(data.ExtractedRake)},
		{"guarantee", formatMoney(data.ExtractedGuarantee)},
		{"prizepool", formatMoney(data.ExtractedPrizepool)},
		{"entries", formatCount(data.ExtractedTotalEntries)},
	}
	if data.ExtractedTournamentID != nil {
		rows = append(rows, []string{"tournament id", strconv.FormatInt(*data.ExtractedTournamentID, 10)})
	}
	printTable(cmd, "Extraction", []string{"Field", "Value"}, rows, nil)

	if preview.Match != nil {
		renderCandidates(cmd, *preview.Match)
	}
}
