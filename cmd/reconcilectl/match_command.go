package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/tournament-reconciler/internal/platform/aest"
	"github.com/riskibarqy/tournament-reconciler/internal/usecase"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var (
		content   string
		postedAt  string
		venueID   string
		entityID  string
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "match [post-id]",
		Short: "Preview the games a stored post, or ad hoc content, would link to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := usecase.PreviewMatchInput{
				Content:        content,
				VenueID:        venueID,
				EntityID:       entityID,
				MatchThreshold: threshold,
			}
			if len(args) == 1 {
				input.SocialPostID = strings.TrimSpace(args[0])
			}
			if input.SocialPostID == "" && strings.TrimSpace(input.Content) == "" {
				return fmt.Errorf("post id argument or --content is required")
			}
			posted, err := parsePostedAt(postedAt)
			if err != nil {
				return err
			}
			input.PostedAt = posted

			services, err := ctx.ensureServices(cmd.Context())
			if err != nil {
				return err
			}
			preview, err := services.Social.PreviewMatch(cmd.Context(), input)
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

	cmd.Flags().StringVar(&content, "content", "", "Ad hoc post content to match")
	cmd.Flags().StringVar(&postedAt, "posted-at", "", "Post timestamp (RFC3339) for ad hoc content")
	cmd.Flags().StringVar(&venueID, "venue", "", "Restrict matching to a venue id")
	cmd.Flags().StringVar(&entityID, "entity", "", "Entity id used for venue resolution")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Override the auto-link threshold")
	return cmd
}

func renderCandidates(cmd *cobra.Command, match usecase.MatchResult) {
	mc := match.MatchContext
	fmt.Fprintf(cmd.OutOrStdout(), "match path: %s, scanned %d game(s) between %s and %s\n",
		mc.Path, mc.GamesScanned, mc.SearchStart.Format("2006-01-02"), mc.SearchEnd.Format("2006-01-02"))

	if len(match.Candidates) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No candidate games")
		return
	}
	rows := make([][]string, 0, len(match.Candidates))
	for _, c := range match.Candidates {
		start := "-"
		if c.GameStartDateTime != nil {
			start = aest.ToAEST(*c.GameStartDateTime).Format("Mon 02 Jan 15:04")
		}
		rows = append(rows, []string{
			c.GameID,
			c.GameName,
			start,
			formatScore(c.MatchConfidence),
			yesNo(c.WouldAutoLink),
			c.MatchReason,
		})
	}
	printTable(cmd, "Candidates", []string{"Game", "Name", "Start (AEST)", "Confidence", "Auto-link", "Reason"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft})
}
