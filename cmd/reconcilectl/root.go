package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var (
		fixtureFlag string
		jsonFlag    bool
		verboseFlag bool
	)

	ctx := newCommandContext(&fixtureFlag, &verboseFlag)

	rootCmd := &cobra.Command{
		Use:           "reconcilectl",
		Short:         "Offline enrichment and social post previews",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&fixtureFlag, "fixture", "f", "", "JSON fixture with games and posts; uses STORE_BACKEND when empty")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print raw JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Write debug logs to stderr")
	ctx.jsonOutput = &jsonFlag

	rootCmd.AddCommand(newEnrichCommand(ctx))
	rootCmd.AddCommand(newExtractCommand(ctx))
	rootCmd.AddCommand(newMatchCommand(ctx))
	rootCmd.AddCommand(newRecurringCommand(ctx))

	return rootCmd
}
