package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score stored postings against the configured profile",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().BoolP("force", "f", false, "re-score postings that were already scored")
}

func score(cmd *cobra.Command) {
	ctx := context.Background()

	eng, err := newEngine()
	if err != nil {
		fatal(err)
	}
	defer eng.Close()

	prof, err := eng.loadProfile()
	if err != nil {
		eng.logger.Fatal("loading profile", zap.Error(err))
	}

	force, _ := cmd.Flags().GetBool("force")

	report, err := eng.pipeline.ScoreAll(ctx, prof, force)
	if err != nil {
		eng.logger.Fatal("scoring postings", zap.Error(err))
	}

	if report.Total == 0 {
		eng.logger.Info("exiting", zap.String("reason", "no postings in the store, run scrape first"))
	}
}
