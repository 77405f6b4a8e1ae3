package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"job-tailor/internal/source"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch postings from the configured source, score them and store them",
	Run: func(cmd *cobra.Command, _ []string) {
		scrape(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

func scrape(cmd *cobra.Command) {
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

	eng.logger.Info("fetching postings",
		zap.String("owner", eng.config.Source.Owner),
		zap.String("repo", eng.config.Source.Repo),
	)

	postings, err := source.NewGitHub(*eng.config.Source, eng.logger).Fetch(ctx)
	if err != nil {
		eng.logger.Fatal("fetching postings", zap.Error(err))
	}

	if postings.Len() == 0 {
		eng.logger.Info("exiting", zap.String("reason", "no postings found at source"))
		return
	}

	report, err := eng.pipeline.Ingest(ctx, prof, postings)
	if err != nil {
		eng.logger.Fatal("ingesting postings", zap.Error(err))
	}

	eng.logger.Info("scrape finished",
		zap.Int("fetched", postings.Len()),
		zap.Int("scored", report.Scored),
		zap.Int("already_processed", report.Skipped),
	)
}
