package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"job-tailor/internal/posting"
	"job-tailor/internal/profile"
	"job-tailor/internal/render"
	"job-tailor/internal/scoring"
)

const (
	PromptApply      = "Apply: render this resume"
	PromptSkip       = "Skip this posting"
	PromptBack       = "back"
	PromptExit       = "Exit"
	PromptDumpToFile = "Dump postings to file"
)

var errExit = errors.New("exit requested")

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Pick a posting by fit tier and render a tailored resume for it",
	Run: func(cmd *cobra.Command, _ []string) {
		apply(cmd)
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation after the resume preview")
}

func apply(cmd *cobra.Command) {
	eng, err := newEngine()
	if err != nil {
		fatal(err)
	}
	defer eng.Close()

	prof, err := eng.loadProfile()
	if err != nil {
		eng.logger.Fatal("loading profile", zap.Error(err))
	}

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")

	for {
		postings, err := eng.pipeline.Results(posting.StateScored)
		if err != nil {
			eng.logger.Fatal("listing postings", zap.Error(err))
		}

		if postings.Len() == 0 {
			eng.logger.Info("exiting", zap.String("reason", "no scored postings, run scrape or score first"))
			return
		}

		if err := selectAndApply(eng, prof, postings, autoApprove); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			eng.logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// selectAndApply shows scored postings grouped by tier and runs the
// tailoring flow for the chosen one.
func selectAndApply(eng *engine, prof *profile.Profile, postings *posting.Postings, autoApprove bool) error {
	items := make([]string, 0, postings.Len()+2)
	byLabel := make(map[string]string, postings.Len())

	groups := postings.GroupByTier()
	for _, tier := range []scoring.Tier{scoring.TierHigh, scoring.TierMedium, scoring.TierLow} {
		group, ok := groups[tier.String()]
		if !ok {
			continue
		}
		for _, p := range group.Items {
			label := fmt.Sprintf("[%s] %s at %s (%.2f) %s", p.FitTier, p.Title, p.Company, p.FitScore, p.Location)
			items = append(items, label)
			byLabel[label] = p.ID
		}
	}

	prompt := promptui.Select{
		Label: "Choose a posting and press ENTER",
		Items: append(items, PromptDumpToFile, PromptExit),
		Size:  15,
	}

	_, selected, err := prompt.Run()
	if err != nil {
		return err
	}

	switch selected {
	case PromptExit:
		eng.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptDumpToFile:
		filename, err := postings.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump postings to file: %w", err)
		}
		eng.logger.Info("dumping postings to file", zap.String("filename", filename))
		return nil
	}

	id, ok := byLabel[selected]
	if !ok {
		return fmt.Errorf("there is no such posting: %s", selected)
	}

	return tailorAndRender(eng, prof, id, autoApprove)
}

func tailorAndRender(eng *engine, prof *profile.Profile, postingID string, autoApprove bool) error {
	resume, post, err := eng.pipeline.Tailor(prof, postingID)
	if err != nil {
		return fmt.Errorf("tailoring resume: %w", err)
	}

	if !autoApprove {
		fmt.Println("\n--- Tailored resume preview ---")
		fmt.Println(render.Document(resume))
		fmt.Println(strings.Repeat("-", 31))

		confirm := promptui.Select{
			Label: "Proceed?",
			Items: []string{PromptApply, PromptSkip, PromptBack},
		}
		_, action, err := confirm.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptBack:
			return nil
		case PromptSkip:
			if err := eng.pipeline.Skip(post.ID); err != nil {
				return fmt.Errorf("skipping posting: %w", err)
			}
			eng.logger.Info("posting skipped", zap.String("posting_id", post.ID))
			return nil
		}
	}

	path, err := eng.pipeline.Apply(resume, post)
	if err != nil {
		// The posting stays scored so the attempt can be repeated.
		eng.logger.Warn("rendering failed", zap.Error(err))
		return nil
	}

	eng.logger.Info("successfully applied to posting",
		zap.String("posting_id", post.ID),
		zap.String("company", post.Company),
		zap.String("resume", path),
	)
	return nil
}
