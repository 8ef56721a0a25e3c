package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seeg/onehcm/internal/candidate"
	"github.com/seeg/onehcm/internal/evaluation"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Send the candidates of a file to the scoring endpoint",
	RunE:  runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringP("file", "f", "", "JSON file with candidate records")
	evaluateCmd.Flags().String("job-offer-id", "", "evaluate every candidate against this job offer instead of matching")
	evaluateCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation before sending")
	_ = evaluateCmd.MarkFlagRequired("file")
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	jobOfferID, _ := cmd.Flags().GetString("job-offer-id")

	candidates, err := candidate.LoadFile(path)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return errors.New("no candidates in file")
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	matcher, err := rt.newMatcher(ctx, db)
	if err != nil {
		return err
	}

	scorer, err := rt.newScoringClient()
	if err != nil {
		return err
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		prompt := promptui.Select{
			Label: fmt.Sprintf("Send %d candidates to %s?", len(candidates), rt.config.Scoring.URL),
			Items: []string{PromptYes, PromptNo},
		}
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}
		if action != PromptYes {
			rt.logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return nil
		}
	}

	service := evaluation.New(matcher, scorer, rt.thresholds(), rt.logger)

	outcomes, report, err := service.EvaluateBatch(ctx, candidates, jobOfferID)
	if err != nil {
		return err
	}

	if err := printJSON(cmd.OutOrStdout(), struct {
		Report   evaluation.BatchReport `json:"report"`
		Outcomes []evaluation.Outcome   `json:"outcomes"`
	}{report, outcomes}); err != nil {
		return err
	}

	if report.Succeeded == 0 {
		return fmt.Errorf("all %d evaluations failed", report.Initial)
	}
	return nil
}
