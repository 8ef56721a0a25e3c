package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seeg/onehcm/internal/ai"
	"github.com/seeg/onehcm/internal/store"
	"github.com/seeg/onehcm/internal/synthesis"
)

var synthesisCmd = &cobra.Command{
	Use:   "synthesis <application-id>",
	Short: "Print the evaluation synthesis of an application",
	Args:  cobra.ExactArgs(1),
	RunE:  runSynthesis,
}

func init() {
	rootCmd.AddCommand(synthesisCmd)

	synthesisCmd.Flags().BoolP("watch", "w", false, "reload the synthesis periodically until interrupted")
	synthesisCmd.Flags().Bool("narrative", false, "ask the AI provider for a narrative summary of the synthesis")
}

func runSynthesis(cmd *cobra.Command, args []string) error {
	applicationID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid application id %q: %w", args[0], err)
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

	aggregator := synthesis.NewAggregator(db, rt.logger)
	out := cmd.OutOrStdout()

	watch, _ := cmd.Flags().GetBool("watch")
	if watch {
		poller := synthesis.NewPoller(aggregator, rt.config.Synthesis.PollInterval, rt.logger)
		rt.logger.Info("watching synthesis",
			zap.String("application_id", applicationID.String()),
			zap.Duration("interval", poller.Interval()),
		)
		err := poller.Run(ctx, applicationID, func(data *synthesis.Data, err error) {
			if err != nil {
				return
			}
			_ = printJSON(out, data)
		})
		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}

	data, err := aggregator.Load(ctx, applicationID)
	if err != nil {
		return err
	}

	narrate, _ := cmd.Flags().GetBool("narrative")
	if !narrate {
		return printJSON(out, data)
	}

	narrative, err := narrateSynthesis(ctx, rt, db, applicationID, data)
	if err != nil {
		return err
	}

	return printJSON(out, struct {
		Synthesis *synthesis.Data `json:"synthesis"`
		Narrative *ai.Narrative   `json:"narrative"`
	}{data, narrative})
}

func narrateSynthesis(ctx context.Context, rt *runtime, db *store.DB, applicationID uuid.UUID, data *synthesis.Data) (*ai.Narrative, error) {
	narrator, err := rt.newNarrator(ctx)
	if err != nil {
		return nil, fmt.Errorf("building ai narrator: %w", err)
	}
	if narrator == nil {
		return nil, fmt.Errorf("ai is disabled (set ai.enabled)")
	}

	application, err := db.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if application == nil {
		return nil, fmt.Errorf("application %s not found", applicationID)
	}

	input := ai.NarrativeInput{Synthesis: data}

	offer, err := db.GetJobOffer(ctx, application.JobOfferID)
	if err != nil {
		return nil, err
	}
	if offer != nil {
		input.JobTitle = offer.Title
	}

	summaries, err := db.ListApplicationsByJobOffer(ctx, application.JobOfferID)
	if err != nil {
		return nil, err
	}
	if s := findSummary(summaries, applicationID); s != nil {
		input.CandidateName = candidateName(*s)
	}

	return narrator.Summarize(ctx, input)
}

func findSummary(summaries []store.ApplicationSummary, id uuid.UUID) *store.ApplicationSummary {
	for i := range summaries {
		if summaries[i].ID == id {
			return &summaries[i]
		}
	}
	return nil
}

func candidateName(s store.ApplicationSummary) string {
	name := s.FirstName
	if s.LastName != "" {
		if name != "" {
			name += " "
		}
		name += s.LastName
	}
	return name
}
