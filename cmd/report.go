package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seeg/onehcm/internal/report"
	"github.com/seeg/onehcm/internal/synthesis"
)

// reportConcurrency bounds the syntheses loaded in parallel.
const reportConcurrency = 4

var reportCmd = &cobra.Command{
	Use:   "report <job-offer-id>",
	Short: "Write an xlsx report ranking the applications of a job offer",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringP("output", "o", "rapport.xlsx", "path of the generated workbook")
}

func runReport(cmd *cobra.Command, args []string) error {
	jobOfferID := args[0]
	output, _ := cmd.Flags().GetString("output")

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx := cmd.Context()

	db, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	offer, err := db.GetJobOffer(ctx, jobOfferID)
	if err != nil {
		return err
	}
	if offer == nil {
		return fmt.Errorf("job offer %s not found", jobOfferID)
	}

	summaries, err := db.ListApplicationsByJobOffer(ctx, jobOfferID)
	if err != nil {
		return err
	}

	aggregator := synthesis.NewAggregator(db, rt.logger)
	rows := make([]report.Row, len(summaries))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(reportConcurrency)
	for i, s := range summaries {
		rows[i] = report.Row{
			Name:   candidateName(s),
			Email:  s.Email,
			Status: string(s.Status),
		}
		g.Go(func() error {
			data, err := aggregator.Load(gCtx, s.ID)
			if err != nil {
				return fmt.Errorf("synthesis of application %s: %w", s.ID, err)
			}
			rows[i].Synthesis = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	path, err := report.WriteWorkbook(output, offer.Title, rows)
	if err != nil {
		return err
	}

	rt.logger.Info("report written",
		zap.String("path", path),
		zap.String("job_offer_id", jobOfferID),
		zap.Int("applications", len(rows)),
	)
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
