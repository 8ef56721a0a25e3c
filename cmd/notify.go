package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seeg/onehcm/internal/notify"
	"github.com/seeg/onehcm/internal/synthesis"
)

const (
	templateReceived = "received"
	templateStatus   = "status"
)

var notifyCmd = &cobra.Command{
	Use:   "notify <application-id>",
	Short: "Email the candidate of an application",
	Long: `Email the candidate of an application.

The "received" template acknowledges the application. The "status" template
announces the verdict of the current evaluation synthesis.`,
	Args: cobra.ExactArgs(1),
	RunE: runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)

	notifyCmd.Flags().StringP("template", "t", templateReceived, "message template: received or status")
}

func runNotify(cmd *cobra.Command, args []string) error {
	applicationID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid application id %q: %w", args[0], err)
	}

	tmpl, _ := cmd.Flags().GetString("template")
	if tmpl != templateReceived && tmpl != templateStatus {
		return fmt.Errorf("unknown template %q", tmpl)
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	mailer, err := rt.newMailer()
	if err != nil {
		return fmt.Errorf("configuring email: %w", err)
	}

	ctx := cmd.Context()

	db, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	application, err := db.GetApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	if application == nil {
		return fmt.Errorf("application %s not found", applicationID)
	}

	summaries, err := db.ListApplicationsByJobOffer(ctx, application.JobOfferID)
	if err != nil {
		return err
	}
	summary := findSummary(summaries, applicationID)
	if summary == nil || summary.Email == "" {
		return fmt.Errorf("no email address for the candidate of application %s", applicationID)
	}

	jobTitle := application.JobOfferID
	offer, err := db.GetJobOffer(ctx, application.JobOfferID)
	if err != nil {
		return err
	}
	if offer != nil && offer.Title != "" {
		jobTitle = offer.Title
	}

	to := notify.Recipient{Email: summary.Email, FirstName: summary.FirstName, LastName: summary.LastName}

	var msg notify.Message
	switch tmpl {
	case templateReceived:
		msg, err = notify.ApplicationReceived(to, jobTitle)
	case templateStatus:
		var data *synthesis.Data
		data, err = synthesis.NewAggregator(db, rt.logger).Load(ctx, applicationID)
		if err != nil {
			return err
		}
		msg, err = notify.StatusChanged(to, jobTitle, data.FinalStatus)
	}
	if err != nil {
		return err
	}

	result := mailer.Send(ctx, msg)
	if err := printJSON(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("%s: %s", result.Error, result.Details)
	}

	rt.logger.Info("candidate notified",
		zap.String("application_id", applicationID.String()),
		zap.String("template", tmpl),
		zap.String("provider", result.Provider),
	)
	return nil
}
