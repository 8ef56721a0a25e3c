package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seeg/onehcm/internal/candidate"
	"github.com/seeg/onehcm/internal/matching"
)

type matchLine struct {
	CandidateID string          `json:"candidate_id"`
	Name        string          `json:"name"`
	Match       *matching.Match `json:"match,omitempty"`
	Error       string          `json:"error,omitempty"`
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Find the job offer each candidate of a file applied to",
	RunE:  runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("file", "f", "", "JSON file with candidate records")
	_ = matchCmd.MarkFlagRequired("file")
}

func runMatch(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")

	candidates, err := candidate.LoadFile(path)
	if err != nil {
		return err
	}

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

	matcher, err := rt.newMatcher(ctx, db)
	if err != nil {
		return err
	}

	lines := make([]matchLine, 0, len(candidates))
	review := 0
	for _, c := range candidates {
		line := matchLine{CandidateID: c.ID, Name: c.FullName()}
		m, err := matcher.FindMatchingJobOffer(c)
		if err != nil {
			line.Error = err.Error()
		} else {
			line.Match = &m
			if m.NeedsReview() {
				review++
			}
		}
		lines = append(lines, line)
	}

	rt.logger.Info("matching completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("offers", matcher.Size()),
		zap.Int("needs_review", review),
	)

	if err := printJSON(cmd.OutOrStdout(), lines); err != nil {
		return fmt.Errorf("printing matches: %w", err)
	}
	return nil
}
