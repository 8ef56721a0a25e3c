// Package evaluation composes job offer matching and the scoring endpoint
// into single and batch candidate evaluations.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/seeg/onehcm/internal/candidate"
	"github.com/seeg/onehcm/internal/logger"
	"github.com/seeg/onehcm/internal/matching"
	"github.com/seeg/onehcm/internal/scoringapi"
	"github.com/seeg/onehcm/internal/store"
)

// Matcher resolves and looks up cached job offers.
type Matcher interface {
	FindMatchingJobOffer(c *candidate.Data) (matching.Match, error)
	Offer(id string) (store.JobOffer, bool)
	Size() int
}

// Scorer calls the external scoring endpoint.
type Scorer interface {
	Evaluate(ctx context.Context, req scoringapi.Request, thresholds scoringapi.Thresholds) scoringapi.Result
}

// Outcome is the evaluation of one candidate. Result may be a failure; the
// outcome is still reported so callers can show the endpoint's message.
type Outcome struct {
	CandidateID string             `json:"candidate_id"`
	Match       matching.Match     `json:"match"`
	Request     scoringapi.Request `json:"request"`
	Result      scoringapi.Result  `json:"result"`
}

// BatchReport summarizes a batch run.
type BatchReport struct {
	Initial   int `json:"initial"`
	Failed    int `json:"failed"`
	Succeeded int `json:"succeeded"`
}

// Service evaluates candidates.
type Service struct {
	matcher    Matcher
	scorer     Scorer
	thresholds scoringapi.Thresholds
	logger     *zap.Logger
}

// New creates a Service. matcher may be nil when callers always supply a job offer id.
func New(matcher Matcher, scorer Scorer, thresholds scoringapi.Thresholds, l *zap.Logger) *Service {
	return &Service{
		matcher:    matcher,
		scorer:     scorer,
		thresholds: thresholds,
		logger:     logger.WithFields(l, zap.String("component", "evaluation")),
	}
}

// BuildRequest shapes c into a scoring request. When jobOfferID is empty the
// job offer is resolved through the matcher.
func (s *Service) BuildRequest(c *candidate.Data, jobOfferID string) (scoringapi.Request, matching.Match, error) {
	if err := c.Validate(); err != nil {
		return scoringapi.Request{}, matching.Match{}, err
	}

	match, err := s.resolve(c, strings.TrimSpace(jobOfferID))
	if err != nil {
		return scoringapi.Request{}, matching.Match{}, err
	}

	req := scoringapi.Request{
		ID:               c.ID,
		Nom:              c.Nom,
		Prenom:           c.Prenom,
		CV:               c.CV,
		LettreMotivation: c.LettreMotivation,
		MTP:              scoringapi.MTP{M: c.MTP.M, T: c.MTP.T, P: c.MTP.P},
		Post:             s.postTitle(c, match.JobOfferID),
	}

	return req, match, nil
}

func (s *Service) resolve(c *candidate.Data, jobOfferID string) (matching.Match, error) {
	if jobOfferID != "" {
		return matching.Match{
			JobOfferID: jobOfferID,
			MatchType:  matching.MatchProvided,
			Confidence: matching.ConfidenceProvided,
		}, nil
	}
	if s.matcher == nil {
		return matching.Match{}, matching.ErrNotInitialized
	}
	match, err := s.matcher.FindMatchingJobOffer(c)
	if err != nil {
		return matching.Match{}, fmt.Errorf("match job offer: %w", err)
	}
	return match, nil
}

// postTitle prefers the cached offer title, then the title claimed by the
// candidate, then the bare id.
func (s *Service) postTitle(c *candidate.Data, jobOfferID string) string {
	if s.matcher != nil {
		if offer, ok := s.matcher.Offer(jobOfferID); ok && strings.TrimSpace(offer.Title) != "" {
			return strings.TrimSpace(offer.Title)
		}
	}
	if title := strings.TrimSpace(c.Offre.Intitule); title != "" {
		return title
	}
	return jobOfferID
}

// EvaluateCandidate evaluates a single candidate. The returned error covers
// shaping and matching only; endpoint failures are reported in Outcome.Result.
func (s *Service) EvaluateCandidate(ctx context.Context, c *candidate.Data, jobOfferID string) (*Outcome, error) {
	req, match, err := s.BuildRequest(c, jobOfferID)
	if err != nil {
		return nil, err
	}

	fields := logger.RecordFields("", req.ID, match.JobOfferID)
	if match.NeedsReview() {
		s.logger.Info("low confidence job offer match",
			append(fields,
				zap.String("match_type", string(match.MatchType)),
				zap.Float64("confidence", match.Confidence),
			)...,
		)
	}

	result := s.scorer.Evaluate(ctx, req, s.thresholds)
	if !result.Success {
		s.logger.Warn("scoring endpoint failed",
			append(fields,
				zap.String("kind", string(result.Kind)),
				zap.Int("status", result.StatusCode),
				zap.String("error", result.Error),
			)...,
		)
	}

	return &Outcome{CandidateID: req.ID, Match: match, Request: req, Result: result}, nil
}

// EvaluateBatch evaluates candidates sequentially. A candidate that cannot be
// shaped or matched is logged and left out; the batch goes on. Matching
// before the matcher holds any offer fails the whole batch up front.
func (s *Service) EvaluateBatch(ctx context.Context, candidates []*candidate.Data, jobOfferID string) ([]Outcome, BatchReport, error) {
	report := BatchReport{Initial: len(candidates)}

	if strings.TrimSpace(jobOfferID) == "" && (s.matcher == nil || s.matcher.Size() == 0) {
		return nil, report, matching.ErrNotInitialized
	}

	outcomes := make([]Outcome, 0, len(candidates))
	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return outcomes, report, fmt.Errorf("evaluation batch interrupted: %w", err)
		}

		outcome, err := s.EvaluateCandidate(ctx, c, jobOfferID)
		if err != nil {
			report.Failed++
			id := ""
			if c != nil {
				id = c.ID
			}
			s.logger.Warn("candidate skipped",
				zap.Int("index", i),
				zap.String("candidate_id", id),
				zap.Bool("invalid_record", errors.Is(err, candidate.ErrInvalid)),
				zap.Error(err),
			)
			continue
		}

		if outcome.Result.Success {
			report.Succeeded++
		} else {
			report.Failed++
		}
		outcomes = append(outcomes, *outcome)
	}

	s.logger.Info("evaluation batch completed",
		zap.Int("initial", report.Initial),
		zap.Int("failed", report.Failed),
		zap.Int("succeeded", report.Succeeded),
	)

	return outcomes, report, nil
}
