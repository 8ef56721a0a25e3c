package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seeg/onehcm/internal/candidate"
	"github.com/seeg/onehcm/internal/evaluation"
	"github.com/seeg/onehcm/internal/matching"
)

type healthResponse struct {
	Status     string     `json:"status"`
	JobOffers  int        `json:"job_offers"`
	CacheStale bool       `json:"cache_stale"`
	CachedAt   *time.Time `json:"cached_at,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok", CacheStale: true}
	if m := s.deps.Matcher; m != nil {
		resp.JobOffers = m.Size()
		resp.CacheStale = m.IsStale()
		if cachedAt := m.CachedAt(); !cachedAt.IsZero() {
			resp.CachedAt = &cachedAt
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleSynthesis(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, &ErrValidation{Field: "id", Message: "invalid application id"})
		return
	}

	if s.deps.Applications != nil {
		app, err := s.deps.Applications.GetApplication(r.Context(), id)
		if err != nil {
			s.errorResponse(w, err)
			return
		}
		if app == nil {
			s.errorResponse(w, &ErrNotFound{Resource: "application", ID: id.String()})
			return
		}
	}

	stop := s.deps.Recorder.Track("synthesis.load")
	data, err := s.deps.Synthesis.Load(r.Context(), id)
	stop()
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, data)
}

type matchResponse struct {
	matching.Match
	NeedsReview bool   `json:"needs_review"`
	JobTitle    string `json:"job_title,omitempty"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if s.deps.Matcher == nil {
		s.errorResponse(w, matching.ErrNotInitialized)
		return
	}

	var raw map[string]any
	if err := s.decodeBody(w, r, &raw); err != nil {
		s.errorResponse(w, err)
		return
	}

	data, err := candidate.Decode(raw)
	if err != nil {
		s.errorResponse(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	match, err := s.deps.Matcher.FindMatchingJobOffer(data)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	resp := matchResponse{Match: match, NeedsReview: match.NeedsReview()}
	if offer, ok := s.deps.Matcher.Offer(match.JobOfferID); ok {
		resp.JobTitle = offer.Title
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

type evaluateRequest struct {
	Candidates []map[string]any `json:"candidates" validate:"required,min=1,max=500"`
	JobOfferID string           `json:"job_offer_id" validate:"omitempty,max=128"`
}

type evaluateResponse struct {
	Outcomes []evaluation.Outcome   `json:"outcomes"`
	Report   evaluation.BatchReport `json:"report"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Evaluator == nil {
		s.errorResponse(w, &ErrUnavailable{Feature: "scoring endpoint"})
		return
	}

	var req evaluateRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, validationError(err))
		return
	}

	// Records that cannot be decoded stay nil so the batch counts and logs them.
	candidates := make([]*candidate.Data, len(req.Candidates))
	for i, raw := range req.Candidates {
		data, err := candidate.Decode(raw)
		if err != nil {
			s.logger.Warn("candidate record not decodable", zap.Int("index", i), zap.Error(err))
			continue
		}
		candidates[i] = data
	}

	stop := s.deps.Recorder.Track("evaluation.batch")
	outcomes, report, err := s.deps.Evaluator.EvaluateBatch(r.Context(), candidates, req.JobOfferID)
	stop()
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, evaluateResponse{Outcomes: outcomes, Report: report})
}

func (s *Server) handleRefreshJobOffers(w http.ResponseWriter, r *http.Request) {
	if s.deps.Matcher == nil || s.deps.Offers == nil {
		s.errorResponse(w, matching.ErrNotInitialized)
		return
	}

	if err := s.deps.Matcher.Refresh(r.Context(), s.deps.Offers); err != nil {
		s.errorResponse(w, err)
		return
	}

	cachedAt := s.deps.Matcher.CachedAt()
	s.jsonResponse(w, http.StatusOK, healthResponse{
		Status:     "refreshed",
		JobOffers:  s.deps.Matcher.Size(),
		CacheStale: s.deps.Matcher.IsStale(),
		CachedAt:   &cachedAt,
	})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.deps.Recorder.Snapshot())
}
