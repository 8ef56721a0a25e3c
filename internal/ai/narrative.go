// Package ai defines the optional recruiter narrative produced by an LLM
// provider on top of a computed synthesis.
package ai

import (
	"context"

	"github.com/seeg/onehcm/internal/synthesis"
)

// NarrativeInput is what the provider sees about one application.
type NarrativeInput struct {
	CandidateName string
	JobTitle      string
	Synthesis     *synthesis.Data
}

// Narrative is a short recruiter-facing reading of a synthesis. It never
// changes the computed scores or verdict.
type Narrative struct {
	Summary        string   `json:"summary"`
	Strengths      []string `json:"strengths"`
	Concerns       []string `json:"concerns"`
	Recommendation string   `json:"recommendation"`
	Raw            string   `json:"-"`
}

type Narrator interface {
	Summarize(ctx context.Context, input NarrativeInput) (*Narrative, error)
}
