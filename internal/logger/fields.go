package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured log keys shared across packages.
const (
	FieldProvider    = "ai_provider"
	FieldModel       = "ai_model"
	FieldApplication = "application_id"
	FieldCandidate   = "candidate_id"
	FieldJobOffer    = "job_offer_id"
)

// nonEmpty turns key/value pairs into string fields, dropping pairs whose
// trimmed value is empty.
func nonEmpty(pairs ...string) []zap.Field {
	fields := make([]zap.Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if value := strings.TrimSpace(pairs[i+1]); value != "" {
			fields = append(fields, zap.String(pairs[i], value))
		}
	}
	return fields
}

// WithFields attaches fields to l. A nil logger becomes a no-op logger.
func WithFields(l *zap.Logger, fields ...zap.Field) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// WithCommonFields tags l with the AI provider and model.
func WithCommonFields(l *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(l, nonEmpty(FieldProvider, provider, FieldModel, model)...)
}

// RecordFields returns the ids identifying a recruitment record. Empty ids are skipped.
func RecordFields(applicationID, candidateID, jobOfferID string) []zap.Field {
	return nonEmpty(
		FieldApplication, applicationID,
		FieldCandidate, candidateID,
		FieldJobOffer, jobOfferID,
	)
}
