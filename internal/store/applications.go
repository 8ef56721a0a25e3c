package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// GetApplication retrieves an application by its ID
func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (*Application, error) {
	var a Application
	err := db.pool.QueryRow(ctx,
		`SELECT id, candidate_id, job_offer_id::text, status, created_at, updated_at
		 FROM applications WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.CandidateID, &a.JobOfferID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &a, nil
}

// ListApplicationsByJobOffer retrieves the applications of a job offer with candidate identities.
func (db *DB) ListApplicationsByJobOffer(ctx context.Context, jobOfferID string) ([]ApplicationSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT a.id, a.candidate_id, a.job_offer_id::text, a.status, a.created_at, a.updated_at,
		        COALESCE(u.first_name, ''), COALESCE(u.last_name, ''), COALESCE(u.email, '')
		 FROM applications a
		 LEFT JOIN users u ON u.id = a.candidate_id
		 WHERE a.job_offer_id::text = $1
		 ORDER BY a.created_at`,
		jobOfferID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var summaries []ApplicationSummary
	for rows.Next() {
		var s ApplicationSummary
		if err := rows.Scan(&s.ID, &s.CandidateID, &s.JobOfferID, &s.Status, &s.CreatedAt, &s.UpdatedAt,
			&s.FirstName, &s.LastName, &s.Email); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return summaries, nil
}
