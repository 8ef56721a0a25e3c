package store

import (
	"context"
	"fmt"
)

const jobOfferColumns = `id::text, COALESCE(title, ''),
		        COALESCE(question_metier, ''), COALESCE(question_talent, ''), COALESCE(question_paradigme, ''),
		        COALESCE(status, ''), created_at`

// ListJobOffers retrieves every job offer in creation order.
func (db *DB) ListJobOffers(ctx context.Context) ([]JobOffer, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobOfferColumns+`
		 FROM job_offers ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job offers: %w", err)
	}
	defer rows.Close()

	var offers []JobOffer
	for rows.Next() {
		var o JobOffer
		if err := rows.Scan(&o.ID, &o.Title, &o.QuestionMetier, &o.QuestionTalent, &o.QuestionParadigme,
			&o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job offer: %w", err)
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job offers: %w", err)
	}
	return offers, nil
}

// GetJobOffer retrieves a job offer by its ID
func (db *DB) GetJobOffer(ctx context.Context, id string) (*JobOffer, error) {
	var o JobOffer
	err := db.pool.QueryRow(ctx,
		`SELECT `+jobOfferColumns+`
		 FROM job_offers WHERE id::text = $1`,
		id,
	).Scan(&o.ID, &o.Title, &o.QuestionMetier, &o.QuestionTalent, &o.QuestionParadigme, &o.Status, &o.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job offer: %w", err)
	}
	return &o, nil
}
