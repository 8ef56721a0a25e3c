package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// GetProtocol1Evaluation retrieves the protocol 1 evaluation of an application.
// It returns nil without error when the evaluation has not been started.
func (db *DB) GetProtocol1Evaluation(ctx context.Context, applicationID uuid.UUID) (*Protocol1Evaluation, error) {
	var e Protocol1Evaluation
	err := db.pool.QueryRow(ctx,
		`SELECT application_id,
		        COALESCE(documentary_cv, 0), COALESCE(documentary_lettre, 0),
		        COALESCE(documentary_diplomes, 0), COALESCE(documentary_certificats, 0),
		        COALESCE(mtp_metier, 0), COALESCE(mtp_talent, 0), COALESCE(mtp_paradigme, 0),
		        COALESCE(interview_metier, 0), COALESCE(interview_talent, 0),
		        COALESCE(interview_paradigme, 0), COALESCE(interview_general, 0),
		        COALESCE(overall_score, 0), COALESCE(completed, false), updated_at
		 FROM protocol1_evaluations WHERE application_id = $1`,
		applicationID,
	).Scan(&e.ApplicationID,
		&e.DocumentaryCV, &e.DocumentaryLetter, &e.DocumentaryDiplomas, &e.DocumentaryCertificates,
		&e.MTPMetier, &e.MTPTalent, &e.MTPParadigme,
		&e.InterviewMetier, &e.InterviewTalent, &e.InterviewParadigme, &e.InterviewGeneral,
		&e.OverallScore, &e.Completed, &e.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get protocol 1 evaluation: %w", err)
	}
	return &e, nil
}

// GetProtocol2Evaluation retrieves the protocol 2 evaluation of an application.
// It returns nil without error when the evaluation has not been started.
func (db *DB) GetProtocol2Evaluation(ctx context.Context, applicationID uuid.UUID) (*Protocol2Evaluation, error) {
	var e Protocol2Evaluation
	err := db.pool.QueryRow(ctx,
		`SELECT application_id,
		        COALESCE(qcm_role, 0), COALESCE(qcm_codir, 0),
		        COALESCE(overall_score, 0), COALESCE(completed, false), updated_at
		 FROM protocol2_evaluations WHERE application_id = $1`,
		applicationID,
	).Scan(&e.ApplicationID, &e.QCMRole, &e.QCMCodir, &e.OverallScore, &e.Completed, &e.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get protocol 2 evaluation: %w", err)
	}
	return &e, nil
}
