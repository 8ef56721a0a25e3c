package store

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the pipeline stage of an application.
type ApplicationStatus string

const (
	StatusCandidature        ApplicationStatus = "candidature"
	StatusIncubation         ApplicationStatus = "incubation"
	StatusEntretienProgramme ApplicationStatus = "entretien_programme"
	StatusEmbauche           ApplicationStatus = "embauche"
	StatusRefuse             ApplicationStatus = "refuse"
)

// Valid reports whether s is one of the known pipeline stages.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusCandidature, StatusIncubation, StatusEntretienProgramme, StatusEmbauche, StatusRefuse:
		return true
	default:
		return false
	}
}

// Application is a candidate's submission to a job offer.
type Application struct {
	ID          uuid.UUID         `json:"id"`
	CandidateID uuid.UUID         `json:"candidate_id"`
	JobOfferID  string            `json:"job_offer_id"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ApplicationSummary is an application joined with its candidate's identity.
type ApplicationSummary struct {
	Application
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Protocol1Evaluation holds the documentary, MTP adherence and interview
// scores recorded by recruiters. Star sub-scores range 0-5, NULL reads as 0.
type Protocol1Evaluation struct {
	ApplicationID uuid.UUID `json:"application_id"`

	DocumentaryCV           float64 `json:"documentary_cv"`
	DocumentaryLetter       float64 `json:"documentary_lettre"`
	DocumentaryDiplomas     float64 `json:"documentary_diplomes"`
	DocumentaryCertificates float64 `json:"documentary_certificats"`

	MTPMetier    float64 `json:"mtp_metier"`
	MTPTalent    float64 `json:"mtp_talent"`
	MTPParadigme float64 `json:"mtp_paradigme"`

	InterviewMetier    float64 `json:"interview_metier"`
	InterviewTalent    float64 `json:"interview_talent"`
	InterviewParadigme float64 `json:"interview_paradigme"`
	InterviewGeneral   float64 `json:"interview_general"`

	OverallScore float64   `json:"overall_score"`
	Completed    bool      `json:"completed"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Documentary returns the documentary validation sub-scores.
func (e *Protocol1Evaluation) Documentary() []float64 {
	return []float64{e.DocumentaryCV, e.DocumentaryLetter, e.DocumentaryDiplomas, e.DocumentaryCertificates}
}

// MTP returns the metier/talent/paradigme adherence sub-scores.
func (e *Protocol1Evaluation) MTP() []float64 {
	return []float64{e.MTPMetier, e.MTPTalent, e.MTPParadigme}
}

// Interview returns the interview sub-scores.
func (e *Protocol1Evaluation) Interview() []float64 {
	return []float64{e.InterviewMetier, e.InterviewTalent, e.InterviewParadigme, e.InterviewGeneral}
}

// Protocol2Evaluation holds the situational test results.
type Protocol2Evaluation struct {
	ApplicationID uuid.UUID `json:"application_id"`
	QCMRole       float64   `json:"qcm_role"`
	QCMCodir      float64   `json:"qcm_codir"`
	OverallScore  float64   `json:"overall_score"`
	Completed     bool      `json:"completed"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// JobOffer is a published position with its metier, talent and paradigme prompts.
type JobOffer struct {
	ID                string    `json:"job_id"`
	Title             string    `json:"titre"`
	QuestionMetier    string    `json:"question_metier,omitempty"`
	QuestionTalent    string    `json:"question_talent,omitempty"`
	QuestionParadigme string    `json:"question_paradigme,omitempty"`
	Status            string    `json:"status,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
