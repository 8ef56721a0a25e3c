package scoringapi

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MTP carries the candidate's metier, talent and paradigme answers.
type MTP struct {
	M string `json:"M"`
	T string `json:"T"`
	P string `json:"P"`
}

// Request is the payload expected by the scoring endpoint.
type Request struct {
	ID               string `json:"id"`
	Nom              string `json:"nom"`
	Prenom           string `json:"prenom"`
	CV               string `json:"cv"`
	LettreMotivation string `json:"lettre_motivation"`
	MTP              MTP    `json:"MTP"`
	Post             string `json:"post"`
}

// Thresholds are forwarded as query parameters; the endpoint uses them to pick its verdict.
type Thresholds struct {
	ThresholdPct     float64 `json:"threshold_pct"`
	HoldThresholdPct float64 `json:"hold_threshold_pct"`
}

// Scores are percentages computed by the endpoint.
type Scores struct {
	ScoreOffrePct  float64 `json:"score_offre_pct"`
	ScoreMTPPct    float64 `json:"score_mtp_pct"`
	ScoreGlobalPct float64 `json:"score_global_pct"`
}

// Verdict is the endpoint's recommendation.
type Verdict struct {
	Verdict      string `json:"verdict"`
	Commentaires string `json:"commentaires"`
	Rationale    string `json:"rationale"`
}

// Response is the endpoint's answer, relayed as is.
type Response struct {
	Scores        Scores   `json:"scores"`
	Verdict       Verdict  `json:"verdict"`
	Forces        TextList `json:"forces"`
	Faiblesses    TextList `json:"faiblesses"`
	Justification string   `json:"justification"`
	Commentaires  string   `json:"commentaires"`
}

// TextList decodes either a JSON array of strings or a single string.
type TextList []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TextList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*t = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode text list: %w", err)
		}
		*t = items
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("decode text list: %w", err)
	}
	if single = strings.TrimSpace(single); single == "" {
		*t = nil
		return nil
	}
	*t = TextList{single}
	return nil
}

// FailureKind classifies an unsuccessful call.
type FailureKind string

const (
	FailureEncode    FailureKind = "encode"
	FailureTimeout   FailureKind = "timeout"
	FailureCanceled  FailureKind = "canceled"
	FailureTransport FailureKind = "transport"
	FailureStatus    FailureKind = "http_status"
	FailureDecode    FailureKind = "decode"
)

// Result is the outcome of one evaluation call. Success is the discriminator:
// when true Data is set, otherwise Error and Kind describe the failure.
type Result struct {
	Success    bool        `json:"success"`
	Data       *Response   `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Kind       FailureKind `json:"kind,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
}

func succeeded(data *Response, status int) Result {
	return Result{Success: true, Data: data, StatusCode: status}
}

func failed(kind FailureKind, status int, format string, args ...any) Result {
	return Result{Kind: kind, StatusCode: status, Error: fmt.Sprintf(format, args...)}
}
