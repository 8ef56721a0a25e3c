// Package candidate models the candidate records submitted for evaluation.
package candidate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// ErrInvalid reports a candidate record that cannot be shaped into an evaluation request.
var ErrInvalid = errors.New("invalid candidate")

var validate = validator.New()

// MTP holds the candidate's answers to the metier, talent and paradigme questions.
type MTP struct {
	M string `json:"M"`
	T string `json:"T"`
	P string `json:"P"`
}

// Offre is the job the candidate claims to apply for. Either field may be
// missing or stale in legacy records.
type Offre struct {
	Reference string `json:"reference"`
	Intitule  string `json:"intitule"`
}

// Data is a candidate record as received from the application form or an export.
type Data struct {
	ID               string `json:"id" validate:"required"`
	Nom              string `json:"nom" validate:"required_without=Prenom"`
	Prenom           string `json:"prenom" validate:"required_without=Nom"`
	Email            string `json:"email,omitempty" validate:"omitempty,email"`
	CV               string `json:"cv"`
	LettreMotivation string `json:"lettre_motivation"`
	MTP              MTP    `json:"MTP"`
	Offre            Offre  `json:"offre"`
}

// Validate checks the fields required to build an evaluation request.
func (d *Data) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalid)
	}
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalid, d.ID, err)
	}
	return nil
}

// FullName returns "Prenom Nom" without surrounding blanks.
func (d *Data) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(d.Prenom) + " " + strings.TrimSpace(d.Nom))
}

// Decode converts a loosely typed record into Data. Numeric ids and
// references are accepted and converted to strings.
func Decode(raw map[string]any) (*Data, error) {
	var data Data
	cfg := &mapstructure.DecoderConfig{
		Result:           &data,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("create candidate decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode candidate: %w", err)
	}

	data.ID = strings.TrimSpace(data.ID)
	data.Offre.Reference = strings.TrimSpace(data.Offre.Reference)

	return &data, nil
}
