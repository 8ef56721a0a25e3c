package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatusValid(t *testing.T) {
	valid := []ApplicationStatus{
		StatusCandidature, StatusIncubation, StatusEntretienProgramme, StatusEmbauche, StatusRefuse,
	}
	for _, s := range valid {
		assert.True(t, s.Valid(), "expected %q to be valid", s)
	}

	assert.False(t, ApplicationStatus("").Valid())
	assert.False(t, ApplicationStatus("hired").Valid())
}

func TestProtocol1EvaluationGroups(t *testing.T) {
	e := &Protocol1Evaluation{
		DocumentaryCV:      4,
		DocumentaryLetter:  3,
		MTPMetier:          5,
		MTPParadigme:       2,
		InterviewGeneral:   1,
		InterviewParadigme: 3,
	}

	assert.Equal(t, []float64{4, 3, 0, 0}, e.Documentary())
	assert.Equal(t, []float64{5, 0, 2}, e.MTP())
	assert.Equal(t, []float64{0, 0, 3, 1}, e.Interview())
}
