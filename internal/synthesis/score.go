// Package synthesis combines the protocol 1 and protocol 2 evaluations of an
// application into a global score and a hiring recommendation.
package synthesis

import "math"

// Status is the completion state of one evaluation protocol.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Verdict is the hiring recommendation derived from the global score.
type Verdict string

const (
	VerdictEmbauche   Verdict = "embauche"
	VerdictIncubation Verdict = "incubation"
	VerdictRefuse     Verdict = "refuse"
)

const (
	Protocol1Weight = 0.4
	Protocol2Weight = 0.6

	// EmbaucheThreshold and IncubationThreshold are inclusive lower bounds.
	EmbaucheThreshold   = 70.0
	IncubationThreshold = 50.0

	maxPercent = 100.0
	maxStars   = 5.0
)

// ClampPercent bounds v to [0, 100]. NaN reads as 0.
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, maxPercent)
}

// RoundTo1 rounds v to one decimal place, halves away from zero.
func RoundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ComputeGlobalScore blends the two protocol percentages 40/60 and rounds to one decimal.
func ComputeGlobalScore(protocol1, protocol2 float64) float64 {
	blended := ClampPercent(protocol1)*Protocol1Weight + ClampPercent(protocol2)*Protocol2Weight
	return ClampPercent(RoundTo1(blended))
}

// Classify maps a global score to a verdict.
func Classify(globalScore float64) Verdict {
	switch {
	case globalScore >= EmbaucheThreshold:
		return VerdictEmbauche
	case globalScore >= IncubationThreshold:
		return VerdictIncubation
	default:
		return VerdictRefuse
	}
}

// StarAverage averages the strictly positive values and rounds to the nearest star.
// Zero or unset entries do not count; an empty set averages to 0.
func StarAverage(values ...float64) int {
	var sum float64
	var n int
	for _, v := range values {
		if v > 0 && !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

// PercentToStars rescales a 0-100 score onto the 0-5 star range.
// Protocol 2 does not record operational validation or skills analysis as
// discrete stars, so both are approximated from the overall percentage.
func PercentToStars(score float64) int {
	return int(math.Round(math.Min(ClampPercent(score)/20, maxStars)))
}
