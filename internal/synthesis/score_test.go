package synthesis

import (
	"math"
	"testing"
)

func TestComputeGlobalScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		p1, p2 float64
		expect float64
	}{
		{name: "zeros", p1: 0, p2: 0, expect: 0},
		{name: "full marks", p1: 100, p2: 100, expect: 100},
		{name: "weighted", p1: 80, p2: 60, expect: 68},
		{name: "rounds to one decimal", p1: 33.33, p2: 66.67, expect: 53.3},
		{name: "clamps protocol 1 above 100", p1: 150, p2: 50, expect: 70},
		{name: "clamps protocol 2 above 100", p1: 50, p2: 400, expect: 80},
		{name: "negative reads as zero", p1: -20, p2: 50, expect: 30},
		{name: "nan reads as zero", p1: math.NaN(), p2: 100, expect: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ComputeGlobalScore(tt.p1, tt.p2)
			if math.Abs(got-tt.expect) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestComputeGlobalScoreProperty(t *testing.T) {
	t.Parallel()

	for p1 := 0.0; p1 <= 100; p1 += 2.5 {
		for p2 := 0.0; p2 <= 100; p2 += 3.7 {
			got := ComputeGlobalScore(p1, p2)
			want := math.Round((math.Min(p1, 100)*0.4+math.Min(p2, 100)*0.6)*10) / 10
			if got != want {
				t.Fatalf("p1=%v p2=%v: expected %v, got %v", p1, p2, want, got)
			}
			if got < 0 || got > 100 {
				t.Fatalf("p1=%v p2=%v: score %v out of range", p1, p2, got)
			}
		}
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score  float64
		expect Verdict
	}{
		{score: 100, expect: VerdictEmbauche},
		{score: 70, expect: VerdictEmbauche},
		{score: 69.9, expect: VerdictIncubation},
		{score: 50, expect: VerdictIncubation},
		{score: 49.9, expect: VerdictRefuse},
		{score: 0, expect: VerdictRefuse},
	}

	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.expect {
			t.Fatalf("classify(%v): expected %s, got %s", tt.score, tt.expect, got)
		}
	}
}

func TestStarAverage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		expect int
	}{
		{name: "empty", values: nil, expect: 0},
		{name: "all zero", values: []float64{0, 0, 0}, expect: 0},
		{name: "zeros excluded", values: []float64{3, 0, 5}, expect: 4},
		{name: "rounds half up", values: []float64{3, 4}, expect: 4},
		{name: "rounds down", values: []float64{1, 2, 2}, expect: 2},
		{name: "negatives excluded", values: []float64{-1, 5}, expect: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := StarAverage(tt.values...); got != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestPercentToStars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score  float64
		expect int
	}{
		{score: 0, expect: 0},
		{score: 9.9, expect: 0},
		{score: 10, expect: 1},
		{score: 55, expect: 3},
		{score: 100, expect: 5},
		{score: 180, expect: 5},
	}

	for _, tt := range tests {
		if got := PercentToStars(tt.score); got != tt.expect {
			t.Fatalf("stars(%v): expected %d, got %d", tt.score, tt.expect, got)
		}
	}
}
