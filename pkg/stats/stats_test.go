package stats_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/redline-eval/redline/pkg/stats"
)

func TestCohensKappa(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want float64
	}{
		{"identical", []int{1, 1, 0, 0}, []int{1, 1, 0, 0}, 1.0},
		{"all identical ratings", []int{1, 1, 1}, []int{1, 1, 1}, 1.0},
		{"complete disagreement", []int{1, 0, 1, 0}, []int{0, 1, 0, 1}, -1.0},
		// po = 0.75, pa = 0.5, pb = 0.25, pe = 0.5 -> 0.5
		{"partial", []int{1, 1, 0, 0}, []int{1, 0, 0, 0}, 0.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := stats.CohensKappa(tc.a, tc.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tc.want) > 0.01 {
				t.Errorf("kappa = %f, want %f", got, tc.want)
			}
		})
	}
}

func TestCohensKappaValidation(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
	}{
		{"length mismatch", []int{1, 0, 1}, []int{1, 0}},
		{"empty", nil, nil},
		{"one empty", []int{1}, nil},
		{"not binary", []int{1, 2}, []int{1, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := stats.CohensKappa(tc.a, tc.b)
			if !errors.Is(err, stats.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestCohensKappaBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(41))
	for i := 0; i < 200; i++ {
		n := 2 + rng.Intn(30)
		a, b := make([]int, n), make([]int, n)
		for j := 0; j < n; j++ {
			a[j], b[j] = rng.Intn(2), rng.Intn(2)
		}
		k, err := stats.CohensKappa(a, b)
		if err != nil {
			t.Fatal(err)
		}
		if k < -1-1e-9 || k > 1+1e-9 {
			t.Fatalf("kappa %f out of [-1,1] for %v / %v", k, a, b)
		}
	}
}

func TestCohensKappaBool(t *testing.T) {
	got, err := stats.CohensKappaBool([]bool{true, false}, []bool{true, false})
	if err != nil || got != 1 {
		t.Errorf("CohensKappaBool = %f, %v; want 1, nil", got, err)
	}
}

func TestConfidenceInterval(t *testing.T) {
	samples := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	iv, err := stats.ConfidenceInterval(samples, 0.95)
	if err != nil {
		t.Fatal(err)
	}

	// mean 5, Bessel-corrected s = sqrt(32/7)
	s := math.Sqrt(32.0 / 7.0)
	margin := 1.96 * s / math.Sqrt(8)
	if math.Abs(iv.Mean-5) > 1e-9 {
		t.Errorf("mean = %f, want 5", iv.Mean)
	}
	if math.Abs(iv.StdDev-s) > 1e-9 {
		t.Errorf("std dev = %f, want %f", iv.StdDev, s)
	}
	if math.Abs(iv.Lower-(5-margin)) > 1e-9 || math.Abs(iv.Upper-(5+margin)) > 1e-9 {
		t.Errorf("interval = [%f, %f], want [%f, %f]", iv.Lower, iv.Upper, 5-margin, 5+margin)
	}
	if !(iv.Lower < iv.Mean && iv.Mean < iv.Upper) {
		t.Errorf("mean %f not strictly inside [%f, %f]", iv.Mean, iv.Lower, iv.Upper)
	}
}

func TestConfidenceIntervalLevels(t *testing.T) {
	samples := []float64{1, 2, 3, 4, 5}
	iv95, _ := stats.ConfidenceInterval(samples, 0.95)
	iv99, _ := stats.ConfidenceInterval(samples, 0.99)
	ivOther, _ := stats.ConfidenceInterval(samples, 0.90)

	if iv99.Width() <= iv95.Width() {
		t.Errorf("99%% interval (%f) should be wider than 95%% (%f)", iv99.Width(), iv95.Width())
	}
	if math.Abs(ivOther.Width()-iv95.Width()) > 1e-12 {
		t.Errorf("unsupported level should use the 95%% z-score")
	}
	if ivOther.Level != 0.95 {
		t.Errorf("unsupported level reported as %f, want 0.95", ivOther.Level)
	}
	if math.Abs(iv99.Width()/iv95.Width()-2.576/1.96) > 1e-9 {
		t.Errorf("width ratio should equal z ratio")
	}
}

func TestConfidenceIntervalNarrows(t *testing.T) {
	// Same repeating pattern at increasing n keeps the spread comparable.
	pattern := []float64{10, 12, 14, 16, 18}
	var prev float64
	for i, reps := range []int{1, 2, 4, 8} {
		var samples []float64
		for r := 0; r < reps; r++ {
			samples = append(samples, pattern...)
		}
		iv, err := stats.ConfidenceInterval(samples, 0.95)
		if err != nil {
			t.Fatal(err)
		}
		if i > 0 && iv.Width() >= prev {
			t.Errorf("n=%d width %f did not shrink from %f", len(samples), iv.Width(), prev)
		}
		prev = iv.Width()
	}
}

func TestConfidenceIntervalValidation(t *testing.T) {
	for _, samples := range [][]float64{nil, {}, {1}} {
		if _, err := stats.ConfidenceInterval(samples, 0.95); !errors.Is(err, stats.ErrValidation) {
			t.Errorf("ConfidenceInterval(%v) error = %v, want ErrValidation", samples, err)
		}
	}
}

func TestMeanStdDev(t *testing.T) {
	if stats.Mean(nil) != 0 {
		t.Error("Mean(nil) should be 0")
	}
	if stats.StdDev([]float64{3}) != 0 {
		t.Error("StdDev of one sample should be 0")
	}
	if got := stats.StdDev([]float64{1, 3}); math.Abs(got-math.Sqrt2) > 1e-12 {
		t.Errorf("StdDev([1 3]) = %f, want sqrt(2)", got)
	}
}
