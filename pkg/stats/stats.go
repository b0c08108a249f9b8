// Package stats provides the statistics used to certify the scorer offline:
// inter-rater agreement and confidence intervals. Nothing here is on the
// scoring path.
package stats

import (
	"errors"
	"fmt"
	"math"
)

// ErrValidation indicates unusable input. These are usage errors, not
// conditions to recover from at runtime.
var ErrValidation = errors.New("stats: invalid input")

// Z-scores for the supported confidence levels.
const (
	Z95 = 1.96
	Z99 = 2.576
)

// CohensKappa computes chance-corrected agreement between two raters over
// binary ratings (0 or 1). When chance agreement is 1 (every rating
// identical across both raters) kappa is defined as 1.
func CohensKappa(a, b []int) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("%w: empty rating sequence", ErrValidation)
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: rating sequences differ in length (%d vs %d)", ErrValidation, len(a), len(b))
	}

	n := float64(len(a))
	var agree, posA, posB float64
	for i := range a {
		if !binary(a[i]) || !binary(b[i]) {
			return 0, fmt.Errorf("%w: rating %d is not binary (%d, %d)", ErrValidation, i, a[i], b[i])
		}
		if a[i] == b[i] {
			agree++
		}
		posA += float64(a[i])
		posB += float64(b[i])
	}

	po := agree / n
	pa, pb := posA/n, posB/n
	pe := pa*pb + (1-pa)*(1-pb)
	if pe == 1 {
		return 1, nil
	}
	return (po - pe) / (1 - pe), nil
}

// CohensKappaBool is CohensKappa over boolean ratings.
func CohensKappaBool(a, b []bool) (float64, error) {
	return CohensKappa(boolsToInts(a), boolsToInts(b))
}

func binary(v int) bool { return v == 0 || v == 1 }

func boolsToInts(bs []bool) []int {
	out := make([]int, len(bs))
	for i, b := range bs {
		if b {
			out[i] = 1
		}
	}
	return out
}

// Interval is a two-sided confidence interval around a sample mean.
type Interval struct {
	Mean   float64 `json:"mean"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	StdDev float64 `json:"std_dev"`
	N      int     `json:"n"`
	Level  float64 `json:"level"`
}

// Width returns Upper - Lower.
func (iv Interval) Width() float64 { return iv.Upper - iv.Lower }

// ZScore returns the normal critical value for a confidence level.
// Only 0.95 and 0.99 are supported; anything else uses the 0.95 value.
func ZScore(level float64) float64 {
	if level == 0.99 {
		return Z99
	}
	return Z95
}

// ConfidenceInterval computes mean ± z·s/√n with the Bessel-corrected
// sample standard deviation.
func ConfidenceInterval(samples []float64, level float64) (Interval, error) {
	if len(samples) < 2 {
		return Interval{}, fmt.Errorf("%w: need at least 2 samples, got %d", ErrValidation, len(samples))
	}

	m := Mean(samples)
	s := StdDev(samples)
	z := ZScore(level)
	if z == Z95 {
		level = 0.95
	}
	margin := z * s / math.Sqrt(float64(len(samples)))

	return Interval{
		Mean:   m,
		Lower:  m - margin,
		Upper:  m + margin,
		StdDev: s,
		N:      len(samples),
		Level:  level,
	}, nil
}

// Mean returns the arithmetic mean, 0 for no samples.
func Mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v
	}
	return sum / float64(len(samples))
}

// StdDev returns the sample standard deviation (n-1 divisor), 0 for fewer
// than 2 samples.
func StdDev(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	m := Mean(samples)
	var ss float64
	for _, v := range samples {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(samples)-1))
}
