package optimize

import (
	"errors"
	"math"
	"sort"
)

var (
	// ErrNoBounds is returned when an optimizer is given an empty space.
	ErrNoBounds = errors.New("no parameter bounds given")
	// ErrInsufficientData is returned when a returns series is too short
	// to fit a distribution.
	ErrInsufficientData = errors.New("insufficient data")
)

// Range is the inclusive (min, max) bound of one parameter.
type Range struct {
	Min float64
	Max float64
}

// Bounds maps parameter names to their search ranges.
type Bounds map[string]Range

// names returns the parameter names in sorted order. Gene positions follow
// this order, which keeps seeded runs reproducible.
func (b Bounds) names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FitnessFunc scores a parameter vector. An error marks the candidate as a
// failed evaluation; it never aborts the optimizer run.
type FitnessFunc func(params map[string]float64) (float64, error)

func paramsFromGenes(names []string, genes []float64) map[string]float64 {
	params := make(map[string]float64, len(names))
	for i, name := range names {
		params[name] = genes[i]
	}
	return params
}

func clampGene(v float64, r Range) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func std(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// percentile returns the p-th percentile (0..100) of values using linear
// interpolation between order statistics.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
