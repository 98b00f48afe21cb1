package optimize

import (
	"math"
	"math/rand"
	"sort"

	"github.com/rs/zerolog/log"

	"ForexQuantBot/internal/services/strategy"
)

// SamplingMethod selects how test values are spread across a range.
type SamplingMethod int

const (
	SampleLinear SamplingMethod = iota
	SampleLog
	SampleRandom
)

// SensitivityConfig controls per-parameter sweeps.
type SensitivityConfig struct {
	NPoints int
	Method  SamplingMethod
	Seed    int64
}

func DefaultSensitivityConfig() SensitivityConfig {
	return SensitivityConfig{NPoints: 10, Method: SampleLinear, Seed: 1}
}

// SensitivityResult is the sweep outcome for one parameter.
type SensitivityResult struct {
	ParameterName    string
	BaseValue        float64
	TestedValues     []float64
	Performance      []float64 // NaN marks a failed evaluation
	OptimalValue     float64
	SensitivityScore float64 // coefficient of variation over valid points
	ImpactRange      float64 // max - min valid performance
	Failures         int
}

// PerformanceFunc scores a configured strategy, typically by backtesting it.
type PerformanceFunc func(strat strategy.Strategy) (float64, error)

// SensitivityAnalyzer sweeps each parameter through its range one at a
// time, holding all other parameters at their base values, and measures how
// strongly performance reacts.
type SensitivityAnalyzer struct {
	cfg SensitivityConfig
}

func NewSensitivityAnalyzer(cfg SensitivityConfig) *SensitivityAnalyzer {
	if cfg.NPoints <= 0 {
		cfg.NPoints = 10
	}
	return &SensitivityAnalyzer{cfg: cfg}
}

// Analyze sweeps every parameter in ranges and returns one result per
// parameter, in name order. Failed evaluations are recorded as NaN and
// excluded from the score; fewer than two valid points score zero.
func (a *SensitivityAnalyzer) Analyze(factory strategy.Factory, baseParams map[string]float64,
	ranges Bounds, perf PerformanceFunc) ([]SensitivityResult, error) {

	if len(ranges) == 0 {
		return nil, ErrNoBounds
	}
	rng := rand.New(rand.NewSource(a.cfg.Seed))

	results := make([]SensitivityResult, 0, len(ranges))
	for _, name := range ranges.names() {
		r := ranges[name]
		result := SensitivityResult{
			ParameterName: name,
			BaseValue:     baseParams[name],
			TestedValues:  a.sampleValues(r, rng),
		}
		result.Performance = make([]float64, len(result.TestedValues))

		for i, v := range result.TestedValues {
			params := make(map[string]float64, len(baseParams))
			for k, base := range baseParams {
				params[k] = base
			}
			params[name] = v

			score, err := a.evaluate(factory, params, perf)
			if err != nil {
				result.Performance[i] = math.NaN()
				result.Failures++
				continue
			}
			result.Performance[i] = score
		}

		a.score(&result)
		log.Debug().
			Str("parameter", name).
			Float64("score", result.SensitivityScore).
			Int("failures", result.Failures).
			Msg("parameter sweep finished")
		results = append(results, result)
	}
	return results, nil
}

func (a *SensitivityAnalyzer) evaluate(factory strategy.Factory, params map[string]float64, perf PerformanceFunc) (float64, error) {
	strat, err := factory(params)
	if err != nil {
		return 0, err
	}
	return perf(strat)
}

// sampleValues spreads NPoints across the range. Log sampling falls back to
// linear when the lower bound is not positive; random samples are sorted so
// the sweep reads low to high.
func (a *SensitivityAnalyzer) sampleValues(r Range, rng *rand.Rand) []float64 {
	n := a.cfg.NPoints
	values := make([]float64, n)
	if n == 1 {
		values[0] = r.Min
		return values
	}

	switch {
	case a.cfg.Method == SampleLog && r.Min > 0:
		logMin := math.Log(r.Min)
		logMax := math.Log(r.Max)
		for i := range values {
			values[i] = math.Exp(logMin + (logMax-logMin)*float64(i)/float64(n-1))
		}
	case a.cfg.Method == SampleRandom:
		for i := range values {
			values[i] = r.Min + rng.Float64()*(r.Max-r.Min)
		}
		sort.Float64s(values)
	default:
		for i := range values {
			values[i] = r.Min + (r.Max-r.Min)*float64(i)/float64(n-1)
		}
	}
	return values
}

// score derives the optimal value, impact range and coefficient of
// variation from the valid sweep points.
func (a *SensitivityAnalyzer) score(result *SensitivityResult) {
	var valid []float64
	bestIdx := -1
	for i, p := range result.Performance {
		if math.IsNaN(p) {
			continue
		}
		valid = append(valid, p)
		if bestIdx < 0 || p > result.Performance[bestIdx] {
			bestIdx = i
		}
	}
	if bestIdx >= 0 {
		result.OptimalValue = result.TestedValues[bestIdx]
	}
	if len(valid) < 2 {
		return
	}

	minP, maxP := valid[0], valid[0]
	for _, p := range valid[1:] {
		if p < minP {
			minP = p
		}
		if p > maxP {
			maxP = p
		}
	}
	result.ImpactRange = maxP - minP
	result.SensitivityScore = math.Abs(std(valid) / (mean(valid) + 1e-10))
}
