package optimize

import (
	"errors"
	"math"
	"testing"

	"ForexQuantBot/internal/models"
	"ForexQuantBot/internal/services/strategy"
)

// stubStrategy carries parameters and never trades; the sweep and
// walk-forward tests only need the factory plumbing.
type stubStrategy struct {
	params map[string]float64
}

func (s *stubStrategy) Name() string                 { return "stub" }
func (s *stubStrategy) Params() map[string]float64   { return s.params }
func (s *stubStrategy) SetParams(p map[string]float64) {
	s.params = p
}
func (s *stubStrategy) WarmupPeriod() int { return 1 }
func (s *stubStrategy) Indicators([]models.Price) strategy.Columns {
	return nil
}
func (s *stubStrategy) Signal([]models.Price) int { return 0 }
func (s *stubStrategy) Volatility([]models.Price) (float64, bool) {
	return 0, false
}
func (s *stubStrategy) StopLoss([]models.Price, float64, int) (float64, bool) {
	return 0, false
}
func (s *stubStrategy) TakeProfit([]models.Price, float64, int) (float64, bool) {
	return 0, false
}

func stubFactory(params map[string]float64) (strategy.Strategy, error) {
	return &stubStrategy{params: params}, nil
}

func TestSensitivityConstantPerformanceScoresZero(t *testing.T) {
	a := NewSensitivityAnalyzer(DefaultSensitivityConfig())

	results, err := a.Analyze(stubFactory,
		map[string]float64{"x": 5},
		Bounds{"x": {Min: 0, Max: 10}},
		func(strategy.Strategy) (float64, error) { return 1.0, nil })
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	r := results[0]
	if r.SensitivityScore != 0 {
		t.Errorf("score = %v, want 0 for constant performance", r.SensitivityScore)
	}
	if r.ImpactRange != 0 {
		t.Errorf("impact range = %v, want 0", r.ImpactRange)
	}
	if r.Failures != 0 {
		t.Errorf("failures = %d, want 0", r.Failures)
	}
}

func TestSensitivityFindsOptimum(t *testing.T) {
	cfg := SensitivityConfig{NPoints: 11, Method: SampleLinear, Seed: 1}
	a := NewSensitivityAnalyzer(cfg)

	results, err := a.Analyze(stubFactory,
		map[string]float64{"x": 0},
		Bounds{"x": {Min: 0, Max: 10}},
		func(strat strategy.Strategy) (float64, error) {
			x := strat.Params()["x"]
			return -(x - 7) * (x - 7), nil
		})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	r := results[0]
	// Linear sampling over [0, 10] with 11 points lands exactly on 7.
	if r.OptimalValue != 7 {
		t.Errorf("optimal value = %v, want 7", r.OptimalValue)
	}
	if r.SensitivityScore <= 0 {
		t.Errorf("score = %v, want positive for varying performance", r.SensitivityScore)
	}
	if r.TestedValues[0] != 0 || r.TestedValues[len(r.TestedValues)-1] != 10 {
		t.Errorf("linear sampling must include both bounds, got %v", r.TestedValues)
	}
}

func TestSensitivityFailuresRecordedAsNaN(t *testing.T) {
	cfg := SensitivityConfig{NPoints: 11, Method: SampleLinear, Seed: 1}
	a := NewSensitivityAnalyzer(cfg)

	results, err := a.Analyze(stubFactory,
		map[string]float64{"x": 0},
		Bounds{"x": {Min: 0, Max: 10}},
		func(strat strategy.Strategy) (float64, error) {
			x := strat.Params()["x"]
			if x > 5 {
				return 0, errors.New("unstable region")
			}
			return x, nil
		})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	r := results[0]
	if r.Failures != 5 {
		t.Errorf("failures = %d, want 5 for values 6..10", r.Failures)
	}
	nanCount := 0
	for _, p := range r.Performance {
		if math.IsNaN(p) {
			nanCount++
		}
	}
	if nanCount != r.Failures {
		t.Errorf("NaN entries = %d, want %d", nanCount, r.Failures)
	}
	if r.OptimalValue != 5 {
		t.Errorf("optimal value = %v, failed points must not win", r.OptimalValue)
	}
}

func TestSensitivityBaseParamsNotMutated(t *testing.T) {
	a := NewSensitivityAnalyzer(DefaultSensitivityConfig())
	base := map[string]float64{"x": 5, "y": 3}

	_, err := a.Analyze(stubFactory, base,
		Bounds{"x": {Min: 0, Max: 10}, "y": {Min: 0, Max: 10}},
		func(strategy.Strategy) (float64, error) { return 1.0, nil })
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if base["x"] != 5 || base["y"] != 3 {
		t.Errorf("base params mutated: %v", base)
	}
}

func TestSensitivitySamplingMethods(t *testing.T) {
	logCfg := SensitivityConfig{NPoints: 5, Method: SampleLog, Seed: 1}
	values := NewSensitivityAnalyzer(logCfg).sampleValues(Range{Min: 1, Max: 10000}, nil)
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			t.Errorf("log samples not increasing: %v", values)
		}
	}
	if math.Abs(values[0]-1) > 1e-9 || math.Abs(values[4]-10000) > 1e-6 {
		t.Errorf("log samples must span the range, got %v", values)
	}
	// Geometric spacing: each step multiplies by 10.
	if math.Abs(values[1]-10) > 1e-6 {
		t.Errorf("second log sample = %v, want 10", values[1])
	}
}
