package optimize

import (
	"testing"
)

func driftReturns() []float64 {
	// Small positive drift with low dispersion.
	return []float64{0.010, 0.012, 0.009, 0.011, 0.008, 0.013, 0.010, 0.011}
}

func TestSimulateInsufficientData(t *testing.T) {
	sim := NewMonteCarloSimulator(DefaultMonteCarloConfig())
	if _, err := sim.Simulate([]float64{0.01}, 10000, 50); err != ErrInsufficientData {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestSimulateStatsSanity(t *testing.T) {
	cfg := DefaultMonteCarloConfig()
	cfg.NSimulations = 500
	cfg.Seed = 5
	sim := NewMonteCarloSimulator(cfg)

	returns := []float64{0.02, -0.01, 0.015, -0.02, 0.01, 0.005, -0.005, 0.03}
	stats, err := sim.Simulate(returns, 10000, 100)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	if stats.ProbabilityOfProfit < 0 || stats.ProbabilityOfProfit > 1 {
		t.Errorf("ProbabilityOfProfit = %v, want within [0, 1]", stats.ProbabilityOfProfit)
	}
	if stats.CVaR > stats.VaR {
		t.Errorf("CVaR %v above VaR %v, tail mean cannot beat its cutoff", stats.CVaR, stats.VaR)
	}
	if stats.Percentile5 > stats.Percentile95 {
		t.Errorf("P5 %v above P95 %v", stats.Percentile5, stats.Percentile95)
	}
	if stats.MeanDrawdown > stats.MaxDrawdown {
		t.Errorf("mean drawdown %v above max %v", stats.MeanDrawdown, stats.MaxDrawdown)
	}
	if stats.StdFinalBalance < 0 || stats.MeanFinalBalance <= 0 {
		t.Errorf("degenerate balance stats: mean %v std %v", stats.MeanFinalBalance, stats.StdFinalBalance)
	}
}

func TestSimulateDeterministicUnderSeed(t *testing.T) {
	cfg := DefaultMonteCarloConfig()
	cfg.NSimulations = 200
	cfg.Seed = 21
	cfg.Workers = 4

	returns := driftReturns()
	first, err := NewMonteCarloSimulator(cfg).Simulate(returns, 10000, 50)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := NewMonteCarloSimulator(cfg).Simulate(returns, 10000, 50)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if *first != *second {
		t.Fatalf("stats differ across seeded runs:\n%+v\n%+v", first, second)
	}
}

func TestSimulatePositiveDriftMostlyProfits(t *testing.T) {
	cfg := DefaultMonteCarloConfig()
	cfg.NSimulations = 300
	cfg.Seed = 9
	sim := NewMonteCarloSimulator(cfg)

	stats, err := sim.Simulate(driftReturns(), 10000, 100)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if stats.ProbabilityOfProfit < 0.9 {
		t.Errorf("ProbabilityOfProfit = %v, want near 1 under strong drift", stats.ProbabilityOfProfit)
	}
	if stats.MeanReturn <= 0 {
		t.Errorf("MeanReturn = %v, want positive under positive drift", stats.MeanReturn)
	}
}

func TestStressTestScalesAgainstBaseline(t *testing.T) {
	cfg := DefaultMonteCarloConfig()
	cfg.NSimulations = 300
	cfg.Seed = 17
	sim := NewMonteCarloSimulator(cfg)

	scenarios := map[string]float64{
		"mild":   0.8,
		"severe": 0.3,
	}
	results, err := sim.StressTest(driftReturns(), scenarios, 10000, 100)
	if err != nil {
		t.Fatalf("StressTest failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("results = %d, want one per scenario", len(results))
	}
	if results[0].Scenario != "mild" || results[1].Scenario != "severe" {
		t.Fatalf("scenarios out of name order: %v, %v", results[0].Scenario, results[1].Scenario)
	}
	for _, r := range results {
		if r.LossVsBaseline <= 0 {
			t.Errorf("scenario %q loss vs baseline = %v, want positive when drift is scaled down",
				r.Scenario, r.LossVsBaseline)
		}
	}
	if results[1].LossVsBaseline <= results[0].LossVsBaseline {
		t.Errorf("severe loss %v should exceed mild loss %v",
			results[1].LossVsBaseline, results[0].LossVsBaseline)
	}
}
