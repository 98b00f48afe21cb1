package optimize

import (
	"errors"
	"math"
	"testing"
)

func quadraticFitness(params map[string]float64) (float64, error) {
	x := params["x"]
	y := params["y"]
	return -(x-3)*(x-3) - (y-1)*(y-1), nil
}

func TestGeneticNoBounds(t *testing.T) {
	o := NewGeneticOptimizer(Bounds{}, DefaultGeneticConfig())
	if _, err := o.Optimize(quadraticFitness); err != ErrNoBounds {
		t.Fatalf("err = %v, want ErrNoBounds", err)
	}
}

func TestGeneticDeterministicUnderSeed(t *testing.T) {
	bounds := Bounds{
		"x": {Min: 0, Max: 10},
		"y": {Min: -5, Max: 5},
	}
	cfg := DefaultGeneticConfig()
	cfg.Seed = 42
	cfg.Workers = 4

	first, err := NewGeneticOptimizer(bounds, cfg).Optimize(quadraticFitness)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := NewGeneticOptimizer(bounds, cfg).Optimize(quadraticFitness)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if first.BestFitness != second.BestFitness {
		t.Fatalf("best fitness differs across runs: %v vs %v", first.BestFitness, second.BestFitness)
	}
	for name, v := range first.BestParams {
		if second.BestParams[name] != v {
			t.Fatalf("param %q differs across runs: %v vs %v", name, v, second.BestParams[name])
		}
	}
}

func TestGeneticConvergesOnQuadratic(t *testing.T) {
	bounds := Bounds{
		"x": {Min: 0, Max: 10},
		"y": {Min: -5, Max: 5},
	}
	cfg := DefaultGeneticConfig()
	cfg.Seed = 7

	result, err := NewGeneticOptimizer(bounds, cfg).Optimize(quadraticFitness)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if math.Abs(result.BestParams["x"]-3) > 1 {
		t.Errorf("x = %v, want near 3", result.BestParams["x"])
	}
	if math.Abs(result.BestParams["y"]-1) > 1 {
		t.Errorf("y = %v, want near 1", result.BestParams["y"])
	}
	if result.BestFitness < -2 {
		t.Errorf("best fitness %v, want near 0", result.BestFitness)
	}
}

func TestGeneticEvaluationBudget(t *testing.T) {
	bounds := Bounds{"x": {Min: 0, Max: 10}}
	cfg := GeneticConfig{PopulationSize: 10, Generations: 5, MutationRate: 0.1, CrossoverRate: 0.7, Seed: 1}

	result, err := NewGeneticOptimizer(bounds, cfg).Optimize(quadraticFitness)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	// Initial population plus one offspring batch per generation.
	if want := 10 * (5 + 1); result.Evaluations != want {
		t.Errorf("Evaluations = %d, want %d", result.Evaluations, want)
	}
	if result.Generations != 5 {
		t.Errorf("Generations = %d, want 5", result.Generations)
	}
}

func TestGeneticFailedEvaluationsNeverWin(t *testing.T) {
	bounds := Bounds{"x": {Min: 0, Max: 10}}
	cfg := DefaultGeneticConfig()
	cfg.Seed = 3

	fitness := func(params map[string]float64) (float64, error) {
		x := params["x"]
		if x < 5 {
			return 0, errors.New("region rejected")
		}
		return -x, nil
	}

	result, err := NewGeneticOptimizer(bounds, cfg).Optimize(fitness)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if result.Failures == 0 {
		t.Error("expected some failed evaluations")
	}
	if math.IsInf(result.BestFitness, -1) {
		t.Fatal("best fitness stuck at -Inf despite valid candidates")
	}
	if result.BestParams["x"] < 5 {
		t.Errorf("best x = %v, failed region must never win", result.BestParams["x"])
	}
}
