package optimize

import (
	"testing"
)

func TestDominates(t *testing.T) {
	o := NewMultiObjectiveOptimizer(
		Bounds{"x": {Min: 0, Max: 1}},
		[]Objective{MaximizeReturn, MinimizeDrawdown},
		DefaultMultiObjectiveConfig(),
	)

	better := Objectives{Return: 2, MaxDrawdown: 0.1}
	worse := Objectives{Return: 1, MaxDrawdown: 0.2}
	mixed := Objectives{Return: 3, MaxDrawdown: 0.3}
	equal := Objectives{Return: 2, MaxDrawdown: 0.1}

	if !o.dominates(better, worse) {
		t.Error("better on both objectives must dominate")
	}
	if o.dominates(worse, better) {
		t.Error("worse on both objectives must not dominate")
	}
	if o.dominates(better, mixed) || o.dominates(mixed, better) {
		t.Error("a trade-off pair must not dominate either way")
	}
	if o.dominates(better, equal) {
		t.Error("equal objectives must not dominate: no strict improvement")
	}
}

func TestParetoRanksPeeling(t *testing.T) {
	o := NewMultiObjectiveOptimizer(
		Bounds{"x": {Min: 0, Max: 1}},
		[]Objective{MaximizeReturn, MinimizeDrawdown},
		DefaultMultiObjectiveConfig(),
	)

	population := []candidate{
		{obj: Objectives{Return: 2.0, MaxDrawdown: 0.10}}, // dominates both others
		{obj: Objectives{Return: 1.0, MaxDrawdown: 0.20}}, // dominated by both others
		{obj: Objectives{Return: 1.5, MaxDrawdown: 0.15}}, // middle peel
	}

	ranks := o.paretoRanks(population)
	want := []int{0, 2, 1}
	for i, r := range ranks {
		if r != want[i] {
			t.Errorf("rank[%d] = %d, want %d", i, r, want[i])
		}
	}
}

func TestMultiObjectiveFrontIsNonDominated(t *testing.T) {
	bounds := Bounds{"x": {Min: 0, Max: 10}}
	cfg := DefaultMultiObjectiveConfig()
	cfg.PopulationSize = 20
	cfg.Generations = 10
	cfg.Seed = 11

	// Pure trade-off: more return always costs more risk, so no candidate
	// can dominate another.
	o := NewMultiObjectiveOptimizer(bounds, []Objective{MaximizeReturn, MinimizeRisk}, cfg)
	result, err := o.Optimize(func(params map[string]float64) (Objectives, error) {
		x := params["x"]
		return Objectives{Return: x, Risk: x}, nil
	})
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if len(result.Solutions) == 0 {
		t.Fatal("expected a non-empty Pareto front")
	}
	for i, a := range result.Solutions {
		if a.Rank != 0 {
			t.Errorf("solution %d rank = %d, want 0", i, a.Rank)
		}
		x := a.Params["x"]
		if x < 0 || x > 10 {
			t.Errorf("solution %d x = %v, out of bounds", i, x)
		}
		for j, b := range result.Solutions {
			if i != j && o.dominates(b.Objectives, a.Objectives) {
				t.Errorf("solution %d dominated by %d inside the front", i, j)
			}
		}
	}
}

func TestMultiObjectiveDeterministicUnderSeed(t *testing.T) {
	bounds := Bounds{"x": {Min: 0, Max: 10}}
	objectives := []Objective{MaximizeReturn, MinimizeDrawdown}
	cfg := DefaultMultiObjectiveConfig()
	cfg.PopulationSize = 20
	cfg.Generations = 8
	cfg.Seed = 99
	cfg.Workers = 4

	fn := func(params map[string]float64) (Objectives, error) {
		x := params["x"]
		return Objectives{Return: x, MaxDrawdown: x * x / 100}, nil
	}

	first, err := NewMultiObjectiveOptimizer(bounds, objectives, cfg).Optimize(fn)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := NewMultiObjectiveOptimizer(bounds, objectives, cfg).Optimize(fn)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if len(first.Solutions) != len(second.Solutions) {
		t.Fatalf("front size differs across runs: %d vs %d", len(first.Solutions), len(second.Solutions))
	}
	for i := range first.Solutions {
		if first.Solutions[i].Params["x"] != second.Solutions[i].Params["x"] {
			t.Fatalf("solution %d differs across runs", i)
		}
	}
}
