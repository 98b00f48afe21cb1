package optimize

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

// GeneticConfig controls the genetic search.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64 // per-gene uniform-resample probability
	CrossoverRate  float64 // per-pair blend crossover probability
	Workers        int     // parallel fitness evaluations, 0 = NumCPU
	Seed           int64
}

func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 50,
		Generations:    30,
		MutationRate:   0.1,
		CrossoverRate:  0.7,
		Seed:           1,
	}
}

// GeneticResult holds the best candidate found across all generations.
type GeneticResult struct {
	BestParams  map[string]float64
	BestFitness float64
	Generations int
	Evaluations int
	Failures    int
}

// GeneticOptimizer searches a bounded real-valued parameter space with a
// fixed generation budget. All random draws happen on the calling
// goroutine, so runs with the same seed and configuration are identical;
// only the pure fitness evaluations run in parallel.
type GeneticOptimizer struct {
	bounds Bounds
	names  []string
	cfg    GeneticConfig
}

func NewGeneticOptimizer(bounds Bounds, cfg GeneticConfig) *GeneticOptimizer {
	if cfg.PopulationSize <= 0 {
		cfg.PopulationSize = 50
	}
	if cfg.Generations <= 0 {
		cfg.Generations = 30
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &GeneticOptimizer{
		bounds: bounds,
		names:  bounds.names(),
		cfg:    cfg,
	}
}

// Optimize runs the full generation budget and returns the best-ever
// candidate. Failed fitness evaluations score -Inf and are never selected.
func (o *GeneticOptimizer) Optimize(fitness FitnessFunc) (*GeneticResult, error) {
	if len(o.bounds) == 0 {
		return nil, ErrNoBounds
	}

	rng := rand.New(rand.NewSource(o.cfg.Seed))
	result := &GeneticResult{BestFitness: math.Inf(-1)}

	population := make([][]float64, o.cfg.PopulationSize)
	for i := range population {
		population[i] = o.randomGenes(rng)
	}
	scores := o.evaluate(population, fitness, result)
	o.trackBest(population, scores, result)

	for gen := 0; gen < o.cfg.Generations; gen++ {
		offspring := o.vary(population, rng)
		scores = o.evaluate(offspring, fitness, result)
		o.trackBest(offspring, scores, result)

		population = o.selectTournament(offspring, scores, rng)

		if gen%5 == 0 {
			log.Debug().
				Int("generation", gen).
				Float64("best_fitness", result.BestFitness).
				Msg("genetic optimizer progress")
		}
	}

	result.Generations = o.cfg.Generations
	return result, nil
}

func (o *GeneticOptimizer) randomGenes(rng *rand.Rand) []float64 {
	genes := make([]float64, len(o.names))
	for i, name := range o.names {
		r := o.bounds[name]
		genes[i] = r.Min + rng.Float64()*(r.Max-r.Min)
	}
	return genes
}

// vary clones the population and applies blend crossover to adjacent pairs
// followed by per-gene uniform-resample mutation.
func (o *GeneticOptimizer) vary(population [][]float64, rng *rand.Rand) [][]float64 {
	offspring := make([][]float64, len(population))
	for i, genes := range population {
		clone := make([]float64, len(genes))
		copy(clone, genes)
		offspring[i] = clone
	}

	for i := 0; i+1 < len(offspring); i += 2 {
		if rng.Float64() < o.cfg.CrossoverRate {
			o.blendCrossover(offspring[i], offspring[i+1], rng)
		}
	}
	for _, genes := range offspring {
		for g, name := range o.names {
			if rng.Float64() < o.cfg.MutationRate {
				r := o.bounds[name]
				genes[g] = r.Min + rng.Float64()*(r.Max-r.Min)
			}
		}
	}
	return offspring
}

// blendCrossover samples both children uniformly from the parent interval
// widened by alpha times the gene distance, clamped to the bounds.
func (o *GeneticOptimizer) blendCrossover(a, b []float64, rng *rand.Rand) {
	const alpha = 0.5
	for g, name := range o.names {
		r := o.bounds[name]
		lo := math.Min(a[g], b[g])
		hi := math.Max(a[g], b[g])
		spread := alpha * (hi - lo)
		lo = clampGene(lo-spread, r)
		hi = clampGene(hi+spread, r)

		a[g] = lo + rng.Float64()*(hi-lo)
		b[g] = lo + rng.Float64()*(hi-lo)
	}
}

// evaluate scores every candidate, bounded by cfg.Workers. Errors map to
// -Inf so the candidate can never win a tournament.
func (o *GeneticOptimizer) evaluate(population [][]float64, fitness FitnessFunc, result *GeneticResult) []float64 {
	scores := make([]float64, len(population))
	failures := make([]bool, len(population))

	var wg sync.WaitGroup
	sem := make(chan struct{}, o.cfg.Workers)
	for i, genes := range population {
		wg.Add(1)
		go func(idx int, g []float64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			score, err := fitness(paramsFromGenes(o.names, g))
			if err != nil || math.IsNaN(score) {
				scores[idx] = math.Inf(-1)
				failures[idx] = true
				return
			}
			scores[idx] = score
		}(i, genes)
	}
	wg.Wait()

	result.Evaluations += len(population)
	for _, failed := range failures {
		if failed {
			result.Failures++
		}
	}
	return scores
}

func (o *GeneticOptimizer) trackBest(population [][]float64, scores []float64, result *GeneticResult) {
	for i, score := range scores {
		if score > result.BestFitness {
			result.BestFitness = score
			result.BestParams = paramsFromGenes(o.names, population[i])
		}
	}
}

// selectTournament fills the next generation with winners of k=3
// tournaments over the offspring.
func (o *GeneticOptimizer) selectTournament(population [][]float64, scores []float64, rng *rand.Rand) [][]float64 {
	const tournamentSize = 3
	next := make([][]float64, len(population))
	for i := range next {
		best := rng.Intn(len(population))
		for t := 1; t < tournamentSize; t++ {
			challenger := rng.Intn(len(population))
			if scores[challenger] > scores[best] {
				best = challenger
			}
		}
		winner := make([]float64, len(population[best]))
		copy(winner, population[best])
		next[i] = winner
	}
	return next
}
