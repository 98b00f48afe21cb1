package optimize

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

// Objective identifies one tracked optimization direction.
type Objective int

const (
	MaximizeReturn Objective = iota
	MinimizeRisk
	MaximizeSharpe
	MaximizeSortino
	MinimizeDrawdown
)

// Objectives holds the measured objective values of one candidate.
type Objectives struct {
	Return      float64
	Risk        float64
	Sharpe      float64
	Sortino     float64
	MaxDrawdown float64
}

// value returns the measured value for an objective and whether larger is
// better.
func (o Objectives) value(obj Objective) (float64, bool) {
	switch obj {
	case MaximizeReturn:
		return o.Return, true
	case MinimizeRisk:
		return o.Risk, false
	case MaximizeSharpe:
		return o.Sharpe, true
	case MaximizeSortino:
		return o.Sortino, true
	case MinimizeDrawdown:
		return o.MaxDrawdown, false
	}
	return 0, true
}

// ObjectiveFunc measures all objective values for a parameter vector.
type ObjectiveFunc func(params map[string]float64) (Objectives, error)

// ParetoSolution is one member of the final population with its dominance
// rank. Rank 0 is the Pareto front.
type ParetoSolution struct {
	Params     map[string]float64
	Objectives Objectives
	Rank       int
	Dominates  int
}

// MultiObjectiveResult carries the Pareto front plus evaluation counters.
type MultiObjectiveResult struct {
	Solutions   []ParetoSolution
	Evaluations int
	Failures    int
}

type MultiObjectiveConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	CrossoverRate  float64
	Workers        int
	Seed           int64
}

func DefaultMultiObjectiveConfig() MultiObjectiveConfig {
	return MultiObjectiveConfig{
		PopulationSize: 50,
		Generations:    30,
		MutationRate:   0.1,
		CrossoverRate:  0.7,
		Seed:           1,
	}
}

type candidate struct {
	genes []float64
	obj   Objectives
}

// MultiObjectiveOptimizer runs the same population substrate as the
// genetic optimizer while tracking several competing objectives, and
// returns the non-dominated set. Selection is by dominance rank only; no
// crowding-distance tie-break.
type MultiObjectiveOptimizer struct {
	bounds     Bounds
	names      []string
	objectives []Objective
	cfg        MultiObjectiveConfig
}

func NewMultiObjectiveOptimizer(bounds Bounds, objectives []Objective, cfg MultiObjectiveConfig) *MultiObjectiveOptimizer {
	if cfg.PopulationSize <= 0 {
		cfg.PopulationSize = 50
	}
	if cfg.Generations <= 0 {
		cfg.Generations = 30
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &MultiObjectiveOptimizer{
		bounds:     bounds,
		names:      bounds.names(),
		objectives: objectives,
		cfg:        cfg,
	}
}

// Optimize evolves the population for the fixed generation budget and
// returns the full rank-0 set of the final population. Failed evaluations
// are dropped from the population and counted, never aborting the run.
func (o *MultiObjectiveOptimizer) Optimize(fn ObjectiveFunc) (*MultiObjectiveResult, error) {
	if len(o.bounds) == 0 {
		return nil, ErrNoBounds
	}

	rng := rand.New(rand.NewSource(o.cfg.Seed))
	result := &MultiObjectiveResult{}

	genes := make([][]float64, o.cfg.PopulationSize)
	for i := range genes {
		genes[i] = o.randomGenes(rng)
	}
	population := o.evaluate(genes, fn, result)

	for gen := 0; gen < o.cfg.Generations; gen++ {
		ranks := o.paretoRanks(population)
		parents, parentRanks := o.selectByRank(population, ranks)
		offspring := o.breed(parents, parentRanks, rng)

		evaluated := o.evaluate(offspring, fn, result)
		population = append(parents, evaluated...)

		if gen%5 == 0 {
			front := 0
			for _, r := range ranks {
				if r == 0 {
					front++
				}
			}
			log.Debug().
				Int("generation", gen).
				Int("pareto_front_size", front).
				Msg("multi-objective optimizer progress")
		}
	}

	ranks := o.paretoRanks(population)
	for i, c := range population {
		if ranks[i] != 0 {
			continue
		}
		result.Solutions = append(result.Solutions, ParetoSolution{
			Params:     paramsFromGenes(o.names, c.genes),
			Objectives: c.obj,
			Rank:       0,
			Dominates:  o.countDominated(population, i),
		})
	}
	return result, nil
}

func (o *MultiObjectiveOptimizer) randomGenes(rng *rand.Rand) []float64 {
	genes := make([]float64, len(o.names))
	for i, name := range o.names {
		r := o.bounds[name]
		genes[i] = r.Min + rng.Float64()*(r.Max-r.Min)
	}
	return genes
}

func (o *MultiObjectiveOptimizer) evaluate(genes [][]float64, fn ObjectiveFunc, result *MultiObjectiveResult) []candidate {
	evaluated := make([]*candidate, len(genes))

	var wg sync.WaitGroup
	sem := make(chan struct{}, o.cfg.Workers)
	for i, g := range genes {
		wg.Add(1)
		go func(idx int, g []float64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			obj, err := fn(paramsFromGenes(o.names, g))
			if err != nil {
				return
			}
			evaluated[idx] = &candidate{genes: g, obj: obj}
		}(i, g)
	}
	wg.Wait()

	result.Evaluations += len(genes)
	out := make([]candidate, 0, len(genes))
	for _, c := range evaluated {
		if c == nil {
			result.Failures++
			continue
		}
		out = append(out, *c)
	}
	return out
}

// dominates reports whether a is at least as good as b on every tracked
// objective and strictly better on at least one.
func (o *MultiObjectiveOptimizer) dominates(a, b Objectives) bool {
	strictlyBetter := false
	for _, obj := range o.objectives {
		av, maximize := a.value(obj)
		bv, _ := b.value(obj)
		if !maximize {
			av, bv = -av, -bv
		}
		if av < bv {
			return false
		}
		if av > bv {
			strictlyBetter = true
		}
	}
	return strictlyBetter
}

// paretoRanks assigns each candidate its front index by iterative peeling:
// the non-dominated subset of the remaining population is rank 0, then the
// next peel is rank 1, and so on.
func (o *MultiObjectiveOptimizer) paretoRanks(population []candidate) []int {
	ranks := make([]int, len(population))
	remaining := make([]int, len(population))
	for i := range remaining {
		remaining[i] = i
	}

	rank := 0
	for len(remaining) > 0 {
		var front, dominated []int
		for _, i := range remaining {
			isDominated := false
			for _, j := range remaining {
				if i == j {
					continue
				}
				if o.dominates(population[j].obj, population[i].obj) {
					isDominated = true
					break
				}
			}
			if isDominated {
				dominated = append(dominated, i)
			} else {
				front = append(front, i)
			}
		}
		for _, i := range front {
			ranks[i] = rank
		}
		remaining = dominated
		rank++
	}
	return ranks
}

func (o *MultiObjectiveOptimizer) countDominated(population []candidate, idx int) int {
	count := 0
	for j := range population {
		if j != idx && o.dominates(population[idx].obj, population[j].obj) {
			count++
		}
	}
	return count
}

// selectByRank keeps the PopulationSize candidates with the lowest ranks,
// preserving population order within equal ranks.
func (o *MultiObjectiveOptimizer) selectByRank(population []candidate, ranks []int) ([]candidate, []int) {
	order := make([]int, len(population))
	for i := range order {
		order[i] = i
	}
	// Stable insertion by rank keeps runs reproducible.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && ranks[order[j]] < ranks[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	n := o.cfg.PopulationSize
	if n > len(order) {
		n = len(order)
	}
	selected := make([]candidate, n)
	selectedRanks := make([]int, n)
	for i := 0; i < n; i++ {
		selected[i] = population[order[i]]
		selectedRanks[i] = ranks[order[i]]
	}
	return selected, selectedRanks
}

// breed produces PopulationSize offspring via rank tournaments, blend
// crossover and per-gene uniform mutation.
func (o *MultiObjectiveOptimizer) breed(parents []candidate, ranks []int, rng *rand.Rand) [][]float64 {
	if len(parents) == 0 {
		return nil
	}
	const alpha = 0.5

	offspring := make([][]float64, 0, o.cfg.PopulationSize)
	for len(offspring) < o.cfg.PopulationSize {
		p1 := o.tournament(ranks, rng)
		p2 := o.tournament(ranks, rng)

		child1 := make([]float64, len(o.names))
		child2 := make([]float64, len(o.names))
		for g, name := range o.names {
			r := o.bounds[name]
			a, b := parents[p1].genes[g], parents[p2].genes[g]
			if rng.Float64() < o.cfg.CrossoverRate {
				lo := math.Min(a, b)
				hi := math.Max(a, b)
				spread := alpha * (hi - lo)
				lo = clampGene(lo-spread, r)
				hi = clampGene(hi+spread, r)
				child1[g] = lo + rng.Float64()*(hi-lo)
				child2[g] = lo + rng.Float64()*(hi-lo)
			} else {
				child1[g] = a
				child2[g] = b
			}
			if rng.Float64() < o.cfg.MutationRate {
				child1[g] = r.Min + rng.Float64()*(r.Max-r.Min)
			}
			if rng.Float64() < o.cfg.MutationRate {
				child2[g] = r.Min + rng.Float64()*(r.Max-r.Min)
			}
		}

		offspring = append(offspring, child1)
		if len(offspring) < o.cfg.PopulationSize {
			offspring = append(offspring, child2)
		}
	}
	return offspring
}

// tournament returns the index with the lowest rank among k=3 draws.
func (o *MultiObjectiveOptimizer) tournament(ranks []int, rng *rand.Rand) int {
	const tournamentSize = 3
	best := rng.Intn(len(ranks))
	for t := 1; t < tournamentSize; t++ {
		challenger := rng.Intn(len(ranks))
		if ranks[challenger] < ranks[best] {
			best = challenger
		}
	}
	return best
}
