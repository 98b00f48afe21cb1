package optimize

import (
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// MonteCarloConfig controls the path simulation.
type MonteCarloConfig struct {
	NSimulations    int
	ConfidenceLevel float64 // e.g. 0.95 for 95% VaR
	Workers         int
	Seed            int64
}

func DefaultMonteCarloConfig() MonteCarloConfig {
	return MonteCarloConfig{
		NSimulations:    1000,
		ConfidenceLevel: 0.95,
		Seed:            1,
	}
}

// SimulationStats summarizes the distribution of simulated equity paths.
type SimulationStats struct {
	MeanFinalBalance    float64
	StdFinalBalance     float64
	MeanReturn          float64
	StdReturn           float64
	MeanDrawdown        float64
	MaxDrawdown         float64
	VaR                 float64 // return at the (1 - confidence) percentile
	CVaR                float64 // mean of returns at or below VaR
	Percentile5         float64 // final balance percentiles
	Percentile95        float64
	ProbabilityOfProfit float64
}

// StressResult is one scenario's outcome next to the unscaled baseline.
type StressResult struct {
	Scenario       string
	ReturnScale    float64
	Stats          SimulationStats
	LossVsBaseline float64 // baseline mean return minus scenario mean return
}

// MonteCarloSimulator fits a normal distribution to an observed returns
// series and resamples equity paths from it. Each path draws from its own
// generator seeded from the configured seed and the path index, so results
// are reproducible regardless of worker scheduling.
type MonteCarloSimulator struct {
	cfg MonteCarloConfig
}

func NewMonteCarloSimulator(cfg MonteCarloConfig) *MonteCarloSimulator {
	if cfg.NSimulations <= 0 {
		cfg.NSimulations = 1000
	}
	if cfg.ConfidenceLevel <= 0 || cfg.ConfidenceLevel >= 1 {
		cfg.ConfidenceLevel = 0.95
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &MonteCarloSimulator{cfg: cfg}
}

// Simulate runs NSimulations paths of nPeriods i.i.d. normal returns each,
// compounding from initialBalance. At least two observed returns are needed
// to fit the distribution.
func (s *MonteCarloSimulator) Simulate(returns []float64, initialBalance float64, nPeriods int) (*SimulationStats, error) {
	if len(returns) < 2 {
		return nil, ErrInsufficientData
	}
	if nPeriods <= 0 {
		nPeriods = len(returns)
	}

	mu := mean(returns)
	sigma := std(returns)

	finals := make([]float64, s.cfg.NSimulations)
	pathReturns := make([]float64, s.cfg.NSimulations)
	drawdowns := make([]float64, s.cfg.NSimulations)

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.cfg.Workers)
	for i := 0; i < s.cfg.NSimulations; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rng := rand.New(rand.NewSource(s.cfg.Seed + int64(idx)))
			equity := initialBalance
			peak := equity
			maxDD := 0.0
			for p := 0; p < nPeriods; p++ {
				equity *= 1 + mu + sigma*rng.NormFloat64()
				if equity > peak {
					peak = equity
				}
				if peak > 0 {
					if dd := (peak - equity) / peak; dd > maxDD {
						maxDD = dd
					}
				}
			}
			finals[idx] = equity
			if initialBalance != 0 {
				pathReturns[idx] = (equity - initialBalance) / initialBalance
			}
			drawdowns[idx] = maxDD
		}(i)
	}
	wg.Wait()

	stats := &SimulationStats{
		MeanFinalBalance: mean(finals),
		StdFinalBalance:  std(finals),
		MeanReturn:       mean(pathReturns),
		StdReturn:        std(pathReturns),
		MeanDrawdown:     mean(drawdowns),
		Percentile5:      percentile(finals, 5),
		Percentile95:     percentile(finals, 95),
	}
	for _, dd := range drawdowns {
		if dd > stats.MaxDrawdown {
			stats.MaxDrawdown = dd
		}
	}

	stats.VaR = percentile(pathReturns, (1-s.cfg.ConfidenceLevel)*100)
	tail := 0.0
	n := 0
	for _, r := range pathReturns {
		if r <= stats.VaR {
			tail += r
			n++
		}
	}
	if n > 0 {
		stats.CVaR = tail / float64(n)
	} else {
		stats.CVaR = stats.VaR
	}

	profitable := 0
	for _, f := range finals {
		if f > initialBalance {
			profitable++
		}
	}
	stats.ProbabilityOfProfit = float64(profitable) / float64(s.cfg.NSimulations)

	log.Debug().
		Int("simulations", s.cfg.NSimulations).
		Int("periods", nPeriods).
		Float64("mean_return", stats.MeanReturn).
		Float64("var", stats.VaR).
		Msg("monte carlo simulation finished")

	return stats, nil
}

// StressTest reruns the simulation with the observed returns scaled by each
// scenario factor and reports mean-return loss against the unscaled
// baseline. Scenarios run in name order.
func (s *MonteCarloSimulator) StressTest(returns []float64, scenarios map[string]float64, initialBalance float64, nPeriods int) ([]StressResult, error) {
	baseline, err := s.Simulate(returns, initialBalance, nPeriods)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]StressResult, 0, len(names))
	for _, name := range names {
		scale := scenarios[name]
		scaled := make([]float64, len(returns))
		for i, r := range returns {
			scaled[i] = r * scale
		}
		stats, err := s.Simulate(scaled, initialBalance, nPeriods)
		if err != nil {
			return nil, err
		}
		results = append(results, StressResult{
			Scenario:       name,
			ReturnScale:    scale,
			Stats:          *stats,
			LossVsBaseline: baseline.MeanReturn - stats.MeanReturn,
		})
	}
	return results, nil
}
