package handlers

import (
	"time"

	"github.com/rs/zerolog/log"

	"ForexQuantBot/internal/models"
	"ForexQuantBot/internal/operations/backtest"
	"ForexQuantBot/internal/operations/optimize"
	"ForexQuantBot/internal/repositories"
	"ForexQuantBot/internal/services/risk"
	"ForexQuantBot/internal/services/strategy"
)

// BacktestHandler ties the price history, the simulation engine, the
// optimization suite and the result store together. All of its entry points
// work on bars already loaded from the repository, so the same handler
// serves stored and freshly fetched data.
type BacktestHandler struct {
	priceRepo  *repositories.PriceRepository
	resultRepo *repositories.ResultRepository
	registry   *strategy.Registry
	engine     *backtest.Engine
	riskCfg    risk.Config
}

func NewBacktestHandler(priceRepo *repositories.PriceRepository, resultRepo *repositories.ResultRepository,
	registry *strategy.Registry, riskCfg risk.Config) *BacktestHandler {

	return &BacktestHandler{
		priceRepo:  priceRepo,
		resultRepo: resultRepo,
		registry:   registry,
		engine:     backtest.NewEngine(),
		riskCfg:    riskCfg,
	}
}

// LoadBars reads the stored bar series for a symbol and timeframe.
func (h *BacktestHandler) LoadBars(symbol, timeFrame string, start, end time.Time) ([]models.Price, error) {
	return h.priceRepo.GetPricesByTimeFrame(symbol, timeFrame, start, end)
}

// factory adapts a registered strategy name into a parameter factory.
func (h *BacktestHandler) factory(name string) strategy.Factory {
	return func(params map[string]float64) (strategy.Strategy, error) {
		return h.registry.Create(name, params)
	}
}

// RunBacktest simulates the named strategy over the bars and stores the
// outcome. A storage failure is logged but does not void the run.
func (h *BacktestHandler) RunBacktest(strategyName string, params map[string]float64,
	bars []models.Price, initialBalance float64) (*backtest.Result, error) {

	strat, err := h.registry.Create(strategyName, params)
	if err != nil {
		return nil, err
	}

	result, err := h.engine.Run(strat, bars, initialBalance, h.riskCfg)
	if err != nil {
		return nil, err
	}

	if h.resultRepo != nil {
		if err := h.resultRepo.SaveResult(result); err != nil {
			log.Error().Err(err).Str("run_id", result.RunID).Msg("error saving backtest result")
		}
	}
	return result, nil
}

// fitness builds the genetic fitness function: total return of a backtest
// with the candidate parameters.
func (h *BacktestHandler) fitness(strategyName string, bars []models.Price, initialBalance float64) optimize.FitnessFunc {
	return func(params map[string]float64) (float64, error) {
		strat, err := h.registry.Create(strategyName, params)
		if err != nil {
			return 0, err
		}
		result, err := h.engine.Run(strat, bars, initialBalance, h.riskCfg)
		if err != nil {
			return 0, err
		}
		return result.TotalReturn, nil
	}
}

// OptimizeStrategy searches the parameter bounds with the genetic optimizer,
// scoring candidates by backtest total return.
func (h *BacktestHandler) OptimizeStrategy(strategyName string, bounds optimize.Bounds,
	bars []models.Price, initialBalance float64, cfg optimize.GeneticConfig) (*optimize.GeneticResult, error) {

	optimizer := optimize.NewGeneticOptimizer(bounds, cfg)
	return optimizer.Optimize(h.fitness(strategyName, bars, initialBalance))
}

// OptimizeMultiObjective searches the bounds against several objectives at
// once and returns the Pareto front.
func (h *BacktestHandler) OptimizeMultiObjective(strategyName string, bounds optimize.Bounds,
	objectives []optimize.Objective, bars []models.Price, initialBalance float64,
	cfg optimize.MultiObjectiveConfig) (*optimize.MultiObjectiveResult, error) {

	optimizer := optimize.NewMultiObjectiveOptimizer(bounds, objectives, cfg)
	return optimizer.Optimize(func(params map[string]float64) (optimize.Objectives, error) {
		strat, err := h.registry.Create(strategyName, params)
		if err != nil {
			return optimize.Objectives{}, err
		}
		result, err := h.engine.Run(strat, bars, initialBalance, h.riskCfg)
		if err != nil {
			return optimize.Objectives{}, err
		}
		return optimize.Objectives{
			Return:      result.TotalReturn,
			Risk:        result.Metrics.MaxDrawdown,
			Sharpe:      result.Metrics.SharpeRatio,
			Sortino:     result.Metrics.SortinoRatio,
			MaxDrawdown: result.Metrics.MaxDrawdown,
		}, nil
	})
}

// WalkForward validates the named strategy out of sample: each window's
// parameters are re-fitted on the training span with the genetic optimizer
// and tested on the bars that follow it.
func (h *BacktestHandler) WalkForward(strategyName string, bounds optimize.Bounds,
	bars []models.Price, seedParams map[string]float64, initialBalance float64,
	gaCfg optimize.GeneticConfig, wfCfg optimize.WalkForwardConfig) (*optimize.WalkForwardResult, error) {

	analyzer := optimize.NewWalkForwardAnalyzer(wfCfg)
	refit := func(train []models.Price, seed map[string]float64) (map[string]float64, error) {
		optimizer := optimize.NewGeneticOptimizer(bounds, gaCfg)
		result, err := optimizer.Optimize(h.fitness(strategyName, train, initialBalance))
		if err != nil {
			return nil, err
		}
		if result.BestParams == nil {
			return seed, nil
		}
		return result.BestParams, nil
	}

	return analyzer.Analyze(h.factory(strategyName), bars, seedParams, refit, initialBalance, h.riskCfg)
}

// MonteCarloRisk resamples the per-bar equity returns of a finished run and
// reports the tail-risk statistics of the simulated paths.
func (h *BacktestHandler) MonteCarloRisk(result *backtest.Result, cfg optimize.MonteCarloConfig) (*optimize.SimulationStats, error) {
	returns := equityReturns(result.EquityCurve)
	sim := optimize.NewMonteCarloSimulator(cfg)
	return sim.Simulate(returns, result.InitialBalance, len(returns))
}

// StressTest reruns the Monte Carlo simulation under scaled-return
// scenarios, e.g. {"mild": 0.8, "severe": 0.5}.
func (h *BacktestHandler) StressTest(result *backtest.Result, scenarios map[string]float64,
	cfg optimize.MonteCarloConfig) ([]optimize.StressResult, error) {

	returns := equityReturns(result.EquityCurve)
	sim := optimize.NewMonteCarloSimulator(cfg)
	return sim.StressTest(returns, scenarios, result.InitialBalance, len(returns))
}

// AnalyzeSensitivity sweeps each parameter of the named strategy through
// its range, scoring every point by backtest total return.
func (h *BacktestHandler) AnalyzeSensitivity(strategyName string, baseParams map[string]float64,
	ranges optimize.Bounds, bars []models.Price, initialBalance float64,
	cfg optimize.SensitivityConfig) ([]optimize.SensitivityResult, error) {

	analyzer := optimize.NewSensitivityAnalyzer(cfg)
	perf := func(strat strategy.Strategy) (float64, error) {
		result, err := h.engine.Run(strat, bars, initialBalance, h.riskCfg)
		if err != nil {
			return 0, err
		}
		return result.TotalReturn, nil
	}
	return analyzer.Analyze(h.factory(strategyName), baseParams, ranges, perf)
}

func equityReturns(curve []backtest.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, curve[i].Equity/prev-1)
	}
	return returns
}
