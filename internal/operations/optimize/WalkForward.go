package optimize

import (
	"github.com/rs/zerolog/log"

	"ForexQuantBot/internal/models"
	"ForexQuantBot/internal/operations/backtest"
	"ForexQuantBot/internal/services/risk"
	"ForexQuantBot/internal/services/strategy"
)

// WalkForwardConfig sizes the rolling train/test windows in bars.
type WalkForwardConfig struct {
	TrainPeriod   int
	TestPeriod    int
	StepSize      int
	MinWindowFrac float64 // minimum usable fraction of a window, 0 = 0.8
}

func DefaultWalkForwardConfig() WalkForwardConfig {
	return WalkForwardConfig{
		TrainPeriod:   200,
		TestPeriod:    60,
		StepSize:      30,
		MinWindowFrac: 0.8,
	}
}

// Window holds inclusive bar-index bounds of one train/test split. The test
// span always starts on the bar after the train span ends.
type Window struct {
	TrainStart int
	TrainEnd   int
	TestStart  int
	TestEnd    int
}

// OptimizeFunc re-fits strategy parameters on a training slice. The seed
// parameters are the caller's starting point; the returned map is used for
// the paired test window.
type OptimizeFunc func(train []models.Price, seedParams map[string]float64) (map[string]float64, error)

// WindowResult pairs one window with the parameters chosen on its training
// span and the out-of-sample backtest over its test span.
type WindowResult struct {
	Window Window
	Params map[string]float64
	Result *backtest.Result
}

// WalkForwardResult aggregates the out-of-sample performance of all
// completed windows.
type WalkForwardResult struct {
	Windows           []WindowResult
	SkippedWindows    int
	MeanReturn        float64
	StdReturn         float64
	MeanDrawdown      float64
	MaxDrawdown       float64
	WinRate           float64
	ProfitableWindows int
}

// WalkForwardAnalyzer rolls an optimize-then-test split across a bar
// series. Parameters are only ever fitted on bars that precede the bars
// they are tested on.
type WalkForwardAnalyzer struct {
	cfg    WalkForwardConfig
	engine *backtest.Engine
}

func NewWalkForwardAnalyzer(cfg WalkForwardConfig) *WalkForwardAnalyzer {
	if cfg.StepSize <= 0 {
		cfg.StepSize = cfg.TestPeriod
	}
	if cfg.MinWindowFrac <= 0 || cfg.MinWindowFrac > 1 {
		cfg.MinWindowFrac = 0.8
	}
	return &WalkForwardAnalyzer{cfg: cfg, engine: backtest.NewEngine()}
}

// Windows lays out the train/test splits over n bars. A trailing window
// whose truncated train or test span falls below MinWindowFrac of its
// configured length is dropped.
func (a *WalkForwardAnalyzer) Windows(n int) []Window {
	minTrain := int(float64(a.cfg.TrainPeriod) * a.cfg.MinWindowFrac)
	minTest := int(float64(a.cfg.TestPeriod) * a.cfg.MinWindowFrac)

	var windows []Window
	for start := 0; start+minTrain <= n; start += a.cfg.StepSize {
		w := Window{
			TrainStart: start,
			TrainEnd:   start + a.cfg.TrainPeriod - 1,
			TestStart:  start + a.cfg.TrainPeriod,
		}
		w.TestEnd = w.TestStart + a.cfg.TestPeriod - 1

		if w.TrainEnd > n-1 {
			w.TrainEnd = n - 1
		}
		if w.TestEnd > n-1 {
			w.TestEnd = n - 1
		}
		if w.TrainEnd-w.TrainStart+1 < minTrain || w.TestStart > n-1 || w.TestEnd-w.TestStart+1 < minTest {
			log.Debug().
				Int("train_start", w.TrainStart).
				Int("bars", n).
				Msg("dropping short trailing window")
			continue
		}
		windows = append(windows, w)
	}
	return windows
}

// Analyze runs the optimize-then-test loop over every window and aggregates
// the out-of-sample results. A window whose optimization or backtest fails
// is logged, counted and skipped; the remaining windows still aggregate.
func (a *WalkForwardAnalyzer) Analyze(factory strategy.Factory, bars []models.Price,
	seedParams map[string]float64, optimize OptimizeFunc,
	initialBalance float64, riskCfg risk.Config) (*WalkForwardResult, error) {

	windows := a.Windows(len(bars))
	if len(windows) == 0 {
		return nil, ErrInsufficientData
	}

	result := &WalkForwardResult{}
	for _, w := range windows {
		train := bars[w.TrainStart : w.TrainEnd+1]
		test := bars[w.TestStart : w.TestEnd+1]

		params := seedParams
		if optimize != nil {
			fitted, err := optimize(train, seedParams)
			if err != nil {
				log.Warn().Err(err).
					Int("train_start", w.TrainStart).
					Msg("window optimization failed, skipping window")
				result.SkippedWindows++
				continue
			}
			params = fitted
		}

		strat, err := factory(params)
		if err != nil {
			log.Warn().Err(err).
				Int("train_start", w.TrainStart).
				Msg("strategy construction failed, skipping window")
			result.SkippedWindows++
			continue
		}

		run, err := a.engine.Run(strat, test, initialBalance, riskCfg)
		if err != nil {
			log.Warn().Err(err).
				Int("test_start", w.TestStart).
				Msg("window backtest failed, skipping window")
			result.SkippedWindows++
			continue
		}

		result.Windows = append(result.Windows, WindowResult{
			Window: w,
			Params: params,
			Result: run,
		})
	}

	a.aggregate(result)
	log.Debug().
		Int("windows", len(result.Windows)).
		Int("skipped", result.SkippedWindows).
		Float64("mean_return", result.MeanReturn).
		Msg("walk-forward analysis finished")
	return result, nil
}

func (a *WalkForwardAnalyzer) aggregate(result *WalkForwardResult) {
	if len(result.Windows) == 0 {
		return
	}

	returns := make([]float64, 0, len(result.Windows))
	drawdowns := make([]float64, 0, len(result.Windows))
	totalTrades, winningTrades := 0, 0

	for _, w := range result.Windows {
		returns = append(returns, w.Result.TotalReturn)
		drawdowns = append(drawdowns, w.Result.Metrics.MaxDrawdown)
		totalTrades += w.Result.Metrics.TotalTrades
		winningTrades += w.Result.Metrics.WinningTrades
		if w.Result.TotalReturn > 0 {
			result.ProfitableWindows++
		}
	}

	result.MeanReturn = mean(returns)
	result.StdReturn = std(returns)
	result.MeanDrawdown = mean(drawdowns)
	for _, dd := range drawdowns {
		if dd > result.MaxDrawdown {
			result.MaxDrawdown = dd
		}
	}
	if totalTrades > 0 {
		result.WinRate = float64(winningTrades) / float64(totalTrades)
	}
}
