package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ForexQuantBot/config"
	"ForexQuantBot/internal/handlers"
	"ForexQuantBot/internal/models"
	"ForexQuantBot/internal/operations/optimize"
	"ForexQuantBot/internal/repositories"
	"ForexQuantBot/internal/services/risk"
	"ForexQuantBot/internal/services/strategy"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup database
	db := setupDatabase(cfg.Database)

	// Initialize repositories
	priceRepo := repositories.NewPriceRepository(db)
	resultRepo := repositories.NewResultRepository(db)

	// Initialize Binance client
	futuresClient := futures.NewClient(cfg.Exchange.APIKey, cfg.Exchange.SecretKey)

	// Initialize price handler
	priceHandler := handlers.NewPriceHandler(futuresClient, priceRepo, cfg.Symbols)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Backfill history and keep recording
	if err := priceHandler.Start(ctx, cfg.Backtest.TimeFrame, 30); err != nil {
		log.Fatal().Err(err).Msg("failed to start price handler")
	}
	log.Info().Msg("price recording started")

	// Initialize strategy and risk components
	registry := strategy.DefaultRegistry()
	riskCfg := riskConfig(cfg.Risk)
	backtestHandler := handlers.NewBacktestHandler(priceRepo, resultRepo, registry, riskCfg)

	start, end := backtestRange(cfg.Backtest)
	strategyName := "sma_crossover"

	for _, symbol := range cfg.Symbols {
		bars, err := backtestHandler.LoadBars(symbol, cfg.Backtest.TimeFrame, start, end)
		if err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("failed to load bars")
			continue
		}
		if len(bars) < 100 {
			log.Warn().Str("symbol", symbol).Int("bars", len(bars)).Msg("not enough bars, skipping symbol")
			continue
		}

		runSuite(backtestHandler, strategyName, symbol, bars, cfg.Backtest.InitialBalance)
	}

	// Handle shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Info().Msg("shutting down")
	cancel()
	time.Sleep(time.Second * 2) // Give time for cleanup
	log.Info().Msg("shutdown complete")
}

// runSuite runs the full validation pipeline for one symbol: baseline
// backtest, genetic search, walk-forward validation, Monte Carlo risk and
// parameter sensitivity.
func runSuite(h *handlers.BacktestHandler, strategyName, symbol string, bars []models.Price, initialBalance float64) {
	baseline, err := h.RunBacktest(strategyName, nil, bars, initialBalance)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("backtest failed")
		return
	}
	printResult("Baseline", baseline.Symbol, baseline.TotalReturn, baseline.Metrics.MaxDrawdown,
		baseline.Metrics.WinRate, baseline.Metrics.SharpeRatio, baseline.Metrics.TotalTrades)

	bounds := searchBounds(strategyName)
	gaCfg := optimize.DefaultGeneticConfig()

	best, err := h.OptimizeStrategy(strategyName, bounds, bars, initialBalance, gaCfg)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("optimization failed")
		return
	}
	fmt.Printf("\n=== Genetic Search (%s) ===\n", symbol)
	fmt.Printf("Best Fitness: %.4f (%d evaluations, %d failed)\n", best.BestFitness, best.Evaluations, best.Failures)
	for name, v := range best.BestParams {
		fmt.Printf("  %s = %.2f\n", name, v)
	}

	optimized, err := h.RunBacktest(strategyName, best.BestParams, bars, initialBalance)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("optimized backtest failed")
		return
	}
	printResult("Optimized", optimized.Symbol, optimized.TotalReturn, optimized.Metrics.MaxDrawdown,
		optimized.Metrics.WinRate, optimized.Metrics.SharpeRatio, optimized.Metrics.TotalTrades)

	wf, err := h.WalkForward(strategyName, bounds, bars, best.BestParams, initialBalance,
		gaCfg, optimize.DefaultWalkForwardConfig())
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("walk-forward failed")
	} else {
		fmt.Printf("\n=== Walk-Forward (%s) ===\n", symbol)
		fmt.Printf("Windows: %d (%d skipped), Profitable: %d\n",
			len(wf.Windows), wf.SkippedWindows, wf.ProfitableWindows)
		fmt.Printf("Mean Return: %.2f%% (std %.2f%%)\n", wf.MeanReturn*100, wf.StdReturn*100)
		fmt.Printf("Mean Drawdown: %.2f%%, Max Drawdown: %.2f%%\n", wf.MeanDrawdown*100, wf.MaxDrawdown*100)
	}

	mc, err := h.MonteCarloRisk(optimized, optimize.DefaultMonteCarloConfig())
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("monte carlo failed")
	} else {
		fmt.Printf("\n=== Monte Carlo (%s) ===\n", symbol)
		fmt.Printf("Mean Final Balance: $%.2f\n", mc.MeanFinalBalance)
		fmt.Printf("VaR(95%%): %.2f%%, CVaR: %.2f%%\n", mc.VaR*100, mc.CVaR*100)
		fmt.Printf("Probability of Profit: %.1f%%\n", mc.ProbabilityOfProfit*100)
	}

	sens, err := h.AnalyzeSensitivity(strategyName, best.BestParams, bounds, bars,
		initialBalance, optimize.DefaultSensitivityConfig())
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("sensitivity analysis failed")
	} else {
		fmt.Printf("\n=== Sensitivity (%s) ===\n", symbol)
		for _, s := range sens {
			fmt.Printf("  %-18s score %.4f, optimal %.2f, range %.4f\n",
				s.ParameterName, s.SensitivityScore, s.OptimalValue, s.ImpactRange)
		}
	}
}

func printResult(label, symbol string, totalReturn, maxDD, winRate, sharpe float64, trades int) {
	fmt.Printf("\n=== %s Backtest (%s) ===\n", label, symbol)
	fmt.Printf("Total Return: %.2f%%\n", totalReturn*100)
	fmt.Printf("Max Drawdown: %.2f%%\n", maxDD*100)
	fmt.Printf("Win Rate: %.2f%% over %d trades\n", winRate*100, trades)
	fmt.Printf("Sharpe Ratio: %.2f\n", sharpe)
}

// searchBounds returns the optimization ranges per strategy.
func searchBounds(strategyName string) optimize.Bounds {
	switch strategyName {
	case "rsi_reversion":
		return optimize.Bounds{
			"rsi_period":       {Min: 5, Max: 30},
			"oversold_level":   {Min: 15, Max: 40},
			"overbought_level": {Min: 60, Max: 85},
			"trend_period":     {Min: 20, Max: 100},
		}
	default:
		return optimize.Bounds{
			"fast_period": {Min: 5, Max: 50},
			"slow_period": {Min: 20, Max: 200},
			"atr_period":  {Min: 5, Max: 30},
		}
	}
}

func riskConfig(rc config.RiskConfig) risk.Config {
	c := risk.DefaultConfig()
	c.BaseRiskPct = rc.BaseRiskPct
	c.MaxRiskPct = rc.MaxRiskPct
	c.DailyRiskCap = rc.DailyRiskCap
	c.MaxDrawdownPct = rc.MaxDrawdownPct
	c.MinTradeAmount = rc.MinTradeAmount
	c.MaxTradeAmount = rc.MaxTradeAmount
	return c
}

func backtestRange(bc config.BacktestConfig) (time.Time, time.Time) {
	start, end := bc.StartTime, bc.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -30)
	}
	return start, end
}

func setupDatabase(dbConfig config.DatabaseConfig) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto migrate database schemas
	err = db.AutoMigrate(&models.Price{}, &models.BacktestRecord{}, &models.TradeRecord{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	return db
}
