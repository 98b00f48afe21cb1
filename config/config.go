package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func Load() (*config, error) {
	if err := godotenv.Load(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	return &config{
		Exchange: ExchangeConfig{
			APIKey:    os.Getenv("BINANCE_API_KEY"),
			SecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     EnvtoInt(os.Getenv("DB_PORT")),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Backtest: BacktestConfig{
			InitialBalance: envToFloat(os.Getenv("BACKTEST_INITIAL_BALANCE"), 10000.0),
			TimeFrame:      envOrDefault("BACKTEST_TIMEFRAME", "1h"),
			StartTime:      envToTime(os.Getenv("BACKTEST_START")),
			EndTime:        envToTime(os.Getenv("BACKTEST_END")),
		},
		Risk: RiskConfig{
			BaseRiskPct:    envToFloat(os.Getenv("RISK_BASE_PCT"), 0.02),
			MaxRiskPct:     envToFloat(os.Getenv("RISK_MAX_PCT"), 0.05),
			DailyRiskCap:   envToFloat(os.Getenv("RISK_DAILY_CAP"), 0.05),
			MaxDrawdownPct: envToFloat(os.Getenv("RISK_MAX_DRAWDOWN_PCT"), 0.25),
			MinTradeAmount: envToFloat(os.Getenv("RISK_MIN_TRADE_AMOUNT"), 10.0),
			MaxTradeAmount: envToFloat(os.Getenv("RISK_MAX_TRADE_AMOUNT"), 100.0),
		},
		Symbols: getSymbols(),
	}, nil
}

// helper env(string) to int
func EnvtoInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

func envToFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envToTime(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// helper to get symbols
func getSymbols() []string {
	symbols := os.Getenv("TRADING_SYMBOLS")
	if symbols == "" {
		return []string{"EURUSDT", "GBPUSDT"} // Default pairs if none specified
	}
	return strings.Split(symbols, ",")
}
