package config

import "time"

type config struct {
	Exchange ExchangeConfig
	Database DatabaseConfig
	Backtest BacktestConfig
	Risk     RiskConfig
	Symbols  []string
}

type ExchangeConfig struct {
	APIKey    string
	SecretKey string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type BacktestConfig struct {
	InitialBalance float64
	TimeFrame      string
	StartTime      time.Time
	EndTime        time.Time
}

type RiskConfig struct {
	BaseRiskPct    float64
	MaxRiskPct     float64
	DailyRiskCap   float64
	MaxDrawdownPct float64
	MinTradeAmount float64
	MaxTradeAmount float64
}
