package models

import (
	"time"
)

// BacktestRecord is the flattened outcome of one backtest run, keyed by a
// run ID so trades and equity samples can be joined externally.
type BacktestRecord struct {
	ID             uint      `gorm:"primaryKey"`
	RunID          string    `gorm:"index;not null"`
	Symbol         string    `gorm:"index;not null"`
	Strategy       string    `gorm:"not null"`
	StartDate      time.Time `gorm:"not null"`
	EndDate        time.Time `gorm:"not null"`
	InitialBalance float64   `gorm:"type:decimal(20,8)"`
	FinalBalance   float64   `gorm:"type:decimal(20,8)"`
	FinalEquity    float64   `gorm:"type:decimal(20,8)"`
	TotalReturn    float64
	MaxDrawdown    float64
	WinRate        float64
	ProfitFactor   float64
	SharpeRatio    float64
	SortinoRatio   float64
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	CreatedAt      time.Time
}

func (BacktestRecord) TableName() string {
	return "backtest_records"
}

// TradeRecord is one closed trade belonging to a backtest run.
type TradeRecord struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      string `gorm:"index;not null"`
	Symbol     string `gorm:"index;not null"`
	Side       int
	Quantity   float64 `gorm:"type:decimal(20,8)"`
	EntryPrice float64 `gorm:"type:decimal(20,8)"`
	ExitPrice  float64 `gorm:"type:decimal(20,8)"`
	EntryTime  time.Time
	ExitTime   time.Time
	PnL        float64 `gorm:"type:decimal(20,8)"`
	Strategy   string
	Notes      string
	CreatedAt  time.Time
}

func (TradeRecord) TableName() string {
	return "trade_records"
}
