package backtest

import (
	"errors"
	"time"
)

var (
	// ErrDataUnavailable is returned when the bar series is empty.
	ErrDataUnavailable = errors.New("no price data available")
)

// Position is one open position, exclusively owned by a Portfolio.
type Position struct {
	Symbol        string
	Side          int // +1 long, -1 short
	Quantity      float64
	EntryPrice    float64
	CurrentPrice  float64
	UnrealizedPnL float64
	StopLoss      float64
	HasStopLoss   bool
	TakeProfit    float64
	HasTakeProfit bool
	EntryTime     time.Time
}

// Trade is the immutable record of a closed position.
type Trade struct {
	Symbol     string
	Side       int
	Quantity   float64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	PnL        float64
	Strategy   string
	Notes      string
}

// EquityPoint is one sample of the equity curve.
type EquityPoint struct {
	Timestamp time.Time
	Balance   float64
	Equity    float64
}

// Result is the full outcome of one backtest run.
type Result struct {
	RunID          string
	Symbol         string
	Strategy       string
	StartDate      time.Time
	EndDate        time.Time
	InitialBalance float64
	FinalBalance   float64
	FinalEquity    float64
	TotalReturn    float64
	Metrics        Metrics
	EquityCurve    []EquityPoint
	Trades         []Trade
}

// Exit reasons recorded on trades.
const (
	NoteStopLoss   = "stop_loss"
	NoteTakeProfit = "take_profit"
	NoteReversal   = "reversal"
	NoteEndOfData  = "end_of_data"
)
