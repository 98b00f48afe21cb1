package strategy

import (
	"ForexQuantBot/internal/models"
)

// Columns holds computed indicator series keyed by name, aligned with the
// bar slice they were computed from.
type Columns map[string][]float64

// Strategy is the contract every trading strategy implements. Signal looks
// only at the bars it is given, so callers control the visible history.
type Strategy interface {
	Name() string
	Params() map[string]float64
	SetParams(params map[string]float64)

	// WarmupPeriod is the number of bars needed before Signal can fire.
	WarmupPeriod() int

	// Indicators computes the indicator columns for the given bars.
	Indicators(bars []models.Price) Columns

	// Signal returns +1 (long), -1 (short) or 0 (hold).
	Signal(bars []models.Price) int

	// Volatility returns a relative volatility estimate for position
	// sizing. The second return is false when no estimate is available.
	Volatility(bars []models.Price) (float64, bool)

	// StopLoss and TakeProfit return exit levels for a position entered at
	// entryPrice with the given side. The second return is false when the
	// strategy defines no level.
	StopLoss(bars []models.Price, entryPrice float64, side int) (float64, bool)
	TakeProfit(bars []models.Price, entryPrice float64, side int) (float64, bool)
}

// Factory builds a strategy from a parameter map.
type Factory func(params map[string]float64) (Strategy, error)

// Closes extracts the close series from a bar slice.
func Closes(bars []models.Price) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		out[i] = bars[i].Close
	}
	return out
}

// Highs extracts the high series from a bar slice.
func Highs(bars []models.Price) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		out[i] = bars[i].High
	}
	return out
}

// Lows extracts the low series from a bar slice.
func Lows(bars []models.Price) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		out[i] = bars[i].Low
	}
	return out
}
