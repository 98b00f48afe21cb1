package risk

import (
	"math"
)

const maxRecentTrades = 20

// Engine sizes trades from the configured bounds and tracks recent trade
// outcomes, daily loss and drawdown state. One engine belongs to one
// backtest run; it is not safe for concurrent use.
type Engine struct {
	cfg        Config
	dailyPnL   float64
	peakEquity float64
	throttled  bool
	recentPnL  []float64
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// PositionSize computes the trade amount for the current balance. The risk
// budget starts at balance * BaseRiskPct and is tightened by the Kelly
// fraction of the recent win rate and by volatility targeting, then clamped
// to the configured trade bounds. Degenerate inputs fall back to the
// minimum bound.
func (e *Engine) PositionSize(balance, volatility float64, hasVol bool, winRate float64, hasWinRate bool) float64 {
	if balance <= 0 {
		return e.cfg.MinTradeAmount
	}

	budget := balance * e.cfg.BaseRiskPct

	if hasWinRate {
		kelly := kellyEdge(winRate)
		kellyBudget := balance * kelly * e.cfg.KellyFraction
		budget = math.Min(budget, kellyBudget)
	}

	// Near-zero volatility would blow the target budget up, not shrink it,
	// so the min() leaves the unscaled budget in place.
	if hasVol && volatility > 0 {
		volBudget := balance * e.cfg.VolatilityTarget / volatility
		budget = math.Min(budget, volBudget)
	}

	if e.throttled {
		budget *= 0.5
	}

	budget = math.Min(budget, balance*e.cfg.MaxRiskPct)

	return clamp(budget, e.cfg.MinTradeAmount, e.cfg.MaxTradeAmount)
}

// kellyEdge returns the clamped Kelly fraction for a 1:1 payoff.
func kellyEdge(winRate float64) float64 {
	if winRate <= 0 || winRate >= 1 {
		return 0
	}
	return math.Max(0, 2*winRate-1)
}

// AddTradeResult records a realized PnL for win-rate tracking.
func (e *Engine) AddTradeResult(pnl float64) {
	e.dailyPnL += pnl
	e.recentPnL = append(e.recentPnL, pnl)
	if len(e.recentPnL) > maxRecentTrades {
		e.recentPnL = e.recentPnL[len(e.recentPnL)-maxRecentTrades:]
	}
}

// RecentWinRate returns the win rate over the tracked trades. The second
// return is false when no trades have been recorded yet.
func (e *Engine) RecentWinRate() (float64, bool) {
	if len(e.recentPnL) == 0 {
		return 0, false
	}
	wins := 0
	for _, pnl := range e.recentPnL {
		if pnl > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(e.recentPnL)), true
}

// CheckDailyRiskLimit reports whether the accumulated daily loss exceeds
// the daily cap.
func (e *Engine) CheckDailyRiskLimit(balance float64) bool {
	if balance <= 0 {
		return false
	}
	return e.dailyPnL < -balance*e.cfg.DailyRiskCap
}

// ResetDaily clears the daily PnL accumulator.
func (e *Engine) ResetDaily() {
	e.dailyPnL = 0
}

// CheckDrawdownLimit updates the peak and throttle state from the current
// equity and reports whether the drawdown cap is exceeded. While throttled,
// PositionSize halves the budget until drawdown recovers below
// MaxDrawdownPct - RecoveryPct.
func (e *Engine) CheckDrawdownLimit(equity float64) bool {
	if equity > e.peakEquity {
		e.peakEquity = equity
		e.throttled = false
		return false
	}
	if e.peakEquity <= 0 {
		return false
	}

	drawdown := (e.peakEquity - equity) / e.peakEquity
	if drawdown > e.cfg.MaxDrawdownPct {
		e.throttled = true
		return true
	}
	if e.throttled && drawdown < e.cfg.MaxDrawdownPct-e.cfg.RecoveryPct {
		e.throttled = false
	}
	return false
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
