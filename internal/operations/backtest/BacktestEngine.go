package backtest

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"ForexQuantBot/internal/models"
	"ForexQuantBot/internal/services/risk"
	"ForexQuantBot/internal/services/strategy"
)

// Engine replays a bar series through a strategy and produces a Result.
// Each Run owns its own Portfolio and risk engine; the Engine itself holds
// no per-run state and can be reused across runs.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Run simulates the strategy over the bar series. Bars must be ordered by
// time. An empty series returns ErrDataUnavailable; a series shorter than
// the strategy warm-up produces a result with no trades.
func (e *Engine) Run(strat strategy.Strategy, bars []models.Price, initialBalance float64, riskCfg risk.Config) (*Result, error) {
	if len(bars) == 0 {
		return nil, ErrDataUnavailable
	}

	symbol := bars[0].Symbol
	portfolio := NewPortfolio(initialBalance)
	riskEngine := risk.NewEngine(riskCfg)
	warmup := strat.WarmupPeriod()

	log.Debug().
		Str("symbol", symbol).
		Str("strategy", strat.Name()).
		Int("bars", len(bars)).
		Int("warmup", warmup).
		Msg("starting backtest")

	var currentDay time.Time
	for i := range bars {
		if i+1 < warmup {
			continue
		}
		window := bars[:i+1]
		price := window[len(window)-1].Close
		ts := window[len(window)-1].OpenTime

		if day := ts.Truncate(24 * time.Hour); !day.Equal(currentDay) {
			currentDay = day
			riskEngine.ResetDaily()
		}

		sig := strat.Signal(window)
		if sig != 0 {
			e.processSignal(strat, symbol, sig, price, window, portfolio, riskEngine)
		} else {
			e.checkExits(strat, symbol, price, window, portfolio, riskEngine)
		}

		portfolio.MarkToMarket(symbol, price)
		portfolio.RecordEquity(ts)
		riskEngine.CheckDrawdownLimit(portfolio.Equity())
	}

	result := &Result{
		RunID:          uuid.NewString(),
		Symbol:         symbol,
		Strategy:       strat.Name(),
		StartDate:      bars[0].OpenTime,
		EndDate:        bars[len(bars)-1].OpenTime,
		InitialBalance: initialBalance,
		FinalBalance:   portfolio.Balance(),
		FinalEquity:    portfolio.Equity(),
		Metrics:        ComputeMetrics(portfolio.Trades(), portfolio.EquityCurve()),
		EquityCurve:    portfolio.EquityCurve(),
		Trades:         portfolio.Trades(),
	}
	if initialBalance != 0 {
		result.TotalReturn = (result.FinalEquity - initialBalance) / initialBalance
	}

	log.Debug().
		Str("symbol", symbol).
		Int("trades", result.Metrics.TotalTrades).
		Float64("total_return", result.TotalReturn).
		Msg("backtest finished")

	return result, nil
}

// processSignal closes an opposite position and, if the symbol is flat,
// opens a new position sized by the risk engine. A same-direction signal on
// an open position is a no-op: one position per symbol.
func (e *Engine) processSignal(strat strategy.Strategy, symbol string, sig int, price float64,
	window []models.Price, portfolio *Portfolio, riskEngine *risk.Engine) {

	if pos, ok := portfolio.Position(symbol); ok {
		if pos.Side == sig {
			return
		}
		if trade, closed := portfolio.ClosePosition(symbol, price, window[len(window)-1].OpenTime, strat.Name(), NoteReversal); closed {
			riskEngine.AddTradeResult(trade.PnL)
		}
	}

	if price <= 0 {
		return
	}
	// No new entries once the daily loss cap is hit; exits still run.
	if riskEngine.CheckDailyRiskLimit(portfolio.Balance()) {
		return
	}

	vol, hasVol := strat.Volatility(window)
	winRate, hasWinRate := riskEngine.RecentWinRate()
	amount := riskEngine.PositionSize(portfolio.Balance(), vol, hasVol, winRate, hasWinRate)
	quantity := amount / price

	stop, hasStop := strat.StopLoss(window, price, sig)
	take, hasTake := strat.TakeProfit(window, price, sig)

	portfolio.OpenPosition(&Position{
		Symbol:        symbol,
		Side:          sig,
		Quantity:      quantity,
		EntryPrice:    price,
		CurrentPrice:  price,
		StopLoss:      stop,
		HasStopLoss:   hasStop,
		TakeProfit:    take,
		HasTakeProfit: hasTake,
		EntryTime:     window[len(window)-1].OpenTime,
	})
}

// checkExits closes the open position when the price crosses its stop or
// take-profit level. Longs close at price <= stop or price >= take; shorts
// mirror.
func (e *Engine) checkExits(strat strategy.Strategy, symbol string, price float64,
	window []models.Price, portfolio *Portfolio, riskEngine *risk.Engine) {

	pos, ok := portfolio.Position(symbol)
	if !ok {
		return
	}
	ts := window[len(window)-1].OpenTime

	if pos.HasStopLoss {
		if (pos.Side > 0 && price <= pos.StopLoss) || (pos.Side < 0 && price >= pos.StopLoss) {
			if trade, closed := portfolio.ClosePosition(symbol, price, ts, strat.Name(), NoteStopLoss); closed {
				riskEngine.AddTradeResult(trade.PnL)
			}
			return
		}
	}
	if pos.HasTakeProfit {
		if (pos.Side > 0 && price >= pos.TakeProfit) || (pos.Side < 0 && price <= pos.TakeProfit) {
			if trade, closed := portfolio.ClosePosition(symbol, price, ts, strat.Name(), NoteTakeProfit); closed {
				riskEngine.AddTradeResult(trade.PnL)
			}
		}
	}
}
