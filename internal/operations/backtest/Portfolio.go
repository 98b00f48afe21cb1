package backtest

import (
	"time"
)

// Portfolio owns the open positions, trade history and equity curve of one
// backtest run. Balance only changes when a position is closed; equity is
// always balance plus the unrealized PnL of the open positions.
type Portfolio struct {
	initialBalance float64
	balance        float64
	positions      map[string]*Position
	trades         []Trade
	equityCurve    []EquityPoint
	peakEquity     float64
	maxDrawdown    float64
}

func NewPortfolio(initialBalance float64) *Portfolio {
	return &Portfolio{
		initialBalance: initialBalance,
		balance:        initialBalance,
		positions:      make(map[string]*Position),
		peakEquity:     initialBalance,
	}
}

func (p *Portfolio) InitialBalance() float64 {
	return p.initialBalance
}

func (p *Portfolio) Balance() float64 {
	return p.balance
}

// Equity is the balance plus the unrealized PnL of all open positions.
func (p *Portfolio) Equity() float64 {
	equity := p.balance
	for _, pos := range p.positions {
		equity += pos.UnrealizedPnL
	}
	return equity
}

// Position returns the open position for a symbol, if any.
func (p *Portfolio) Position(symbol string) (*Position, bool) {
	pos, ok := p.positions[symbol]
	return pos, ok
}

func (p *Portfolio) OpenPositions() int {
	return len(p.positions)
}

// OpenPosition adds a position. Opening over an existing position for the
// same symbol replaces it; the engine closes first, so this does not happen
// during a run.
func (p *Portfolio) OpenPosition(pos *Position) {
	p.positions[pos.Symbol] = pos
}

// MarkToMarket updates the current price and unrealized PnL of the open
// position for symbol.
func (p *Portfolio) MarkToMarket(symbol string, price float64) {
	pos, ok := p.positions[symbol]
	if !ok {
		return
	}
	pos.CurrentPrice = price
	pos.UnrealizedPnL = float64(pos.Side) * pos.Quantity * (price - pos.EntryPrice)
}

// ClosePosition realizes the position at the given price, appends exactly
// one Trade to the history and returns it. The realized PnL moves the
// balance.
func (p *Portfolio) ClosePosition(symbol string, price float64, ts time.Time, strategy, notes string) (Trade, bool) {
	pos, ok := p.positions[symbol]
	if !ok {
		return Trade{}, false
	}

	pnl := float64(pos.Side) * pos.Quantity * (price - pos.EntryPrice)
	trade := Trade{
		Symbol:     symbol,
		Side:       pos.Side,
		Quantity:   pos.Quantity,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  price,
		EntryTime:  pos.EntryTime,
		ExitTime:   ts,
		PnL:        pnl,
		Strategy:   strategy,
		Notes:      notes,
	}

	p.balance += pnl
	p.trades = append(p.trades, trade)
	delete(p.positions, symbol)
	return trade, true
}

// RecordEquity appends one (timestamp, balance, equity) sample and updates
// the running peak and max drawdown.
func (p *Portfolio) RecordEquity(ts time.Time) {
	equity := p.Equity()
	p.equityCurve = append(p.equityCurve, EquityPoint{
		Timestamp: ts,
		Balance:   p.balance,
		Equity:    equity,
	})

	if equity > p.peakEquity {
		p.peakEquity = equity
	}
	if p.peakEquity > 0 {
		drawdown := (p.peakEquity - equity) / p.peakEquity
		if drawdown > p.maxDrawdown {
			p.maxDrawdown = drawdown
		}
	}
}

func (p *Portfolio) Trades() []Trade {
	return p.trades
}

func (p *Portfolio) EquityCurve() []EquityPoint {
	return p.equityCurve
}

func (p *Portfolio) MaxDrawdown() float64 {
	return p.maxDrawdown
}
