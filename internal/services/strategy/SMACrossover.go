package strategy

import (
	"math"

	"ForexQuantBot/internal/models"
	"ForexQuantBot/internal/services/indicators"
)

// SMACrossover trades crossings of a fast and a slow simple moving average,
// with ATR-based stop and take-profit levels.
type SMACrossover struct {
	fastPeriod int
	slowPeriod int
	atrPeriod  int
}

func NewSMACrossover() *SMACrossover {
	return &SMACrossover{
		fastPeriod: 20,
		slowPeriod: 50,
		atrPeriod:  14,
	}
}

func (s *SMACrossover) Name() string {
	return "SMA Crossover"
}

func (s *SMACrossover) Params() map[string]float64 {
	return map[string]float64{
		"fast_period": float64(s.fastPeriod),
		"slow_period": float64(s.slowPeriod),
		"atr_period":  float64(s.atrPeriod),
	}
}

func (s *SMACrossover) SetParams(params map[string]float64) {
	if v, ok := params["fast_period"]; ok {
		s.fastPeriod = int(v)
	}
	if v, ok := params["slow_period"]; ok {
		s.slowPeriod = int(v)
	}
	if v, ok := params["atr_period"]; ok {
		s.atrPeriod = int(v)
	}
}

func (s *SMACrossover) WarmupPeriod() int {
	warmup := s.slowPeriod
	if s.fastPeriod > warmup {
		warmup = s.fastPeriod
	}
	if s.atrPeriod > warmup {
		warmup = s.atrPeriod
	}
	return warmup + 2
}

func (s *SMACrossover) Indicators(bars []models.Price) Columns {
	closes := Closes(bars)
	return Columns{
		"SMA_fast": indicators.SMA(closes, s.fastPeriod),
		"SMA_slow": indicators.SMA(closes, s.slowPeriod),
		"ATR":      indicators.ATR(Highs(bars), Lows(bars), closes, s.atrPeriod),
	}
}

func (s *SMACrossover) Signal(bars []models.Price) int {
	if len(bars) < s.WarmupPeriod() {
		return 0
	}

	cols := s.Indicators(bars)
	fast, slow := cols["SMA_fast"], cols["SMA_slow"]
	last, prev := len(bars)-1, len(bars)-2

	if math.IsNaN(fast[last]) || math.IsNaN(slow[last]) ||
		math.IsNaN(fast[prev]) || math.IsNaN(slow[prev]) {
		return 0
	}

	if fast[last] > slow[last] && fast[prev] <= slow[prev] {
		return 1
	}
	if fast[last] < slow[last] && fast[prev] >= slow[prev] {
		return -1
	}
	return 0
}

func (s *SMACrossover) Volatility(bars []models.Price) (float64, bool) {
	atr, ok := s.lastATR(bars)
	if !ok {
		return 0, false
	}
	price := bars[len(bars)-1].Close
	if price == 0 {
		return 0, false
	}
	return atr / price, true
}

func (s *SMACrossover) StopLoss(bars []models.Price, entryPrice float64, side int) (float64, bool) {
	atr, ok := s.lastATR(bars)
	if !ok || atr == 0 {
		return 0, false
	}
	if side > 0 {
		return entryPrice - 2*atr, true
	}
	return entryPrice + 2*atr, true
}

func (s *SMACrossover) TakeProfit(bars []models.Price, entryPrice float64, side int) (float64, bool) {
	atr, ok := s.lastATR(bars)
	if !ok || atr == 0 {
		return 0, false
	}
	// 3x ATR target against a 2x ATR stop, 1.5:1 reward to risk.
	if side > 0 {
		return entryPrice + 3*atr, true
	}
	return entryPrice - 3*atr, true
}

func (s *SMACrossover) lastATR(bars []models.Price) (float64, bool) {
	if len(bars) == 0 {
		return 0, false
	}
	atr := indicators.ATR(Highs(bars), Lows(bars), Closes(bars), s.atrPeriod)
	v := atr[len(atr)-1]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
