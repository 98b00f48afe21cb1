package strategy

import (
	"math"

	"ForexQuantBot/internal/models"
	"ForexQuantBot/internal/services/indicators"
)

// RSIReversion fades RSI extremes in the direction of the prevailing trend.
// Longs need an uptrend and an RSI drop through the oversold level; shorts
// mirror with the overbought level.
type RSIReversion struct {
	rsiPeriod       int
	oversoldLevel   float64
	overboughtLevel float64
	trendPeriod     int
	atrPeriod       int
}

func NewRSIReversion() *RSIReversion {
	return &RSIReversion{
		rsiPeriod:       14,
		oversoldLevel:   30.0,
		overboughtLevel: 70.0,
		trendPeriod:     50,
		atrPeriod:       14,
	}
}

func (s *RSIReversion) Name() string {
	return "RSI Reversion"
}

func (s *RSIReversion) Params() map[string]float64 {
	return map[string]float64{
		"rsi_period":       float64(s.rsiPeriod),
		"oversold_level":   s.oversoldLevel,
		"overbought_level": s.overboughtLevel,
		"trend_period":     float64(s.trendPeriod),
		"atr_period":       float64(s.atrPeriod),
	}
}

func (s *RSIReversion) SetParams(params map[string]float64) {
	if v, ok := params["rsi_period"]; ok {
		s.rsiPeriod = int(v)
	}
	if v, ok := params["oversold_level"]; ok {
		s.oversoldLevel = v
	}
	if v, ok := params["overbought_level"]; ok {
		s.overboughtLevel = v
	}
	if v, ok := params["trend_period"]; ok {
		s.trendPeriod = int(v)
	}
	if v, ok := params["atr_period"]; ok {
		s.atrPeriod = int(v)
	}
}

func (s *RSIReversion) WarmupPeriod() int {
	warmup := s.trendPeriod
	if s.rsiPeriod > warmup {
		warmup = s.rsiPeriod
	}
	if s.atrPeriod > warmup {
		warmup = s.atrPeriod
	}
	return warmup + 2
}

func (s *RSIReversion) Indicators(bars []models.Price) Columns {
	closes := Closes(bars)
	return Columns{
		"RSI":   indicators.RSI(closes, s.rsiPeriod),
		"Trend": indicators.SMA(closes, s.trendPeriod),
		"ATR":   indicators.ATR(Highs(bars), Lows(bars), closes, s.atrPeriod),
	}
}

func (s *RSIReversion) Signal(bars []models.Price) int {
	if len(bars) < s.WarmupPeriod() {
		return 0
	}

	cols := s.Indicators(bars)
	rsi, trend := cols["RSI"], cols["Trend"]
	last, prev := len(bars)-1, len(bars)-2
	price := bars[last].Close

	if math.IsNaN(rsi[last]) || math.IsNaN(rsi[prev]) || math.IsNaN(trend[last]) {
		return 0
	}

	// Only trade in the direction of the trend.
	if price > trend[last] {
		if rsi[last] < s.oversoldLevel && rsi[prev] >= s.oversoldLevel {
			return 1
		}
	} else if price < trend[last] {
		if rsi[last] > s.overboughtLevel && rsi[prev] <= s.overboughtLevel {
			return -1
		}
	}
	return 0
}

func (s *RSIReversion) Volatility(bars []models.Price) (float64, bool) {
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

func (s *RSIReversion) StopLoss(bars []models.Price, entryPrice float64, side int) (float64, bool) {
	atr, ok := s.lastATR(bars)
	if !ok || atr == 0 {
		return 0, false
	}
	// Tighter 1.5x ATR stop for mean reversion entries.
	if side > 0 {
		return entryPrice - 1.5*atr, true
	}
	return entryPrice + 1.5*atr, true
}

func (s *RSIReversion) TakeProfit(bars []models.Price, entryPrice float64, side int) (float64, bool) {
	if len(bars) == 0 {
		return 0, false
	}
	rsi := indicators.RSI(Closes(bars), s.rsiPeriod)
	current := rsi[len(rsi)-1]
	if math.IsNaN(current) {
		return 0, false
	}

	// Price target scaled by the RSI distance to the opposite extreme.
	targetRSI := s.overboughtLevel
	if side < 0 {
		targetRSI = s.oversoldLevel
	}
	rsiDiff := math.Abs(current - targetRSI)
	if rsiDiff == 0 {
		return 0, false
	}
	priceChange := entryPrice * rsiDiff / 100.0

	if side > 0 {
		return entryPrice + priceChange, true
	}
	return entryPrice - priceChange, true
}

func (s *RSIReversion) lastATR(bars []models.Price) (float64, bool) {
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
