package backtest

import (
	"math"
	"testing"
	"time"
)

func curveFromEquities(equities []float64) []EquityPoint {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	curve := make([]EquityPoint, len(equities))
	for i, e := range equities {
		curve[i] = EquityPoint{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Balance:   e,
			Equity:    e,
		}
	}
	return curve
}

func TestComputeMetricsTradeCounts(t *testing.T) {
	trades := []Trade{
		{PnL: 10},
		{PnL: -5},
		{PnL: 20},
	}
	m := ComputeMetrics(trades, nil)

	if m.TotalTrades != 3 || m.WinningTrades != 2 || m.LosingTrades != 1 {
		t.Fatalf("counts = %d/%d/%d, want 3/2/1", m.TotalTrades, m.WinningTrades, m.LosingTrades)
	}
	if math.Abs(m.WinRate-2.0/3.0) > 1e-9 {
		t.Errorf("WinRate = %v, want 2/3", m.WinRate)
	}
	if m.ProfitFactor != 6 {
		t.Errorf("ProfitFactor = %v, want 30/5 = 6", m.ProfitFactor)
	}
	if m.AvgWin != 15 || m.AvgLoss != -5 {
		t.Errorf("AvgWin/AvgLoss = %v/%v, want 15/-5", m.AvgWin, m.AvgLoss)
	}
	if m.LargestWin != 20 || m.LargestLoss != -5 {
		t.Errorf("LargestWin/LargestLoss = %v/%v, want 20/-5", m.LargestWin, m.LargestLoss)
	}
}

func TestComputeMetricsNoLossesInfiniteProfitFactor(t *testing.T) {
	m := ComputeMetrics([]Trade{{PnL: 5}, {PnL: 3}}, nil)
	if !math.IsInf(m.ProfitFactor, 1) {
		t.Errorf("ProfitFactor = %v, want +Inf with zero gross loss", m.ProfitFactor)
	}
}

func TestComputeMetricsNoTrades(t *testing.T) {
	m := ComputeMetrics(nil, nil)
	if m.WinRate != 0 || m.ProfitFactor != 0 || m.TotalTrades != 0 {
		t.Errorf("zero-trade metrics should be zero, got %+v", m)
	}
}

func TestMaxDrawdown(t *testing.T) {
	curve := curveFromEquities([]float64{100, 120, 90, 110, 115})
	m := ComputeMetrics(nil, curve)

	want := (120.0 - 90.0) / 120.0
	if math.Abs(m.MaxDrawdown-want) > 1e-9 {
		t.Errorf("MaxDrawdown = %v, want %v", m.MaxDrawdown, want)
	}
}

func TestSharpeZeroOnFlatCurve(t *testing.T) {
	curve := curveFromEquities([]float64{100, 100, 100, 100})
	m := ComputeMetrics(nil, curve)
	if m.SharpeRatio != 0 || m.SortinoRatio != 0 {
		t.Errorf("flat curve Sharpe/Sortino = %v/%v, want 0/0", m.SharpeRatio, m.SortinoRatio)
	}
}

func TestSharpeSignFollowsMeanReturn(t *testing.T) {
	rising := curveFromEquities([]float64{100, 102, 103, 106, 107})
	if m := ComputeMetrics(nil, rising); m.SharpeRatio <= 0 {
		t.Errorf("rising curve Sharpe = %v, want positive", m.SharpeRatio)
	}

	falling := curveFromEquities([]float64{100, 98, 97, 94, 93})
	if m := ComputeMetrics(nil, falling); m.SharpeRatio >= 0 {
		t.Errorf("falling curve Sharpe = %v, want negative", m.SharpeRatio)
	}
}
