package risk

import (
	"testing"
)

func TestPositionSizeDefaultsToMinOnBadBalance(t *testing.T) {
	e := NewEngine(DefaultConfig())

	for _, balance := range []float64{0, -100} {
		got := e.PositionSize(balance, 0, false, 0, false)
		if got != DefaultConfig().MinTradeAmount {
			t.Errorf("PositionSize(balance=%v) = %v, want min trade amount", balance, got)
		}
	}
}

func TestPositionSizeClampedToBounds(t *testing.T) {
	cfg := DefaultConfig()
	e := NewEngine(cfg)

	// 2% of 100k is 2000, far above the max bound.
	got := e.PositionSize(100000, 0, false, 0, false)
	if got != cfg.MaxTradeAmount {
		t.Errorf("PositionSize = %v, want clamp to max %v", got, cfg.MaxTradeAmount)
	}

	// 2% of 100 is 2, below the min bound.
	got = e.PositionSize(100, 0, false, 0, false)
	if got != cfg.MinTradeAmount {
		t.Errorf("PositionSize = %v, want clamp to min %v", got, cfg.MinTradeAmount)
	}
}

func TestPositionSizeKellyTightensBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTradeAmount = 1e9 // keep the clamp out of the way
	cfg.MinTradeAmount = 0
	e := NewEngine(cfg)

	base := e.PositionSize(10000, 0, false, 0, false)

	// 55% win rate gives edge 0.1, kelly budget 10000*0.1*0.25 = 250,
	// above the 200 base budget, so base wins the min().
	unchanged := e.PositionSize(10000, 0, false, 0.55, true)
	if unchanged != base {
		t.Errorf("PositionSize with weak edge = %v, want base budget %v", unchanged, base)
	}

	// A losing record gives edge 0 and a zero kelly budget.
	got := e.PositionSize(10000, 0, false, 0.3, true)
	if got != 0 {
		t.Errorf("PositionSize with losing record = %v, want 0", got)
	}
}

func TestPositionSizeVolatilityTargeting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTradeAmount = 1e9
	cfg.MinTradeAmount = 0
	e := NewEngine(cfg)

	// vol 0.05 against a 0.01 target scales the budget to 10000*0.2 = 2000;
	// base budget 200 still wins the min().
	base := e.PositionSize(10000, 0.05, true, 0, false)
	if base != 10000*cfg.BaseRiskPct {
		t.Errorf("PositionSize = %v, want base budget", base)
	}

	// vol 1.0 scales the target budget to 100, under the base budget.
	got := e.PositionSize(10000, 1.0, true, 0, false)
	if got != 100 {
		t.Errorf("PositionSize = %v, want volatility-target budget 100", got)
	}

	// Near-zero volatility must not inflate the budget.
	got = e.PositionSize(10000, 1e-12, true, 0, false)
	if got > base {
		t.Errorf("PositionSize = %v, near-zero vol must not exceed base %v", got, base)
	}
}

func TestDrawdownThrottleHalvesBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTradeAmount = 1e9
	cfg.MinTradeAmount = 0
	e := NewEngine(cfg)

	before := e.PositionSize(10000, 0, false, 0, false)

	e.CheckDrawdownLimit(10000)
	if breached := e.CheckDrawdownLimit(7000); !breached {
		t.Fatal("30% drawdown should breach the 25% cap")
	}

	after := e.PositionSize(10000, 0, false, 0, false)
	if after != before/2 {
		t.Errorf("throttled PositionSize = %v, want half of %v", after, before)
	}

	// A new equity peak clears the throttle.
	e.CheckDrawdownLimit(11000)
	restored := e.PositionSize(10000, 0, false, 0, false)
	if restored != before {
		t.Errorf("PositionSize after recovery = %v, want %v", restored, before)
	}
}

func TestRecentWinRate(t *testing.T) {
	e := NewEngine(DefaultConfig())

	if _, ok := e.RecentWinRate(); ok {
		t.Fatal("expected no win rate before any trades")
	}

	e.AddTradeResult(10)
	e.AddTradeResult(-5)
	e.AddTradeResult(20)
	e.AddTradeResult(-1)

	rate, ok := e.RecentWinRate()
	if !ok || rate != 0.5 {
		t.Fatalf("RecentWinRate = %v (ok=%v), want 0.5", rate, ok)
	}
}

func TestRecentWinRateWindowIsBounded(t *testing.T) {
	e := NewEngine(DefaultConfig())

	// 20 losses pushed out by 20 wins: only the last window counts.
	for i := 0; i < maxRecentTrades; i++ {
		e.AddTradeResult(-1)
	}
	for i := 0; i < maxRecentTrades; i++ {
		e.AddTradeResult(1)
	}

	rate, ok := e.RecentWinRate()
	if !ok || rate != 1.0 {
		t.Fatalf("RecentWinRate = %v (ok=%v), want 1.0 after window rolls", rate, ok)
	}
}

func TestDailyRiskLimit(t *testing.T) {
	e := NewEngine(DefaultConfig())

	e.AddTradeResult(-400)
	if e.CheckDailyRiskLimit(10000) {
		t.Fatal("4% daily loss should not breach a 5% cap")
	}

	e.AddTradeResult(-200)
	if !e.CheckDailyRiskLimit(10000) {
		t.Fatal("6% daily loss should breach a 5% cap")
	}

	e.ResetDaily()
	if e.CheckDailyRiskLimit(10000) {
		t.Fatal("reset should clear the daily loss")
	}
}
