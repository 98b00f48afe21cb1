package risk

// Config holds the immutable risk bounds for one run.
type Config struct {
	BaseRiskPct      float64 // fraction of balance risked per trade
	MaxRiskPct       float64 // hard upper bound on the risk budget
	DailyRiskCap     float64 // fraction of balance allowed as daily loss
	MaxDrawdownPct   float64 // drawdown level that triggers the throttle
	RecoveryPct      float64 // drawdown must fall this far below the cap to recover
	KellyFraction    float64 // fraction of the Kelly edge actually applied
	VolatilityTarget float64 // target per-period volatility of trade PnL
	MinTradeAmount   float64
	MaxTradeAmount   float64
}

// DefaultConfig mirrors the bounds used for paper trading.
func DefaultConfig() Config {
	return Config{
		BaseRiskPct:      0.02,
		MaxRiskPct:       0.05,
		DailyRiskCap:     0.05,
		MaxDrawdownPct:   0.25,
		RecoveryPct:      0.10,
		KellyFraction:    0.25,
		VolatilityTarget: 0.01,
		MinTradeAmount:   10.0,
		MaxTradeAmount:   100.0,
	}
}
