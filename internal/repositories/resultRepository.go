package repositories

import (
	"errors"

	"gorm.io/gorm"

	"ForexQuantBot/internal/models"
	"ForexQuantBot/internal/operations/backtest"
)

type ResultRepository struct {
	db *gorm.DB
}

// NewResultRepository creates a new instance of ResultRepository
func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// SaveResult persists one backtest run and its trades in a single
// transaction, keyed by the run ID
func (r *ResultRepository) SaveResult(result *backtest.Result) error {
	if result == nil {
		return errors.New("result cannot be nil")
	}

	record := models.BacktestRecord{
		RunID:          result.RunID,
		Symbol:         result.Symbol,
		Strategy:       result.Strategy,
		StartDate:      result.StartDate,
		EndDate:        result.EndDate,
		InitialBalance: result.InitialBalance,
		FinalBalance:   result.FinalBalance,
		FinalEquity:    result.FinalEquity,
		TotalReturn:    result.TotalReturn,
		MaxDrawdown:    result.Metrics.MaxDrawdown,
		WinRate:        result.Metrics.WinRate,
		ProfitFactor:   result.Metrics.ProfitFactor,
		SharpeRatio:    result.Metrics.SharpeRatio,
		SortinoRatio:   result.Metrics.SortinoRatio,
		TotalTrades:    result.Metrics.TotalTrades,
		WinningTrades:  result.Metrics.WinningTrades,
		LosingTrades:   result.Metrics.LosingTrades,
	}

	trades := make([]models.TradeRecord, 0, len(result.Trades))
	for _, t := range result.Trades {
		trades = append(trades, models.TradeRecord{
			RunID:      result.RunID,
			Symbol:     t.Symbol,
			Side:       t.Side,
			Quantity:   t.Quantity,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			EntryTime:  t.EntryTime,
			ExitTime:   t.ExitTime,
			PnL:        t.PnL,
			Strategy:   t.Strategy,
			Notes:      t.Notes,
		})
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if len(trades) > 0 {
			if err := tx.Create(&trades).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetBacktestsBySymbol retrieves stored runs for a symbol, newest first
func (r *ResultRepository) GetBacktestsBySymbol(symbol string) ([]models.BacktestRecord, error) {
	if symbol == "" {
		return nil, errors.New("invalid symbol")
	}
	var records []models.BacktestRecord
	err := r.db.Where("symbol = ?", symbol).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

// GetTradesByRunID retrieves the trades of one run in entry order
func (r *ResultRepository) GetTradesByRunID(runID string) ([]models.TradeRecord, error) {
	if runID == "" {
		return nil, errors.New("invalid run id")
	}
	var trades []models.TradeRecord
	err := r.db.Where("run_id = ?", runID).
		Order("entry_time ASC").
		Find(&trades).Error
	return trades, err
}
