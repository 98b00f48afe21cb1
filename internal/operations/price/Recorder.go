package price

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog/log"

	"ForexQuantBot/internal/repositories"
)

type PriceRecorder struct {
	client    *futures.Client
	priceRepo *repositories.PriceRepository
	symbols   []string
}

func NewPriceRecorder(client *futures.Client, priceRepo *repositories.PriceRepository, symbols []string) *PriceRecorder {
	return &PriceRecorder{
		client:    client,
		priceRepo: priceRepo,
		symbols:   symbols,
	}
}

// StartRecording keeps the price history growing while the process runs,
// one goroutine per recorded timeframe.
func (r *PriceRecorder) StartRecording(ctx context.Context) {
	timeframes := map[string]time.Duration{
		"5m":  5 * time.Minute,
		"15m": 15 * time.Minute,
		"1h":  time.Hour,
		"4h":  4 * time.Hour,
	}

	for timeframe, interval := range timeframes {
		go r.recordTimeframe(ctx, timeframe, interval)
	}
}

func (r *PriceRecorder) recordTimeframe(ctx context.Context, timeframe string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Str("timeframe", timeframe).Msg("starting price recording")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("timeframe", timeframe).Msg("stopping price recording")
			return
		case <-ticker.C:
			r.recordPrices(ctx, timeframe)
		}
	}
}

func (r *PriceRecorder) recordPrices(ctx context.Context, timeframe string) {
	for _, symbol := range r.symbols {
		klines, err := r.client.NewKlinesService().
			Symbol(symbol).
			Interval(timeframe).
			Limit(1).
			Do(ctx)

		if err != nil {
			log.Error().Err(err).
				Str("symbol", symbol).
				Str("timeframe", timeframe).
				Msg("error getting kline")
			continue
		}

		if len(klines) == 0 {
			continue
		}
		price := klineToPrice(symbol, timeframe, klines[0])

		if err := r.priceRepo.Create(&price); err != nil {
			log.Error().Err(err).
				Str("symbol", symbol).
				Str("timeframe", timeframe).
				Msg("error saving price")
			continue
		}
		log.Debug().
			Str("symbol", symbol).
			Str("timeframe", timeframe).
			Float64("close", price.Close).
			Msg("recorded price")
	}
}
