package price

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog/log"

	"ForexQuantBot/internal/models"
)

type PriceFetcher struct {
	client  *futures.Client
	symbols []string
}

func NewPriceFetcher(client *futures.Client, symbols []string) *PriceFetcher {
	return &PriceFetcher{
		client:  client,
		symbols: symbols,
	}
}

// FetchPrices downloads historical klines for every configured symbol over
// the last n days, walking the range in 500-candle chunks.
func (f *PriceFetcher) FetchPrices(ctx context.Context, timeframe string, days int) ([]models.Price, error) {
	endTime := time.Now()
	startTime := endTime.AddDate(0, 0, -days)
	var allPrices []models.Price

	chunkDuration := calculateChunkDuration(timeframe)
	currentStart := startTime
	currentEnd := currentStart.Add(chunkDuration)

	for currentStart.Before(endTime) {
		if currentEnd.After(endTime) {
			currentEnd = endTime
		}

		for _, symbol := range f.symbols {
			klines, err := f.client.NewKlinesService().
				Symbol(symbol).
				Interval(timeframe).
				StartTime(currentStart.UnixNano() / int64(time.Millisecond)).
				EndTime(currentEnd.UnixNano() / int64(time.Millisecond)).
				Limit(500).
				Do(ctx)

			if err != nil {
				log.Error().Err(err).Str("symbol", symbol).Msg("error fetching prices")
				continue
			}

			for _, k := range klines {
				allPrices = append(allPrices, klineToPrice(symbol, timeframe, k))
			}

			log.Debug().
				Int("candles", len(klines)).
				Str("timeframe", timeframe).
				Str("symbol", symbol).
				Time("start", currentStart).
				Time("end", currentEnd).
				Msg("fetched candles")
		}

		currentStart = currentEnd
		currentEnd = currentStart.Add(chunkDuration)

		// Small delay to stay under the exchange rate limit.
		time.Sleep(100 * time.Millisecond)
	}

	return allPrices, nil
}

func klineToPrice(symbol, timeframe string, k *futures.Kline) models.Price {
	return models.Price{
		Symbol:    symbol,
		TimeFrame: timeframe,
		OpenTime:  time.Unix(k.OpenTime/1000, 0),
		CloseTime: time.Unix(k.CloseTime/1000, 0),
		Open:      parseFloat(k.Open),
		High:      parseFloat(k.High),
		Low:       parseFloat(k.Low),
		Close:     parseFloat(k.Close),
		Volume:    parseFloat(k.Volume),
	}
}

func calculateChunkDuration(timeframe string) time.Duration {
	// How much wall time 500 candles cover per timeframe.
	intervalsMap := map[string]time.Duration{
		"1m":  time.Minute,
		"5m":  5 * time.Minute,
		"15m": 15 * time.Minute,
		"1h":  time.Hour,
		"4h":  4 * time.Hour,
		"1d":  24 * time.Hour,
	}

	interval, ok := intervalsMap[timeframe]
	if !ok {
		interval = time.Hour
	}
	return interval * 500
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Error().Err(err).Str("value", s).Msg("error parsing float")
		return 0
	}
	return f
}
