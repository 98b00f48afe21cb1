package handlers

import (
	"context"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog/log"

	"ForexQuantBot/internal/operations/price"
	"ForexQuantBot/internal/repositories"
)

type PriceHandler struct {
	priceRepo     *repositories.PriceRepository
	futuresClient *futures.Client
	priceRecorder *price.PriceRecorder
	priceFetcher  *price.PriceFetcher
	symbols       []string
}

func NewPriceHandler(client *futures.Client, priceRepo *repositories.PriceRepository, symbols []string) *PriceHandler {
	return &PriceHandler{
		futuresClient: client,
		priceRepo:     priceRepo,
		symbols:       symbols,
		priceFetcher:  price.NewPriceFetcher(client, symbols),
	}
}

// Start backfills the history for the given timeframe, then keeps it
// growing in the background until the context is cancelled.
func (h *PriceHandler) Start(ctx context.Context, timeframe string, days int) error {
	h.priceRecorder = price.NewPriceRecorder(h.futuresClient, h.priceRepo, h.symbols)

	if err := h.fetchHistoricalData(ctx, timeframe, days); err != nil {
		return err
	}

	go h.priceRecorder.StartRecording(ctx)

	return nil
}

func (h *PriceHandler) fetchHistoricalData(ctx context.Context, timeframe string, days int) error {
	log.Info().
		Str("timeframe", timeframe).
		Int("days", days).
		Msg("fetching historical data")

	prices, err := h.priceFetcher.FetchPrices(ctx, timeframe, days)
	if err != nil {
		return err
	}

	if err := h.priceRepo.CreateBatch(prices); err != nil {
		log.Error().Err(err).Msg("error saving historical prices")
		return err
	}
	return nil
}
