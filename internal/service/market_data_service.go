package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/model"
	"github.com/yourorg/market-scanner/internal/repository"
)

// MarketDataService exposes the symbol catalogue, data-availability
// overview and price-bar batch import.
type MarketDataService struct {
	marketDataRepo *repository.MarketDataRepository
	symbolRepo     *repository.SymbolRepository
	logger         *zap.Logger
}

// NewMarketDataService creates a new market data service
func NewMarketDataService(
	marketDataRepo *repository.MarketDataRepository,
	symbolRepo *repository.SymbolRepository,
	logger *zap.Logger,
) *MarketDataService {
	return &MarketDataService{
		marketDataRepo: marketDataRepo,
		symbolRepo:     symbolRepo,
		logger:         logger,
	}
}

// ListSymbols lists the symbol catalogue of one asset type
func (s *MarketDataService) ListSymbols(ctx context.Context, assetType, sortDirection string) ([]model.Symbol, error) {
	tables, err := model.TablesFor(assetType)
	if err != nil {
		return nil, err
	}
	return s.symbolRepo.ListSymbols(ctx, tables, sortDirection)
}

// GetLatestDates summarizes per-timeframe data availability for one asset type
func (s *MarketDataService) GetLatestDates(ctx context.Context, assetType string) ([]model.TimeframeStatus, error) {
	tables, err := model.TablesFor(assetType)
	if err != nil {
		return nil, err
	}
	return s.marketDataRepo.GetLatestDates(ctx, tables)
}

// BatchImportBars validates and upserts a batch of price bars. Bars with an
// unknown timeframe reject the whole batch before anything is written.
func (s *MarketDataService) BatchImportBars(ctx context.Context, batch model.PriceBarBatch) (int, error) {
	tables, err := model.TablesFor(batch.AssetType)
	if err != nil {
		return 0, err
	}
	for _, bar := range batch.Bars {
		if !model.ValidTimeframe(bar.Timeframe) {
			return 0, fmt.Errorf("%w: %q for symbol %d", model.ErrInvalidTimeframe, bar.Timeframe, bar.SymbolID)
		}
	}
	if err := s.marketDataRepo.UpsertPriceBars(ctx, tables, batch.Bars); err != nil {
		return 0, err
	}
	s.logger.Info("Batch imported price bars",
		zap.String("asset_type", batch.AssetType),
		zap.Int("bars", len(batch.Bars)))
	return len(batch.Bars), nil
}
