package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/events"
	"github.com/yourorg/market-scanner/internal/indicator"
	"github.com/yourorg/market-scanner/internal/model"
	"github.com/yourorg/market-scanner/internal/repository"
)

// DefaultLookbackRows is the price-bar window fetched behind the last
// persisted indicator date. It must cover the longest warm-up (SMA-200).
const DefaultLookbackRows = 250

// IndicatorService drives the incremental indicator refresh: per asset type,
// timeframe and symbol it recomputes the calculator set over a lookback
// window and persists only rows newer than the last committed date.
type IndicatorService struct {
	marketDataRepo *repository.MarketDataRepository
	indicatorRepo  *repository.IndicatorRepository
	symbolRepo     *repository.SymbolRepository
	producer       *events.Producer
	refreshTopic   string
	logger         *zap.Logger
}

// NewIndicatorService creates a new indicator service
func NewIndicatorService(
	marketDataRepo *repository.MarketDataRepository,
	indicatorRepo *repository.IndicatorRepository,
	symbolRepo *repository.SymbolRepository,
	producer *events.Producer,
	refreshTopic string,
	logger *zap.Logger,
) *IndicatorService {
	return &IndicatorService{
		marketDataRepo: marketDataRepo,
		indicatorRepo:  indicatorRepo,
		symbolRepo:     symbolRepo,
		producer:       producer,
		refreshTopic:   refreshTopic,
		logger:         logger,
	}
}

// RefreshIndicators refreshes indicators for the given asset types (all
// types when empty) across every timeframe. A failure on one symbol is
// logged and skipped; the batch continues. An unknown asset type aborts the
// operation before any work is done.
func (s *IndicatorService) RefreshIndicators(ctx context.Context, assetTypes []string, lookbackRows int) error {
	if lookbackRows <= 0 {
		lookbackRows = DefaultLookbackRows
	}
	if len(assetTypes) == 0 {
		assetTypes = model.AssetTypes()
	}

	// Validate every asset type up front: a bad type is a configuration
	// error, not a skippable unit failure.
	tablesByType := make(map[string]model.AssetTables, len(assetTypes))
	for _, assetType := range assetTypes {
		tables, err := model.TablesFor(assetType)
		if err != nil {
			return err
		}
		tablesByType[assetType] = tables
	}

	totalRows := 0
	totalFailed := 0

	for _, assetType := range assetTypes {
		tables := tablesByType[assetType]

		symbolIDs, err := s.symbolRepo.ListSymbolIDs(ctx, tables)
		if err != nil {
			return err
		}
		s.logger.Info("Refreshing indicators",
			zap.String("asset_type", assetType),
			zap.Int("symbols", len(symbolIDs)))

		for _, timeframe := range model.Timeframes {
			start := time.Now()
			inserted, processed, failed := 0, 0, 0

			for _, symbolID := range symbolIDs {
				n, err := s.refreshSymbol(ctx, tables, symbolID, timeframe, lookbackRows)
				if err != nil {
					failed++
					s.logger.Error("Indicator refresh failed for symbol",
						zap.Error(err),
						zap.String("asset_type", assetType),
						zap.Int("symbol_id", symbolID),
						zap.String("timeframe", timeframe))
					continue
				}
				processed++
				inserted += n
			}

			totalRows += inserted
			totalFailed += failed
			s.logger.Info("Timeframe refresh complete",
				zap.String("asset_type", assetType),
				zap.String("timeframe", timeframe),
				zap.Int("processed", processed),
				zap.Int("failed", failed),
				zap.Int("rows", inserted),
				zap.Duration("elapsed", time.Since(start)))
		}
	}

	s.producer.Publish(ctx, s.refreshTopic, "indicators", events.RefreshCompletedEvent{
		AssetTypes: assetTypes,
		Rows:       totalRows,
		Failed:     totalFailed,
		FinishedAt: time.Now().UTC(),
	})
	return nil
}

// refreshSymbol recomputes and persists indicators for one symbol and
// timeframe, returning the number of newly inserted rows.
func (s *IndicatorService) refreshSymbol(
	ctx context.Context,
	tables model.AssetTables,
	symbolID int,
	timeframe string,
	lookbackRows int,
) (int, error) {
	lastDate, err := s.indicatorRepo.GetLatestIndicatorDate(ctx, tables, symbolID, timeframe)
	if err != nil {
		return 0, err
	}

	var bars []model.PriceBar
	if lastDate != nil {
		bars, err = s.marketDataRepo.GetBarsWithLookback(ctx, tables, symbolID, timeframe, *lastDate, lookbackRows)
	} else {
		bars, err = s.marketDataRepo.GetPriceBars(ctx, tables, symbolID, timeframe)
	}
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, nil
	}

	rows := indicator.ComputeRows(s.logger, bars)
	if lastDate != nil {
		rows = rowsAfter(rows, *lastDate)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	if err := s.indicatorRepo.UpsertIndicatorRows(ctx, tables, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// rowsAfter keeps only rows dated strictly after lastDate, so reruns with no
// new price bars insert nothing.
func rowsAfter(rows []model.IndicatorRow, lastDate time.Time) []model.IndicatorRow {
	out := rows[:0:0]
	for _, row := range rows {
		if row.Date.After(lastDate) {
			out = append(out, row)
		}
	}
	return out
}
