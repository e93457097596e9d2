package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/model"
	"github.com/yourorg/market-scanner/internal/repository"
)

// AggregationService resamples daily bars into weekly and monthly bars and
// writes them back into the price store under their own timeframe labels.
// It is the sole writer of weekly/monthly price bars.
type AggregationService struct {
	marketDataRepo *repository.MarketDataRepository
	logger         *zap.Logger
}

// NewAggregationService creates a new aggregation service
func NewAggregationService(marketDataRepo *repository.MarketDataRepository, logger *zap.Logger) *AggregationService {
	return &AggregationService{
		marketDataRepo: marketDataRepo,
		logger:         logger,
	}
}

// GenerateHigherTimeframes resamples every symbol's daily bars into weekly
// (Friday-ending) and monthly (calendar month) bars and upserts them.
// Rerunning is idempotent. Per-symbol failures are logged and skipped.
func (s *AggregationService) GenerateHigherTimeframes(ctx context.Context, assetType string) error {
	tables, err := model.TablesFor(assetType)
	if err != nil {
		return err
	}

	symbolIDs, err := s.marketDataRepo.ListDailySymbolIDs(ctx, tables)
	if err != nil {
		return err
	}
	if len(symbolIDs) == 0 {
		s.logger.Warn("No symbols with daily data found",
			zap.String("asset_type", assetType))
		return nil
	}

	processed, failed := 0, 0
	for _, symbolID := range symbolIDs {
		if err := s.aggregateSymbol(ctx, tables, symbolID); err != nil {
			failed++
			s.logger.Error("Higher timeframe aggregation failed for symbol",
				zap.Error(err),
				zap.String("asset_type", assetType),
				zap.Int("symbol_id", symbolID))
			continue
		}
		processed++
	}

	s.logger.Info("Higher timeframe aggregation complete",
		zap.String("asset_type", assetType),
		zap.Int("processed", processed),
		zap.Int("failed", failed))
	return nil
}

func (s *AggregationService) aggregateSymbol(ctx context.Context, tables model.AssetTables, symbolID int) error {
	daily, err := s.marketDataRepo.GetPriceBars(ctx, tables, symbolID, model.TimeframeDaily)
	if err != nil {
		return err
	}
	if len(daily) == 0 {
		return nil
	}

	weekly := ResampleWeekly(daily)
	if err := s.marketDataRepo.UpsertPriceBars(ctx, tables, weekly); err != nil {
		return err
	}

	monthly := ResampleMonthly(daily)
	return s.marketDataRepo.UpsertPriceBars(ctx, tables, monthly)
}

// ResampleWeekly aggregates daily bars into weekly bars dated on the Friday
// ending each Saturday-to-Friday week: open = first, high = max, low = min,
// close = last, volume = sum. Periods dated after the last daily bar are
// dropped so a partial trailing week is never written.
func ResampleWeekly(daily []model.PriceBar) []model.PriceBar {
	return resample(daily, model.TimeframeWeekly, weekEndingFriday)
}

// ResampleMonthly aggregates daily bars into calendar-month bars dated on
// the last day of each month, with the same aggregation rule as weekly.
func ResampleMonthly(daily []model.PriceBar) []model.PriceBar {
	return resample(daily, model.TimeframeMonthly, monthEnd)
}

// resample folds date-ordered daily bars into period bars keyed by label.
// Input bars must be sorted ascending by date.
func resample(daily []model.PriceBar, timeframe string, label func(time.Time) time.Time) []model.PriceBar {
	if len(daily) == 0 {
		return nil
	}
	lastDaily := daily[len(daily)-1].Date

	var out []model.PriceBar
	var cur *model.PriceBar
	for _, b := range daily {
		periodEnd := label(b.Date)
		if cur == nil || !cur.Date.Equal(periodEnd) {
			if cur != nil {
				out = append(out, *cur)
			}
			cur = &model.PriceBar{
				SymbolID:  b.SymbolID,
				Timeframe: timeframe,
				Date:      periodEnd,
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    b.Volume,
			}
			continue
		}
		cur.High = math.Max(cur.High, b.High)
		cur.Low = math.Min(cur.Low, b.Low)
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	out = append(out, *cur)

	kept := out[:0]
	for _, bar := range out {
		if bar.Date.After(lastDaily) {
			continue
		}
		bar.Open = round2(bar.Open)
		bar.High = round2(bar.High)
		bar.Low = round2(bar.Low)
		bar.Close = round2(bar.Close)
		bar.Volume = round2(bar.Volume)
		kept = append(kept, bar)
	}
	return kept
}

// weekEndingFriday returns the Friday on or after d, with weeks running
// Saturday through Friday: a Saturday date already belongs to the next week.
func weekEndingFriday(d time.Time) time.Time {
	offset := (int(time.Friday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}

// monthEnd returns the last calendar day of d's month.
func monthEnd(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, d.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
