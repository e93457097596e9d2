package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/model"
)

// MarketDataRepository handles database operations for price bars
type MarketDataRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewMarketDataRepository creates a new market data repository
func NewMarketDataRepository(db *sqlx.DB, logger *zap.Logger) *MarketDataRepository {
	return &MarketDataRepository{
		db:     db,
		logger: logger,
	}
}

// GetPriceBars retrieves the full bar history for a symbol and timeframe,
// ordered by date ascending.
func (r *MarketDataRepository) GetPriceBars(
	ctx context.Context,
	tables model.AssetTables,
	symbolID int,
	timeframe string,
) ([]model.PriceBar, error) {
	query := fmt.Sprintf(`
		SELECT symbol_id, timeframe, date, open, high, low, close, volume
		FROM %s
		WHERE symbol_id = $1 AND timeframe = $2
		ORDER BY date
	`, tables.Prices)

	var bars []model.PriceBar
	if err := r.db.SelectContext(ctx, &bars, query, symbolID, timeframe); err != nil {
		r.logger.Error("Failed to get price bars",
			zap.Error(err),
			zap.Int("symbol_id", symbolID),
			zap.String("timeframe", timeframe))
		return nil, err
	}
	return bars, nil
}

// GetBarsWithLookback retrieves bars from lookbackRows rows before lastDate
// through the latest available bar. The window must be long enough to
// satisfy the longest calculator warm-up; if fewer rows exist the whole
// history is returned.
func (r *MarketDataRepository) GetBarsWithLookback(
	ctx context.Context,
	tables model.AssetTables,
	symbolID int,
	timeframe string,
	lastDate time.Time,
	lookbackRows int,
) ([]model.PriceBar, error) {
	query := fmt.Sprintf(`
		SELECT symbol_id, timeframe, date, open, high, low, close, volume
		FROM %s
		WHERE symbol_id = $1 AND timeframe = $2
		  AND date >= COALESCE((
			SELECT date
			FROM %s
			WHERE symbol_id = $1 AND timeframe = $2 AND date <= $3
			ORDER BY date DESC
			OFFSET $4 LIMIT 1
		  ), '0001-01-01'::date)
		ORDER BY date
	`, tables.Prices, tables.Prices)

	var bars []model.PriceBar
	err := r.db.SelectContext(ctx, &bars, query, symbolID, timeframe, lastDate, lookbackRows)
	if err != nil {
		r.logger.Error("Failed to get lookback price bars",
			zap.Error(err),
			zap.Int("symbol_id", symbolID),
			zap.String("timeframe", timeframe))
		return nil, err
	}
	return bars, nil
}

// ListDailySymbolIDs returns every symbol that has at least one daily bar
func (r *MarketDataRepository) ListDailySymbolIDs(ctx context.Context, tables model.AssetTables) ([]int, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT symbol_id
		FROM %s
		WHERE timeframe = $1
		ORDER BY symbol_id
	`, tables.Prices)

	var ids []int
	if err := r.db.SelectContext(ctx, &ids, query, model.TimeframeDaily); err != nil {
		r.logger.Error("Failed to list daily symbol ids",
			zap.Error(err),
			zap.String("table", tables.Prices))
		return nil, err
	}
	return ids, nil
}

// UpsertPriceBars inserts a batch of price bars, overwriting on the
// (symbol_id, timeframe, date) key. The whole batch runs in one transaction.
func (r *MarketDataRepository) UpsertPriceBars(
	ctx context.Context,
	tables model.AssetTables,
	bars []model.PriceBar,
) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (symbol_id, timeframe, date, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol_id, timeframe, date)
		DO UPDATE SET
			open   = EXCLUDED.open,
			high   = EXCLUDED.high,
			low    = EXCLUDED.low,
			close  = EXCLUDED.close,
			volume = EXCLUDED.volume
	`, tables.Prices))
	if err != nil {
		r.logger.Error("Failed to prepare statement", zap.Error(err))
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		_, err = stmt.ExecContext(ctx,
			b.SymbolID, b.Timeframe, b.Date,
			b.Open, b.High, b.Low, b.Close, b.Volume,
		)
		if err != nil {
			r.logger.Error("Failed to upsert price bar",
				zap.Error(err),
				zap.Int("symbol_id", b.SymbolID),
				zap.Time("date", b.Date))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return err
	}
	return nil
}

// GetDailyOpenClose fetches daily open/close rows for a set of symbols in a
// date range, ordered by symbol then date. Used by the backtest evaluator.
func (r *MarketDataRepository) GetDailyOpenClose(
	ctx context.Context,
	tables model.AssetTables,
	symbolIDs []int,
	startDate time.Time,
	endDate time.Time,
) ([]model.DailyPrice, error) {
	query := fmt.Sprintf(`
		SELECT symbol_id, date, open, close
		FROM %s
		WHERE symbol_id = ANY($1)
		  AND timeframe = $2
		  AND date BETWEEN $3 AND $4
		ORDER BY symbol_id, date
	`, tables.Prices)

	var prices []model.DailyPrice
	err := r.db.SelectContext(ctx, &prices, query,
		pq.Array(symbolIDs), model.TimeframeDaily, startDate, endDate)
	if err != nil {
		r.logger.Error("Failed to get daily prices for backtest",
			zap.Error(err),
			zap.Int("symbols", len(symbolIDs)))
		return nil, err
	}
	return prices, nil
}

// GetLatestDates summarizes per-timeframe data availability
func (r *MarketDataRepository) GetLatestDates(ctx context.Context, tables model.AssetTables) ([]model.TimeframeStatus, error) {
	query := fmt.Sprintf(`
		SELECT timeframe, MAX(date) AS latest_date, COUNT(*) AS bar_count
		FROM %s
		GROUP BY timeframe
		ORDER BY timeframe
	`, tables.Prices)

	var statuses []model.TimeframeStatus
	if err := r.db.SelectContext(ctx, &statuses, query); err != nil {
		r.logger.Error("Failed to get latest dates",
			zap.Error(err),
			zap.String("table", tables.Prices))
		return nil, err
	}
	return statuses, nil
}
