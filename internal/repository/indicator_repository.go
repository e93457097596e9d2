package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/model"
)

// IndicatorRepository handles database operations for indicator rows and the
// joined snapshots the scanners evaluate.
type IndicatorRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewIndicatorRepository creates a new indicator repository
func NewIndicatorRepository(db *sqlx.DB, logger *zap.Logger) *IndicatorRepository {
	return &IndicatorRepository{
		db:     db,
		logger: logger,
	}
}

// GetLatestIndicatorDate returns the most recent persisted indicator date
// for a symbol and timeframe, or nil when no row exists yet.
func (r *IndicatorRepository) GetLatestIndicatorDate(
	ctx context.Context,
	tables model.AssetTables,
	symbolID int,
	timeframe string,
) (*time.Time, error) {
	query := fmt.Sprintf(`
		SELECT MAX(date) FROM %s
		WHERE symbol_id = $1 AND timeframe = $2
	`, tables.Indicators)

	var latest sql.NullTime
	err := r.db.GetContext(ctx, &latest, query, symbolID, timeframe)
	if err != nil {
		r.logger.Error("Failed to get latest indicator date",
			zap.Error(err),
			zap.Int("symbol_id", symbolID),
			zap.String("timeframe", timeframe))
		return nil, err
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}

// UpsertIndicatorRows inserts a batch of indicator rows, overwriting on the
// (symbol_id, timeframe, date) key. The whole batch runs in one transaction.
func (r *IndicatorRepository) UpsertIndicatorRows(
	ctx context.Context,
	tables model.AssetTables,
	rows []model.IndicatorRow,
) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			symbol_id, timeframe, date,
			sma_20, sma_50, sma_200,
			rsi_3, rsi_9, rsi_14,
			bb_upper, bb_middle, bb_lower,
			atr_14, supertrend, supertrend_dir,
			ema_rsi_9_3, wma_rsi_9_21, pct_price_change,
			macd, macd_signal
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (symbol_id, timeframe, date)
		DO UPDATE SET
			sma_20           = EXCLUDED.sma_20,
			sma_50           = EXCLUDED.sma_50,
			sma_200          = EXCLUDED.sma_200,
			rsi_3            = EXCLUDED.rsi_3,
			rsi_9            = EXCLUDED.rsi_9,
			rsi_14           = EXCLUDED.rsi_14,
			bb_upper         = EXCLUDED.bb_upper,
			bb_middle        = EXCLUDED.bb_middle,
			bb_lower         = EXCLUDED.bb_lower,
			atr_14           = EXCLUDED.atr_14,
			supertrend       = EXCLUDED.supertrend,
			supertrend_dir   = EXCLUDED.supertrend_dir,
			ema_rsi_9_3      = EXCLUDED.ema_rsi_9_3,
			wma_rsi_9_21     = EXCLUDED.wma_rsi_9_21,
			pct_price_change = EXCLUDED.pct_price_change,
			macd             = EXCLUDED.macd,
			macd_signal      = EXCLUDED.macd_signal
	`, tables.Indicators))
	if err != nil {
		r.logger.Error("Failed to prepare statement", zap.Error(err))
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err = stmt.ExecContext(ctx,
			row.SymbolID, row.Timeframe, row.Date,
			row.SMA20, row.SMA50, row.SMA200,
			row.RSI3, row.RSI9, row.RSI14,
			row.BBUpper, row.BBMiddle, row.BBLower,
			row.ATR14, row.Supertrend, row.SupertrendDir,
			row.EMARSI93, row.WMARSI921, row.PctPriceChange,
			row.MACD, row.MACDSignal,
		)
		if err != nil {
			r.logger.Error("Failed to upsert indicator row",
				zap.Error(err),
				zap.Int("symbol_id", row.SymbolID),
				zap.Time("date", row.Date))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return err
	}
	return nil
}

// GetHilegaMilegaSnapshots fetches daily indicator/price rows in a date
// range joined with the most recent weekly and monthly RSI(3) dated on or
// before each daily date (as-of joins, not exact-date joins). Point-in-time
// scans pass startDate == endDate.
func (r *IndicatorRepository) GetHilegaMilegaSnapshots(
	ctx context.Context,
	tables model.AssetTables,
	startDate time.Time,
	endDate time.Time,
) ([]model.HMSnapshot, error) {
	query := fmt.Sprintf(`
		SELECT
			d.symbol_id,
			s.yahoo_symbol,
			d.date,
			d.rsi_3,
			d.rsi_9,
			d.ema_rsi_9_3,
			d.wma_rsi_9_21,
			p.close,
			w.rsi_3 AS rsi_3_weekly,
			m.rsi_3 AS rsi_3_monthly
		FROM %s d
		JOIN %s p
		  ON p.symbol_id = d.symbol_id
		 AND p.date = d.date
		 AND p.timeframe = '1d'
		JOIN %s s
		  ON s.symbol_id = d.symbol_id
		LEFT JOIN LATERAL (
			SELECT rsi_3
			FROM %s w
			WHERE w.symbol_id = d.symbol_id
			  AND w.timeframe = '1wk'
			  AND w.date <= d.date
			ORDER BY w.date DESC
			LIMIT 1
		) w ON TRUE
		LEFT JOIN LATERAL (
			SELECT rsi_3
			FROM %s m
			WHERE m.symbol_id = d.symbol_id
			  AND m.timeframe = '1mo'
			  AND m.date <= d.date
			ORDER BY m.date DESC
			LIMIT 1
		) m ON TRUE
		WHERE d.timeframe = '1d'
		  AND d.date BETWEEN $1 AND $2
		  AND s.is_active = TRUE
		ORDER BY d.date, s.yahoo_symbol
	`, tables.Indicators, tables.Prices, tables.Symbols, tables.Indicators, tables.Indicators)

	var snaps []model.HMSnapshot
	if err := r.db.SelectContext(ctx, &snaps, query, startDate, endDate); err != nil {
		r.logger.Error("Failed to get HM snapshots",
			zap.Error(err),
			zap.Time("start_date", startDate),
			zap.Time("end_date", endDate))
		return nil, err
	}
	return snaps, nil
}

// GetWeeklySnapshots fetches weekly indicator/price rows in a date range
// with sequential lookbacks (prior week's close, SMA-20 two weeks back,
// minimum low over the 4 preceding weeks) computed via window functions over
// each symbol's full weekly history up to endDate, strictly "N rows back".
// Point-in-time scans pass startDate == endDate.
func (r *IndicatorRepository) GetWeeklySnapshots(
	ctx context.Context,
	tables model.AssetTables,
	startDate time.Time,
	endDate time.Time,
) ([]model.WeeklySnapshot, error) {
	query := fmt.Sprintf(`
		WITH weekly_history AS (
			SELECT
				p.symbol_id,
				s.yahoo_symbol,
				p.date,
				p.open  AS weekly_open,
				p.high  AS weekly_high,
				p.low   AS weekly_low,
				p.close AS weekly_close,
				i.sma_20,
				i.rsi_3 AS rsi_3_weekly,
				i.rsi_9 AS rsi_9_weekly,
				i.ema_rsi_9_3,
				i.wma_rsi_9_21
			FROM %s p
			JOIN %s i
			  ON p.symbol_id = i.symbol_id
			 AND p.date = i.date
			 AND i.timeframe = '1wk'
			JOIN %s s
			  ON s.symbol_id = p.symbol_id
			WHERE p.timeframe = '1wk'
			  AND p.date <= $2
			  AND s.is_active = TRUE
		),
		weekly_with_lookbacks AS (
			SELECT *,
				LAG(weekly_close, 1) OVER w AS close_1w_ago,
				LAG(sma_20, 2) OVER w AS sma_20_2w_ago,
				MIN(weekly_low) OVER (
					PARTITION BY symbol_id
					ORDER BY date
					ROWS BETWEEN 4 PRECEDING AND 1 PRECEDING
				) AS min_low_4w_ago
			FROM weekly_history
			WINDOW w AS (PARTITION BY symbol_id ORDER BY date)
		)
		SELECT *
		FROM weekly_with_lookbacks
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, yahoo_symbol
	`, tables.Prices, tables.Indicators, tables.Symbols)

	var snaps []model.WeeklySnapshot
	if err := r.db.SelectContext(ctx, &snaps, query, startDate, endDate); err != nil {
		r.logger.Error("Failed to get weekly snapshots",
			zap.Error(err),
			zap.Time("start_date", startDate),
			zap.Time("end_date", endDate))
		return nil, err
	}
	return snaps, nil
}
