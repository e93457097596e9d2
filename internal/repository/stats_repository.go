package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/model"
)

// StatsRepository handles database operations for 52-week high/low stats
type StatsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *sqlx.DB, logger *zap.Logger) *StatsRepository {
	return &StatsRepository{
		db:     db,
		logger: logger,
	}
}

// RefreshWeek52 recomputes the trailing-365-day high/low per symbol from
// daily bars and upserts one summary row per symbol (overwrite semantics).
// Symbols with no daily data in the window simply produce no row. Returns
// the number of symbols updated.
func (r *StatsRepository) RefreshWeek52(ctx context.Context, tables model.AssetTables) (int, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (symbol_id, week52_high, week52_low, as_of_date)
		SELECT symbol_id, MAX(high), MIN(low), CURRENT_DATE
		FROM %s
		WHERE timeframe = $1
		  AND date >= CURRENT_DATE - INTERVAL '1 year'
		GROUP BY symbol_id
		ON CONFLICT (symbol_id) DO UPDATE SET
			week52_high = EXCLUDED.week52_high,
			week52_low  = EXCLUDED.week52_low,
			as_of_date  = EXCLUDED.as_of_date
	`, tables.Stats, tables.Prices)

	result, err := r.db.ExecContext(ctx, query, model.TimeframeDaily)
	if err != nil {
		r.logger.Error("Failed to refresh 52-week stats",
			zap.Error(err),
			zap.String("table", tables.Stats))
		return 0, err
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(updated), nil
}
