package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/model"
)

// SymbolRepository handles database operations for symbol catalogues
type SymbolRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSymbolRepository creates a new symbol repository
func NewSymbolRepository(db *sqlx.DB, logger *zap.Logger) *SymbolRepository {
	return &SymbolRepository{
		db:     db,
		logger: logger,
	}
}

// ListSymbolIDs returns every symbol id in the asset type's symbol table
func (r *SymbolRepository) ListSymbolIDs(ctx context.Context, tables model.AssetTables) ([]int, error) {
	query := fmt.Sprintf("SELECT symbol_id FROM %s ORDER BY symbol_id", tables.Symbols)

	var ids []int
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		r.logger.Error("Failed to list symbol ids",
			zap.Error(err),
			zap.String("table", tables.Symbols))
		return nil, err
	}
	return ids, nil
}

// ListSymbols returns the symbol catalogue for an asset type
func (r *SymbolRepository) ListSymbols(ctx context.Context, tables model.AssetTables, sortDirection string) ([]model.Symbol, error) {
	query := fmt.Sprintf(
		"SELECT symbol_id, yahoo_symbol, is_active FROM %s ORDER BY yahoo_symbol %s",
		tables.Symbols, sortDirection,
	)

	var symbols []model.Symbol
	if err := r.db.SelectContext(ctx, &symbols, query); err != nil {
		r.logger.Error("Failed to list symbols",
			zap.Error(err),
			zap.String("table", tables.Symbols))
		return nil, err
	}
	return symbols, nil
}
