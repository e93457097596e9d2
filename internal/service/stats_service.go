package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/model"
	"github.com/yourorg/market-scanner/internal/repository"
)

// StatsService maintains the rolling 52-week high/low summary per symbol.
type StatsService struct {
	statsRepo *repository.StatsRepository
	logger    *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(statsRepo *repository.StatsRepository, logger *zap.Logger) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		logger:    logger,
	}
}

// RefreshWeek52Stats recomputes 52-week high/low stats for one asset type.
func (s *StatsService) RefreshWeek52Stats(ctx context.Context, assetType string) (int, error) {
	tables, err := model.TablesFor(assetType)
	if err != nil {
		return 0, err
	}

	updated, err := s.statsRepo.RefreshWeek52(ctx, tables)
	if err != nil {
		return 0, err
	}

	s.logger.Info("52-week stats refreshed",
		zap.String("asset_type", assetType),
		zap.Int("symbols", updated))
	return updated, nil
}

// RefreshAllWeek52Stats refreshes 52-week stats for every asset type. A
// failure for one asset type is logged and the batch continues.
func (s *StatsService) RefreshAllWeek52Stats(ctx context.Context) int {
	total := 0
	for _, assetType := range model.AssetTypes() {
		updated, err := s.RefreshWeek52Stats(ctx, assetType)
		if err != nil {
			s.logger.Error("52-week stats refresh failed",
				zap.Error(err),
				zap.String("asset_type", assetType))
			continue
		}
		total += updated
	}
	return total
}
