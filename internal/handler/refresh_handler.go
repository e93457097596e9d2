package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/model"
	"github.com/yourorg/market-scanner/internal/service"
	"github.com/yourorg/market-scanner/internal/utils"
)

// RefreshHandler handles the batch maintenance requests: indicator refresh,
// higher-timeframe generation and 52-week stats.
type RefreshHandler struct {
	indicatorService   *service.IndicatorService
	aggregationService *service.AggregationService
	statsService       *service.StatsService
	lookbackRows       int
	logger             *zap.Logger
}

// NewRefreshHandler creates a new refresh handler. lookbackRows is the
// configured default window for requests that do not override it.
func NewRefreshHandler(
	indicatorService *service.IndicatorService,
	aggregationService *service.AggregationService,
	statsService *service.StatsService,
	lookbackRows int,
	logger *zap.Logger,
) *RefreshHandler {
	return &RefreshHandler{
		indicatorService:   indicatorService,
		aggregationService: aggregationService,
		statsService:       statsService,
		lookbackRows:       lookbackRows,
		logger:             logger,
	}
}

// RefreshIndicators handles triggering an indicator refresh batch
// POST /api/v1/indicators/refresh
func (h *RefreshHandler) RefreshIndicators(c *gin.Context) {
	var request struct {
		AssetTypes   []string `json:"asset_types"`
		LookbackRows int      `json:"lookback_rows"`
	}
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if request.LookbackRows <= 0 {
		request.LookbackRows = h.lookbackRows
	}

	err := h.indicatorService.RefreshIndicators(c.Request.Context(), request.AssetTypes, request.LookbackRows)
	if err != nil {
		if errors.Is(err, model.ErrUnsupportedAssetType) {
			utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Indicator refresh failed", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Indicator refresh failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

// GenerateHigherTimeframes handles regenerating weekly and monthly bars
// POST /api/v1/market-data/higher-timeframes
func (h *RefreshHandler) GenerateHigherTimeframes(c *gin.Context) {
	var request struct {
		AssetType string `json:"asset_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.aggregationService.GenerateHigherTimeframes(c.Request.Context(), request.AssetType)
	if err != nil {
		if errors.Is(err, model.ErrUnsupportedAssetType) {
			utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Higher timeframe generation failed",
			zap.Error(err),
			zap.String("asset_type", request.AssetType))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Higher timeframe generation failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

// RefreshWeek52Stats handles refreshing 52-week high/low stats. Without an
// asset type every registered type is refreshed.
// POST /api/v1/stats/week52/refresh
func (h *RefreshHandler) RefreshWeek52Stats(c *gin.Context) {
	var request struct {
		AssetType string `json:"asset_type"`
	}
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var (
		rows int
		err  error
	)
	if request.AssetType == "" {
		rows = h.statsService.RefreshAllWeek52Stats(c.Request.Context())
	} else {
		rows, err = h.statsService.RefreshWeek52Stats(c.Request.Context(), request.AssetType)
	}
	if err != nil {
		if errors.Is(err, model.ErrUnsupportedAssetType) {
			utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("52-week stats refresh failed",
			zap.Error(err),
			zap.String("asset_type", request.AssetType))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "52-week stats refresh failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed", "rows": rows})
}
