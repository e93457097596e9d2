package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/model"
	"github.com/yourorg/market-scanner/internal/service"
	"github.com/yourorg/market-scanner/internal/utils"
)

// MarketDataHandler handles market data HTTP requests
type MarketDataHandler struct {
	marketDataService *service.MarketDataService
	logger            *zap.Logger
}

// NewMarketDataHandler creates a new market data handler
func NewMarketDataHandler(marketDataService *service.MarketDataService, logger *zap.Logger) *MarketDataHandler {
	return &MarketDataHandler{
		marketDataService: marketDataService,
		logger:            logger,
	}
}

// GetSymbols handles listing the symbol catalogue of one asset type
// GET /api/v1/symbols?asset_type=&sort=
func (h *MarketDataHandler) GetSymbols(c *gin.Context) {
	assetType := c.Query("asset_type")
	if assetType == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "asset_type is required")
		return
	}
	sortDirection := utils.NormalizeSortDirection(c.Query("sort"))

	symbols, err := h.marketDataService.ListSymbols(c.Request.Context(), assetType, sortDirection)
	if err != nil {
		if errors.Is(err, model.ErrUnsupportedAssetType) {
			utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to list symbols",
			zap.Error(err),
			zap.String("asset_type", assetType))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to list symbols")
		return
	}
	utils.SendSuccessResponse(c, http.StatusOK, symbols)
}

// GetLatestDates handles the per-timeframe data-availability overview
// GET /api/v1/market-data/latest-dates?asset_type=
func (h *MarketDataHandler) GetLatestDates(c *gin.Context) {
	assetType := c.Query("asset_type")
	if assetType == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "asset_type is required")
		return
	}

	statuses, err := h.marketDataService.GetLatestDates(c.Request.Context(), assetType)
	if err != nil {
		if errors.Is(err, model.ErrUnsupportedAssetType) {
			utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to get latest dates",
			zap.Error(err),
			zap.String("asset_type", assetType))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to get latest dates")
		return
	}
	utils.SendSuccessResponse(c, http.StatusOK, statuses)
}

// BatchImportBars handles batch importing of price bars
// POST /api/v1/market-data/batch
func (h *MarketDataHandler) BatchImportBars(c *gin.Context) {
	var batch model.PriceBarBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(batch.Bars) == 0 {
		utils.SendErrorResponse(c, http.StatusBadRequest, "No price bars provided")
		return
	}

	count, err := h.marketDataService.BatchImportBars(c.Request.Context(), batch)
	if err != nil {
		if errors.Is(err, model.ErrUnsupportedAssetType) || errors.Is(err, model.ErrInvalidTimeframe) {
			utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to batch import price bars",
			zap.Error(err),
			zap.String("asset_type", batch.AssetType),
			zap.Int("bars", len(batch.Bars)))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to import price bars")
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": count})
}
