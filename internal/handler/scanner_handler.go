package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/model"
	"github.com/yourorg/market-scanner/internal/service"
	"github.com/yourorg/market-scanner/internal/utils"
)

// ScannerHandler handles scan and backtest HTTP requests
type ScannerHandler struct {
	scannerService *service.ScannerService
	logger         *zap.Logger
}

// NewScannerHandler creates a new scanner handler
func NewScannerHandler(scannerService *service.ScannerService, logger *zap.Logger) *ScannerHandler {
	return &ScannerHandler{
		scannerService: scannerService,
		logger:         logger,
	}
}

type scanRequest struct {
	ScanDate  string `json:"scan_date" binding:"required"`
	AssetType string `json:"asset_type" binding:"required"`
}

type backtestRequest struct {
	StartYear     int    `json:"start_year" binding:"required,gte=1900,lte=2200"`
	LookbackYears int    `json:"lookback_years" binding:"required,gte=1,lte=50"`
	AssetType     string `json:"asset_type" binding:"required"`
}

func parseScanRequest(c *gin.Context) (time.Time, string, bool) {
	var request scanRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return time.Time{}, "", false
	}
	scanDate, err := time.Parse("2006-01-02", request.ScanDate)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid scan_date format. Use YYYY-MM-DD")
		return time.Time{}, "", false
	}
	return scanDate, request.AssetType, true
}

// ScanHilegaMilega handles a point-in-time Hilega-Milega scan
// POST /api/v1/scanners/hilega-milega/scan
func (h *ScannerHandler) ScanHilegaMilega(c *gin.Context) {
	scanDate, assetType, ok := parseScanRequest(c)
	if !ok {
		return
	}

	signals, err := h.scannerService.RunScannerHilegaMilega(c.Request.Context(), scanDate, assetType)
	if err != nil {
		if errors.Is(err, model.ErrUnsupportedAssetType) {
			utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Hilega-Milega scan failed",
			zap.Error(err),
			zap.String("asset_type", assetType))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Scan failed")
		return
	}
	utils.SendSuccessResponse(c, http.StatusOK, signals)
}

// ScanWeekly handles a point-in-time weekly scan
// POST /api/v1/scanners/weekly/scan
func (h *ScannerHandler) ScanWeekly(c *gin.Context) {
	scanDate, assetType, ok := parseScanRequest(c)
	if !ok {
		return
	}

	signals, err := h.scannerService.RunScannerWeekly(c.Request.Context(), scanDate, assetType)
	if err != nil {
		if errors.Is(err, model.ErrUnsupportedAssetType) {
			utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Weekly scan failed",
			zap.Error(err),
			zap.String("asset_type", assetType))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Scan failed")
		return
	}
	utils.SendSuccessResponse(c, http.StatusOK, signals)
}

// BacktestHilegaMilega handles a multi-year Hilega-Milega backtest
// POST /api/v1/scanners/hilega-milega/backtest
func (h *ScannerHandler) BacktestHilegaMilega(c *gin.Context) {
	var request backtestRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	summaries, err := h.scannerService.ScannerBacktestMultiYearsHM(
		c.Request.Context(), request.StartYear, request.LookbackYears, request.AssetType)
	if err != nil {
		if errors.Is(err, model.ErrUnsupportedAssetType) {
			utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Hilega-Milega backtest failed",
			zap.Error(err),
			zap.String("asset_type", request.AssetType),
			zap.Int("start_year", request.StartYear))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Backtest failed")
		return
	}
	utils.SendSuccessResponse(c, http.StatusOK, summaries)
}

// BacktestWeekly handles a multi-year weekly backtest
// POST /api/v1/scanners/weekly/backtest
func (h *ScannerHandler) BacktestWeekly(c *gin.Context) {
	var request backtestRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	summaries, err := h.scannerService.ScannerBacktestMultiYearsWeekly(
		c.Request.Context(), request.StartYear, request.LookbackYears, request.AssetType)
	if err != nil {
		if errors.Is(err, model.ErrUnsupportedAssetType) {
			utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Weekly backtest failed",
			zap.Error(err),
			zap.String("asset_type", request.AssetType),
			zap.Int("start_year", request.StartYear))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Backtest failed")
		return
	}
	utils.SendSuccessResponse(c, http.StatusOK, summaries)
}
