package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/config"
	"github.com/yourorg/market-scanner/internal/events"
	"github.com/yourorg/market-scanner/internal/handler"
	"github.com/yourorg/market-scanner/internal/middleware"
	"github.com/yourorg/market-scanner/internal/repository"
	"github.com/yourorg/market-scanner/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := connectToDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Kafka producer (nil when no brokers configured)
	producer := events.NewProducer(cfg.Kafka.Brokers, logger)
	defer producer.Close()

	// Initialize repositories
	marketDataRepo := repository.NewMarketDataRepository(db, logger)
	indicatorRepo := repository.NewIndicatorRepository(db, logger)
	symbolRepo := repository.NewSymbolRepository(db, logger)
	statsRepo := repository.NewStatsRepository(db, logger)

	// Initialize services
	marketDataService := service.NewMarketDataService(marketDataRepo, symbolRepo, logger)
	indicatorService := service.NewIndicatorService(
		marketDataRepo,
		indicatorRepo,
		symbolRepo,
		producer,
		cfg.Kafka.RefreshTopic(),
		logger,
	)
	aggregationService := service.NewAggregationService(marketDataRepo, logger)
	statsService := service.NewStatsService(statsRepo, logger)
	backtestService := service.NewBacktestService(marketDataRepo, logger)
	scannerService := service.NewScannerService(
		indicatorRepo,
		backtestService,
		producer,
		cfg.Kafka.ScanTopic(),
		cfg.Scanner,
		logger,
	)

	// Initialize handlers
	marketDataHandler := handler.NewMarketDataHandler(marketDataService, logger)
	refreshHandler := handler.NewRefreshHandler(
		indicatorService,
		aggregationService,
		statsService,
		cfg.Refresh.LookbackRows,
		logger,
	)
	scannerHandler := handler.NewScannerHandler(scannerService, logger)

	// Set up HTTP server with Gin
	router := setupRouter(marketDataHandler, refreshHandler, scannerHandler, logger, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func createLogger(logCfg config.LoggingConfig) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch logCfg.Level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encoding := logCfg.Format
	if encoding != "console" {
		encoding = "json"
	}

	zapCfg := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapCfg.Build()
}

// connectToDB opens the pool with exponential backoff so the service
// survives the database coming up after it in a compose stack.
func connectToDB(dbConfig config.DatabaseConfig, logger *zap.Logger) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)

	var db *sqlx.DB
	operation := func() error {
		var err error
		db, err = sqlx.Connect("pgx", dsn)
		if err != nil {
			logger.Warn("Database not ready, retrying", zap.Error(err))
		}
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

func setupRouter(
	marketDataHandler *handler.MarketDataHandler,
	refreshHandler *handler.RefreshHandler,
	scannerHandler *handler.ScannerHandler,
	logger *zap.Logger,
	cfg *config.Config,
) *gin.Engine {
	router := gin.New()

	// Use middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Symbol catalogue
		v1.GET("/symbols", marketDataHandler.GetSymbols)

		// Market data routes
		marketData := v1.Group("/market-data")
		{
			marketData.GET("/latest-dates", marketDataHandler.GetLatestDates)

			// Protected write routes
			marketDataAuth := marketData.Group("")
			marketDataAuth.Use(middleware.ServiceAuthMiddleware(cfg.ServiceKey, logger))
			marketDataAuth.POST("/batch", marketDataHandler.BatchImportBars)
			marketDataAuth.POST("/higher-timeframes", refreshHandler.GenerateHigherTimeframes)
		}

		// Indicator refresh routes
		indicators := v1.Group("/indicators")
		{
			indicators.Use(middleware.ServiceAuthMiddleware(cfg.ServiceKey, logger))
			indicators.POST("/refresh", refreshHandler.RefreshIndicators)
		}

		// Stats routes
		stats := v1.Group("/stats")
		{
			stats.Use(middleware.ServiceAuthMiddleware(cfg.ServiceKey, logger))
			stats.POST("/week52/refresh", refreshHandler.RefreshWeek52Stats)
		}

		// Scanner routes
		scanners := v1.Group("/scanners")
		{
			scanners.POST("/hilega-milega/scan", scannerHandler.ScanHilegaMilega)
			scanners.POST("/hilega-milega/backtest", scannerHandler.BacktestHilegaMilega)
			scanners.POST("/weekly/scan", scannerHandler.ScanWeekly)
			scanners.POST("/weekly/backtest", scannerHandler.BacktestWeekly)
		}
	}

	return router
}
