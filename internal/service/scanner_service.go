package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/config"
	"github.com/yourorg/market-scanner/internal/events"
	"github.com/yourorg/market-scanner/internal/model"
	"github.com/yourorg/market-scanner/internal/repository"
)

// ScannerService runs the rule-based scans over persisted indicator rows.
// The repository returns joined snapshots; the rules themselves are pure
// functions over those snapshots, parameterized by the configured
// thresholds. Every run materializes its signal set as CSV under the
// configured output directory in addition to returning it.
type ScannerService struct {
	indicatorRepo *repository.IndicatorRepository
	backtest      *BacktestService
	producer      *events.Producer
	scanTopic     string
	cfg           config.ScannerConfig
	logger        *zap.Logger
}

// NewScannerService creates a new scanner service
func NewScannerService(
	indicatorRepo *repository.IndicatorRepository,
	backtest *BacktestService,
	producer *events.Producer,
	scanTopic string,
	cfg config.ScannerConfig,
	logger *zap.Logger,
) *ScannerService {
	return &ScannerService{
		indicatorRepo: indicatorRepo,
		backtest:      backtest,
		producer:      producer,
		scanTopic:     scanTopic,
		cfg:           cfg,
		logger:        logger,
	}
}

// RunScannerHilegaMilega scans all active symbols of one asset type on a
// single date. Signals are ordered date descending then symbol ascending
// and written to HM_<ddMonYYYY>.csv in a cleared per-asset folder.
func (s *ScannerService) RunScannerHilegaMilega(
	ctx context.Context,
	scanDate time.Time,
	assetType string,
) ([]model.HMSignal, error) {
	tables, err := model.TablesFor(assetType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	snaps, err := s.indicatorRepo.GetHilegaMilegaSnapshots(ctx, tables, scanDate, scanDate)
	if err != nil {
		return nil, err
	}

	signals := applyHilegaMilega(snaps, s.cfg.HilegaMilega)
	sortHMSignals(signals)

	folder := filepath.Join(s.cfg.OutputDir, "HM", assetType)
	if err := prepareFolder(folder); err != nil {
		return nil, err
	}
	file := filepath.Join(folder, fmt.Sprintf("HM_%s.csv", scanFileTimestamp(time.Now())))
	if err := writeCSV(file, hmSignalHeader, hmSignalRecords(signals)); err != nil {
		return nil, fmt.Errorf("failed to export signals: %w", err)
	}

	s.logger.Info("Hilega-Milega scan completed",
		zap.String("asset_type", assetType),
		zap.Time("scan_date", scanDate),
		zap.Int("snapshots", len(snaps)),
		zap.Int("signals", len(signals)),
		zap.Duration("elapsed", time.Since(start)))

	s.producer.Publish(ctx, s.scanTopic, assetType, events.ScanCompletedEvent{
		Scanner:    "hilega-milega",
		AssetType:  assetType,
		ScanDate:   scanDate.Format(dateLayout),
		Signals:    len(signals),
		FinishedAt: time.Now(),
	})
	return signals, nil
}

// RunScannerWeekly scans the weekly rows of all active symbols of one asset
// type on a single date (the date of a completed week). Signals are ordered
// by symbol and written to WEEKLY_<ddMonYYYY>.csv in a cleared folder.
func (s *ScannerService) RunScannerWeekly(
	ctx context.Context,
	scanDate time.Time,
	assetType string,
) ([]model.WeeklySignal, error) {
	tables, err := model.TablesFor(assetType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	snaps, err := s.indicatorRepo.GetWeeklySnapshots(ctx, tables, scanDate, scanDate)
	if err != nil {
		return nil, err
	}

	signals := applyWeekly(snaps, s.cfg.Weekly)
	sort.Slice(signals, func(i, j int) bool {
		return signals[i].YahooSymbol < signals[j].YahooSymbol
	})

	folder := filepath.Join(s.cfg.OutputDir, "weekly", assetType)
	if err := prepareFolder(folder); err != nil {
		return nil, err
	}
	file := filepath.Join(folder, fmt.Sprintf("WEEKLY_%s.csv", scanFileTimestamp(time.Now())))
	if err := writeCSV(file, weeklySignalHeader, weeklySignalRecords(signals)); err != nil {
		return nil, fmt.Errorf("failed to export signals: %w", err)
	}

	s.logger.Info("Weekly scan completed",
		zap.String("asset_type", assetType),
		zap.Time("scan_date", scanDate),
		zap.Int("snapshots", len(snaps)),
		zap.Int("signals", len(signals)),
		zap.Duration("elapsed", time.Since(start)))

	s.producer.Publish(ctx, s.scanTopic, assetType, events.ScanCompletedEvent{
		Scanner:    "weekly",
		AssetType:  assetType,
		ScanDate:   scanDate.Format(dateLayout),
		Signals:    len(signals),
		FinishedAt: time.Now(),
	})
	return signals, nil
}

// ScannerBacktestMultiYearsHM runs the Hilega-Milega rule over every trading
// day of the last lookbackYears calendar years ending with startYear, writes
// one HM_YEARLY_<yyyy>.csv per year (most recent first) and then evaluates
// the trades for the whole folder.
func (s *ScannerService) ScannerBacktestMultiYearsHM(
	ctx context.Context,
	startYear int,
	lookbackYears int,
	assetType string,
) ([]model.BacktestSummary, error) {
	tables, err := model.TablesFor(assetType)
	if err != nil {
		return nil, err
	}
	firstYear, startDate, endDate, err := backtestRange(startYear, lookbackYears)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	snaps, err := s.indicatorRepo.GetHilegaMilegaSnapshots(ctx, tables, startDate, endDate)
	if err != nil {
		return nil, err
	}
	signals := applyHilegaMilega(snaps, s.cfg.HilegaMilega)
	sortHMSignals(signals)

	byYear := make(map[int][]model.HMSignal)
	for _, sig := range signals {
		byYear[sig.Date.Year()] = append(byYear[sig.Date.Year()], sig)
	}

	folder := filepath.Join(s.cfg.OutputDir, "HM", assetType)
	if err := prepareFolder(folder); err != nil {
		return nil, err
	}
	for year := startYear; year >= firstYear; year-- {
		file := filepath.Join(folder, fmt.Sprintf("HM_YEARLY_%d.csv", year))
		if err := writeCSV(file, hmSignalHeader, hmSignalRecords(byYear[year])); err != nil {
			return nil, fmt.Errorf("failed to export signals for %d: %w", year, err)
		}
	}

	s.logger.Info("Hilega-Milega multi-year scan completed",
		zap.String("asset_type", assetType),
		zap.Int("start_year", startYear),
		zap.Int("lookback_years", lookbackYears),
		zap.Int("signals", len(signals)),
		zap.Duration("elapsed", time.Since(start)))

	s.producer.Publish(ctx, s.scanTopic, assetType, events.ScanCompletedEvent{
		Scanner:    "hilega-milega-backtest",
		AssetType:  assetType,
		Signals:    len(signals),
		FinishedAt: time.Now(),
	})
	return s.backtest.BacktestScanners(ctx, assetType, folder)
}

// ScannerBacktestMultiYearsWeekly is the weekly counterpart of the
// multi-year run. Its yearly files go to a separate "play" folder so they
// never collide with point-in-time weekly scans.
func (s *ScannerService) ScannerBacktestMultiYearsWeekly(
	ctx context.Context,
	startYear int,
	lookbackYears int,
	assetType string,
) ([]model.BacktestSummary, error) {
	tables, err := model.TablesFor(assetType)
	if err != nil {
		return nil, err
	}
	firstYear, startDate, endDate, err := backtestRange(startYear, lookbackYears)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	snaps, err := s.indicatorRepo.GetWeeklySnapshots(ctx, tables, startDate, endDate)
	if err != nil {
		return nil, err
	}
	signals := applyWeekly(snaps, s.cfg.Weekly)
	sort.Slice(signals, func(i, j int) bool {
		if !signals[i].Date.Equal(signals[j].Date) {
			return signals[i].Date.Before(signals[j].Date)
		}
		return signals[i].YahooSymbol < signals[j].YahooSymbol
	})

	byYear := make(map[int][]model.WeeklySignal)
	for _, sig := range signals {
		byYear[sig.Date.Year()] = append(byYear[sig.Date.Year()], sig)
	}

	folder := filepath.Join(s.cfg.OutputDir, "play", assetType)
	if err := prepareFolder(folder); err != nil {
		return nil, err
	}
	for year := firstYear; year <= startYear; year++ {
		file := filepath.Join(folder, fmt.Sprintf("YEARLY_%d.csv", year))
		if err := writeCSV(file, weeklySignalHeader, weeklySignalRecords(byYear[year])); err != nil {
			return nil, fmt.Errorf("failed to export signals for %d: %w", year, err)
		}
	}

	s.logger.Info("Weekly multi-year scan completed",
		zap.String("asset_type", assetType),
		zap.Int("start_year", startYear),
		zap.Int("lookback_years", lookbackYears),
		zap.Int("signals", len(signals)),
		zap.Duration("elapsed", time.Since(start)))

	s.producer.Publish(ctx, s.scanTopic, assetType, events.ScanCompletedEvent{
		Scanner:    "weekly-backtest",
		AssetType:  assetType,
		Signals:    len(signals),
		FinishedAt: time.Now(),
	})
	return s.backtest.BacktestScanners(ctx, assetType, folder)
}

// backtestRange turns (startYear, lookbackYears) into the inclusive scan
// window: Jan 1 of the first covered year through Dec 31 of startYear.
func backtestRange(startYear, lookbackYears int) (int, time.Time, time.Time, error) {
	if startYear < 1900 || startYear > 2200 {
		return 0, time.Time{}, time.Time{}, fmt.Errorf("invalid start year %d", startYear)
	}
	if lookbackYears < 1 {
		return 0, time.Time{}, time.Time{}, fmt.Errorf("invalid lookback years %d", lookbackYears)
	}
	firstYear := startYear - lookbackYears + 1
	startDate := time.Date(firstYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	endDate := time.Date(startYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	return firstYear, startDate, endDate, nil
}

func sortHMSignals(signals []model.HMSignal) {
	sort.Slice(signals, func(i, j int) bool {
		if !signals[i].Date.Equal(signals[j].Date) {
			return signals[i].Date.After(signals[j].Date)
		}
		return signals[i].YahooSymbol < signals[j].YahooSymbol
	})
}

// applyHilegaMilega evaluates the Hilega-Milega rule over daily snapshots.
// Rows missing any joined field are excluded, as are rows whose ratio
// denominators are not positive.
func applyHilegaMilega(snaps []model.HMSnapshot, thr config.HMThresholds) []model.HMSignal {
	signals := make([]model.HMSignal, 0)
	for _, snap := range snaps {
		if snap.RSI3 == nil || snap.RSI9 == nil ||
			snap.EMARSI93 == nil || snap.WMARSI921 == nil ||
			snap.RSI3Weekly == nil || snap.RSI3Monthly == nil {
			continue
		}
		rsi3, rsi9 := *snap.RSI3, *snap.RSI9
		ema, wma := *snap.EMARSI93, *snap.WMARSI921
		if rsi9 <= 0 || ema <= 0 || wma <= 0 {
			continue
		}
		if snap.Close < thr.MinClose ||
			rsi3/rsi9 < thr.RSI3RSI9 ||
			rsi9/ema <= thr.RSI9EMA ||
			ema/wma < thr.EMAWMA ||
			rsi3 >= thr.RSI3Max ||
			*snap.RSI3Weekly <= thr.WeeklyRSI3Min ||
			*snap.RSI3Monthly <= thr.MonthlyRSI3Min {
			continue
		}
		signals = append(signals, model.HMSignal{
			SymbolID:    snap.SymbolID,
			YahooSymbol: snap.YahooSymbol,
			Date:        snap.Date,
			RSI3:        rsi3,
			RSI9:        rsi9,
			EMARSI93:    ema,
			WMARSI921:   wma,
			Close:       snap.Close,
			RSI3Weekly:  *snap.RSI3Weekly,
			RSI3Monthly: *snap.RSI3Monthly,
		})
	}
	return signals
}

// applyWeekly evaluates the weekly momentum rule over weekly snapshots with
// their sequential lookbacks. Rows with insufficient weekly history carry
// nil lookbacks and are excluded.
func applyWeekly(snaps []model.WeeklySnapshot, thr config.WeeklyThresholds) []model.WeeklySignal {
	signals := make([]model.WeeklySignal, 0)
	for _, snap := range snaps {
		if snap.SMA20 == nil || snap.RSI3Weekly == nil || snap.RSI9Weekly == nil ||
			snap.EMARSI93 == nil || snap.WMARSI921 == nil ||
			snap.Close1wAgo == nil || snap.SMA202wAgo == nil || snap.MinLow4wAgo == nil {
			continue
		}
		rsi3, rsi9 := *snap.RSI3Weekly, *snap.RSI9Weekly
		ema, wma := *snap.EMARSI93, *snap.WMARSI921
		if rsi9 <= 0 || ema <= 0 || wma <= 0 {
			continue
		}
		if snap.WeeklyClose <= *snap.SMA20 ||
			snap.WeeklyLow > *snap.MinLow4wAgo ||
			*snap.SMA202wAgo >= *snap.SMA20 ||
			snap.WeeklyClose < *snap.Close1wAgo ||
			snap.WeeklyClose <= thr.MinClose ||
			rsi3/rsi9 < thr.RSI3RSI9 ||
			rsi9/ema < thr.RSI9EMA ||
			ema/wma < thr.EMAWMA ||
			rsi9 <= thr.RSI9Min {
			continue
		}
		signals = append(signals, model.WeeklySignal{
			SymbolID:    snap.SymbolID,
			YahooSymbol: snap.YahooSymbol,
			Date:        snap.Date,
			WeeklyOpen:  snap.WeeklyOpen,
			WeeklyHigh:  snap.WeeklyHigh,
			WeeklyLow:   snap.WeeklyLow,
			WeeklyClose: snap.WeeklyClose,
			SMA20:       *snap.SMA20,
			RSI3Weekly:  rsi3,
			RSI9Weekly:  rsi9,
			EMARSI93:    ema,
			WMARSI921:   wma,
			Close1wAgo:  *snap.Close1wAgo,
			SMA202wAgo:  *snap.SMA202wAgo,
			MinLow4wAgo: *snap.MinLow4wAgo,
		})
	}
	return signals
}
