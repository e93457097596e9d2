package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/model"
	"github.com/yourorg/market-scanner/internal/repository"
)

// tradeHorizonBars is the fixed holding period: enter at the open of the
// first bar after the signal, exit at the close of the sixth bar counting
// from entry.
const tradeHorizonBars = 6

// forwardFetchDays pads the price query past the last signal date so the
// exit bar is available for signals near the end of the range.
const forwardFetchDays = 10

var yearlyFilePattern = regexp.MustCompile(`YEARLY_(\d{4})`)

// signalRef is the slice of a signal file the evaluator needs: who and when.
type signalRef struct {
	SymbolID int
	Date     time.Time
}

// BacktestService replays scanner signal files against subsequent daily
// bars with a fixed six-bar holding period and summarizes the outcomes.
type BacktestService struct {
	marketDataRepo *repository.MarketDataRepository
	logger         *zap.Logger
}

// NewBacktestService creates a new backtest service
func NewBacktestService(marketDataRepo *repository.MarketDataRepository, logger *zap.Logger) *BacktestService {
	return &BacktestService{
		marketDataRepo: marketDataRepo,
		logger:         logger,
	}
}

// BacktestScanners evaluates every signal CSV in folder. Per file it writes
// a <name>_trades.csv next to the source and contributes one summary row;
// the summary table is written as scanner_summary.csv sorted most recent
// year first and returned. Files without signals still produce a zero row.
func (s *BacktestService) BacktestScanners(
	ctx context.Context,
	assetType string,
	folder string,
) ([]model.BacktestSummary, error) {
	tables, err := model.TablesFor(assetType)
	if err != nil {
		return nil, err
	}

	files, err := filepath.Glob(filepath.Join(folder, "*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	summaries := make([]model.BacktestSummary, 0, len(files))
	for _, file := range files {
		base := filepath.Base(file)
		if strings.HasSuffix(base, "_trades.csv") || base == "scanner_summary.csv" {
			continue
		}

		signals, err := readSignalFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", base, err)
		}

		var trades []model.Trade
		if len(signals) > 0 {
			prices, err := s.fetchPrices(ctx, tables, signals)
			if err != nil {
				return nil, err
			}
			trades = evaluateTrades(signals, prices)
		}

		tradesFile := strings.TrimSuffix(file, ".csv") + "_trades.csv"
		if err := writeCSV(tradesFile, tradeHeader, tradeRecords(trades)); err != nil {
			return nil, fmt.Errorf("failed to export trades for %s: %w", base, err)
		}

		summary := summarizeTrades(base, trades)
		summaries = append(summaries, summary)

		s.logger.Info("Backtested signal file",
			zap.String("file", base),
			zap.Int("signals", len(signals)),
			zap.Int("trades", summary.TotalTrades),
			zap.Float64("win_pct", summary.WinPct))
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Year != summaries[j].Year {
			return summaries[i].Year > summaries[j].Year
		}
		return summaries[i].File < summaries[j].File
	})

	summaryFile := filepath.Join(folder, "scanner_summary.csv")
	if err := writeCSV(summaryFile, summaryHeader, summaryRecords(summaries)); err != nil {
		return nil, fmt.Errorf("failed to export summary: %w", err)
	}
	return summaries, nil
}

// fetchPrices loads daily open/close bars for every symbol in the signal set
// in one query, from the earliest signal date through the latest plus the
// forward padding.
func (s *BacktestService) fetchPrices(
	ctx context.Context,
	tables model.AssetTables,
	signals []signalRef,
) (map[int][]model.DailyPrice, error) {
	minDate, maxDate := signals[0].Date, signals[0].Date
	seen := make(map[int]bool)
	ids := make([]int, 0)
	for _, sig := range signals {
		if sig.Date.Before(minDate) {
			minDate = sig.Date
		}
		if sig.Date.After(maxDate) {
			maxDate = sig.Date
		}
		if !seen[sig.SymbolID] {
			seen[sig.SymbolID] = true
			ids = append(ids, sig.SymbolID)
		}
	}

	rows, err := s.marketDataRepo.GetDailyOpenClose(
		ctx, tables, ids, minDate, maxDate.AddDate(0, 0, forwardFetchDays))
	if err != nil {
		return nil, err
	}

	// Rows arrive ordered by symbol then date, so each per-symbol series
	// stays sorted.
	bySymbol := make(map[int][]model.DailyPrice, len(ids))
	for _, row := range rows {
		bySymbol[row.SymbolID] = append(bySymbol[row.SymbolID], row)
	}
	return bySymbol, nil
}

// evaluateTrades simulates one trade per signal. Entry is the first bar
// strictly after the signal date; a signal without six bars from entry
// onward is skipped.
func evaluateTrades(signals []signalRef, prices map[int][]model.DailyPrice) []model.Trade {
	trades := make([]model.Trade, 0, len(signals))
	for _, sig := range signals {
		series := prices[sig.SymbolID]
		entry := sort.Search(len(series), func(i int) bool {
			return series[i].Date.After(sig.Date)
		})
		exit := entry + tradeHorizonBars - 1
		if exit >= len(series) {
			continue
		}
		entryBar, exitBar := series[entry], series[exit]
		if entryBar.Open == 0 {
			continue
		}
		trades = append(trades, model.Trade{
			SymbolID:  sig.SymbolID,
			EntryDate: entryBar.Date,
			EntryOpen: entryBar.Open,
			ExitDate:  exitBar.Date,
			ExitClose: exitBar.Close,
			ReturnPct: (exitBar.Close - entryBar.Open) / entryBar.Open * 100,
		})
	}
	return trades
}

// summarizeTrades aggregates one signal file's trades. The year is parsed
// from YEARLY_<yyyy> file names; point-in-time files carry year zero.
func summarizeTrades(file string, trades []model.Trade) model.BacktestSummary {
	summary := model.BacktestSummary{File: file, TotalTrades: len(trades)}
	if m := yearlyFilePattern.FindStringSubmatch(file); m != nil {
		summary.Year, _ = strconv.Atoi(m[1])
	}
	if len(trades) == 0 {
		return summary
	}

	wins := 0
	maxWin, maxLoss := trades[0].ReturnPct, trades[0].ReturnPct
	for _, t := range trades {
		if t.ReturnPct > 0 {
			wins++
		}
		if t.ReturnPct > maxWin {
			maxWin = t.ReturnPct
		}
		if t.ReturnPct < maxLoss {
			maxLoss = t.ReturnPct
		}
	}
	summary.WinPct = float64(wins) / float64(len(trades)) * 100
	summary.MaxWinPct = maxWin
	summary.MaxLossPct = maxLoss
	return summary
}

// readSignalFile parses the symbol_id and date columns of one signal CSV.
// Header-only files yield an empty signal set.
func readSignalFile(path string) ([]signalRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) <= 1 {
		return nil, nil
	}

	signals := make([]signalRef, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 3 {
			return nil, fmt.Errorf("malformed signal row: %v", rec)
		}
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("bad symbol_id %q: %w", rec[0], err)
		}
		date, err := time.Parse(dateLayout, rec[2])
		if err != nil {
			return nil, fmt.Errorf("bad date %q: %w", rec[2], err)
		}
		signals = append(signals, signalRef{SymbolID: id, Date: date})
	}
	return signals, nil
}
