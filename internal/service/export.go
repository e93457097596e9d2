package service

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/yourorg/market-scanner/internal/model"
)

const dateLayout = "2006-01-02"

// scanFileTimestamp formats the run timestamp embedded in point-in-time
// scan file names, e.g. HM_07Mar2026.csv.
func scanFileTimestamp(t time.Time) string {
	return t.Format("02Jan2006")
}

// prepareFolder ensures the scanner output folder exists and removes any
// CSV artifacts from previous runs.
func prepareFolder(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}
	matches, err := filepath.Glob(filepath.Join(path, "*.csv"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return fmt.Errorf("failed to clear output folder: %w", err)
		}
	}
	return nil
}

// writeCSV materializes one delimited artifact.
func writeCSV(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var hmSignalHeader = []string{
	"symbol_id", "yahoo_symbol", "date",
	"rsi_3", "rsi_9", "ema_rsi_9_3", "wma_rsi_9_21",
	"close", "rsi_3_weekly", "rsi_3_monthly",
}

func hmSignalRecords(signals []model.HMSignal) [][]string {
	records := make([][]string, len(signals))
	for i, sig := range signals {
		records[i] = []string{
			strconv.Itoa(sig.SymbolID),
			sig.YahooSymbol,
			sig.Date.Format(dateLayout),
			formatFloat(sig.RSI3),
			formatFloat(sig.RSI9),
			formatFloat(sig.EMARSI93),
			formatFloat(sig.WMARSI921),
			formatFloat(sig.Close),
			formatFloat(sig.RSI3Weekly),
			formatFloat(sig.RSI3Monthly),
		}
	}
	return records
}

var weeklySignalHeader = []string{
	"symbol_id", "yahoo_symbol", "date",
	"weekly_open", "weekly_high", "weekly_low", "weekly_close",
	"sma_20", "rsi_3_weekly", "rsi_9_weekly", "ema_rsi_9_3", "wma_rsi_9_21",
	"close_1w_ago", "sma_20_2w_ago", "min_low_4w_ago",
}

func weeklySignalRecords(signals []model.WeeklySignal) [][]string {
	records := make([][]string, len(signals))
	for i, sig := range signals {
		records[i] = []string{
			strconv.Itoa(sig.SymbolID),
			sig.YahooSymbol,
			sig.Date.Format(dateLayout),
			formatFloat(sig.WeeklyOpen),
			formatFloat(sig.WeeklyHigh),
			formatFloat(sig.WeeklyLow),
			formatFloat(sig.WeeklyClose),
			formatFloat(sig.SMA20),
			formatFloat(sig.RSI3Weekly),
			formatFloat(sig.RSI9Weekly),
			formatFloat(sig.EMARSI93),
			formatFloat(sig.WMARSI921),
			formatFloat(sig.Close1wAgo),
			formatFloat(sig.SMA202wAgo),
			formatFloat(sig.MinLow4wAgo),
		}
	}
	return records
}

var tradeHeader = []string{
	"symbol_id", "entry_date", "entry_open", "exit_date", "exit_close", "return_pct",
}

func tradeRecords(trades []model.Trade) [][]string {
	records := make([][]string, len(trades))
	for i, t := range trades {
		records[i] = []string{
			strconv.Itoa(t.SymbolID),
			t.EntryDate.Format(dateLayout),
			formatFloat(t.EntryOpen),
			t.ExitDate.Format(dateLayout),
			formatFloat(t.ExitClose),
			formatFloat(t.ReturnPct),
		}
	}
	return records
}

var summaryHeader = []string{
	"file", "total_trades", "win_pct", "max_win_pct", "max_loss_pct",
}

func summaryRecords(summaries []model.BacktestSummary) [][]string {
	records := make([][]string, len(summaries))
	for i, s := range summaries {
		records[i] = []string{
			s.File,
			strconv.Itoa(s.TotalTrades),
			formatFloat(s.WinPct),
			formatFloat(s.MaxWinPct),
			formatFloat(s.MaxLossPct),
		}
	}
	return records
}
