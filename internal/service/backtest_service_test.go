package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/market-scanner/internal/model"
)

func dailySeries(symbolID int, start time.Time, opens, closes []float64) []model.DailyPrice {
	series := make([]model.DailyPrice, len(opens))
	for i := range opens {
		series[i] = model.DailyPrice{
			SymbolID: symbolID,
			Date:     start.AddDate(0, 0, i),
			Open:     opens[i],
			Close:    closes[i],
		}
	}
	return series
}

func TestEvaluateTrades_SixBarHorizon(t *testing.T) {
	signal := signalRef{SymbolID: 1, Date: day(2024, time.January, 5)}
	prices := map[int][]model.DailyPrice{
		1: dailySeries(1, day(2024, time.January, 8),
			[]float64{100, 101, 102, 103, 104, 105},
			[]float64{101, 102, 103, 104, 105, 110}),
	}

	trades := evaluateTrades([]signalRef{signal}, prices)
	require.Len(t, trades, 1)

	trade := trades[0]
	assert.True(t, trade.EntryDate.Equal(day(2024, time.January, 8)), "entry on first bar after signal")
	assert.Equal(t, 100.0, trade.EntryOpen)
	assert.True(t, trade.ExitDate.Equal(day(2024, time.January, 13)), "exit on sixth bar from entry")
	assert.Equal(t, 110.0, trade.ExitClose)
	assert.InDelta(t, 10.0, trade.ReturnPct, 1e-9)
}

func TestEvaluateTrades_FiveBarsSkipped(t *testing.T) {
	signal := signalRef{SymbolID: 1, Date: day(2024, time.January, 5)}
	prices := map[int][]model.DailyPrice{
		1: dailySeries(1, day(2024, time.January, 8),
			[]float64{100, 101, 102, 103, 104},
			[]float64{101, 102, 103, 104, 105}),
	}

	trades := evaluateTrades([]signalRef{signal}, prices)
	assert.Empty(t, trades)
}

func TestEvaluateTrades_EntryStrictlyAfterSignal(t *testing.T) {
	// A bar on the signal date itself must not be the entry bar.
	signal := signalRef{SymbolID: 1, Date: day(2024, time.January, 8)}
	prices := map[int][]model.DailyPrice{
		1: dailySeries(1, day(2024, time.January, 8),
			[]float64{90, 100, 101, 102, 103, 104, 105},
			[]float64{91, 101, 102, 103, 104, 105, 110}),
	}

	trades := evaluateTrades([]signalRef{signal}, prices)
	require.Len(t, trades, 1)
	assert.True(t, trades[0].EntryDate.Equal(day(2024, time.January, 9)))
	assert.Equal(t, 100.0, trades[0].EntryOpen)
}

func TestEvaluateTrades_UnknownSymbolSkipped(t *testing.T) {
	signal := signalRef{SymbolID: 99, Date: day(2024, time.January, 5)}
	trades := evaluateTrades([]signalRef{signal}, map[int][]model.DailyPrice{})
	assert.Empty(t, trades)
}

func TestSummarizeTrades(t *testing.T) {
	trades := []model.Trade{
		{ReturnPct: 5},
		{ReturnPct: -2},
		{ReturnPct: 12.5},
		{ReturnPct: -7.25},
	}

	summary := summarizeTrades("HM_YEARLY_2023.csv", trades)
	assert.Equal(t, "HM_YEARLY_2023.csv", summary.File)
	assert.Equal(t, 2023, summary.Year)
	assert.Equal(t, 4, summary.TotalTrades)
	assert.InDelta(t, 50.0, summary.WinPct, 1e-9)
	assert.InDelta(t, 12.5, summary.MaxWinPct, 1e-9)
	assert.InDelta(t, -7.25, summary.MaxLossPct, 1e-9)
}

func TestSummarizeTrades_EmptyFile(t *testing.T) {
	summary := summarizeTrades("HM_07Mar2024.csv", nil)
	assert.Equal(t, 0, summary.TotalTrades)
	assert.Equal(t, 0, summary.Year)
	assert.Equal(t, 0.0, summary.WinPct)
}

func TestReadSignalFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	signals := []model.HMSignal{
		{
			SymbolID:    3,
			YahooSymbol: "HDFCBANK.NS",
			Date:        day(2023, time.June, 9),
			RSI3:        58,
			RSI9:        48,
			EMARSI93:    46,
			WMARSI921:   45.9,
			Close:       1550.5,
			RSI3Weekly:  65,
			RSI3Monthly: 55,
		},
	}

	path := filepath.Join(dir, "HM_YEARLY_2023.csv")
	require.NoError(t, writeCSV(path, hmSignalHeader, hmSignalRecords(signals)))

	got, err := readSignalFile(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].SymbolID)
	assert.True(t, got[0].Date.Equal(day(2023, time.June, 9)))
}

func TestReadSignalFile_HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	require.NoError(t, writeCSV(path, hmSignalHeader, nil))

	got, err := readSignalFile(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPrepareFolder_ClearsPreviousArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "HM", "india_equity_yahoo")
	require.NoError(t, prepareFolder(dir))

	stale := filepath.Join(dir, "HM_YEARLY_2020.csv")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	keep := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(keep, []byte("keep"), 0o644))

	require.NoError(t, prepareFolder(dir))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(keep)
	assert.NoError(t, err)
}
