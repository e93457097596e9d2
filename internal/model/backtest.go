package model

import (
	"time"
)

// Trade is a simulated fixed-horizon trade derived from one signal: enter at
// the open of the first bar after the signal date, exit at the close of the
// sixth bar counting from entry.
type Trade struct {
	SymbolID  int       `json:"symbol_id"`
	EntryDate time.Time `json:"entry_date"`
	EntryOpen float64   `json:"entry_open"`
	ExitDate  time.Time `json:"exit_date"`
	ExitClose float64   `json:"exit_close"`
	ReturnPct float64   `json:"return_pct"`
}

// BacktestSummary aggregates the trades generated from one signal file.
type BacktestSummary struct {
	File        string  `json:"file"`
	TotalTrades int     `json:"total_trades"`
	WinPct      float64 `json:"win_pct"`
	MaxWinPct   float64 `json:"max_win_pct"`
	MaxLossPct  float64 `json:"max_loss_pct"`
	Year        int     `json:"year"`
}
