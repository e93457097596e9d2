package model

import (
	"time"
)

// PriceBar is one OHLCV bar for a symbol and timeframe. Bars are keyed by
// (symbol_id, timeframe, date); re-imports overwrite on conflict.
type PriceBar struct {
	SymbolID    int       `json:"symbol_id" db:"symbol_id"`
	Timeframe   string    `json:"timeframe" db:"timeframe"`
	Date        time.Time `json:"date" db:"date"`
	Open        float64   `json:"open" db:"open"`
	High        float64   `json:"high" db:"high"`
	Low         float64   `json:"low" db:"low"`
	Close       float64   `json:"close" db:"close"`
	Volume      float64   `json:"volume" db:"volume"`
	DeliveryPct *float64  `json:"delivery_pct,omitempty" db:"delivery_pct"`
	IsFuture    bool      `json:"is_future" db:"is_future"`
}

// DailyPrice is the slim open/close row the backtest evaluator works with.
type DailyPrice struct {
	SymbolID int       `json:"symbol_id" db:"symbol_id"`
	Date     time.Time `json:"date" db:"date"`
	Open     float64   `json:"open" db:"open"`
	Close    float64   `json:"close" db:"close"`
}

// PriceBarBatch is the payload accepted by the batch import endpoint.
type PriceBarBatch struct {
	AssetType string     `json:"asset_type" binding:"required"`
	Bars      []PriceBar `json:"bars" binding:"required"`
}

// TimeframeStatus summarizes data availability for one timeframe.
type TimeframeStatus struct {
	Timeframe  string    `json:"timeframe" db:"timeframe"`
	LatestDate time.Time `json:"latest_date" db:"latest_date"`
	BarCount   int       `json:"bar_count" db:"bar_count"`
}
