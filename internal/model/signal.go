package model

import (
	"time"
)

// HMSnapshot is one daily row joined with its as-of weekly and monthly
// RSI(3). The joined fields are pointers: a symbol without a completed week
// or month yet has no as-of value and is excluded before rule evaluation.
type HMSnapshot struct {
	SymbolID    int       `db:"symbol_id"`
	YahooSymbol string    `db:"yahoo_symbol"`
	Date        time.Time `db:"date"`

	RSI3      *float64 `db:"rsi_3"`
	RSI9      *float64 `db:"rsi_9"`
	EMARSI93  *float64 `db:"ema_rsi_9_3"`
	WMARSI921 *float64 `db:"wma_rsi_9_21"`

	Close float64 `db:"close"`

	RSI3Weekly  *float64 `db:"rsi_3_weekly"`
	RSI3Monthly *float64 `db:"rsi_3_monthly"`
}

// HMSignal is a snapshot that passed the Hilega-Milega rule.
type HMSignal struct {
	SymbolID    int       `json:"symbol_id"`
	YahooSymbol string    `json:"yahoo_symbol"`
	Date        time.Time `json:"date"`
	RSI3        float64   `json:"rsi_3"`
	RSI9        float64   `json:"rsi_9"`
	EMARSI93    float64   `json:"ema_rsi_9_3"`
	WMARSI921   float64   `json:"wma_rsi_9_21"`
	Close       float64   `json:"close"`
	RSI3Weekly  float64   `json:"rsi_3_weekly"`
	RSI3Monthly float64   `json:"rsi_3_monthly"`
}

// WeeklySnapshot is one weekly row with its sequential lookbacks. Lookbacks
// are strictly "N rows back" over the symbol's own weekly history; rows with
// insufficient history carry nil lookbacks and are excluded.
type WeeklySnapshot struct {
	SymbolID    int       `db:"symbol_id"`
	YahooSymbol string    `db:"yahoo_symbol"`
	Date        time.Time `db:"date"`

	WeeklyOpen  float64 `db:"weekly_open"`
	WeeklyHigh  float64 `db:"weekly_high"`
	WeeklyLow   float64 `db:"weekly_low"`
	WeeklyClose float64 `db:"weekly_close"`

	SMA20      *float64 `db:"sma_20"`
	RSI3Weekly *float64 `db:"rsi_3_weekly"`
	RSI9Weekly *float64 `db:"rsi_9_weekly"`
	EMARSI93   *float64 `db:"ema_rsi_9_3"`
	WMARSI921  *float64 `db:"wma_rsi_9_21"`

	Close1wAgo  *float64 `db:"close_1w_ago"`
	SMA202wAgo  *float64 `db:"sma_20_2w_ago"`
	MinLow4wAgo *float64 `db:"min_low_4w_ago"`
}

// WeeklySignal is a weekly snapshot that passed the weekly rule.
type WeeklySignal struct {
	SymbolID    int       `json:"symbol_id"`
	YahooSymbol string    `json:"yahoo_symbol"`
	Date        time.Time `json:"date"`
	WeeklyOpen  float64   `json:"weekly_open"`
	WeeklyHigh  float64   `json:"weekly_high"`
	WeeklyLow   float64   `json:"weekly_low"`
	WeeklyClose float64   `json:"weekly_close"`
	SMA20       float64   `json:"sma_20"`
	RSI3Weekly  float64   `json:"rsi_3_weekly"`
	RSI9Weekly  float64   `json:"rsi_9_weekly"`
	EMARSI93    float64   `json:"ema_rsi_9_3"`
	WMARSI921   float64   `json:"wma_rsi_9_21"`
	Close1wAgo  float64   `json:"close_1w_ago"`
	SMA202wAgo  float64   `json:"sma_20_2w_ago"`
	MinLow4wAgo float64   `json:"min_low_4w_ago"`
}
