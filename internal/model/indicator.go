package model

import (
	"time"
)

// IndicatorRow is the full derived indicator set for one (symbol, timeframe,
// date). Fields are pointers because every value is undefined until its
// calculator's warm-up window has filled; nil persists as NULL.
type IndicatorRow struct {
	SymbolID  int       `json:"symbol_id" db:"symbol_id"`
	Timeframe string    `json:"timeframe" db:"timeframe"`
	Date      time.Time `json:"date" db:"date"`

	SMA20  *float64 `json:"sma_20" db:"sma_20"`
	SMA50  *float64 `json:"sma_50" db:"sma_50"`
	SMA200 *float64 `json:"sma_200" db:"sma_200"`

	RSI3  *float64 `json:"rsi_3" db:"rsi_3"`
	RSI9  *float64 `json:"rsi_9" db:"rsi_9"`
	RSI14 *float64 `json:"rsi_14" db:"rsi_14"`

	BBUpper  *float64 `json:"bb_upper" db:"bb_upper"`
	BBMiddle *float64 `json:"bb_middle" db:"bb_middle"`
	BBLower  *float64 `json:"bb_lower" db:"bb_lower"`

	ATR14         *float64 `json:"atr_14" db:"atr_14"`
	Supertrend    *float64 `json:"supertrend" db:"supertrend"`
	SupertrendDir *int     `json:"supertrend_dir" db:"supertrend_dir"`

	EMARSI93  *float64 `json:"ema_rsi_9_3" db:"ema_rsi_9_3"`
	WMARSI921 *float64 `json:"wma_rsi_9_21" db:"wma_rsi_9_21"`

	PctPriceChange *float64 `json:"pct_price_change" db:"pct_price_change"`

	MACD       *float64 `json:"macd" db:"macd"`
	MACDSignal *float64 `json:"macd_signal" db:"macd_signal"`
}
