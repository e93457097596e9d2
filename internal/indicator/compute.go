package indicator

import (
	"math"

	"go.uber.org/zap"

	"github.com/yourorg/market-scanner/internal/model"
)

// Default calculator parameters.
const (
	BollingerPeriod      = 20
	BollingerMult        = 2.0
	ATRPeriod            = 14
	SupertrendATRPeriod  = 10
	SupertrendMultiplier = 3.0
)

// safeSeries runs a calculator and recovers from any panic, substituting an
// undefined series over the same index so a single broken calculator never
// aborts the refresh of a symbol. The failure is logged with the calculator
// name.
func safeSeries(logger *zap.Logger, name string, n int, fn func() []float64) (out []float64) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Indicator calculation failed",
				zap.String("indicator", name),
				zap.Any("panic", r))
			out = NaNSeries(n)
		}
	}()
	return fn()
}

// safeSupertrend is the supertrend variant of safeSeries; on failure the
// line is undefined and the direction is zeroed, which persists as NULL.
func safeSupertrend(logger *zap.Logger, bars []model.PriceBar) (line []float64, dir []int) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Indicator calculation failed",
				zap.String("indicator", "supertrend"),
				zap.Any("panic", r))
			line = NaNSeries(len(bars))
			dir = make([]int, len(bars))
		}
	}()
	return Supertrend(bars, SupertrendATRPeriod, SupertrendMultiplier)
}

// ComputeRows derives the full indicator set over a slice of price bars for
// a single symbol and timeframe, ordered by date ascending. The returned
// rows are aligned one-to-one with the input bars.
func ComputeRows(logger *zap.Logger, bars []model.PriceBar) []model.IndicatorRow {
	n := len(bars)
	if n == 0 {
		return nil
	}

	close := make([]float64, n)
	for i, b := range bars {
		close[i] = b.Close
	}

	sma20 := safeSeries(logger, "sma_20", n, func() []float64 { return SMASeries(close, 20) })
	sma50 := safeSeries(logger, "sma_50", n, func() []float64 { return SMASeries(close, 50) })
	sma200 := safeSeries(logger, "sma_200", n, func() []float64 { return SMASeries(close, 200) })

	rsi3 := safeSeries(logger, "rsi_3", n, func() []float64 { return RSISeries(close, 3) })
	rsi9 := safeSeries(logger, "rsi_9", n, func() []float64 { return RSISeries(close, 9) })
	rsi14 := safeSeries(logger, "rsi_14", n, func() []float64 { return RSISeries(close, 14) })

	emaRSI := safeSeries(logger, "ema_rsi_9_3", n, func() []float64 { return EMASeries(rsi9, 3) })
	wmaRSI := safeSeries(logger, "wma_rsi_9_21", n, func() []float64 { return WMASeries(rsi9, 21) })

	var bbUpper, bbMiddle, bbLower []float64
	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Indicator calculation failed",
					zap.String("indicator", "bollinger"),
					zap.Any("panic", r))
				bbUpper, bbMiddle, bbLower = NaNSeries(n), NaNSeries(n), NaNSeries(n)
			}
		}()
		bbUpper, bbMiddle, bbLower = Bollinger(close, BollingerPeriod, BollingerMult)
	}()

	atr14 := safeSeries(logger, "atr_14", n, func() []float64 { return ATRSeries(bars, ATRPeriod) })
	stLine, stDir := safeSupertrend(logger, bars)

	var macd, macdSignal []float64
	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Indicator calculation failed",
					zap.String("indicator", "macd"),
					zap.Any("panic", r))
				macd, macdSignal = NaNSeries(n), NaNSeries(n)
			}
		}()
		macd, macdSignal = MACD(close)
	}()

	pctChange := safeSeries(logger, "pct_price_change", n, func() []float64 { return PctChange(close) })

	rows := make([]model.IndicatorRow, n)
	for i, b := range bars {
		rows[i] = model.IndicatorRow{
			SymbolID:       b.SymbolID,
			Timeframe:      b.Timeframe,
			Date:           b.Date,
			SMA20:          floatPtr(sma20[i]),
			SMA50:          floatPtr(sma50[i]),
			SMA200:         floatPtr(sma200[i]),
			RSI3:           floatPtr(rsi3[i]),
			RSI9:           floatPtr(rsi9[i]),
			RSI14:          floatPtr(rsi14[i]),
			BBUpper:        floatPtr(bbUpper[i]),
			BBMiddle:       floatPtr(bbMiddle[i]),
			BBLower:        floatPtr(bbLower[i]),
			ATR14:          floatPtr(atr14[i]),
			Supertrend:     floatPtr(stLine[i]),
			SupertrendDir:  dirPtr(stLine[i], stDir[i]),
			EMARSI93:       floatPtr(emaRSI[i]),
			WMARSI921:      floatPtr(wmaRSI[i]),
			PctPriceChange: floatPtr(pctChange[i]),
			MACD:           floatPtr(macd[i]),
			MACDSignal:     floatPtr(macdSignal[i]),
		}
	}
	return rows
}

func floatPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func dirPtr(line float64, dir int) *int {
	if math.IsNaN(line) || dir == 0 {
		return nil
	}
	return &dir
}
