package indicator

import (
	"math"
)

// MACD computes the MACD line (EMA(12) - EMA(26)) and its signal line
// (EMA(9) of the MACD line). No gating beyond the EMA seeds themselves.
func MACD(close []float64) (macd, signal []float64) {
	n := len(close)
	fast := emaRaw(close, 12)
	slow := emaRaw(close, 26)

	diff := NaNSeries(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(fast[i]) || math.IsNaN(slow[i]) {
			continue
		}
		diff[i] = fast[i] - slow[i]
	}

	sig := emaRaw(diff, 9)

	macd = make([]float64, n)
	signal = make([]float64, n)
	for i := 0; i < n; i++ {
		macd[i] = round2(diff[i])
		signal[i] = round2(sig[i])
	}
	return macd, signal
}
