package indicator

import (
	"math"
)

// Bollinger computes Bollinger Bands: middle = SMA(period), upper/lower =
// middle +/- mult * rolling sample standard deviation over the same window.
func Bollinger(close []float64, period int, mult float64) (upper, middle, lower []float64) {
	n := len(close)
	upper = NaNSeries(n)
	lower = NaNSeries(n)
	middle = SMASeries(close, period)
	std := rollingStd(close, period)
	for i := 0; i < n; i++ {
		if math.IsNaN(middle[i]) || math.IsNaN(std[i]) {
			continue
		}
		upper[i] = round2(middle[i] + mult*std[i])
		lower[i] = round2(middle[i] - mult*std[i])
	}
	return upper, middle, lower
}
