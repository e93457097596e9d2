package indicator

import (
	"math"
)

// RSISeries computes the Relative Strength Index with Wilder smoothing
// (alpha = 1/period). The first value appears once period deltas have been
// observed; earlier rows are undefined. When the average loss is exactly
// zero the RSI is defined as 100 rather than dividing by zero, so downstream
// ratio rules never see NaN from a one-way market.
func RSISeries(close []float64, period int) []float64 {
	n := len(close)
	out := NaNSeries(n)
	if period <= 0 || n < 2 {
		return out
	}

	alpha := 1.0 / float64(period)
	var avgGain, avgLoss float64
	seeded := false
	deltas := 0

	for i := 1; i < n; i++ {
		if math.IsNaN(close[i]) || math.IsNaN(close[i-1]) {
			continue
		}
		delta := close[i] - close[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}

		if !seeded {
			avgGain, avgLoss = gain, loss
			seeded = true
		} else {
			avgGain = (1-alpha)*avgGain + alpha*gain
			avgLoss = (1-alpha)*avgLoss + alpha*loss
		}
		deltas++

		if deltas < period {
			continue
		}
		if avgLoss == 0 {
			out[i] = 100
		} else {
			rs := avgGain / avgLoss
			out[i] = round2(100 - 100/(1+rs))
		}
	}
	return out
}
