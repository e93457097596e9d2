package indicator

import (
	"math"

	"github.com/yourorg/market-scanner/internal/model"
)

// trueRange computes max(high-low, |high-prevClose|, |low-prevClose|) per
// bar. The first bar has no prior close, so its true range is high-low.
func trueRange(bars []model.PriceBar) []float64 {
	n := len(bars)
	out := make([]float64, n)
	for i, b := range bars {
		tr := b.High - b.Low
		if i > 0 {
			prev := bars[i-1].Close
			tr = math.Max(tr, math.Abs(b.High-prev))
			tr = math.Max(tr, math.Abs(b.Low-prev))
		}
		out[i] = tr
	}
	return out
}

// wilderSmooth applies the Wilder recurrence (alpha = 1/period) to a series,
// seeded at the first defined value and masked until period observations
// have accumulated.
func wilderSmooth(series []float64, period int) []float64 {
	n := len(series)
	out := NaNSeries(n)
	if period <= 0 {
		return out
	}
	alpha := 1.0 / float64(period)
	var avg float64
	seeded := false
	count := 0
	for i, v := range series {
		if math.IsNaN(v) {
			continue
		}
		if !seeded {
			avg = v
			seeded = true
		} else {
			avg = (1-alpha)*avg + alpha*v
		}
		count++
		if count >= period {
			out[i] = round2(avg)
		}
	}
	return out
}

// ATRSeries computes the Average True Range: Wilder-smoothed true range with
// the same warm-up mask as RSI.
func ATRSeries(bars []model.PriceBar, period int) []float64 {
	if len(bars) == 0 {
		return nil
	}
	return wilderSmooth(trueRange(bars), period)
}
