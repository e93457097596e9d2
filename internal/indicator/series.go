// Package indicator provides the technical indicator calculators used by the
// refresh engine. Calculators are pure functions from price series to derived
// series: outputs are aligned index-for-index with their inputs, and rows
// inside a calculator's warm-up window are NaN. NaN converts to NULL at the
// persistence boundary.
package indicator

import (
	"math"
)

// NaNSeries returns a series of length n with every value undefined.
func NaNSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func round2(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Round(v*100) / 100
}

// SMASeries computes a simple moving average over a trailing window of
// exactly period observations. Undefined until the window is full or while
// the window contains an undefined value.
func SMASeries(series []float64, period int) []float64 {
	n := len(series)
	out := NaNSeries(n)
	if period <= 0 || n < period {
		return out
	}
	for i := period - 1; i < n; i++ {
		sum := 0.0
		valid := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(series[j]) {
				valid = false
				break
			}
			sum += series[j]
		}
		if valid {
			out[i] = round2(sum / float64(period))
		}
	}
	return out
}

// emaRaw is the unrounded span-based EMA recurrence (alpha = 2/(period+1)),
// seeded at the first defined value. Positions before the seed stay NaN;
// an undefined input carries the previous EMA forward.
func emaRaw(series []float64, period int) []float64 {
	n := len(series)
	out := NaNSeries(n)
	if period <= 0 {
		return out
	}
	alpha := 2.0 / float64(period+1)
	var ema float64
	seeded := false
	for i, v := range series {
		if math.IsNaN(v) {
			if seeded {
				out[i] = ema
			}
			continue
		}
		if !seeded {
			ema = v
			seeded = true
		} else {
			ema = alpha*v + (1-alpha)*ema
		}
		out[i] = ema
	}
	return out
}

// EMASeries computes a span-based exponential moving average. There is no
// minimum-period gate: the first defined input already produces a value.
func EMASeries(series []float64, period int) []float64 {
	out := emaRaw(series, period)
	for i, v := range out {
		out[i] = round2(v)
	}
	return out
}

// WMASeries computes a linearly weighted moving average (weights 1..period)
// over a trailing window of exactly period observations. Undefined until the
// window is full of defined values.
func WMASeries(series []float64, period int) []float64 {
	n := len(series)
	out := NaNSeries(n)
	if period <= 0 || n < period {
		return out
	}
	denom := float64(period) * float64(period+1) / 2
	for i := period - 1; i < n; i++ {
		sum := 0.0
		valid := true
		for j := 0; j < period; j++ {
			v := series[i-period+1+j]
			if math.IsNaN(v) {
				valid = false
				break
			}
			sum += v * float64(j+1)
		}
		if valid {
			out[i] = round2(sum / denom)
		}
	}
	return out
}

// rollingStd computes the rolling sample standard deviation (ddof=1) over a
// trailing window of exactly period observations.
func rollingStd(series []float64, period int) []float64 {
	n := len(series)
	out := NaNSeries(n)
	if period <= 1 || n < period {
		return out
	}
	for i := period - 1; i < n; i++ {
		sum := 0.0
		valid := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(series[j]) {
				valid = false
				break
			}
			sum += series[j]
		}
		if !valid {
			continue
		}
		mean := sum / float64(period)
		sq := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := series[j] - mean
			sq += d * d
		}
		out[i] = math.Sqrt(sq / float64(period-1))
	}
	return out
}

// PctChange computes the close-over-close percentage change. The first row
// and rows after a zero close are undefined.
func PctChange(series []float64) []float64 {
	n := len(series)
	out := NaNSeries(n)
	for i := 1; i < n; i++ {
		prev := series[i-1]
		if math.IsNaN(prev) || math.IsNaN(series[i]) || prev == 0 {
			continue
		}
		out[i] = round2((series[i] - prev) / prev * 100)
	}
	return out
}
