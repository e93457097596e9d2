package indicator

import (
	"github.com/yourorg/market-scanner/internal/model"
)

// Supertrend computes the supertrend line and trend direction (+1 uptrend,
// -1 downtrend). The band recurrence is inherently sequential: each row's
// final band depends on the prior row's final band and the prior close, so
// this is an explicit fold over ordered bars.
//
// Row 0 seeds supertrend = final upper band and direction = -1. The ATR here
// runs the Wilder recurrence from row 0 without a warm-up mask, so the value
// and direction are defined for every row.
func Supertrend(bars []model.PriceBar, atrPeriod int, multiplier float64) (line []float64, dir []int) {
	n := len(bars)
	if n == 0 {
		return nil, nil
	}

	tr := trueRange(bars)
	atr := make([]float64, n)
	alpha := 1.0 / float64(atrPeriod)
	atr[0] = tr[0]
	for i := 1; i < n; i++ {
		atr[i] = (1-alpha)*atr[i-1] + alpha*tr[i]
	}

	basicUB := make([]float64, n)
	basicLB := make([]float64, n)
	for i, b := range bars {
		mid := (b.High + b.Low) / 2
		basicUB[i] = mid + multiplier*atr[i]
		basicLB[i] = mid - multiplier*atr[i]
	}

	finalUB := make([]float64, n)
	finalLB := make([]float64, n)
	finalUB[0] = basicUB[0]
	finalLB[0] = basicLB[0]
	for i := 1; i < n; i++ {
		prevClose := bars[i-1].Close
		if basicUB[i] < finalUB[i-1] || prevClose > finalUB[i-1] {
			finalUB[i] = basicUB[i]
		} else {
			finalUB[i] = finalUB[i-1]
		}
		if basicLB[i] > finalLB[i-1] || prevClose < finalLB[i-1] {
			finalLB[i] = basicLB[i]
		} else {
			finalLB[i] = finalLB[i-1]
		}
	}

	st := make([]float64, n)
	dir = make([]int, n)
	st[0] = finalUB[0]
	dir[0] = -1
	for i := 1; i < n; i++ {
		if bars[i].Close > st[i-1] {
			dir[i] = 1
			st[i] = finalLB[i]
		} else {
			dir[i] = -1
			st[i] = finalUB[i]
		}
	}

	line = make([]float64, n)
	for i := range st {
		line[i] = round2(st[i])
	}
	return line, dir
}
