package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/market-scanner/internal/model"
)

// testBars builds daily bars from (high, low, close) triples, one per day.
func testBars(hlc [][3]float64) []model.PriceBar {
	bars := make([]model.PriceBar, len(hlc))
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range hlc {
		bars[i] = model.PriceBar{
			SymbolID:  1,
			Timeframe: model.TimeframeDaily,
			Date:      base.AddDate(0, 0, i),
			Open:      v[2],
			High:      v[0],
			Low:       v[1],
			Close:     v[2],
			Volume:    1000,
		}
	}
	return bars
}

// risingBars builds bars whose close rises by one each day with a constant
// two-point range.
func risingBars(n int) []model.PriceBar {
	hlc := make([][3]float64, n)
	for i := 0; i < n; i++ {
		c := float64(10 + i)
		hlc[i] = [3]float64{c + 1, c - 1, c}
	}
	return testBars(hlc)
}

func TestSupertrend_DefinedForEveryRow(t *testing.T) {
	bars := risingBars(30)
	line, dir := Supertrend(bars, SupertrendATRPeriod, SupertrendMultiplier)

	require.Len(t, line, len(bars))
	require.Len(t, dir, len(bars))
	for i := range line {
		assert.False(t, math.IsNaN(line[i]), "line undefined at %d", i)
		assert.Contains(t, []int{-1, 1}, dir[i], "direction at %d", i)
	}
}

func TestSupertrend_SeedsRowZeroDowntrend(t *testing.T) {
	bars := risingBars(30)
	line, dir := Supertrend(bars, SupertrendATRPeriod, SupertrendMultiplier)

	// Row 0: band midpoint 10 plus 3x the first true range of 2.
	assert.Equal(t, -1, dir[0])
	assert.InDelta(t, 16.0, line[0], 1e-9)
}

func TestSupertrend_RisingClosesFlipUptrend(t *testing.T) {
	bars := risingBars(30)
	_, dir := Supertrend(bars, SupertrendATRPeriod, SupertrendMultiplier)

	// The close crosses the upper band on the eighth bar and the trend
	// stays up for the rest of the rally.
	assert.Equal(t, -1, dir[6])
	for i := 7; i < len(dir); i++ {
		assert.Equal(t, 1, dir[i], "index %d", i)
	}
}

func TestSupertrend_Empty(t *testing.T) {
	line, dir := Supertrend(nil, SupertrendATRPeriod, SupertrendMultiplier)
	assert.Nil(t, line)
	assert.Nil(t, dir)
}
