package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertSeries compares two series treating NaN == NaN as a match.
func assertSeries(t *testing.T, expected, actual []float64) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		if math.IsNaN(expected[i]) {
			assert.True(t, math.IsNaN(actual[i]), "index %d: expected NaN, got %v", i, actual[i])
			continue
		}
		assert.InDelta(t, expected[i], actual[i], 1e-9, "index %d", i)
	}
}

func TestRSISeries_WilderSmoothing(t *testing.T) {
	close := []float64{10, 11, 12, 11, 12, 13, 14}
	got := RSISeries(close, 3)

	nan := math.NaN()
	assertSeries(t, []float64{nan, nan, nan, 66.67, 77.78, 85.19, 90.12}, got)
}

func TestRSISeries_ZeroLossIsHundred(t *testing.T) {
	close := []float64{1, 2, 3, 4, 5}
	got := RSISeries(close, 3)

	nan := math.NaN()
	assertSeries(t, []float64{nan, nan, nan, 100, 100}, got)
}

func TestRSISeries_BoundedRange(t *testing.T) {
	close := []float64{50, 53, 48, 55, 44, 60, 41, 62, 39, 65, 38, 70, 36, 72}
	for _, period := range []int{3, 9} {
		for i, v := range RSISeries(close, period) {
			if math.IsNaN(v) {
				continue
			}
			assert.GreaterOrEqual(t, v, 0.0, "period %d index %d", period, i)
			assert.LessOrEqual(t, v, 100.0, "period %d index %d", period, i)
		}
	}
}

func TestSMASeries(t *testing.T) {
	nan := math.NaN()
	got := SMASeries([]float64{1, 2, 3, 4}, 3)
	assertSeries(t, []float64{nan, nan, 2, 3}, got)
}

func TestSMASeries_ShortSeries(t *testing.T) {
	got := SMASeries([]float64{1, 2}, 3)
	for _, v := range got {
		assert.True(t, math.IsNaN(v))
	}
}

func TestEMASeries_SeedsAtFirstValue(t *testing.T) {
	got := EMASeries([]float64{1, 2, 3, 4}, 3)
	assertSeries(t, []float64{1, 1.5, 2.25, 3.13}, got)
}

func TestEMASeries_SkipsLeadingUndefined(t *testing.T) {
	nan := math.NaN()
	got := EMASeries([]float64{nan, nan, 1, 2}, 3)
	assertSeries(t, []float64{nan, nan, 1, 1.5}, got)
}

func TestWMASeries(t *testing.T) {
	nan := math.NaN()
	got := WMASeries([]float64{1, 2, 3, 4, 5}, 3)
	assertSeries(t, []float64{nan, nan, 2.33, 3.33, 4.33}, got)
}

func TestBollinger(t *testing.T) {
	upper, middle, lower := Bollinger([]float64{1, 2, 3, 4, 5}, 3, 2)

	nan := math.NaN()
	// Sample stddev of any 3 consecutive integers is exactly 1.
	assertSeries(t, []float64{nan, nan, 4, 5, 6}, upper)
	assertSeries(t, []float64{nan, nan, 2, 3, 4}, middle)
	assertSeries(t, []float64{nan, nan, 0, 1, 2}, lower)
}

func TestATRSeries(t *testing.T) {
	bars := testBars([][3]float64{
		{12, 10, 11}, {13, 11, 12}, {14, 12, 13}, {15, 13, 14}, {16, 14, 15},
	})
	got := ATRSeries(bars, 3)

	nan := math.NaN()
	assertSeries(t, []float64{nan, nan, 2, 2, 2}, got)
}

func TestPctChange(t *testing.T) {
	nan := math.NaN()
	got := PctChange([]float64{100, 110, 99})
	assertSeries(t, []float64{nan, 10, -10}, got)
}

func TestPctChange_ZeroPrevUndefined(t *testing.T) {
	got := PctChange([]float64{0, 5})
	assert.True(t, math.IsNaN(got[1]))
}

func TestMACD(t *testing.T) {
	macd, signal := MACD([]float64{10, 11, 12, 13})
	assertSeries(t, []float64{0, 0.08, 0.22, 0.41}, macd)
	assertSeries(t, []float64{0, 0.02, 0.06, 0.13}, signal)
}
