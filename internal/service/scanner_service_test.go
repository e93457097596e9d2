package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/market-scanner/internal/config"
	"github.com/yourorg/market-scanner/internal/model"
)

func fptr(v float64) *float64 { return &v }

func hmThresholds() config.HMThresholds {
	return config.HMThresholds{
		MinClose:       60,
		RSI3RSI9:       1.15,
		RSI9EMA:        1.04,
		EMAWMA:         1.0,
		RSI3Max:        60,
		WeeklyRSI3Min:  60,
		MonthlyRSI3Min: 50,
	}
}

func weeklyThresholds() config.WeeklyThresholds {
	return config.WeeklyThresholds{
		MinClose: 100,
		RSI3RSI9: 1.15,
		RSI9EMA:  1.04,
		EMAWMA:   1.0,
		RSI9Min:  50,
	}
}

func passingHMSnapshot() model.HMSnapshot {
	return model.HMSnapshot{
		SymbolID:    1,
		YahooSymbol: "RELIANCE.NS",
		Date:        day(2024, time.March, 15),
		RSI3:        fptr(58),
		RSI9:        fptr(48),
		EMARSI93:    fptr(46),
		WMARSI921:   fptr(45.9),
		Close:       100,
		RSI3Weekly:  fptr(65),
		RSI3Monthly: fptr(55),
	}
}

func TestApplyHilegaMilega_PassingRow(t *testing.T) {
	signals := applyHilegaMilega([]model.HMSnapshot{passingHMSnapshot()}, hmThresholds())

	require.Len(t, signals, 1)
	assert.Equal(t, 1, signals[0].SymbolID)
	assert.Equal(t, 58.0, signals[0].RSI3)
	assert.Equal(t, 65.0, signals[0].RSI3Weekly)
}

func TestApplyHilegaMilega_OverboughtDailyExcluded(t *testing.T) {
	snap := passingHMSnapshot()
	snap.RSI3 = fptr(65)

	signals := applyHilegaMilega([]model.HMSnapshot{snap}, hmThresholds())
	assert.Empty(t, signals)
}

func TestApplyHilegaMilega_ThresholdViolations(t *testing.T) {
	cases := map[string]func(*model.HMSnapshot){
		"close below minimum":   func(s *model.HMSnapshot) { s.Close = 59 },
		"rsi3/rsi9 too low":     func(s *model.HMSnapshot) { s.RSI3 = fptr(50) },
		"rsi9/ema at threshold": func(s *model.HMSnapshot) { s.EMARSI93 = fptr(48.0 / 1.04); s.WMARSI921 = fptr(40) },
		"ema below wma":         func(s *model.HMSnapshot) { s.WMARSI921 = fptr(47) },
		"weekly rsi3 too low":   func(s *model.HMSnapshot) { s.RSI3Weekly = fptr(60) },
		"monthly rsi3 too low":  func(s *model.HMSnapshot) { s.RSI3Monthly = fptr(50) },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			snap := passingHMSnapshot()
			mutate(&snap)
			assert.Empty(t, applyHilegaMilega([]model.HMSnapshot{snap}, hmThresholds()))
		})
	}
}

func TestApplyHilegaMilega_MissingJoinedFieldsExcluded(t *testing.T) {
	snap := passingHMSnapshot()
	snap.RSI3Monthly = nil

	signals := applyHilegaMilega([]model.HMSnapshot{snap}, hmThresholds())
	assert.Empty(t, signals)
}

func TestApplyHilegaMilega_Deterministic(t *testing.T) {
	snaps := []model.HMSnapshot{passingHMSnapshot(), passingHMSnapshot(), passingHMSnapshot()}
	snaps[1].SymbolID = 2
	snaps[1].YahooSymbol = "TCS.NS"
	snaps[2].RSI3 = fptr(70)

	first := applyHilegaMilega(snaps, hmThresholds())
	second := applyHilegaMilega(snaps, hmThresholds())
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
}

func passingWeeklySnapshot() model.WeeklySnapshot {
	return model.WeeklySnapshot{
		SymbolID:    7,
		YahooSymbol: "INFY.NS",
		Date:        day(2024, time.March, 15),
		WeeklyOpen:  145,
		WeeklyHigh:  152,
		WeeklyLow:   120,
		WeeklyClose: 150,
		SMA20:       fptr(140),
		RSI3Weekly:  fptr(62),
		RSI9Weekly:  fptr(52),
		EMARSI93:    fptr(49),
		WMARSI921:   fptr(48),
		Close1wAgo:  fptr(145),
		SMA202wAgo:  fptr(135),
		MinLow4wAgo: fptr(125),
	}
}

func TestApplyWeekly_PassingRow(t *testing.T) {
	signals := applyWeekly([]model.WeeklySnapshot{passingWeeklySnapshot()}, weeklyThresholds())

	require.Len(t, signals, 1)
	assert.Equal(t, 7, signals[0].SymbolID)
	assert.Equal(t, 150.0, signals[0].WeeklyClose)
}

func TestApplyWeekly_MissingLookbacksExcluded(t *testing.T) {
	// A symbol with under five weeks of history has no 4-week minimum low.
	snap := passingWeeklySnapshot()
	snap.MinLow4wAgo = nil

	assert.Empty(t, applyWeekly([]model.WeeklySnapshot{snap}, weeklyThresholds()))
}

func TestApplyWeekly_ThresholdViolations(t *testing.T) {
	cases := map[string]func(*model.WeeklySnapshot){
		"close below sma20":       func(s *model.WeeklySnapshot) { s.SMA20 = fptr(150) },
		"low above 4w minimum":    func(s *model.WeeklySnapshot) { s.WeeklyLow = 126 },
		"sma not rising":          func(s *model.WeeklySnapshot) { s.SMA202wAgo = fptr(140) },
		"close below prior week":  func(s *model.WeeklySnapshot) { s.Close1wAgo = fptr(151) },
		"close below minimum":     func(s *model.WeeklySnapshot) { s.WeeklyClose = 100; s.Close1wAgo = fptr(99) },
		"weekly rsi9 too low":     func(s *model.WeeklySnapshot) { s.RSI9Weekly = fptr(50); s.RSI3Weekly = fptr(60) },
		"rsi3/rsi9 ratio too low": func(s *model.WeeklySnapshot) { s.RSI3Weekly = fptr(55) },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			snap := passingWeeklySnapshot()
			mutate(&snap)
			assert.Empty(t, applyWeekly([]model.WeeklySnapshot{snap}, weeklyThresholds()))
		})
	}
}

func TestBacktestRange(t *testing.T) {
	firstYear, start, end, err := backtestRange(2024, 3)
	require.NoError(t, err)

	assert.Equal(t, 2022, firstYear)
	assert.True(t, start.Equal(day(2022, time.January, 1)))
	assert.True(t, end.Equal(day(2024, time.December, 31)))
}

func TestBacktestRange_Invalid(t *testing.T) {
	_, _, _, err := backtestRange(2024, 0)
	assert.Error(t, err)

	_, _, _, err = backtestRange(1500, 3)
	assert.Error(t, err)
}
