package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/market-scanner/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dailyBar(date time.Time, open, high, low, close, volume float64) model.PriceBar {
	return model.PriceBar{
		SymbolID:  1,
		Timeframe: model.TimeframeDaily,
		Date:      date,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}
}

func TestResampleWeekly_SingleFullWeek(t *testing.T) {
	// Monday 2024-01-01 through Friday 2024-01-05.
	daily := []model.PriceBar{
		dailyBar(day(2024, time.January, 1), 100, 105, 99, 104, 1000),
		dailyBar(day(2024, time.January, 2), 104, 110, 103, 109, 2000),
		dailyBar(day(2024, time.January, 3), 109, 112, 101, 102, 1500),
		dailyBar(day(2024, time.January, 4), 102, 103, 98, 100, 1200),
		dailyBar(day(2024, time.January, 5), 100, 108, 100, 107, 1800),
	}

	weekly := ResampleWeekly(daily)
	require.Len(t, weekly, 1)

	bar := weekly[0]
	assert.Equal(t, model.TimeframeWeekly, bar.Timeframe)
	assert.True(t, bar.Date.Equal(day(2024, time.January, 5)), "week labeled on its Friday")
	assert.Equal(t, 100.0, bar.Open)
	assert.Equal(t, 112.0, bar.High)
	assert.Equal(t, 98.0, bar.Low)
	assert.Equal(t, 107.0, bar.Close)
	assert.Equal(t, 7500.0, bar.Volume)
}

func TestResampleWeekly_DropsPartialTrailingWeek(t *testing.T) {
	daily := []model.PriceBar{
		dailyBar(day(2024, time.January, 1), 100, 105, 99, 104, 1000),
		dailyBar(day(2024, time.January, 5), 104, 106, 103, 105, 1000),
		// Monday of the next week; its Friday label lies past the data.
		dailyBar(day(2024, time.January, 8), 105, 107, 104, 106, 1000),
	}

	weekly := ResampleWeekly(daily)
	require.Len(t, weekly, 1)
	assert.True(t, weekly[0].Date.Equal(day(2024, time.January, 5)))
}

func TestResampleWeekly_SaturdayStartsNextWeek(t *testing.T) {
	// 2024-01-06 is a Saturday and belongs to the week ending 2024-01-12.
	assert.True(t, weekEndingFriday(day(2024, time.January, 6)).Equal(day(2024, time.January, 12)))
	assert.True(t, weekEndingFriday(day(2024, time.January, 5)).Equal(day(2024, time.January, 5)))
	assert.True(t, weekEndingFriday(day(2024, time.January, 7)).Equal(day(2024, time.January, 12)))
}

func TestResampleMonthly(t *testing.T) {
	daily := []model.PriceBar{
		dailyBar(day(2024, time.January, 2), 100, 105, 99, 104, 1000),
		dailyBar(day(2024, time.January, 31), 104, 109, 102, 108, 2000),
		dailyBar(day(2024, time.February, 1), 108, 111, 107, 110, 1000),
		dailyBar(day(2024, time.February, 29), 110, 115, 109, 114, 1000),
	}

	monthly := ResampleMonthly(daily)
	require.Len(t, monthly, 2)

	jan := monthly[0]
	assert.True(t, jan.Date.Equal(day(2024, time.January, 31)))
	assert.Equal(t, 100.0, jan.Open)
	assert.Equal(t, 109.0, jan.High)
	assert.Equal(t, 99.0, jan.Low)
	assert.Equal(t, 108.0, jan.Close)
	assert.Equal(t, 3000.0, jan.Volume)

	feb := monthly[1]
	assert.True(t, feb.Date.Equal(day(2024, time.February, 29)))
	assert.Equal(t, 114.0, feb.Close)
}

func TestResampleMonthly_DropsPartialTrailingMonth(t *testing.T) {
	daily := []model.PriceBar{
		dailyBar(day(2024, time.January, 31), 100, 105, 99, 104, 1000),
		dailyBar(day(2024, time.February, 15), 104, 106, 103, 105, 1000),
	}

	monthly := ResampleMonthly(daily)
	require.Len(t, monthly, 1)
	assert.True(t, monthly[0].Date.Equal(day(2024, time.January, 31)))
}

func TestResample_Empty(t *testing.T) {
	assert.Nil(t, ResampleWeekly(nil))
	assert.Nil(t, ResampleMonthly(nil))
}
