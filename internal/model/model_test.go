package model

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablesFor_KnownAssetType(t *testing.T) {
	tables, err := TablesFor("india_equity_yahoo")
	require.NoError(t, err)
	assert.Equal(t, "india_equity_symbols", tables.Symbols)
	assert.Equal(t, "india_equity_yahoo_price_data", tables.Prices)
	assert.Equal(t, "india_equity_yahoo_indicators", tables.Indicators)
	assert.Equal(t, "india_equity_yahoo_52week_stats", tables.Stats)
}

func TestTablesFor_UnknownAssetType(t *testing.T) {
	_, err := TablesFor("penny_stocks")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedAssetType)
}

func TestAssetTypes_Sorted(t *testing.T) {
	types := AssetTypes()
	require.Len(t, types, 7)
	assert.True(t, sort.StringsAreSorted(types))
	assert.Contains(t, types, "crypto")
	assert.Contains(t, types, "forex")
}

func TestValidTimeframe(t *testing.T) {
	assert.True(t, ValidTimeframe(TimeframeDaily))
	assert.True(t, ValidTimeframe(TimeframeWeekly))
	assert.True(t, ValidTimeframe(TimeframeMonthly))
	assert.False(t, ValidTimeframe("1h"))
}
