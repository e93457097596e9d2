package model

import (
	"errors"
	"fmt"
	"sort"
)

// Timeframe labels used across price and indicator tables.
const (
	TimeframeDaily   = "1d"
	TimeframeWeekly  = "1wk"
	TimeframeMonthly = "1mo"
)

// Timeframes lists every supported timeframe in refresh order.
var Timeframes = []string{TimeframeDaily, TimeframeWeekly, TimeframeMonthly}

// ValidTimeframe reports whether tf is a supported timeframe label.
func ValidTimeframe(tf string) bool {
	for _, t := range Timeframes {
		if t == tf {
			return true
		}
	}
	return false
}

// AssetTables holds the table names backing one asset type. Every asset type
// gets its own symbol, price, indicator and 52-week stats tables.
type AssetTables struct {
	Symbols    string
	Prices     string
	Indicators string
	Stats      string
}

var assetTableMap = map[string]AssetTables{
	"india_equity_yahoo": {
		Symbols:    "india_equity_symbols",
		Prices:     "india_equity_yahoo_price_data",
		Indicators: "india_equity_yahoo_indicators",
		Stats:      "india_equity_yahoo_52week_stats",
	},
	"usa_equity": {
		Symbols:    "usa_equity_symbols",
		Prices:     "usa_equity_price_data",
		Indicators: "usa_equity_indicators",
		Stats:      "usa_equity_52week_stats",
	},
	"india_index": {
		Symbols:    "india_index_symbols",
		Prices:     "india_index_price_data",
		Indicators: "india_index_indicators",
		Stats:      "india_index_52week_stats",
	},
	"global_index": {
		Symbols:    "global_index_symbols",
		Prices:     "global_index_price_data",
		Indicators: "global_index_indicators",
		Stats:      "global_index_52week_stats",
	},
	"commodity": {
		Symbols:    "commodity_symbols",
		Prices:     "commodity_price_data",
		Indicators: "commodity_indicators",
		Stats:      "commodity_52week_stats",
	},
	"crypto": {
		Symbols:    "crypto_symbols",
		Prices:     "crypto_price_data",
		Indicators: "crypto_indicators",
		Stats:      "crypto_52week_stats",
	},
	"forex": {
		Symbols:    "forex_symbols",
		Prices:     "forex_price_data",
		Indicators: "forex_indicators",
		Stats:      "forex_52week_stats",
	},
}

// ErrUnsupportedAssetType signals an asset type outside the registry.
// Handlers map it to a client error.
var ErrUnsupportedAssetType = errors.New("unsupported asset type")

// ErrInvalidTimeframe signals a timeframe outside the supported set.
var ErrInvalidTimeframe = errors.New("invalid timeframe")

// TablesFor resolves the table set for an asset type. An unknown asset type
// is a configuration error and aborts the calling operation.
func TablesFor(assetType string) (AssetTables, error) {
	tables, ok := assetTableMap[assetType]
	if !ok {
		return AssetTables{}, fmt.Errorf("%w: %s", ErrUnsupportedAssetType, assetType)
	}
	return tables, nil
}

// AssetTypes returns every configured asset type, sorted for deterministic
// batch iteration.
func AssetTypes() []string {
	keys := make([]string, 0, len(assetTableMap))
	for k := range assetTableMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Symbol is one tradeable instrument within an asset type.
type Symbol struct {
	SymbolID    int    `json:"symbol_id" db:"symbol_id"`
	YahooSymbol string `json:"yahoo_symbol" db:"yahoo_symbol"`
	IsActive    bool   `json:"is_active" db:"is_active"`
}
