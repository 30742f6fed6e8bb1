// market/instruments.go
package market

import (
	"math"
	"strings"
)

// AssetClass is derived purely from the symbol text. There is no persisted
// instrument entity; two calls with the same symbol always agree.
type AssetClass int

const (
	Crypto AssetClass = iota
	Forex
	Metal
	Index
)

func (c AssetClass) String() string {
	switch c {
	case Crypto:
		return "crypto"
	case Metal:
		return "metal"
	case Index:
		return "index"
	default:
		return "forex"
	}
}

const (
	// StandardLot is the default forex contract size, also used for
	// unknown symbols.
	StandardLot = 100000

	// GoldContract is ounces per 1.0 lot for the gold family.
	GoldContract = 100
)

var cryptoSymbols = map[string]bool{
	"BTC": true, "ETH": true, "SOL": true, "BNB": true, "XRP": true,
}

var indexSymbols = map[string]bool{
	"US30": true, "DJI": true, "NAS": true, "NAS100": true,
}

// Classify maps a symbol to its asset class by text pattern.
func Classify(symbol string) AssetClass {
	s := strings.ToUpper(symbol)
	switch {
	case cryptoSymbols[s]:
		return Crypto
	case strings.Contains(s, "XAU") || strings.Contains(s, "GOLD"):
		return Metal
	case indexSymbols[s]:
		return Index
	default:
		return Forex
	}
}

// ContractSize returns units of underlying per 1.0 lot/contract.
// Unknown symbols fall back to the standard forex lot.
func ContractSize(symbol string) float64 {
	switch Classify(symbol) {
	case Metal:
		return GoldContract
	case Index:
		return 1
	case Crypto:
		return 1
	default:
		return StandardLot
	}
}

// IsJPYQuoted reports whether the pair is quoted in yen. Yen-quoted pairs
// carry a /100 correction in realized PnL to approximate the JPY->USD
// conversion at pip scale.
func IsJPYQuoted(symbol string) bool {
	return strings.Contains(strings.ToUpper(symbol), "JPY")
}

// PricePrecision returns rounding decimals for a symbol: 2 for JPY pairs,
// gold, indices and crypto majors, 5 for other forex pairs.
func PricePrecision(symbol string) int {
	if Classify(symbol) == Forex && !IsJPYQuoted(symbol) {
		return 5
	}
	return 2
}

// RoundPrice rounds to the symbol's native precision.
func RoundPrice(symbol string, price float64) float64 {
	scale := math.Pow10(PricePrecision(symbol))
	return math.Round(price*scale) / scale
}

// Spec holds the oracle constants for a symbol: the level the synthetic
// waveform oscillates around and its amplitude.
type Spec struct {
	Base       float64
	Volatility float64
}

var specs = map[string]Spec{
	"BTC":    {Base: 64500, Volatility: 500},
	"ETH":    {Base: 3450, Volatility: 50},
	"SOL":    {Base: 148, Volatility: 5},
	"BNB":    {Base: 590, Volatility: 10},
	"XRP":    {Base: 0.62, Volatility: 0.02},
	"XAUUSD": {Base: 2350.50, Volatility: 15.0},
	"EURUSD": {Base: 1.0850, Volatility: 0.0050},
	"GBPUSD": {Base: 1.2640, Volatility: 0.0060},
	"USDJPY": {Base: 155.20, Volatility: 0.80},
	"US30":   {Base: 39100, Volatility: 150},
}

var specAliases = map[string]string{
	"XAU":  "XAUUSD",
	"GOLD": "XAUUSD",
	"EUR":  "EURUSD",
	"GBP":  "GBPUSD",
	"JPY":  "USDJPY",
	"DJI":  "US30",
}

// PriceSpec returns the waveform constants for a symbol. Unknown symbols
// get a generic spec so the oracle never fails.
func PriceSpec(symbol string) Spec {
	s := strings.ToUpper(symbol)
	if canon, ok := specAliases[s]; ok {
		s = canon
	}
	if spec, ok := specs[s]; ok {
		return spec
	}
	return Spec{Base: 100.00, Volatility: 1.0}
}
