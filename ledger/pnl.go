// ledger/pnl.go
package ledger

import (
	"math"

	"github.com/quantdesk/quantdesk/market"
)

// StalePriceBound is the relative deviation from entry beyond which a mark
// is treated as corrupt (oracle glitch or asset/price mismatch) and floating
// PnL reports zero instead of a wild number.
const StalePriceBound = 0.5

// MarginRequired computes the capital reserved for an order. Crypto-style
// venues already express the amount in quote currency; forex-style venues
// reserve notional/leverage.
func MarginRequired(venue market.Venue, symbol string, amount, price float64, leverage int) float64 {
	if venue.CryptoStyle() {
		return amount
	}
	if leverage < 1 {
		leverage = 1
	}
	return amount * market.ContractSize(symbol) * price / float64(leverage)
}

// positionPnL is the realized/floating PnL of p marked at price.
//
// Crypto venues lever the relative move on the stablecoin notional. Forex,
// metals and indices multiply the absolute move by contract size and lots,
// with yen-quoted pairs divided by 100 to approximate the JPY->USD
// conversion at pip scale.
func positionPnL(p *Position, price float64) float64 {
	diff := price - p.EntryPrice

	if p.Venue.CryptoStyle() {
		if p.EntryPrice == 0 {
			return 0
		}
		return diff / p.EntryPrice * p.direction() * p.Amount * float64(p.Leverage)
	}

	pnl := diff * p.direction() * market.ContractSize(p.Symbol) * p.Amount
	if market.IsJPYQuoted(p.Symbol) {
		pnl /= 100
	}
	return pnl
}

// FloatingPnL marks an open position to price, guarding against stale or
// mismatched quotes: a mark deviating more than StalePriceBound from entry
// reports zero rather than a spurious number.
func FloatingPnL(p *Position, price float64) float64 {
	if p == nil || !p.IsOpen() || p.EntryPrice <= 0 {
		return 0
	}
	if math.Abs(price-p.EntryPrice)/p.EntryPrice > StalePriceBound {
		return 0
	}
	return positionPnL(p, price)
}

// marginUsed returns the reserved margin for close accounting, recomputing
// from the entry price when the stored value is absent.
func marginUsed(p *Position) float64 {
	if p.InitialMargin > 0 {
		return p.InitialMargin
	}
	return MarginRequired(p.Venue, p.Symbol, p.Amount, p.EntryPrice, p.Leverage)
}
