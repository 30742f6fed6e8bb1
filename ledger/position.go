// ledger/position.go
package ledger

import (
	"strings"
	"time"

	"github.com/quantdesk/quantdesk/market"
)

type Side string

const (
	Buy      Side = "BUY"
	Sell     Side = "SELL"
	AutoBuy  Side = "AUTO_BUY"
	AutoSell Side = "AUTO_SELL"
)

// IsBuy covers both the manual and autopilot-tagged buy variants.
func (s Side) IsBuy() bool { return strings.Contains(string(s), "BUY") }

// Auto returns the autopilot-tagged variant of a side.
func (s Side) Auto() Side {
	if s.IsBuy() {
		return AutoBuy
	}
	return AutoSell
}

type Status string

const (
	Open         Status = "OPEN"
	ClosedTP     Status = "CLOSED_TP"
	ClosedSL     Status = "CLOSED_SL"
	ClosedManual Status = "CLOSED_MANUAL"
)

// Trigger distinguishes who asked for a close. It only selects the final
// status tag; the accounting is identical.
type Trigger int

const (
	TriggerManual Trigger = iota
	TriggerMonitor
)

// Position is the central entity. Created once by Open, mutated exactly
// once by Close (or the kill switch), never deleted: closed positions stay
// in history.
type Position struct {
	ID         string       `json:"id"`
	Side       Side         `json:"side"`
	Symbol     string       `json:"symbol"`
	Venue      market.Venue `json:"venue"`
	Amount     float64      `json:"amount"`
	EntryPrice float64      `json:"entryPrice"`
	Leverage   int          `json:"leverage"`
	Status     Status       `json:"status"`
	OpenTime   time.Time    `json:"openTime"`
	ClosePrice float64      `json:"closePrice,omitempty"`
	CloseTime  time.Time    `json:"closeTime,omitzero"`
	PnL        float64      `json:"pnl"`
	Fee        float64      `json:"fee"`

	// InitialMargin is the margin actually reserved at entry. Close falls
	// back to recomputing from the entry price when it is missing
	// (legacy/incomplete records).
	InitialMargin float64 `json:"initialMargin"`

	// BalanceBefore/After snapshot the ledger actually charged (the
	// allocation cap when one is set, the full balance otherwise).
	// Before is fixed at open time; After is rewritten at close.
	BalanceBefore float64 `json:"balanceBefore"`
	BalanceAfter  float64 `json:"balanceAfter"`
}

// IsOpen reports whether the position can still be closed.
func (p *Position) IsOpen() bool { return p.Status == Open }

func (p *Position) direction() float64 {
	if p.Side.IsBuy() {
		return 1
	}
	return -1
}
