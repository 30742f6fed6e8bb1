// journal/journal.go
package journal

import "time"

// PositionRecord is written when a position closes: the full round trip in
// one row.
type PositionRecord struct {
	PositionID string
	Venue      string
	Symbol     string
	Side       string
	Amount     float64
	Leverage   int
	EntryPrice float64
	ClosePrice float64
	OpenTime   time.Time
	CloseTime  time.Time
	Fee        float64
	RealizedPL float64
	Status     string
}

// BalanceSnapshot is written after every balance mutation.
type BalanceSnapshot struct {
	Time    time.Time
	Venue   string
	Balance float64
}

type Journal interface {
	RecordPosition(PositionRecord) error
	RecordBalance(BalanceSnapshot) error
	Close() error
}

// Noop discards everything; used when journaling is disabled and in tests.
type Noop struct{}

func (Noop) RecordPosition(PositionRecord) error { return nil }
func (Noop) RecordBalance(BalanceSnapshot) error { return nil }
func (Noop) Close() error                        { return nil }
