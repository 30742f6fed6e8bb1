// ledger/state.go
package ledger

import (
	"github.com/quantdesk/quantdesk/market"
)

// Settings are the desk-level knobs that persist alongside the books.
type Settings struct {
	ActiveVenue market.Venue `json:"activeVenue"`
	Leverage    int          `json:"leverage"`
}

// Snapshot is the serializable view of the ledger, consumed by the store.
type Snapshot struct {
	Balances    map[market.Venue]float64 `json:"balances"`
	Allocations map[market.Venue]float64 `json:"allocations,omitempty"`
	Positions   []Position               `json:"positions"`
	Settings    Settings                 `json:"settings"`
}

// Snapshot copies the full ledger state for persistence or inspection.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Snapshot{
		Balances:    make(map[market.Venue]float64, len(l.balances)),
		Allocations: make(map[market.Venue]float64, len(l.allocations)),
		Positions:   make([]Position, 0, len(l.positions)),
		Settings: Settings{
			ActiveVenue: l.activeVenue,
			Leverage:    l.leverage,
		},
	}
	for v, b := range l.balances {
		s.Balances[v] = b
	}
	for v, a := range l.allocations {
		s.Allocations[v] = a
	}
	for _, p := range l.positions {
		s.Positions = append(s.Positions, *p)
	}
	return s
}

// Restore replaces the ledger state wholesale, typically at startup from
// the persisted snapshot.
func (l *Ledger) Restore(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for v, b := range s.Balances {
		l.balances[v] = b
	}
	l.allocations = make(map[market.Venue]float64, len(s.Allocations))
	for v, a := range s.Allocations {
		l.allocations[v] = a
	}
	l.positions = l.positions[:0]
	l.index = make(map[string]*Position, len(s.Positions))
	for i := range s.Positions {
		p := s.Positions[i]
		l.positions = append(l.positions, &p)
		l.index[p.ID] = &p
	}
	if s.Settings.ActiveVenue != "" {
		l.activeVenue = s.Settings.ActiveVenue
	}
	if s.Settings.Leverage > 0 {
		l.leverage = l.activeVenue.ClampLeverage(s.Settings.Leverage)
	}
}

// Balance returns a venue's full balance.
func (l *Ledger) Balance(venue market.Venue) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[venue]
}

// Available returns what a trade may spend: the allocation cap when set,
// the full balance otherwise.
func (l *Ledger) Available(venue market.Venue) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	available, _ := l.availableLocked(venue)
	return available
}

// Allocation returns the cap for a venue, or nil when none is set.
func (l *Ledger) Allocation(venue market.Venue) *float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limit, ok := l.allocations[venue]; ok {
		v := limit
		return &v
	}
	return nil
}

// OpenPositions returns copies of the venue's open positions, oldest first.
func (l *Ledger) OpenPositions(venue market.Venue) []Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Position
	for _, p := range l.positions {
		if p.Venue == venue && p.IsOpen() {
			out = append(out, *p)
		}
	}
	return out
}

// OpenCount counts open positions on venue for one instrument.
func (l *Ledger) OpenCount(venue market.Venue, symbol string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, p := range l.positions {
		if p.Venue == venue && p.Symbol == symbol && p.IsOpen() {
			n++
		}
	}
	return n
}

// History returns copies of every position ever opened, oldest first.
func (l *Ledger) History() []Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, *p)
	}
	return out
}

// Get returns a copy of one position.
func (l *Ledger) Get(positionID string) (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.index[positionID]; ok {
		return *p, true
	}
	return Position{}, false
}

func (l *Ledger) ActiveVenue() market.Venue {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activeVenue
}

func (l *Ledger) SetActiveVenue(venue market.Venue) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.activeVenue = venue
	l.leverage = venue.ClampLeverage(l.leverage)
}

// Leverage is the globally selected multiplier applied to new positions.
// Each position freezes its own leverage at entry.
func (l *Ledger) Leverage() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.leverage
}

func (l *Ledger) SetLeverage(lev int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.leverage = l.activeVenue.ClampLeverage(lev)
}

// FeeRate is the entry fee charged on margin.
func (l *Ledger) FeeRate() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.feeRate
}
