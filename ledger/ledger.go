// Package ledger owns per-venue balances, optional allocation caps and the
// position book, and exposes the open/close/kill-switch mutations with
// margin and fee accounting. All mutations are serialized through one
// mutex; listeners are notified only after the lock is released.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quantdesk/quantdesk/events"
	"github.com/quantdesk/quantdesk/internal/id"
	"github.com/quantdesk/quantdesk/journal"
	"github.com/quantdesk/quantdesk/market"
)

const (
	// DefaultFeeRate is charged on margin at entry.
	DefaultFeeRate = 0.001

	// InitialSimulationBalance funds a fresh simulation pool.
	InitialSimulationBalance = 100000.00

	// ResetSimulationBalance is what ResetSimulation restores. Deliberately
	// smaller than the first-boot seed.
	ResetSimulationBalance = 10000.00
)

// InsufficientFundsError blocks an open; it carries what the trade needed
// so the caller can report it.
type InsufficientFundsError struct {
	Venue     market.Venue
	Required  float64
	Available float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on %s: need %.2f, have %.2f",
		e.Venue, e.Required, e.Available)
}

// Quoter supplies a current mark for an instrument. It never fails; the
// oracle masks fetch errors internally.
type Quoter interface {
	Price(symbol string, venue market.Venue) float64
}

// OpenRequest describes a market order. Amount is in the venue's volume
// convention: stablecoin notional for crypto-style venues, lots otherwise.
type OpenRequest struct {
	Venue    market.Venue
	Symbol   string
	Side     Side
	Amount   float64
	Leverage int
	Price    float64
}

type Ledger struct {
	mu          sync.Mutex
	balances    map[market.Venue]float64
	allocations map[market.Venue]float64 // presence means a cap is set
	positions   []*Position
	index       map[string]*Position
	activeVenue market.Venue
	leverage    int
	feeRate     float64

	clock    func() time.Time
	quoter   Quoter
	journal  journal.Journal
	listener events.Listener
	log      *zap.Logger
}

type Option func(*Ledger)

func WithJournal(j journal.Journal) Option {
	return func(l *Ledger) { l.journal = j }
}

func WithListener(lis events.Listener) Option {
	return func(l *Ledger) { l.listener = lis }
}

func WithQuoter(q Quoter) Option {
	return func(l *Ledger) { l.quoter = q }
}

func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

func WithFeeRate(rate float64) Option {
	return func(l *Ledger) { l.feeRate = rate }
}

// WithBalance seeds a venue's starting balance.
func WithBalance(v market.Venue, balance float64) Option {
	return func(l *Ledger) { l.balances[v] = balance }
}

func New(log *zap.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		balances:    make(map[market.Venue]float64, len(market.Venues)),
		allocations: make(map[market.Venue]float64),
		index:       make(map[string]*Position),
		activeVenue: market.Simulation,
		leverage:    20,
		feeRate:     DefaultFeeRate,
		clock:       time.Now,
		journal:     journal.Noop{},
		log:         log,
	}
	for v := range market.Venues {
		l.balances[v] = 0
	}
	l.balances[market.Simulation] = InitialSimulationBalance
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open reserves margin plus fee against the venue's available balance and
// appends an OPEN position. Nothing is mutated when funds are short.
func (l *Ledger) Open(ctx context.Context, req OpenRequest) (*Position, error) {
	_ = ctx // price is supplied by the caller; nothing here blocks

	l.mu.Lock()

	lev := req.Venue.ClampLeverage(req.Leverage)
	margin := MarginRequired(req.Venue, req.Symbol, req.Amount, req.Price, lev)
	fee := margin * l.feeRate
	total := margin + fee

	available, capped := l.availableLocked(req.Venue)
	if available < total {
		venue := req.Venue
		l.mu.Unlock()
		l.emit(events.System,
			fmt.Sprintf("Insufficient funds on %s: need %.2f, have %.2f", venue.Meta().Name, total, available))
		return nil, &InsufficientFundsError{Venue: venue, Required: total, Available: available}
	}

	before := available
	l.balances[req.Venue] -= total
	if capped {
		l.allocations[req.Venue] -= total
	}
	after, _ := l.availableLocked(req.Venue)

	pos := &Position{
		ID:            id.New(),
		Side:          req.Side,
		Symbol:        req.Symbol,
		Venue:         req.Venue,
		Amount:        req.Amount,
		EntryPrice:    req.Price,
		Leverage:      lev,
		Status:        Open,
		OpenTime:      l.clock(),
		Fee:           fee,
		InitialMargin: margin,
		BalanceBefore: before,
		BalanceAfter:  after,
	}
	l.positions = append(l.positions, pos)
	l.index[pos.ID] = pos

	l.journalBalanceLocked(req.Venue)
	snapshot := *pos
	l.mu.Unlock()

	l.emit(events.Execution, fmt.Sprintf("Position opened: %s %s @ %s on %s",
		pos.Side, pos.Symbol, formatPrice(pos.Symbol, pos.EntryPrice), pos.Venue.Meta().Name))
	l.log.Info("position opened",
		zap.String("id", pos.ID),
		zap.String("venue", string(pos.Venue)),
		zap.String("symbol", pos.Symbol),
		zap.String("side", string(pos.Side)),
		zap.Float64("amount", pos.Amount),
		zap.Int("leverage", pos.Leverage),
		zap.Float64("margin", margin),
		zap.Float64("fee", fee))

	return &snapshot, nil
}

// Close settles an open position at price. Closing an unknown or already
// closed position is a silent no-op so duplicate close requests from
// concurrent triggers are harmless.
func (l *Ledger) Close(ctx context.Context, positionID string, price float64, trigger Trigger) (*Position, error) {
	_ = ctx

	l.mu.Lock()

	pos, ok := l.index[positionID]
	if !ok || !pos.IsOpen() {
		l.mu.Unlock()
		l.log.Debug("close ignored", zap.String("id", positionID))
		return nil, nil
	}

	pnl := positionPnL(pos, price)
	finalReturn := marginUsed(pos) + pnl

	l.balances[pos.Venue] += finalReturn
	if _, capped := l.allocations[pos.Venue]; capped {
		l.allocations[pos.Venue] += finalReturn
	}

	pos.Status = closedStatus(trigger, pnl)
	pos.ClosePrice = price
	pos.CloseTime = l.clock()
	pos.PnL = pnl
	after, _ := l.availableLocked(pos.Venue)
	pos.BalanceAfter = after

	l.journalPositionLocked(pos)
	l.journalBalanceLocked(pos.Venue)
	snapshot := *pos
	l.mu.Unlock()

	kind := events.Execution
	if pnl < 0 {
		kind = events.MarketAlert
	}
	l.emit(kind, fmt.Sprintf("Position closed: %s | PnL %.2f", snapshot.Symbol, pnl))
	l.log.Info("position closed",
		zap.String("id", snapshot.ID),
		zap.String("status", string(snapshot.Status)),
		zap.Float64("pnl", pnl),
		zap.Float64("closePrice", price))

	return &snapshot, nil
}

// KillSwitch force-closes every open position on a venue in one batch:
// one price per distinct instrument, per-position settlement math, and a
// single summed balance mutation so concurrent activity on the same venue
// cannot interleave partial updates.
func (l *Ledger) KillSwitch(ctx context.Context, venue market.Venue) (int, error) {
	_ = ctx

	l.mu.Lock()

	var open []*Position
	for _, p := range l.positions {
		if p.Venue == venue && p.IsOpen() {
			open = append(open, p)
		}
	}
	if len(open) == 0 {
		l.mu.Unlock()
		return 0, nil
	}

	marks := make(map[string]float64)
	for _, p := range open {
		if _, ok := marks[p.Symbol]; ok {
			continue
		}
		if l.quoter != nil {
			marks[p.Symbol] = l.quoter.Price(p.Symbol, venue)
		} else {
			marks[p.Symbol] = p.EntryPrice
		}
	}

	now := l.clock()
	var totalReturn float64
	for _, p := range open {
		price := marks[p.Symbol]
		pnl := positionPnL(p, price)
		totalReturn += marginUsed(p) + pnl

		p.Status = ClosedManual
		p.ClosePrice = price
		p.CloseTime = now
		p.PnL = pnl
	}

	l.balances[venue] += totalReturn
	if _, capped := l.allocations[venue]; capped {
		l.allocations[venue] += totalReturn
	}

	after, _ := l.availableLocked(venue)
	for _, p := range open {
		p.BalanceAfter = after
		l.journalPositionLocked(p)
	}
	l.journalBalanceLocked(venue)

	count := len(open)
	l.mu.Unlock()

	l.emit(events.System, fmt.Sprintf("Kill switch: %d positions closed on %s", count, venue.Meta().Name))
	l.log.Warn("kill switch fired",
		zap.String("venue", string(venue)),
		zap.Int("closed", count),
		zap.Float64("returned", totalReturn))

	return count, nil
}

// ResetSimulation restores the simulation pool to its fixed default.
// Allocation caps, other venues and position history are untouched.
func (l *Ledger) ResetSimulation() {
	l.mu.Lock()
	l.balances[market.Simulation] = ResetSimulationBalance
	l.journalBalanceLocked(market.Simulation)
	l.mu.Unlock()

	l.emit(events.System, "Simulation balance reset to default")
}

// SetAllocation sets or clears the capital cap for a venue. Clearing means
// later trades see the full balance again; nothing is rebalanced
// retroactively.
func (l *Ledger) SetAllocation(venue market.Venue, limit *float64) {
	l.mu.Lock()
	if limit == nil {
		delete(l.allocations, venue)
	} else {
		l.allocations[venue] = *limit
	}
	l.mu.Unlock()

	if limit == nil {
		l.emit(events.System, fmt.Sprintf("Allocation cap cleared for %s", venue.Meta().Name))
	} else {
		l.emit(events.System, fmt.Sprintf("Allocation cap for %s set to %.2f", venue.Meta().Name, *limit))
	}
}

// availableLocked returns the spendable balance for a venue and whether an
// allocation cap is in effect.
func (l *Ledger) availableLocked(venue market.Venue) (float64, bool) {
	if limit, ok := l.allocations[venue]; ok {
		return limit, true
	}
	return l.balances[venue], false
}

func closedStatus(trigger Trigger, pnl float64) Status {
	if trigger == TriggerManual {
		return ClosedManual
	}
	if pnl >= 0 {
		return ClosedTP
	}
	return ClosedSL
}

func (l *Ledger) emit(kind events.Kind, msg string) {
	if l.listener == nil {
		return
	}
	l.listener.OnEvent(events.Event{
		ID:      id.New(),
		Kind:    kind,
		Message: msg,
		Time:    l.clock(),
	})
}

// Journal failures never block trading; they are logged and dropped.
func (l *Ledger) journalPositionLocked(p *Position) {
	err := l.journal.RecordPosition(journal.PositionRecord{
		PositionID: p.ID,
		Venue:      string(p.Venue),
		Symbol:     p.Symbol,
		Side:       string(p.Side),
		Amount:     p.Amount,
		Leverage:   p.Leverage,
		EntryPrice: p.EntryPrice,
		ClosePrice: p.ClosePrice,
		OpenTime:   p.OpenTime,
		CloseTime:  p.CloseTime,
		Fee:        p.Fee,
		RealizedPL: p.PnL,
		Status:     string(p.Status),
	})
	if err != nil {
		l.log.Error("journal position", zap.String("id", p.ID), zap.Error(err))
	}
}

func (l *Ledger) journalBalanceLocked(venue market.Venue) {
	err := l.journal.RecordBalance(journal.BalanceSnapshot{
		Time:    l.clock(),
		Venue:   string(venue),
		Balance: l.balances[venue],
	})
	if err != nil {
		l.log.Error("journal balance", zap.String("venue", string(venue)), zap.Error(err))
	}
}

func formatPrice(symbol string, price float64) string {
	return fmt.Sprintf("%.*f", market.PricePrecision(symbol), price)
}
