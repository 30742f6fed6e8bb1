// Package autopilot runs the periodic scan/execute loop against the
// ledger. Every tick re-reads the current ledger state through accessors;
// nothing is captured at start time, so balance and settings changes take
// effect on the next tick.
package autopilot

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quantdesk/quantdesk/ledger"
	"github.com/quantdesk/quantdesk/market"
)

type State string

const (
	Standby    State = "STANDBY"
	Scanning   State = "SCANNING"
	Evaluating State = "EVALUATING"
	Executing  State = "EXECUTING"
)

type Config struct {
	// Interval between entry scans.
	Interval time.Duration
	// Threshold is the minimum confidence for an entry.
	Threshold float64
	// RiskMin/RiskMax bound the balance fraction committed per trade.
	RiskMin float64
	RiskMax float64
	// BalanceFloor skips the tick entirely when available funds are below it.
	BalanceFloor float64
	// MaxPerInstrument caps simultaneous autopilot positions per symbol.
	MaxPerInstrument int
}

func DefaultConfig() Config {
	return Config{
		Interval:         3 * time.Second,
		Threshold:        75,
		RiskMin:          0.02,
		RiskMax:          0.05,
		BalanceFloor:     10,
		MaxPerInstrument: 2,
	}
}

// Controller drives entries on a timer and exits on price updates.
type Controller struct {
	cfg    Config
	book   *ledger.Ledger
	quoter ledger.Quoter
	scorer Scorer
	log    *zap.Logger

	mu    sync.Mutex
	rng   *rand.Rand
	state State
}

// New wires a controller. A zero seed uses wall-clock entropy; tests pass
// a fixed seed plus a stub scorer for full determinism.
func New(cfg Config, book *ledger.Ledger, quoter ledger.Quoter, scorer Scorer, seed int64, log *zap.Logger) *Controller {
	if cfg.Interval <= 0 {
		cfg.Interval = 3 * time.Second
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Controller{
		cfg:    cfg,
		book:   book,
		quoter: quoter,
		scorer: scorer,
		rng:    rand.New(rand.NewSource(seed)),
		state:  Standby,
		log:    log,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.log.Debug("autopilot state", zap.String("state", string(s)))
}

// Run loops until ctx is cancelled. Cancellation stops scheduling
// immediately; a tick already in progress runs to completion.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	c.setState(Scanning)
	defer c.setState(Standby)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckExits(ctx)
			c.ScanOnce(ctx)
		}
	}
}

// ScanOnce performs one entry scan: pick a candidate instrument, score it,
// and open a sized position when confidence clears the threshold.
func (c *Controller) ScanOnce(ctx context.Context) {
	venue := c.book.ActiveVenue()
	meta := venue.Meta()
	if len(meta.Instruments) == 0 {
		return
	}

	available := c.book.Available(venue)
	if available < c.cfg.BalanceFloor {
		c.log.Debug("scan skipped: balance below floor",
			zap.String("venue", string(venue)), zap.Float64("available", available))
		return
	}

	c.mu.Lock()
	symbol := meta.Instruments[c.rng.Intn(len(meta.Instruments))]
	buy := c.rng.Float64() > 0.5
	fraction := c.cfg.RiskMin + c.rng.Float64()*(c.cfg.RiskMax-c.cfg.RiskMin)
	c.mu.Unlock()

	c.setState(Evaluating)
	defer c.setState(Scanning)

	score := c.scorer.Score(symbol)
	if score <= c.cfg.Threshold {
		c.log.Debug("low confidence",
			zap.String("symbol", symbol), zap.Float64("score", score))
		return
	}

	if c.book.OpenCount(venue, symbol) >= c.cfg.MaxPerInstrument {
		c.log.Debug("instrument at position cap", zap.String("symbol", symbol))
		return
	}

	// Always price the instrument actually being traded, immediately
	// before sizing. A stale quote from a different instrument must never
	// reach the margin math.
	price := c.quoter.Price(symbol, venue)
	if price <= 0 {
		return
	}

	leverage := c.book.Leverage()
	amount := sizeOrder(meta, symbol, price, available, fraction, leverage)
	if amount <= 0 {
		return
	}

	side := ledger.Sell.Auto()
	if buy {
		side = ledger.Buy.Auto()
	}

	c.setState(Executing)
	_, err := c.book.Open(ctx, ledger.OpenRequest{
		Venue:    venue,
		Symbol:   symbol,
		Side:     side,
		Amount:   amount,
		Leverage: leverage,
		Price:    price,
	})
	if err != nil {
		var insufficient *ledger.InsufficientFundsError
		if errors.As(err, &insufficient) {
			// Not retried here; the next tick re-evaluates from scratch.
			c.log.Info("entry rejected",
				zap.String("symbol", symbol),
				zap.Float64("required", insufficient.Required))
			return
		}
		c.log.Error("entry failed", zap.String("symbol", symbol), zap.Error(err))
		return
	}

	c.log.Info("autopilot entry",
		zap.String("venue", string(venue)),
		zap.String("symbol", symbol),
		zap.String("side", string(side)),
		zap.Float64("amount", amount),
		zap.Float64("score", score),
		zap.Float64("price", price))
}

// CheckExits marks every open position on the active venue and closes the
// ones whose ROI crossed the take-profit or stop-loss line.
func (c *Controller) CheckExits(ctx context.Context) {
	venue := c.book.ActiveVenue()
	open := c.book.OpenPositions(venue)
	if len(open) == 0 {
		return
	}

	marks := make(map[string]float64)
	for _, p := range open {
		if _, ok := marks[p.Symbol]; !ok {
			marks[p.Symbol] = c.quoter.Price(p.Symbol, venue)
		}
	}

	for i := range open {
		c.evaluateExit(ctx, &open[i], marks[open[i].Symbol])
	}
}

// OnPrice is the feed-driven exit hook: evaluate every open position on
// the active venue holding exactly this instrument.
func (c *Controller) OnPrice(ctx context.Context, symbol string, price float64) {
	venue := c.book.ActiveVenue()
	for _, p := range c.book.OpenPositions(venue) {
		if p.Symbol != symbol {
			continue
		}
		pos := p
		c.evaluateExit(ctx, &pos, price)
	}
}

func (c *Controller) evaluateExit(ctx context.Context, p *ledger.Position, mark float64) {
	margin := p.InitialMargin
	if margin <= 0 {
		margin = ledger.MarginRequired(p.Venue, p.Symbol, p.Amount, p.EntryPrice, p.Leverage)
	}
	if margin <= 0 {
		return
	}

	roi := ledger.FloatingPnL(p, mark) / margin
	tp, sl := roiThresholds(p.Venue, p.Leverage)
	if roi < tp && roi > sl {
		return
	}

	c.log.Info("exit threshold crossed",
		zap.String("id", p.ID),
		zap.String("symbol", p.Symbol),
		zap.Float64("roi", roi))

	// A position already closed by a concurrent trigger makes this a no-op.
	if _, err := c.book.Close(ctx, p.ID, mark, ledger.TriggerMonitor); err != nil {
		c.log.Error("auto close failed", zap.String("id", p.ID), zap.Error(err))
	}
}

// roiThresholds returns the take-profit and stop-loss ROI lines. Crypto
// venues run wider targets; very high leverage tightens the stop.
func roiThresholds(venue market.Venue, leverage int) (tp, sl float64) {
	if venue.CryptoStyle() {
		tp, sl = 0.30, -0.15
	} else {
		tp, sl = 0.15, -0.08
	}
	if leverage > 100 {
		sl = -0.05
	}
	return tp, sl
}

// sizeOrder converts a balance fraction into the venue's volume convention.
// Crypto-style venues stake whole stablecoin units; forex-style venues take
// the lot count whose margin consumes roughly the same budget.
func sizeOrder(meta market.VenueMeta, symbol string, price, available, fraction float64, leverage int) float64 {
	budget := available * fraction

	if meta.CryptoStyle {
		amount := math.Floor(budget)
		if amount < meta.MinVolume {
			amount = meta.MinVolume
		}
		if amount > available {
			amount = math.Floor(available)
		}
		return amount
	}

	if price <= 0 || leverage < 1 {
		return 0
	}
	lots := budget * float64(leverage) / (market.ContractSize(symbol) * price)
	lots = math.Floor(lots*100) / 100
	if lots < meta.MinVolume {
		lots = meta.MinVolume
	}
	return lots
}
