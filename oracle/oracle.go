// Package oracle produces deterministic mark prices and candle history.
//
// Prices are a pure function of wall-clock time: a slow sinusoid carries the
// trend, a fast sinusoid the noise, both scaled by a per-symbol volatility
// around a per-symbol base. Repeated calls at the same instant return the
// same value, so charts redraw without jitter and marks taken a second apart
// never show spurious deltas.
package oracle

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/quantdesk/quantdesk/market"
)

const (
	trendPeriodMs  = 3600000 // 1h
	noisePeriodMs  = 60000   // 1m
	ripplePeriodMs = 5000
	candleInterval = time.Minute
)

// Candle is one synthesized OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Oracle generates marks, optionally preferring a live quote provider for
// crypto-style venues. A live fetch that fails falls back silently to the
// generator; callers never see the failure.
type Oracle struct {
	Clock func() time.Time

	live *LiveProvider
	log  *zap.Logger
}

type Option func(*Oracle)

// WithLiveProvider wires an optional best-effort quote source.
func WithLiveProvider(lp *LiveProvider) Option {
	return func(o *Oracle) { o.live = lp }
}

func WithClock(clock func() time.Time) Option {
	return func(o *Oracle) { o.Clock = clock }
}

func New(log *zap.Logger, opts ...Option) *Oracle {
	o := &Oracle{Clock: time.Now, log: log}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Price returns the current mark for symbol on venue. For crypto-style
// venues with a live provider attached, the live quote wins when it can be
// fetched; otherwise the deterministic generator is used.
func (o *Oracle) Price(symbol string, venue market.Venue) float64 {
	if o.live != nil && venue.CryptoStyle() {
		if px, err := o.live.Quote(symbol); err == nil {
			return px
		} else if o.log != nil {
			o.log.Debug("live quote unavailable, using generator",
				zap.String("symbol", symbol), zap.Error(err))
		}
	}
	return o.PriceAt(symbol, o.Clock())
}

// PriceAt is the pure generator: identical (symbol, t) inputs produce
// identical outputs across calls and process restarts.
func (o *Oracle) PriceAt(symbol string, t time.Time) float64 {
	spec := market.PriceSpec(symbol)
	ms := float64(t.UnixMilli())

	trend := math.Sin(ms / trendPeriodMs)
	noise := math.Sin(ms/noisePeriodMs)*0.2 + math.Sin(ms/ripplePeriodMs)*0.05
	kick := math.Abs(math.Sin(ms)) * spec.Volatility * 0.05

	price := spec.Base + trend*spec.Volatility*0.5 + noise*spec.Volatility*0.2 + kick
	return market.RoundPrice(symbol, price)
}

// Klines returns count one-minute candles ending at "now", oldest first.
// The window is idempotent: recomputing the same timestamps yields the same
// candles, including the open/high/low jitter, which is seeded from
// (symbol, bar time) rather than from mutable random state.
func (o *Oracle) Klines(symbol string, venue market.Venue, count int) []Candle {
	if count <= 0 {
		return nil
	}
	now := o.Clock()
	out := make([]Candle, 0, count)
	for i := count - 1; i >= 0; i-- {
		barTime := now.Add(-time.Duration(i) * candleInterval)
		out = append(out, o.candleAt(symbol, barTime))
	}
	return out
}

func (o *Oracle) candleAt(symbol string, t time.Time) Candle {
	c := o.PriceAt(symbol, t)
	span := c * 0.0005 // 0.05% candle body

	rng := rand.New(rand.NewSource(barSeed(symbol, t)))
	open := c - (rng.Float64()-0.5)*span
	high := math.Max(open, c) + rng.Float64()*span
	low := math.Min(open, c) - rng.Float64()*span
	volume := rng.Float64()*1000 + 500

	return Candle{
		Time:   t,
		Open:   market.RoundPrice(symbol, open),
		High:   market.RoundPrice(symbol, high),
		Low:    market.RoundPrice(symbol, low),
		Close:  c,
		Volume: math.Round(volume*100) / 100,
	}
}

func barSeed(symbol string, t time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	var buf [8]byte
	ms := t.UnixMilli()
	for i := 0; i < 8; i++ {
		buf[i] = byte(ms >> (8 * i))
	}
	h.Write(buf[:])
	return int64(h.Sum64())
}
