// Package events carries the ledger's domain notifications to whatever
// front end is listening. The ledger only emits; retention is the
// consumer's problem.
package events

import (
	"sync"
	"time"
)

type Kind string

const (
	Execution   Kind = "EXECUTION"
	System      Kind = "SYSTEM"
	MarketAlert Kind = "MARKET_ALERT"
)

type Event struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Listener receives events after the emitting operation has committed and
// released its locks.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }

// DefaultCap is how many events a Log keeps when constructed with
// a non-positive capacity.
const DefaultCap = 50

// Log is a capped, newest-first event buffer. The cap lives here, on the
// consumer side: emitters never trim.
type Log struct {
	mu      sync.Mutex
	max     int
	entries []Event
}

func NewLog(max int) *Log {
	if max <= 0 {
		max = DefaultCap
	}
	return &Log{max: max}
}

func (l *Log) OnEvent(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]Event{e}, l.entries...)
	if len(l.entries) > l.max {
		l.entries = l.entries[:l.max]
	}
}

// Recent returns up to n events, newest first. n <= 0 returns all retained.
func (l *Log) Recent(n int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Event, n)
	copy(out, l.entries[:n])
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
