package events

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogNewestFirst(t *testing.T) {
	t.Parallel()

	l := NewLog(10)
	for i := 0; i < 3; i++ {
		l.OnEvent(Event{ID: fmt.Sprintf("e%d", i), Kind: System, Time: time.Now()})
	}

	recent := l.Recent(0)
	assert.Len(t, recent, 3)
	assert.Equal(t, "e2", recent[0].ID)
	assert.Equal(t, "e0", recent[2].ID)
}

func TestLogCapDropsOldest(t *testing.T) {
	t.Parallel()

	l := NewLog(DefaultCap)
	for i := 0; i < DefaultCap+20; i++ {
		l.OnEvent(Event{ID: fmt.Sprintf("e%d", i), Kind: Execution})
	}

	assert.Equal(t, DefaultCap, l.Len())
	recent := l.Recent(0)
	assert.Equal(t, fmt.Sprintf("e%d", DefaultCap+19), recent[0].ID)
	// The oldest 20 are gone.
	assert.Equal(t, "e20", recent[len(recent)-1].ID)
}

func TestLogRecentBounds(t *testing.T) {
	t.Parallel()

	l := NewLog(10)
	for i := 0; i < 5; i++ {
		l.OnEvent(Event{ID: fmt.Sprintf("e%d", i)})
	}

	assert.Len(t, l.Recent(2), 2)
	assert.Len(t, l.Recent(100), 5)
	assert.Len(t, l.Recent(-1), 5)
}

func TestNewLogDefaultsCap(t *testing.T) {
	t.Parallel()

	l := NewLog(0)
	for i := 0; i < DefaultCap*2; i++ {
		l.OnEvent(Event{ID: fmt.Sprintf("e%d", i)})
	}
	assert.Equal(t, DefaultCap, l.Len())
}

func TestListenerFunc(t *testing.T) {
	t.Parallel()

	var got Event
	var lis Listener = ListenerFunc(func(e Event) { got = e })
	lis.OnEvent(Event{ID: "x", Kind: MarketAlert, Message: "moved"})
	assert.Equal(t, "x", got.ID)
	assert.Equal(t, MarketAlert, got.Kind)
}
