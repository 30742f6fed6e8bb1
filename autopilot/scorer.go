// autopilot/scorer.go
package autopilot

import (
	"math/rand"
	"sync"
	"time"
)

// Scorer produces a synthetic confidence in [0,100) for an instrument.
// It stands in for a real signal source; tests inject deterministic stubs.
type Scorer interface {
	Score(symbol string) float64
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(symbol string) float64

func (f ScorerFunc) Score(symbol string) float64 { return f(symbol) }

type randomScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomScorer is the production scorer: a seeded PRNG draw per scan.
func NewRandomScorer(seed int64) Scorer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randomScorer{rng: rand.New(rand.NewSource(seed))}
}

func (s *randomScorer) Score(string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() * 100
}
