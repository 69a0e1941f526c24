package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator produces predictable tally IDs for tests.
//
// IDs are "<prefix>-0001", "<prefix>-0002", ... so the same scenario run
// twice persists byte-identical records.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a generator. An empty prefix becomes
// "tally".
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "tally"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate returns the next ID.
//
// Implements store.IDGenerator.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// Reset restarts the sequence. After Reset(), the next ID ends in 0001.
func (g *SequentialIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
