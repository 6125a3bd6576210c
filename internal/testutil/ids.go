package testutil

import (
	"fmt"
	"sync"
)

// FixedGenerator returns predetermined identifiers in order.
//
//	gen := NewFixedGenerator("a", "b")
//	gen.Generate() // "a"
//	gen.Generate() // "b"
//	gen.Generate() // panic: all identifiers exhausted
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined identifier.
//
// Panics once every identifier has been consumed so a test that decodes
// more events than it planned for fails loudly.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all identifiers exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// CountingGenerator produces "<prefix>-1", "<prefix>-2", ... and can be
// reset so the same scenario produces the same identifiers on every run.
//
// Thread-safety: safe for concurrent use via internal mutex.
type CountingGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewCountingGenerator creates a generator whose first identifier is
// "<prefix>-1". An empty prefix becomes "id".
func NewCountingGenerator(prefix string) *CountingGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &CountingGenerator{prefix: prefix}
}

// Generate returns the next identifier.
func (g *CountingGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Current returns how many identifiers have been generated.
func (g *CountingGenerator) Current() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. The next identifier is "<prefix>-1".
func (g *CountingGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
