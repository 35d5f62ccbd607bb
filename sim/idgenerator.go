package sim

import (
	"strconv"
	"sync/atomic"
)

// An IDGenerator hands out unique IDs for events and tracing tasks.
type IDGenerator interface {
	Generate() string
}

// The counter is process-wide and atomic. The engine is serial, but the
// monitoring server generates IDs from its own goroutines.
type countingIDGenerator struct {
	next uint64
}

func (g *countingIDGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.next, 1), 10)
}

var generator countingIDGenerator

// GetIDGenerator returns the ID generator of the simulation. IDs are
// sequential, so a run's events and tasks sort in creation order.
func GetIDGenerator() IDGenerator {
	return &generator
}
