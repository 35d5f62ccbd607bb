package tlb

import (
	"github.com/JongHoB/Operating-System-Programming-3/sim"
)

// A Builder can build TLBs.
type Builder struct {
	capacity int
}

// MakeBuilder returns a Builder with default parameters. The default
// capacity matches the number of pages of a 16-way two-level page table, so
// no insertion ever needs a free slot that is not there.
func MakeBuilder() Builder {
	return Builder{
		capacity: 256,
	}
}

// WithCapacity sets the number of slots in the TLB.
func (b Builder) WithCapacity(n int) Builder {
	b.capacity = n
	return b
}

// Build creates a new TLB with all slots invalid.
func (b Builder) Build(name string) *Comp {
	if b.capacity <= 0 {
		panic("TLB capacity must be positive")
	}

	c := &Comp{}
	c.ComponentBase = sim.NewComponentBase(name)
	c.entries = make([]entry, b.capacity)

	return c
}
