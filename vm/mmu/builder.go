package mmu

import (
	"container/list"

	"github.com/JongHoB/Operating-System-Programming-3/sim"
	"github.com/JongHoB/Operating-System-Programming-3/vm"
	"github.com/JongHoB/Operating-System-Programming-3/vm/tlb"
)

// A Builder can build MMUs.
type Builder struct {
	numFrames       int
	entriesPerBlock int
	bootstrapPID    vm.PID
	tlb             *tlb.Comp
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numFrames:       128,
		entriesPerBlock: 16,
		bootstrapPID:    0,
	}
}

// WithNumFrames sets the number of physical page frames.
func (b Builder) WithNumFrames(n int) Builder {
	b.numFrames = n
	return b
}

// WithEntriesPerBlock sets the fan-out of both page table levels. A fan-out
// of n lets each process map n*n pages.
func (b Builder) WithEntriesPerBlock(n int) Builder {
	b.entriesPerBlock = n
	return b
}

// WithBootstrapPID sets the PID of the process that is running when the
// simulation starts.
func (b Builder) WithBootstrapPID(pid vm.PID) Builder {
	b.bootstrapPID = pid
	return b
}

// WithTLB sets the translation cache the MMU consults. Without one, the MMU
// builds its own, sized to hold a full page table so no entry is ever
// evicted.
func (b Builder) WithTLB(t *tlb.Comp) Builder {
	b.tlb = t
	return b
}

// Build creates an MMU with all frames free, an invalid TLB, and the
// bootstrap process running with an empty page table.
func (b Builder) Build(name string) *Comp {
	if b.numFrames <= 0 {
		panic("MMU needs at least one page frame")
	}

	if b.entriesPerBlock <= 0 {
		panic("page table fan-out must be positive")
	}

	c := &Comp{}
	c.ComponentBase = sim.NewComponentBase(name)
	c.entriesPerBlock = b.entriesPerBlock
	c.frames = vm.NewFrameTable(b.numFrames)
	c.readyQueue = list.New()

	c.tlb = b.tlb
	if c.tlb == nil {
		c.tlb = tlb.MakeBuilder().
			WithCapacity(b.entriesPerBlock * b.entriesPerBlock).
			Build(name + ".TLB")
	}

	bootstrap := vm.NewProcess(b.bootstrapPID, b.entriesPerBlock)
	c.current = bootstrap
	c.active = bootstrap.PageTable

	return c
}
