package driver

import (
	"github.com/JongHoB/Operating-System-Programming-3/datarecording"
	"github.com/JongHoB/Operating-System-Programming-3/sim"
	"github.com/JongHoB/Operating-System-Programming-3/trace"
)

// A Builder can build trace replay drivers.
type Builder struct {
	engine   sim.Engine
	freq     sim.Freq
	memory   MemoryManager
	insts    []trace.Instruction
	recorder datarecording.DataRecorder
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
	}
}

// WithEngine sets the engine the driver schedules on.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the rate at which instructions are replayed.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithMemoryManager sets the MMU the instructions run against.
func (b Builder) WithMemoryManager(m MemoryManager) Builder {
	b.memory = m
	return b
}

// WithInstructions sets the instruction stream to replay.
func (b Builder) WithInstructions(insts []trace.Instruction) Builder {
	b.insts = insts
	return b
}

// WithDataRecorder sets the recorder that every executed instruction is
// written to, into the trace_access table.
func (b Builder) WithDataRecorder(r datarecording.DataRecorder) Builder {
	b.recorder = r
	return b
}

// Build creates the driver.
func (b Builder) Build(name string) *Comp {
	if b.engine == nil {
		panic("driver needs an engine")
	}

	if b.memory == nil {
		panic("driver needs a memory manager")
	}

	c := &Comp{}
	c.ComponentBase = sim.NewComponentBase(name)
	c.engine = b.engine
	c.freq = b.freq
	c.memory = b.memory
	c.insts = b.insts
	c.recorder = b.recorder

	if c.recorder != nil {
		c.recorder.CreateTable("trace_access", accessTableEntry{})
	}

	return c
}
