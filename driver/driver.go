// Package driver replays instruction traces against the MMU, one
// instruction per cycle in virtual time.
package driver

import (
	"github.com/JongHoB/Operating-System-Programming-3/datarecording"
	"github.com/JongHoB/Operating-System-Programming-3/sim"
	"github.com/JongHoB/Operating-System-Programming-3/trace"
	"github.com/JongHoB/Operating-System-Programming-3/tracing"
	"github.com/JongHoB/Operating-System-Programming-3/vm"
)

// HookPosInstCompleted triggers after an instruction is executed. The hook
// detail is an InstResult.
var HookPosInstCompleted = &sim.HookPos{Name: "InstCompleted"}

// An Outcome classifies what replaying one instruction did.
type Outcome string

// The possible outcomes.
const (
	// OutcomeTranslated marks an access that translated directly.
	OutcomeTranslated Outcome = "translated"

	// OutcomeRepaired marks an access that faulted, was repaired, and
	// then translated.
	OutcomeRepaired Outcome = "repaired"

	// OutcomeSegfault marks an access whose fault was unrecoverable. The
	// driver records it and continues; disposition of the faulting
	// process is not the driver's call.
	OutcomeSegfault Outcome = "segfault"

	// OutcomeAllocated marks a successful page allocation.
	OutcomeAllocated Outcome = "allocated"

	// OutcomeOOM marks an allocation that found no free frame.
	OutcomeOOM Outcome = "oom"

	// OutcomeFreed marks a page free.
	OutcomeFreed Outcome = "freed"

	// OutcomeSwitched marks a process switch.
	OutcomeSwitched Outcome = "switched"
)

// An InstResult is the hook detail for a completed instruction.
type InstResult struct {
	Seq     int
	Inst    trace.Instruction
	PFN     vm.PFN
	Outcome Outcome
}

type accessTableEntry struct {
	Seq     int
	Time    float64
	Op      string
	VPN     uint64
	PID     uint32
	Access  string
	PFN     uint64
	Outcome string
}

// A Comp replays a fixed instruction stream, one instruction per cycle.
type Comp struct {
	*sim.ComponentBase

	engine sim.Engine
	freq   sim.Freq

	memory   MemoryManager
	insts    []trace.Instruction
	recorder datarecording.DataRecorder

	nextInst int
}

// StartReplay schedules the first instruction. It must be called before the
// engine runs.
func (c *Comp) StartReplay() {
	if len(c.insts) == 0 {
		return
	}

	c.scheduleNext()
}

// NumInstructions returns the length of the replayed stream.
func (c *Comp) NumInstructions() int {
	return len(c.insts)
}

func (c *Comp) scheduleNext() {
	evt := instructionEvent{
		EventBase: sim.NewEventBase(
			c.freq.NextTick(c.engine.CurrentTime()), c),
	}
	c.engine.Schedule(evt)
}

// Handle executes the next instruction of the stream.
func (c *Comp) Handle(e sim.Event) error {
	switch e.(type) {
	case instructionEvent:
		c.executeNext()
	}

	return nil
}

func (c *Comp) executeNext() {
	seq := c.nextInst
	inst := c.insts[seq]
	c.nextInst++

	taskID := sim.GetIDGenerator().Generate()
	tracing.StartTask(taskID, "", c, inst.Op.String(), inst.String(), inst)

	pfn, outcome := c.execute(inst)

	tracing.AddTaskStep(taskID, c, string(outcome))
	tracing.EndTask(taskID, c)

	result := InstResult{Seq: seq, Inst: inst, PFN: pfn, Outcome: outcome}
	c.record(result)
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosInstCompleted,
		Item:   inst,
		Detail: result,
	})

	if c.nextInst < len(c.insts) {
		c.scheduleNext()
	}
}

func (c *Comp) execute(inst trace.Instruction) (vm.PFN, Outcome) {
	switch inst.Op {
	case trace.OpAlloc:
		pfn, ok := c.memory.AllocPage(inst.VPN, inst.Access)
		if !ok {
			return 0, OutcomeOOM
		}
		return pfn, OutcomeAllocated

	case trace.OpRead, trace.OpWrite:
		return c.executeAccess(inst)

	case trace.OpFree:
		c.memory.FreePage(inst.VPN)
		return 0, OutcomeFreed

	case trace.OpSwitch:
		c.memory.SwitchProcess(inst.PID)
		return 0, OutcomeSwitched
	}

	panic("invalid instruction")
}

func (c *Comp) executeAccess(inst trace.Instruction) (vm.PFN, Outcome) {
	pfn, ok := c.memory.Translate(inst.VPN, inst.Access)
	if ok {
		return pfn, OutcomeTranslated
	}

	if !c.memory.HandlePageFault(inst.VPN, inst.Access) {
		return 0, OutcomeSegfault
	}

	pfn, ok = c.memory.Translate(inst.VPN, inst.Access)
	if !ok {
		return 0, OutcomeSegfault
	}

	return pfn, OutcomeRepaired
}

func (c *Comp) record(result InstResult) {
	if c.recorder == nil {
		return
	}

	c.recorder.InsertData("trace_access", accessTableEntry{
		Seq:     result.Seq,
		Time:    float64(c.engine.CurrentTime()),
		Op:      result.Inst.Op.String(),
		VPN:     uint64(result.Inst.VPN),
		PID:     uint32(result.Inst.PID),
		Access:  result.Inst.Access.String(),
		PFN:     uint64(result.PFN),
		Outcome: string(result.Outcome),
	})
}

type instructionEvent struct {
	*sim.EventBase
}
