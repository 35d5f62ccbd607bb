// Package trace defines the instruction traces that drive the virtual
// memory simulator, a parser for the on-disk text format, and a random
// workload generator.
package trace

import (
	"fmt"

	"github.com/JongHoB/Operating-System-Programming-3/vm"
)

// An Op is the kind of a trace instruction.
type Op int

// The possible instruction kinds.
const (
	OpAlloc Op = iota
	OpRead
	OpWrite
	OpFree
	OpSwitch
)

func (o Op) String() string {
	switch o {
	case OpAlloc:
		return "alloc"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpFree:
		return "free"
	case OpSwitch:
		return "switch"
	}
	return "invalid"
}

// An Instruction is one memory-management operation to replay. VPN and
// Access are meaningful for page operations, PID for switches.
type Instruction struct {
	Op     Op
	VPN    vm.VPN
	Access vm.Access
	PID    vm.PID
}

func (i Instruction) String() string {
	switch i.Op {
	case OpAlloc:
		if i.Access.Allows(vm.AccessWrite) {
			return fmt.Sprintf("a %d w", i.VPN)
		}
		return fmt.Sprintf("a %d r", i.VPN)
	case OpRead:
		return fmt.Sprintf("r %d", i.VPN)
	case OpWrite:
		return fmt.Sprintf("w %d", i.VPN)
	case OpFree:
		return fmt.Sprintf("f %d", i.VPN)
	case OpSwitch:
		return fmt.Sprintf("s %d", i.PID)
	}
	return "invalid"
}
