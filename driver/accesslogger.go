package driver

import (
	"log"

	"github.com/JongHoB/Operating-System-Programming-3/sim"
)

// AccessLogger is a hook that prints every executed instruction and its
// outcome.
type AccessLogger struct {
	sim.LogHookBase
}

// NewAccessLogger returns a new AccessLogger which will write into the
// logger.
func NewAccessLogger(logger *log.Logger) *AccessLogger {
	h := new(AccessLogger)
	h.Logger = logger
	return h
}

// Func writes the instruction information into the logger
func (h *AccessLogger) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosInstCompleted {
		return
	}

	result, ok := ctx.Detail.(InstResult)
	if !ok {
		return
	}

	switch result.Outcome {
	case OutcomeTranslated, OutcomeRepaired, OutcomeAllocated:
		h.Logger.Printf("%6d: %-8s -> pfn %d (%s)",
			result.Seq, result.Inst, result.PFN, result.Outcome)
	default:
		h.Logger.Printf("%6d: %-8s -> %s",
			result.Seq, result.Inst, result.Outcome)
	}
}
