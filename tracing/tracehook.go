package tracing

import (
	"fmt"
	"reflect"

	"github.com/JongHoB/Operating-System-Programming-3/sim"
)

// CollectTrace installs a hook on the domain that forwards its tasks to the
// tracer. Attaching the same tracer to a domain twice is a programming
// error; the tasks would be double counted.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	mustNotHaveTracer(domain, tracer)

	domain.AcceptHook(&traceHook{tracer: tracer})
}

func mustNotHaveTracer(domain NamedHookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		h, ok := hook.(*traceHook)
		if ok && h.tracer == tracer {
			panic(fmt.Sprintf("domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}
}

// A traceHook translates the task hook positions into Tracer calls.
type traceHook struct {
	tracer Tracer
}

func (h *traceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosTaskStart:
		h.tracer.StartTask(ctx.Item.(Task))
	case HookPosTaskStep:
		h.tracer.StepTask(ctx.Item.(Task))
	case HookPosTaskEnd:
		h.tracer.EndTask(ctx.Item.(Task))
	}
}
