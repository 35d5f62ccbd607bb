package sim

import (
	"log"
	"sync"
)

// A SerialEngine runs events one after another on a single logical thread.
// The whole replay is serial; the engine only needs locking because the
// monitoring server pauses and resumes it from HTTP handlers.
type SerialEngine struct {
	HookableBase

	nowMu sync.RWMutex
	now   VTimeInSec

	queue *EventQueue

	pauseMu sync.Mutex
	stepMu  sync.Mutex
	runMu   sync.Mutex
	paused  bool

	endHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine with no events scheduled.
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{
		queue: NewEventQueue(),
	}
}

// Schedule registers an event to happen in the future. Scheduling into the
// past is a programming error.
func (e *SerialEngine) Schedule(evt Event) {
	if evt.Time() < e.CurrentTime() {
		log.Panic("scheduling an event earlier than the current time")
	}

	e.queue.Push(evt)
}

// Run processes events in time order until none is left. It stops at the
// first event whose handler reports an error.
func (e *SerialEngine) Run() error {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	for e.queue.Len() > 0 {
		err := e.step()
		if err != nil {
			return err
		}
	}

	return nil
}

// step advances virtual time to the next event and handles it. It holds the
// step lock so a pause can only take effect between events.
func (e *SerialEngine) step() error {
	e.stepMu.Lock()
	defer e.stepMu.Unlock()

	evt := e.queue.Pop()
	e.advanceTo(evt.Time())

	ctx := HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(ctx)

	err := evt.Handler().Handle(evt)
	if err != nil {
		return err
	}

	ctx.Pos = HookPosAfterEvent
	e.InvokeHook(ctx)

	return nil
}

func (e *SerialEngine) advanceTo(t VTimeInSec) {
	e.nowMu.Lock()
	e.now = t
	e.nowMu.Unlock()
}

// CurrentTime returns the time of the event being handled, or of the last
// handled one.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	e.nowMu.RLock()
	t := e.now
	e.nowMu.RUnlock()

	return t
}

// Pause stops the engine after the event in flight completes. Pausing an
// already paused engine has no effect.
func (e *SerialEngine) Pause() {
	e.pauseMu.Lock()
	defer e.pauseMu.Unlock()

	if e.paused {
		return
	}

	e.stepMu.Lock()
	e.paused = true
}

// Continue resumes a paused engine.
func (e *SerialEngine) Continue() {
	e.pauseMu.Lock()
	defer e.pauseMu.Unlock()

	if !e.paused {
		return
	}

	e.stepMu.Unlock()
	e.paused = false
}

// RegisterSimulationEndHandler registers a handler to run when Finished is
// called.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.endHandlers = append(e.endHandlers, handler)
}

// Finished runs the registered end handlers. The driver of the simulation
// calls it once the replay is over.
func (e *SerialEngine) Finished() {
	now := e.CurrentTime()
	for _, h := range e.endHandlers {
		h.Handle(now)
	}
}
