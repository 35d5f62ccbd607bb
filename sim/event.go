package sim

// VTimeInSec is a point in the simulated time, in seconds.
type VTimeInSec float64

// An Event is something that happens at a point in virtual time. The replay
// driver is the only event source in this simulator; each of its events
// executes one trace instruction.
type Event interface {
	// Time returns when the event happens.
	Time() VTimeInSec

	// Handler returns the handler the event was scheduled on.
	Handler() Handler
}

// A Handler executes the events scheduled on it. Components schedule events
// for themselves only, so handling an event never reaches into another
// component's state.
type Handler interface {
	Handle(e Event) error
}

// EventBase carries the fields every event needs. Concrete events embed it
// and add their payload.
type EventBase struct {
	ID      string
	time    VTimeInSec
	handler Handler
}

// NewEventBase creates an EventBase happening at time t on the given
// handler.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	return &EventBase{
		ID:      GetIDGenerator().Generate(),
		time:    t,
		handler: handler,
	}
}

// Time returns when the event happens.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler the event was scheduled on.
func (e EventBase) Handler() Handler {
	return e.handler
}
