package sim

import (
	"container/heap"
	"sync"
)

// An EventQueue holds scheduled events ordered by time. It is safe to push
// from the monitoring server's goroutines while the engine pops.
type EventQueue struct {
	mu     sync.Mutex
	events eventHeap
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push adds an event to the queue.
func (q *EventQueue) Push(evt Event) {
	q.mu.Lock()
	heap.Push(&q.events, evt)
	q.mu.Unlock()
}

// Pop removes and returns the earliest event.
func (q *EventQueue) Pop() Event {
	q.mu.Lock()
	evt := heap.Pop(&q.events).(Event)
	q.mu.Unlock()

	return evt
}

// Len returns the number of events in the queue.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	l := len(q.events)
	q.mu.Unlock()

	return l
}

// Peek returns the earliest event without removing it.
func (q *EventQueue) Peek() Event {
	q.mu.Lock()
	evt := q.events[0]
	q.mu.Unlock()

	return evt
}

type eventHeap []Event

func (h eventHeap) Len() int {
	return len(h)
}

func (h eventHeap) Less(i, j int) bool {
	return h[i].Time() < h[j].Time()
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	evt := old[n-1]
	*h = old[:n-1]

	return evt
}
