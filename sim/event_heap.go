package sim

import "container/heap"

// EventHeap implements a priority queue with deterministic ordering.
// Ordering: due time → sequence number.
type EventHeap struct {
	events []*PendingEvent
}

// NewEventHeap creates a new event heap
func NewEventHeap() *EventHeap {
	h := &EventHeap{
		events: make([]*PendingEvent, 0),
	}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *EventHeap) Len() int {
	return len(h.events)
}

// Less implements heap.Interface with deterministic ordering
func (h *EventHeap) Less(i, j int) bool {
	ei, ej := h.events[i], h.events[j]

	// Primary: due time (earlier first)
	if ei.DueTime != ej.DueTime {
		return ei.DueTime < ej.DueTime
	}

	// Secondary: sequence number (lower first, deterministic tie-breaker)
	return ei.Seq < ej.Seq
}

// Swap implements heap.Interface
func (h *EventHeap) Swap(i, j int) {
	h.events[i], h.events[j] = h.events[j], h.events[i]
}

// Push implements heap.Interface
func (h *EventHeap) Push(x interface{}) {
	h.events = append(h.events, x.(*PendingEvent))
}

// Pop implements heap.Interface
func (h *EventHeap) Pop() interface{} {
	old := h.events
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // release the popped event for GC
	h.events = old[0 : n-1]
	return item
}

// Schedule adds an event to the heap
func (h *EventHeap) Schedule(e *PendingEvent) {
	heap.Push(h, e)
}

// PopNext removes and returns the next event
func (h *EventHeap) PopNext() *PendingEvent {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*PendingEvent)
}

// Peek returns the next event without removing it
func (h *EventHeap) Peek() *PendingEvent {
	if h.Len() == 0 {
		return nil
	}
	return h.events[0]
}
