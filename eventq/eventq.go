// Package eventq implements the event queue: a min-priority queue of uops
// whose execution latency is elapsing, ordered by (when, di_seq) so ties
// resolve oldest-dispatched-first (spec.md §3 "Event queue", component
// C6; spec.md §5 "Event-queue ordering").
package eventq

import "container/heap"

// Event is one pending completion.
type Event struct {
	When  uint64
	DiSeq uint64
	Seq   uint64 // the uop's Seq, resolved against a uop.Pool by the caller
}

type heapImpl []Event

func (h heapImpl) Len() int { return len(h) }
func (h heapImpl) Less(i, j int) bool {
	if h[i].When != h[j].When {
		return h[i].When < h[j].When
	}
	return h[i].DiSeq < h[j].DiSeq
}
func (h heapImpl) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *heapImpl) Push(x any)   { *h = append(*h, x.(Event)) }
func (h *heapImpl) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Queue is the event queue.
type Queue struct {
	h heapImpl
}

// New builds an empty event queue.
func New() *Queue {
	q := &Queue{}
	heap.Init(&q.h)
	return q
}

// Insert schedules a completion (spec.md §4.5 "insert into event queue
// with when = current_cycle + op_latency").
func (q *Queue) Insert(e Event) {
	heap.Push(&q.h, e)
}

// Len returns the number of pending events.
func (q *Queue) Len() int { return q.h.Len() }

// PeekWhen returns the cycle-stamp of the earliest pending event.
func (q *Queue) PeekWhen() (uint64, bool) {
	if q.h.Len() == 0 {
		return 0, false
	}
	return q.h[0].When, true
}

// PopIfDue removes and returns the earliest event if its When is <=
// currentCycle (spec.md §4.6 "Drain the event queue while its head
// satisfies when ≤ current_cycle").
func (q *Queue) PopIfDue(currentCycle uint64) (Event, bool) {
	if q.h.Len() == 0 || q.h[0].When > currentCycle {
		return Event{}, false
	}
	e := heap.Pop(&q.h).(Event)
	return e, true
}

// Remove drops every pending event for a given uop Seq, used when
// recovery purges a squashed thread's speculative uops (spec.md §4.8
// step 1).
func (q *Queue) Remove(seq uint64) {
	q.RemoveIf(func(e Event) bool { return e.Seq == seq })
}

// RemoveIf drops every pending event for which drop returns true. Used by
// recovery to purge squashed uops' events in one pass without this
// package needing to know how callers resolve Seq to a uop (spec.md §4.8
// step 1).
func (q *Queue) RemoveIf(drop func(Event) bool) {
	kept := q.h[:0]
	for _, e := range q.h {
		if !drop(e) {
			kept = append(kept, e)
		}
	}
	q.h = kept
	heap.Init(&q.h)
}
