package equeue

import (
	"container/heap"
	"fmt"

	"github.com/joeycumines/go-qss/sdtime"
)

// Target is anything that can hold a live event handle in the queue: a
// Variable, a Conditional, or any other driver-scheduled entity.
type Target interface {
	// Name returns a diagnostic identifier, used in error messages and logs.
	Name() string
}

// Handle is the opaque token returned by Add and consumed by Shift. A Target
// implementation is expected to store its own Handle (per the "Target
// carries eventHandle" invariant in the design notes); the driver never
// calls Shift on a handle a Target doesn't currently hold, and it
// guarantees each Target has at most one live Handle at a time (Add does
// not check this).
type Handle struct {
	st     sdtime.Time
	target Target
	pass   uint64
	index  int // position in the heap backing slice; -1 once removed
}

// Time returns the superdense time this handle is currently keyed at.
func (h *Handle) Time() sdtime.Time { return h.st }

// Pass returns the pass counter value recorded when this handle was last
// placed into the queue (via Add or Shift).
func (h *Handle) Pass() uint64 { return h.pass }

// live reports whether the handle is still tracked by a queue.
func (h *Handle) live() bool { return h.index >= 0 }

// EventQueue is a priority queue of Target handles, keyed by superdense
// time. All operations are O(log n) amortized, matching a
// container/heap-backed min-heap of scheduled items.
type EventQueue struct {
	items       []*Handle
	currentPass uint64
}

// New returns an empty, ready-to-use EventQueue.
func New() *EventQueue {
	return &EventQueue{}
}

// Len reports the number of live entries in the queue.
func (q *EventQueue) Len() int { return len(q.items) }

// Pass returns the queue's current pass counter.
func (q *EventQueue) Pass() uint64 { return q.currentPass }

// AdvancePass increments the pass counter. The driver calls this once per
// extracted simultaneous-event group, so that Conditional / When-clause
// logic can distinguish "became true this pass" from "was already true".
func (q *EventQueue) AdvancePass() {
	q.currentPass++
}

// Add inserts target at superdense time st, returning a live Handle. The
// handle is stamped with the queue's current pass.
func (q *EventQueue) Add(st sdtime.Time, target Target) *Handle {
	h := &Handle{st: st, target: target, pass: q.currentPass, index: -1}
	heap.Push(q, h)
	return h
}

// Shift repositions an already-queued handle to a new superdense time,
// updating its pass stamp and restoring heap order. Shifting a handle to
// the time it already holds is a no-op (idempotent), per the EventQueue
// contract.
//
// Calling Shift with a handle that was already extracted or removed panics;
// calling it with a handle belonging to a different queue is undefined
// behavior. The driver must guarantee each Target holds at most one live
// handle.
func (q *EventQueue) Shift(h *Handle, st sdtime.Time) {
	if !h.live() {
		panic(fmt.Sprintf("equeue: shift on stale handle for target %q", h.target.Name()))
	}
	if sdtime.Equal(h.st, st) {
		return
	}
	h.st = st
	h.pass = q.currentPass
	heap.Fix(q, h.index)
}

// Remove removes a live handle from the queue entirely (used when a Target
// is being torn down and should no longer be scheduled).
func (q *EventQueue) Remove(h *Handle) {
	if !h.live() {
		return
	}
	heap.Remove(q, h.index)
}

// PeekMinTime returns the smallest superdense time currently in the queue,
// and false if the queue is empty.
func (q *EventQueue) PeekMinTime() (sdtime.Time, bool) {
	if len(q.items) == 0 {
		return sdtime.Time{}, false
	}
	return q.items[0].st, true
}

// ExtractMinGroup removes and returns every Target sharing the queue's
// smallest (t, i) pair — the "simultaneous event" batch the driver dispatches
// as one group. Extraction on an empty queue is a programmer error (the
// driver must never call it without first checking PeekMinTime) and panics.
func (q *EventQueue) ExtractMinGroup() []Target {
	if len(q.items) == 0 {
		panic("equeue: extract_min_group on empty queue")
	}
	lead := q.items[0].st
	var group []Target
	for len(q.items) > 0 && sdtime.SameInstant(q.items[0].st, lead) {
		h := heap.Pop(q).(*Handle)
		group = append(group, h.target)
	}
	return group
}

// --- container/heap.Interface ---

func (q *EventQueue) Less(i, j int) bool {
	return sdtime.Less(q.items[i].st, q.items[j].st)
}

func (q *EventQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *EventQueue) Push(x any) {
	h := x.(*Handle)
	h.index = len(q.items)
	q.items = append(q.items, h)
}

func (q *EventQueue) Pop() any {
	old := q.items
	n := len(old)
	h := old[n-1]
	old[n-1] = nil
	h.index = -1
	q.items = old[:n-1]
	return h
}
