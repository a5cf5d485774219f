// Package equeue implements the event queue: a priority queue, keyed by
// superdense time, of Target handles. It supports insertion, in-place key
// change ("shift"), and extraction of the full group of targets sharing the
// smallest superdense time (events considered simultaneous).
//
// The queue is a thin wrapper around container/heap, following the same
// shape as a timerHeap: a slice-backed min-heap whose elements additionally
// know their own heap index, so a live Target can be repositioned in
// O(log n) without a linear search.
package equeue
