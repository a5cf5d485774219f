// Package sdtime implements superdense time: the totally ordered (t, i, o)
// tuple used to break ties between events that share the same physical
// instant.
//
// t is physical time. i is an event-kind index that imposes a within-instant
// order (Requantization < Observer < ZeroCrossing < Conditional < Handler <
// Discrete < Input), letting the driver dispatch simultaneous events in a
// fixed, deterministic sequence. o is an intra-index serial that further
// separates events sharing both t and i; the EventQueue keeps it as the
// caller supplied it and does not assign it.
package sdtime
