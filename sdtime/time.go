package sdtime

import "math"

// Kind imposes the within-instant dispatch order for events sharing the same
// physical time. Lower values are processed first.
type Kind uint8

const (
	Requantization Kind = iota
	Observer
	ZeroCrossing
	Conditional
	Handler
	Discrete
	Input

	kindCount
)

// String implements fmt.Stringer for diagnostics.
func (k Kind) String() string {
	switch k {
	case Requantization:
		return "Requantization"
	case Observer:
		return "Observer"
	case ZeroCrossing:
		return "ZeroCrossing"
	case Conditional:
		return "Conditional"
	case Handler:
		return "Handler"
	case Discrete:
		return "Discrete"
	case Input:
		return "Input"
	default:
		return "Unknown"
	}
}

// Time is the superdense time tuple (t, i, o): t is physical time, i is the
// event-kind index (see Kind), and o is an intra-index serial, supplied by
// the caller (the EventQueue does not assign it), that separates
// otherwise-simultaneous events of the same kind.
type Time struct {
	T float64
	I Kind
	O uint64
}

// Infinite is the sentinel "never" superdense time: strictly greater than
// any finite Time. Variables with no pending event hold this as their tE.
var Infinite = Time{T: math.Inf(1)}

// Zero is the earliest possible superdense time for a given physical t:
// kind Requantization, serial 0.
func Zero(t float64) Time {
	return Time{T: t}
}

// Less reports whether a sorts strictly before b under lexicographic (t, i,
// o) order.
func Less(a, b Time) bool {
	if a.T != b.T {
		return a.T < b.T
	}
	if a.I != b.I {
		return a.I < b.I
	}
	return a.O < b.O
}

// Equal reports whether a and b are the same superdense instant.
func Equal(a, b Time) bool {
	return a.T == b.T && a.I == b.I && a.O == b.O
}

// SameInstant reports whether a and b share physical time and kind, i.e.
// they belong to the same simultaneous-event batch (ignoring the serial).
func SameInstant(a, b Time) bool {
	return a.T == b.T && a.I == b.I
}

// IsInfinite reports whether t is the "never" sentinel.
func IsInfinite(t Time) bool {
	return math.IsInf(t.T, 1)
}
