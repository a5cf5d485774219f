package connect

import (
	"github.com/joeycumines/go-qss/variable"
)

// Source is anything a Connection can sample a value from at a given time
// -- almost always a variable.Variable's published quantized trajectory.
type Source interface {
	Q(t float64) float64
}

// Continuous builds a variable.InputFunc that always reads src's current
// quantized value: since the producing solver re-requantizes src on its
// own tolerance-driven schedule, this is the "synced before every output
// event" policy -- the consuming InputVar re-samples fresh data every time
// its own stage pipeline runs, with no separate scheduling needed.
func Continuous(src Source) variable.InputFunc {
	return func(t float64) float64 { return src.Q(t) }
}

// ApplyFixedStep caps params.DtMax to dtCon (when dtCon is smaller, or
// params.DtMax is unset), implementing the "fixed dtCon step" sync policy:
// the consuming InputVar can never go longer than dtCon between
// re-samples, regardless of how slowly its own tolerance otherwise would
// let it drift.
func ApplyFixedStep(params *variable.Params, dtCon float64) {
	if dtCon <= 0 {
		return
	}
	if params.DtMax <= 0 || dtCon < params.DtMax {
		params.DtMax = dtCon
	}
}

// Connection is a named binding from one solver's output to another's
// input, kept for introspection/logging; the actual data path is the
// InputFunc returned by Continuous, bound into a variable.InputVar via
// variable.NewInput.
type Connection struct {
	Name   string
	Source Source
	DtCon  float64 // 0 disables the fixed-step cap; Continuous-only sync otherwise.
}

// Func returns the InputFunc this connection drives its target with.
func (c Connection) Func() variable.InputFunc { return Continuous(c.Source) }
