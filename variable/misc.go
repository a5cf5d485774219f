package variable

import (
	"math"

	"github.com/joeycumines/go-qss/equeue"
	"github.com/joeycumines/go-qss/model"
	"github.com/joeycumines/go-qss/sdtime"
)

// RealVar is a zero-derivative passthrough: an algebraic real whose value
// is re-sampled from the model whenever an observee or handler advances
// it, but which never schedules its own requantization (tEPhys stays at
// +Inf). Used for pure model outputs that have no internal dynamics.
type RealVar struct {
	Base
}

func NewReal(name string, ref model.Ref, m model.Adapter) *RealVar {
	v := &RealVar{Base: newBase(name, 0, ref, 0, false, Tolerances{}, DefaultParams(), m)}
	v.SetSelf(v)
	return v
}

func (v *RealVar) Init(t0 float64, eq *equeue.EventQueue) {
	v.tQ, v.tX = t0, t0
	v.model.SetTime(t0)
	v.x[0] = v.model.GetReal1(v.xRef)
	v.q[0] = v.x[0]
	v.tEPhys = math.Inf(1)
	v.handle = eq.Add(sdtime.Time{T: v.tEPhys, I: sdtime.Requantization}, v)
}

// Refresh re-samples the value at t; used after an observee changes.
func (v *RealVar) Refresh(t float64, eq *equeue.EventQueue) {
	v.advanceX0(t)
	v.q[0] = v.x[0]
	eq.Shift(v.handle, sdtime.Time{T: v.tEPhys, I: sdtime.Requantization})
}

var _ Variable = (*RealVar)(nil)

// DiscreteVar holds a value that only ever changes at a discrete (handler)
// event; between events it is exactly constant, never scheduling its own
// requantization.
type DiscreteVar struct {
	Base
}

func NewDiscrete(name string, ref model.Ref, m model.Adapter) *DiscreteVar {
	v := &DiscreteVar{Base: newBase(name, 0, ref, 0, false, Tolerances{}, DefaultParams(), m)}
	v.SetSelf(v)
	return v
}

func (v *DiscreteVar) Init(t0 float64, eq *equeue.EventQueue) {
	v.tQ, v.tX = t0, t0
	v.model.SetTime(t0)
	v.x[0] = v.model.GetReal1(v.xRef)
	v.q[0] = v.x[0]
	v.tEPhys = math.Inf(1)
	v.handle = eq.Add(sdtime.Time{T: v.tEPhys, I: sdtime.Discrete}, v)
}

// ApplyHandler sets the new value at t (a handler just wrote it into the
// model) and republishes q so observers pick it up.
func (v *DiscreteVar) ApplyHandler(t float64, eq *equeue.EventQueue) {
	v.model.SetTime(t)
	v.tQ, v.tX = t, t
	v.x[0] = v.model.GetReal1(v.xRef)
	v.q[0] = v.x[0]
	eq.Shift(v.handle, sdtime.Time{T: math.Inf(1), I: sdtime.Discrete})
}

var _ Variable = (*DiscreteVar)(nil)

// InputFunc is a closed-form input shape: the value at absolute time t,
// independent of the model's own state.
type InputFunc func(t float64) float64

// InputVar drives a model input from a closed-form function of time rather
// than a quantized trajectory computed from the model's own derivative.
// It still publishes a continuous polynomial approximation (via centered
// finite differences of Func in runInputDerivatives) so it
// participates in the same requantization scheduling as any other
// trajectory variable.
type InputVar struct {
	Base
	Func InputFunc
}

func NewInput(name string, order int, ref model.Ref, tol Tolerances, params *Params, m model.Adapter, fn InputFunc) *InputVar {
	v := &InputVar{
		Base: newBase(name, order, ref, 0, false, tol, params, m),
		Func: fn,
	}
	v.SetSelf(v)
	return v
}

func (v *InputVar) sample(t float64) float64 {
	v.model.SetTime(t)
	val := v.Func(t)
	v.model.SetReal1(v.xRef, val)
	return val
}

func (v *InputVar) Init(t0 float64, eq *equeue.EventQueue) {
	v.tQ, v.tX = t0, t0
	v.x = [4]float64{}
	v.x[0] = v.sample(t0)
	v.runInputDerivatives()
	v.recomputeQFromX(v.qOrder(false))
	v.tEPhys = v.computeTE()
	v.handle = eq.Add(sdtime.Time{T: v.tEPhys, I: sdtime.Input}, v)
}

func (v *InputVar) Requantize(eq *equeue.EventQueue) {
	v.tX = v.tEPhys
	v.x[0] = v.sample(v.tX)
	for k := 1; k <= v.order; k++ {
		v.x[k] = 0
	}
	v.runInputDerivatives()
	v.recomputeQFromX(v.qOrder(false))
	v.tEPhys = v.computeTE()
	eq.Shift(v.handle, sdtime.Time{T: v.tEPhys, I: sdtime.Input})
}

// runInputDerivatives computes x1..x(order) directly from Func via
// centered finite differences, since a closed-form input has no model
// derivative channel to query.
func (v *InputVar) runInputDerivatives() {
	if v.order < 1 {
		return
	}
	h := v.params.DtND
	t := v.tX
	v.x[1] = centeredFirstDerivative(v.Func, t, h)
	if v.order >= 2 {
		v.x[2] = centeredSecondDerivative(v.Func, t, h) / 2
	}
	if v.order >= 3 {
		x1m := centeredFirstDerivative(v.Func, t-h, h)
		x1p := centeredFirstDerivative(v.Func, t+h, h)
		v.x[3] = centeredThirdDerivativeFromFirst(x1m, v.x[1], x1p, h)
	}
}

var _ Variable = (*InputVar)(nil)
