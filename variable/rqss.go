package variable

import (
	"github.com/joeycumines/go-qss/equeue"
	"github.com/joeycumines/go-qss/model"
	"github.com/joeycumines/go-qss/sdtime"
)

// RQSS is the relaxation variant: the quantized polynomial broadcasts the
// same order as the continuous one (qFullOrder), trading the classical
// method's staircase quantization error for a smoother, fully continuous
// published trajectory at the cost of looser event-count guarantees.
type RQSS struct {
	Base
}

func NewRQSS(name string, order int, ref, derivRef model.Ref, hasDerivRef bool, tol Tolerances, params *Params, m model.Adapter) *RQSS {
	v := &RQSS{Base: newBase(name, order, ref, derivRef, hasDerivRef, tol, params, m)}
	v.qFullOrder = true
	v.SetSelf(v)
	return v
}

func (v *RQSS) Init(t0 float64, eq *equeue.EventQueue) {
	v.tQ, v.tX = t0, t0
	v.x = [4]float64{}
	v.model.SetTime(t0)
	v.x[0] = v.model.GetReal1(v.xRef)
	v.runDerivativeStages()
	v.recomputeQFromX(v.order)
	v.tEPhys = v.computeTE()
	v.handle = eq.Add(sdtime.Time{T: v.tEPhys, I: sdtime.Requantization}, v)
}

func (v *RQSS) Requantize(eq *equeue.EventQueue) {
	v.advanceX0(v.tEPhys)
	v.runDerivativeStages()
	v.recomputeQFromX(v.order)
	v.tEPhys = v.computeTE()
	eq.Shift(v.handle, sdtime.Time{T: v.tEPhys, I: sdtime.Requantization})
}

func (v *RQSS) ObserverAdvance(t float64, eq *equeue.EventQueue) {
	v.advanceX0(t)
	v.runDerivativeStages()
	v.tEPhys = v.computeTE()
	eq.Shift(v.handle, sdtime.Time{T: v.tEPhys, I: sdtime.Requantization})
}

func (v *RQSS) HandlerAdvance(t float64, eq *equeue.EventQueue) {
	v.tQ, v.tX = t, t
	v.model.SetTime(t)
	v.x[0] = v.model.GetReal1(v.xRef)
	v.runDerivativeStages()
	v.recomputeQFromX(v.order)
	v.tEPhys = v.computeTE()
	eq.Shift(v.handle, sdtime.Time{T: v.tEPhys, I: sdtime.Requantization})
}

// Stage0 advances x to the variable's own predicted event time; see
// QSS.Stage0.
func (v *RQSS) Stage0() { v.advanceX0(v.tEPhys) }

// Finalize completes requantization once Stage 1 has already been filled in
// by a pooled batch query; see QSS.Finalize.
func (v *RQSS) Finalize(eq *equeue.EventQueue) {
	v.stage2()
	v.stage3()
	v.recomputeQFromX(v.order)
	v.tEPhys = v.computeTE()
	eq.Shift(v.handle, sdtime.Time{T: v.tEPhys, I: sdtime.Requantization})
}

var _ Variable = (*RQSS)(nil)
