package variable

import (
	"github.com/joeycumines/go-qss/equeue"
	"github.com/joeycumines/go-qss/model"
	"github.com/joeycumines/go-qss/sdtime"
)

// QSS is the standard quantized-state trajectory: its quantized polynomial
// q holds one order fewer than the continuous polynomial x, the classical
// QSS1/QSS2/QSS3 methods selected by Order().
type QSS struct {
	Base
}

// NewQSS constructs an order-n standard QSS variable. hasDerivRef selects
// whether stage1 reads the model's own derivative channel or falls back to
// numerical differentiation of the value itself.
func NewQSS(name string, order int, ref, derivRef model.Ref, hasDerivRef bool, tol Tolerances, params *Params, m model.Adapter) *QSS {
	v := &QSS{Base: newBase(name, order, ref, derivRef, hasDerivRef, tol, params, m)}
	v.SetSelf(v)
	return v
}

// Init seeds the trajectory from the model's value at t0, runs the
// derivative stages, and queues the first requantization event.
func (v *QSS) Init(t0 float64, eq *equeue.EventQueue) {
	v.tQ, v.tX = t0, t0
	v.x = [4]float64{}
	v.model.SetTime(t0)
	v.x[0] = v.model.GetReal1(v.xRef)
	v.runDerivativeStages()
	v.recomputeQFromX(v.qOrder(false))
	v.tEPhys = v.computeTE()
	v.handle = eq.Add(sdtime.Time{T: v.tEPhys, I: sdtime.Requantization}, v)
}

// Requantize runs the full stage0->stage1->stage2->stage3->final pipeline
// at the variable's own predicted event time, and reschedules.
func (v *QSS) Requantize(eq *equeue.EventQueue) {
	v.advanceX0(v.tEPhys)
	v.runDerivativeStages()
	v.final()
	v.tEPhys = v.computeTE()
	eq.Shift(v.handle, sdtime.Time{T: v.tEPhys, I: sdtime.Requantization})
}

// final is the standard QSS finalization: q is truncated to one order
// below x, with no bias (that is LIQSS's contribution).
func (v *QSS) final() {
	v.recomputeQFromX(v.qOrder(false))
}

// Stage0 advances x to the variable's own predicted event time, the pure
// polynomial-evaluation phase a pooled batch runs for every trigger before
// any Stage 1 query issues.
func (v *QSS) Stage0() { v.advanceX0(v.tEPhys) }

// Finalize completes requantization once Stage 1 has already been filled in
// by a pooled batch query: Stage 2, Stage 3, Stage Final, and the
// next-event-time reschedule.
func (v *QSS) Finalize(eq *equeue.EventQueue) {
	v.stage2()
	v.stage3()
	v.final()
	v.tEPhys = v.computeTE()
	eq.Shift(v.handle, sdtime.Time{T: v.tEPhys, I: sdtime.Requantization})
}

// ObserverAdvance updates x (and hence published value) to t without
// moving tQ, used when an observee's requantization changes a value this
// variable's derivatives depend on. The resulting tX != tQ puts the next
// tE computation on the unaligned-case branch.
func (v *QSS) ObserverAdvance(t float64, eq *equeue.EventQueue) {
	v.advanceX0(t)
	v.runDerivativeStages()
	v.tEPhys = v.computeTE()
	eq.Shift(v.handle, sdtime.Time{T: v.tEPhys, I: sdtime.Requantization})
}

// HandlerAdvance reinitializes the trajectory at t after a discontinuity
// (handler-applied discrete state change), exactly like Init but without
// re-adding the queue handle.
func (v *QSS) HandlerAdvance(t float64, eq *equeue.EventQueue) {
	v.tQ, v.tX = t, t
	v.model.SetTime(t)
	v.x[0] = v.model.GetReal1(v.xRef)
	v.runDerivativeStages()
	v.final()
	v.tEPhys = v.computeTE()
	eq.Shift(v.handle, sdtime.Time{T: v.tEPhys, I: sdtime.Requantization})
}

var _ Variable = (*QSS)(nil)
