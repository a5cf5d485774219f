package variable

import (
	"github.com/joeycumines/go-qss/equeue"
	"github.com/joeycumines/go-qss/model"
	"github.com/joeycumines/go-qss/sdtime"
)

// LIQSS is the linear-implicit QSS variant: for self-observer variables
// (those whose own derivative depends on their own value), it biases q0
// away from the raw continuous value to suppress the limit-cycle chatter
// plain QSS exhibits on stiff self-feedback loops.
type LIQSS struct {
	Base
}

func NewLIQSS(name string, order int, ref, derivRef model.Ref, hasDerivRef bool, tol Tolerances, params *Params, m model.Adapter) *LIQSS {
	v := &LIQSS{Base: newBase(name, order, ref, derivRef, hasDerivRef, tol, params, m)}
	v.SetSelf(v)
	return v
}

func (v *LIQSS) Init(t0 float64, eq *equeue.EventQueue) {
	v.tQ, v.tX = t0, t0
	v.x = [4]float64{}
	v.model.SetTime(t0)
	v.x[0] = v.model.GetReal1(v.xRef)
	v.runDerivativeStages()
	v.final()
	v.tEPhys = v.computeTE()
	v.handle = eq.Add(sdtime.Time{T: v.tEPhys, I: sdtime.Requantization}, v)
}

func (v *LIQSS) Requantize(eq *equeue.EventQueue) {
	v.advanceX0(v.tEPhys)
	v.runDerivativeStages()
	v.final()
	v.tEPhys = v.computeTE()
	eq.Shift(v.handle, sdtime.Time{T: v.tEPhys, I: sdtime.Requantization})
}

func (v *LIQSS) ObserverAdvance(t float64, eq *equeue.EventQueue) {
	v.advanceX0(t)
	v.runDerivativeStages()
	v.tEPhys = v.computeTE()
	eq.Shift(v.handle, sdtime.Time{T: v.tEPhys, I: sdtime.Requantization})
}

func (v *LIQSS) HandlerAdvance(t float64, eq *equeue.EventQueue) {
	v.tQ, v.tX = t, t
	v.model.SetTime(t)
	v.x[0] = v.model.GetReal1(v.xRef)
	v.runDerivativeStages()
	v.final()
	v.tEPhys = v.computeTE()
	eq.Shift(v.handle, sdtime.Time{T: v.tEPhys, I: sdtime.Requantization})
}

// final rebuilds q from x, biasing q0 for self-observer variables per the
// standard LIQSS1 rule: probe the derivative at qc+qTol and qc-qTol and
// move q0 to whichever bound keeps the derivative's sign consistent; when
// the signs disagree (a stable interior point), q0 is interpolated to where
// the probed derivative crosses zero.
func (v *LIQSS) final() {
	if !v.SelfObserver() || v.qTol == 0 {
		v.recomputeQFromX(v.qOrder(false))
		return
	}

	qc := v.x[0]
	tol := v.tol.QTol(qc)

	dPlus := v.sampleX1At(v.tX, qc+tol)
	dMinus := v.sampleX1At(v.tX, qc-tol)
	v.restoreX0()

	v.recomputeQFromX(v.qOrder(false))

	switch {
	case dPlus >= 0 && dMinus >= 0:
		v.q[0] = qc + tol
	case dPlus <= 0 && dMinus <= 0:
		v.q[0] = qc - tol
	default:
		// Opposite-signed probes bracket a stable interior point: interpolate
		// to where the probed derivative crosses zero instead of leaving q0
		// at the raw continuous value, then clip for float round-off safety.
		// The probed derivative, interpolated to q0, becomes q1 (the
		// next-higher coefficient) rather than whatever stage1 derived for x1.
		span := dPlus - dMinus
		q0 := qc
		if span != 0 {
			q0 = (qc - tol) - dMinus*(2*tol)/span
			if q0 < qc-tol {
				q0 = qc - tol
			} else if q0 > qc+tol {
				q0 = qc + tol
			}
		}
		v.q[0] = q0
		if v.order >= 1 && span != 0 {
			v.q[1] = dMinus + (q0-(qc-tol))*span/(2*tol)
		}
	}
	v.qTol = tol
}

// Stage0 advances x to the variable's own predicted event time; see
// QSS.Stage0.
func (v *LIQSS) Stage0() { v.advanceX0(v.tEPhys) }

// Finalize completes requantization once Stage 1 has already been filled in
// by a pooled batch query; see QSS.Finalize.
func (v *LIQSS) Finalize(eq *equeue.EventQueue) {
	v.stage2()
	v.stage3()
	v.final()
	v.tEPhys = v.computeTE()
	eq.Shift(v.handle, sdtime.Time{T: v.tEPhys, I: sdtime.Requantization})
}

var _ Variable = (*LIQSS)(nil)
