package variable

import "github.com/joeycumines/go-qss/model"

// DerivativeRef returns the model reference this variable's first-derivative
// stage queries: its own derivative channel when the model exposes one,
// otherwise its own value ref (the numerical-differentiation fallback).
// Exported for trigger.PooledStage1, which needs it to decide how to batch
// Stage 1 across a simultaneous-event group without reaching into Base's
// unexported fields.
func (b *Base) DerivativeRef() (ref model.Ref, direct bool) {
	if b.hasDerivRef {
		return b.derivRef, true
	}
	return b.xRef, false
}

// SetX1 stores a pooled Stage 1 result directly into the trajectory's
// first-order coefficient.
func (b *Base) SetX1(x1 float64) { b.x[1] = x1 }

// NDParams returns the numerical-differentiation offset and model start
// time, both shared across every Variable constructed with the same
// *Params, so a pooled batch can treat them as uniform for the whole group.
func (b *Base) NDParams() (dtND, modelStartTime float64) {
	return b.params.DtND, b.params.ModelStartTime
}

// Stage1 runs this variable's own (unpooled) Stage 1 model query. Nothing
// in this module calls it: the solver pools Stage 1 via
// trigger.PooledStage1, and InputVar derives its coefficients from its
// closed-form function instead.
func (b *Base) Stage1() { b.stage1() }

// predictX extrapolates the continuous trajectory to dt (relative to tX)
// using only the coefficients known so far (throughOrder), the
// "bootstrapping" prediction each derivative stage feeds into the model
// before sampling the next one -- for an autonomous system the model's
// derivative output depends on the variable's own value, not directly on
// time, so a numerical-differentiation probe must push a predicted value
// into the model alongside the perturbed time.
func (b *Base) predictX(dt float64, throughOrder int) float64 {
	return evalPoly(b.x, throughOrder, dt)
}

// sampleX1At sets the model's time to t and this variable's own value to
// predictedX, then reads the first derivative: the model-supplied channel
// when available, or a centered difference of the value itself one level
// down.
func (b *Base) sampleX1At(t, predictedX float64) float64 {
	b.model.SetTime(t)
	b.model.SetReal1(b.xRef, predictedX)
	if b.hasDerivRef {
		return b.model.GetReal1(b.derivRef)
	}
	h := b.params.DtND
	lo := t - h
	if lo < b.params.ModelStartTime {
		lo = t
	}
	b.model.SetTime(lo)
	vLo := b.model.GetReal1(b.xRef)
	b.model.SetTime(t + h)
	vHi := b.model.GetReal1(b.xRef)
	b.model.SetTime(t)
	return (vHi - vLo) / (t + h - lo)
}

// ndStep picks the numerical-differentiation offset: centered when the
// model's start time is more than dtND before t, forward-only otherwise
// (so the three-point stencil never samples before the model's validity
// horizon).
func (b *Base) ndStep(t float64) (h float64, forward bool) {
	h = b.params.DtND
	forward = t-h < b.params.ModelStartTime
	return h, forward
}

// stage1 computes x1 at tX via the model's derivative channel (or ND
// fallback), using the already-published x0 as the predicted value (no
// extrapolation needed at dt=0).
func (b *Base) stage1() {
	if b.order < 1 {
		return
	}
	b.x[1] = b.sampleX1At(b.tX, b.x[0])
}

// stage2 computes the second-order Taylor coefficient x2 from three
// samples of the first derivative around tX, each fed a linearly
// extrapolated predicted value (the highest order known after stage1),
// falling back to a one-sided (forward) three-point stencil near the
// model's start time.
func (b *Base) stage2() {
	if b.order < 2 {
		return
	}
	h, forward := b.ndStep(b.tX)
	if forward {
		x1At := b.x[1]
		x1Hi := b.sampleX1At(b.tX+h, b.predictX(h, 1))
		x1Hi2 := b.sampleX1At(b.tX+2*h, b.predictX(2*h, 1))
		b.x[2] = (-3*x1At + 4*x1Hi - x1Hi2) / (4 * h)
	} else {
		x1Lo := b.sampleX1At(b.tX-h, b.predictX(-h, 1))
		x1Hi := b.sampleX1At(b.tX+h, b.predictX(h, 1))
		b.x[2] = (x1Hi - x1Lo) / (4 * h)
	}
	b.restoreX0()
}

// stage3 computes the third-order Taylor coefficient x3 from the same
// style of first-derivative samples used by stage2, now predicted through
// the quadratic term, reusing the centered
// third-derivative-from-first-derivative-samples formula.
func (b *Base) stage3() {
	if b.order < 3 {
		return
	}
	h, forward := b.ndStep(b.tX)
	x1At := b.x[1]
	if forward {
		x1Hi := b.sampleX1At(b.tX+h, b.predictX(h, 2))
		x1Hi2 := b.sampleX1At(b.tX+2*h, b.predictX(2*h, 2))
		x1Hi3 := b.sampleX1At(b.tX+3*h, b.predictX(3*h, 2))
		b.x[3] = (2*(x1Hi2-2*x1Hi+x1At) - (x1Hi3 - 2*x1Hi2 + x1Hi)) / (6 * h * h)
	} else {
		x1Lo := b.sampleX1At(b.tX-h, b.predictX(-h, 2))
		x1Hi := b.sampleX1At(b.tX+h, b.predictX(h, 2))
		b.x[3] = centeredThirdDerivativeFromFirst(x1Lo, x1At, x1Hi, h)
	}
	b.restoreX0()
}

// restoreX0 re-publishes the variable's own official value (and its own
// model time) after a derivative stage has perturbed both to sample
// nearby points.
func (b *Base) restoreX0() {
	b.model.SetTime(b.tX)
	b.model.SetReal1(b.xRef, b.x[0])
}

// advanceX0 evaluates the continuous trajectory at t, publishes the result
// to the model under this variable's own value ref (so observers querying
// the model see the advanced value), and moves tX forward to t. This is
// "stage 0": advance x to the new time before re-deriving derivatives
// there.
func (b *Base) advanceX0(t float64) {
	x0 := evalPoly(b.x, b.order, t-b.tX)
	b.tX = t
	b.x[0] = x0
	for k := 1; k <= b.order; k++ {
		// the remaining coefficients are recomputed fresh by the
		// derivative stages below; zero them so a stale higher-order term
		// never leaks into a partially-updated evaluation.
		b.x[k] = 0
	}
	b.model.SetTime(t)
	b.model.SetReal1(b.xRef, x0)
}

// runDerivativeStages re-derives x1..x(order) at the current tX, in stage
// order (1 before 2 before 3, matching the pipeline's global ordering
// requirement).
func (b *Base) runDerivativeStages() {
	b.stage1()
	b.stage2()
	b.stage3()
}

// recomputeQFromX rebuilds the quantized polynomial from the just-updated
// continuous one at tQ = tX, truncating to maxOrder terms (order-1 for
// standard QSS/LIQSS, the full order for relaxation variants).
func (b *Base) recomputeQFromX(maxOrder int) {
	b.tQ = b.tX
	var q [4]float64
	for k := 0; k <= maxOrder; k++ {
		q[k] = b.x[k]
	}
	b.q = q
	b.qTol = b.tol.QTol(b.q[0])
}
