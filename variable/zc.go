package variable

import (
	"math"

	"github.com/joeycumines/go-qss/equeue"
	"github.com/joeycumines/go-qss/model"
	"github.com/joeycumines/go-qss/sdtime"
)

// CrossingKind classifies a sign transition of an event indicator between
// two samples, named by direction (Dn/Up) and the old/new sign pair
// (P positive, N negative, Z exactly zero).
type CrossingKind uint8

const (
	Flat CrossingKind = iota
	DnPN
	DnPZ
	DnZN
	UpZP
	UpNZ
	UpNP
)

func (k CrossingKind) String() string {
	switch k {
	case DnPN:
		return "DnPN"
	case DnPZ:
		return "DnPZ"
	case DnZN:
		return "DnZN"
	case UpZP:
		return "UpZP"
	case UpNZ:
		return "UpNZ"
	case UpNP:
		return "UpNP"
	default:
		return "Flat"
	}
}

// classifyCrossing names the transition between an old and new sampled
// sign (each in {-1, 0, +1}).
func classifyCrossing(oldSign, newSign float64) CrossingKind {
	switch {
	case oldSign > 0 && newSign < 0:
		return DnPN
	case oldSign > 0 && newSign == 0:
		return DnPZ
	case oldSign == 0 && newSign < 0:
		return DnZN
	case oldSign == 0 && newSign > 0:
		return UpZP
	case oldSign < 0 && newSign == 0:
		return UpNZ
	case oldSign < 0 && newSign > 0:
		return UpNP
	default:
		return Flat
	}
}

// ZC is a zero-crossing event indicator: it tracks a low-order polynomial
// approximation of the model's event-indicator function (reusing the
// Variable trajectory machinery, sampled via numerical differentiation
// exactly like a QSS variable's x), predicts the next root analytically,
// then optionally refines that prediction against the true model function
// via bounded Newton/Halley iteration.
type ZC struct {
	Base

	lastSign float64
	tZ       float64
	bumped   bool

	// relevant restricts which classifications ever schedule/dispatch a
	// crossing; nil means every non-Flat kind is relevant.
	relevant map[CrossingKind]bool
	// tZLast is the physical time of the last admitted crossing: any
	// candidate root at or before it is stale and discarded.
	tZLast float64

	// xMag tracks the peak |indicator| observed since the last admitted
	// crossing (including interior extrema implied by an x1 sign flip
	// between samples); root prediction is suppressed while it stays below
	// ZTol, the anti-chatter band.
	xMag   float64
	prevX1 float64
	haveX1 bool

	// truePass backs the When-clause "became true in the same pass"
	// rule: it is the queue pass number at which the indicator's sign
	// last transitioned to positive.
	truePass uint64

	conditional crossingHandler
	handle      *equeue.Handle
}

// crossingHandler is implemented by conditional.Conditional; kept as a
// narrow local interface so this package has no import-cycle dependency
// on conditional.
type crossingHandler interface {
	Fire(t float64, kind CrossingKind, eq *equeue.EventQueue)
}

func NewZC(name string, order int, ref, derivRef model.Ref, hasDerivRef bool, params *Params, m model.Adapter) *ZC {
	v := &ZC{Base: newBase(name, order, ref, derivRef, hasDerivRef, Tolerances{}, params, m)}
	v.SetSelf(v)
	return v
}

// BindHandler attaches the crossing callback invoked when a predicted
// (and, if enabled, refined) root is reached.
func (v *ZC) BindHandler(h crossingHandler) { v.conditional = h }

// SetRelevant restricts which crossing classifications ever fire the bound
// handler or count as a root for scheduling purposes; an unfiltered ZC (the
// default, before any call to SetRelevant) treats every non-Flat kind as
// relevant.
func (v *ZC) SetRelevant(kinds ...CrossingKind) {
	v.relevant = make(map[CrossingKind]bool, len(kinds))
	for _, k := range kinds {
		v.relevant[k] = true
	}
}

func (v *ZC) isRelevant(kind CrossingKind) bool {
	if kind == Flat {
		return false
	}
	if v.relevant == nil {
		return true
	}
	return v.relevant[kind]
}

// True reports whether the indicator's most recently classified sign is
// positive -- the "currently-true condition variable" predicate a When
// Conditional gates on.
func (v *ZC) True() bool { return v.lastSign > 0 }

// TruePass returns the event queue pass number at which the indicator last
// transitioned to a positive sign.
func (v *ZC) TruePass() uint64 { return v.truePass }

func (v *ZC) Init(t0 float64, eq *equeue.EventQueue) {
	v.tQ, v.tX = t0, t0
	v.x = [4]float64{}
	v.model.SetTime(t0)
	v.x[0] = v.model.GetReal1(v.xRef)
	v.runDerivativeStages()
	v.lastSign = sign(v.x[0])
	v.updateMag(v.x[0])
	v.tZ = v.predictRoot()
	v.tEPhys = v.tZ
	v.handle = eq.Add(sdtime.Time{T: v.tEPhys, I: sdtime.ZeroCrossing}, v)
}

// Refresh re-samples the indicator at t (an observer advance, typically),
// re-predicts the root, and reschedules.
func (v *ZC) Refresh(t float64, eq *equeue.EventQueue) {
	v.advanceX0(t)
	v.runDerivativeStages()
	v.updateMag(v.x[0])
	v.tZ = v.predictRoot()
	v.tEPhys = v.tZ
	eq.Shift(v.handle, sdtime.Time{T: v.tEPhys, I: sdtime.ZeroCrossing})
}

// updateMag folds sample z, and any interior extremum implied by an x1 sign
// flip since the previous call, into the running peak |z| used to gate
// anti-chatter suppression.
func (v *ZC) updateMag(z float64) {
	if m := abs(z); m > v.xMag {
		v.xMag = m
	}
	if v.haveX1 && sign(v.x[1]) != 0 && sign(v.prevX1) != 0 && sign(v.x[1]) != sign(v.prevX1) && v.order >= 2 && v.x[2] != 0 {
		dt := -v.x[1] / (2 * v.x[2])
		if peak := abs(v.predictX(dt, v.order)); peak > v.xMag {
			v.xMag = peak
		}
	}
	v.prevX1 = v.x[1]
	v.haveX1 = true
}

// predictRoot solves for the smallest positive dt (relative to tX) at
// which the polynomial approximation reaches zero, applying the DtZMax
// pull-back and falling back to +Inf (DtMax-clamped) absent any positive
// root, a stale root (at or before tZLast), or while the tracked peak
// magnitude stays inside the ZTol anti-chatter band.
func (v *ZC) predictRoot() float64 {
	suppressed := v.params.ZTol > 0 && v.xMag < v.params.ZTol

	var candidates []float64
	if !suppressed {
		switch v.order {
		case 1:
			if v.x[1] != 0 {
				candidates = append(candidates, -v.x[0]/v.x[1])
			}
		case 2:
			r1, r2, ok := quadraticRoots(v.x[2], v.x[1], v.x[0])
			if ok {
				candidates = append(candidates, r1, r2)
			}
		case 3:
			candidates = append(candidates, cubicRoots(v.x[3], v.x[2], v.x[1], v.x[0])...)
		}
	}

	dt := smallestPositiveRoot(candidates...)
	clamped, isInf := v.params.clampDt(dt, v.prevInf)
	v.prevInf = isInf
	tZ := v.tX + clamped

	if tZ <= v.tZLast {
		clamped, isInf = v.params.clampDt(math.Inf(1), v.prevInf)
		v.prevInf = isInf
		tZ = v.tX + clamped
	}

	if v.params.DtZMax > 0 && tZ-v.tX > v.params.DtZMax {
		tZ = v.tX + v.params.DtZMax
	}
	return tZ
}

// Arrive is called by the solver's event loop when this ZC's scheduled
// time is reached: it re-samples the true model indicator, applies
// anti-chatter and (optionally) bounded refinement, classifies the
// crossing, and -- if the result is both fresh (later than tZLast) and a
// relevant kind -- fires the bound handler.
func (v *ZC) Arrive(t float64, eq *equeue.EventQueue) {
	v.model.SetTime(t)
	z := v.model.GetReal1(v.xRef)
	newSign := sign(z)

	v.updateMag(z)
	if v.params.ZTol > 0 && v.xMag < v.params.ZTol {
		newSign = v.lastSign
	}

	tFire := t
	if v.params.RefineZC && v.order >= 2 {
		f := func(tt float64) float64 {
			v.model.SetTime(tt)
			return v.model.GetReal1(v.xRef)
		}
		h := v.params.DtND
		f1 := func(tt float64) float64 { return centeredFirstDerivative(f, tt, h) }
		f2 := func(tt float64) float64 { return centeredSecondDerivative(f, tt, h) }
		if refined, ok := halleyRefine(t, v.tX, 10, f, f1, f2); ok {
			tFire = refined
		}
	}

	kind := classifyCrossing(v.lastSign, newSign)
	admissible := kind != Flat && tFire > v.tZLast && v.isRelevant(kind)

	v.lastSign = newSign
	v.bumped = true

	if admissible {
		v.tZLast = tFire
		v.xMag = 0
		if newSign > 0 {
			v.truePass = eq.Pass()
		}
		if v.conditional != nil {
			v.conditional.Fire(tFire, kind, eq)
		}
	}

	bump := v.params.ZTol * v.params.ZMul
	if bump <= 0 {
		bump = 1e-9
	}
	v.Refresh(tFire+bump, eq)
}

var _ Variable = (*ZC)(nil)
