package variable

// Tolerances holds the per-variable relative/absolute tolerance pair used to
// compute qTol = max(rTol*|q0|, aTol).
type Tolerances struct {
	RTol float64
	ATol float64
}

// QTol returns max(rTol*|q0|, aTol), which is > 0 whenever aTol > 0.
// Nothing in this module checks that aTol > 0.
func (t Tolerances) QTol(q0 float64) float64 {
	m := t.RTol * abs(q0)
	if t.ATol > m {
		return t.ATol
	}
	return m
}

// Params holds the engine-wide tuning knobs shared by every Variable
// instance: time-step bounds, numerical-differentiation offset, and
// zero-crossing options. Callers construct every Variable with a pointer to
// one shared Params, matching the "current time is global state" note in
// the design: these are configuration, not per-instance state.
type Params struct {
	// DtMin/DtMax clamp every computed tE - t.
	DtMin float64
	DtMax float64

	// DtInf is substituted for an infinite dt only when the previous
	// requantization's dt was also infinite (the "dtInf guard").
	DtInf float64

	// DtND is the offset used for numerical differentiation when the model
	// doesn't supply a given derivative order directly.
	DtND float64

	// AdaptiveND is off by default. No derivative stage reads it: DtND is
	// never shrunk, whatever its value.
	AdaptiveND bool

	// ModelStartTime is compared against tE-DtND to choose forward-only vs
	// centered numerical differentiation ("model start time within dtND").
	ModelStartTime float64

	// Inflection, when true, additionally clips tE to the inflection time
	// when the leading non-zero coefficient and the previous one disagree in
	// sign.
	Inflection bool

	// ZTol is the zero-crossing anti-chatter band. Zero disables
	// anti-chatter.
	ZTol float64

	// ZMul scales ZTol for the "bump" offset applied after a crossing fires,
	// so the model's own indicator doesn't immediately re-trigger.
	ZMul float64

	// DtZMax, if > 0, caps a ZC variable's next scheduled event at
	// tX+DtZMax when its predicted root lies further ahead. The tE of other
	// variables is not changed.
	DtZMax float64

	// EI ("empty if"), when true, keeps a ZC variable as its own
	// self-handler if passive-observer short-circuiting empties its
	// Conditional's observer set.
	EI bool

	// RefineZC enables bounded Newton refinement of the predicted
	// zero-crossing time against the model's true event-indicator value.
	RefineZC bool
}

const ndShrinkFactor = 8
const ndShrinkFloor = 1e-6

// DefaultParams returns reasonable defaults, matching typical QSS CLI
// defaults: no time-step clamps beyond sane bounds, no inflection handling,
// anti-chatter enabled with a small band.
func DefaultParams() *Params {
	return &Params{
		DtMin:      0,
		DtMax:      1e10,
		DtInf:      1e10,
		DtND:       1e-6,
		Inflection: false,
		ZTol:       1e-6,
		ZMul:       100,
		RefineZC:   true,
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// clampDt clamps dt into [p.DtMin, p.DtMax], applying the dtInf guard: an
// infinite dt is replaced with DtInf only when prevInf (the predecessor's dt
// was also infinite); otherwise an infinite dt is clipped to DtMax.
func (p *Params) clampDt(dt float64, prevInf bool) (clamped float64, isInf bool) {
	if isInfFloat(dt) {
		if prevInf {
			dt = p.DtInf
		} else {
			dt = p.DtMax
		}
		return clampRange(dt, p.DtMin, p.DtMax), true
	}
	return clampRange(dt, p.DtMin, p.DtMax), false
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
