package variable

import (
	"github.com/joeycumines/go-qss/equeue"
	"github.com/joeycumines/go-qss/model"
)

// Variable is the capability set shared by every concrete trajectory,
// zero-crossing, and pass-through Variable: trajectory state, tolerance
// state, and the observer/observee dependency graph.
type Variable interface {
	equeue.Target

	// Order returns the polynomial order of this variable's trajectory
	// representation: 1, 2, or 3, or 0 for RealVar and DiscreteVar.
	Order() int

	TQ() float64
	TX() float64
	// TEPhys is the physical-time component of the variable's predicted
	// next event; always >= max(TQ(), TX()).
	TEPhys() float64

	// X evaluates the continuous trajectory at t (valid from TX()).
	X(t float64) float64
	X1(t float64) float64
	X2(t float64) float64
	X3(t float64) float64

	// Q evaluates the quantized trajectory at t (valid from TQ()).
	Q(t float64) float64
	Q1(t float64) float64
	Q2(t float64) float64
	Q3(t float64) float64

	QTol() float64

	// ValueRef is the model value reference this variable publishes its
	// own value under.
	ValueRef() model.Ref

	Observees() []Variable
	Observers() []Variable
	AddObserver(Variable)
	Passive() bool
	SetPassive(bool)
	SelfObserver() bool
}

// Base carries the state and math common to every concrete Variable:
// polynomial coefficients, tolerance state, the dependency graph, and the
// queue handle. It is embedded by QSS, LIQSS, RQSS, ZC, Input, Discrete, and
// Real.
type Base struct {
	name   string
	order  int
	params *Params
	tol    Tolerances

	model model.Adapter
	// xRef is the value reference this variable publishes as its own value
	// (observers read it here). derivRef is the ref the model exposes for
	// this variable's first derivative (dx/dt); it is unused by
	// non-trajectory variables. hasDerivRef is false when the model has no
	// explicit derivative channel, forcing the numerical-differentiation
	// fallback for stage1 too.
	xRef        model.Ref
	derivRef    model.Ref
	hasDerivRef bool

	tQ, tX float64
	x      [4]float64 // continuous coefficients, x[k] is the (t-tX)^k term
	q      [4]float64 // quantized coefficients, q[k] is the (t-tQ)^k term
	qTol   float64

	tEPhys  float64
	prevInf bool // whether the previous clampDt call produced an infinite dt

	observees []Variable
	observers []Variable
	passive   bool
	self      Variable // the outer concrete-type value embedding this Base
	qFullOrder bool    // true for RQSS: quantized rep broadcasts the full order

	handle *equeue.Handle
}

func newBase(name string, order int, ref model.Ref, derivRef model.Ref, hasDerivRef bool, tol Tolerances, params *Params, m model.Adapter) Base {
	return Base{
		name:        name,
		order:       order,
		params:      params,
		tol:         tol,
		model:       m,
		xRef:        ref,
		derivRef:    derivRef,
		hasDerivRef: hasDerivRef,
	}
}

func (b *Base) Name() string   { return b.name }
func (b *Base) Order() int     { return b.order }
func (b *Base) TQ() float64    { return b.tQ }
func (b *Base) TX() float64    { return b.tX }
func (b *Base) TEPhys() float64 { return b.tEPhys }
func (b *Base) QTol() float64  { return b.qTol }
func (b *Base) ValueRef() model.Ref { return b.xRef }

func (b *Base) Observees() []Variable { return b.observees }
func (b *Base) Observers() []Variable { return b.observers }

func (b *Base) AddObservee(v Variable) {
	b.observees = append(b.observees, v)
}

func (b *Base) AddObserver(v Variable) {
	b.observers = append(b.observers, v)
}

func (b *Base) Passive() bool      { return b.passive }
func (b *Base) SetPassive(p bool)  { b.passive = p }

// SelfObserver reports whether this variable appears among its own
// observees (self-feedback, requiring LIQSS treatment for stability).
func (b *Base) SelfObserver() bool {
	for _, o := range b.observees {
		if o == variableIdentity(b) {
			return true
		}
	}
	return false
}

// variableIdentity returns the outer Variable value stored in self, so
// SelfObserver can compare against it rather than the embedded Base
// pointer. Concrete types set self via SetSelf at construction.
func variableIdentity(b *Base) Variable { return b.self }

// self lets SelfObserver compare the Base's owning Variable (not the Base
// itself) against observee entries, since observees are stored as the outer
// concrete-type values.
func (b *Base) SetSelf(v Variable) { b.self = v }

func evalPoly(coeffs [4]float64, order int, dt float64) float64 {
	v := coeffs[order]
	for k := order - 1; k >= 0; k-- {
		v = v*dt + coeffs[k]
	}
	return v
}

func evalPolyDeriv(coeffs [4]float64, order int, dt float64) float64 {
	if order < 1 {
		return 0
	}
	// derivative coefficients: d/dt of sum c_k*dt^k is sum k*c_k*dt^(k-1)
	v := float64(order) * coeffs[order]
	for k := order - 1; k >= 1; k-- {
		v = v*dt + float64(k)*coeffs[k]
	}
	return v
}

func evalPoly2ndDeriv(coeffs [4]float64, order int, dt float64) float64 {
	if order < 2 {
		return 0
	}
	v := float64(order) * float64(order-1) * coeffs[order]
	for k := order - 1; k >= 2; k-- {
		v = v*dt + float64(k)*float64(k-1)*coeffs[k]
	}
	return v
}

func evalPoly3rdDeriv(coeffs [4]float64, order int, dt float64) float64 {
	if order < 3 {
		return 0
	}
	return 6 * coeffs[3]
}

// X evaluates the continuous polynomial at t.
func (b *Base) X(t float64) float64 { return evalPoly(b.x, b.order, t-b.tX) }
func (b *Base) X1(t float64) float64 { return evalPolyDeriv(b.x, b.order, t-b.tX) }
func (b *Base) X2(t float64) float64 { return evalPoly2ndDeriv(b.x, b.order, t-b.tX) }
func (b *Base) X3(t float64) float64 { return evalPoly3rdDeriv(b.x, b.order, t-b.tX) }

// qOrder is the polynomial order used for the *quantized* representation:
// one lower than the continuous order for standard QSS/LIQSS (q holds
// 0..n-1), or the full order for relaxation variants that broadcast it.
func (b *Base) qOrder(fullOrder bool) int {
	if fullOrder {
		return b.order
	}
	if b.order == 0 {
		return 0
	}
	return b.order - 1
}

func (b *Base) Q(t float64) float64  { return evalPoly(b.q, b.qOrderDefault(), t-b.tQ) }
func (b *Base) Q1(t float64) float64 { return evalPolyDeriv(b.q, b.qOrderDefault(), t-b.tQ) }
func (b *Base) Q2(t float64) float64 { return evalPoly2ndDeriv(b.q, b.qOrderDefault(), t-b.tQ) }
func (b *Base) Q3(t float64) float64 { return evalPoly3rdDeriv(b.q, b.qOrderDefault(), t-b.tQ) }

// qOrderDefault returns the standard (non-relaxation) quantized order. RQSS
// overrides this via qFullOrder on its embedding type (see rqss.go).
func (b *Base) qOrderDefault() int {
	if b.qFullOrder {
		return b.order
	}
	return b.qOrder(false)
}
