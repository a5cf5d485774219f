// Package solver implements the engine's main event loop: it owns the
// Variable set, the dependency graph, the event queue, and dispatches each
// superdense-time event group to the right stage (requantization, observer
// advance, zero-crossing arrival, conditional firing, discrete handler
// application), in the kind order sdtime.Kind defines.
package solver

import (
	"github.com/joeycumines/go-catrate"

	"github.com/joeycumines/go-qss/conditional"
	"github.com/joeycumines/go-qss/equeue"
	"github.com/joeycumines/go-qss/model"
	"github.com/joeycumines/go-qss/qsslog"
	"github.com/joeycumines/go-qss/sdtime"
	"github.com/joeycumines/go-qss/trigger"
	"github.com/joeycumines/go-qss/variable"
)

// requantizer is implemented by every trajectory Variable kind (QSS,
// LIQSS, RQSS, InputVar); kept narrow and local so this package doesn't
// need a type switch enumerating every concrete type in variable.
type requantizer interface {
	Requantize(*equeue.EventQueue)
}

// observerAdvancer is implemented by QSS/LIQSS/RQSS; invoked on a variable
// when one of its observees changes.
type observerAdvancer interface {
	ObserverAdvance(t float64, eq *equeue.EventQueue)
}

// handlerAdvancer is implemented by QSS/LIQSS/RQSS: re-initializes the
// trajectory at t after a discrete-event-applied discontinuity.
type handlerAdvancer interface {
	HandlerAdvance(t float64, eq *equeue.EventQueue)
}

// zcArriver is implemented by variable.ZC.
type zcArriver interface {
	Arrive(t float64, eq *equeue.EventQueue)
}

// discreteApplier is implemented by variable.DiscreteVar.
type discreteApplier interface {
	ApplyHandler(t float64, eq *equeue.EventQueue)
}

// refresher is implemented by variable.RealVar and variable.ZC.
type refresher interface {
	Refresh(t float64, eq *equeue.EventQueue)
}

// stage0er and finalizer are implemented by QSS/LIQSS/RQSS: together they
// split Requantize into the phases dispatchRequantization pools Stage 1
// across (Stage0, then one pooled trigger.PooledStage1 call, then
// Finalize's Stage 2/Stage 3/Stage Final/reschedule).
type stage0er interface {
	Stage0()
}

type finalizer interface {
	Finalize(*equeue.EventQueue)
}

// conditionalPrepper is implemented by conditional.Conditional: the
// Conditional-kind dispatch phase of the crossing->handler pipeline.
type conditionalPrepper interface {
	PrepHandlers(eq *equeue.EventQueue)
}

// conditionalApplier is implemented by conditional.Conditional: the
// Handler-kind dispatch phase, returning the observer variables to
// HandlerAdvance/ApplyHandler.
type conditionalApplier interface {
	ApplyHandlers(eq *equeue.EventQueue) []variable.Variable
}

// Solver drives a single model instance's QSS integration from t0 to a
// stop time, dispatching queued events by kind and propagating value
// changes through the observer graph.
type Solver struct {
	model model.Adapter
	eq    *equeue.EventQueue
	vars  []variable.Variable
	conds []*conditional.Conditional

	opts options

	progress *catrate.Limiter

	t float64
}

// New constructs a Solver over an already-populated model, Variable set,
// and Conditional set. Init must be called before Run.
func New(m model.Adapter, vars []variable.Variable, conds []*conditional.Conditional, opts ...Option) *Solver {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}

	var limiter *catrate.Limiter
	if len(o.progressRate) > 0 {
		limiter = catrate.NewLimiter(o.progressRate)
	}

	return &Solver{
		model:    m,
		eq:       equeue.New(),
		vars:     vars,
		conds:    conds,
		opts:     o,
		progress: limiter,
	}
}

// Init seeds every Variable's trajectory at t0 and queues its first event.
func (s *Solver) Init(t0 float64) error {
	s.t = t0
	for _, v := range s.vars {
		initer, ok := v.(interface {
			Init(float64, *equeue.EventQueue)
		})
		if !ok {
			return &SetupError{Component: v.Name(), Reason: "variable does not implement Init(t0, *equeue.EventQueue)"}
		}
		initer.Init(t0, s.eq)
	}

	alwaysActive := make(map[variable.Variable]bool, len(s.vars))
	for _, v := range s.vars {
		if len(v.Observers()) == 0 {
			// no declared observer: treat as a live output by default so
			// passivity never silently drops a leaf the caller cares about.
			alwaysActive[v] = true
		}
	}
	ei := s.opts.ei || (s.opts.params != nil && s.opts.params.EI)
	conditional.ApplyPassivity(s.vars, s.conds, alwaysActive, ei)

	s.opts.logger.Info().Int64("variables", int64(len(s.vars))).Float64("t0", t0).Log("solver initialized")
	return nil
}

// Run advances the simulation until the event queue is empty or the next
// event's time exceeds tStop, whichever comes first.
func (s *Solver) Run(tStop float64) error {
	for {
		peek, ok := s.eq.PeekMinTime()
		if !ok {
			return nil
		}
		if sdtime.IsInfinite(peek) || peek.T > tStop {
			return nil
		}

		s.t = peek.T
		group := s.eq.ExtractMinGroup()
		// Stamp everything (re)scheduled while handling this group with a
		// fresh pass number, so Conditional When-clauses can tell "became
		// true processing this group" apart from "was already true".
		s.eq.AdvancePass()
		if err := s.dispatch(peek, group); err != nil {
			return err
		}
		s.logProgress()
	}
}

func (s *Solver) logProgress() {
	if s.progress == nil {
		return
	}
	if _, ok := s.progress.Allow("progress"); ok {
		s.opts.logger.Debug().Float64("t", s.t).Log("progress")
	}
}

func (s *Solver) dispatch(st sdtime.Time, group []equeue.Target) error {
	switch st.I {
	case sdtime.Requantization, sdtime.Input:
		return s.dispatchRequantization(group)
	case sdtime.ZeroCrossing:
		return s.dispatchZeroCrossing(group)
	case sdtime.Conditional:
		return s.dispatchConditional(group)
	case sdtime.Handler:
		return s.dispatchHandler(group)
	case sdtime.Discrete:
		return s.dispatchDiscrete(group)
	default:
		return &AssertionError{Invariant: "event group has no dispatch case for kind " + st.I.String()}
	}
}

// dispatchRequantization runs every trigger in group through the staged
// pipeline, pooling Stage 1's model query across the whole group via
// trigger.PooledStage1 (set every observee value, issue one pooled
// getReals, distribute results back) instead of one round trip per
// variable. Variables outside the QSS/LIQSS/RQSS family (InputVar, which
// differentiates its own closed-form function rather than querying the
// model) fall back to their own self-contained Requantize.
func (s *Solver) dispatchRequantization(group []equeue.Target) error {
	var pooled []variable.Variable
	var unpooled []variable.Variable
	for _, tgt := range group {
		v, ok := tgt.(variable.Variable)
		if !ok {
			return &AssertionError{Invariant: "requantization event target is not a Variable: " + tgt.Name()}
		}
		if _, ok := v.(stage0er); ok {
			if _, ok := v.(finalizer); ok {
				pooled = append(pooled, v)
				continue
			}
		}
		unpooled = append(unpooled, v)
	}

	for _, v := range pooled {
		v.(stage0er).Stage0()
	}
	trigger.PooledStage1(s.model, s.t, pooled)
	for _, v := range pooled {
		v.(finalizer).Finalize(s.eq)
	}

	for _, v := range unpooled {
		r, ok := v.(requantizer)
		if !ok {
			continue
		}
		r.Requantize(s.eq)
	}

	touched := make([]variable.Variable, 0, len(pooled)+len(unpooled))
	touched = append(touched, pooled...)
	touched = append(touched, unpooled...)
	s.propagate(touched)
	return nil
}

func (s *Solver) dispatchZeroCrossing(group []equeue.Target) error {
	for _, tgt := range group {
		zc, ok := tgt.(zcArriver)
		if !ok {
			return &AssertionError{Invariant: "zero-crossing event target does not implement Arrive: " + tgt.Name()}
		}
		zc.Arrive(s.t, s.eq)
	}
	return nil
}

func (s *Solver) dispatchDiscrete(group []equeue.Target) error {
	var touched []variable.Variable
	for _, tgt := range group {
		d, ok := tgt.(discreteApplier)
		if !ok {
			return &AssertionError{Invariant: "discrete event target does not implement ApplyHandler: " + tgt.Name()}
		}
		d.ApplyHandler(s.t, s.eq)
		if v, ok := tgt.(variable.Variable); ok {
			touched = append(touched, v)
		}
	}

	var info model.EventInfo
	s.model.NewDiscreteStates(&info)
	s.propagate(touched)
	return nil
}

// dispatchConditional runs the Conditional-kind dispatch phase of the
// crossing->handler pipeline: for every Conditional in the group,
// it runs the bound handler and lets the Conditional re-shift its own
// handle to the Handler kind for the next dispatch pass at the same
// physical time.
func (s *Solver) dispatchConditional(group []equeue.Target) error {
	for _, tgt := range group {
		c, ok := tgt.(conditionalPrepper)
		if !ok {
			return &AssertionError{Invariant: "conditional event target does not implement PrepHandlers: " + tgt.Name()}
		}
		c.PrepHandlers(s.eq)
	}
	return nil
}

// dispatchHandler runs the Handler-kind dispatch phase: each Conditional
// hands back the (passivity-short-circuited) observer set its just-applied
// discontinuity may have changed, which ApplyDiscontinuity then re-derives
// via HandlerAdvance/ApplyHandler before the model's own event iteration
// runs and the change propagates outward.
func (s *Solver) dispatchHandler(group []equeue.Target) error {
	var touched []variable.Variable
	for _, tgt := range group {
		c, ok := tgt.(conditionalApplier)
		if !ok {
			return &AssertionError{Invariant: "handler event target does not implement ApplyHandlers: " + tgt.Name()}
		}
		touched = append(touched, c.ApplyHandlers(s.eq)...)
	}
	s.ApplyDiscontinuity(touched)
	return nil
}

// ApplyDiscontinuity reinitializes every trajectory or discrete variable in
// vars at the solver's current time, then propagates the change to their
// observers. The Handler-kind dispatch phase calls this after a
// Conditional's handler has written a discrete discontinuity into the
// model, so the affected continuous states re-derive their polynomials
// from the model's new values (and discrete states pick up the handler's
// new value) rather than extrapolating through the jump.
func (s *Solver) ApplyDiscontinuity(vars []variable.Variable) {
	for _, v := range vars {
		switch h := v.(type) {
		case handlerAdvancer:
			h.HandlerAdvance(s.t, s.eq)
		case discreteApplier:
			h.ApplyHandler(s.t, s.eq)
		}
	}

	var info model.EventInfo
	s.model.NewDiscreteStates(&info)
	s.propagate(vars)
}

// propagate pushes an ObserverAdvance to every observer of every variable
// in touched, breadth-first, so a chain of observers re-derives in
// dependency order without revisiting a variable twice in the same pass.
func (s *Solver) propagate(touched []variable.Variable) {
	visited := make(map[variable.Variable]bool, len(touched))
	queue := append([]variable.Variable(nil), touched...)
	for _, v := range touched {
		visited[v] = true
	}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		for _, obs := range v.Observers() {
			if obs.Passive() {
				continue
			}
			// a ZC observer (like RealVar) has no ObserverAdvance; it is
			// pushed eagerly through Refresh, re-predicting its root.
			if oa, ok := obs.(observerAdvancer); ok {
				oa.ObserverAdvance(s.t, s.eq)
			} else if rf, ok := obs.(refresher); ok {
				rf.Refresh(s.t, s.eq)
			}
			if !visited[obs] {
				visited[obs] = true
				queue = append(queue, obs)
			}
		}
	}
}
