package conditional

import (
	"github.com/joeycumines/go-qss/equeue"
	"github.com/joeycumines/go-qss/sdtime"
	"github.com/joeycumines/go-qss/variable"
)

// HandlerFunc applies the discontinuity associated with a crossing: it
// runs after the zero-crossing variable reports a non-Flat transition, and
// is expected to write new discrete/real values into the model before the
// caller re-derives the affected variables.
type HandlerFunc func(t float64, kind variable.CrossingKind)

// Conditional links one zero-crossing variable to the ordered set of
// observer variables its handler's side effects reach, and to the handler
// itself. It implements the narrow crossingHandler interface variable.ZC
// calls into, keeping the variable package free of a dependency on this
// one, and it implements equeue.Target so the crossing->handler pipeline
// is itself a queued two-phase event rather than a synchronous call: ZC
// crossing schedules this Conditional at the Conditional kind, the
// solver's Conditional-kind dispatch runs the handler and re-shifts this
// Conditional to the Handler kind (same physical time, next dispatch
// pass), and the solver's Handler-kind dispatch re-derives every affected
// variable and parks this Conditional back at +Inf.
type Conditional struct {
	name      string
	zc        *variable.ZC
	when      []*variable.ZC
	observers []variable.Variable
	handler   HandlerFunc
	passive   bool

	handle     *equeue.Handle
	pendingT   float64
	pendingKnd variable.CrossingKind
}

// New wires a Conditional to zc (binding this Conditional as zc's crossing
// callback) and returns it for observer registration. This is the If-clause
// form: the handler fires on any relevant crossing of zc alone.
func New(name string, zc *variable.ZC, handler HandlerFunc) *Conditional {
	c := &Conditional{name: name, zc: zc, handler: handler}
	zc.BindHandler(c)
	return c
}

// NewWhen wires a Conditional to every zero-crossing variable in conditions,
// binding this Conditional as each one's crossing callback. The handler
// only fires when every condition is currently true (its indicator sign is
// positive) and became true in the very pass the triggering crossing was
// classified in -- the "all currently-true condition variables ... became
// true in the same pass" rule, using the event queue's pass counter.
func NewWhen(name string, conditions []*variable.ZC, handler HandlerFunc) *Conditional {
	c := &Conditional{name: name, when: conditions, handler: handler}
	for _, zc := range conditions {
		zc.BindHandler(c)
	}
	return c
}

func (c *Conditional) Name() string { return c.name }

// AddObserver registers a variable whose value the handler's side effects
// may change (directly or transitively), used by the passivity pass to
// decide whether this Conditional's handler can ever matter.
func (c *Conditional) AddObserver(v variable.Variable) {
	c.observers = append(c.observers, v)
}

func (c *Conditional) Observers() []variable.Variable { return c.observers }

func (c *Conditional) Passive() bool     { return c.passive }
func (c *Conditional) SetPassive(p bool) { c.passive = p }

// Fire is called by a bound variable.ZC when a non-Flat crossing is
// detected (after anti-chatter, root-admissibility, and optional
// refinement). A passive Conditional's handler never runs: its side
// effects cannot reach any live output. A When-clause Conditional only
// schedules once every one of its conditions is currently true and became
// true in eq's current pass; otherwise the crossing is not (yet) a
// same-pass conjunction and is ignored.
func (c *Conditional) Fire(t float64, kind variable.CrossingKind, eq *equeue.EventQueue) {
	if c.passive || c.handler == nil {
		return
	}
	if len(c.when) > 0 {
		pass := eq.Pass()
		for _, zc := range c.when {
			if !zc.True() || zc.TruePass() != pass {
				return
			}
		}
	}

	c.pendingT, c.pendingKnd = t, kind
	st := sdtime.Time{T: t, I: sdtime.Conditional}
	if c.handle == nil {
		c.handle = eq.Add(st, c)
	} else {
		eq.Shift(c.handle, st)
	}
}

// PrepHandlers is invoked by the solver's Conditional-kind dispatch: it
// runs the bound handler (writing the discontinuity into the model) and
// re-shifts this Conditional's own handle to the Handler kind at the same
// instant, so the next dispatch pass can HandlerAdvance the affected
// variables.
func (c *Conditional) PrepHandlers(eq *equeue.EventQueue) {
	if c.handler != nil {
		c.handler(c.pendingT, c.pendingKnd)
	}
	eq.Shift(c.handle, sdtime.Time{T: c.pendingT, I: sdtime.Handler})
}

// ApplyHandlers is invoked by the solver's Handler-kind dispatch: it parks
// this Conditional at +Inf until its next crossing and returns the
// (already passivity-short-circuited) observer set the solver should
// HandlerAdvance / ApplyHandler.
func (c *Conditional) ApplyHandlers(eq *equeue.EventQueue) []variable.Variable {
	eq.Shift(c.handle, sdtime.Infinite)
	active := make([]variable.Variable, 0, len(c.observers))
	for _, v := range c.observers {
		if !v.Passive() {
			active = append(active, v)
		}
	}
	return active
}

// computeActive propagates "reaches a live output" backward through the
// observer graph: a variable is active if it is flagged always-active (a
// model output, or otherwise externally pinned live) or any variable that
// observes it is active. Iterating len(vars) times is sufficient for a
// graph with at most len(vars) distinct nodes in any activity-propagating
// chain, cycles included (a cycle only ever keeps propagating the same
// bit, never extends the chain length required to converge).
func computeActive(vars []variable.Variable, alwaysActive map[variable.Variable]bool) map[variable.Variable]bool {
	active := make(map[variable.Variable]bool, len(vars))
	for _, v := range vars {
		active[v] = alwaysActive[v]
	}
	for pass := 0; pass < len(vars)+1; pass++ {
		changed := false
		for _, v := range vars {
			if active[v] {
				continue
			}
			for _, o := range v.Observers() {
				if active[o] {
					active[v] = true
					changed = true
					break
				}
			}
		}
		if !changed {
			break
		}
	}
	return active
}

// ApplyPassivity runs the passive-observer short-circuit pass over vars
// and conds: it marks every Variable's Passive flag from the observer
// graph, then marks each Conditional passive when every one of its
// observers ended up passive, unless ei keeps it live as its own
// self-handler when that observer set is empty.
func ApplyPassivity(vars []variable.Variable, conds []*Conditional, alwaysActive map[variable.Variable]bool, ei bool) {
	active := computeActive(vars, alwaysActive)
	for _, v := range vars {
		v.SetPassive(!active[v])
	}

	for _, c := range conds {
		if len(c.observers) == 0 {
			c.SetPassive(!ei)
			continue
		}
		allPassive := true
		for _, o := range c.observers {
			if active[o] {
				allPassive = false
				break
			}
		}
		c.SetPassive(allPassive)
	}
}
