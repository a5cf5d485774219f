package model

// Ref identifies a model variable: the "value reference" of the Model
// Exchange interface.
type Ref uint32

// Kind is the declared type of a model variable.
type Kind uint8

const (
	Real Kind = iota
	Integer
	Boolean
	String
	Enum
)

// Variability classifies how/when a variable's value may change.
type Variability uint8

const (
	Constant Variability = iota
	Fixed
	Tunable
	Discrete
	Continuous
)

// Causality classifies a variable's role in the model's public interface.
type Causality uint8

const (
	Input Causality = iota
	Output
	Parameter
	Local
	Independent
)

// VariableInfo is the introspection record the core reads once at setup to
// build the dependency graph and Variable set: name, value reference, type,
// variability, causality, start value, any paired derivative reference, and
// whether the variable is an event indicator (zero-crossing function).
type VariableInfo struct {
	Name            string
	Ref             Ref
	Kind            Kind
	Variability     Variability
	Causality       Causality
	Start           float64
	DerivativeOf    Ref  // for a derivative variable, the state Ref it differentiates
	HasDerivativeOf bool // true iff DerivativeOf is meaningful
	EventIndicator  bool
}

// EventInfo models the result of the model's own internal event iteration,
// run via NewDiscreteStates after a handler applies a discontinuity.
type EventInfo struct {
	NewDiscreteStatesNeeded bool
	TerminateSimulation     bool
	NominalsOfContinuousStatesChanged bool
	ValuesOfContinuousStatesChanged   bool
	NextEventTime                     float64
	NextEventTimeDefined               bool
}

// Adapter is the collaborator interface the QSS core consumes to query an
// opaque real-valued model. The model's "current time" and input-variable
// values are shared mutable state: every stage must re-set them before
// issuing a query (see the Concurrency & Resource Model notes — the
// adapter itself is never touched from a parallel worker).
type Adapter interface {
	// SetTime sets the model's current independent-variable (time) value.
	SetTime(t float64)

	// SetReal assigns values to refs, a parallel pair of equal-length slices.
	SetReal(refs []Ref, values []float64)

	// SetReal1 is the single-value convenience form of SetReal.
	SetReal1(ref Ref, value float64)

	// GetReal populates out with the current values of refs, a pooled query
	// used by Triggers/Observers/Handlers to avoid one round trip per
	// variable.
	GetReal(refs []Ref, out []float64)

	// GetReal1 is the single-value convenience form of GetReal.
	GetReal1(ref Ref) float64

	GetBool1(ref Ref) bool
	GetInt1(ref Ref) int64
	GetString1(ref Ref) string
	GetEnum1(ref Ref) int64

	// DirectionalDerivative computes the directional derivative of the
	// outputs named by derivRefs with respect to the inputs named by
	// valueRefs, along seed (one entry per valueRefs), writing len(derivRefs)
	// results into out. Used for second-derivative queries by the d2d
	// numerical-differentiation variant.
	DirectionalDerivative(valueRefs []Ref, derivRefs []Ref, seed []float64, out []float64) error

	// NewDiscreteStates runs the model's own event iteration in place,
	// called by the core immediately after a handler applies a
	// discontinuity.
	NewDiscreteStates(info *EventInfo)

	// Describe returns the introspection record for ref, and false if ref is
	// unknown to the model.
	Describe(ref Ref) (VariableInfo, bool)
}
