package model

import "errors"

// ErrDirectionalDerivativeUnsupported is returned by FuncModel's
// DirectionalDerivative: FuncModel only ever supplies first derivatives, so
// callers needing second (or higher) order information must fall back to
// the engine's own numerical differentiation, exercising that code path.
var ErrDirectionalDerivativeUnsupported = errors.New("model: directional derivative not supported by FuncModel")

// Getter reads the current value of a model variable, as most recently set
// via SetReal/SetReal1 (or, for derivative/event-indicator outputs, computed
// on demand from those inputs).
type Getter func(Ref) float64

// Func computes the value of a derived output (a derivative or an
// event-indicator function) at time t, given a Getter over the model's
// currently-set variable values.
type Func func(t float64, get Getter) float64

// FuncModel is a reference Adapter backed by plain Go closures: each
// "computed" ref (a derivative, or a zero-crossing indicator) is a Func over
// the model's current time and variable values. It is not an FMU loader —
// it exists so the solver, its tests, and cmd/qss-run have a concrete,
// dependency-free model to drive.
type FuncModel struct {
	t      float64
	values map[Ref]float64
	funcs  map[Ref]Func
	info   map[Ref]VariableInfo
}

// NewFuncModel returns an empty FuncModel.
func NewFuncModel() *FuncModel {
	return &FuncModel{
		values: make(map[Ref]float64),
		funcs:  make(map[Ref]Func),
		info:   make(map[Ref]VariableInfo),
	}
}

// Declare registers a variable's introspection record and, for Real
// variables, an initial value.
func (m *FuncModel) Declare(info VariableInfo) {
	m.info[info.Ref] = info
	if info.Kind == Real {
		m.values[info.Ref] = info.Start
	}
}

// Bind registers the closure used to compute ref's value on demand (a
// derivative output, or a zero-crossing event-indicator value).
func (m *FuncModel) Bind(ref Ref, fn Func) {
	m.funcs[ref] = fn
}

// get is the Getter passed to bound Funcs.
func (m *FuncModel) get(ref Ref) float64 {
	if fn, ok := m.funcs[ref]; ok {
		return fn(m.t, m.get)
	}
	return m.values[ref]
}

func (m *FuncModel) SetTime(t float64) { m.t = t }

func (m *FuncModel) SetReal(refs []Ref, values []float64) {
	for i, ref := range refs {
		m.values[ref] = values[i]
	}
}

func (m *FuncModel) SetReal1(ref Ref, value float64) {
	m.values[ref] = value
}

func (m *FuncModel) GetReal(refs []Ref, out []float64) {
	for i, ref := range refs {
		out[i] = m.get(ref)
	}
}

func (m *FuncModel) GetReal1(ref Ref) float64 {
	return m.get(ref)
}

func (m *FuncModel) GetBool1(ref Ref) bool {
	return m.values[ref] != 0
}

func (m *FuncModel) GetInt1(ref Ref) int64 {
	return int64(m.values[ref])
}

func (m *FuncModel) GetString1(Ref) string {
	return ""
}

func (m *FuncModel) GetEnum1(ref Ref) int64 {
	return int64(m.values[ref])
}

func (m *FuncModel) DirectionalDerivative([]Ref, []Ref, []float64, []float64) error {
	return ErrDirectionalDerivativeUnsupported
}

func (m *FuncModel) NewDiscreteStates(info *EventInfo) {
	*info = EventInfo{}
}

func (m *FuncModel) Describe(ref Ref) (VariableInfo, bool) {
	vi, ok := m.info[ref]
	return vi, ok
}

var _ Adapter = (*FuncModel)(nil)
