package solver_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-qss/conditional"
	"github.com/joeycumines/go-qss/model"
	"github.com/joeycumines/go-qss/solver"
	"github.com/joeycumines/go-qss/variable"
)

const (
	xRef     model.Ref = 1
	derivRef model.Ref = 2
)

func newLinearDecayModel() *model.FuncModel {
	m := model.NewFuncModel()
	m.Declare(model.VariableInfo{Name: "x", Ref: xRef, Kind: model.Real, Variability: model.Continuous, Causality: model.Output, Start: 1})
	m.Declare(model.VariableInfo{Name: "der(x)", Ref: derivRef, Kind: model.Real, Variability: model.Continuous, DerivativeOf: xRef, HasDerivativeOf: true})
	m.Bind(derivRef, func(t float64, get model.Getter) float64 { return -get(xRef) })
	return m
}

func TestSolver_LinearDecayConvergesToAnalyticSolution(t *testing.T) {
	m := newLinearDecayModel()

	tol := variable.Tolerances{RTol: 1e-4, ATol: 1e-6}
	x := variable.NewQSS("x", 2, xRef, derivRef, true, tol, variable.DefaultParams(), m)

	s := solver.New(m, []variable.Variable{x}, nil)
	require.NoError(t, s.Init(0))
	require.NoError(t, s.Run(5))

	m.SetTime(5)
	got := x.X(5)
	want := math.Exp(-5)
	require.InDelta(t, want, got, 5e-4)
}

func TestSolver_StopsAtTStopWithNoPendingRequantization(t *testing.T) {
	m := newLinearDecayModel()
	tol := variable.Tolerances{RTol: 1e-3, ATol: 1e-6}
	x := variable.NewQSS("x", 1, xRef, derivRef, true, tol, variable.DefaultParams(), m)

	s := solver.New(m, []variable.Variable{x}, nil)
	require.NoError(t, s.Init(0))
	require.NoError(t, s.Run(1))
	require.NoError(t, s.Run(2))
}

// newStiffPairModel is a linearly-coupled pair (x strongly damped toward y,
// y a slow drift) whose fast mode forces LIQSS's implicit self-quantization
// to avoid oscillating at x's own tolerance band.
const (
	pairXRef     model.Ref = 10
	pairYRef     model.Ref = 11
	pairXDotRef  model.Ref = 12
	pairYDotRef  model.Ref = 13
	stiffK                 = 500.0
)

func newStiffPairModel() *model.FuncModel {
	m := model.NewFuncModel()
	m.Declare(model.VariableInfo{Name: "x", Ref: pairXRef, Kind: model.Real, Variability: model.Continuous, Causality: model.Output, Start: 0})
	m.Declare(model.VariableInfo{Name: "y", Ref: pairYRef, Kind: model.Real, Variability: model.Continuous, Causality: model.Output, Start: 1})
	m.Declare(model.VariableInfo{Name: "der(x)", Ref: pairXDotRef, Kind: model.Real, Variability: model.Continuous, DerivativeOf: pairXRef, HasDerivativeOf: true})
	m.Declare(model.VariableInfo{Name: "der(y)", Ref: pairYDotRef, Kind: model.Real, Variability: model.Continuous, DerivativeOf: pairYRef, HasDerivativeOf: true})
	m.Bind(pairXDotRef, func(t float64, get model.Getter) float64 { return stiffK * (get(pairYRef) - get(pairXRef)) })
	m.Bind(pairYDotRef, func(t float64, get model.Getter) float64 { return -0.1 * get(pairYRef) })
	return m
}

func TestSolver_LIQSSStiffPairTracksSlowManifold(t *testing.T) {
	m := newStiffPairModel()

	tol := variable.Tolerances{RTol: 1e-3, ATol: 1e-5}
	x := variable.NewLIQSS("x", 2, pairXRef, pairXDotRef, true, tol, variable.DefaultParams(), m)
	y := variable.NewLIQSS("y", 2, pairYRef, pairYDotRef, true, tol, variable.DefaultParams(), m)
	x.AddObservee(y)
	x.AddObservee(x)
	y.AddObserver(x)
	y.AddObservee(y)

	s := solver.New(m, []variable.Variable{x, y}, nil)
	require.NoError(t, s.Init(0))
	require.NoError(t, s.Run(10))

	m.SetTime(10)
	wantY := math.Exp(-1)
	require.InDelta(t, wantY, y.X(10), 1e-3)
	// x tracks y on the fast manifold once the initial transient decays.
	require.InDelta(t, y.X(10), x.X(10), 1e-3)
}

// newOscillatorModel exposes g(t) = sin(t) as a model event indicator with
// both value and derivative channels (pure functions of t, so the
// zero-crossing refinement step can probe them at any time), plus a
// constant-derivative "clk" trajectory variable whose sole purpose is to
// requantize on a short, fixed period and push a refresh through to the
// zero-crossing indicator via the observer graph, keeping its root
// prediction re-linearized as the simulation approaches each crossing.
const (
	oscillatorIndicatorRef model.Ref = 20
	oscillatorDerivRef     model.Ref = 21
	ladderToggleRef        model.Ref = 22
	clkRef                 model.Ref = 23
	clkDotRef              model.Ref = 24
)

func newOscillatorModel() *model.FuncModel {
	m := model.NewFuncModel()
	m.Declare(model.VariableInfo{Name: "g", Ref: oscillatorIndicatorRef, Kind: model.Real, EventIndicator: true})
	m.Declare(model.VariableInfo{Name: "der(g)", Ref: oscillatorDerivRef, Kind: model.Real, DerivativeOf: oscillatorIndicatorRef, HasDerivativeOf: true})
	m.Bind(oscillatorIndicatorRef, func(t float64, _ model.Getter) float64 { return math.Sin(t) })
	m.Bind(oscillatorDerivRef, func(t float64, _ model.Getter) float64 { return math.Cos(t) })
	m.Declare(model.VariableInfo{Name: "toggle", Ref: ladderToggleRef, Kind: model.Real, Start: 0})
	m.Declare(model.VariableInfo{Name: "clk", Ref: clkRef, Kind: model.Real, Variability: model.Continuous, Start: 0})
	m.Declare(model.VariableInfo{Name: "der(clk)", Ref: clkDotRef, Kind: model.Real, Variability: model.Continuous, DerivativeOf: clkRef, HasDerivativeOf: true})
	m.Bind(clkDotRef, func(t float64, _ model.Getter) float64 { return 1 })
	return m
}

func TestSolver_ZeroCrossingLadderTogglesDiscreteStateEachCrossing(t *testing.T) {
	m := newOscillatorModel()

	zc := variable.NewZC("g", 2, oscillatorIndicatorRef, oscillatorDerivRef, true, variable.DefaultParams(), m)
	toggle := variable.NewDiscrete("toggle", ladderToggleRef, m)
	clkTol := variable.Tolerances{ATol: 0.002}
	clk := variable.NewQSS("clk", 1, clkRef, clkDotRef, true, clkTol, variable.DefaultParams(), m)
	clk.AddObserver(zc)

	var crossingTimes []float64
	handler := func(t float64, _ variable.CrossingKind) {
		crossingTimes = append(crossingTimes, t)
		cur := m.GetReal1(ladderToggleRef)
		next := 1.0
		if cur != 0 {
			next = 0
		}
		m.SetReal1(ladderToggleRef, next)
	}
	cond := conditional.New("toggle-on-crossing", zc, handler)
	cond.AddObserver(toggle)

	vars := []variable.Variable{clk, zc, toggle}
	conds := []*conditional.Conditional{cond}

	s := solver.New(m, vars, conds)
	require.NoError(t, s.Init(0))
	require.NoError(t, s.Run(8*math.Pi + 0.5))

	require.Len(t, crossingTimes, 8)
	for i, tc := range crossingTimes {
		want := float64(i+1) * math.Pi
		require.InDelta(t, want, tc, 1e-2, "crossing %d", i)
	}

	// 8 toggles starting from 0 ends back at 0.
	m.SetTime(8*math.Pi + 0.5)
	require.Equal(t, 0.0, toggle.X(8*math.Pi+0.5))
}
