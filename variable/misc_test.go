package variable_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-qss/equeue"
	"github.com/joeycumines/go-qss/model"
	"github.com/joeycumines/go-qss/variable"
)

func TestRealVar_NeverSchedulesOwnRequantization(t *testing.T) {
	m := model.NewFuncModel()
	m.Declare(model.VariableInfo{Name: "y", Ref: 1, Kind: model.Real, Start: 7})
	v := variable.NewReal("y", 1, m)

	eq := equeue.New()
	v.Init(0, eq)

	require.True(t, math.IsInf(v.TEPhys(), 1))
	require.Equal(t, 7.0, v.X(0))
	require.Equal(t, 7.0, v.Q(0))
}

func TestRealVar_RefreshTracksModelValue(t *testing.T) {
	m := model.NewFuncModel()
	m.Declare(model.VariableInfo{Name: "y", Ref: 1, Kind: model.Real, Start: 7})
	v := variable.NewReal("y", 1, m)

	eq := equeue.New()
	v.Init(0, eq)

	m.SetReal1(1, 99)
	v.Refresh(1, eq)

	require.Equal(t, 99.0, v.X(1))
}

func TestDiscreteVar_OnlyChangesOnApplyHandler(t *testing.T) {
	m := model.NewFuncModel()
	m.Declare(model.VariableInfo{Name: "d", Ref: 1, Kind: model.Real, Start: 0})
	v := variable.NewDiscrete("d", 1, m)

	eq := equeue.New()
	v.Init(0, eq)
	require.True(t, math.IsInf(v.TEPhys(), 1))
	require.Equal(t, 0.0, v.X(0))

	m.SetReal1(1, 3)
	v.ApplyHandler(2, eq)

	require.Equal(t, 3.0, v.X(2))
	require.Equal(t, 2.0, v.TQ())
}

func TestInputVar_SamplesClosedFormFunction(t *testing.T) {
	m := model.NewFuncModel()
	m.Declare(model.VariableInfo{Name: "u", Ref: 1, Kind: model.Real})
	tol := variable.Tolerances{RTol: 1e-3, ATol: 1e-6}
	fn := func(t float64) float64 { return 2*t + 1 }
	v := variable.NewInput("u", 2, 1, tol, variable.DefaultParams(), m, fn)

	eq := equeue.New()
	v.Init(0, eq)

	require.Equal(t, 1.0, v.X(0))
	require.InDelta(t, 2.0, v.X1(0), 1e-6)
	require.InDelta(t, 0.0, v.X2(0), 1e-4)
}

func TestInputVar_RequantizeResamplesAtPredictedEventTime(t *testing.T) {
	m := model.NewFuncModel()
	m.Declare(model.VariableInfo{Name: "u", Ref: 1, Kind: model.Real})
	tol := variable.Tolerances{RTol: 1e-3, ATol: 1e-6}
	fn := func(t float64) float64 { return 2*t + 1 }
	v := variable.NewInput("u", 1, 1, tol, variable.DefaultParams(), m, fn)

	eq := equeue.New()
	v.Init(0, eq)

	te := v.TEPhys()
	v.Requantize(eq)

	require.Equal(t, te, v.TX())
	require.InDelta(t, fn(te), v.X(te), 1e-6)
}
