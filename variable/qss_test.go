package variable_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-qss/equeue"
	"github.com/joeycumines/go-qss/model"
	"github.com/joeycumines/go-qss/variable"
)

func newDecayModel(start float64) (*model.FuncModel, model.Ref, model.Ref) {
	m := model.NewFuncModel()
	xRef := model.Ref(1)
	derivRef := model.Ref(2)
	m.Declare(model.VariableInfo{Name: "x", Ref: xRef, Kind: model.Real, Start: start})
	m.Declare(model.VariableInfo{Name: "der(x)", Ref: derivRef, Kind: model.Real, DerivativeOf: xRef, HasDerivativeOf: true})
	m.Bind(derivRef, func(_ float64, get model.Getter) float64 { return -get(xRef) })
	return m, xRef, derivRef
}

func TestQSS_InitSeedsFromModel(t *testing.T) {
	m, xRef, derivRef := newDecayModel(1)
	v := variable.NewQSS("x", 1, xRef, derivRef, true, variable.Tolerances{RTol: 1e-3, ATol: 1e-6}, variable.DefaultParams(), m)

	eq := equeue.New()
	v.Init(0, eq)

	require.Equal(t, 0.0, v.TQ())
	require.Equal(t, 0.0, v.TX())
	require.Equal(t, 1.0, v.X(0))
	require.InDelta(t, -1.0, v.X1(0), 1e-9)
	require.Greater(t, v.TEPhys(), 0.0)
}

func TestQSS_RequantizeDecaysTowardZero(t *testing.T) {
	m, xRef, derivRef := newDecayModel(1)
	v := variable.NewQSS("x", 2, xRef, derivRef, true, variable.Tolerances{RTol: 1e-3, ATol: 1e-6}, variable.DefaultParams(), m)

	eq := equeue.New()
	v.Init(0, eq)

	last := v.X(v.TX())
	for i := 0; i < 20; i++ {
		te := v.TEPhys()
		v.Requantize(eq)
		require.GreaterOrEqual(t, v.TX(), te-1e-9)
		cur := v.X(v.TX())
		require.LessOrEqual(t, cur, last+1e-9, "decaying state must not increase in magnitude")
		last = cur
	}
	require.Less(t, last, 1.0)
}

func TestQSS_ObserverAdvanceMovesTXWithoutTQ(t *testing.T) {
	m, xRef, derivRef := newDecayModel(1)
	v := variable.NewQSS("x", 2, xRef, derivRef, true, variable.Tolerances{RTol: 1e-3, ATol: 1e-6}, variable.DefaultParams(), m)

	eq := equeue.New()
	v.Init(0, eq)
	tQBefore := v.TQ()

	v.ObserverAdvance(0.1, eq)

	require.Equal(t, tQBefore, v.TQ())
	require.Equal(t, 0.1, v.TX())
	require.NotEqual(t, v.TQ(), v.TX())
}

func TestQSS_SatisfiesVariableInterface(t *testing.T) {
	var _ variable.Variable = (*variable.QSS)(nil)
	var _ variable.Variable = (*variable.LIQSS)(nil)
	var _ variable.Variable = (*variable.RQSS)(nil)
	var _ variable.Variable = (*variable.ZC)(nil)
	var _ variable.Variable = (*variable.RealVar)(nil)
	var _ variable.Variable = (*variable.DiscreteVar)(nil)
	var _ variable.Variable = (*variable.InputVar)(nil)
}
