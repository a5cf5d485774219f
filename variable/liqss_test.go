package variable_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-qss/equeue"
	"github.com/joeycumines/go-qss/variable"
)

func TestLIQSS_BiasesTowardStableBoundForSelfFeedback(t *testing.T) {
	m, xRef, derivRef := newDecayModel(1)
	tol := variable.Tolerances{RTol: 1e-2, ATol: 1e-6}
	v := variable.NewLIQSS("x", 2, xRef, derivRef, true, tol, variable.DefaultParams(), m)
	v.AddObservee(v)
	require.True(t, v.SelfObserver())

	eq := equeue.New()
	v.Init(0, eq)

	qc := v.X(0)
	qTol := tol.QTol(qc)
	// dx/dt = -x is negative at both qc+qTol and qc-qTol for qc=1, qTol
	// small, so LIQSS1 must bias q0 toward the lower (stable) bound.
	require.InDelta(t, qc-qTol, v.Q(0), 1e-9)
}

func TestLIQSS_NoBiasWithoutSelfObserver(t *testing.T) {
	m, xRef, derivRef := newDecayModel(1)
	tol := variable.Tolerances{RTol: 1e-2, ATol: 1e-6}
	v := variable.NewLIQSS("x", 2, xRef, derivRef, true, tol, variable.DefaultParams(), m)

	eq := equeue.New()
	v.Init(0, eq)

	require.Equal(t, v.X(0), v.Q(0))
}
