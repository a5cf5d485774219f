package variable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestBase(order int) *Base {
	return &Base{
		order:  order,
		params: DefaultParams(),
		tol:    Tolerances{RTol: 1e-3, ATol: 1e-6},
	}
}

func TestAlignedTE_Order2UsesSqrtRule(t *testing.T) {
	b := newTestBase(2)
	b.tQ, b.tX = 0, 0
	b.x = [4]float64{1, 0.1, 0.5, 0}
	b.qTol = 0.1

	got := b.computeTE()
	want := math.Sqrt(0.1 / 0.5)
	require.InDelta(t, want, got, 1e-9)
}

func TestAlignedTE_Order1UsesLinearRule(t *testing.T) {
	b := newTestBase(1)
	b.tQ, b.tX = 5, 5
	b.x = [4]float64{2, -4, 0, 0}
	b.qTol = 0.4

	got := b.computeTE()
	require.InDelta(t, 5+0.4/4, got, 1e-9)
}

func TestAlignedTE_ZeroLeadingCoeffGivesClampedInfinity(t *testing.T) {
	b := newTestBase(1)
	b.tQ, b.tX = 0, 0
	b.x = [4]float64{1, 0, 0, 0}
	b.qTol = 0.1
	b.params.DtMax = 50

	got := b.computeTE()
	require.InDelta(t, 50, got, 1e-9)
}

func TestUnalignedTE_FindsSmallestPositiveCrossing(t *testing.T) {
	b := newTestBase(1)
	b.tQ, b.tX = 0, 1
	b.x = [4]float64{1, -2, 0, 0}
	b.q = [4]float64{0.5, 0, 0, 0}
	b.qTol = 0.2

	got := b.computeTE()
	require.InDelta(t, 1.15, got, 1e-9)
}

func TestComputeTE_NeverReturnsBeforeOrAtTX(t *testing.T) {
	b := newTestBase(1)
	b.tQ, b.tX = 0, 0
	b.x = [4]float64{1, 0, 0, 0}
	b.q = [4]float64{1, 0, 0, 0}
	b.qTol = 0.1
	b.params.DtMax = 0 // force the aligned branch's clamp to collapse dt to 0

	got := b.computeTE()
	require.Greater(t, got, b.tX)
}
