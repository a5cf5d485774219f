package variable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuadraticRoots(t *testing.T) {
	// x^2 - 5x + 6 = (x-2)(x-3)
	r1, r2, ok := quadraticRoots(1, -5, 6)
	require.True(t, ok)
	lo, hi := r1, r2
	if lo > hi {
		lo, hi = hi, lo
	}
	require.InDelta(t, 2, lo, 1e-9)
	require.InDelta(t, 3, hi, 1e-9)
}

func TestQuadraticRoots_NoRealRoots(t *testing.T) {
	_, _, ok := quadraticRoots(1, 0, 1)
	require.False(t, ok)
}

func TestQuadraticRoots_LinearDegenerate(t *testing.T) {
	r1, r2, ok := quadraticRoots(0, 2, -4)
	require.True(t, ok)
	require.InDelta(t, 2, r1, 1e-9)
	require.InDelta(t, 2, r2, 1e-9)
}

func TestCubicRoots_ThreeRealRoots(t *testing.T) {
	// (x-1)(x-2)(x-3) = x^3 -6x^2+11x-6
	roots := cubicRoots(1, -6, 11, -6)
	require.Len(t, roots, 3)
	got := append([]float64(nil), roots...)
	for i := 0; i < len(got); i++ {
		for j := i + 1; j < len(got); j++ {
			if got[j] < got[i] {
				got[i], got[j] = got[j], got[i]
			}
		}
	}
	require.InDelta(t, 1, got[0], 1e-6)
	require.InDelta(t, 2, got[1], 1e-6)
	require.InDelta(t, 3, got[2], 1e-6)
}

func TestCubicRoots_OneRealRoot(t *testing.T) {
	// x^3 - 1 = 0 has one real root at x=1
	roots := cubicRoots(1, 0, 0, -1)
	require.Len(t, roots, 1)
	require.InDelta(t, 1, roots[0], 1e-9)
}

func TestSmallestPositiveRoot(t *testing.T) {
	require.Equal(t, 2.0, smallestPositiveRoot(-5, 2, 7, math.NaN()))
	require.True(t, math.IsInf(smallestPositiveRoot(-1, -2), 1))
	require.True(t, math.IsInf(smallestPositiveRoot(), 1))
}

func TestHalleyRefine_ConvergesOnSimpleRoot(t *testing.T) {
	// f(t) = t^2 - 4, root at t=2
	f := func(t float64) float64 { return t*t - 4 }
	f1 := func(t float64) float64 { return 2 * t }
	f2 := func(float64) float64 { return 2 }

	got, ok := halleyRefine(1.5, 0, 20, f, f1, f2)
	require.True(t, ok)
	require.InDelta(t, 2, got, 1e-6)
}

func TestHalleyRefine_NeverGoesBelowFloor(t *testing.T) {
	f := func(t float64) float64 { return t*t - 4 }
	f1 := func(t float64) float64 { return 2 * t }
	f2 := func(float64) float64 { return 2 }

	got, _ := halleyRefine(1.9, 1.95, 20, f, f1, f2)
	require.GreaterOrEqual(t, got, 1.95)
}

func TestShiftCoeffs_MatchesDirectEvaluation(t *testing.T) {
	c := [4]float64{1, 2, 3, 4}
	shift := 0.5
	shifted := shiftCoeffs(c, 3, shift)

	x := 1.25
	direct := c[0] + c[1]*(x+shift) + c[2]*(x+shift)*(x+shift) + c[3]*(x+shift)*(x+shift)*(x+shift)
	got := evalPoly(shifted, 3, x)
	require.InDelta(t, direct, got, 1e-9)
}
