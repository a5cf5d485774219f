package variable

import (
	"math"

	"golang.org/x/exp/constraints"
)

func isInfFloat(x float64) bool {
	return math.IsInf(x, 0)
}

// clamp restricts v to [lo, hi]. Uses golang.org/x/exp/constraints for the
// generic numeric bound, consistent with the rest of the module's small
// generic helpers rather than hand duplicating these per call site.
func clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

const positiveInf = math.MaxFloat64

// smallestPositiveRoot returns the smallest strictly-positive root among
// candidates, or +Inf if none qualify.
func smallestPositiveRoot(candidates ...float64) float64 {
	best := math.Inf(1)
	for _, c := range candidates {
		if !math.IsNaN(c) && c > 0 && c < best {
			best = c
		}
	}
	return best
}

// quadraticRoots solves a*x^2 + b*x + c = 0 for real roots, using a
// discriminant clamp (negative-but-tiny discriminants, from rounding, are
// treated as zero) for robustness, matching the "robust minimum-positive-
// root quadratic with discriminant clamp" requirement.
func quadraticRoots(a, b, c float64) (r1, r2 float64, ok bool) {
	if a == 0 {
		if b == 0 {
			return 0, 0, false
		}
		r := -c / b
		return r, r, true
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		if disc > -1e-12*(1+abs(b*b)) {
			disc = 0
		} else {
			return 0, 0, false
		}
	}
	sq := math.Sqrt(disc)
	// numerically stable form
	var q float64
	if b >= 0 {
		q = -0.5 * (b + sq)
	} else {
		q = -0.5 * (b - sq)
	}
	if q == 0 {
		r := -b / (2 * a)
		return r, r, true
	}
	r1 = q / a
	r2 = c / q
	return r1, r2, true
}

// cubicRoots solves a*x^3 + b*x^2 + c*x + d = 0 for real roots via the
// standard depressed-cubic (Cardano) reduction, falling back to the
// quadratic solver when a degenerates to 0.
func cubicRoots(a, b, c, d float64) []float64 {
	if a == 0 {
		r1, r2, ok := quadraticRoots(b, c, d)
		if !ok {
			return nil
		}
		if r1 == r2 {
			return []float64{r1}
		}
		return []float64{r1, r2}
	}
	b /= a
	c /= a
	d /= a

	p := c - b*b/3
	q := 2*b*b*b/27 - b*c/3 + d
	shift := -b / 3

	disc := q*q/4 + p*p*p/27

	switch {
	case disc > 1e-14:
		sq := math.Sqrt(disc)
		u := cbrt(-q/2 + sq)
		v := cbrt(-q/2 - sq)
		return []float64{u + v + shift}
	case disc > -1e-14:
		// repeated/degenerate roots
		u := cbrt(-q / 2)
		return []float64{2*u + shift, -u + shift}
	default:
		r := math.Sqrt(-p / 3)
		phi := math.Acos(clamp(-q/(2*r*r*r), -1, 1))
		roots := make([]float64, 3)
		for k := 0; k < 3; k++ {
			roots[k] = 2*r*math.Cos((phi-2*math.Pi*float64(k))/3) + shift
		}
		return roots
	}
}

func cbrt(x float64) float64 {
	if x < 0 {
		return -math.Cbrt(-x)
	}
	return math.Cbrt(x)
}

// halleyRefine performs bounded Newton/Halley iteration on f (with first and
// second derivatives f1, f2) starting from t0, capped at maxIter, with
// step-halving whenever a step fails to reduce |f|. It never returns a value
// less than floor (typically the variable's tX, "t >= tX" per the
// refinement contract).
func halleyRefine(t0, floor float64, maxIter int, f, f1, f2 func(float64) float64) (t float64, converged bool) {
	t = t0
	fv := f(t)
	for i := 0; i < maxIter; i++ {
		d1 := f1(t)
		if d1 == 0 {
			break
		}
		d2 := f2(t)
		// Halley's update; falls back to plain Newton if the denominator
		// degenerates.
		denom := 2*d1*d1 - fv*d2
		var step float64
		if denom == 0 {
			step = fv / d1
		} else {
			step = 2 * fv * d1 / denom
		}
		next := t - step
		if next < floor {
			next = floor
		}
		nfv := f(next)
		halvings := 0
		for abs(nfv) > abs(fv) && halvings < 4 {
			step /= 2
			next = t - step
			if next < floor {
				next = floor
			}
			nfv = f(next)
			halvings++
		}
		improved := abs(nfv) < abs(fv)
		t, fv = next, nfv
		if !improved {
			return t, false
		}
		if abs(fv) < 1e-14 {
			return t, true
		}
	}
	return t, abs(fv) < 1e-9
}

// centeredFirstDerivative computes f'(t) via a centered finite difference of
// f, offset by h.
func centeredFirstDerivative(f func(float64) float64, t, h float64) float64 {
	return (f(t+h) - f(t-h)) / (2 * h)
}

// centeredSecondDerivative computes f''(t) via the standard centered
// second-difference formula.
func centeredSecondDerivative(f func(float64) float64, t, h float64) float64 {
	return (f(t+h) - 2*f(t) + f(t-h)) / (h * h)
}

// centeredThirdDerivativeFromFirst computes f'''(t)/6 from three samples of
// f' (the model's own first derivative): the centered form is
// (x1(t+h) - 2x1(t) + x1(t-h)) / (6h^2). Note the 6, not 2: this estimates
// the *third* derivative of x (i.e. d^2/dt^2 of x1) scaled into the cubic
// Taylor coefficient, not a bare second derivative of x1.
func centeredThirdDerivativeFromFirst(x1AtMinus, x1At, x1AtPlus, h float64) float64 {
	return (x1AtPlus - 2*x1At + x1AtMinus) / (6 * h * h)
}
