package variable

import "math"

// shiftCoeffs returns the coefficients of c(x+s) as a polynomial in x, given
// c as a polynomial in its original variable (c(y) = sum c[k] y^k) and
// s the shift (y = x+s). Only orders 0..3 are supported, matching the
// Variable family's maximum polynomial order.
func shiftCoeffs(c [4]float64, order int, s float64) [4]float64 {
	var out [4]float64
	switch order {
	case 0:
		out[0] = c[0]
	case 1:
		out[0] = c[0] + c[1]*s
		out[1] = c[1]
	case 2:
		out[0] = c[0] + c[1]*s + c[2]*s*s
		out[1] = c[1] + 2*c[2]*s
		out[2] = c[2]
	case 3:
		s2 := s * s
		s3 := s2 * s
		out[0] = c[0] + c[1]*s + c[2]*s2 + c[3]*s3
		out[1] = c[1] + 2*c[2]*s + 3*c[3]*s2
		out[2] = c[2] + 3*c[3]*s
		out[3] = c[3]
	}
	return out
}

// residualCoeffs returns the coefficients, in powers of dt = t-tX, of
// x(tX+dt) - q(tX+dt).
func (b *Base) residualCoeffs() ([4]float64, int) {
	e := b.tX - b.tQ
	qShifted := shiftCoeffs(b.q, b.qOrderDefault(), e)
	var diff [4]float64
	for k := 0; k <= b.order; k++ {
		diff[k] = b.x[k] - qShifted[k]
	}
	return diff, b.order
}

// alignedTE computes tE for the aligned case: the smallest dt>0 at
// which the leading error term reaches qTol, given the leading nonzero
// trajectory coefficient.
func (b *Base) alignedTE() float64 {
	var dt float64
	switch b.order {
	case 1:
		if b.x[1] != 0 {
			dt = b.qTol / abs(b.x[1])
		} else {
			dt = math.Inf(1)
		}
	case 2:
		if b.x[2] != 0 {
			dt = math.Sqrt(b.qTol / abs(b.x[2]))
		} else {
			dt = math.Inf(1)
		}
	case 3:
		if b.x[3] != 0 {
			dt = cbrt(b.qTol / abs(b.x[3]))
		} else {
			dt = math.Inf(1)
		}
	default:
		dt = math.Inf(1)
	}

	clamped, isInf := b.params.clampDt(dt, b.prevInf)
	b.prevInf = isInf
	tE := b.tX + clamped

	if b.params.Inflection && b.order >= 2 {
		lead := b.x[b.order]
		prev := b.x[b.order-1]
		if lead != 0 && sign(lead) != sign(prev) && prev != 0 {
			tInfl := b.tX - prev/(float64(b.order)*lead)
			if tInfl > b.tX && tInfl < tE {
				tE = tInfl
			}
		}
	}
	return tE
}

// unalignedTE computes tE for the "unaligned" case (tX != tQ, typically
// following an observer advance): the smallest dt>0 beyond tX at which
// |x(tX+dt) - q(tX+dt)| = qTol.
func (b *Base) unalignedTE() float64 {
	diff, order := b.residualCoeffs()

	var candidates []float64
	switch order {
	case 0:
		// constant residual: never crosses unless already AT qTol, fall
		// through to +Inf (caller clamps to DtMax).
	case 1:
		if diff[1] != 0 {
			candidates = append(candidates,
				(b.qTol-diff[0])/diff[1],
				(-b.qTol-diff[0])/diff[1],
			)
		}
	case 2:
		for _, target := range []float64{b.qTol, -b.qTol} {
			r1, r2, ok := quadraticRoots(diff[2], diff[1], diff[0]-target)
			if ok {
				candidates = append(candidates, r1, r2)
			}
		}
	case 3:
		for _, target := range []float64{b.qTol, -b.qTol} {
			candidates = append(candidates, cubicRoots(diff[3], diff[2], diff[1], diff[0]-target)...)
		}
	}

	dt := smallestPositiveRoot(candidates...)
	clamped, isInf := b.params.clampDt(dt, b.prevInf)
	b.prevInf = isInf
	return b.tX + clamped
}

// computeTE dispatches to the aligned or unaligned rule based on whether tX
// and tQ currently coincide, and bumps tE by one ULP past tX if rounding
// would otherwise make them equal (per the "dtND approaching the previous
// step" boundary requirement).
func (b *Base) computeTE() float64 {
	var tE float64
	if b.tX == b.tQ {
		tE = b.alignedTE()
	} else {
		tE = b.unalignedTE()
	}
	if tE <= b.tX {
		tE = math.Nextafter(b.tX, math.Inf(1))
	}
	return tE
}
