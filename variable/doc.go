// Package variable implements the Variable family: the per-variable
// continuous (x) and quantized (q) piecewise-polynomial trajectories, the
// tolerance-driven next-requantization-time computation, the zero-crossing
// event indicator with root detection and anti-chatter, and the
// dependency-graph edges (observer/observee) that drive propagation.
//
// Three trajectory flavors share one capability set (init/advance stage
// hooks, plus x/x1/x2/x3/q/q1/q2/q3 accessors), tagging method as the Go
// type axis and polynomial order as a data field, per the one-axis rule in
// the design notes:
//   - QSS: the standard quantized-state trajectory.
//   - LIQSS: linear-implicit QSS, biasing the quantized value to stabilize
//     self-feedback (self-observer) variables.
//   - RQSS: relaxation QSS, broadcasting the full-order quantized polynomial
//     instead of one order lower than the continuous polynomial.
//
// Derivative accessors for an order above a variable's polynomial (e.g. X2
// on an order-1 variable) return zero; they do not panic. The stage2/stage3
// hooks return without effect on variables of too low an order.
package variable
