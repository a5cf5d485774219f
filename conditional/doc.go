// Package conditional implements if/when-block wiring: a Conditional links
// one zero-crossing variable.ZC to the ordered set of observer variables
// whose handlers fire when that crossing occurs, with passive-observer
// short-circuiting so a crossing whose only observers are themselves
// passive (unreachable from any live output) never schedules handler work.
package conditional
