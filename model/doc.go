// Package model defines Adapter, the narrow collaborator interface the QSS
// core uses to query an opaque real-valued model: value get/set, time
// setting, derivative queries, and directional second-derivative queries.
//
// Adapter is deliberately minimal — it is the seam between this repository
// (the event-driven quantization engine) and whatever loads the actual
// model (an FMU for Model Exchange, a hand-written ODE function, a test
// double). Loading, unzipping, and introspecting a real FMU binary is out of
// scope for this module; FuncModel, also in this package, is a reference
// Adapter implementation backed by plain Go closures, used by cmd/qss-run
// and the module's own tests.
package model
