// Package qsslog provides the ambient structured logger used by the solver
// package and cmd/qss-run: a github.com/joeycumines/logiface
// generic Logger[*stumpy.Event], backed by default with
// github.com/joeycumines/stumpy's compact JSON writer.
package qsslog

import (
	"sync"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Event is the concrete logiface event type this package logs with.
type Event = stumpy.Event

// Logger is the generic logiface logger type every package in this module
// accepts, so call sites never import stumpy directly.
type Logger = logiface.Logger[*Event]

var (
	mu      sync.RWMutex
	current *Logger = newDefault()
)

func newDefault() *Logger {
	// stumpy.L.WithStumpy defaults to writing compact JSON lines to
	// os.Stderr; callers needing a different sink use SetLogger.
	return stumpy.L.New(stumpy.L.WithStumpy())
}

// Default returns the process-wide logger. Safe for concurrent use; the
// engine itself never touches it from more than one goroutine, but example
// programs and tests may run under `go test -race` with multiple solver
// instances.
func Default() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetLogger replaces the process-wide logger, e.g. so cmd/qss-run can wire
// in a level or writer chosen from flags.
func SetLogger(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}

// L is shorthand for Default().
func L() *Logger { return Default() }
