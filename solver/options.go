package solver

import (
	"time"

	"github.com/joeycumines/go-qss/qsslog"
	"github.com/joeycumines/go-qss/variable"
)

type options struct {
	params       *variable.Params
	logger       *qsslog.Logger
	progressRate map[time.Duration]int
	ei           bool
}

// Option configures a Solver, following the functional-options pattern:
// an unexported options struct, this exported interface, and a family of
// With* constructors.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

func defaultOptions() options {
	return options{
		params: variable.DefaultParams(),
		logger: qsslog.Default(),
		progressRate: map[time.Duration]int{
			time.Second: 5,
		},
	}
}

// WithParams records the engine-wide tuning knobs (step bounds, ND offset,
// zero-crossing options). The Solver reads only their EI flag; each
// Variable keeps the *Params it was constructed with.
func WithParams(p *variable.Params) Option {
	return optionFunc(func(o *options) { o.params = p })
}

// WithLogger overrides the structured logger the Solver emits
// setup/progress/warning records to.
func WithLogger(l *qsslog.Logger) Option {
	return optionFunc(func(o *options) { o.logger = l })
}

// WithProgressRate configures the wall-clock rate limit (independent of
// simulated time) applied to progress log emission, via a
// github.com/joeycumines/go-catrate multi-window limiter. Pass an empty
// map to disable progress logging entirely.
func WithProgressRate(rates map[time.Duration]int) Option {
	return optionFunc(func(o *options) { o.progressRate = rates })
}

// WithEmptyIfKeepsAlive mirrors variable.Params.EI at the solver level
// (either one being true enables it): when true, a Conditional whose
// observer set is empty still fires its own handler.
func WithEmptyIfKeepsAlive(ei bool) Option {
	return optionFunc(func(o *options) { o.ei = ei })
}
