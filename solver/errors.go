package solver

import "fmt"

// SetupError reports a problem discovered while building the Variable set
// and dependency graph from the model's introspection data -- a
// misconfigured model, not a numerical failure during integration.
type SetupError struct {
	Component string
	Reason    string
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("solver: setup error in %s: %s", e.Component, e.Reason)
}

// AssertionError reports a violated internal invariant: an extracted event
// group whose kind has no dispatch case, or whose target does not
// implement that kind's dispatch method. These should never occur in a
// correctly wired solver and are not expected to be recovered from.
type AssertionError struct {
	Invariant string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("solver: assertion failed: %s", e.Invariant)
}
