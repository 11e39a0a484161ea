package interp

import (
	"errors"
	"time"
)

// Limit errors, returned from evaluation when a configured resource limit
// trips.
var (
	ErrCommandLimit = errors.New("command count limit exceeded")
	ErrTimeLimit    = errors.New("time limit exceeded")
)

// limitState holds the interpreter's resource limits. Limits are polled
// after each command invocation, so a long-running single command is not
// interrupted.
type limitState struct {
	// cmdLimit, when nonzero, is the total invocation count at which
	// evaluation stops.
	cmdLimit uint64
	// deadline, when set, is the wall-clock time past which evaluation
	// stops.
	deadline time.Time
}

// LimitCommands stops evaluation once the interpreter's total command count
// reaches n. A zero n removes the limit.
func (in *Interp) LimitCommands(n uint64) { in.limits.cmdLimit = n }

// LimitTime stops evaluation at the given wall-clock time. A zero time
// removes the limit.
func (in *Interp) LimitTime(deadline time.Time) { in.limits.deadline = deadline }

// checkLimits reports whether a limit has tripped.
func (in *Interp) checkLimits() error {
	if in.limits.cmdLimit != 0 && in.cmdCount >= in.limits.cmdLimit {
		return ErrCommandLimit
	}
	if !in.limits.deadline.IsZero() && time.Now().After(in.limits.deadline) {
		return ErrTimeLimit
	}
	return nil
}
