package interp

// TraceOps is a bitmask selecting which events a trace fires on.
type TraceOps int

const (
	// TraceRename fires when the traced command is renamed.
	TraceRename TraceOps = 1 << iota
	// TraceDelete fires when the traced command is deleted. Delete traces
	// fire at most once; they are discarded after firing.
	TraceDelete
	// TraceEnter fires before a traced command runs. An error returned by
	// an enter trace aborts the invocation: the command never runs and
	// the error becomes the invocation's result.
	TraceEnter
	// TraceLeave fires after a traced command returns, with its result
	// code and value. Leave traces are skipped if the command was deleted
	// while it ran.
	TraceLeave
)

// TraceInfo carries the details of the event a trace fired on. OldName and
// NewName are set for structural events; Level, Command, Args, Code and
// Result for execution events. On delete, NewName is empty.
type TraceInfo struct {
	Op TraceOps

	OldName string
	NewName string

	Level   int
	Command string
	Args    []string
	Code    Code
	Result  string
}

// TraceFn is called when a traced event happens. The interpreter is
// preserved for the duration of the call, and the trace may freely rename or
// delete commands, including the traced one. The error return is only
// meaningful for enter traces, where it vetoes the invocation; errors from
// other events are ignored.
type TraceFn func(in *Interp, info TraceInfo) error

// CommandTrace is a handle on an installed trace, used to remove it.
type CommandTrace struct {
	ops TraceOps
	fn  TraceFn

	// refCount counts in-progress firings; removal is deferred until it
	// drains.
	refCount int
	removed  bool
	// active suppresses re-entrant firing of interpreter-wide execution
	// traces.
	active bool
}

// Trace attaches a trace to the command for the given operations and returns
// a handle for removing it. Traces fire in the order installed.
func (c *Command) Trace(ops TraceOps, fn TraceFn) *CommandTrace {
	t := &CommandTrace{ops: ops, fn: fn}
	c.traces = append(c.traces, t)
	return t
}

// Untrace removes a trace installed by Trace. Removing from inside a trace
// callback is allowed; the removal takes effect once the in-progress firing
// finishes.
func (c *Command) Untrace(t *CommandTrace) {
	t.removed = true
	c.compactTraces()
}

func (c *Command) compactTraces() {
	kept := c.traces[:0]
	for _, t := range c.traces {
		if !t.removed || t.refCount > 0 {
			kept = append(kept, t)
		}
	}
	c.traces = kept
	if len(c.traces) == 0 {
		c.traces = nil
	}
}

// TraceExecution installs an interpreter-wide execution trace, fired around
// every command invocation.
func (in *Interp) TraceExecution(fn TraceFn) *CommandTrace {
	t := &CommandTrace{ops: TraceEnter | TraceLeave, fn: fn}
	in.execTraces = append(in.execTraces, t)
	return t
}

// UntraceExecution removes an interpreter-wide execution trace.
func (in *Interp) UntraceExecution(t *CommandTrace) {
	t.removed = true
	kept := in.execTraces[:0]
	for _, et := range in.execTraces {
		if !et.removed || et.refCount > 0 {
			kept = append(kept, et)
		}
	}
	in.execTraces = kept
}

// fireTraces fires the command's structural traces for op. While a command's
// traces are firing, further trace firing on the same command is suppressed,
// so a rename done by a rename trace does not recurse. The interpreter and
// the command record are held alive across the callbacks.
func (in *Interp) fireTraces(cmd *Command, op TraceOps, oldName, newName string) {
	if cmd.traceActive || len(cmd.traces) == 0 {
		return
	}
	cmd.traceActive = true
	cmd.retain()
	in.Preserve()
	defer func() {
		cmd.traceActive = false
		cmd.compactTraces()
		cmd.release()
		in.Release()
	}()

	// Iterate a snapshot; callbacks may install or remove traces.
	traces := make([]*CommandTrace, len(cmd.traces))
	copy(traces, cmd.traces)
	for _, t := range traces {
		if t.removed || t.ops&op == 0 {
			continue
		}
		t.refCount++
		t.fn(in, TraceInfo{Op: op, OldName: oldName, NewName: newName})
		t.refCount--
	}
}

// fireExecTraces fires the interpreter-wide execution traces and the
// command's own execution traces for op (TraceEnter or TraceLeave). The
// first error a trace returns stops the remaining traces and is returned.
func (in *Interp) fireExecTraces(cmd *Command, op TraceOps, info TraceInfo) error {
	info.Op = op
	if len(in.execTraces) > 0 {
		in.Preserve()
		traces := make([]*CommandTrace, len(in.execTraces))
		copy(traces, in.execTraces)
		var err error
		for _, t := range traces {
			if t.removed || t.active || t.ops&op == 0 {
				continue
			}
			t.active = true
			t.refCount++
			err = t.fn(in, info)
			t.refCount--
			t.active = false
			if err != nil {
				break
			}
		}
		in.Release()
		if err != nil {
			return err
		}
	}
	if cmd != nil && cmd.hasExecTraces() && !cmd.traceActive {
		cmd.traceActive = true
		cmd.retain()
		in.Preserve()
		traces := make([]*CommandTrace, len(cmd.traces))
		copy(traces, cmd.traces)
		var err error
		for _, t := range traces {
			if t.removed || t.ops&op == 0 {
				continue
			}
			t.refCount++
			err = t.fn(in, info)
			t.refCount--
			if err != nil {
				break
			}
		}
		cmd.traceActive = false
		cmd.compactTraces()
		cmd.release()
		in.Release()
		return err
	}
	return nil
}
