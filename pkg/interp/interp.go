// Package interp implements the interpreter core of the tacl command
// language: the namespace-scoped command registry, command lifecycle
// (register, rename, delete, hide, expose), command traces, and the script
// evaluator.
//
// An Interp is not safe for concurrent mutation; a host may run independent
// interpreters concurrently on separate goroutines, since interpreters share
// no mutable state.
package interp

import (
	"sync/atomic"

	"src.tacl.dev/pkg/interp/errs"
	"src.tacl.dev/pkg/logutil"
)

var logger = logutil.GetLogger("[interp] ")

// defaultMaxDepth is the default limit on nested evaluations.
const defaultMaxDepth = 1000

// Interp is one interpreter instance. It owns the global namespace, the
// hidden-command table, and all evaluation state.
type Interp struct {
	global *Ns
	// hidden holds commands removed from normal visibility but still
	// invocable through InvokeHidden.
	hidden map[string]*Command

	// vars is the interpreter's global variable table; the value system
	// proper is an external collaborator and values are opaque strings
	// here.
	vars map[string]string

	assoc map[string]*assocData
	// deleteHookSeq generates keys for CallWhenDeleted registrations. It is
	// per-interpreter; interpreters share nothing.
	deleteHookSeq int

	// numLevels counts nested evaluations; maxDepth bounds it.
	numLevels int
	maxDepth  int

	// compileEpoch is bumped whenever previously compiled dispatch code
	// might reference a stale command binding. The bytecode engine is an
	// external collaborator; this core only owns the counter.
	compileEpoch uint64
	// cmdCount counts command invocations, for limit checking and
	// statistics.
	cmdCount uint64

	// execTraces are interpreter-wide execution traces, fired around every
	// command invocation.
	execTraces []*CommandTrace

	// asyncErr is latched by SignalAsync, possibly from another
	// goroutine, and drained at defined points of the evaluator.
	asyncErr atomic.Value // of error

	limits limitState

	deleted   bool
	finalized bool
	// holds counts Preserve calls not yet matched by Release. Teardown of a
	// deleted interpreter is deferred until the count drops to zero.
	holds int
}

// New creates a new interpreter with the bootstrap command set registered in
// its global namespace.
func New() *Interp {
	in := &Interp{
		hidden:   make(map[string]*Command),
		vars:     make(map[string]string),
		assoc:    make(map[string]*assocData),
		maxDepth: defaultMaxDepth,
	}
	in.global = &Ns{
		fullName: "::",
		cmds:     make(map[string]*Command),
		children: make(map[string]*Ns),
		interp:   in,
	}
	registerBuiltins(in)
	return in
}

// Global returns the global namespace.
func (in *Interp) Global() *Ns { return in.global }

// Deleted reports whether the interpreter has been marked deleted.
func (in *Interp) Deleted() bool { return in.deleted }

// CompileEpoch returns the current compile epoch. Cached compiled dispatch
// whose remembered epoch differs must be discarded.
func (in *Interp) CompileEpoch() uint64 { return in.compileEpoch }

// CommandCount returns the number of commands invoked so far.
func (in *Interp) CommandCount() uint64 { return in.cmdCount }

// SetMaxDepth sets the limit on nested evaluations and returns the previous
// limit. If depth is not positive the limit is left unchanged.
func (in *Interp) SetMaxDepth(depth int) int {
	old := in.maxDepth
	if depth > 0 {
		in.maxDepth = depth
	}
	return old
}

// Var returns the value of an interpreter variable.
func (in *Interp) Var(name string) (string, error) {
	v, ok := in.vars[name]
	if !ok {
		return "", errs.NoSuchVariable{Name: name}
	}
	return v, nil
}

// SetVar sets an interpreter variable.
func (in *Interp) SetVar(name, value string) { in.vars[name] = value }

// UnsetVar removes an interpreter variable. Removing a variable that is not
// set is not an error.
func (in *Interp) UnsetVar(name string) { delete(in.vars, name) }

// Preserve places a hold on the interpreter: while any holds are
// outstanding, teardown of a deleted interpreter is deferred. Sections that
// call back into user code take a hold so the interpreter cannot be freed
// under their feet.
func (in *Interp) Preserve() { in.holds++ }

// Release removes a hold placed by Preserve. Releasing the last hold on a
// deleted interpreter runs the deferred teardown synchronously.
func (in *Interp) Release() {
	in.holds--
	if in.holds == 0 && in.deleted && !in.finalized {
		in.finalize()
	}
}

// Delete marks the interpreter as deleted. No further evaluation is
// accepted. If no holds are outstanding the interpreter is torn down
// immediately; otherwise teardown runs when the last hold is released.
func (in *Interp) Delete() {
	if in.deleted {
		return
	}
	in.deleted = true
	in.compileEpoch++
	if in.holds == 0 {
		in.finalize()
	}
}

// finalize tears the interpreter down: the namespace tree is dismantled
// first, then association data is cleaned up, so that command delete hooks
// can still query namespace structure while it is being dismantled.
func (in *Interp) finalize() {
	in.finalized = true
	logger.Println("tearing down interpreter")

	// Hidden commands go first; they are only reachable through the
	// interpreter itself.
	for len(in.hidden) > 0 {
		for _, c := range in.hidden {
			c.Delete()
			break
		}
	}
	in.teardownNs(in.global)

	// Association-data cleanup hooks may register new entries; keep going
	// until the table stays empty.
	for len(in.assoc) > 0 {
		names := make([]string, 0, len(in.assoc))
		for name := range in.assoc {
			names = append(names, name)
		}
		for _, name := range names {
			d, ok := in.assoc[name]
			if !ok {
				continue
			}
			delete(in.assoc, name)
			if d.cleanup != nil {
				d.cleanup(d.data)
			}
		}
	}

	in.vars = nil
}

// teardownNs deletes every command in the namespace and recurses into child
// namespaces. Delete hooks may register new commands, so deletion loops
// until the table stays empty.
func (in *Interp) teardownNs(ns *Ns) {
	for len(ns.cmds) > 0 {
		for _, c := range ns.cmds {
			c.Delete()
			break
		}
	}
	for len(ns.children) > 0 {
		for name, child := range ns.children {
			in.teardownNs(child)
			delete(ns.children, name)
			break
		}
	}
}

// ready reports whether the interpreter can start a new nested evaluation.
// It distinguishes a deleted interpreter from exceeded recursion depth.
func (in *Interp) ready() error {
	if in.deleted {
		return newException(errs.InterpreterDeleted{})
	}
	if in.numLevels > in.maxDepth || !stackHeadroomOK() {
		return newException(errs.TooManyNestedEvaluations{})
	}
	return nil
}
