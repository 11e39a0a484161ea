package interp

// Fn is the procedure a command runs when invoked. It receives the owning
// interpreter and the full argument vector, args[0] being the name the
// command was invoked as. A normal completion returns a result string and a
// nil error; any error is surfaced to the caller, non-normal control flow
// via FlowError or ReturnValue.
type Fn func(in *Interp, args []string) (string, error)

type cmdState int

const (
	cmdActive cmdState = iota
	// cmdDeleting means deletion of the command has started: delete traces
	// are firing or the command is otherwise mid-teardown.
	cmdDeleting
)

// Command is one registered command. Commands are reference counted:
// dispatch holds a reference across the call, and deletion defers freeing
// the record until the count drains.
type Command struct {
	fn         Fn
	deleteHook func()

	// ns and name locate the command's registry entry. An empty name means
	// the entry has been removed and the record lingers only because of
	// outstanding references.
	ns   *Ns
	name string

	hidden bool

	// epoch is bumped whenever the record's identity changes: rename,
	// delete, hide, expose. Cached pointers to the record check it
	// before reuse, and dispatch re-resolves mid-call when a trace
	// bumped it.
	epoch uint64

	refCount int
	state    cmdState

	// compiled marks commands whose registration participates in compiled
	// code; structural changes to such commands bump the interpreter's
	// compile epoch.
	compiled bool

	// traceActive suppresses recursive trace firing while this command's
	// traces are being called.
	traceActive bool
	traces      []*CommandTrace

	// aliasTarget, when non-empty, names the command this one forwards to.
	// Rename uses it to reject moves that would make an alias resolve to
	// itself.
	aliasTarget string

	// importedFrom points at the command this one was created as an import
	// of, and importRefs lists the imports created from this one. Deleting
	// a command deletes its imports, recursively.
	importedFrom *Command
	importRefs   []*Command
}

// Name returns the tail name the command is currently registered under, or
// "" if it has been removed from its registry.
func (c *Command) Name() string { return c.name }

// FullName returns the command's fully qualified name, or "" if the command
// has been removed from its registry.
func (c *Command) FullName() string {
	if c.name == "" || c.ns == nil {
		return ""
	}
	return c.ns.qualName(c.name)
}

// Namespace returns the namespace the command is registered in.
func (c *Command) Namespace() *Ns { return c.ns }

// Epoch returns the command's epoch. See CmdRef.
func (c *Command) Epoch() uint64 { return c.epoch }

// IsDeleted reports whether deletion of the command has begun.
func (c *Command) IsDeleted() bool { return c.state == cmdDeleting }

// Delete removes the command from its registry; see Interp.DeleteCommand.
func (c *Command) Delete() { c.ns.interp.deleteCommand(c) }

// SetDeleteHook installs a cleanup function that runs when the command is
// deleted, after its delete traces have fired.
func (c *Command) SetDeleteHook(hook func()) { c.deleteHook = hook }

// SetAliasTarget records the name of the command this one forwards to,
// enabling alias loop detection on rename. An empty target clears it.
func (c *Command) SetAliasTarget(target string) { c.aliasTarget = target }

// SetCompiled marks the command as participating in compiled code.
func (c *Command) SetCompiled() { c.compiled = true }

// retain takes a reference to the command record.
func (c *Command) retain() { c.refCount++ }

// release drops a reference. The record is not explicitly freed; dropping
// the last reference to a removed record simply lets it be collected.
func (c *Command) release() {
	if c.refCount > 0 {
		c.refCount--
	}
}

// bumpEpoch invalidates cached references to the command and, if the
// command participates in compiled code, compiled code too.
func (c *Command) bumpEpoch() {
	c.epoch++
	if c.compiled && c.ns != nil {
		c.ns.interp.compileEpoch++
	}
}

// hasExecTraces reports whether any execution trace is attached to the
// command.
func (c *Command) hasExecTraces() bool {
	for _, t := range c.traces {
		if t.ops&(TraceEnter|TraceLeave) != 0 {
			return true
		}
	}
	return false
}

// CmdRef is a cached command resolution: a name, the record it resolved to,
// and the epochs the resolution was made under. Get revalidates cheaply and
// re-resolves only when something moved.
type CmdRef struct {
	name string
	ns   *Ns

	cmd      *Command
	cmdEpoch uint64
	nsEpoch  uint64
}

// NewCmdRef returns a cached resolver for name relative to ns. A nil ns
// resolves in the global namespace.
func (in *Interp) NewCmdRef(ns *Ns, name string) *CmdRef {
	if ns == nil {
		ns = in.global
	}
	return &CmdRef{name: name, ns: ns}
}

// Get returns the command the name currently resolves to, or nil. The cached
// record is reused only while both its own epoch and the namespace's lookup
// epoch are unchanged.
func (r *CmdRef) Get() *Command {
	if r.cmd != nil && r.cmd.epoch == r.cmdEpoch && r.ns.lookupEpoch == r.nsEpoch {
		return r.cmd
	}
	c := r.ns.interp.findCommandIn(r.ns, r.name)
	r.cmd = c
	r.nsEpoch = r.ns.lookupEpoch
	if c != nil {
		r.cmdEpoch = c.epoch
	}
	return c
}

// CommandInfo is a point-in-time snapshot of a command's registration.
type CommandInfo struct {
	Name      string
	Namespace string
	Hidden    bool
	Compiled  bool
	// Imports counts import references created from the command.
	Imports int
}

// CommandInfo returns a snapshot of the named command's registration.
func (in *Interp) CommandInfo(name string) (CommandInfo, bool) {
	cmd := in.FindCommand(name)
	if cmd == nil {
		return CommandInfo{}, false
	}
	return cmd.Info(), true
}

// SetCommandInfo replaces the procedure and delete hook of the named
// command, leaving its registration, traces and import links in place. A nil
// fn keeps the current procedure.
func (in *Interp) SetCommandInfo(name string, fn Fn, deleteHook func()) bool {
	cmd := in.FindCommand(name)
	if cmd == nil {
		return false
	}
	if fn != nil {
		cmd.fn = fn
	}
	cmd.deleteHook = deleteHook
	return true
}

// Info returns a snapshot of the command's registration, or a zero
// CommandInfo if the command has been removed.
func (c *Command) Info() CommandInfo {
	if c.name == "" {
		return CommandInfo{}
	}
	return CommandInfo{
		Name:      c.name,
		Namespace: c.ns.fullName,
		Hidden:    c.hidden,
		Compiled:  c.compiled,
		Imports:   len(c.importRefs),
	}
}
