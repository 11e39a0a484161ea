package interp

import (
	"fmt"
	"strings"

	"src.tacl.dev/pkg/interp/errs"
)

// Register creates a command under the given name, which may be qualified;
// namespaces along a qualified name are created as needed. Registering over
// an existing name deletes the old command first, firing its delete traces,
// but import references made from the old command survive and are relinked
// to the new one. The returned record stays valid until the command is
// deleted.
func (in *Interp) Register(name string, fn Fn) (*Command, error) {
	if name == "" {
		return nil, errs.InvalidCommandName{Name: name}
	}
	ns, tail, err := in.namespaceFor(name, true)
	if err != nil || tail == "" {
		return nil, errs.InvalidCommandName{Name: name}
	}

	var inherited []*Command
	if old, ok := ns.cmds[tail]; ok {
		// Detach import references before deleting so they are not torn
		// down with the old command; they are relinked below.
		inherited = old.importRefs
		old.importRefs = nil
		in.deleteCommand(old)
		if recreated, ok := ns.cmds[tail]; ok {
			// A delete trace or hook re-registered the name. Discard the
			// recreated command without another round of teardown, which
			// could recurse here forever.
			recreated.name = ""
			recreated.bumpEpoch()
		}
	}

	c := &Command{fn: fn, ns: ns, name: tail}
	ns.cmds[tail] = c
	for _, imp := range inherited {
		imp.importedFrom = c
	}
	c.importRefs = inherited
	in.invalidateShadowed(ns, tail)
	return c, nil
}

// RegisterHidden creates a command directly in the hidden table under the
// given token. The token must be unqualified.
func (in *Interp) RegisterHidden(token string, fn Fn) (*Command, error) {
	if token == "" || strings.Contains(token, QualSep) {
		return nil, errs.InvalidCommandName{Name: token}
	}
	if _, ok := in.hidden[token]; ok {
		return nil, fmt.Errorf("hidden command named %q already exists", token)
	}
	c := &Command{fn: fn, ns: in.global, name: token, hidden: true}
	in.hidden[token] = c
	return c, nil
}

// Import creates a command in the given namespace that forwards to src and
// is recorded as an import of it: deleting src deletes the import too, and
// deleting the import unlinks it from src. The name must be unqualified.
func (in *Interp) Import(ns *Ns, name string, src *Command) (*Command, error) {
	if ns == nil {
		ns = in.global
	}
	if name == "" || strings.Contains(name, QualSep) {
		return nil, errs.InvalidCommandName{Name: name}
	}
	if _, ok := ns.cmds[name]; ok {
		return nil, fmt.Errorf("can't import command %q: already exists", name)
	}
	if src.state != cmdActive || src.name == "" {
		return nil, fmt.Errorf("can't import command %q: source is deleted", name)
	}
	imp := &Command{ns: ns, name: name, importedFrom: src}
	// Forward through the link rather than a captured record, so that
	// redefining the source relinks the import to the new procedure.
	imp.fn = func(in *Interp, args []string) (string, error) {
		return imp.importedFrom.fn(in, args)
	}
	ns.cmds[name] = imp
	src.importRefs = append(src.importRefs, imp)
	in.invalidateShadowed(ns, name)
	return imp, nil
}

// Rename moves the command registered under oldName to newName. An empty
// newName deletes the command instead. Rename traces fire after the move
// has provisionally happened; if the rename then turns out to be invalid
// the move is rolled back and no state change survives, though the traces
// have still run.
func (in *Interp) Rename(oldName, newName string) error {
	cmd := in.FindCommand(oldName)
	if cmd == nil {
		return fmt.Errorf("can't rename %q: command doesn't exist", oldName)
	}
	if newName == "" {
		in.deleteCommand(cmd)
		return nil
	}

	newNs, newTail, err := in.namespaceFor(newName, true)
	if err != nil || newTail == "" {
		return fmt.Errorf("can't rename to %q: bad command name", newName)
	}
	if _, ok := newNs.cmds[newTail]; ok {
		return fmt.Errorf("can't rename to %q: command already exists", newName)
	}
	if cmd.aliasTarget != "" {
		// Moving an alias onto the name it forwards to would make it call
		// itself.
		target := in.findCommandIn(newNs, cmd.aliasTarget)
		if target == cmd || (target == nil && in.samePlace(newNs, newTail, cmd.aliasTarget)) {
			return fmt.Errorf("cannot define or rename alias %q: would create a loop", newTail)
		}
	}

	oldNs, oldTail := cmd.ns, cmd.name
	oldFull := cmd.FullName()

	// Move provisionally so that rename traces observe the command under
	// both names resolving to the same record.
	newNs.cmds[newTail] = cmd

	in.fireTraces(cmd, TraceRename, oldFull, newNs.qualName(newTail))

	if cmd.state != cmdActive {
		// A trace deleted the command out from under the rename. The
		// delete path already removed the old entry; drop the new one.
		delete(newNs.cmds, newTail)
		return fmt.Errorf("can't rename %q: command doesn't exist", oldName)
	}
	if cmd.ns != oldNs || cmd.name != oldTail {
		// A trace renamed the command itself. Its move wins; abandon this
		// rename and drop the provisional entry if it became stale.
		if cmd.name != newTail && newNs.cmds[newTail] == cmd {
			delete(newNs.cmds, newTail)
		}
		return nil
	}

	delete(oldNs.cmds, oldTail)
	cmd.ns = newNs
	cmd.name = newTail
	cmd.bumpEpoch()
	in.invalidateShadowed(oldNs, oldTail)
	in.invalidateShadowed(newNs, newTail)
	return nil
}

// samePlace reports whether a name resolved from the global context denotes
// the slot (ns, tail).
func (in *Interp) samePlace(ns *Ns, tail, name string) bool {
	target, t2, err := in.namespaceFor(name, false)
	return err == nil && target == ns && t2 == tail
}

// Unregister removes the command registered under the given name, firing its
// delete traces and delete hook and recursively deleting commands imported
// from it. It returns false if no such command exists.
func (in *Interp) Unregister(name string) bool {
	cmd := in.FindCommand(name)
	if cmd == nil {
		return false
	}
	in.deleteCommand(cmd)
	return true
}

// DeleteCommand removes the given command record from its registry. Deleting
// an already-deleted command is a no-op.
func (in *Interp) DeleteCommand(cmd *Command) { in.deleteCommand(cmd) }

func (in *Interp) deleteCommand(cmd *Command) {
	if cmd.state == cmdDeleting {
		// Re-entered from a delete trace or hook: the command is already
		// being torn down, just make sure its registry entry is gone so
		// the name stops resolving.
		in.removeEntry(cmd)
		return
	}
	cmd.state = cmdDeleting
	cmd.bumpEpoch()

	if cmd.traces != nil {
		in.fireTraces(cmd, TraceDelete, cmd.FullName(), "")
		// Delete traces fire once; discard them so re-entry cannot fire
		// them again.
		cmd.traces = nil
	}
	if cmd.deleteHook != nil {
		hook := cmd.deleteHook
		cmd.deleteHook = nil
		hook()
	}
	for len(cmd.importRefs) > 0 {
		in.deleteCommand(cmd.importRefs[0])
	}
	if cmd.importedFrom != nil {
		cmd.importedFrom.unlinkImport(cmd)
		cmd.importedFrom = nil
	}
	in.removeEntry(cmd)
	// Leave fn in place for callers still holding a reference from before
	// the deletion started; new dispatches can no longer resolve the name.
}

// removeEntry removes the command's registry entry using its own remembered
// location, which is immune to traces having re-registered the name.
func (in *Interp) removeEntry(cmd *Command) {
	if cmd.name == "" {
		return
	}
	if cmd.hidden {
		if in.hidden[cmd.name] == cmd {
			delete(in.hidden, cmd.name)
		}
	} else if cmd.ns.cmds[cmd.name] == cmd {
		delete(cmd.ns.cmds, cmd.name)
		in.invalidateShadowed(cmd.ns, cmd.name)
	}
	cmd.name = ""
}

func (c *Command) unlinkImport(imp *Command) {
	for i, r := range c.importRefs {
		if r == imp {
			c.importRefs = append(c.importRefs[:i], c.importRefs[i+1:]...)
			return
		}
	}
}

// Hide moves the command registered under name out of the global namespace
// into the hidden table under token. Hidden commands do not resolve during
// evaluation and can only be run through InvokeHidden. Both name and token
// must be unqualified, and the command must live in the global namespace.
func (in *Interp) Hide(name, token string) error {
	if strings.Contains(token, QualSep) {
		return fmt.Errorf("cannot use namespace qualifiers in hidden command token (rename)")
	}
	cmd := in.FindCommand(name)
	if cmd == nil {
		return errs.UnknownCommand{Name: name}
	}
	if cmd.ns != in.global || strings.Contains(name, QualSep) {
		return fmt.Errorf("can only hide global namespace commands (use rename then hide)")
	}
	if _, ok := in.hidden[token]; ok {
		return fmt.Errorf("hidden command named %q already exists", token)
	}
	delete(in.global.cmds, cmd.name)
	in.invalidateShadowed(in.global, cmd.name)
	cmd.name = token
	cmd.hidden = true
	in.hidden[token] = cmd
	cmd.bumpEpoch()
	return nil
}

// Expose moves the hidden command registered under token back into the
// global namespace under name, which must be unqualified.
func (in *Interp) Expose(token, name string) error {
	if strings.Contains(name, QualSep) {
		return fmt.Errorf("can not expose to a namespace (use expose to toplevel, then rename)")
	}
	cmd, ok := in.hidden[token]
	if !ok {
		return fmt.Errorf("unknown hidden command %q", token)
	}
	if name == "" {
		return errs.InvalidCommandName{Name: name}
	}
	if _, exists := in.global.cmds[name]; exists {
		return fmt.Errorf("exposed command %q already exists", name)
	}
	delete(in.hidden, token)
	cmd.name = name
	cmd.hidden = false
	cmd.ns = in.global
	in.global.cmds[name] = cmd
	cmd.bumpEpoch()
	in.invalidateShadowed(in.global, name)
	return nil
}

// HiddenCommand returns the hidden command registered under token, or nil.
func (in *Interp) HiddenCommand(token string) *Command { return in.hidden[token] }

// HiddenTokens returns the tokens of all hidden commands, in no particular
// order.
func (in *Interp) HiddenTokens() []string {
	tokens := make([]string, 0, len(in.hidden))
	for t := range in.hidden {
		tokens = append(tokens, t)
	}
	return tokens
}
