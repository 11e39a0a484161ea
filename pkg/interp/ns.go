package interp

import (
	"fmt"
	"sort"
	"strings"
)

// QualSep is the namespace qualifier separator in command and namespace
// names.
const QualSep = "::"

// Ns is one namespace: a named scope owning a command table, organized as a
// tree rooted at the global namespace.
type Ns struct {
	// name is the tail of the namespace's name; empty for the global
	// namespace.
	name string
	// fullName is the fully qualified name, "::" for the global namespace
	// and "::a::b" for nested ones.
	fullName string
	parent   *Ns
	children map[string]*Ns

	cmds map[string]*Command

	// exported lists patterns of command names exported from this
	// namespace for importing.
	exported []string

	// lookupEpoch is bumped whenever the outcome of name resolution inside
	// this namespace may have changed: command creation, deletion, rename,
	// and shadow invalidation. Cached resolutions remember it.
	lookupEpoch uint64

	interp *Interp
}

// Name returns the namespace's tail name; it is empty for the global
// namespace.
func (ns *Ns) Name() string { return ns.name }

// FullName returns the fully qualified name of the namespace.
func (ns *Ns) FullName() string { return ns.fullName }

// Parent returns the parent namespace, or nil for the global namespace.
func (ns *Ns) Parent() *Ns { return ns.parent }

// LookupEpoch returns the namespace's lookup epoch. Cached resolutions made
// against an older epoch must re-resolve by name.
func (ns *Ns) LookupEpoch() uint64 { return ns.lookupEpoch }

// Export adds a name pattern to the namespace's export list.
func (ns *Ns) Export(pattern string) {
	ns.exported = append(ns.exported, pattern)
}

// CommandNames returns the tail names of all commands registered in the
// namespace, sorted.
func (ns *Ns) CommandNames() []string {
	names := make([]string, 0, len(ns.cmds))
	for name := range ns.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// invalidateLookup marks any cached lookups into this namespace as stale.
func (ns *Ns) invalidateLookup() { ns.lookupEpoch++ }

// qualName joins the namespace's full name with a command tail name.
func (ns *Ns) qualName(tail string) string {
	if ns.parent == nil {
		return ns.fullName + tail
	}
	return ns.fullName + QualSep + tail
}

// namespaceFor resolves the namespace part of a possibly qualified name,
// returning the namespace and the tail name. With create set, missing
// namespaces along the qualifier path are created. Without create, a missing
// namespace yields a nil namespace and no error. A name with an empty tail
// or an empty qualifier component is invalid.
func (in *Interp) namespaceFor(name string, create bool) (*Ns, string, error) {
	if !strings.Contains(name, QualSep) {
		return in.global, name, nil
	}
	path := strings.Split(strings.TrimPrefix(name, QualSep), QualSep)
	tail := path[len(path)-1]
	if tail == "" {
		return nil, "", fmt.Errorf("bad command name %q", name)
	}
	ns := in.global
	for _, part := range path[:len(path)-1] {
		if part == "" {
			return nil, "", fmt.Errorf("bad command name %q", name)
		}
		child, ok := ns.children[part]
		if !ok {
			if !create {
				return nil, tail, nil
			}
			child = &Ns{
				name:     part,
				fullName: ns.qualName(part),
				parent:   ns,
				children: make(map[string]*Ns),
				cmds:     make(map[string]*Command),
				interp:   in,
			}
			ns.children[part] = child
		}
		ns = child
	}
	return ns, tail, nil
}

// EnsureNamespace resolves a fully qualified namespace name, creating
// namespaces along the path as needed. The name "::" resolves to the global
// namespace.
func (in *Interp) EnsureNamespace(name string) (*Ns, error) {
	if name == QualSep || name == "" {
		return in.global, nil
	}
	// Resolve with a placeholder tail so that the whole name is treated as
	// a namespace path.
	ns, _, err := in.namespaceFor(name+QualSep+"x", true)
	if err != nil {
		return nil, fmt.Errorf("bad namespace name %q", name)
	}
	return ns, nil
}

// FindNamespace resolves a fully qualified namespace name without creating
// anything. It returns nil if the namespace does not exist.
func (in *Interp) FindNamespace(name string) *Ns {
	if name == QualSep || name == "" {
		return in.global
	}
	ns, _, err := in.namespaceFor(name+QualSep+"x", false)
	if err != nil {
		return nil
	}
	return ns
}

// FindCommand resolves a command name in the global context: a qualified
// name resolves strictly along its qualifier path; a bare name resolves in
// the global namespace. It returns nil if the name does not resolve.
func (in *Interp) FindCommand(name string) *Command {
	return in.findCommandIn(in.global, name)
}

// FindCommandIn resolves a command name relative to a namespace: a bare name
// is searched in the namespace first and then in the global namespace; a
// qualified name resolves strictly along its qualifier path, anchored at the
// global namespace if it starts with "::" and at ns otherwise.
func (in *Interp) FindCommandIn(ns *Ns, name string) *Command {
	return in.findCommandIn(ns, name)
}

func (in *Interp) findCommandIn(ns *Ns, name string) *Command {
	if !strings.Contains(name, QualSep) {
		if c, ok := ns.cmds[name]; ok {
			return c
		}
		if ns != in.global {
			return in.global.cmds[name]
		}
		return nil
	}
	start := ns
	if strings.HasPrefix(name, QualSep) {
		start = in.global
	}
	target, tail, err := in.resolveQualified(start, name)
	if err != nil || target == nil {
		return nil
	}
	return target.cmds[tail]
}

// resolveQualified walks a qualified name from the given namespace without
// creating anything.
func (in *Interp) resolveQualified(start *Ns, name string) (*Ns, string, error) {
	path := strings.Split(strings.TrimPrefix(name, QualSep), QualSep)
	tail := path[len(path)-1]
	if tail == "" {
		return nil, "", fmt.Errorf("bad command name %q", name)
	}
	ns := start
	for _, part := range path[:len(path)-1] {
		if part == "" {
			return nil, "", fmt.Errorf("bad command name %q", name)
		}
		child, ok := ns.children[part]
		if !ok {
			return nil, tail, nil
		}
		ns = child
	}
	return ns, tail, nil
}

// invalidateShadowed bumps lookup caches of every namespace whose bare-name
// resolution of the given name may have changed because a command of that
// name appeared in ns. Bare names fall back from their own namespace to the
// global one, so a new global command affects every descendant namespace
// that does not define the name itself.
func (in *Interp) invalidateShadowed(ns *Ns, name string) {
	ns.invalidateLookup()
	if ns != in.global {
		return
	}
	var walk func(*Ns)
	walk = func(d *Ns) {
		for _, child := range d.children {
			if _, shadows := child.cmds[name]; !shadows {
				child.invalidateLookup()
			}
			walk(child)
		}
	}
	walk(in.global)
}
