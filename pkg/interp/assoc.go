package interp

import "strconv"

// assocData is one association-data entry: host data attached to the
// interpreter under a string key, with an optional cleanup run when the
// entry is removed or the interpreter is torn down.
type assocData struct {
	data    any
	cleanup func(data any)
}

// SetAssocData attaches data to the interpreter under the given key,
// replacing any previous entry without running its cleanup. The cleanup, if
// non-nil, runs when the entry is deleted or the interpreter is torn down.
func (in *Interp) SetAssocData(key string, data any, cleanup func(data any)) {
	in.assoc[key] = &assocData{data: data, cleanup: cleanup}
}

// AssocData returns the data attached under the given key.
func (in *Interp) AssocData(key string) (any, bool) {
	d, ok := in.assoc[key]
	if !ok {
		return nil, false
	}
	return d.data, true
}

// DeleteAssocData removes the entry under the given key and runs its
// cleanup.
func (in *Interp) DeleteAssocData(key string) {
	d, ok := in.assoc[key]
	if !ok {
		return
	}
	delete(in.assoc, key)
	if d.cleanup != nil {
		d.cleanup(d.data)
	}
}

// CallWhenDeleted registers a hook to run when the interpreter is torn down
// and returns a key that can cancel the registration. Keys are generated
// from a per-interpreter counter, so hooks registered on different
// interpreters never collide.
func (in *Interp) CallWhenDeleted(hook func(in *Interp)) string {
	in.deleteHookSeq++
	key := "delete hook #" + strconv.Itoa(in.deleteHookSeq)
	in.SetAssocData(key, hook, func(data any) {
		data.(func(in *Interp))(in)
	})
	return key
}

// DontCallWhenDeleted cancels a hook registered with CallWhenDeleted without
// running it.
func (in *Interp) DontCallWhenDeleted(key string) {
	delete(in.assoc, key)
}
