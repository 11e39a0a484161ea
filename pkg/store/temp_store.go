package store

import (
	"path/filepath"
	"testing"
)

// MustTempStore returns a Store backed by a file in a temporary directory,
// closed and removed when the test finishes.
func MustTempStore(tb testing.TB) Store {
	tb.Helper()
	st, err := NewStore(filepath.Join(tb.TempDir(), "tacl.db"))
	if err != nil {
		tb.Fatalf("create temporary store: %v", err)
	}
	tb.Cleanup(func() { st.Close() })
	return st
}
