//go:build windows

package sys

import "os"

// Ignored reports whether a signal delivered by NotifySignals carries no
// information worth handling.
func Ignored(sig os.Signal) bool { return false }

// SignalName returns the name of a signal.
func SignalName(sig os.Signal) string { return sig.String() }
