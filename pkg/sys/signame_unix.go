//go:build unix

package sys

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Ignored reports whether a signal delivered by NotifySignals carries no
// information worth handling. SIGURG is used internally by the Go runtime
// and occurs with great frequency.
func Ignored(sig os.Signal) bool {
	return sig == syscall.SIGURG
}

// SignalName returns the name of a signal, like "SIGINT".
func SignalName(sig os.Signal) string {
	return unix.SignalName(sig.(syscall.Signal))
}
