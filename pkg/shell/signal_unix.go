//go:build unix

package shell

import (
	"fmt"
	"os"
	"syscall"

	"src.tacl.dev/pkg/interp"
	"src.tacl.dev/pkg/sys"
)

func handleSignal(in *interp.Interp, sig os.Signal, stderr *os.File) {
	switch sig {
	case syscall.SIGINT:
		in.SignalAsync(errInterrupted)
	case syscall.SIGHUP:
		syscall.Kill(0, syscall.SIGHUP)
		os.Exit(0)
	case syscall.SIGUSR1:
		fmt.Fprint(stderr, sys.DumpStack())
	}
}
