package shell

import (
	"os"
	"syscall"

	"src.tacl.dev/pkg/interp"
)

func handleSignal(in *interp.Interp, sig os.Signal, stderr *os.File) {
	switch sig {
	case os.Interrupt:
		in.SignalAsync(errInterrupted)
	case syscall.SIGTERM:
		os.Exit(0)
	}
}
