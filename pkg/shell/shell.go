// Package shell is the entry point for the terminal interface of tacl.
package shell

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"src.tacl.dev/pkg/interp"
	"src.tacl.dev/pkg/logutil"
	"src.tacl.dev/pkg/prog"
	"src.tacl.dev/pkg/sys"
)

var logger = logutil.GetLogger("[shell] ")

// errInterrupted is delivered through the interpreter's async latch when the
// process receives an interrupt signal.
var errInterrupted = errors.New("interrupted")

// Program is the shell subprogram.
type Program struct{}

func (p Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	in := newInterp(f, fds[2])
	defer in.Delete()
	cleanup := initSignal(in, fds[2])
	defer cleanup()

	if len(args) > 0 {
		exit := script(in, fds, args,
			&scriptCfg{Cmd: f.CodeInArg, CompileOnly: f.CompileOnly, JSON: f.JSON})
		return prog.Exit(exit)
	}
	interact(in, fds, &interactCfg{DB: f.DB})
	return nil
}

// newInterp creates the interpreter a shell session runs on, applying the
// restriction profile if one was given on the command line.
func newInterp(f *prog.Flags, stderr *os.File) *interp.Interp {
	in := interp.New()
	if f.Profile != "" {
		err := applyProfile(in, f.Profile)
		if err != nil {
			fmt.Fprintln(stderr, "Warning:", err)
		}
	}
	return in
}

func initSignal(in *interp.Interp, stderr *os.File) func() {
	sigCh := sys.NotifySignals()
	go func() {
		for sig := range sigCh {
			if sys.Ignored(sig) {
				continue
			}
			logger.Println("signal", sys.SignalName(sig))
			handleSignal(in, sig, stderr)
		}
	}()
	return func() { signal.Stop(sigCh) }
}
