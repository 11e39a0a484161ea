package shell

import (
	"fmt"
	"io"
	"os"
	"strings"

	"src.tacl.dev/pkg/diag"
	"src.tacl.dev/pkg/interp"
	"src.tacl.dev/pkg/parse"
	"src.tacl.dev/pkg/store"
)

// Configuration for the interactive mode.
type interactCfg struct {
	DB string
}

// Runs an interactive session: a read-eval-print loop over stdin. Commands
// are recorded in the history database if one was opened.
func interact(in *interp.Interp, fds [3]*os.File, cfg *interactCfg) {
	var st store.Store
	if cfg.DB != "" {
		s, err := store.NewStore(cfg.DB)
		if err != nil {
			fmt.Fprintln(fds[2], "Warning: cannot open database:", err)
			fmt.Fprintln(fds[2], "Command history will not be saved.")
		} else {
			st = s
			defer st.Close()
		}
	}

	ed := newMinEditor(fds[0], fds[2])
	cmdNum := 0

	for {
		cmdNum++

		line, err := ed.ReadCode()
		if err == io.EOF {
			break
		} else if err != nil {
			fmt.Fprintln(fds[2], "error reading input:", err)
			break
		}

		if st != nil && strings.TrimSpace(line) != "" {
			_, err := st.AddCmd(line)
			if err != nil {
				logger.Println("failed to save command to history:", err)
			}
		}

		value, err := in.EvalSource(
			parse.Source{Name: fmt.Sprintf("[tty %v]", cmdNum), Code: line}, 0)
		if err != nil {
			diag.ShowError(fds[2], err)
		} else if value != "" {
			fmt.Fprintln(fds[1], value)
		}
	}
}
