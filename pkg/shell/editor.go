package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"src.tacl.dev/pkg/strutil"
	"src.tacl.dev/pkg/sys"
)

// minEditor reads lines of input with a fixed prompt. The prompt is only
// written when standard input is a terminal, so that piping a script into an
// interactive session does not litter stderr.
type minEditor struct {
	in     *bufio.Reader
	out    io.Writer
	prompt bool
}

func newMinEditor(in, out *os.File) *minEditor {
	return &minEditor{bufio.NewReader(in), out, sys.IsATTY(in.Fd())}
}

func (ed *minEditor) ReadCode() (string, error) {
	if ed.prompt {
		fmt.Fprint(ed.out, "tacl> ")
	}
	line, err := ed.in.ReadString('\n')
	return strutil.ChopLineEnding(line), err
}
