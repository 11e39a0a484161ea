// Tacl is an embeddable command language. The interpreter library lives in
// pkg/interp; this binary wraps it in a shell for interactive use and
// scripting, and a language server for editor integration.
package main

import (
	"os"

	"src.tacl.dev/pkg/buildinfo"
	"src.tacl.dev/pkg/lsp"
	"src.tacl.dev/pkg/prog"
	"src.tacl.dev/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(buildinfo.Program, lsp.Program{}, shell.Program{})))
}
