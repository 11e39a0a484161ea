package diag

import (
	"fmt"
	"io"
)

// ShowError shows an error to the writer. It uses the Show method if the
// error implements Shower, and prints the error message in bold red
// otherwise.
func ShowError(w io.Writer, err error) {
	if shower, ok := err.(Shower); ok {
		fmt.Fprintln(w, shower.Show(""))
	} else {
		fmt.Fprintf(w, "\033[31;1m%s\033[m\n", err.Error())
	}
}
