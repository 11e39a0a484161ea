package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"src.tacl.dev/pkg/diag"
	"src.tacl.dev/pkg/interp"
	"src.tacl.dev/pkg/parse"
)

// Configuration for the script mode.
type scriptCfg struct {
	Cmd         bool
	CompileOnly bool
	JSON        bool
}

// Executes a script.
func script(in *interp.Interp, fds [3]*os.File, args []string, cfg *scriptCfg) int {
	arg0 := args[0]

	var name, code string
	if cfg.Cmd {
		name = "code from -c"
		code = arg0
	} else {
		var err error
		name, err = filepath.Abs(arg0)
		if err != nil {
			fmt.Fprintf(fds[2],
				"cannot get full path of script %q: %v\n", arg0, err)
			return 2
		}
		code, err = readFileUTF8(name)
		if err != nil {
			fmt.Fprintf(fds[2], "cannot read script %q: %v\n", name, err)
			return 2
		}
	}
	in.SetVar("argv0", name)
	in.SetVar("argv", parse.MakeList(args[1:]))

	src := parse.Source{Name: name, Code: code}
	if cfg.CompileOnly {
		_, err := parse.ParseScript(src)
		if cfg.JSON {
			fmt.Fprintf(fds[1], "%s\n", errorsToJSON(err))
		} else if err != nil {
			diag.ShowError(fds[2], err)
		}
		if err != nil {
			return 2
		}
	} else {
		value, err := in.EvalSource(src, 0)
		if err != nil {
			diag.ShowError(fds[2], err)
			return 2
		}
		if value != "" {
			fmt.Fprintln(fds[1], value)
		}
	}

	return 0
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readFileUTF8(fname string) (string, error) {
	bytes, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errSourceNotUTF8
	}
	return string(bytes), nil
}

// An auxiliary struct for converting errors with diagnostics information to JSON.
type errorInJSON struct {
	FileName string `json:"fileName"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Message  string `json:"message"`
}

// Converts a parse error into JSON.
func errorsToJSON(err error) []byte {
	var converted []errorInJSON
	var parseErr *parse.Error
	if errors.As(err, &parseErr) {
		converted = append(converted, errorInJSON{
			parseErr.Context.Name,
			parseErr.Context.From, parseErr.Context.To, parseErr.Message})
	} else if err != nil {
		converted = append(converted, errorInJSON{Message: err.Error()})
	}

	jsonError, errMarshal := json.Marshal(converted)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the errors to JSON"}]`)
	}
	return jsonError
}
