package interp

import (
	"errors"
	"strconv"
	"strings"

	"src.tacl.dev/pkg/interp/errs"
	"src.tacl.dev/pkg/must"
	"src.tacl.dev/pkg/parse"
)

// registerBuiltins installs the bootstrap command set a fresh interpreter
// starts with. Hosts may delete, rename or hide any of them.
func registerBuiltins(in *Interp) {
	reg := func(name string, fn Fn) {
		must.OK1(in.Register(name, fn))
	}
	reg("put", builtinPut)
	reg("eval", builtinEval)
	reg("catch", builtinCatch)
	reg("error", builtinError)
	reg("return", builtinReturn)
	reg("break", builtinBreak)
	reg("continue", builtinContinue)
	reg("rename", builtinRename)
	reg("set", builtinSet)
	reg("unset", builtinUnset)
	reg("incr", builtinIncr)
	reg("while", builtinWhile)
	reg("list", builtinList)
}

func builtinPut(in *Interp, args []string) (string, error) {
	switch len(args) {
	case 1:
		return "", nil
	case 2:
		return args[1], nil
	}
	return "", errs.ArityMismatch{Usage: "put ?value?"}
}

func builtinEval(in *Interp, args []string) (string, error) {
	if len(args) < 2 {
		return "", errs.ArityMismatch{Usage: "eval arg ?arg ...?"}
	}
	script := strings.Join(args[1:], " ")
	return in.evalScript(parse.Source{Name: "eval", Code: script}, 0)
}

func builtinCatch(in *Interp, args []string) (string, error) {
	if len(args) < 2 || len(args) > 3 {
		return "", errs.ArityMismatch{Usage: "catch script ?varName?"}
	}
	result, err := in.evalScript(parse.Source{Name: "catch", Code: args[1]}, 0)
	code := CodeOf(err)
	if err != nil {
		if f, ok := err.(*FlowError); ok {
			result = f.Value
		} else {
			result = err.Error()
		}
	}
	if len(args) == 3 {
		in.SetVar(args[2], result)
	}
	return strconv.Itoa(int(code)), nil
}

func builtinError(in *Interp, args []string) (string, error) {
	if len(args) != 2 {
		return "", errs.ArityMismatch{Usage: "error message"}
	}
	return "", errors.New(args[1])
}

func builtinReturn(in *Interp, args []string) (string, error) {
	switch len(args) {
	case 1:
		return "", ReturnValue("")
	case 2:
		return "", ReturnValue(args[1])
	}
	return "", errs.ArityMismatch{Usage: "return ?value?"}
}

func builtinBreak(in *Interp, args []string) (string, error) {
	if len(args) != 1 {
		return "", errs.ArityMismatch{Usage: "break"}
	}
	return "", ErrBreak
}

func builtinContinue(in *Interp, args []string) (string, error) {
	if len(args) != 1 {
		return "", errs.ArityMismatch{Usage: "continue"}
	}
	return "", ErrContinue
}

func builtinRename(in *Interp, args []string) (string, error) {
	if len(args) != 3 {
		return "", errs.ArityMismatch{Usage: "rename oldName newName"}
	}
	return "", in.Rename(args[1], args[2])
}

func builtinSet(in *Interp, args []string) (string, error) {
	switch len(args) {
	case 2:
		return in.Var(args[1])
	case 3:
		in.SetVar(args[1], args[2])
		return args[2], nil
	}
	return "", errs.ArityMismatch{Usage: "set varName ?newValue?"}
}

func builtinUnset(in *Interp, args []string) (string, error) {
	if len(args) != 2 {
		return "", errs.ArityMismatch{Usage: "unset varName"}
	}
	in.UnsetVar(args[1])
	return "", nil
}

func builtinIncr(in *Interp, args []string) (string, error) {
	if len(args) < 2 || len(args) > 3 {
		return "", errs.ArityMismatch{Usage: "incr varName ?increment?"}
	}
	delta := 1
	if len(args) == 3 {
		d, err := strconv.Atoi(args[2])
		if err != nil {
			return "", errors.New("expected integer but got " + strconv.Quote(args[2]))
		}
		delta = d
	}
	cur := 0
	if v, err := in.Var(args[1]); err == nil {
		c, err := strconv.Atoi(v)
		if err != nil {
			return "", errors.New("expected integer but got " + strconv.Quote(v))
		}
		cur = c
	}
	next := strconv.Itoa(cur + delta)
	in.SetVar(args[1], next)
	return next, nil
}

// builtinWhile evaluates the test script before each iteration and loops
// while its result is truthy: anything other than "", "0" and "false".
func builtinWhile(in *Interp, args []string) (string, error) {
	if len(args) != 3 {
		return "", errs.ArityMismatch{Usage: "while test body"}
	}
	test, body := args[1], args[2]
	for {
		cond, err := in.evalScript(parse.Source{Name: "while test", Code: test}, 0)
		if err != nil {
			return "", err
		}
		if cond == "" || cond == "0" || cond == "false" {
			return "", nil
		}
		_, err = in.evalScript(parse.Source{Name: "while body", Code: body}, 0)
		switch CodeOf(err) {
		case CodeOK, CodeContinue:
		case CodeBreak:
			return "", nil
		default:
			return "", err
		}
	}
}

func builtinList(in *Interp, args []string) (string, error) {
	return parse.MakeList(args[1:]), nil
}
