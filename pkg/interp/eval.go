package interp

import (
	"errors"
	"fmt"
	"strings"

	"src.tacl.dev/pkg/diag"
	"src.tacl.dev/pkg/interp/errs"
	"src.tacl.dev/pkg/parse"
)

// EvalFlags modify how a top-level evaluation behaves.
type EvalFlags int

const (
	// AllowExceptions passes non-normal result codes (break, continue,
	// application-defined codes) out of a top-level evaluation as
	// FlowError values instead of converting them to errors.
	AllowExceptions EvalFlags = 1 << iota
	// EvalGlobal evaluates at the global level. Variables are already
	// interpreter-global in this core, so the flag is accepted for API
	// symmetry and has no further effect.
	EvalGlobal
	// EvalInvokeHidden resolves the command name in the hidden table
	// instead of the namespace registry. Only the first dispatch is
	// affected; scripts run by the hidden command resolve normally.
	EvalInvokeHidden
)

// Eval evaluates a script and returns the result of the last command in it.
// The error, if any, is an *Exception carrying the traceback accumulated
// while it propagated.
func (in *Interp) Eval(script string) (string, error) {
	return in.EvalWithFlags(script, 0)
}

// EvalWithFlags is Eval with explicit flags.
func (in *Interp) EvalWithFlags(script string, flags EvalFlags) (string, error) {
	result, err := in.evalScript(parse.Source{Name: "script", Code: script}, flags)
	return in.finishEval(result, err, flags)
}

// EvalSource evaluates a script from a named source, so that tracebacks can
// identify the file it came from.
func (in *Interp) EvalSource(src parse.Source, flags EvalFlags) (string, error) {
	result, err := in.evalScript(src, flags)
	return in.finishEval(result, err, flags)
}

// EvalWords dispatches a single pre-substituted command: words[0] names the
// command, the rest are its arguments.
func (in *Interp) EvalWords(words []string, flags EvalFlags) (string, error) {
	if len(words) == 0 {
		return "", nil
	}
	result, err := in.evalWords(words, flags)
	return in.finishEval(result, err, flags)
}

// InvokeHidden dispatches a single command resolved in the hidden table.
// words[0] is the hidden command token.
func (in *Interp) InvokeHidden(words []string, flags EvalFlags) (string, error) {
	if len(words) == 0 {
		return "", newException(errs.UnknownHiddenCommand{Token: ""})
	}
	result, err := in.evalWords(words, flags|EvalInvokeHidden)
	return in.finishEval(result, err, flags)
}

// SignalAsync latches an asynchronous error on the interpreter. It is safe
// to call from another goroutine; the evaluator drains the latch after each
// command invocation, turning the error into the result of that command.
func (in *Interp) SignalAsync(err error) {
	in.asyncErr.Store(asyncSignal{err})
}

type asyncSignal struct{ err error }

func (in *Interp) drainAsync() error {
	v := in.asyncErr.Swap(asyncSignal{})
	if v == nil {
		return nil
	}
	return v.(asyncSignal).err
}

// finishEval applies top-level result-code conversion: a return code yields
// its value as a normal result, and other non-normal codes become errors
// unless the caller asked for raw codes.
func (in *Interp) finishEval(result string, err error, flags EvalFlags) (string, error) {
	if err == nil {
		return result, nil
	}
	f, ok := err.(*FlowError)
	if !ok {
		return "", newException(err)
	}
	if f.Code == CodeReturn {
		return f.Value, nil
	}
	if flags&AllowExceptions != 0 {
		return "", f
	}
	switch f.Code {
	case CodeBreak:
		return "", newException(errors.New(`invoked "break" outside of a loop`))
	case CodeContinue:
		return "", newException(errors.New(`invoked "continue" outside of a loop`))
	default:
		return "", newException(fmt.Errorf("command returned bad code: %d", int(f.Code)))
	}
}

// evalScript runs the commands of a script in sequence and returns the
// result of the last one. Non-normal result codes and errors stop the
// script and propagate raw; callers convert at the top level.
func (in *Interp) evalScript(src parse.Source, flags EvalFlags) (string, error) {
	in.numLevels++
	defer func() { in.numLevels-- }()
	if err := in.ready(); err != nil {
		return "", err
	}
	in.Preserve()
	defer in.Release()

	result := ""
	pos := 0
	for {
		cmd, next, perr := parse.ParseCommand(src, pos)
		if perr != nil {
			return "", newException(perr)
		}
		if cmd == nil {
			break
		}
		pos = next
		words, err := in.substWords(src, cmd, flags)
		if err != nil {
			if CodeOf(err) != CodeError {
				return "", err
			}
			return "", in.logFrame(err, src, cmd.Ranging)
		}
		if len(words) == 0 {
			continue
		}
		result, err = in.evalWords(words, flags&^EvalInvokeHidden)
		if err != nil {
			if CodeOf(err) != CodeError {
				return "", err
			}
			return "", in.logFrame(err, src, cmd.Ranging)
		}
	}
	return result, nil
}

// logFrame attaches a traceback frame quoting the command at r, unless a
// command implementation already attached one for this level; either way the
// next enclosing level attaches its own.
func (in *Interp) logFrame(err error, src parse.Source, r diag.Ranging) error {
	exc := newException(err)
	if exc.logged {
		exc.logged = false
	} else {
		exc.addCommandFrame(src.Name, src.Code, r)
	}
	return exc
}

// substWords substitutes a parsed command into concrete argument words. A
// word marked for expansion is split as a list, contributing one argument
// per element; expanding an empty list still claims one argument slot.
func (in *Interp) substWords(src parse.Source, cmd *parse.Command, flags EvalFlags) ([]string, error) {
	words := make([]string, 0, len(cmd.Words))
	for _, w := range cmd.Words {
		text, err := in.substWord(src, w, flags)
		if err != nil {
			return nil, err
		}
		if !w.Expand {
			words = append(words, text)
			continue
		}
		elems, err := parse.List(text)
		if err != nil {
			return nil, err
		}
		if len(elems) == 0 {
			words = append(words, "")
			continue
		}
		words = append(words, elems...)
	}
	return words, nil
}

func (in *Interp) substWord(src parse.Source, w *parse.Word, flags EvalFlags) (string, error) {
	if len(w.Segs) == 1 && w.Segs[0].Kind == parse.SegText {
		return w.Segs[0].Text, nil
	}
	var sb strings.Builder
	for _, seg := range w.Segs {
		switch seg.Kind {
		case parse.SegText:
			sb.WriteString(seg.Text)
		case parse.SegVar:
			v, err := in.Var(seg.Text)
			if err != nil {
				return "", err
			}
			sb.WriteString(v)
		case parse.SegScript:
			v, err := in.evalScript(parse.Source{Name: src.Name, Code: seg.Text}, flags)
			if err != nil {
				return "", err
			}
			sb.WriteString(v)
		}
	}
	return sb.String(), nil
}

// evalWords dispatches one command invocation: resolution, execution traces
// with the single re-resolution retry, the call itself, and post-call
// draining of async errors and resource limits.
func (in *Interp) evalWords(words []string, flags EvalFlags) (string, error) {
	in.numLevels++
	defer func() { in.numLevels-- }()
	if err := in.ready(); err != nil {
		return "", err
	}

	name := words[0]
	cmd, err := in.resolveForDispatch(name, flags)
	if err != nil {
		return "", err
	}
	if cmd == nil {
		return in.evalUnknown(words)
	}

	in.Preserve()
	defer in.Release()

	// Enter traces may rename or delete the command out from under the
	// dispatch. When the command's epoch moves while they fire, the name
	// is resolved again exactly once, with trace checking disabled so the
	// retry cannot loop.
	traced := false
	if flags&EvalInvokeHidden == 0 && (len(in.execTraces) > 0 || cmd.hasExecTraces()) {
		traced = true
		savedEpoch := cmd.epoch
		cmd.retain()
		terr := in.fireExecTraces(cmd, TraceEnter, TraceInfo{
			Level:   in.numLevels,
			Command: name,
			Args:    words,
		})
		moved := cmd.epoch != savedEpoch
		cmd.release()
		if terr != nil {
			// An enter trace vetoed the invocation: the command never
			// runs and leave traces do not fire.
			return "", terr
		}
		if moved {
			logger.Println("command moved by trace, re-resolving:", name)
			traced = false
			cmd, err = in.resolveForDispatch(name, flags)
			if err != nil {
				return "", err
			}
			if cmd == nil {
				return in.evalUnknown(words)
			}
		}
	}

	// An error latched before this invocation skips the call entirely.
	if aerr := in.drainAsync(); aerr != nil {
		return "", aerr
	}

	cmd.retain()
	in.cmdCount++
	result, rerr := cmd.fn(in, words)

	// Leave traces are skipped when the command deleted itself or was
	// deleted by an enter trace's retry target.
	if traced && cmd.state == cmdActive {
		in.fireExecTraces(cmd, TraceLeave, TraceInfo{
			Level:   in.numLevels,
			Command: name,
			Args:    words,
			Code:    CodeOf(rerr),
			Result:  result,
		})
	}
	cmd.release()

	if aerr := in.drainAsync(); aerr != nil {
		return "", aerr
	}
	if rerr == nil {
		if lerr := in.checkLimits(); lerr != nil {
			return "", lerr
		}
	}
	if rerr != nil {
		return "", rerr
	}
	return result, nil
}

func (in *Interp) resolveForDispatch(name string, flags EvalFlags) (*Command, error) {
	if flags&EvalInvokeHidden != 0 {
		cmd, ok := in.hidden[name]
		if !ok {
			return nil, errs.UnknownHiddenCommand{Token: name}
		}
		return cmd, nil
	}
	return in.FindCommand(name), nil
}

// evalUnknown reruns an unresolved invocation through the ::unknown handler,
// passing the original words as its arguments. Without a handler the
// invocation fails. A handler that itself does not resolve recurses here and
// is stopped by the recursion guard.
func (in *Interp) evalUnknown(words []string) (string, error) {
	if in.FindCommand("::unknown") == nil {
		return "", errs.InvalidCommandName{Name: words[0]}
	}
	handlerWords := make([]string, 0, len(words)+1)
	handlerWords = append(handlerWords, "::unknown")
	handlerWords = append(handlerWords, words...)
	return in.evalWords(handlerWords, 0)
}
