package interp

import (
	"fmt"
	"strings"

	"src.tacl.dev/pkg/diag"
	"src.tacl.dev/pkg/strutil"
)

// Code is the result code of evaluating a command. The set is closed except
// for application-defined codes, which are any value of 5 or above.
type Code int

// The standard result codes.
const (
	CodeOK Code = iota
	CodeError
	CodeReturn
	CodeBreak
	CodeContinue
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeError:
		return "error"
	case CodeReturn:
		return "return"
	case CodeBreak:
		return "break"
	case CodeContinue:
		return "continue"
	default:
		return fmt.Sprintf("code %d", int(c))
	}
}

// CodeOf maps an error returned by a command or the evaluator to its result
// code: nil is CodeOK, a flow error carries its own code, and anything else
// is CodeError.
func CodeOf(err error) Code {
	switch err := err.(type) {
	case nil:
		return CodeOK
	case *FlowError:
		return err.Code
	default:
		return CodeError
	}
}

// FlowError represents a non-error, non-normal result code flowing out of a
// command: return, break, continue, or an application-defined code. It is
// converted at the outermost evaluation level unless the caller opted in to
// raw codes.
type FlowError struct {
	Code  Code
	Value string
}

func (f *FlowError) Error() string { return f.Code.String() }

// Flow errors for break and continue. They are shared instances; commands
// return them directly.
var (
	ErrBreak    error = &FlowError{Code: CodeBreak}
	ErrContinue error = &FlowError{Code: CodeContinue}
)

// ReturnValue returns a flow error encoding a return with the given value.
func ReturnValue(v string) error { return &FlowError{Code: CodeReturn, Value: v} }

// CustomCode returns a flow error carrying an application-defined result
// code.
func CustomCode(code int, v string) error {
	return &FlowError{Code: Code(code), Value: v}
}

// excerptLimit bounds the number of bytes of command text quoted in a
// traceback frame.
const excerptLimit = 156

type frameKind int

const (
	frameCommand frameKind = iota
	frameNote
)

// frame is one entry of an exception traceback: either the text range of a
// command that was executing, or a free-form note like an
// argument-expansion annotation.
type frame struct {
	kind frameKind
	note string
	ctx  *diag.Context
}

// Exception wraps an error produced during evaluation with the traceback
// accumulated while the error unwound through nested evaluations.
type Exception struct {
	reason error
	frames []frame
	// line is the 1-based source line at which the innermost failing
	// command began.
	line int
	// logged suppresses further frame accumulation for the current
	// evaluation level; the evaluator clears it as the error propagates
	// outward so each enclosing level contributes exactly one frame.
	logged bool
}

// newException wraps err in an Exception. If err already is one it is
// returned unchanged.
func newException(err error) *Exception {
	if exc, ok := err.(*Exception); ok {
		return exc
	}
	return &Exception{reason: err}
}

// Reason returns the underlying cause of the exception.
func (e *Exception) Reason() error { return e.reason }

// Error returns the message of the cause of the exception.
func (e *Exception) Error() string { return e.reason.Error() }

// Unwrap returns the cause so that errors.Is and errors.As see through the
// exception.
func (e *Exception) Unwrap() error { return e.reason }

// ErrorLine returns the 1-based line number in the innermost script at which
// the failing command began, or 0 if no command frame was recorded.
func (e *Exception) ErrorLine() int { return e.line }

// Traceback returns the source contexts of the command frames, innermost
// first.
func (e *Exception) Traceback() []*diag.Context {
	var ctxs []*diag.Context
	for _, f := range e.frames {
		if f.kind == frameCommand {
			ctxs = append(ctxs, f.ctx)
		}
	}
	return ctxs
}

// ErrorInfo renders the accumulated traceback as human-readable text: the
// error message followed by one "while executing" / "invoked from within"
// entry per command frame, innermost first.
func (e *Exception) ErrorInfo() string {
	var sb strings.Builder
	sb.WriteString(e.reason.Error())
	wrote := false
	for _, f := range e.frames {
		switch f.kind {
		case frameNote:
			sb.WriteString("\n    ")
			sb.WriteString(f.note)
		case frameCommand:
			if !wrote {
				sb.WriteString("\n    while executing\n\"")
			} else {
				sb.WriteString("\n    invoked from within\n\"")
			}
			wrote = true
			text := f.ctx.Source[f.ctx.From:f.ctx.To]
			sb.WriteString(strutil.Ellipsize(text, excerptLimit))
			sb.WriteString("\"")
		}
	}
	return sb.String()
}

// Show shows the exception with its traceback.
func (e *Exception) Show(indent string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Exception: \033[31;1m%s\033[m", e.reason.Error())
	ctxs := e.Traceback()
	if len(ctxs) == 1 {
		sb.WriteString("\n")
		sb.WriteString(ctxs[0].ShowCompact(indent))
	} else if len(ctxs) > 1 {
		sb.WriteString("\n" + indent + "Traceback:")
		for _, ctx := range ctxs {
			sb.WriteString("\n" + indent + "  ")
			sb.WriteString(ctx.Show(indent + "    "))
		}
	}
	return sb.String()
}

// addCommandFrame appends a traceback frame quoting the command at the given
// range, and records the error line if this is the innermost frame.
func (e *Exception) addCommandFrame(name, source string, r diag.Ranging) {
	ctx := diag.NewContext(name, source, r)
	if len(e.frames) == 0 {
		e.line = ctx.LineNo()
	}
	e.frames = append(e.frames, frame{kind: frameCommand, ctx: ctx})
}

// addNote appends a free-form traceback annotation.
func (e *Exception) addNote(note string) {
	e.frames = append(e.frames, frame{kind: frameNote, note: note})
}

// LogFrame attaches a command frame to the exception and marks the current
// evaluation level as already logged, so the evaluator does not attach a
// second frame for the same level. Command implementations that log detailed
// context of their own use this before returning the error.
func (e *Exception) LogFrame(name, source string, r diag.Ranging) {
	e.addCommandFrame(name, source, r)
	e.logged = true
}
