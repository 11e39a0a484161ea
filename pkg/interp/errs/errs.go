// Package errs declares error types used across the interpreter. The error
// messages are part of the interpreter's compatibility surface and are relied
// upon by tests and embedding hosts.
package errs

import "fmt"

// InvalidCommandName is returned by the evaluator when a command name
// resolves to nothing and no unknown-command handler is registered.
type InvalidCommandName struct {
	Name string
}

func (e InvalidCommandName) Error() string {
	return fmt.Sprintf("invalid command name %q", e.Name)
}

// UnknownCommand is returned by lookup-level operations when the named
// command does not exist.
type UnknownCommand struct {
	Name string
}

func (e UnknownCommand) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

// UnknownHiddenCommand is returned when a hidden-command token does not
// resolve.
type UnknownHiddenCommand struct {
	Token string
}

func (e UnknownHiddenCommand) Error() string {
	return fmt.Sprintf("invalid hidden command name %q", e.Token)
}

// TooManyNestedEvaluations is returned when evaluation exceeds the recursion
// limit.
type TooManyNestedEvaluations struct{}

func (TooManyNestedEvaluations) Error() string {
	return "too many nested evaluations (infinite loop?)"
}

// InterpreterDeleted is returned when evaluation is attempted on an
// interpreter that has been marked deleted.
type InterpreterDeleted struct{}

func (InterpreterDeleted) Error() string {
	return "attempt to call eval in deleted interpreter"
}

// ArityMismatch is returned when a command is called with the wrong number of
// arguments. Usage echoes the canonical invocation form.
type ArityMismatch struct {
	Usage string
}

func (e ArityMismatch) Error() string {
	return fmt.Sprintf("wrong # args: should be %q", e.Usage)
}

// NoSuchVariable is returned when reading a variable that has not been set.
type NoSuchVariable struct {
	Name string
}

func (e NoSuchVariable) Error() string {
	return fmt.Sprintf("can't read %q: no such variable", e.Name)
}
