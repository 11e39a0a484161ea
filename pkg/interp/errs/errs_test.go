package errs

import "testing"

var errorMessageTests = []struct {
	err     error
	wantMsg string
}{
	{InvalidCommandName{"nosuchcmd"}, `invalid command name "nosuchcmd"`},
	{UnknownCommand{"greet"}, `unknown command "greet"`},
	{UnknownHiddenCommand{"exec"}, `invalid hidden command name "exec"`},
	{TooManyNestedEvaluations{}, "too many nested evaluations (infinite loop?)"},
	{InterpreterDeleted{}, "attempt to call eval in deleted interpreter"},
	{ArityMismatch{"rename oldName newName"}, `wrong # args: should be "rename oldName newName"`},
	{NoSuchVariable{"x"}, `can't read "x": no such variable`},
}

func TestErrorMessages(t *testing.T) {
	for _, test := range errorMessageTests {
		if gotMsg := test.err.Error(); gotMsg != test.wantMsg {
			t.Errorf("got message %v, want %v", gotMsg, test.wantMsg)
		}
	}
}
