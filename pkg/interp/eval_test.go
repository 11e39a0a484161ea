package interp_test

import (
	"strings"
	"testing"

	"src.tacl.dev/pkg/interp"
	. "src.tacl.dev/pkg/interp/interptest"
	"src.tacl.dev/pkg/must"
)

func register(name string, fn interp.Fn) func(in *interp.Interp) {
	return func(in *interp.Interp) {
		must.OK1(in.Register(name, fn))
	}
}

var withGreet = register("greet", func(in *interp.Interp, args []string) (string, error) {
	return "Hello, " + strings.Join(args[1:], " "), nil
})

func TestEval(t *testing.T) {
	Test(t,
		That("").Puts(""),
		That("put foo").Puts("foo"),
		That("put a; put b").Puts("b"),
		That("put a\nput b").Puts("b"),
		That(`put "a b"`).Puts("a b"),
		That(`put {a $b}`).Puts("a $b"),
		That(`put a\tb`).Puts("a\tb"),
		That("put héllo").Puts("héllo"),
		That(`put "héllo wörld"`).Puts("héllo wörld"),
		That("put {日本語}").Puts("日本語"),
		That("greet World").WithSetup(withGreet).Puts("Hello, World"),
		That("nosuchcmd").Throws(`invalid command name "nosuchcmd"`),
	)
}

func TestEval_Substitution(t *testing.T) {
	Test(t,
		That("set x foo", "put $x").Puts("foo"),
		That("set x foo", `put "$x bar"`).Puts("foo bar"),
		That("set x foo", "put ${x}bar").Puts("foobar"),
		That("put [put foo]").Puts("foo"),
		That("put a[put b]c").Puts("abc"),
		That("put $nosuch").Throws(`can't read "nosuch": no such variable`),
		That("put [nosuchcmd]").Throws(`invalid command name "nosuchcmd"`),
	)
}

func TestEval_Expansion(t *testing.T) {
	Test(t,
		That("list {*}{a b} c").Puts("a b c"),
		That(`set xs {a b}`, "list {*}$xs c").Puts("a b c"),
		// An empty expansion still claims one argument slot.
		That("put {*}{}").Puts(""),
		That(`list {*}"a {b"`).Throws("unmatched open brace in list"),
	)
}

func TestEval_ControlFlow(t *testing.T) {
	Test(t,
		That("return foo").Puts("foo"),
		That("return").Puts(""),
		That("break").Throws(`invoked "break" outside of a loop`),
		That("continue").Throws(`invoked "continue" outside of a loop`),
		That("set i 3", "while {set i} {incr i -1}", "put $i").Puts("0"),
		That("set i 3", "while {set i} {break}", "put $i").Puts("3"),
		That("set i 3", "while {set i} {incr i -1; continue; set i 100}", "put $i").Puts("0"),
	)
}

func TestEval_CatchAndError(t *testing.T) {
	Test(t,
		That("error boom").Throws("boom"),
		That("catch {put ok}").Puts("0"),
		That("catch {error boom}").Puts("1"),
		That("catch {return foo}").Puts("2"),
		That("catch {break}").Puts("3"),
		That("catch {continue}").Puts("4"),
		That("catch {error boom} msg", "put $msg").Puts("boom"),
		That("catch {put ok} msg", "put $msg").Puts("ok"),
	)
}

func TestEval_EvalCommand(t *testing.T) {
	Test(t,
		That("eval put foo").Puts("foo"),
		That("eval {put foo}").Puts("foo"),
		// break propagates out of eval into the enclosing loop.
		That("set i 3", "while {set i} {eval break}", "put $i").Puts("3"),
	)
}

func TestEval_BadCodeAtTopLevel(t *testing.T) {
	Test(t,
		That("oddcode").WithSetup(register("oddcode",
			func(in *interp.Interp, args []string) (string, error) {
				return "", interp.CustomCode(5, "")
			})).Throws("command returned bad code: 5"),
	)
}

func TestEval_UnknownFallback(t *testing.T) {
	Test(t,
		That("nosuch a b").WithSetup(register("unknown",
			func(in *interp.Interp, args []string) (string, error) {
				return strings.Join(args[1:], "+"), nil
			})).Puts("nosuch+a+b"),
		// An unknown handler that itself hits an unresolved name recurses
		// through the fallback until the depth guard stops it.
		That("ghost").WithSetup(register("unknown",
			func(in *interp.Interp, args []string) (string, error) {
				return in.Eval("ghost")
			})).Throws("too many nested evaluations (infinite loop?)"),
	)
}

func TestEval_RecursionGuard(t *testing.T) {
	in := interp.New()
	defer in.Delete()
	must.OK1(in.Register("selfrec", func(in *interp.Interp, args []string) (string, error) {
		return in.Eval("selfrec")
	}))
	_, err := in.Eval("selfrec")
	if err == nil || err.Error() != "too many nested evaluations (infinite loop?)" {
		t.Errorf("got error %v, want recursion guard error", err)
	}

	in.SetMaxDepth(10)
	if old := in.SetMaxDepth(20); old != 10 {
		t.Errorf("SetMaxDepth returned %d, want 10", old)
	}
}

func TestEval_ParseErrors(t *testing.T) {
	Test(t,
		That("put {a").Throws("parse error: missing close-brace"),
		That(`put "a`).Throws(`parse error: missing "`),
		That("put [put a").Throws("parse error: missing close-bracket"),
	)
}

func TestEval_AllowExceptions(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	_, err := in.EvalWithFlags("break", interp.AllowExceptions)
	if interp.CodeOf(err) != interp.CodeBreak {
		t.Errorf("got %v, want raw break code", err)
	}
	v, err := in.EvalWithFlags("return foo", interp.AllowExceptions)
	if err != nil || v != "foo" {
		t.Errorf("got (%q, %v), want (foo, nil)", v, err)
	}
}

func TestEval_ErrorInfo(t *testing.T) {
	in := interp.New()
	defer in.Delete()
	_, err := in.Eval("eval {error boom}")
	exc, ok := err.(*interp.Exception)
	if !ok {
		t.Fatalf("got error %v, want *Exception", err)
	}
	want := "boom\n" +
		"    while executing\n\"error boom\"\n" +
		"    invoked from within\n\"eval {error boom}\""
	if got := exc.ErrorInfo(); got != want {
		t.Errorf("got error info\n%s\nwant\n%s", got, want)
	}
}

func TestEval_ErrorLine(t *testing.T) {
	in := interp.New()
	defer in.Delete()
	_, err := in.Eval("put a\nput b\nerror boom")
	exc, ok := err.(*interp.Exception)
	if !ok {
		t.Fatalf("got error %v, want *Exception", err)
	}
	if exc.ErrorLine() != 3 {
		t.Errorf("got error line %d, want 3", exc.ErrorLine())
	}
}

func TestEval_LongCommandExcerptIsBounded(t *testing.T) {
	in := interp.New()
	defer in.Delete()
	long := "error " + strings.Repeat("x", 500)
	_, err := in.Eval(long)
	exc := err.(*interp.Exception)
	// The error message itself is not truncated; only the command text
	// quoted in the frames is.
	_, quoted, ok := strings.Cut(exc.ErrorInfo(), "while executing\n")
	if !ok {
		t.Fatalf("error info has no command frame:\n%s", exc.ErrorInfo())
	}
	if strings.Contains(quoted, strings.Repeat("x", 200)) {
		t.Errorf("frame quotes unbounded command text:\n%s", quoted)
	}
	if !strings.Contains(quoted, "...") {
		t.Errorf("frame does not mark truncation:\n%s", quoted)
	}
}

func TestEvalWords(t *testing.T) {
	in := interp.New()
	defer in.Delete()
	v, err := in.EvalWords([]string{"put", "a b"}, 0)
	if err != nil || v != "a b" {
		t.Errorf("got (%q, %v), want (a b, nil)", v, err)
	}
	if _, err := in.EvalWords([]string{"nosuchcmd"}, 0); err == nil {
		t.Error("got no error for unknown command")
	}
}

func TestEval_DeletedInterp(t *testing.T) {
	in := interp.New()
	in.Delete()
	_, err := in.Eval("put foo")
	if err == nil || err.Error() != "attempt to call eval in deleted interpreter" {
		t.Errorf("got error %v, want deleted-interpreter error", err)
	}
}
