package interp_test

import (
	"testing"

	"src.tacl.dev/pkg/interp"
	"src.tacl.dev/pkg/must"
)

func constCmd(result string) interp.Fn {
	return func(in *interp.Interp, args []string) (string, error) {
		return result, nil
	}
}

func TestRegister(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	cmd := must.OK1(in.Register("greet", constCmd("hi")))
	if got := in.FindCommand("greet"); got != cmd {
		t.Errorf("FindCommand returned %v, want the registered command", got)
	}
	if got := cmd.FullName(); got != "::greet" {
		t.Errorf("FullName = %q, want ::greet", got)
	}
	if v, err := in.Eval("greet"); err != nil || v != "hi" {
		t.Errorf("got (%q, %v), want (hi, nil)", v, err)
	}

	if _, err := in.Register("", constCmd("")); err == nil {
		t.Error("registering empty name succeeded")
	}
}

func TestRegister_Qualified(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	cmd := must.OK1(in.Register("::a::b::greet", constCmd("hi")))
	if got := cmd.FullName(); got != "::a::b::greet" {
		t.Errorf("FullName = %q, want ::a::b::greet", got)
	}
	if in.FindCommand("::a::b::greet") != cmd {
		t.Error("qualified lookup failed")
	}
	if in.FindNamespace("::a::b") == nil {
		t.Error("intermediate namespace was not created")
	}
	// A bare name in a non-global namespace falls back to the global one.
	glob := must.OK1(in.Register("only-global", constCmd("")))
	if got := in.FindCommandIn(in.FindNamespace("::a::b"), "only-global"); got != glob {
		t.Errorf("bare-name fallback returned %v, want the global command", got)
	}
}

func TestRegister_RedefinitionKeepsImports(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	src := must.OK1(in.Register("src", constCmd("old")))
	ns := must.OK1(in.EnsureNamespace("::sub"))
	imp := must.OK1(in.Import(ns, "src", src))

	if v, _ := in.EvalWords([]string{"::sub::src"}, 0); v != "old" {
		t.Errorf("import returned %q, want old", v)
	}

	must.OK1(in.Register("src", constCmd("new")))
	if imp.IsDeleted() {
		t.Fatal("redefining the source deleted the import")
	}
	if v, _ := in.EvalWords([]string{"::sub::src"}, 0); v != "new" {
		t.Errorf("import after redefinition returned %q, want new", v)
	}
}

func TestRegister_RedefinitionDiscardsRecreation(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	var recreated *interp.Command
	old := must.OK1(in.Register("x", constCmd("old")))
	old.SetDeleteHook(func() {
		recreated = must.OK1(in.Register("x", constCmd("recreated")))
	})

	// The delete hook re-registers the name mid-redefinition; the
	// redefinition wins and the recreated command is discarded.
	fresh := must.OK1(in.Register("x", constCmd("new")))
	if in.FindCommand("x") != fresh {
		t.Error("x does not resolve to the latest registration")
	}
	if v, _ := in.Eval("x"); v != "new" {
		t.Errorf("x = %q, want new", v)
	}
	if recreated == nil {
		t.Fatal("delete hook did not run")
	}
	if recreated.FullName() != "" {
		t.Errorf("discarded command still registered as %q", recreated.FullName())
	}
}

func TestRename(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	cmd := must.OK1(in.Register("cmdA", constCmd("a")))
	epoch := cmd.Epoch()

	must.OK(in.Rename("cmdA", "cmdB"))
	if in.FindCommand("cmdA") != nil {
		t.Error("old name still resolves after rename")
	}
	if in.FindCommand("cmdB") != cmd {
		t.Error("new name does not resolve to the same record")
	}
	if cmd.Epoch() == epoch {
		t.Error("rename did not advance the command epoch")
	}
	if v, _ := in.Eval("cmdB"); v != "a" {
		t.Errorf("renamed command returned %q, want a", v)
	}
}

func TestRename_Errors(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	must.OK1(in.Register("cmdA", constCmd("a")))
	must.OK1(in.Register("cmdB", constCmd("b")))

	err := in.Rename("nosuch", "other")
	if err == nil || err.Error() != `can't rename "nosuch": command doesn't exist` {
		t.Errorf("got %v, want doesn't-exist error", err)
	}
	err = in.Rename("cmdA", "cmdB")
	if err == nil || err.Error() != `can't rename to "cmdB": command already exists` {
		t.Errorf("got %v, want already-exists error", err)
	}
	// A failed rename leaves everything as it was.
	if v, _ := in.Eval("cmdA"); v != "a" {
		t.Errorf("cmdA returned %q after failed rename, want a", v)
	}
	if v, _ := in.Eval("cmdB"); v != "b" {
		t.Errorf("cmdB returned %q after failed rename, want b", v)
	}
}

func TestRename_EmptyTargetDeletes(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	cmd := must.OK1(in.Register("doomed", constCmd("")))
	must.OK(in.Rename("doomed", ""))
	if !cmd.IsDeleted() || in.FindCommand("doomed") != nil {
		t.Error("rename to empty name did not delete the command")
	}
}

func TestRename_AliasLoop(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	alias := must.OK1(in.Register("myalias", constCmd("")))
	alias.SetAliasTarget("target")
	must.OK1(in.Register("other", constCmd("")))

	err := in.Rename("myalias", "target")
	if err == nil || err.Error() != `cannot define or rename alias "target": would create a loop` {
		t.Errorf("got %v, want loop error", err)
	}
	if in.FindCommand("myalias") != alias {
		t.Error("failed rename moved the alias")
	}
}

func TestDelete(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	cmd := must.OK1(in.Register("doomed", constCmd("")))
	hookRuns := 0
	cmd.SetDeleteHook(func() { hookRuns++ })

	if !in.Unregister("doomed") {
		t.Fatal("Delete returned false for an existing command")
	}
	if in.FindCommand("doomed") != nil {
		t.Error("deleted command still resolves")
	}
	if !cmd.IsDeleted() {
		t.Error("IsDeleted is false after delete")
	}
	if hookRuns != 1 {
		t.Errorf("delete hook ran %d times, want 1", hookRuns)
	}

	// Deleting again, by name or by record, is a safe no-op.
	if in.Unregister("doomed") {
		t.Error("Delete returned true for a deleted command")
	}
	in.DeleteCommand(cmd)
	if hookRuns != 1 {
		t.Errorf("delete hook ran %d times after double delete, want 1", hookRuns)
	}
}

func TestDelete_TransitiveImports(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	src := must.OK1(in.Register("src", constCmd("")))
	nsA := must.OK1(in.EnsureNamespace("::a"))
	nsB := must.OK1(in.EnsureNamespace("::b"))
	impA := must.OK1(in.Import(nsA, "src", src))
	impB := must.OK1(in.Import(nsB, "src", impA))

	in.DeleteCommand(src)
	if !impA.IsDeleted() || !impB.IsDeleted() {
		t.Error("deleting the source did not delete its imports transitively")
	}
	if in.FindCommand("::a::src") != nil || in.FindCommand("::b::src") != nil {
		t.Error("import names still resolve after source deletion")
	}
}

func TestDelete_ImportUnlinksSource(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	src := must.OK1(in.Register("src", constCmd("")))
	ns := must.OK1(in.EnsureNamespace("::a"))
	imp := must.OK1(in.Import(ns, "src", src))

	in.DeleteCommand(imp)
	if src.IsDeleted() {
		t.Error("deleting an import deleted its source")
	}
	if n := src.Info().Imports; n != 0 {
		t.Errorf("source still records %d imports, want 0", n)
	}
}

func TestLifecycleSequence(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	must.OK1(in.Register("x", constCmd("1")))
	must.OK(in.Rename("x", "y"))
	must.OK1(in.Register("x", constCmd("2")))
	if v, _ := in.Eval("x"); v != "2" {
		t.Errorf("x = %q, want 2", v)
	}
	if v, _ := in.Eval("y"); v != "1" {
		t.Errorf("y = %q, want 1", v)
	}
	in.Unregister("y")
	if _, err := in.Eval("y"); err == nil {
		t.Error("deleted y still evaluates")
	}
	if v, _ := in.Eval("x"); v != "2" {
		t.Errorf("x = %q after deleting y, want 2", v)
	}
}

func TestHideExpose(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	cmd := must.OK1(in.Register("exec", constCmd("ran")))
	epoch := cmd.Epoch()

	must.OK(in.Hide("exec", "exec"))
	if cmd.Epoch() == epoch {
		t.Error("hide did not advance the command epoch")
	}
	if _, err := in.Eval("exec"); err == nil || err.Error() != `invalid command name "exec"` {
		t.Errorf("hidden command evaluates normally: %v", err)
	}
	if v, err := in.InvokeHidden([]string{"exec"}, 0); err != nil || v != "ran" {
		t.Errorf("InvokeHidden got (%q, %v), want (ran, nil)", v, err)
	}
	if in.HiddenCommand("exec") != cmd {
		t.Error("hidden table does not hold the command")
	}

	hiddenEpoch := cmd.Epoch()
	must.OK(in.Expose("exec", "exec"))
	if cmd.Epoch() == hiddenEpoch {
		t.Error("expose did not advance the command epoch")
	}
	if v, err := in.Eval("exec"); err != nil || v != "ran" {
		t.Errorf("exposed command got (%q, %v), want (ran, nil)", v, err)
	}
	if _, err := in.InvokeHidden([]string{"exec"}, 0); err == nil {
		t.Error("exposed command still invocable as hidden")
	}
}

func TestHide_Errors(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	must.OK1(in.Register("safe", constCmd("")))
	must.OK1(in.Register("other", constCmd("")))
	must.OK1(in.Register("::a::deep", constCmd("")))
	must.OK(in.Hide("safe", "safe"))

	for _, tc := range []struct {
		name, token, wantErr string
	}{
		{"other", "a::b", "cannot use namespace qualifiers in hidden command token (rename)"},
		{"::a::deep", "deep", "can only hide global namespace commands (use rename then hide)"},
		{"other", "safe", `hidden command named "safe" already exists`},
		{"nosuch", "t", `unknown command "nosuch"`},
	} {
		err := in.Hide(tc.name, tc.token)
		if err == nil || err.Error() != tc.wantErr {
			t.Errorf("Hide(%q, %q) = %v, want %q", tc.name, tc.token, err, tc.wantErr)
		}
	}
}

func TestExpose_Errors(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	must.OK1(in.Register("safe", constCmd("")))
	must.OK1(in.Register("taken", constCmd("")))
	must.OK(in.Hide("safe", "safe"))

	for _, tc := range []struct {
		token, name, wantErr string
	}{
		{"safe", "a::b", "can not expose to a namespace (use expose to toplevel, then rename)"},
		{"nosuch", "n", `unknown hidden command "nosuch"`},
		{"safe", "taken", `exposed command "taken" already exists`},
	} {
		err := in.Expose(tc.token, tc.name)
		if err == nil || err.Error() != tc.wantErr {
			t.Errorf("Expose(%q, %q) = %v, want %q", tc.token, tc.name, err, tc.wantErr)
		}
	}
}

func TestCmdRef(t *testing.T) {
	in := interp.New()
	defer in.Delete()

	cmd := must.OK1(in.Register("target", constCmd("1")))
	ref := in.NewCmdRef(nil, "target")
	if ref.Get() != cmd {
		t.Fatal("fresh ref does not resolve")
	}

	must.OK(in.Rename("target", "moved"))
	if ref.Get() != nil {
		t.Error("ref still resolves after rename away")
	}

	cmd2 := must.OK1(in.Register("target", constCmd("2")))
	if ref.Get() != cmd2 {
		t.Error("ref does not pick up the re-registered command")
	}

	in.DeleteCommand(cmd2)
	if ref.Get() != nil {
		t.Error("ref resolves a deleted command")
	}
}
