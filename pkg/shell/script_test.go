package shell

import (
	"os"
	"path/filepath"
	"testing"

	. "src.tacl.dev/pkg/prog/progtest"
)

func TestScript_CodeInArg(t *testing.T) {
	Test(t, Program{},
		ThatTacl("-c", "put hello").WritesStdout("hello\n"),
		ThatTacl("-c", "put").DoesNothing(),
		ThatTacl("-c", "error boom").
			ExitsWith(2).WritesStderrContaining("boom"),
	)
}

func TestScript_Args(t *testing.T) {
	Test(t, Program{},
		ThatTacl("-c", "put $argv", "a", "b").WritesStdout("a b\n"),
	)
}

func TestScript_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.tacl")
	mustWriteFile(t, path, "put hello\n")
	Test(t, Program{},
		ThatTacl(path).WritesStdout("hello\n"),
	)
}

func TestScript_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.tacl")
	Test(t, Program{},
		ThatTacl(path).
			ExitsWith(2).WritesStderrContaining("cannot read script"),
	)
}

func TestScript_FileNotUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tacl")
	mustWriteFile(t, path, "put \xc3\x28\n")
	Test(t, Program{},
		ThatTacl(path).
			ExitsWith(2).WritesStderrContaining("source is not UTF-8"),
	)
}

func TestScript_CompileOnly(t *testing.T) {
	Test(t, Program{},
		ThatTacl("-compileonly", "-c", "put hello").DoesNothing(),
		ThatTacl("-compileonly", "-c", "put {").
			ExitsWith(2).WritesStderrContaining("missing close-brace"),
	)
}

func TestScript_CompileOnlyJSON(t *testing.T) {
	Test(t, Program{},
		ThatTacl("-compileonly", "-json", "-c", "put hello").
			WritesStdout("null\n"),
		ThatTacl("-compileonly", "-json", "-c", "put {").
			ExitsWith(2).WritesStdoutContaining("missing close-brace"),
	)
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	err := os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatal(err)
	}
}
