// Package progtest provides utilities for testing subprograms.
//
// The entry point of this package is [Test]:
//
//	Test(t, someProgram,
//		ThatTacl("-some-flag").WritesStdout("some output\n"),
//	)
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"src.tacl.dev/pkg/prog"
)

// Case is a test case that can be used in Test.
type Case struct {
	args  []string
	stdin string
	want  result
}

type result struct {
	exit   int
	stdout output
	stderr output
}

type output struct {
	content string
	partial bool
}

func (o output) String() string {
	if o.partial {
		return "text containing " + o.content
	}
	return "text " + o.content
}

// ThatTacl returns a new Case with the given CLI arguments.
func ThatTacl(args ...string) Case {
	return Case{args: append([]string{"tacl"}, args...)}
}

// WithStdin returns an altered Case that provides the given input to stdin.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// DoesNothing returns c itself. It is useful to mark tests that otherwise
// don't have any expectations.
func (c Case) DoesNothing() Case {
	return c
}

// ExitsWith returns an altered Case that requires the program to exit with
// the given exit code.
func (c Case) ExitsWith(code int) Case {
	c.want.exit = code
	return c
}

// WritesStdout returns an altered Case that requires the program to write
// exactly the given text to stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{content: s}
	return c
}

// WritesStdoutContaining returns an altered Case that requires the program to
// write output to stdout containing the given text.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{content: s, partial: true}
	return c
}

// WritesStderr returns an altered Case that requires the program to write
// exactly the given text to stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{content: s}
	return c
}

// WritesStderrContaining returns an altered Case that requires the program to
// write output to stderr containing the given text.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{content: s, partial: true}
	return c
}

// Test runs test cases against a given program.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args[1:], " "), func(t *testing.T) {
			t.Helper()
			r := run(p, c.args, c.stdin)
			if r.exit != c.want.exit {
				t.Errorf("got exit code %v, want %v", r.exit, c.want.exit)
			}
			if !matchOutput(r.stdout, c.want.stdout) {
				t.Errorf("got stdout %v, want %v", r.stdout, c.want.stdout)
			}
			if !matchOutput(r.stderr, c.want.stderr) {
				t.Errorf("got stderr %v, want %v", r.stderr, c.want.stderr)
			}
		})
	}
}

// Run runs a Program with the given arguments and stdin content, returning
// its exit code and output. It is useful for tests that need more control
// than Test offers.
func Run(p prog.Program, stdin string, args ...string) (exit int, stdout, stderr string) {
	r := run(p, append([]string{"tacl"}, args...), stdin)
	return r.exit, r.stdout.content, r.stderr.content
}

func matchOutput(got, want output) bool {
	if want.partial {
		return strings.Contains(got.content, want.content)
	}
	return got.content == want.content
}

func run(p prog.Program, args []string, stdin string) result {
	r0, w0 := must(os.Pipe())
	r1, w1 := must(os.Pipe())
	r2, w2 := must(os.Pipe())

	go func() {
		defer w0.Close()
		io.WriteString(w0, stdin)
	}()

	stdoutCh := capture(r1)
	stderrCh := capture(r2)

	exit := prog.Run([3]*os.File{r0, w1, w2}, args, p)
	w1.Close()
	w2.Close()
	r0.Close()

	return result{exit, output{content: <-stdoutCh}, output{content: <-stderrCh}}
}

// capture drains the reader concurrently, so that a chatty program cannot
// deadlock on a full pipe buffer.
func capture(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		defer r.Close()
		b, _ := io.ReadAll(r)
		ch <- string(b)
	}()
	return ch
}

func must(r, w *os.File, err error) (*os.File, *os.File) {
	if err != nil {
		panic(err)
	}
	return r, w
}
