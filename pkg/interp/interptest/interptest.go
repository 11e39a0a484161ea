// Package interptest provides a DSL for testing script evaluation against a
// fresh interpreter:
//
//	Test(t,
//		That("put foo").Puts("foo"),
//		That("nosuchcmd").Throws(`invalid command name "nosuchcmd"`),
//	)
//
// Each case evaluates its scripts in order on its own interpreter and checks
// the result of the last one.
package interptest

import (
	"strings"
	"testing"

	"src.tacl.dev/pkg/interp"
)

// Case is a test case for Test.
type Case struct {
	scripts []string
	setup   func(in *interp.Interp)

	wantValue string
	wantErr   string
	wantsErr  bool
}

// That returns a new Case with the given scripts.
func That(scripts ...string) *Case {
	return &Case{scripts: scripts}
}

// WithSetup runs f on the interpreter before any script is evaluated.
func (c *Case) WithSetup(f func(in *interp.Interp)) *Case {
	c.setup = f
	return c
}

// Puts asserts that evaluation succeeds with the given final result.
func (c *Case) Puts(value string) *Case {
	c.wantValue = value
	return c
}

// Throws asserts that evaluation fails with the given error message.
func (c *Case) Throws(msg string) *Case {
	c.wantErr = msg
	c.wantsErr = true
	return c
}

// Test runs the cases, each against a fresh interpreter.
func Test(t *testing.T, cases ...*Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.scripts, "; "), func(t *testing.T) {
			t.Helper()
			in := interp.New()
			defer in.Delete()
			if c.setup != nil {
				c.setup(in)
			}
			var value string
			var err error
			for _, script := range c.scripts {
				value, err = in.Eval(script)
				if err != nil {
					break
				}
			}
			if c.wantsErr {
				if err == nil {
					t.Errorf("got no error, want error %q", c.wantErr)
				} else if err.Error() != c.wantErr {
					t.Errorf("got error %q, want %q", err.Error(), c.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("got error %v, want none", err)
			}
			if value != c.wantValue {
				t.Errorf("got result %q, want %q", value, c.wantValue)
			}
		})
	}
}
