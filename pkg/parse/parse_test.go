package parse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// words flattens a parsed command into plain word descriptions for easy
// comparison.
type wordDesc struct {
	Expand bool
	Segs   []segDesc
}

type segDesc struct {
	Kind SegKind
	Text string
}

func parseWords(t *testing.T, code string) [][]wordDesc {
	t.Helper()
	script, err := ParseScript(SourceForTest(code))
	if err != nil {
		t.Fatalf("ParseScript(%q) -> error %v", code, err)
	}
	var cmds [][]wordDesc
	for _, cmd := range script.Commands {
		var words []wordDesc
		for _, w := range cmd.Words {
			var segs []segDesc
			for _, seg := range w.Segs {
				segs = append(segs, segDesc{seg.Kind, seg.Text})
			}
			words = append(words, wordDesc{w.Expand, segs})
		}
		cmds = append(cmds, words)
	}
	return cmds
}

func text(s string) wordDesc { return wordDesc{Segs: []segDesc{{SegText, s}}} }

func TestParseScript(t *testing.T) {
	tests := []struct {
		name string
		code string
		want [][]wordDesc
	}{
		{"simple", "greet World", [][]wordDesc{{text("greet"), text("World")}}},
		{"two commands", "a 1; b 2\nc 3", [][]wordDesc{
			{text("a"), text("1")}, {text("b"), text("2")}, {text("c"), text("3")}}},
		{"comment", "# comment\na 1", [][]wordDesc{{text("a"), text("1")}}},
		{"empty", "  \n ; \n", nil},
		{"braced word", `a {b c}`, [][]wordDesc{{text("a"), text("b c")}}},
		{"nested braces", `a {b {c d}}`, [][]wordDesc{{text("a"), text("b {c d}")}}},
		{"quoted word", `a "b c"`, [][]wordDesc{{text("a"), text("b c")}}},
		{"empty quoted word", `a ""`, [][]wordDesc{{text("a"), text("")}}},
		{"escapes", `a b\ c\n`, [][]wordDesc{{text("a"), text("b c\n")}}},
		{"line continuation", "a b\\\nc", [][]wordDesc{{text("a"), text("b c")}}},
		{"variable", `a $x`, [][]wordDesc{
			{text("a"), {Segs: []segDesc{{SegVar, "x"}}}}}},
		{"braced variable", `a ${x y}`, [][]wordDesc{
			{text("a"), {Segs: []segDesc{{SegVar, "x y"}}}}}},
		{"variable in word", `a pre$x/post`, [][]wordDesc{
			{text("a"), {Segs: []segDesc{
				{SegText, "pre"}, {SegVar, "x"}, {SegText, "/post"}}}}}},
		{"lone dollar", `a $ b`, [][]wordDesc{{text("a"), text("$"), text("b")}}},
		{"command substitution", `a [b c]`, [][]wordDesc{
			{text("a"), {Segs: []segDesc{{SegScript, "b c"}}}}}},
		{"nested substitution", `a [b [c]]`, [][]wordDesc{
			{text("a"), {Segs: []segDesc{{SegScript, "b [c]"}}}}}},
		{"substitution in quotes", `a "x [b] y"`, [][]wordDesc{
			{text("a"), {Segs: []segDesc{
				{SegText, "x "}, {SegScript, "b"}, {SegText, " y"}}}}}},
		{"expansion marker", `a {*}{b c}`, [][]wordDesc{
			{text("a"), {Expand: true, Segs: []segDesc{{SegText, "b c"}}}}}},
		{"expansion of variable", `a {*}$x`, [][]wordDesc{
			{text("a"), {Expand: true, Segs: []segDesc{{SegVar, "x"}}}}}},
		{"lone {*} is a word", `a {*}`, [][]wordDesc{{text("a"), text("*")}}},
		{"semicolon in braces", `a {b; c}`, [][]wordDesc{{text("a"), text("b; c")}}},
		{"non-ASCII bare word", `put héllo`, [][]wordDesc{{text("put"), text("héllo")}}},
		{"non-ASCII quoted word", `put "日本語 text"`, [][]wordDesc{
			{text("put"), text("日本語 text")}}},
		{"non-ASCII braced word", `put {héllo wörld}`, [][]wordDesc{
			{text("put"), text("héllo wörld")}}},
		{"non-ASCII escape", `put \é`, [][]wordDesc{{text("put"), text("é")}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := parseWords(t, test.code)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("ParseScript(%q) words mismatch (-want +got):\n%s",
					test.code, diff)
			}
		})
	}
}

func TestParseScript_Errors(t *testing.T) {
	tests := []struct {
		code    string
		wantMsg string
	}{
		{`a {b`, "missing close-brace"},
		{`a "b`, `missing "`},
		{`a [b`, "missing close-bracket"},
		{`a {b}c`, "extra characters after close-brace"},
		{`a "b"c`, "extra characters after close-quote"},
	}
	for _, test := range tests {
		_, err := ParseScript(SourceForTest(test.code))
		if err == nil {
			t.Errorf("ParseScript(%q) -> no error, want %q", test.code, test.wantMsg)
			continue
		}
		parseErr, ok := err.(*Error)
		if !ok {
			t.Errorf("ParseScript(%q) -> error of type %T, want *Error", test.code, err)
			continue
		}
		if parseErr.Message != test.wantMsg {
			t.Errorf("ParseScript(%q) -> error %q, want %q",
				test.code, parseErr.Message, test.wantMsg)
		}
	}
}

func TestParseCommand_Incremental(t *testing.T) {
	src := SourceForTest("a 1; } bad")
	cmd, next, err := ParseCommand(src, 0)
	if err != nil || cmd == nil || len(cmd.Words) != 2 {
		t.Fatalf("ParseCommand first command -> %v, %v", cmd, err)
	}
	// The rest of the script is broken, but the first command parsed fine.
	if next >= len(src.Code) {
		t.Fatalf("ParseCommand consumed whole script, next = %d", next)
	}
}

func TestList(t *testing.T) {
	tests := []struct {
		s    string
		want []string
	}{
		{"", nil},
		{"a b c", []string{"a", "b", "c"}},
		{"  a\tb\nc ", []string{"a", "b", "c"}},
		{"{a b} c", []string{"a b", "c"}},
		{`{a {b c}} d`, []string{"a {b c}", "d"}},
		{`"a b" c`, []string{"a b", "c"}},
		{`a\ b c`, []string{"a b", "c"}},
		{`{}`, []string{""}},
		{`héllo {日本語 text} \é`, []string{"héllo", "日本語 text", "é"}},
	}
	for _, test := range tests {
		got, err := List(test.s)
		if err != nil {
			t.Errorf("List(%q) -> error %v", test.s, err)
			continue
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("List(%q) mismatch (-want +got):\n%s", test.s, diff)
		}
	}
}

func TestList_Errors(t *testing.T) {
	for _, s := range []string{"{a", `"a`, "{a}b"} {
		if _, err := List(s); err == nil {
			t.Errorf("List(%q) -> no error, want one", s)
		}
	}
}

func TestMakeList_RoundTrip(t *testing.T) {
	tests := [][]string{
		{"a", "b"},
		{"a b", "c"},
		{"", "x"},
		{"has\ttab", "has\nnewline"},
	}
	for _, elems := range tests {
		got, err := List(MakeList(elems))
		if err != nil {
			t.Errorf("List(MakeList(%q)) -> error %v", elems, err)
			continue
		}
		if diff := cmp.Diff(elems, got); diff != "" {
			t.Errorf("round trip of %q mismatch (-want +got):\n%s", elems, diff)
		}
	}
}
