package strutil

import (
	"testing"

	. "src.tacl.dev/pkg/tt"
)

func TestTitle(t *testing.T) {
	Test(t, Fn("Title", Title), Table{
		Args("foo").Rets("Foo"),
		Args("Foo").Rets("Foo"),
		Args("").Rets(""),
	})
}

func TestChopLineEnding(t *testing.T) {
	Test(t, Fn("ChopLineEnding", ChopLineEnding), Table{
		Args("").Rets(""),
		Args("text").Rets("text"),
		Args("text\n").Rets("text"),
		Args("text\r\n").Rets("text"),
	})
}

func TestEllipsize(t *testing.T) {
	Test(t, Fn("Ellipsize", Ellipsize), Table{
		Args("short", 10).Rets("short"),
		Args("exactly ok", 10).Rets("exactly ok"),
		Args("cut off here", 10).Rets("cut off..."),
		// The cut never splits a multibyte rune.
		Args("héllo wörld", 9).Rets("héllo..."),
		Args("日本語テキスト", 10).Rets("日本..."),
	})
}
