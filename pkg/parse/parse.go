// Package parse implements the tacl word parser.
//
// A script is a sequence of commands separated by newlines or semicolons.
// Each command is a sequence of words. The parser resolves quoting (braces,
// double quotes, backslash escapes) but performs no substitution: variable
// and command-substitution segments are reported as tokens for the evaluator
// to substitute.
package parse

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"src.tacl.dev/pkg/diag"
)

// Source describes a piece of source code.
type Source struct {
	Name string
	Code string
}

// SourceForTest returns a Source for a piece of code used in tests.
func SourceForTest(code string) Source {
	return Source{Name: "[test]", Code: code}
}

// Script is a parsed script.
type Script struct {
	Source   Source
	Commands []*Command
}

// Command is one parsed command: a sequence of words. The range covers the
// command text from the first word to the end of the last word.
type Command struct {
	diag.Ranging
	Words []*Word
}

// Word is one word of a command. A word is a sequence of segments that the
// evaluator substitutes and concatenates. Expand indicates that the word was
// marked with the {*} prefix and its value should be flattened as a list into
// multiple arguments.
type Word struct {
	diag.Ranging
	Expand bool
	Segs   []Segment
}

// SegKind enumerates the kinds of word segments.
type SegKind int

const (
	// SegText is literal text, with escapes already resolved.
	SegText SegKind = iota
	// SegVar is a variable reference; Text holds the variable name.
	SegVar
	// SegScript is a command substitution; Text holds the nested script.
	SegScript
)

// Segment is one substitution unit of a word.
type Segment struct {
	diag.Ranging
	Kind SegKind
	Text string
}

// Error is a parse error with context.
type Error struct {
	Message string
	Context diag.Context
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Range returns the range of the error.
func (e *Error) Range() diag.Ranging { return e.Context.Range() }

// Show shows the error with context.
func (e *Error) Show(indent string) string {
	return fmt.Sprintf("Parse error: \033[31;1m%s\033[m\n", e.Message) +
		e.Context.ShowCompact(indent+"  ")
}

func newError(src Source, pos int, format string, args ...any) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(src.Name, src.Code, diag.PointRanging(pos)),
	}
}

// ParseScript parses a whole script. If a parse error is encountered, the
// commands parsed so far are returned along with the error; the error always
// has type *Error.
func ParseScript(src Source) (*Script, error) {
	script := &Script{Source: src}
	pos := 0
	for pos < len(src.Code) {
		cmd, next, err := ParseCommand(src, pos)
		if err != nil {
			return script, err
		}
		if cmd != nil {
			script.Commands = append(script.Commands, cmd)
		}
		pos = next
	}
	return script, nil
}

// ParseCommand parses one command starting at pos, skipping leading
// separators and comments. It returns the parsed command (nil if only
// separators and comments remain), and the position where parsing of the
// next command should start.
func ParseCommand(src Source, pos int) (*Command, int, error) {
	p := &parser{src: src, pos: pos}
	cmd, err := p.command()
	return cmd, p.pos, err
}

type parser struct {
	src Source
	pos int
}

const eof rune = -1

func (p *parser) peek() rune {
	if p.pos >= len(p.src.Code) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(p.src.Code[p.pos:])
	return r
}

func (p *parser) next() rune {
	if p.pos >= len(p.src.Code) {
		return eof
	}
	r, size := utf8.DecodeRuneInString(p.src.Code[p.pos:])
	p.pos += size
	return r
}

func isInlineSpace(r rune) bool { return r == ' ' || r == '\t' }

func isCommandSep(r rune) bool { return r == '\n' || r == ';' || r == '\r' }

// command parses one command, consuming the trailing separator if any.
func (p *parser) command() (*Command, error) {
	for {
		for isInlineSpace(p.peek()) || isCommandSep(p.peek()) {
			p.next()
		}
		if p.peek() == '#' {
			for p.peek() != '\n' && p.peek() != eof {
				p.next()
			}
			continue
		}
		break
	}
	if p.peek() == eof {
		return nil, nil
	}

	cmd := &Command{Ranging: diag.Ranging{From: p.pos, To: p.pos}}
	for {
		r := p.peek()
		if r == eof || isCommandSep(r) {
			p.next()
			break
		}
		if isInlineSpace(r) {
			p.next()
			continue
		}
		word, err := p.word()
		if err != nil {
			return nil, err
		}
		cmd.Words = append(cmd.Words, word)
		cmd.To = word.To
	}
	if len(cmd.Words) == 0 {
		return nil, nil
	}
	return cmd, nil
}

func (p *parser) word() (*Word, error) {
	word := &Word{Ranging: diag.Ranging{From: p.pos, To: p.pos}}

	// {*} marks the word for expansion, unless it is the whole word.
	if strings.HasPrefix(p.rest(), "{*}") && !wordEndsAt(p.src.Code, p.pos+3) {
		word.Expand = true
		p.pos += 3
		word.From = p.pos
	}

	switch p.peek() {
	case '{':
		return p.bracedWord(word)
	case '"':
		return p.quotedWord(word)
	default:
		return p.bareWord(word)
	}
}

func (p *parser) rest() string { return p.src.Code[p.pos:] }

func wordEndsAt(code string, pos int) bool {
	if pos >= len(code) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(code[pos:])
	return isInlineSpace(r) || isCommandSep(r)
}

// bracedWord parses a {...}-quoted word: literal text with balanced nested
// braces and no substitution. A backslash-newline inside braces is kept
// literally, matching the quoting rule that braces suppress all processing
// except nested brace counting and escaped braces.
func (p *parser) bracedWord(word *Word) (*Word, error) {
	open := p.pos
	p.next() // consume {
	depth := 1
	var sb strings.Builder
	for {
		switch r := p.next(); r {
		case eof:
			return nil, newError(p.src, open, "missing close-brace")
		case '\\':
			// An escaped brace does not affect the depth count; the
			// backslash is retained.
			nxt := p.next()
			if nxt == eof {
				return nil, newError(p.src, open, "missing close-brace")
			}
			sb.WriteByte('\\')
			sb.WriteRune(nxt)
		case '{':
			depth++
			sb.WriteRune(r)
		case '}':
			depth--
			if depth == 0 {
				if !wordEndsAt(p.src.Code, p.pos) {
					return nil, newError(p.src, p.pos,
						"extra characters after close-brace")
				}
				word.To = p.pos
				word.Segs = append(word.Segs, Segment{
					Ranging: diag.Ranging{From: open + 1, To: p.pos - 1},
					Kind:    SegText, Text: sb.String(),
				})
				return word, nil
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
}

// quotedWord parses a "..."-quoted word: backslash escapes, variable and
// command substitution remain active inside.
func (p *parser) quotedWord(word *Word) (*Word, error) {
	open := p.pos
	p.next() // consume "
	segs, err := p.segments(func(r rune) bool { return r == '"' }, open,
		"missing \"")
	if err != nil {
		return nil, err
	}
	p.next() // consume closing "
	if !wordEndsAt(p.src.Code, p.pos) {
		return nil, newError(p.src, p.pos, "extra characters after close-quote")
	}
	word.To = p.pos
	if len(segs) == 0 {
		// An empty quoted word still contributes one empty argument.
		segs = []Segment{{Ranging: diag.PointRanging(p.pos - 1), Kind: SegText}}
	}
	word.Segs = segs
	return word, nil
}

func (p *parser) bareWord(word *Word) (*Word, error) {
	segs, err := p.segments(func(r rune) bool {
		return isInlineSpace(r) || isCommandSep(r)
	}, p.pos, "")
	if err != nil {
		return nil, err
	}
	word.To = p.pos
	word.Segs = segs
	return word, nil
}

// segments parses a run of text, variable and command-substitution segments
// until the terminating condition holds. If the run may not hit EOF,
// eofError names the error to report, anchored at openPos.
func (p *parser) segments(isEnd func(rune) bool, openPos int, eofError string) ([]Segment, error) {
	var segs []Segment
	var text strings.Builder
	textFrom := p.pos

	flushText := func() {
		if text.Len() > 0 {
			segs = append(segs, Segment{
				Ranging: diag.Ranging{From: textFrom, To: p.pos},
				Kind:    SegText, Text: text.String(),
			})
			text.Reset()
		}
		textFrom = p.pos
	}

	for {
		r := p.peek()
		if r == eof {
			if eofError != "" {
				return nil, newError(p.src, openPos, "%s", eofError)
			}
			break
		}
		if isEnd(r) {
			break
		}
		switch r {
		case '\\':
			p.next()
			text.WriteString(resolveEscape(p.next()))
		case '$':
			from := p.pos
			p.next()
			name, ok := p.variableName()
			if !ok {
				// A lone $ is literal.
				text.WriteByte('$')
				continue
			}
			flushText()
			segs = append(segs, Segment{
				Ranging: diag.Ranging{From: from, To: p.pos},
				Kind:    SegVar, Text: name,
			})
			textFrom = p.pos
		case '[':
			from := p.pos
			inner, err := p.bracketScript()
			if err != nil {
				return nil, err
			}
			flushText()
			segs = append(segs, Segment{
				Ranging: diag.Ranging{From: from, To: p.pos},
				Kind:    SegScript, Text: inner,
			})
			textFrom = p.pos
		default:
			p.next()
			text.WriteRune(r)
		}
	}
	flushText()
	return segs, nil
}

func resolveEscape(r rune) string {
	switch r {
	case eof:
		return "\\"
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\n':
		// Backslash-newline is a word continuation; it substitutes to one
		// space.
		return " "
	default:
		return string(r)
	}
}

// variableName scans a variable name after $: either a run of alphanumeric
// characters, underscores and namespace qualifiers, or a {braced} name.
func (p *parser) variableName() (string, bool) {
	if p.peek() == '{' {
		p.next()
		from := p.pos
		for p.peek() != '}' {
			if p.peek() == eof {
				return "", false
			}
			p.next()
		}
		name := p.src.Code[from:p.pos]
		p.next() // consume }
		return name, true
	}
	from := p.pos
	for isVariableNameChar(p.peek()) {
		p.next()
	}
	if p.pos == from {
		return "", false
	}
	return p.src.Code[from:p.pos], true
}

func isVariableNameChar(r rune) bool {
	return r == '_' || r == ':' ||
		('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}

// bracketScript consumes a [...] command substitution and returns the inner
// script text. Nested brackets are counted; backslash escapes are skipped
// over so an escaped bracket does not affect the count.
func (p *parser) bracketScript() (string, error) {
	open := p.pos
	p.next() // consume [
	from := p.pos
	depth := 1
	for {
		switch p.next() {
		case eof:
			return "", newError(p.src, open, "missing close-bracket")
		case '\\':
			p.next()
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return p.src.Code[from : p.pos-1], nil
			}
		}
	}
}
