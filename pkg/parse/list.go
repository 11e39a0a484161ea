package parse

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// List splits a string into list elements. Elements are separated by
// whitespace; braces and double quotes group an element and may contain the
// separators; a backslash escapes the next character. This is the only
// structural introspection the evaluator performs on values, used for
// argument expansion.
func List(s string) ([]string, error) {
	var elems []string
	i := 0
	for {
		for i < len(s) && isListSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return elems, nil
		}
		elem, next, err := listElement(s, i)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		i = next
	}
}

// ListLength returns the number of elements in a list string.
func ListLength(s string) (int, error) {
	elems, err := List(s)
	if err != nil {
		return 0, err
	}
	return len(elems), nil
}

// MakeList joins elements into a list string, quoting any element that
// contains separators or is empty, so that List(MakeList(elems)) round-trips.
// An element with balanced quoting characters is braced; anything else falls
// back to backslash escaping.
func MakeList(elems []string) string {
	var sb strings.Builder
	for i, elem := range elems {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch {
		case elem == "" || (strings.ContainsAny(elem, " \t\n\r\"") &&
			!strings.ContainsAny(elem, `\{}`)):
			sb.WriteByte('{')
			sb.WriteString(elem)
			sb.WriteByte('}')
		case strings.ContainsAny(elem, " \t\n\r\"\\{}"):
			writeEscaped(&sb, elem)
		default:
			sb.WriteString(elem)
		}
	}
	return sb.String()
}

func writeEscaped(sb *strings.Builder, elem string) {
	for i := 0; i < len(elem); i++ {
		switch b := elem[i]; b {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case ' ', '"', '\\', '{', '}':
			sb.WriteByte('\\')
			sb.WriteByte(b)
		default:
			sb.WriteByte(b)
		}
	}
}

// writeUnescaped writes the character an escaped byte stands for. Bytes
// outside ASCII are part of a multibyte sequence and pass through unchanged.
func writeUnescaped(sb *strings.Builder, b byte) {
	if b < utf8.RuneSelf {
		sb.WriteString(resolveEscape(rune(b)))
	} else {
		sb.WriteByte(b)
	}
}

func isListSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func listElement(s string, i int) (string, int, error) {
	switch s[i] {
	case '{':
		depth := 1
		var sb strings.Builder
		j := i + 1
		for ; j < len(s); j++ {
			switch s[j] {
			case '\\':
				if j+1 < len(s) {
					sb.WriteByte(s[j])
					j++
					sb.WriteByte(s[j])
					continue
				}
				sb.WriteByte(s[j])
			case '{':
				depth++
				sb.WriteByte(s[j])
			case '}':
				depth--
				if depth == 0 {
					if j+1 < len(s) && !isListSpace(s[j+1]) {
						return "", 0, fmt.Errorf(
							"list element in braces followed by %q instead of space",
							string(s[j+1]))
					}
					return sb.String(), j + 1, nil
				}
				sb.WriteByte(s[j])
			default:
				sb.WriteByte(s[j])
			}
		}
		return "", 0, errors.New("unmatched open brace in list")
	case '"':
		var sb strings.Builder
		j := i + 1
		for ; j < len(s); j++ {
			switch s[j] {
			case '\\':
				if j+1 < len(s) {
					j++
					writeUnescaped(&sb, s[j])
					continue
				}
				sb.WriteByte(s[j])
			case '"':
				if j+1 < len(s) && !isListSpace(s[j+1]) {
					return "", 0, fmt.Errorf(
						"list element in quotes followed by %q instead of space",
						string(s[j+1]))
				}
				return sb.String(), j + 1, nil
			default:
				sb.WriteByte(s[j])
			}
		}
		return "", 0, errors.New("unmatched open quote in list")
	default:
		var sb strings.Builder
		j := i
		for ; j < len(s) && !isListSpace(s[j]); j++ {
			if s[j] == '\\' && j+1 < len(s) {
				j++
				writeUnescaped(&sb, s[j])
			} else {
				sb.WriteByte(s[j])
			}
		}
		return sb.String(), j, nil
	}
}
