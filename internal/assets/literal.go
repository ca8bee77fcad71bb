package assets

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// EncodingError reports asset content that cannot be represented as a
// string literal.
type EncodingError struct {
	Name string
	Path string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("asset %s: %s is not valid UTF-8", e.Name, e.Path)
}

var errInvalidUTF8 = errors.New("content is not valid UTF-8")

// Literal encodes content as a double-quoted, single-line C string literal.
// Quotes, backslashes and the common whitespace controls get their named
// escapes; remaining control characters use \u00XX; everything else,
// non-ASCII included, passes through as raw UTF-8 so the compiled constant
// holds the input bytes exactly.
func Literal(content string) (string, error) {
	if !utf8.ValidString(content) {
		return "", errInvalidUTF8
	}

	var b strings.Builder
	b.Grow(len(content) + len(content)/8 + 2)
	b.WriteByte('"')
	for _, r := range content {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String(), nil
}
