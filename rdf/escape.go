package rdf

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// Unicode surrogate pair constants
const (
	unicodeSurrogateHighStart = 0xD800
	unicodeSurrogateHighEnd   = 0xDBFF
	unicodeSurrogateLowStart  = 0xDC00
	unicodeSurrogateLowEnd    = 0xDFFF
	unicodeSurrogateBase      = 0x10000
)

var errInvalidEscape = errors.New("invalid escape sequence")

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func parseHexDigit(hex byte) (int, bool) {
	switch {
	case hex >= '0' && hex <= '9':
		return int(hex - '0'), true
	case hex >= 'a' && hex <= 'f':
		return int(hex-'a') + 10, true
	case hex >= 'A' && hex <= 'F':
		return int(hex-'A') + 10, true
	default:
		return 0, false
	}
}

// decodeUChar decodes the 4 or 8 hex digits of a \u or \U escape. It
// returns -1 when the digits are malformed.
func decodeUChar(hexStr string) rune {
	if len(hexStr) != 4 && len(hexStr) != 8 {
		return -1
	}
	var codePoint rune
	for i := 0; i < len(hexStr); i++ {
		digit, ok := parseHexDigit(hexStr[i])
		if !ok {
			return -1
		}
		codePoint = codePoint*16 + rune(digit)
	}
	return codePoint
}

func isValidUnicodeCodePoint(codePoint rune) bool {
	if codePoint < 0 || codePoint > 0x10FFFF {
		return false
	}
	return codePoint < unicodeSurrogateHighStart || codePoint > unicodeSurrogateLowEnd
}

func isValidLangTag(tag string) bool {
	if tag == "" {
		return false
	}
	for i, part := range strings.Split(tag, "-") {
		if part == "" || len(part) > 8 {
			return false
		}
		for j := 0; j < len(part); j++ {
			ch := part[j]
			alpha := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
			if i == 0 && !alpha {
				return false
			}
			if !alpha && !(ch >= '0' && ch <= '9') {
				return false
			}
		}
	}
	return true
}

// unescapeString decodes the escape sequences allowed in Turtle and
// N-Triples string literals: ECHAR (\n, \t, ...), \uXXXX (with surrogate
// pairs) and \UXXXXXXXX.
func unescapeString(s string) (string, error) {
	if strings.IndexByte(s, '\\') < 0 {
		return s, nil
	}
	var builder strings.Builder
	builder.Grow(len(s))
	for pos := 0; pos < len(s); {
		ch := s[pos]
		if ch != '\\' {
			builder.WriteByte(ch)
			pos++
			continue
		}
		if pos+1 >= len(s) {
			return "", errors.New("unterminated escape")
		}
		switch next := s[pos+1]; next {
		case 'n':
			builder.WriteByte('\n')
			pos += 2
		case 't':
			builder.WriteByte('\t')
			pos += 2
		case 'r':
			builder.WriteByte('\r')
			pos += 2
		case 'b':
			builder.WriteByte('\b')
			pos += 2
		case 'f':
			builder.WriteByte('\f')
			pos += 2
		case '"', '\'', '\\':
			builder.WriteByte(next)
			pos += 2
		case 'u', 'U':
			codePoint, advance, err := unescapeUnicode(s, pos)
			if err != nil {
				return "", err
			}
			builder.WriteRune(codePoint)
			pos += advance
		default:
			return "", errors.Wrapf(errInvalidEscape, "\\%c", next)
		}
	}
	return builder.String(), nil
}

// unescapeUnicode decodes the \u or \U escape starting at s[pos] and
// returns the code point and the number of bytes consumed.
func unescapeUnicode(s string, pos int) (rune, int, error) {
	width := 4
	if s[pos+1] == 'U' {
		width = 8
	}
	if pos+2+width > len(s) {
		return 0, 0, errInvalidEscape
	}
	codePoint := decodeUChar(s[pos+2 : pos+2+width])
	if codePoint < 0 {
		return 0, 0, errInvalidEscape
	}
	advance := 2 + width
	if width == 4 && codePoint >= unicodeSurrogateHighStart && codePoint <= unicodeSurrogateHighEnd {
		if pos+12 > len(s) || s[pos+6] != '\\' || s[pos+7] != 'u' {
			return 0, 0, errInvalidEscape
		}
		low := decodeUChar(s[pos+8 : pos+12])
		if low < unicodeSurrogateLowStart || low > unicodeSurrogateLowEnd {
			return 0, 0, errInvalidEscape
		}
		codePoint = unicodeSurrogateBase + ((codePoint - unicodeSurrogateHighStart) << 10) + (low - unicodeSurrogateLowStart)
		advance = 12
	}
	if !isValidUnicodeCodePoint(codePoint) {
		return 0, 0, errInvalidEscape
	}
	return codePoint, advance, nil
}

// escapeLiteral escapes a lexical form for output between double quotes.
func escapeLiteral(s string) string {
	var builder strings.Builder
	builder.Grow(len(s) + 2)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			builder.WriteString(`�`)
		case r == '"':
			builder.WriteString(`\"`)
		case r == '\\':
			builder.WriteString(`\\`)
		case r == '\n':
			builder.WriteString(`\n`)
		case r == '\r':
			builder.WriteString(`\r`)
		case r == '\t':
			builder.WriteString(`\t`)
		case r < 0x20 || r == 0x7F:
			fmt.Fprintf(&builder, `\u%04X`, r)
		default:
			builder.WriteString(s[i : i+size])
		}
		i += size
	}
	return builder.String()
}

// escapeIRI escapes the characters IRIREF does not allow verbatim.
func escapeIRI(s string) string {
	clean := true
	for i := 0; i < len(s); i++ {
		if isDisallowedIRIChar(rune(s[i])) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	var builder strings.Builder
	for _, r := range s {
		if r < 0x80 && isDisallowedIRIChar(r) {
			fmt.Fprintf(&builder, `\u%04X`, r)
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

func isDisallowedIRIChar(codePoint rune) bool {
	if codePoint <= 0x20 {
		return true
	}
	switch codePoint {
	case '<', '>', '"', '{', '}', '|', '^', '`', '\\':
		return true
	}
	return false
}
