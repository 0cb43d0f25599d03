package object

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Quote renders s the way Python's repr does for str.
func Quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteByte(q)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

// QuoteBytes renders b the way Python's repr does for bytes.
func QuoteBytes(data []byte) string {
	var b strings.Builder
	b.WriteString("b'")
	for _, c := range data {
		switch {
		case c == '\\' || c == '\'':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// StringValue returns the text of a str object.
func StringValue(o Object) (string, bool) {
	if o == nil || TypeName(o.TypeText()) != "str" {
		return "", false
	}
	return unquote(o.Repr())
}

func unquote(repr string) (string, bool) {
	if len(repr) < 2 {
		return "", false
	}
	q := repr[0]
	if (q != '\'' && q != '"') || repr[len(repr)-1] != q {
		return "", false
	}
	body := repr[1 : len(repr)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, true
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'x':
			if i+2 < len(body) {
				if v, err := strconv.ParseUint(body[i+1:i+3], 16, 8); err == nil {
					b.WriteRune(rune(v))
					i += 2
					continue
				}
			}
			b.WriteString(`\x`)
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String(), true
}

// IntValue returns the value of an int object.
func IntValue(o Object) (int64, bool) {
	if o == nil || TypeName(o.TypeText()) != "int" {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(o.Repr()), 0, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IntTuple returns the leading integer components of a tuple repr such as
// "(1, 19, 1)" or "(1, 22, 0, "")". Parsing stops at the first non-integer.
func IntTuple(o Object) ([]int, bool) {
	if o == nil {
		return nil, false
	}
	repr := strings.TrimSpace(o.Repr())
	if !strings.HasPrefix(repr, "(") || !strings.HasSuffix(repr, ")") {
		return nil, false
	}
	var out []int
	for _, part := range strings.Split(repr[1:len(repr)-1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			break
		}
		out = append(out, n)
	}
	return out, len(out) > 0
}

// HasMember reports whether name is in o's member set.
func HasMember(o Object, name string) bool {
	if o == nil {
		return false
	}
	return slices.Contains(o.Dir(), name)
}
