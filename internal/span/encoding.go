package span

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Encoding is the unit an editor counts columns in.
type Encoding int

const (
	// UTF16 counts UTF-16 code units (LSP and VS Code default).
	UTF16 Encoding = iota
	// UTF8 counts bytes.
	UTF8
	// UTF32 counts code points.
	UTF32
)

// ParseEncoding accepts the LSP position encoding names ("utf-16", "utf-8", "utf-32").
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-16", "utf16", "":
		return UTF16, nil
	case "utf-8", "utf8":
		return UTF8, nil
	case "utf-32", "utf32":
		return UTF32, nil
	}
	return UTF16, fmt.Errorf("unknown position encoding %q", name)
}

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf-8"
	case UTF32:
		return "utf-32"
	default:
		return "utf-16"
	}
}

// Len returns the length of s in column units.
func (e Encoding) Len(s string) int {
	if e == UTF8 {
		return len(s)
	}
	n := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		n += e.units(r, size)
		i += size
	}
	return n
}

// byteLen returns how many bytes of s the first units column units cover.
// A unit count that splits a character stops before that character.
func (e Encoding) byteLen(s string, units int) int {
	if units <= 0 {
		return 0
	}
	if e == UTF8 {
		return min(units, len(s))
	}
	n, i := 0, 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		w := e.units(r, size)
		if n+w > units {
			break
		}
		n += w
		i += size
	}
	return i
}

func (e Encoding) units(r rune, size int) int {
	switch e {
	case UTF8:
		return size
	case UTF32:
		return 1
	}
	if r >= 0x10000 {
		return 2
	}
	return 1
}
