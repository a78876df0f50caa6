// Package snippet builds editor snippet strings (the LSP/TextMate snippet
// syntax with $1, ${1:placeholder} and $0).
package snippet

import (
	"strconv"
	"strings"
)

// Builder accumulates a snippet. The zero value is ready to use; automatic
// placeholder indexes start at 1.
type Builder struct {
	b    strings.Builder
	next int
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

// AppendText appends literal text, escaping snippet syntax.
func (s *Builder) AppendText(text string) *Builder {
	s.b.WriteString(Escape(text))
	return s
}

// AppendTabstop appends $index. Index 0 is the final cursor position.
func (s *Builder) AppendTabstop(index int) *Builder {
	s.b.WriteByte('$')
	s.b.WriteString(strconv.Itoa(index))
	return s
}

// AppendPlaceholder appends ${n:value} using the next free index.
func (s *Builder) AppendPlaceholder(value string) *Builder {
	s.next++
	return s.AppendPlaceholderAt(s.next, value)
}

// AppendPlaceholderAt appends ${index:value}.
func (s *Builder) AppendPlaceholderAt(index int, value string) *Builder {
	if index > s.next {
		s.next = index
	}
	s.b.WriteString("${")
	s.b.WriteString(strconv.Itoa(index))
	s.b.WriteByte(':')
	s.b.WriteString(Escape(value))
	s.b.WriteByte('}')
	return s
}

// String returns the snippet text.
func (s *Builder) String() string {
	return s.b.String()
}

var escaper = strings.NewReplacer(`\`, `\\`, `$`, `\$`, `}`, `\}`)

// Escape makes text safe to embed in a snippet.
func Escape(text string) string {
	return escaper.Replace(text)
}

var unescaper = strings.NewReplacer(`\\`, `\`, `\$`, `$`, `\}`, `}`)

// Plain renders a snippet as the text an editor would insert, dropping
// tabstops and keeping placeholder values. It understands only the syntax
// Builder produces.
func Plain(snippet string) string {
	var out strings.Builder
	for i := 0; i < len(snippet); i++ {
		c := snippet[i]
		switch {
		case c == '\\' && i+1 < len(snippet):
			out.WriteString(unescaper.Replace(snippet[i : i+2]))
			i++
		case c == '$' && i+1 < len(snippet) && snippet[i+1] == '{':
			// ${n:value}
			j := strings.IndexByte(snippet[i:], ':')
			if j < 0 {
				out.WriteByte(c)
				continue
			}
			i += j
		case c == '$':
			for i+1 < len(snippet) && snippet[i+1] >= '0' && snippet[i+1] <= '9' {
				i++
			}
		case c == '}':
			// closes a placeholder; literal braces are always escaped
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}
