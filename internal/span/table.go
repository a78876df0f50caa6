// Package span maps between UTF-8 byte offsets and editor (line, column)
// positions.
package span

import (
	"fmt"
	"sort"
	"strings"
)

// Position is a 0-indexed (line, column) pair. Character is measured in the
// column units of the LineTable that produced it.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Pos is shorthand for Position{Line: line, Character: character}.
func Pos(line, character int) Position {
	return Position{Line: line, Character: character}
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// Before reports whether p sorts strictly before q.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Character < q.Character
}

// Range is a half-open [Start, End) pair of positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Line is one entry of a LineTable. Offset is the byte offset of the first
// byte of the line; Text excludes the line separator.
type Line struct {
	Offset int
	Text   string
}

// LineTable holds the start offset and text of every line of a document,
// followed by a sentinel entry at end of text. It is immutable.
type LineTable struct {
	lines []Line
	enc   Encoding
	size  int
}

// NewLineTable splits text on "\n" (a preceding "\r" is treated as part of
// the separator) and records where each line starts.
func NewLineTable(text string, enc Encoding) *LineTable {
	t := &LineTable{
		lines: make([]Line, 0, strings.Count(text, "\n")+2),
		enc:   enc,
		size:  len(text),
	}

	start := 0
	for {
		i := strings.IndexByte(text[start:], '\n')
		if i < 0 {
			break
		}
		end := start + i
		t.lines = append(t.lines, Line{Offset: start, Text: strings.TrimSuffix(text[start:end], "\r")})
		start = end + 1
	}
	t.lines = append(t.lines, Line{Offset: start, Text: text[start:]})
	t.lines = append(t.lines, Line{Offset: len(text)})

	return t
}

// Encoding returns the column unit of the table.
func (t *LineTable) Encoding() Encoding {
	return t.enc
}

// Len returns the number of lines, excluding the sentinel.
func (t *LineTable) Len() int {
	return len(t.lines) - 1
}

// Size returns the byte length of the document.
func (t *LineTable) Size() int {
	return t.size
}

// Line returns the i-th line.
func (t *LineTable) Line(i int) (Line, bool) {
	if i < 0 || i >= t.Len() {
		return Line{}, false
	}
	return t.lines[i], true
}

// ToOffset converts pos to a byte offset. Columns past the end of the line
// clamp to the end of the line. The result is false only when pos.Line is
// out of bounds.
func (t *LineTable) ToOffset(pos Position) (int, bool) {
	line, ok := t.Line(pos.Line)
	if !ok {
		return 0, false
	}
	return line.Offset + t.enc.byteLen(line.Text, pos.Character), true
}

// ToPosition converts a byte offset to a position. The result is false when
// offset lies outside [0, Size()].
func (t *LineTable) ToPosition(offset int) (Position, bool) {
	if offset < 0 || offset > t.size {
		return Position{}, false
	}

	n := t.Len()
	row := sort.Search(n, func(i int) bool {
		return t.lines[i+1].Offset > offset
	})
	if row >= n {
		row = n - 1
	}

	line := t.lines[row]
	rel := min(offset-line.Offset, len(line.Text))
	return Position{Line: row, Character: t.enc.Len(line.Text[:rel])}, true
}

// ToRange converts a byte range to a position range.
func (t *LineTable) ToRange(start, end int) (Range, bool) {
	s, ok := t.ToPosition(start)
	if !ok {
		return Range{}, false
	}
	e, ok := t.ToPosition(end)
	if !ok {
		return Range{}, false
	}
	return Range{Start: s, End: e}, true
}
