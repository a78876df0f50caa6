package insert

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mvp-joe/insert-this/internal/span"
)

// ErrOverlappingEdits is returned by Apply when two edits touch the same text.
var ErrOverlappingEdits = errors.New("overlapping edits")

// Apply applies edits to text. Every range refers to the original text, as
// in an LSP WorkspaceEdit; inserts at the same position keep their order.
// lines must be the table of text.
func Apply(text string, edits []Edit, lines *span.LineTable) (string, error) {
	type resolved struct {
		start, end int
		text       string
	}

	rs := make([]resolved, 0, len(edits))
	for _, e := range edits {
		start, ok := lines.ToOffset(e.Range.Start)
		if !ok {
			return "", fmt.Errorf("edit start %s outside document", e.Range.Start)
		}
		end, ok := lines.ToOffset(e.Range.End)
		if !ok {
			return "", fmt.Errorf("edit end %s outside document", e.Range.End)
		}
		if end < start {
			return "", fmt.Errorf("edit range %s-%s is reversed", e.Range.Start, e.Range.End)
		}
		rs = append(rs, resolved{start: start, end: end, text: e.NewText})
	}

	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].start < rs[j].start
	})
	for i := 1; i < len(rs); i++ {
		if rs[i].start < rs[i-1].end {
			return "", fmt.Errorf("%w: %d-%d and %d-%d", ErrOverlappingEdits, rs[i-1].start, rs[i-1].end, rs[i].start, rs[i].end)
		}
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, r := range rs {
		b.WriteString(text[last:r.start])
		b.WriteString(r.text)
		last = r.end
	}
	b.WriteString(text[last:])
	return b.String(), nil
}
