package resilient

import (
	"github.com/mvp-joe/insert-this/internal/span"
	"github.com/mvp-joe/insert-this/internal/syntax"
)

// Outcome is the result of one resilient parse. Its tree is in parser space;
// the methods translate to and from the document as the user typed it.
type Outcome struct {
	Module *syntax.Module
	// Base is the parser preamble offset.
	Base int
	// HasMissingExpression is set when a placeholder was grafted at the
	// cursor to make the document parse.
	HasMissingExpression bool
	// PlaceholderAt is the parser-space offset of the graft.
	PlaceholderAt   int
	PlaceholderSize int
	Lines           *span.LineTable
}

// SourceOffset converts a parser-space offset to a document byte offset.
func (o *Outcome) SourceOffset(p int) int {
	if o.HasMissingExpression && p > o.PlaceholderAt {
		p -= o.PlaceholderSize
	}
	return p - o.Base
}

// ParserOffset converts a document byte offset to parser space.
func (o *Outcome) ParserOffset(s int) int {
	p := s + o.Base
	if o.HasMissingExpression && p >= o.PlaceholderAt {
		p += o.PlaceholderSize
	}
	return p
}

// SourceSpan converts a parser-space span to document offsets.
func (o *Outcome) SourceSpan(s syntax.Span) syntax.Span {
	return syntax.Span{Start: o.SourceOffset(s.Start), End: o.SourceOffset(s.End)}
}

// Position converts a parser-space offset to an editor position.
func (o *Outcome) Position(p int) (span.Position, bool) {
	return o.Lines.ToPosition(o.SourceOffset(p))
}

// Offset converts an editor position to a document byte offset.
func (o *Outcome) Offset(pos span.Position) (int, bool) {
	return o.Lines.ToOffset(pos)
}

// ParserOffsetAt converts an editor position to a parser-space offset.
func (o *Outcome) ParserOffsetAt(pos span.Position) (int, bool) {
	s, ok := o.Lines.ToOffset(pos)
	if !ok {
		return 0, false
	}
	return o.ParserOffset(s), true
}
