// Package resilient parses documents that may be syntactically incomplete at
// the cursor, and translates parser offsets back to the document as typed.
package resilient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/tliron/commonlog"

	"github.com/mvp-joe/insert-this/internal/parser"
	"github.com/mvp-joe/insert-this/internal/span"
	"github.com/mvp-joe/insert-this/internal/syntax"
)

var log = commonlog.GetLogger("insertthis.resilient")

// Placeholder is grafted at the cursor when the document does not parse.
const Placeholder = `""`

// ErrCursorOutOfRange is returned when the cursor row is not in the line table.
var ErrCursorOutOfRange = errors.New("cursor outside document")

// ParseError is returned when the document fails to parse both as typed and
// with the placeholder grafted at the cursor.
type ParseError struct {
	Message    string
	Diagnostic *parser.Diagnostic
}

func (e *ParseError) Error() string {
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Diagnostic
}

func newParseError(diag *parser.Diagnostic) *ParseError {
	return &ParseError{Message: ansi.Strip(diag.Error()), Diagnostic: diag}
}

// Adapter wraps a parser with one placeholder-graft retry.
type Adapter struct {
	parser parser.Parser

	baseOnce sync.Once
	base     int
	baseErr  error
}

// NewAdapter creates an adapter around p.
func NewAdapter(p parser.Parser) *Adapter {
	return &Adapter{parser: p}
}

// Base returns the parser's preamble offset: the parser-space offset of the
// first byte of real source. It is measured once by parsing an empty string
// literal. The probe ignores request cancellation so that one cancelled
// request cannot poison the cached value.
func (a *Adapter) Base() (int, error) {
	a.baseOnce.Do(func() {
		m, err := a.parser.Parse(context.Background(), []byte(Placeholder), parser.Dialect{Syntax: parser.SyntaxECMAScript})
		if err != nil {
			a.baseErr = fmt.Errorf("failed to measure parser preamble: %w", err)
			return
		}
		lit := syntax.Find(m, func(n syntax.Node) bool { return n.Kind() == syntax.KindStringLit })
		if lit == nil {
			a.baseErr = errors.New("failed to measure parser preamble: no string literal in probe")
			return
		}
		a.base = lit.Span().Start
	})
	return a.base, a.baseErr
}

// Parse parses text as typed. When that fails with a syntax diagnostic, it
// grafts an empty string literal at the cursor and parses once more; the
// returned Outcome then reports offsets as if the graft never happened.
func (a *Adapter) Parse(ctx context.Context, text string, lines *span.LineTable, d parser.Dialect, cursor span.Position) (*Outcome, error) {
	base, err := a.Base()
	if err != nil {
		return nil, err
	}

	m, err := a.parser.Parse(ctx, []byte(text), d)
	if err == nil {
		return &Outcome{Module: m, Base: base, Lines: lines}, nil
	}

	var diag *parser.Diagnostic
	if !errors.As(err, &diag) {
		return nil, err
	}

	cursorOffset, ok := lines.ToOffset(cursor)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCursorOutOfRange, cursor)
	}

	log.Debugf("parse failed (%s), grafting placeholder at byte %d", diag.Error(), cursorOffset)

	grafted := make([]byte, 0, len(text)+len(Placeholder))
	grafted = append(grafted, text[:cursorOffset]...)
	grafted = append(grafted, Placeholder...)
	grafted = append(grafted, text[cursorOffset:]...)

	m, err = a.parser.Parse(ctx, grafted, d)
	if err != nil {
		var again *parser.Diagnostic
		if errors.As(err, &again) {
			return nil, newParseError(again)
		}
		return nil, err
	}

	return &Outcome{
		Module:               m,
		Base:                 base,
		HasMissingExpression: true,
		PlaceholderAt:        base + cursorOffset,
		PlaceholderSize:      len(Placeholder),
		Lines:                lines,
	}, nil
}
