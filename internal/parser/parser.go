// Package parser is the syntax parser service: it turns ECMAScript or
// TypeScript source into a syntax.Module, or reports a Diagnostic.
package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/mvp-joe/insert-this/internal/syntax"
)

// Syntax families understood by Parse.
const (
	SyntaxTypeScript = "typescript"
	SyntaxECMAScript = "ecmascript"
)

// Editor language ids.
const (
	LangTypeScript      = "typescript"
	LangTypeScriptReact = "typescriptreact"
	LangJavaScript      = "javascript"
	LangJavaScriptReact = "javascriptreact"
)

// Dialect selects the grammar used for a parse.
type Dialect struct {
	Syntax        string `json:"syntax"`
	TSX           bool   `json:"tsx"`
	JSX           bool   `json:"jsx"`
	DynamicImport bool   `json:"dynamicImport"`
}

// DialectFor maps an editor language id to a dialect. Unknown ids fall back
// to plain ECMAScript.
func DialectFor(languageID string) Dialect {
	d := Dialect{Syntax: SyntaxECMAScript, DynamicImport: true}
	if strings.HasPrefix(languageID, LangTypeScript) {
		d.Syntax = SyntaxTypeScript
	}
	d.TSX = languageID == LangTypeScriptReact
	d.JSX = languageID == LangJavaScriptReact
	return d
}

// Supported reports whether languageID is one of the four JS/TS language ids.
func Supported(languageID string) bool {
	switch languageID {
	case LangTypeScript, LangTypeScriptReact, LangJavaScript, LangJavaScriptReact:
		return true
	}
	return false
}

// IsReact reports whether languageID allows JSX markup.
func IsReact(languageID string) bool {
	return languageID == LangTypeScriptReact || languageID == LangJavaScriptReact
}

func (d Dialect) String() string {
	switch {
	case d.Syntax == SyntaxTypeScript && d.TSX:
		return "tsx"
	case d.Syntax == SyntaxTypeScript:
		return "typescript"
	case d.JSX:
		return "jsx"
	}
	return "ecmascript"
}

// Parser parses source text. Syntax errors are reported as *Diagnostic; any
// other error means the parse could not be attempted.
type Parser interface {
	Parse(ctx context.Context, src []byte, d Dialect) (*syntax.Module, error)
}

// Diagnostic is a syntax error. Offset is a byte offset into the parsed text,
// Line and Column are 0-indexed (Column in bytes).
type Diagnostic struct {
	Message string
	Offset  int
	Line    int
	Column  int
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s", d.Line+1, d.Column+1, d.Message)
}
