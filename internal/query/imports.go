package query

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/mvp-joe/insert-this/internal/resilient"
	"github.com/mvp-joe/insert-this/internal/snippet"
	"github.com/mvp-joe/insert-this/internal/span"
	"github.com/mvp-joe/insert-this/internal/syntax"
)

// importKeyword prefixes every generated import line; the identifier starts
// right after it.
const importKeyword = "import "

// Binding is a local name introduced by an import. Span is in document
// offsets.
type Binding struct {
	Name string               `json:"name"`
	Form syntax.SpecifierForm `json:"form"`
	Span syntax.Span          `json:"span"`
}

// ImportRecord is a top-level import declaration. Spans are in document
// offsets.
type ImportRecord struct {
	Path     string      `json:"path"`
	Span     syntax.Span `json:"span"`
	TypeOnly bool        `json:"typeOnly,omitempty"`
	Bindings []Binding   `json:"bindings,omitempty"`
}

// Imports lists the document's top-level import declarations in source order.
func Imports(o *resilient.Outcome) []ImportRecord {
	decls := o.Module.Imports()
	out := make([]ImportRecord, 0, len(decls))
	for _, decl := range decls {
		rec := ImportRecord{Span: o.SourceSpan(decl.Span()), TypeOnly: decl.TypeOnly}
		if decl.Source != nil {
			rec.Path = decl.Source.Value
		}
		for _, spec := range decl.Specifiers {
			rec.Bindings = append(rec.Bindings, Binding{
				Name: spec.Local.Name,
				Form: spec.Form,
				Span: o.SourceSpan(spec.Local.Span()),
			})
		}
		out = append(out, rec)
	}
	return out
}

// ExistingImport is the default binding of an import of a given module path.
type ExistingImport struct {
	Name  string        `json:"name"`
	Start span.Position `json:"start"`
	End   span.Position `json:"end"`
}

// FindExistingImport returns the first default binding of an import whose
// module path equals modulePath, or nil if there is none.
func FindExistingImport(o *resilient.Outcome, modulePath string) *ExistingImport {
	for _, decl := range o.Module.Imports() {
		if decl.Source == nil || decl.Source.Value != modulePath {
			continue
		}
		for _, spec := range decl.Specifiers {
			if spec.Form != syntax.DefaultSpecifier {
				continue
			}
			start, ok := o.Position(spec.Local.Span().Start)
			if !ok {
				continue
			}
			end, ok := o.Position(spec.Local.Span().End)
			if !ok {
				continue
			}
			return &ExistingImport{Name: spec.Local.Name, Start: start, End: end}
		}
	}
	return nil
}

// InsertionPlan describes a new default import line.
type InsertionPlan struct {
	// At is where Content is inserted.
	At span.Position `json:"at"`
	// IdentifierStart and IdentifierEnd delimit Name once Content is in place.
	IdentifierStart span.Position `json:"identifierStart"`
	IdentifierEnd   span.Position `json:"identifierEnd"`
	Name            string        `json:"name"`
	Content         string        `json:"content"`
	// Snippet is Content with Name as the first placeholder.
	Snippet string `json:"snippet"`
}

// PlanImport plans a default import of modulePath. The local name is
// defaultName, suffixed with 1, 2, ... until no existing import binds it.
// Other declarations in scope are not considered.
//
// Without imports the line goes at the top of the document followed by a
// newline; otherwise it goes after the last import, preceded by a newline.
func PlanImport(o *resilient.Outcome, defaultName, modulePath string) InsertionPlan {
	decls := o.Module.Imports()

	bound := make(map[string]bool)
	for _, decl := range decls {
		for _, spec := range decl.Specifiers {
			bound[spec.Local.Name] = true
		}
	}
	name := defaultName
	for i := 1; bound[name]; i++ {
		name = defaultName + strconv.Itoa(i)
	}

	enc := o.Lines.Encoding()
	col := enc.Len(importKeyword)
	from := " from " + quote(modulePath)

	if len(decls) == 0 {
		return InsertionPlan{
			At:              span.Pos(0, 0),
			IdentifierStart: span.Pos(0, col),
			IdentifierEnd:   span.Pos(0, col+enc.Len(name)),
			Name:            name,
			Content:         importKeyword + name + from + "\n",
			Snippet: snippet.New().
				AppendText(importKeyword).
				AppendPlaceholder(name).
				AppendTabstop(0).
				AppendText(from + "\n").
				String(),
		}
	}

	last := decls[len(decls)-1]
	at, _ := o.Position(last.Span().End)
	return InsertionPlan{
		At:              at,
		IdentifierStart: span.Pos(at.Line+1, col),
		IdentifierEnd:   span.Pos(at.Line+1, col+enc.Len(name)),
		Name:            name,
		Content:         "\n" + importKeyword + name + from,
		Snippet: snippet.New().
			AppendText("\n" + importKeyword).
			AppendPlaceholder(name).
			AppendTabstop(0).
			AppendText(from).
			String(),
	}
}

// quote renders s as a JavaScript string literal the way JSON.stringify does.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
