// Package syntax is the ECMAScript/TypeScript tree the structural queries
// run against. Spans are in parser space: byte offsets that may include a
// parser preamble and a grafted placeholder.
package syntax

// Span is a half-open [Start, End) byte range in parser space.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether off lies strictly between Start and End.
func (s Span) Contains(off int) bool {
	return s.Start < off && off < s.End
}

// Node is implemented by every tree node.
type Node interface {
	Kind() string
	Span() Span
	Children() []Node
}

// Node kinds with a dedicated Go type.
const (
	KindModule          = "Module"
	KindImportDecl      = "ImportDeclaration"
	KindImportSpecifier = "ImportSpecifier"
	KindIdent           = "Identifier"
	KindStringLit       = "StringLiteral"
	KindTemplateLit     = "TemplateLiteral"
	KindTemplateElement = "TemplateElement"
	KindJSXElement      = "JSXElement"
	KindJSXFragment     = "JSXFragment"
	KindJSXTag          = "JSXTag"
	KindJSXText         = "JSXText"
)

// Module is the root of a parsed document.
type Module struct {
	Sp   Span
	Body []Node
}

func (m *Module) Kind() string     { return KindModule }
func (m *Module) Span() Span       { return m.Sp }
func (m *Module) Children() []Node { return m.Body }

// Imports returns the top-level import declarations in source order.
func (m *Module) Imports() []*ImportDecl {
	var out []*ImportDecl
	for _, item := range m.Body {
		if decl, ok := item.(*ImportDecl); ok {
			out = append(out, decl)
		}
	}
	return out
}

// ImportDecl is `import ... from "source"` (or a bare `import "source"`).
type ImportDecl struct {
	Sp         Span
	Specifiers []*ImportSpecifier
	Source     *StringLit
	TypeOnly   bool
}

func (d *ImportDecl) Kind() string { return KindImportDecl }
func (d *ImportDecl) Span() Span   { return d.Sp }

func (d *ImportDecl) Children() []Node {
	out := make([]Node, 0, len(d.Specifiers)+1)
	for _, s := range d.Specifiers {
		out = append(out, s)
	}
	if d.Source != nil {
		out = append(out, d.Source)
	}
	return out
}

// SpecifierForm tells how an import binds its local name.
type SpecifierForm int

const (
	// DefaultSpecifier is `import local from ...`.
	DefaultSpecifier SpecifierForm = iota
	// NamedSpecifier is `import { imported as local } from ...`.
	NamedSpecifier
	// NamespaceSpecifier is `import * as local from ...`.
	NamespaceSpecifier
)

func (f SpecifierForm) String() string {
	switch f {
	case NamedSpecifier:
		return "named"
	case NamespaceSpecifier:
		return "namespace"
	default:
		return "default"
	}
}

// ImportSpecifier is one local binding of an import declaration. Imported is
// set only for named specifiers and may equal Local.
type ImportSpecifier struct {
	Sp       Span
	Form     SpecifierForm
	Local    *Ident
	Imported *Ident
}

func (s *ImportSpecifier) Kind() string { return KindImportSpecifier }
func (s *ImportSpecifier) Span() Span   { return s.Sp }

func (s *ImportSpecifier) Children() []Node {
	if s.Imported != nil && s.Imported != s.Local {
		return []Node{s.Imported, s.Local}
	}
	return []Node{s.Local}
}

// Ident is an identifier.
type Ident struct {
	Sp   Span
	Name string
}

func (i *Ident) Kind() string     { return KindIdent }
func (i *Ident) Span() Span       { return i.Sp }
func (i *Ident) Children() []Node { return nil }

// StringLit is a quoted string; its span includes the quotes.
type StringLit struct {
	Sp    Span
	Value string
	Raw   string
}

func (s *StringLit) Kind() string     { return KindStringLit }
func (s *StringLit) Span() Span       { return s.Sp }
func (s *StringLit) Children() []Node { return nil }

// TemplateLit is a template literal. Quasis always has len(Exprs)+1 entries.
type TemplateLit struct {
	Sp     Span
	Quasis []*TemplateElement
	Exprs  []Node
}

func (t *TemplateLit) Kind() string { return KindTemplateLit }
func (t *TemplateLit) Span() Span   { return t.Sp }

// Children interleaves quasis and expressions in source order.
func (t *TemplateLit) Children() []Node {
	out := make([]Node, 0, len(t.Quasis)+len(t.Exprs))
	for i, q := range t.Quasis {
		out = append(out, q)
		if i < len(t.Exprs) {
			out = append(out, t.Exprs[i])
		}
	}
	return out
}

// TemplateElement is a static text segment of a template literal. Its span
// excludes the backticks and the `${` / `}` delimiters.
type TemplateElement struct {
	Sp  Span
	Raw string
}

func (q *TemplateElement) Kind() string     { return KindTemplateElement }
func (q *TemplateElement) Span() Span       { return q.Sp }
func (q *TemplateElement) Children() []Node { return nil }

// JSXElement is a JSX element or fragment. Self-closing elements have
// Opening spanning the whole element and a nil Closing.
type JSXElement struct {
	Sp       Span
	Fragment bool
	Opening  *JSXTag
	Closing  *JSXTag
	Body     []Node
}

func (e *JSXElement) Kind() string {
	if e.Fragment {
		return KindJSXFragment
	}
	return KindJSXElement
}

func (e *JSXElement) Span() Span { return e.Sp }

func (e *JSXElement) Children() []Node {
	out := make([]Node, 0, len(e.Body)+2)
	if e.Opening != nil {
		out = append(out, e.Opening)
	}
	out = append(out, e.Body...)
	if e.Closing != nil {
		out = append(out, e.Closing)
	}
	return out
}

// SelfClosing reports whether the element has no closing tag.
func (e *JSXElement) SelfClosing() bool {
	return e.Closing == nil
}

// JSXTag is an opening, closing or self-closing tag. Name is empty for
// fragment tags.
type JSXTag struct {
	Sp    Span
	Name  string
	Attrs []Node
}

func (t *JSXTag) Kind() string     { return KindJSXTag }
func (t *JSXTag) Span() Span       { return t.Sp }
func (t *JSXTag) Children() []Node { return t.Attrs }

// JSXText is literal text between JSX tags.
type JSXText struct {
	Sp    Span
	Value string
}

func (t *JSXText) Kind() string     { return KindJSXText }
func (t *JSXText) Span() Span       { return t.Sp }
func (t *JSXText) Children() []Node { return nil }

// Other is any construct the queries do not inspect. Type is the parser's
// own node kind.
type Other struct {
	Type  string
	Sp    Span
	Nodes []Node
}

func (o *Other) Kind() string     { return o.Type }
func (o *Other) Span() Span       { return o.Sp }
func (o *Other) Children() []Node { return o.Nodes }
