package parser

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/insert-this/internal/syntax"
)

// lowerer converts a tree-sitter tree into syntax nodes. Only named nodes
// are kept; punctuation and keywords are dropped.
type lowerer struct {
	src  []byte
	base int
}

func (l *lowerer) span(n *sitter.Node) syntax.Span {
	return syntax.Span{Start: l.base + int(n.StartByte()), End: l.base + int(n.EndByte())}
}

func (l *lowerer) text(n *sitter.Node) string {
	return string(l.src[n.StartByte():n.EndByte()])
}

func (l *lowerer) module(root *sitter.Node) *syntax.Module {
	return &syntax.Module{Sp: l.span(root), Body: l.namedChildren(root)}
}

func (l *lowerer) namedChildren(n *sitter.Node) []syntax.Node {
	out := make([]syntax.Node, 0, n.NamedChildCount())
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, l.node(c))
		}
	}
	return out
}

func (l *lowerer) node(n *sitter.Node) syntax.Node {
	switch n.Kind() {
	case "import_statement":
		return l.importDecl(n)
	case "identifier":
		return l.ident(n)
	case "string":
		return l.stringLit(n)
	case "template_string":
		return l.templateLit(n)
	case "jsx_element":
		return l.jsxElement(n)
	case "jsx_self_closing_element":
		return &syntax.JSXElement{Sp: l.span(n), Opening: l.jsxTag(n)}
	case "jsx_text", "html_character_reference":
		return &syntax.JSXText{Sp: l.span(n), Value: l.text(n)}
	}
	return &syntax.Other{Type: n.Kind(), Sp: l.span(n), Nodes: l.namedChildren(n)}
}

func (l *lowerer) ident(n *sitter.Node) *syntax.Ident {
	name := l.text(n)
	if n.Kind() == "string" {
		name = l.stringLit(n).Value
	}
	return &syntax.Ident{Sp: l.span(n), Name: name}
}

func (l *lowerer) importDecl(n *sitter.Node) *syntax.ImportDecl {
	decl := &syntax.ImportDecl{Sp: l.span(n)}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "import_clause":
			decl.Specifiers = l.importClause(c)
		case "string":
			decl.Source = l.stringLit(c)
		case "type":
			decl.TypeOnly = true
		}
	}
	return decl
}

func (l *lowerer) importClause(n *sitter.Node) []*syntax.ImportSpecifier {
	var specs []*syntax.ImportSpecifier
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "identifier":
			specs = append(specs, &syntax.ImportSpecifier{
				Sp:    l.span(c),
				Form:  syntax.DefaultSpecifier,
				Local: l.ident(c),
			})
		case "namespace_import":
			for j := uint(0); j < c.NamedChildCount(); j++ {
				if id := c.NamedChild(j); id != nil && id.Kind() == "identifier" {
					specs = append(specs, &syntax.ImportSpecifier{
						Sp:    l.span(c),
						Form:  syntax.NamespaceSpecifier,
						Local: l.ident(id),
					})
				}
			}
		case "named_imports":
			for j := uint(0); j < c.NamedChildCount(); j++ {
				spec := c.NamedChild(j)
				if spec == nil || spec.Kind() != "import_specifier" {
					continue
				}
				if s := l.importSpecifier(spec); s != nil {
					specs = append(specs, s)
				}
			}
		}
	}
	return specs
}

func (l *lowerer) importSpecifier(n *sitter.Node) *syntax.ImportSpecifier {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	imported := l.ident(name)
	local := imported
	if alias := n.ChildByFieldName("alias"); alias != nil {
		local = l.ident(alias)
	}
	return &syntax.ImportSpecifier{
		Sp:       l.span(n),
		Form:     syntax.NamedSpecifier,
		Local:    local,
		Imported: imported,
	}
}

func (l *lowerer) stringLit(n *sitter.Node) *syntax.StringLit {
	var b strings.Builder
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "string_fragment":
			b.WriteString(l.text(c))
		case "escape_sequence":
			b.WriteString(unescape(l.text(c)))
		}
	}
	return &syntax.StringLit{Sp: l.span(n), Value: b.String(), Raw: l.text(n)}
}

// unescape decodes a single JS escape sequence, keeping it verbatim when Go
// escape rules disagree.
func unescape(seq string) string {
	if seq == `\'` {
		return "'"
	}
	if s, err := strconv.Unquote(`"` + seq + `"`); err == nil {
		return s
	}
	return strings.TrimPrefix(seq, `\`)
}

// templateLit splits a template string into quasis around its
// substitutions. Quasi spans exclude the backticks and `${` / `}`.
func (l *lowerer) templateLit(n *sitter.Node) *syntax.TemplateLit {
	sp := l.span(n)
	tpl := &syntax.TemplateLit{Sp: sp}

	start := sp.Start + 1
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil || c.Kind() != "template_substitution" {
			continue
		}
		sub := l.span(c)
		tpl.Quasis = append(tpl.Quasis, l.quasi(start, sub.Start))

		var expr syntax.Node = &syntax.Other{Type: c.Kind(), Sp: sub}
		if c.NamedChildCount() > 0 {
			if inner := c.NamedChild(0); inner != nil {
				expr = l.node(inner)
			}
		}
		tpl.Exprs = append(tpl.Exprs, expr)
		start = sub.End
	}
	tpl.Quasis = append(tpl.Quasis, l.quasi(start, sp.End-1))

	return tpl
}

func (l *lowerer) quasi(start, end int) *syntax.TemplateElement {
	end = max(start, end)
	return &syntax.TemplateElement{
		Sp:  syntax.Span{Start: start, End: end},
		Raw: string(l.src[start-l.base : end-l.base]),
	}
}

func (l *lowerer) jsxElement(n *sitter.Node) *syntax.JSXElement {
	el := &syntax.JSXElement{Sp: l.span(n)}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "jsx_opening_element":
			el.Opening = l.jsxTag(c)
			el.Fragment = el.Opening.Name == ""
		case "jsx_closing_element":
			el.Closing = l.jsxTag(c)
		default:
			el.Body = append(el.Body, l.node(c))
		}
	}
	return el
}

func (l *lowerer) jsxTag(n *sitter.Node) *syntax.JSXTag {
	tag := &syntax.JSXTag{Sp: l.span(n)}
	name := n.ChildByFieldName("name")
	if name != nil {
		tag.Name = l.text(name)
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil || (name != nil && c.StartByte() == name.StartByte() && c.EndByte() == name.EndByte()) {
			continue
		}
		tag.Attrs = append(tag.Attrs, l.node(c))
	}
	return tag
}
