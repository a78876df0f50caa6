// Package query answers structural questions about a parsed document: is the
// cursor inside JSX text or a string, which imports exist, and where a new
// import should go.
package query

import (
	"github.com/mvp-joe/insert-this/internal/resilient"
	"github.com/mvp-joe/insert-this/internal/span"
	"github.com/mvp-joe/insert-this/internal/syntax"
)

// InJSXContext reports whether pos lies in the text-level body of a JSX
// element or fragment: inside the element but outside its tags and outside
// every non-text child. Self-closing elements never match.
func InJSXContext(o *resilient.Outcome, pos span.Position) bool {
	target, ok := o.Offset(pos)
	if !ok {
		return false
	}

	hit := false
	syntax.Walk(o.Module, func(n syntax.Node) syntax.Action {
		if !o.SourceSpan(n.Span()).Contains(target) {
			return syntax.SkipChildren
		}

		el, ok := n.(*syntax.JSXElement)
		if !ok || el.SelfClosing() {
			return syntax.Continue
		}
		if el.Opening != nil && o.SourceSpan(el.Opening.Span()).Contains(target) {
			return syntax.Continue
		}
		if o.SourceSpan(el.Closing.Span()).Contains(target) {
			return syntax.Continue
		}
		for _, child := range el.Body {
			if child.Kind() == syntax.KindJSXText {
				continue
			}
			if o.SourceSpan(child.Span()).Contains(target) {
				return syntax.Continue
			}
		}

		hit = true
		return syntax.Stop
	})
	return hit
}

// InStringContext reports whether pos lies between the quotes of a string
// literal or inside a static segment of a template literal. Segment bounds
// are inclusive, so the positions right after "`" or "}" and right before
// "${" or "`" count.
func InStringContext(o *resilient.Outcome, pos span.Position) bool {
	target, ok := o.Offset(pos)
	if !ok {
		return false
	}

	hit := false
	syntax.Walk(o.Module, func(n syntax.Node) syntax.Action {
		sp := o.SourceSpan(n.Span())
		if target < sp.Start || target > sp.End {
			return syntax.SkipChildren
		}

		switch n.Kind() {
		case syntax.KindStringLit:
			if sp.Contains(target) {
				hit = true
				return syntax.Stop
			}
			return syntax.SkipChildren
		case syntax.KindTemplateElement:
			hit = true
			return syntax.Stop
		}
		return syntax.Continue
	})
	return hit
}
