package parser

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/insert-this/internal/syntax"
)

type grammar int

const (
	grammarJavaScript grammar = iota
	grammarTypeScript
	grammarTSX
)

var (
	grammarsOnce sync.Once
	languages    map[grammar]*sitter.Language
	parserPools  map[grammar]*sync.Pool
)

func initGrammars() {
	grammarsOnce.Do(func() {
		languages = map[grammar]*sitter.Language{
			grammarJavaScript: sitter.NewLanguage(javascript.Language()),
			grammarTypeScript: sitter.NewLanguage(typescript.LanguageTypescript()),
			grammarTSX:        sitter.NewLanguage(typescript.LanguageTSX()),
		}

		parserPools = make(map[grammar]*sync.Pool, len(languages))
		for g, lang := range languages {
			lang := lang
			parserPools[g] = &sync.Pool{
				New: func() any {
					p := sitter.NewParser()
					if err := p.SetLanguage(lang); err != nil {
						panic(fmt.Sprintf("set language: %v", err))
					}
					return p
				},
			}
		}
	})
}

// grammarFor picks the tree-sitter grammar for a dialect. The JavaScript
// grammar always accepts JSX, so the JSX flag does not change it.
func grammarFor(d Dialect) grammar {
	if d.Syntax == SyntaxTypeScript {
		if d.TSX {
			return grammarTSX
		}
		return grammarTypeScript
	}
	return grammarJavaScript
}

// TreeSitter implements Parser with tree-sitter grammars. Trees are lowered
// into syntax nodes and released before Parse returns.
type TreeSitter struct {
	// preamble is added to every span. tree-sitter has none; tests set it
	// to exercise parsers that do.
	preamble int
}

// NewTreeSitter creates a tree-sitter backed parser.
func NewTreeSitter() *TreeSitter {
	return &TreeSitter{}
}

// Parse parses src with the grammar selected by d.
func (p *TreeSitter) Parse(ctx context.Context, src []byte, d Dialect) (*syntax.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, err := parseTree(grammarFor(d), src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := tree.RootNode()
	if root.HasError() {
		return nil, diagnose(root, src)
	}

	l := lowerer{src: src, base: p.preamble}
	return l.module(root), nil
}

func parseTree(g grammar, src []byte) (*sitter.Tree, error) {
	initGrammars()

	pool, ok := parserPools[g]
	if !ok {
		return nil, fmt.Errorf("unsupported grammar: %d", g)
	}

	p, _ := pool.Get().(*sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("failed to get parser for grammar %d", g)
	}
	tree := p.Parse(src, nil)
	pool.Put(p)

	if tree == nil {
		return nil, fmt.Errorf("parse failed for grammar %d", g)
	}
	return tree, nil
}

// diagnose describes the first error or missing node under root.
func diagnose(root *sitter.Node, src []byte) *Diagnostic {
	n := firstError(root)
	if n == nil {
		n = root
	}

	pos := n.StartPosition()
	d := &Diagnostic{
		Offset: int(n.StartByte()),
		Line:   int(pos.Row),
		Column: int(pos.Column),
	}

	switch {
	case n.IsMissing():
		d.Message = fmt.Sprintf("missing %s", n.Kind())
	case n.EndByte() > n.StartByte():
		d.Message = fmt.Sprintf("unexpected %q", excerpt(src[n.StartByte():n.EndByte()]))
	default:
		d.Message = "syntax error"
	}
	return d
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil || !(c.HasError() || c.IsMissing()) {
			continue
		}
		if found := firstError(c); found != nil {
			return found
		}
	}
	return nil
}

func excerpt(b []byte) string {
	const limit = 24
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
