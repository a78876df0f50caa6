package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/insert-this/internal/parser"
	"github.com/mvp-joe/insert-this/internal/resilient"
	"github.com/mvp-joe/insert-this/internal/span"
	"github.com/mvp-joe/insert-this/internal/syntax"
)

// Test Plan for structural queries:
// - JSX context accepts element text and rejects tags and nested markup
// - Self-closing elements never count as JSX context; fragments do
// - String context covers the inside of string literals and template quasis
// - A grafted placeholder is not a string context
// - Imports and FindExistingImport report document positions, also after a
//   placeholder graft and with multi-byte identifiers
// - FindExistingImport is idempotent
// - PlanImport picks unique names among imports only and places the line
//   at the top of an import-free document or after the last import

func outcome(t *testing.T, text, languageID string, cursor span.Position, enc span.Encoding) *resilient.Outcome {
	t.Helper()
	a := resilient.NewAdapter(parser.NewTreeSitter())
	o, err := a.Parse(context.Background(), text, span.NewLineTable(text, enc), parser.DialectFor(languageID), cursor)
	require.NoError(t, err)
	return o
}

func TestInJSXContext(t *testing.T) {
	t.Parallel()

	text := "const el = <div>before<span>x</span>after</div>"
	o := outcome(t, text, parser.LangTypeScriptReact, span.Pos(0, 0), span.UTF16)

	tests := []struct {
		name string
		col  int
		want bool
	}{
		{"in leading text", 18, true},
		{"right after opening tag", 16, true},
		{"in trailing text", 38, true},
		{"in nested element tag", 24, false},
		{"in nested element text", 28, true},
		{"in opening tag", 13, false},
		{"in closing tag", 43, false},
		{"outside element", 5, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InJSXContext(o, span.Pos(0, tt.col)), tt.name)
	}
}

func TestInJSXContext_SelfClosingAndFragment(t *testing.T) {
	t.Parallel()

	o := outcome(t, `const el = <img src="a" />`, parser.LangJavaScriptReact, span.Pos(0, 0), span.UTF16)
	assert.False(t, InJSXContext(o, span.Pos(0, 15)))

	o = outcome(t, "const el = <>hi</>", parser.LangJavaScriptReact, span.Pos(0, 0), span.UTF16)
	assert.True(t, InJSXContext(o, span.Pos(0, 14)))
	assert.False(t, InJSXContext(o, span.Pos(0, 12)))
}

func TestInJSXContext_OutOfRange(t *testing.T) {
	t.Parallel()

	o := outcome(t, "const el = <div>x</div>", parser.LangTypeScriptReact, span.Pos(0, 0), span.UTF16)
	assert.False(t, InJSXContext(o, span.Pos(4, 0)))
}

func TestInStringContext(t *testing.T) {
	t.Parallel()

	o := outcome(t, `var a: string = ""`, parser.LangTypeScript, span.Pos(0, 17), span.UTF16)
	assert.True(t, InStringContext(o, span.Pos(0, 17)))
	assert.False(t, InStringContext(o, span.Pos(0, 16)))
	assert.False(t, InStringContext(o, span.Pos(0, 18)))

	o = outcome(t, "const s = `a${b}c`", parser.LangJavaScript, span.Pos(0, 0), span.UTF16)
	tests := []struct {
		col  int
		want bool
	}{
		{10, false},
		{11, true},
		{12, true},
		{14, false},
		{16, true},
		{17, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InStringContext(o, span.Pos(0, tt.col)), "column %d", tt.col)
	}
}

func TestInStringContext_Placeholder(t *testing.T) {
	t.Parallel()

	o := outcome(t, "const a = ", parser.LangTypeScript, span.Pos(0, 10), span.UTF16)
	require.True(t, o.HasMissingExpression)
	assert.False(t, InStringContext(o, span.Pos(0, 10)))
}

func TestImports(t *testing.T) {
	t.Parallel()

	text := "import foo from './foo.svg'\nimport { a as b } from 'lib'\nconst x = 1\n"
	o := outcome(t, text, parser.LangJavaScript, span.Pos(0, 0), span.UTF16)

	recs := Imports(o)
	require.Len(t, recs, 2)

	assert.Equal(t, "./foo.svg", recs[0].Path)
	assert.Equal(t, syntax.Span{Start: 0, End: 27}, recs[0].Span)
	require.Len(t, recs[0].Bindings, 1)
	assert.Equal(t, Binding{Name: "foo", Form: syntax.DefaultSpecifier, Span: syntax.Span{Start: 7, End: 10}}, recs[0].Bindings[0])

	assert.Equal(t, "lib", recs[1].Path)
	require.Len(t, recs[1].Bindings, 1)
	assert.Equal(t, "b", recs[1].Bindings[0].Name)
	assert.Equal(t, syntax.NamedSpecifier, recs[1].Bindings[0].Form)
}

func TestFindExistingImport(t *testing.T) {
	t.Parallel()

	text := "import logo from \"./logo.svg\"\nimport { x } from \"./x.svg\"\nconst a = 1\n"
	o := outcome(t, text, parser.LangTypeScript, span.Pos(0, 0), span.UTF16)

	got := FindExistingImport(o, "./logo.svg")
	require.NotNil(t, got)
	assert.Equal(t, &ExistingImport{Name: "logo", Start: span.Pos(0, 7), End: span.Pos(0, 11)}, got)

	assert.Nil(t, FindExistingImport(o, "./x.svg"), "named imports have no default binding")
	assert.Nil(t, FindExistingImport(o, "./missing.svg"))
}

func TestFindExistingImport_Idempotent(t *testing.T) {
	t.Parallel()

	text := "import logo from \"./logo.svg\"\n"
	o := outcome(t, text, parser.LangTypeScript, span.Pos(0, 0), span.UTF16)

	first := FindExistingImport(o, "./logo.svg")
	second := FindExistingImport(o, "./logo.svg")
	require.NotNil(t, first)
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
}

func TestFindExistingImport_AfterPlaceholder(t *testing.T) {
	t.Parallel()

	text := "const a = \nimport logo from \"./logo.svg\""
	o := outcome(t, text, parser.LangTypeScript, span.Pos(0, 10), span.UTF16)
	require.True(t, o.HasMissingExpression)

	got := FindExistingImport(o, "./logo.svg")
	require.NotNil(t, got)
	assert.Equal(t, span.Pos(1, 7), got.Start)
	assert.Equal(t, span.Pos(1, 11), got.End)
}

func TestFindExistingImport_MultibyteColumns(t *testing.T) {
	t.Parallel()

	text := `import { 日本 } from "x"; import logo from "./logo.svg"`
	o := outcome(t, text, parser.LangJavaScript, span.Pos(0, 0), span.UTF16)

	got := FindExistingImport(o, "./logo.svg")
	require.NotNil(t, got)
	assert.Equal(t, span.Pos(0, 31), got.Start)
	assert.Equal(t, span.Pos(0, 35), got.End)
}

func TestPlanImport_EmptyDocument(t *testing.T) {
	t.Parallel()

	o := outcome(t, "", parser.LangTypeScript, span.Pos(0, 0), span.UTF16)
	plan := PlanImport(o, "fooImg", "./foo.svg")

	assert.Equal(t, InsertionPlan{
		At:              span.Pos(0, 0),
		IdentifierStart: span.Pos(0, 7),
		IdentifierEnd:   span.Pos(0, 13),
		Name:            "fooImg",
		Content:         "import fooImg from \"./foo.svg\"\n",
		Snippet:         "import ${1:fooImg}$0 from \"./foo.svg\"\n",
	}, plan)
}

func TestPlanImport_AfterLastImport(t *testing.T) {
	t.Parallel()

	text := "import foo from \"./foo\"\nimport bar from \"./bar\"\n\nconst x = 1\n"
	o := outcome(t, text, parser.LangTypeScript, span.Pos(0, 0), span.UTF16)
	plan := PlanImport(o, "foo", "./foo.svg")

	assert.Equal(t, "foo1", plan.Name)
	assert.Equal(t, span.Pos(1, 23), plan.At)
	assert.Equal(t, span.Pos(2, 7), plan.IdentifierStart)
	assert.Equal(t, span.Pos(2, 11), plan.IdentifierEnd)
	assert.Equal(t, "\nimport foo1 from \"./foo.svg\"", plan.Content)
	assert.Equal(t, "\nimport ${1:foo1}$0 from \"./foo.svg\"", plan.Snippet)
}

func TestPlanImport_Uniqueness(t *testing.T) {
	t.Parallel()

	text := "import foo from \"./a\"\nimport { x as foo1 } from \"./b\"\nimport * as foo3 from \"./c\"\n"
	o := outcome(t, text, parser.LangJavaScript, span.Pos(0, 0), span.UTF16)
	assert.Equal(t, "foo2", PlanImport(o, "foo", "./foo.svg").Name)
	assert.Equal(t, "bar", PlanImport(o, "bar", "./bar.svg").Name)
}

func TestPlanImport_IgnoresOtherDeclarations(t *testing.T) {
	t.Parallel()

	o := outcome(t, "const foo = 1\n", parser.LangJavaScript, span.Pos(0, 0), span.UTF16)
	plan := PlanImport(o, "foo", "./foo.svg")
	assert.Equal(t, "foo", plan.Name)
	assert.Equal(t, span.Pos(0, 0), plan.At)
}

func TestPlanImport_Quoting(t *testing.T) {
	t.Parallel()

	o := outcome(t, "", parser.LangJavaScript, span.Pos(0, 0), span.UTF16)
	plan := PlanImport(o, "a", `./a"<b>.svg`)
	assert.Equal(t, "import a from \"./a\\\"<b>.svg\"\n", plan.Content)
}

func TestPlanImport_EncodingColumns(t *testing.T) {
	t.Parallel()

	o := outcome(t, "", parser.LangJavaScript, span.Pos(0, 0), span.UTF8)
	plan := PlanImport(o, "日本", "./a.svg")
	assert.Equal(t, span.Pos(0, 13), plan.IdentifierEnd)

	o = outcome(t, "", parser.LangJavaScript, span.Pos(0, 0), span.UTF16)
	plan = PlanImport(o, "日本", "./a.svg")
	assert.Equal(t, span.Pos(0, 9), plan.IdentifierEnd)
}
