// Package insert turns an "insert this file" request into text edits: an
// optional import line plus a reference at the cursor.
package insert

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/mvp-joe/insert-this/internal/config"
	"github.com/mvp-joe/insert-this/internal/naming"
	"github.com/mvp-joe/insert-this/internal/parser"
	"github.com/mvp-joe/insert-this/internal/query"
	"github.com/mvp-joe/insert-this/internal/resilient"
	"github.com/mvp-joe/insert-this/internal/snippet"
	"github.com/mvp-joe/insert-this/internal/span"
)

var log = commonlog.GetLogger("insertthis.insert")

var (
	// ErrUnsupportedLanguage is returned for documents that are not JS/TS.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrSameFile is returned when the asset is the document itself.
	ErrSameFile = naming.ErrSameFile
)

// Mode selects how the reference is chosen.
type Mode int

const (
	// ModeCommand is the explicit "insert this file" command.
	ModeCommand Mode = iota
	// ModeDrop is a file dropped onto the editor.
	ModeDrop
)

func (m Mode) String() string {
	if m == ModeDrop {
		return "drop"
	}
	return "command"
}

// ParseMode accepts "command" and "drop".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "command", "insert":
		return ModeCommand, nil
	case "drop":
		return ModeDrop, nil
	}
	return ModeCommand, fmt.Errorf("unknown mode %q (valid: command, drop)", s)
}

// Action is what the plan does at the cursor.
type Action string

const (
	ActionInsertName   Action = "insert-name"
	ActionInsertJSX    Action = "insert-jsx"
	ActionInsertPath   Action = "insert-path"
	ActionRenameImport Action = "rename-import"
	ActionImportOnly   Action = "import-only"
)

// Request describes one insertion. LanguageID may be empty, in which case
// it is resolved from DocumentPath with the configured globs.
type Request struct {
	Text         string
	LanguageID   string
	DocumentPath string
	AssetPath    string
	Cursor       span.Position
	Mode         Mode
}

// Edit replaces Range in the original document with NewText. Snippet is the
// same text in snippet syntax for editors that support it.
type Edit struct {
	Range   span.Range `json:"range"`
	NewText string     `json:"newText"`
	Snippet string     `json:"snippet,omitempty"`
}

// Plan is the outcome of a request. All edits refer to the document as it
// was before any of them is applied.
type Plan struct {
	Action     Action                `json:"action"`
	LanguageID string                `json:"languageId"`
	ImportPath string                `json:"importPath"`
	Name       string                `json:"name"`
	Existing   *query.ExistingImport `json:"existing,omitempty"`
	Import     *query.InsertionPlan  `json:"import,omitempty"`
	Edits      []Edit                `json:"edits"`
	Context    Context               `json:"context"`
	Encoding   string                `json:"positionEncoding"`
}

// Context records what the queries found at the cursor.
type Context struct {
	MissingExpression bool `json:"missingExpression"`
	JSX               bool `json:"jsx"`
	String            bool `json:"string"`
}

// Planner computes plans. Config must be non-nil.
type Planner struct {
	Adapter *resilient.Adapter
	Config  *config.Config
}

// NewPlanner creates a planner backed by the tree-sitter parser.
func NewPlanner(cfg *config.Config) *Planner {
	return &Planner{Adapter: resilient.NewAdapter(parser.NewTreeSitter()), Config: cfg}
}

// Plan parses the document, runs the structural queries at the cursor and
// decides which edits to make.
func (p *Planner) Plan(ctx context.Context, req Request) (*Plan, error) {
	languageID := req.LanguageID
	if languageID == "" {
		languageID, _ = p.Config.LanguageFor(req.DocumentPath)
	}
	if !parser.Supported(languageID) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, languageID)
	}

	importPath, err := naming.ImportPath(req.DocumentPath, req.AssetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve import path: %w", err)
	}
	defaultName := naming.SanitizedName(req.AssetPath, p.Config.Naming.Suffixes, p.Config.Naming.Fallback)

	enc := p.Config.Encoding()
	lines := span.NewLineTable(req.Text, enc)
	o, err := p.Adapter.Parse(ctx, req.Text, lines, parser.DialectFor(languageID), req.Cursor)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		LanguageID: languageID,
		ImportPath: importPath,
		Existing:   query.FindExistingImport(o, importPath),
		Context: Context{
			MissingExpression: o.HasMissingExpression,
			JSX:               parser.IsReact(languageID) && query.InJSXContext(o, req.Cursor),
			String:            query.InStringContext(o, req.Cursor),
		},
		Encoding: enc.String(),
	}

	b := builder{plan: plan, cursor: req.Cursor, jsxTemplate: p.Config.Insert.JSXTemplate}
	if plan.Existing != nil {
		plan.Name = plan.Existing.Name
	}

	switch req.Mode {
	case ModeDrop:
		b.drop(o, defaultName)
	default:
		b.command(o, defaultName)
	}

	log.Infof("%s %s into %s: %s %q (missing=%t jsx=%t string=%t)",
		req.Mode, importPath, req.DocumentPath, plan.Action, plan.Name,
		plan.Context.MissingExpression, plan.Context.JSX, plan.Context.String)

	return plan, nil
}

type builder struct {
	plan        *Plan
	cursor      span.Position
	jsxTemplate string
}

func (b *builder) command(o *resilient.Outcome, defaultName string) {
	c := b.plan.Context
	if existing := b.plan.Existing; existing != nil {
		switch {
		case c.MissingExpression:
			b.name()
		case c.JSX:
			b.jsx()
		case c.String:
			b.path()
		default:
			b.plan.Action = ActionRenameImport
			b.plan.Edits = append(b.plan.Edits, Edit{
				Range:   span.Range{Start: existing.Start, End: existing.End},
				NewText: existing.Name,
				Snippet: snippet.New().AppendPlaceholder(existing.Name).AppendTabstop(0).String(),
			})
		}
		return
	}

	if c.String {
		b.path()
		return
	}

	b.addImport(o, defaultName)
	switch {
	case c.MissingExpression:
		b.name()
	case c.JSX:
		b.jsx()
	default:
		b.plan.Action = ActionImportOnly
	}
}

func (b *builder) drop(o *resilient.Outcome, defaultName string) {
	c := b.plan.Context
	switch {
	case c.JSX:
		if b.plan.Existing == nil {
			b.addImport(o, defaultName)
		}
		b.jsx()
	case c.String || !c.MissingExpression:
		b.path()
	default:
		if b.plan.Existing == nil {
			b.addImport(o, defaultName)
		}
		b.name()
	}
}

func (b *builder) addImport(o *resilient.Outcome, defaultName string) {
	ip := query.PlanImport(o, defaultName, b.plan.ImportPath)
	b.plan.Import = &ip
	b.plan.Name = ip.Name
	b.plan.Edits = append(b.plan.Edits, Edit{
		Range:   span.Range{Start: ip.At, End: ip.At},
		NewText: ip.Content,
		Snippet: ip.Snippet,
	})
}

func (b *builder) name() {
	b.plan.Action = ActionInsertName
	b.insert(b.plan.Name, snippet.New().AppendPlaceholder(b.plan.Name).AppendTabstop(0).String())
}

func (b *builder) jsx() {
	b.plan.Action = ActionInsertJSX
	text := fmt.Sprintf(b.jsxTemplate, b.plan.Name)
	b.insert(text, snippet.New().AppendText(text).AppendTabstop(0).String())
}

func (b *builder) path() {
	b.plan.Action = ActionInsertPath
	b.insert(b.plan.ImportPath, snippet.New().AppendText(b.plan.ImportPath).AppendTabstop(0).String())
}

func (b *builder) insert(text, snip string) {
	b.plan.Edits = append(b.plan.Edits, Edit{
		Range:   span.Range{Start: b.cursor, End: b.cursor},
		NewText: text,
		Snippet: snip,
	})
}
