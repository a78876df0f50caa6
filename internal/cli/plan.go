package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/insert-this/internal/config"
	"github.com/mvp-joe/insert-this/internal/insert"
	"github.com/mvp-joe/insert-this/internal/span"
)

// planOptions are the flags of the plan command.
type planOptions struct {
	file      string
	asset     string
	line      int
	character int
	mode      string
	language  string
	json      bool
	write     bool
	color     string
}

var planOpts planOptions

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the edits that insert a reference to a file",
	Long: `Plan parses a JavaScript or TypeScript file, inspects the syntax at the
given position and prints the edits that reference the asset from there.

Positions are 0-indexed. Columns are counted in the configured position
encoding (insert.position_encoding, UTF-16 by default).

Examples:
  # Show what would be inserted at line 3, column 10
  insertthis plan --file src/App.tsx --line 3 --character 10 --asset src/logo.svg

  # Apply the edits to the file
  insertthis plan --file src/App.tsx --line 3 --character 10 --asset src/logo.svg --write

  # Machine-readable output with drop semantics
  insertthis plan --file src/App.tsx --line 3 --character 10 --asset src/logo.svg --mode drop --json
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(cmd.Context(), cmd.OutOrStdout(), appConfig, planOpts)
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVarP(&planOpts.file, "file", "f", "", "document to insert into")
	planCmd.Flags().StringVarP(&planOpts.asset, "asset", "a", "", "file to reference")
	planCmd.Flags().IntVarP(&planOpts.line, "line", "l", 0, "0-indexed line of the insertion point")
	planCmd.Flags().IntVarP(&planOpts.character, "character", "c", 0, "0-indexed column of the insertion point")
	planCmd.Flags().StringVar(&planOpts.mode, "mode", "command", "insertion rules: command or drop")
	planCmd.Flags().StringVar(&planOpts.language, "language", "", "language id (default: resolved from the file name)")
	planCmd.Flags().BoolVar(&planOpts.json, "json", false, "output the plan as JSON")
	planCmd.Flags().BoolVarP(&planOpts.write, "write", "w", false, "apply the edits to the file")
	planCmd.Flags().StringVar(&planOpts.color, "color", "auto", "colorize output: auto, always or never")
	_ = planCmd.MarkFlagRequired("file")
	_ = planCmd.MarkFlagRequired("asset")
}

func runPlan(ctx context.Context, out io.Writer, cfg *config.Config, opts planOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	mode, err := insert.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	if opts.line < 0 || opts.character < 0 {
		return fmt.Errorf("position %d:%d must not be negative", opts.line, opts.character)
	}

	docPath, err := filepath.Abs(opts.file)
	if err != nil {
		return fmt.Errorf("failed to resolve file path: %w", err)
	}
	assetPath, err := filepath.Abs(opts.asset)
	if err != nil {
		return fmt.Errorf("failed to resolve asset path: %w", err)
	}

	data, err := os.ReadFile(docPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	text := string(data)

	plan, err := insert.NewPlanner(cfg).Plan(ctx, insert.Request{
		Text:         text,
		LanguageID:   opts.language,
		DocumentPath: docPath,
		AssetPath:    assetPath,
		Cursor:       span.Pos(opts.line, opts.character),
		Mode:         mode,
	})
	if err != nil {
		return err
	}

	if opts.write {
		updated, err := insert.Apply(text, plan.Edits, span.NewLineTable(text, cfg.Encoding()))
		if err != nil {
			return fmt.Errorf("failed to apply edits: %w", err)
		}
		info, err := os.Stat(docPath)
		if err != nil {
			return fmt.Errorf("failed to stat file: %w", err)
		}
		if err := os.WriteFile(docPath, []byte(updated), info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
	}

	if opts.json {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(plan)
	}

	s := newStyles(opts.color)
	printPlan(out, s, plan)
	if opts.write {
		fmt.Fprintf(out, "\n%s %s\n", s.heading.Sprint("Wrote"), opts.file)
	}
	return nil
}

// styles holds the color formatters for human output
type styles struct {
	heading *color.Color
	action  *color.Color
	name    *color.Color
	pos     *color.Color
	text    *color.Color
	dim     *color.Color
}

func newStyles(mode string) *styles {
	s := &styles{
		heading: color.New(color.Bold),
		action:  color.New(color.Bold, color.FgHiGreen),
		name:    color.New(color.FgHiBlue),
		pos:     color.New(color.FgCyan),
		text:    color.New(color.FgYellow),
		dim:     color.New(color.Faint),
	}

	// "auto" keeps fatih/color's own terminal and NO_COLOR detection.
	switch mode {
	case "always":
		for _, c := range []*color.Color{s.heading, s.action, s.name, s.pos, s.text, s.dim} {
			c.EnableColor()
		}
	case "never":
		for _, c := range []*color.Color{s.heading, s.action, s.name, s.pos, s.text, s.dim} {
			c.DisableColor()
		}
	}
	return s
}

func printPlan(out io.Writer, s *styles, plan *insert.Plan) {
	fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("Action:  "), s.action.Sprint(plan.Action))
	fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("Language:"), plan.LanguageID)
	fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("Path:    "), plan.ImportPath)
	fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("Name:    "), s.name.Sprint(plan.Name))
	if plan.Existing != nil {
		fmt.Fprintf(out, "%s %s %s\n", s.heading.Sprint("Imported:"), s.name.Sprint(plan.Existing.Name),
			s.dim.Sprintf("(%s)", plan.Existing.Start))
	}
	fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("Context: "), s.dim.Sprintf("missing-expression=%t jsx=%t string=%t",
		plan.Context.MissingExpression, plan.Context.JSX, plan.Context.String))

	if len(plan.Edits) == 0 {
		fmt.Fprintf(out, "\n%s\n", s.dim.Sprint("No edits"))
		return
	}

	fmt.Fprintf(out, "\n%s %s\n", s.heading.Sprint("Edits"), s.dim.Sprintf("(%s columns)", plan.Encoding))
	for _, e := range plan.Edits {
		where := e.Range.Start.String()
		if e.Range.End != e.Range.Start {
			where += "-" + e.Range.End.String()
		}
		fmt.Fprintf(out, "  %s  %s\n", s.pos.Sprint(where), s.text.Sprint(strconv.Quote(e.NewText)))
	}
}
