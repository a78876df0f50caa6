package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/insert-this/internal/insert"
	"github.com/mvp-joe/insert-this/internal/resilient"
	"github.com/mvp-joe/insert-this/internal/span"
)

// InsertFileRequest are the arguments of the insert_file_reference tool.
type InsertFileRequest struct {
	File      string `json:"file"`
	Asset     string `json:"asset"`
	Line      int    `json:"line"`
	Character int    `json:"character"`
	Mode      string `json:"mode,omitempty"`
	Language  string `json:"language,omitempty"`
	Write     bool   `json:"write,omitempty"`
}

// InsertFileResponse is returned as JSON text.
type InsertFileResponse struct {
	Plan    *insert.Plan `json:"plan"`
	Written bool         `json:"written"`
	Result  string       `json:"result,omitempty"` // document text after the edits
}

// AddInsertFileTool registers the insert_file_reference tool with an MCP
// server. planner is called per request so a reloaded configuration applies
// to the next call.
func AddInsertFileTool(s *server.MCPServer, planner func() *insert.Planner, projectRoot string) {
	tool := mcp.NewTool(
		"insert_file_reference",
		mcp.WithDescription(`Insert a reference to a file (image, stylesheet, any asset) into a JavaScript or TypeScript source file at a 0-indexed line and column.

Depending on the syntax at that position the tool adds an import and the imported name, a JSX <img> tag, or the relative path inside a string literal. An existing import of the same file is reused.

Returns the planned edits as JSON. With write=true the edits are applied to the file.`),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Source file to insert into, absolute or relative to the project root")),
		mcp.WithString("asset",
			mcp.Required(),
			mcp.Description("File to reference, absolute or relative to the project root")),
		mcp.WithNumber("line",
			mcp.Description("0-indexed line of the insertion point (default: 0)")),
		mcp.WithNumber("character",
			mcp.Description("0-indexed column of the insertion point in the configured position encoding (default: 0)")),
		mcp.WithString("mode",
			mcp.Enum("command", "drop"),
			mcp.Description("'command' (default) or 'drop' for the rules used when a file is dropped onto the editor")),
		mcp.WithString("language",
			mcp.Description("Language id: typescript, typescriptreact, javascript or javascriptreact. Resolved from the file name when omitted.")),
		mcp.WithBoolean("write",
			mcp.Description("Apply the edits to the file (default: false)")),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createInsertFileHandler(planner, projectRoot))
}

// createInsertFileHandler creates the handler function for the insert_file_reference tool.
func createInsertFileHandler(planner func() *insert.Planner, projectRoot string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var args InsertFileRequest
		if args.File, ok = argsMap["file"].(string); !ok || args.File == "" {
			return mcp.NewToolResultError("file parameter is required"), nil
		}
		if args.Asset, ok = argsMap["asset"].(string); !ok || args.Asset == "" {
			return mcp.NewToolResultError("asset parameter is required"), nil
		}
		if line, ok := argsMap["line"].(float64); ok {
			args.Line = int(line)
		}
		if character, ok := argsMap["character"].(float64); ok {
			args.Character = int(character)
		}
		if args.Line < 0 || args.Character < 0 {
			return mcp.NewToolResultError("line and character must not be negative"), nil
		}
		args.Mode, _ = argsMap["mode"].(string)
		args.Language, _ = argsMap["language"].(string)
		args.Write, _ = argsMap["write"].(bool)

		mode, err := insert.ParseMode(args.Mode)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		docPath := resolvePath(projectRoot, args.File)
		data, err := os.ReadFile(docPath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read %s: %v", args.File, err)), nil
		}
		text := string(data)

		p := planner()
		plan, err := p.Plan(ctx, insert.Request{
			Text:         text,
			LanguageID:   args.Language,
			DocumentPath: docPath,
			AssetPath:    resolvePath(projectRoot, args.Asset),
			Cursor:       span.Pos(args.Line, args.Character),
			Mode:         mode,
		})
		if err != nil {
			var perr *resilient.ParseError
			if errors.As(err, &perr) {
				return mcp.NewToolResultError("cannot parse " + args.File + ": " + perr.Message), nil
			}
			return mcp.NewToolResultError(err.Error()), nil
		}

		response := &InsertFileResponse{Plan: plan}
		updated, err := insert.Apply(text, plan.Edits, span.NewLineTable(text, p.Config.Encoding()))
		if err != nil {
			return nil, fmt.Errorf("failed to apply edits: %w", err)
		}
		response.Result = updated

		if args.Write {
			info, err := os.Stat(docPath)
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", docPath, err)
			}
			if err := os.WriteFile(docPath, []byte(updated), info.Mode().Perm()); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", docPath, err)
			}
			response.Written = true
			log.Infof("wrote %s", docPath)
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		// Return as text result (mcp-go convention)
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
