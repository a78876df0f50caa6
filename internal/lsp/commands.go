package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mvp-joe/insert-this/internal/insert"
	"github.com/mvp-joe/insert-this/internal/resilient"
	"github.com/mvp-joe/insert-this/internal/span"
)

const (
	// CommandInsertFile inserts a reference to a file at a position.
	CommandInsertFile = "insertThis.insertFile"
	// CommandDropFile does the same with drop semantics.
	CommandDropFile = "insertThis.dropFile"
)

// commandArgs are the decoded [assetURI, documentURI, position] arguments.
type commandArgs struct {
	assetURI    string
	documentURI string
	position    protocol.Position
}

func parseCommandArgs(args []any) (commandArgs, error) {
	if len(args) != 3 {
		return commandArgs{}, fmt.Errorf("expected 3 arguments [assetUri, documentUri, position], got %d", len(args))
	}
	asset, ok := args[0].(string)
	if !ok {
		return commandArgs{}, fmt.Errorf("asset uri: expected string, got %T", args[0])
	}
	doc, ok := args[1].(string)
	if !ok {
		return commandArgs{}, fmt.Errorf("document uri: expected string, got %T", args[1])
	}

	// Arguments arrive as generic JSON values; round-trip the position.
	raw, err := json.Marshal(args[2])
	if err != nil {
		return commandArgs{}, fmt.Errorf("position: %w", err)
	}
	var pos protocol.Position
	if err := json.Unmarshal(raw, &pos); err != nil {
		return commandArgs{}, fmt.Errorf("position: %w", err)
	}
	return commandArgs{assetURI: asset, documentURI: doc, position: pos}, nil
}

func (s *Server) workspaceExecuteCommand(
	context *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	var mode insert.Mode
	switch params.Command {
	case CommandInsertFile:
		mode = insert.ModeCommand
	case CommandDropFile:
		mode = insert.ModeDrop
	default:
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}

	args, err := parseCommandArgs(params.Arguments)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", params.Command, err)
	}

	plan, err := s.plan(args, mode)
	if err != nil {
		var perr *resilient.ParseError
		if errors.As(err, &perr) {
			showError(context, "insert-this: cannot parse document: "+perr.Message)
			return nil, nil
		}
		showError(context, "insert-this: "+err.Error())
		return nil, err
	}

	if len(plan.Edits) > 0 {
		s.applyEdit(context, args.documentURI, plan)
	}
	return plan, nil
}

func (s *Server) plan(args commandArgs, mode insert.Mode) (*insert.Plan, error) {
	docPath, err := URIToPath(args.documentURI)
	if err != nil {
		return nil, err
	}
	assetPath, err := URIToPath(args.assetURI)
	if err != nil {
		return nil, err
	}

	req := insert.Request{
		DocumentPath: docPath,
		AssetPath:    assetPath,
		Cursor:       span.Pos(int(args.position.Line), int(args.position.Character)),
		Mode:         mode,
	}
	if doc, ok := s.docs.get(args.documentURI); ok {
		req.Text = doc.text
		req.LanguageID = doc.languageID
	} else {
		// Not open in the editor; plan against the file on disk and let the
		// planner resolve the language from its path.
		data, err := os.ReadFile(docPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}
		req.Text = string(data)
	}

	return s.currentPlanner().Plan(context.Background(), req)
}

func (s *Server) applyEdit(context *glsp.Context, uri string, plan *insert.Plan) {
	edits := make([]protocol.TextEdit, len(plan.Edits))
	for i, e := range plan.Edits {
		edits[i] = protocol.TextEdit{
			Range:   toProtocolRange(e.Range),
			NewText: e.NewText,
		}
	}

	label := fmt.Sprintf("Insert %s", plan.ImportPath)
	var response protocol.ApplyWorkspaceEditResponse
	context.Call("workspace/applyEdit", protocol.ApplyWorkspaceEditParams{
		Label: &label,
		Edit: protocol.WorkspaceEdit{
			Changes: map[protocol.DocumentUri][]protocol.TextEdit{uri: edits},
		},
	}, &response)

	if !response.Applied {
		reason := "no reason given"
		if response.FailureReason != nil {
			reason = *response.FailureReason
		}
		log.Warningf("client did not apply edit to %s: %s", uri, reason)
	}
}

func showError(context *glsp.Context, message string) {
	log.Error(message)
	context.Notify("window/showMessage", protocol.ShowMessageParams{
		Type:    protocol.MessageTypeError,
		Message: message,
	})
}

func toProtocolRange(r span.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(r.Start.Line), Character: protocol.UInteger(r.Start.Character)},
		End:   protocol.Position{Line: protocol.UInteger(r.End.Line), Character: protocol.UInteger(r.End.Character)},
	}
}
