package lsp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/mvp-joe/insert-this/internal/config"
	"github.com/mvp-joe/insert-this/internal/insert"
)

// Test Plan for the language server:
// - initialize advertises full sync and both commands
// - didOpen/didChange/didClose keep the document store current
// - insertFile plans against the open text and sends workspace/applyEdit
// - dropFile uses drop semantics
// - Documents that are not open are read from disk
// - Parse failures are shown with window/showMessage and return no error
// - Unknown commands and malformed arguments are errors
// - The workspace root's config is loaded on initialize and on Reload,
//   and a broken config keeps the previous planner
// - URIs convert to paths and back

const (
	docURI   = "file:///p/src/App.tsx"
	assetURI = "file:///p/src/assets/logo.svg"
)

type recorder struct {
	notifications []string
	messages      []protocol.ShowMessageParams
	applied       []protocol.ApplyWorkspaceEditParams
	reject        bool
}

func (r *recorder) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			r.notifications = append(r.notifications, method)
			if m, ok := params.(protocol.ShowMessageParams); ok {
				r.messages = append(r.messages, m)
			}
		},
		Call: func(method string, params any, result any) {
			if p, ok := params.(protocol.ApplyWorkspaceEditParams); ok && method == "workspace/applyEdit" {
				r.applied = append(r.applied, p)
			}
			if resp, ok := result.(*protocol.ApplyWorkspaceEditResponse); ok {
				resp.Applied = !r.reject
			}
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(config.Default(), "test")
}

func open(t *testing.T, s *Server, uri, languageID, text string) {
	t.Helper()
	require.NoError(t, s.textDocumentDidOpen(&glsp.Context{}, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: text},
	}))
}

func execute(s *Server, r *recorder, command string, args ...any) (any, error) {
	return s.workspaceExecuteCommand(r.context(), &protocol.ExecuteCommandParams{
		Command:   command,
		Arguments: args,
	})
}

func position(line, character int) map[string]any {
	// Decoded JSON numbers are float64.
	return map[string]any{"line": float64(line), "character": float64(character)}
}

func TestInitialize_AdvertisesCapabilities(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	res, err := s.initialize(&glsp.Context{}, &protocol.InitializeParams{})
	require.NoError(t, err)

	result, ok := res.(protocol.InitializeResult)
	require.True(t, ok)
	require.NotNil(t, result.ServerInfo)
	assert.Equal(t, "insert-this", result.ServerInfo.Name)

	sync, ok := result.Capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
	require.True(t, ok)
	require.NotNil(t, sync.Change)
	assert.Equal(t, protocol.TextDocumentSyncKindFull, *sync.Change)

	require.NotNil(t, result.Capabilities.ExecuteCommandProvider)
	assert.ElementsMatch(t, []string{CommandInsertFile, CommandDropFile}, result.Capabilities.ExecuteCommandProvider.Commands)
}

func TestDocumentStore_TracksOpenDocuments(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	ctx := &glsp.Context{}
	open(t, s, docURI, "typescriptreact", "const a = 1")

	require.NoError(t, s.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: docURI},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "const a = "}},
	}))

	doc, ok := s.docs.get(docURI)
	require.True(t, ok)
	assert.Equal(t, "const a = ", doc.text)
	assert.Equal(t, "typescriptreact", doc.languageID)

	require.NoError(t, s.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
	}))
	_, ok = s.docs.get(docURI)
	assert.False(t, ok)
}

func TestDidChange_RejectsIncrementalAndUnopened(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	ctx := &glsp.Context{}

	err := s.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: docURI},
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "x"}},
	})
	assert.Error(t, err)

	open(t, s, docURI, "typescript", "")
	err = s.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: docURI},
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEvent{Text: "x"}},
	})
	assert.Error(t, err)
}

func TestInsertFile_AppliesEdits(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	open(t, s, docURI, "typescript", "const a = ")

	r := &recorder{}
	res, err := execute(s, r, CommandInsertFile, assetURI, docURI, position(0, 10))
	require.NoError(t, err)

	plan, ok := res.(*insert.Plan)
	require.True(t, ok)
	assert.Equal(t, insert.ActionInsertName, plan.Action)
	assert.Equal(t, "logoImg", plan.Name)

	require.Len(t, r.applied, 1)
	edits := r.applied[0].Edit.Changes[docURI]
	require.Len(t, edits, 2)
	assert.Equal(t, "import logoImg from \"./assets/logo.svg\"\n", edits[0].NewText)
	assert.Equal(t, protocol.Position{Line: 0, Character: 0}, edits[0].Range.Start)
	assert.Equal(t, "logoImg", edits[1].NewText)
	assert.Equal(t, protocol.Position{Line: 0, Character: 10}, edits[1].Range.Start)
	assert.Empty(t, r.messages)
}

func TestDropFile_UsesDropSemantics(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	open(t, s, docURI, "typescriptreact", "// ")

	r := &recorder{}
	res, err := execute(s, r, CommandDropFile, assetURI, docURI, position(0, 3))
	require.NoError(t, err)

	plan := res.(*insert.Plan)
	assert.Equal(t, insert.ActionInsertPath, plan.Action)
	require.Len(t, r.applied, 1)
	edits := r.applied[0].Edit.Changes[docURI]
	require.Len(t, edits, 1)
	assert.Equal(t, "./assets/logo.svg", edits[0].NewText)
}

func TestInsertFile_ReadsUnopenedDocumentFromDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	docPath := filepath.Join(dir, "main.ts")
	require.NoError(t, os.WriteFile(docPath, []byte("const a = "), 0644))

	s := newTestServer(t)
	r := &recorder{}
	res, err := execute(s, r, CommandInsertFile, PathToURI(filepath.Join(dir, "my icon.svg")), PathToURI(docPath), position(0, 10))
	require.NoError(t, err)

	plan := res.(*insert.Plan)
	assert.Equal(t, "typescript", plan.LanguageID)
	assert.Equal(t, "./my icon.svg", plan.ImportPath)
	assert.Equal(t, "myIconImg", plan.Name)
}

func TestInsertFile_RejectedEditStillReturnsPlan(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	open(t, s, docURI, "typescript", "")

	r := &recorder{reject: true}
	res, err := execute(s, r, CommandInsertFile, assetURI, docURI, position(0, 0))
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Len(t, r.applied, 1)
}

func TestInsertFile_ParseFailureShowsMessage(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	open(t, s, docURI, "typescript", "const = = ;")

	r := &recorder{}
	res, err := execute(s, r, CommandInsertFile, assetURI, docURI, position(0, 0))
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, r.applied)

	require.Len(t, r.messages, 1)
	assert.Equal(t, protocol.MessageTypeError, r.messages[0].Type)
	assert.Contains(t, r.messages[0].Message, "cannot parse")
	assert.Contains(t, r.notifications, "window/showMessage")
}

func TestExecuteCommand_Errors(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	open(t, s, docURI, "typescript", "")

	tests := []struct {
		name    string
		command string
		args    []any
	}{
		{"unknown command", "insertThis.other", []any{assetURI, docURI, position(0, 0)}},
		{"missing arguments", CommandInsertFile, []any{assetURI}},
		{"asset not a string", CommandInsertFile, []any{1.0, docURI, position(0, 0)}},
		{"document not a string", CommandInsertFile, []any{assetURI, nil, position(0, 0)}},
		{"bad position", CommandInsertFile, []any{assetURI, docURI, "0:0"}},
		{"same file", CommandInsertFile, []any{docURI, docURI, position(0, 0)}},
		{"not a file uri", CommandInsertFile, []any{"https://example.com/a.svg", docURI, position(0, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			_, err := execute(s, r, tt.command, tt.args...)
			assert.Error(t, err)
			assert.Empty(t, r.applied)
		})
	}
}

func TestURIConversion(t *testing.T) {
	t.Parallel()

	path, err := URIToPath("file:///home/me/my%20project/logo.svg")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/home/me/my project/logo.svg"), path)

	assert.Equal(t, "file:///home/me/my%20project/logo.svg", PathToURI("/home/me/my project/logo.svg"))

	roundTrip, err := URIToPath(PathToURI("/tmp/日本/a#b.svg"))
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/tmp/日本/a#b.svg"), roundTrip)

	_, err = URIToPath("untitled:Untitled-1")
	assert.Error(t, err)
	_, err = URIToPath("file://%zz")
	assert.Error(t, err)
}

func TestInitialize_LoadsWorkspaceConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	configDir := filepath.Join(root, config.DirName)
	require.NoError(t, os.MkdirAll(configDir, 0755))
	configPath := filepath.Join(configDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("naming:\n  suffixes:\n    svg: Icon\n"), 0644))

	s := newTestServer(t)
	rootURI := PathToURI(root)
	_, err := s.initialize(&glsp.Context{}, &protocol.InitializeParams{RootURI: &rootURI})
	require.NoError(t, err)

	docURI := PathToURI(filepath.Join(root, "src", "App.tsx"))
	assetURI := PathToURI(filepath.Join(root, "src", "logo.svg"))
	open(t, s, docURI, "typescriptreact", "const a = ")

	res, err := execute(s, &recorder{}, CommandInsertFile, assetURI, docURI, position(0, 10))
	require.NoError(t, err)
	assert.Equal(t, "logoIcon", res.(*insert.Plan).Name)

	require.NoError(t, os.WriteFile(configPath, []byte("naming:\n  suffixes:\n    svg: Svg\n"), 0644))
	require.NoError(t, s.Reload(context.Background()))
	res, err = execute(s, &recorder{}, CommandInsertFile, assetURI, docURI, position(0, 10))
	require.NoError(t, err)
	assert.Equal(t, "logoSvg", res.(*insert.Plan).Name)

	require.NoError(t, os.WriteFile(configPath, []byte("insert:\n  position_encoding: latin-1\n"), 0644))
	assert.Error(t, s.Reload(context.Background()))
	res, err = execute(s, &recorder{}, CommandInsertFile, assetURI, docURI, position(0, 10))
	require.NoError(t, err)
	assert.Equal(t, "logoSvg", res.(*insert.Plan).Name)
}

func TestReload_WithoutRootKeepsStartupConfig(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	require.NoError(t, s.Reload(context.Background()))
	assert.NotNil(t, s.currentPlanner())

	// No root, nothing to watch.
	s.startWatching()
	assert.Nil(t, s.watcher)
	s.stopWatching()
}

func TestInitialized_WatchesConfigDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, config.DirName), 0755))

	s := newTestServer(t)
	_, err := s.initialize(&glsp.Context{}, &protocol.InitializeParams{RootPath: &root})
	require.NoError(t, err)
	require.NoError(t, s.initialized(&glsp.Context{}, &protocol.InitializedParams{}))
	assert.NotNil(t, s.watcher)

	require.NoError(t, s.shutdown(&glsp.Context{}))
	assert.Nil(t, s.watcher)
}
