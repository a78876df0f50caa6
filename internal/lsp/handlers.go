package lsp

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{CommandInsertFile, CommandDropFile},
	}

	if params.ClientInfo != nil {
		log.Infof("initialize from %s", params.ClientInfo.Name)
	}
	if root := workspaceRoot(params); root != "" {
		s.setRoot(root)
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	log.Info("client initialized")
	s.startWatching()
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	log.Info("shutdown")
	s.stopWatching()
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	log.Debugf("didOpen %s (%s)", params.TextDocument.URI, params.TextDocument.LanguageID)
	s.docs.open(params.TextDocument.URI, params.TextDocument.LanguageID, params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	for _, raw := range params.ContentChanges {
		change, ok := raw.(protocol.TextDocumentContentChangeEventWhole)
		if !ok {
			return fmt.Errorf("unexpected change event type %T", raw)
		}
		if !s.docs.replace(uri, change.Text) {
			return fmt.Errorf("didChange for unopened document %s", uri)
		}
	}
	return nil
}

func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	log.Debugf("didClose %s", params.TextDocument.URI)
	s.docs.close(params.TextDocument.URI)
	return nil
}

// workspaceRoot prefers rootUri over the deprecated rootPath.
func workspaceRoot(params *protocol.InitializeParams) string {
	if params.RootURI != nil {
		if path, err := URIToPath(*params.RootURI); err == nil {
			return path
		}
	}
	if params.RootPath != nil {
		return *params.RootPath
	}
	return ""
}
