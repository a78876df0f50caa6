// Package lsp exposes the insertion planner as a language server. Editors
// call it through workspace/executeCommand and receive the edits as a
// workspace/applyEdit request.
package lsp

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/mvp-joe/insert-this/internal/config"
	"github.com/mvp-joe/insert-this/internal/insert"
	"github.com/mvp-joe/insert-this/internal/span"
	"github.com/mvp-joe/insert-this/internal/watcher"
)

const lsName = "insert-this"

var log = commonlog.GetLogger("insertthis.lsp")

// Server holds the handler table, the open documents and the planner built
// from the current configuration.
type Server struct {
	handler *protocol.Handler
	docs    *documentStore
	version string

	mu      sync.RWMutex
	planner *insert.Planner
	root    string
	watcher *watcher.ConfigWatcher
}

// NewServer creates a server that plans with cfg until the client names a
// workspace root, after which the root's configuration is used and watched.
func NewServer(cfg *config.Config, version string) *Server {
	s := &Server{
		planner: newPlanner(cfg),
		docs:    newDocumentStore(),
		version: version,
	}
	s.handler = &protocol.Handler{
		Initialize:              s.initialize,
		Initialized:             s.initialized,
		Shutdown:                s.shutdown,
		SetTrace:                s.setTrace,
		TextDocumentDidOpen:     s.textDocumentDidOpen,
		TextDocumentDidChange:   s.textDocumentDidChange,
		TextDocumentDidClose:    s.textDocumentDidClose,
		WorkspaceExecuteCommand: s.workspaceExecuteCommand,
	}
	return s
}

// newPlanner builds a planner for cfg. LSP 3.16 positions are always UTF-16,
// so the configured position encoding is overridden.
func newPlanner(cfg *config.Config) *insert.Planner {
	c := *cfg
	c.Insert.PositionEncoding = span.UTF16.String()
	return insert.NewPlanner(&c)
}

// RunStdio serves the protocol on stdin/stdout until the client exits.
func (s *Server) RunStdio() error {
	log.Infof("starting %s %s", lsName, s.version)
	defer s.stopWatching()
	return server.NewServer(s.handler, lsName, false).RunStdio()
}

// Reload re-reads the configuration of the workspace root. On failure the
// previous planner stays in place.
func (s *Server) Reload(ctx context.Context) error {
	s.mu.RLock()
	root := s.root
	s.mu.RUnlock()
	if root == "" {
		return nil
	}

	cfg, err := config.LoadConfigFromDir(root)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.planner = newPlanner(cfg)
	s.mu.Unlock()
	return nil
}

func (s *Server) currentPlanner() *insert.Planner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.planner
}

// setRoot records the workspace root and loads its configuration.
func (s *Server) setRoot(root string) {
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()

	if err := s.Reload(context.Background()); err != nil {
		log.Errorf("failed to load config for %s: %v (using startup config)", root, err)
	}
}

// startWatching reloads the planner when the project config changes. A
// workspace without a config directory is not watched.
func (s *Server) startWatching() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root == "" || s.watcher != nil {
		return
	}

	dir := filepath.Join(s.root, config.DirName)
	w, err := watcher.NewConfigWatcher(s, dir, "config.yml", "config.yaml")
	if err != nil {
		log.Debugf("not watching %s: %v", dir, err)
		return
	}
	s.watcher = w
	w.Start(context.Background())
}

func (s *Server) stopWatching() {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w != nil {
		w.Stop()
	}
}
