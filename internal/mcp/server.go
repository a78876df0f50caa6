// Package mcp exposes the insertion planner to coding assistants as a Model
// Context Protocol tool.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/tliron/commonlog"

	"github.com/mvp-joe/insert-this/internal/config"
	"github.com/mvp-joe/insert-this/internal/insert"
	"github.com/mvp-joe/insert-this/internal/watcher"
)

var log = commonlog.GetLogger("insertthis.mcp")

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	projectRoot string
	mcp         *server.MCPServer

	mu      sync.RWMutex
	planner *insert.Planner
}

// NewMCPServer creates a server for the project at projectRoot. Relative
// paths in tool calls are resolved against it.
func NewMCPServer(projectRoot string, cfg *config.Config, version string) *MCPServer {
	s := &MCPServer{
		projectRoot: projectRoot,
		planner:     insert.NewPlanner(cfg),
	}

	s.mcp = server.NewMCPServer(
		"insert-this",
		version,
		server.WithToolCapabilities(true),
	)
	AddInsertFileTool(s.mcp, s.currentPlanner, projectRoot)

	return s
}

func (s *MCPServer) currentPlanner() *insert.Planner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.planner
}

// Reload re-reads the project configuration, keeping the old planner on
// failure.
func (s *MCPServer) Reload(ctx context.Context) error {
	cfg, err := config.LoadConfigFromDir(s.projectRoot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.planner = insert.NewPlanner(cfg)
	s.mu.Unlock()
	return nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *MCPServer) Serve(ctx context.Context) error {
	dir := filepath.Join(s.projectRoot, config.DirName)
	if w, err := watcher.NewConfigWatcher(s, dir, "config.yml", "config.yaml"); err == nil {
		w.Start(ctx)
		defer w.Stop()
	} else {
		log.Debugf("not watching %s: %v", dir, err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting MCP server on stdio for %s", s.projectRoot)
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		log.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
