// Package service hosts the MCP server that exposes the font catalog to
// agents over stdio.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/louisbranch/typeshelf/internal/services/mcp/domain"
	"github.com/louisbranch/typeshelf/internal/services/web/storage/sqlite"
)

const (
	serverName    = "typeshelf"
	serverVersion = "0.1.0"
)

// Config holds MCP runtime inputs.
type Config struct {
	DBPath string
	Logger *zap.Logger
}

// Server wraps the MCP server and the catalog it reads.
type Server struct {
	mcpServer *mcp.Server
	logger    *zap.Logger
	closer    func() error
}

// New registers the catalog tools on a fresh MCP server.
func New(catalog domain.Catalog, logger *zap.Logger) (*Server, error) {
	if catalog == nil {
		return nil, errors.New("font catalog is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(mcpServer, domain.ListFontsTool(), domain.ListFontsHandler(catalog))
	mcp.AddTool(mcpServer, domain.GetFontTool(), domain.GetFontHandler(catalog))
	return &Server{mcpServer: mcpServer, logger: logger}, nil
}

// Run opens the catalog and serves MCP on stdio until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	path := strings.TrimSpace(cfg.DBPath)
	if path == "" {
		return errors.New("db path is required")
	}
	catalog, err := sqlite.Open(path)
	if err != nil {
		return fmt.Errorf("open font catalog: %w", err)
	}
	server, err := New(catalog, cfg.Logger)
	if err != nil {
		_ = catalog.Close()
		return err
	}
	server.closer = catalog.Close
	return server.Serve(ctx, &mcp.StdioTransport{})
}

// Serve runs the MCP server on transport and releases the catalog on exit.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.logger.Info("mcp serving", zap.String("server", serverName))
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if closeErr := s.Close(); closeErr != nil {
		if err == nil {
			return fmt.Errorf("close font catalog: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close font catalog: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Close releases the catalog when the server owns it.
func (s *Server) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	closer := s.closer
	s.closer = nil
	return closer()
}
