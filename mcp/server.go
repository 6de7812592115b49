package mcp

import (
	"github.com/ka2n/ogrelay/api"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server for ogrelay
type Server struct {
	server  *server.MCPServer
	fetcher *api.Fetcher
}

// NewServer creates a new MCP server instance backed by fetcher
func NewServer(fetcher *api.Fetcher) *Server {
	s := &Server{
		server:  server.NewMCPServer("ogrelay", api.Version),
		fetcher: fetcher,
	}

	s.server.AddTools(s.Tools()...)

	return s
}

// Run starts the MCP server
func (s *Server) Run() error {
	return server.ServeStdio(s.server)
}

// Tools returns all tools served by s
func (s *Server) Tools() []server.ServerTool {
	return []server.ServerTool{
		newServerTool(s.FetchLinkMetadata()),
		newServerTool(s.FetchDocumentPreviews()),
		newServerTool(s.ClearMetadataCache()),
	}
}

func newServerTool(tool mcp.Tool, handler server.ToolHandlerFunc) server.ServerTool {
	return server.ServerTool{
		Tool:    tool,
		Handler: handler,
	}
}
