package server

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/wxyzh/docx-mcp-server/internal/config"
	"github.com/wxyzh/docx-mcp-server/internal/pdf"
	"github.com/wxyzh/docx-mcp-server/internal/store"
	"github.com/wxyzh/docx-mcp-server/internal/tools"
)

const instructions = "Reads and edits Microsoft Word (.docx) documents kept in the server's documents directory. " +
	"Documents are addressed by doc_id, the file name without the .docx extension. " +
	"Call analyze_document_structure before editing by index. The word_document_usage prompt has examples."

type DocxServer struct {
	server *server.MCPServer
	log    logrus.FieldLogger
}

func New(version string, st *store.Store, conv *pdf.Service, log logrus.FieldLogger) *DocxServer {
	s := &DocxServer{log: log}
	s.server = server.NewMCPServer(
		"docx-mcp-server",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
		server.WithToolHandlerMiddleware(logTools(log)),
	)
	env := &tools.Env{Store: st, PDF: conv, Log: log}
	tools.AddTools(s.server, env)
	tools.AddDocumentContentResource(s.server, env)
	tools.AddUsagePrompt(s.server)
	return s
}

// MCP exposes the underlying server, mostly for tests.
func (s *DocxServer) MCP() *server.MCPServer {
	return s.server
}

// Start serves on the given transport until it fails. addr is ignored for
// stdio.
func (s *DocxServer) Start(transport, addr string) error {
	s.log.WithFields(logrus.Fields{"transport": transport, "addr": addr}).Info("starting docx-mcp-server")
	switch transport {
	case config.TransportStdio:
		return server.ServeStdio(s.server)
	case config.TransportSSE:
		return server.NewSSEServer(s.server).Start(addr)
	case config.TransportHTTP:
		return server.NewStreamableHTTPServer(s.server).Start(addr)
	}
	return fmt.Errorf("unknown transport %q", transport)
}

func logTools(log logrus.FieldLogger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := time.Now()
			res, err := next(ctx, request)
			entry := log.WithFields(logrus.Fields{
				"tool":     request.Params.Name,
				"duration": time.Since(start),
			})
			switch {
			case err != nil:
				entry.WithError(err).Error("tool failed")
			case res != nil && res.IsError:
				entry.Warn("tool returned an error result")
			default:
				entry.Debug("tool called")
			}
			return res, err
		}
	}
}
