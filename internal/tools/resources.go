package tools

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

//go:embed usage.md
var usageGuide string

const (
	contentURIPrefix = "word://"
	contentURISuffix = "/content"
)

// AddDocumentContentResource registers word://{doc_id}/content.
func AddDocumentContentResource(server *server.MCPServer, env *Env) {
	server.AddResourceTemplate(mcp.NewResourceTemplate(
		contentURIPrefix+"{doc_id}"+contentURISuffix,
		"Word document content",
		mcp.WithTemplateDescription("Text of a document, one paragraph per line"),
		mcp.WithTemplateMIMEType("text/plain"),
	), env.handleReadDocumentContent)
}

func (e *Env) handleReadDocumentContent(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	id, ok := strings.CutPrefix(uri, contentURIPrefix)
	if ok {
		id, ok = strings.CutSuffix(id, contentURISuffix)
	}
	if !ok || id == "" {
		return nil, fmt.Errorf("unsupported resource URI: %s", uri)
	}
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}
	id = normalizeID(id)
	if id == "" {
		return nil, fmt.Errorf("invalid document id in %s", uri)
	}
	res, _ := e.readDocument(id)
	text := resultText(res)
	if res.IsError {
		return nil, errors.New(text)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     text,
		},
	}, nil
}

func resultText(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if t, ok := c.(mcp.TextContent); ok {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// AddUsagePrompt registers the word_document_usage prompt.
func AddUsagePrompt(server *server.MCPServer) {
	server.AddPrompt(mcp.NewPrompt("word_document_usage",
		mcp.WithPromptDescription("How to work with Word documents through this server"),
	), handleUsagePrompt)
}

func handleUsagePrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return mcp.NewGetPromptResult(
		"Word document server usage guide",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(usageGuide)),
		},
	), nil
}
