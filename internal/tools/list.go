package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	z "github.com/Oudwins/zog"
	"github.com/gobwas/glob"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	imcp "github.com/wxyzh/docx-mcp-server/internal/mcp"
	"github.com/wxyzh/docx-mcp-server/internal/store"
)

type ListAvailableDocumentsArguments struct {
	Pattern string `zog:"pattern"`
	Details bool   `zog:"details"`
}

var listAvailableDocumentsArgumentsSchema = z.Struct(z.Shape{
	"pattern": z.String().Trim(),
	"details": z.Bool().Default(false),
})

func AddListAvailableDocumentsTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("list_available_documents",
		mcp.WithDescription("List the Word documents in the server's documents directory"),
		mcp.WithString("pattern",
			mcp.Description("Glob pattern matched against document names, e.g. \"report-*\""),
		),
		mcp.WithBoolean("details",
			mcp.Description("Include size and timestamps"),
			mcp.DefaultBool(false),
		),
	), env.handleListAvailableDocuments)
}

func (e *Env) handleListAvailableDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := ListAvailableDocumentsArguments{}
	issues := listAvailableDocumentsArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	return e.listAvailableDocuments(args.Pattern, args.Details)
}

func (e *Env) listAvailableDocuments(pattern string, details bool) (*mcp.CallToolResult, error) {
	var g glob.Glob
	if pattern != "" {
		var err error
		if g, err = glob.Compile(pattern); err != nil {
			return imcp.NewToolResultInvalidArgumentError(fmt.Sprintf("pattern: %v", err)), nil
		}
	}
	infos, err := e.Store.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error listing documents: %v", err)), nil
	}

	var lines []string
	for _, info := range infos {
		if g != nil && !g.Match(info.ID) {
			continue
		}
		if details {
			lines = append(lines, "- "+describeFile(info))
		} else {
			lines = append(lines, "- "+info.ID)
		}
	}
	if len(lines) == 0 {
		if pattern != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No Word documents (.docx files) matching '%s' found in the server directory.", pattern)), nil
		}
		return mcp.NewToolResultText("No Word documents (.docx files) found in the server directory."), nil
	}
	return mcp.NewToolResultText("Available Word documents (without .docx extension):\n" + strings.Join(lines, "\n")), nil
}

func describeFile(info store.Info) string {
	const layout = time.DateTime
	parts := []string{
		fmt.Sprintf("%d bytes", info.Size),
		"modified " + info.Modified.Format(layout),
	}
	if info.HasCreated {
		parts = append(parts, "created "+info.Created.Format(layout))
	}
	if !info.Accessed.IsZero() {
		parts = append(parts, "accessed "+info.Accessed.Format(layout))
	}
	return fmt.Sprintf("%s (%s)", info.ID, strings.Join(parts, ", "))
}
