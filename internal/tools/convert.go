package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	imcp "github.com/wxyzh/docx-mcp-server/internal/mcp"
	"github.com/wxyzh/docx-mcp-server/internal/pdf"
)

func AddConvertToPDFTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("convert_to_pdf",
		mcp.WithDescription("Convert a document to PDF next to the original. Requires Microsoft Word (Windows) or LibreOffice on the server."),
		withDocID(),
	), env.handleConvertToPDF)
}

func (e *Env) handleConvertToPDF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := parseDocID(request)
	if res != nil {
		return res, nil
	}
	return e.convertToPDF(ctx, id)
}

func (e *Env) convertToPDF(ctx context.Context, id string) (*mcp.CallToolResult, error) {
	if e.PDF == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error converting document to PDF: %v", pdf.ErrNoConverter)), nil
	}
	exists, err := e.Store.Exists(id)
	if err != nil {
		return e.failure(id, "converting document to PDF", err), nil
	}
	if !exists {
		return imcp.NewToolResultNotFoundError(fmt.Sprintf("Error: Document '%s' not found.", docName(id))), nil
	}
	dst, err := e.Store.PathFor(id, ".pdf")
	if err != nil {
		return e.failure(id, "converting document to PDF", err), nil
	}

	var result pdf.Result
	// the lock keeps writers out while the converter reads the file
	err = e.Store.WithLock(id, func(src string) error {
		result, err = e.PDF.Convert(ctx, src, dst)
		return err
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error converting document to PDF: %v", err)), nil
	}
	e.log().WithFields(logrus.Fields{"doc_id": id, "backend": result.Backend, "pages": result.Pages}).Debug("pdf ready")
	return mcp.NewToolResultText(fmt.Sprintf("Document successfully converted to PDF at: %s", result.Path)), nil
}
