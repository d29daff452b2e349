package tools

import (
	"errors"
	"fmt"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/wxyzh/docx-mcp-server/internal/blocks"
	"github.com/wxyzh/docx-mcp-server/internal/docx"
	"github.com/wxyzh/docx-mcp-server/internal/format"
	imcp "github.com/wxyzh/docx-mcp-server/internal/mcp"
	"github.com/wxyzh/docx-mcp-server/internal/pdf"
	"github.com/wxyzh/docx-mcp-server/internal/store"
)

// Env carries what the tool handlers share.
type Env struct {
	Store *store.Store
	PDF   *pdf.Service
	Log   logrus.FieldLogger
}

// AddTools registers every document tool on server.
func AddTools(server *server.MCPServer, env *Env) {
	// documents
	AddCreateDocumentTool(server, env)
	AddCreateCompleteDocumentTool(server, env)
	AddUpdateDocumentTool(server, env)
	AddAppendToDocumentTool(server, env)
	AddReplaceDocumentTool(server, env)
	AddReadDocumentTool(server, env)
	AddCheckDocumentExistsTool(server, env)
	AddListAvailableDocumentsTool(server, env)
	AddConvertToPDFTool(server, env)
	AddAnalyzeDocumentStructureTool(server, env)
	AddGetDocumentMetadataTool(server, env)
	AddSetDocumentMetadataTool(server, env)

	// content
	AddParagraphTool(server, env)
	AddFormattedTextTool(server, env)
	AddHeadingTool(server, env)
	AddGetParagraphsTool(server, env)
	AddSetParagraphTextTool(server, env)
	AddImageTool(server, env)
	AddTableTool(server, env)
	AddMergeTableCellsTool(server, env)
	AddGetTableDataTool(server, env)
	AddListTablesTool(server, env)
	AddSetTableColumnWidthTool(server, env)
	AddSetTableCellPropertiesTool(server, env)

	// formatting
	AddSetParagraphPropertiesTool(server, env)
	AddSetTextPropertiesTool(server, env)

	// styles
	AddEnsureStyleExistsTool(server, env)
	AddCreateCustomStyleTool(server, env)
	AddModifyStyleTool(server, env)
	AddGetStylesDetailTool(server, env)
	AddCheckStyleUsageTool(server, env)
	AddListStylesTool(server, env)

	// sections
	AddSectionTool(server, env)
	AddListSectionsTool(server, env)
	AddSetSectionPropertiesTool(server, env)
	AddChangePageOrientationTool(server, env)
	AddCopySectionPropertiesTool(server, env)

	// headers and footers
	AddHeaderFooterTools(server, env)
	AddFooterTools(server, env)
}

func (e *Env) log() logrus.FieldLogger {
	if e.Log == nil {
		return logrus.StandardLogger()
	}
	return e.Log
}

// errNoSave aborts an update whose callback already produced the result.
var errNoSave = errors.New("update aborted")

// update loads the document, runs fn and saves unless fn returns an error
// result. doing completes "Error <doing>: <err>" for unexpected failures.
func (e *Env) update(id, doing string, fn func(doc *docx.Document) (*mcp.CallToolResult, error)) (*mcp.CallToolResult, error) {
	var res *mcp.CallToolResult
	err := e.Store.Update(id, func(doc *docx.Document) error {
		r, err := fn(doc)
		if err != nil {
			return err
		}
		res = r
		if r.IsError {
			return errNoSave
		}
		return nil
	})
	if errors.Is(err, errNoSave) {
		return res, nil
	}
	var u unchanged
	if errors.As(err, &u) {
		return u.res, nil
	}
	if err != nil {
		return e.failure(id, doing, err), nil
	}
	return res, nil
}

// view is update without the save.
func (e *Env) view(id, doing string, fn func(doc *docx.Document) (*mcp.CallToolResult, error)) (*mcp.CallToolResult, error) {
	var res *mcp.CallToolResult
	err := e.Store.View(id, func(doc *docx.Document) error {
		r, err := fn(doc)
		res = r
		return err
	})
	if err != nil {
		return e.failure(id, doing, err), nil
	}
	return res, nil
}

// failure turns an error into the tool result callers see.
func (e *Env) failure(id, doing string, err error) *mcp.CallToolResult {
	var optErr *format.OptionError
	switch {
	case errors.Is(err, store.ErrInvalidID):
		return imcp.NewToolResultInvalidArgumentError(err.Error())
	case errors.Is(err, store.ErrNotFound):
		return imcp.NewToolResultNotFoundError(fmt.Sprintf("Document '%s' not found.", docName(id)))
	case errors.Is(err, store.ErrCorrupt):
		return mcp.NewToolResultError(fmt.Sprintf("Error loading document '%s': %v", docName(id), err))
	case errors.Is(err, blocks.ErrDimensionMismatch):
		return imcp.NewToolResultKind(imcp.InvalidArgument, "Error in table data: Number of data elements does not match table dimensions.")
	case errors.As(err, &optErr):
		return imcp.NewToolResultInvalidArgumentError(optErr.Error())
	case errors.Is(err, blocks.ErrInvalidBlock), errors.Is(err, docx.ErrInvalidHeadingLevel):
		return imcp.NewToolResultInvalidArgumentError(err.Error())
	case errors.Is(err, docx.ErrInvalidXMLText):
		return imcp.NewToolResultInvalidArgumentError(
			fmt.Sprintf("All strings must be XML compatible: Unicode or ASCII, no NULL bytes or control characters (%v)", err))
	}
	e.log().WithError(err).WithField("doc_id", id).Errorf("error %s", doing)
	return mcp.NewToolResultError(fmt.Sprintf("Error %s: %v", doing, err))
}

func docName(id string) string {
	return id + store.Ext
}

// DocIDTest rejects ids that do not name a file directly under the
// documents directory.
func DocIDTest() z.Test[*string] {
	return z.Test[*string]{
		Func: func(id *string, ctx z.Ctx) {
			if _, err := store.NormalizeID(*id); err != nil {
				ctx.AddIssue(ctx.Issue().SetMessage(err.Error()))
			}
		},
	}
}

// normalizeID is only called after DocIDTest passed.
func normalizeID(id string) string {
	n, _ := store.NormalizeID(id)
	return n
}

func contentArg(request mcp.CallToolRequest) ([]blocks.Block, *mcp.CallToolResult) {
	// zog has no schema for heterogeneous objects, so content is checked here
	raw, ok := request.GetArguments()["content"]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, imcp.NewToolResultInvalidArgumentError("content must be an array of content items")
	}
	bs, err := blocks.Parse(items)
	if err != nil {
		return nil, imcp.NewToolResultInvalidArgumentError(err.Error())
	}
	return bs, nil
}

func objectArg(request mcp.CallToolRequest, name string) (map[string]any, *mcp.CallToolResult) {
	raw, ok := request.GetArguments()[name]
	if !ok || raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, imcp.NewToolResultInvalidArgumentError(fmt.Sprintf("%s must be an object", name))
	}
	return m, nil
}

// maxInches bounds page, margin, column and picture lengths; Word caps
// page dimensions at 22 inches.
const maxInches = 22

func inchesInRange(f float64) bool {
	return format.Finite(f) && f >= 0 && f <= maxInches
}

func paragraphAt(doc *docx.Document, i int) (*docx.Paragraph, bool) {
	ps := doc.Paragraphs()
	if i < 0 || i >= len(ps) {
		return nil, false
	}
	return ps[i], true
}

func tableAt(doc *docx.Document, i int) (*docx.Table, *mcp.CallToolResult) {
	ts := doc.Tables()
	if i < 0 || i >= len(ts) {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Error: Table index %d is out of range. Document has %d tables.", i, len(ts)))
	}
	return ts[i], nil
}

func sectionAt(doc *docx.Document, i int) (*docx.Section, *mcp.CallToolResult) {
	ss := doc.Sections()
	if i < 0 || i >= len(ss) {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Error: Section index %d is out of range. Document has %d sections.", i, len(ss)))
	}
	return ss[i], nil
}
