package tools

import (
	"context"
	"fmt"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wxyzh/docx-mcp-server/internal/blocks"
	"github.com/wxyzh/docx-mcp-server/internal/docx"
	imcp "github.com/wxyzh/docx-mcp-server/internal/mcp"
)

const defaultTitle = "New Document"

func withDocID() mcp.ToolOption {
	return mcp.WithString("doc_id",
		mcp.Required(),
		mcp.Description("Document name without the .docx extension"),
	)
}

func withContent(required bool) mcp.ToolOption {
	opts := []mcp.PropertyOption{
		mcp.Description("Content items in order. Each item has a type of heading (text, level), paragraph (text, style, formatting, run_formatting) or table (rows, cols, data as comma-separated values, style, cell_formatting)"),
		imcp.ContentItems(),
	}
	if required {
		opts = append(opts, mcp.Required())
	}
	return imcp.WithArray("content", opts...)
}

type CreateDocumentArguments struct {
	DocID string `zog:"doc_id"`
	Title string `zog:"title"`
}

var createDocumentArgumentsSchema = z.Struct(z.Shape{
	"docID": z.String().Test(DocIDTest()).Required(),
	"title": z.String().Default(defaultTitle),
})

func AddCreateDocumentTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new Word document with a title. An existing document with the same name is replaced."),
		withDocID(),
		mcp.WithString("title",
			mcp.Description("Document title, added as a Title paragraph"),
			mcp.DefaultString(defaultTitle),
		),
	), env.handleCreateDocument)
}

func (e *Env) handleCreateDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := CreateDocumentArguments{}
	issues := createDocumentArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	return e.createDocument(normalizeID(args.DocID), args.Title, nil, "Document '%s' created successfully at path: %s")
}

type CreateCompleteDocumentArguments struct {
	DocID string `zog:"doc_id"`
	Title string `zog:"title"`
}

var createCompleteDocumentArgumentsSchema = z.Struct(z.Shape{
	"docID": z.String().Test(DocIDTest()).Required(),
	"title": z.String().Default(defaultTitle),
})

func AddCreateCompleteDocumentTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("create_complete_document",
		mcp.WithDescription("Create a Word document with a title and all of its content in one call"),
		withDocID(),
		mcp.WithString("title",
			mcp.Description("Document title, added as a Title paragraph"),
			mcp.DefaultString(defaultTitle),
		),
		withContent(true),
	), env.handleCreateCompleteDocument)
}

func (e *Env) handleCreateCompleteDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := CreateCompleteDocumentArguments{}
	issues := createCompleteDocumentArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	content, res := contentArg(request)
	if res != nil {
		return res, nil
	}
	msg := fmt.Sprintf("Document '%%s' created successfully with title and %d content items at path: %%s", len(content))
	return e.createDocument(normalizeID(args.DocID), args.Title, content, msg)
}

// createDocument builds a fresh document and stores it. msg receives the
// document name and path.
func (e *Env) createDocument(id, title string, content []blocks.Block, msg string) (*mcp.CallToolResult, error) {
	doc, err := newDocument(title, 0, content)
	if err != nil {
		return e.failure(id, "creating document", err), nil
	}
	path, err := e.Store.Put(id, doc)
	if err != nil {
		return e.failure(id, "creating document", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(msg, docName(id), path)), nil
}

func newDocument(title string, level int, content []blocks.Block) (*docx.Document, error) {
	doc, err := docx.New()
	if err != nil {
		return nil, err
	}
	if title != "" {
		if _, err := doc.AddHeading(title, level); err != nil {
			return nil, err
		}
		props, err := doc.CoreProperties()
		if err != nil {
			return nil, err
		}
		props.SetTitle(title)
	}
	if err := blocks.Expand(doc, doc.Body(), content, blocks.Options{}); err != nil {
		return nil, err
	}
	return doc, nil
}

type UpdateDocumentArguments struct {
	DocID string `zog:"doc_id"`
	Title string `zog:"title"`
}

var updateDocumentArgumentsSchema = z.Struct(z.Shape{
	"docID": z.String().Test(DocIDTest()).Required(),
	"title": z.String(),
})

func AddUpdateDocumentTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("update_document",
		mcp.WithDescription("Append content to a document, or replace it entirely when append is false"),
		withDocID(),
		mcp.WithString("title",
			mcp.Description("Title to add. Replacing uses it as the Title paragraph, appending as a level 1 heading"),
		),
		withContent(false),
		mcp.WithBoolean("append",
			mcp.Description("Append to the existing document (true) or replace it (false)"),
			mcp.DefaultBool(true),
		),
	), env.handleUpdateDocument)
}

func (e *Env) handleUpdateDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := UpdateDocumentArguments{}
	issues := updateDocumentArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	content, res := contentArg(request)
	if res != nil {
		return res, nil
	}
	return e.updateDocument(normalizeID(args.DocID), args.Title, content, request.GetBool("append", true))
}

func (e *Env) updateDocument(id, title string, content []blocks.Block, appendMode bool) (*mcp.CallToolResult, error) {
	exists, err := e.Store.Exists(id)
	if err != nil {
		return e.failure(id, "updating document", err), nil
	}
	if !exists && appendMode {
		return imcp.NewToolResultNotFoundError(fmt.Sprintf("Document '%s' does not exist and cannot be updated. Create it first.", docName(id))), nil
	}

	var action string
	if appendMode {
		action = "updated by appending"
		err = e.Store.Update(id, func(doc *docx.Document) error {
			if title != "" {
				if _, err := doc.AddHeading(title, 1); err != nil {
					return err
				}
			}
			return blocks.Expand(doc, doc.Body(), content, blocks.Options{})
		})
	} else {
		action = "replaced"
		var doc *docx.Document
		if doc, err = newDocument(title, 0, content); err == nil {
			_, err = e.Store.Put(id, doc)
		}
	}
	if err != nil {
		return e.failure(id, "updating document", err), nil
	}

	var titleMsg, contentMsg string
	if title != "" {
		titleMsg = " with new title"
	}
	if len(content) > 0 {
		contentMsg = fmt.Sprintf(" and %d content items", len(content))
	}
	return mcp.NewToolResultText(fmt.Sprintf("Document '%s' %s%s%s successfully.", docName(id), action, titleMsg, contentMsg)), nil
}

type AppendToDocumentArguments struct {
	DocID string `zog:"doc_id"`
}

var appendToDocumentArgumentsSchema = z.Struct(z.Shape{
	"docID": z.String().Test(DocIDTest()).Required(),
})

func AddAppendToDocumentTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("append_to_document",
		mcp.WithDescription("Append content items to the end of an existing document"),
		withDocID(),
		withContent(true),
	), env.handleAppendToDocument)
}

func (e *Env) handleAppendToDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := AppendToDocumentArguments{}
	issues := appendToDocumentArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	content, res := contentArg(request)
	if res != nil {
		return res, nil
	}
	return e.updateDocument(normalizeID(args.DocID), "", content, true)
}

type ReplaceDocumentArguments struct {
	DocID string `zog:"doc_id"`
	Title string `zog:"title"`
}

var replaceDocumentArgumentsSchema = z.Struct(z.Shape{
	"docID": z.String().Test(DocIDTest()).Required(),
	"title": z.String(),
})

func AddReplaceDocumentTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("replace_document",
		mcp.WithDescription("Replace a document with a new title and content, creating it if needed"),
		withDocID(),
		mcp.WithString("title",
			mcp.Description("Document title, added as a Title paragraph"),
		),
		withContent(false),
	), env.handleReplaceDocument)
}

func (e *Env) handleReplaceDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := ReplaceDocumentArguments{}
	issues := replaceDocumentArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	content, res := contentArg(request)
	if res != nil {
		return res, nil
	}
	return e.updateDocument(normalizeID(args.DocID), args.Title, content, false)
}

type DocIDArguments struct {
	DocID string `zog:"doc_id"`
}

var docIDArgumentsSchema = z.Struct(z.Shape{
	"docID": z.String().Test(DocIDTest()).Required(),
})

// parseDocID parses requests whose only argument is doc_id.
func parseDocID(request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	args := DocIDArguments{}
	issues := docIDArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return "", imcp.NewToolResultZogIssueMap(issues)
	}
	return normalizeID(args.DocID), nil
}

func AddReadDocumentTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the text of a document, one paragraph per line"),
		withDocID(),
	), env.handleReadDocument)
}

func (e *Env) handleReadDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := parseDocID(request)
	if res != nil {
		return res, nil
	}
	return e.readDocument(id)
}

func (e *Env) readDocument(id string) (*mcp.CallToolResult, error) {
	return e.view(id, "reading document", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(doc.Text()), nil
	})
}

func AddCheckDocumentExistsTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("check_document_exists",
		mcp.WithDescription("Check whether a document exists and can be read"),
		withDocID(),
	), env.handleCheckDocumentExists)
}

func (e *Env) handleCheckDocumentExists(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := parseDocID(request)
	if res != nil {
		return res, nil
	}
	path, err := e.Store.Resolve(id)
	if err != nil {
		return e.failure(id, "checking document", err), nil
	}
	exists, err := e.Store.Exists(id)
	if err != nil {
		return e.failure(id, "checking document", err), nil
	}
	if !exists {
		return mcp.NewToolResultText(fmt.Sprintf("Document '%s' does not exist at path: %s", docName(id), path)), nil
	}
	var paragraphs int
	err = e.Store.View(id, func(doc *docx.Document) error {
		paragraphs = len(doc.Paragraphs())
		return nil
	})
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Document '%s' exists but cannot be read: %v", docName(id), err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Document '%s' exists and is readable at path: %s. Contains %d paragraphs.", docName(id), path, paragraphs)), nil
}
