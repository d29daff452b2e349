package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
	"github.com/wxyzh/docx-mcp-server/internal/format"
	imcp "github.com/wxyzh/docx-mcp-server/internal/mcp"
	"github.com/wxyzh/docx-mcp-server/internal/style"
)

const (
	paragraphFormattingHelp = "Paragraph formatting: alignment (LEFT, CENTER, RIGHT, JUSTIFY), left_indent, right_indent, first_line_indent (inches), space_before, space_after (points), line_spacing (multiple, or \"<n>pt\"), keep_together, keep_with_next, page_break_before, widow_control"
	runFormattingHelp       = "Text formatting: name, size (points), bold, italic, underline, color (#RRGGBB or rgb(r,g,b))"
)

func withParagraphIndex() mcp.ToolOption {
	return mcp.WithNumber("paragraph_index",
		mcp.Required(),
		mcp.Description("0-based paragraph index, as reported by analyze_document_structure"),
	)
}

func paragraphFormatting(request mcp.CallToolRequest) (format.ParagraphOptions, *mcp.CallToolResult) {
	m, res := objectArg(request, "formatting")
	if res != nil {
		return format.ParagraphOptions{}, res
	}
	opts, err := format.ParseParagraph(m)
	if err != nil {
		return opts, imcp.NewToolResultInvalidArgumentError(err.Error())
	}
	return opts, nil
}

func runFormatting(request mcp.CallToolRequest) (format.RunOptions, *mcp.CallToolResult) {
	m, res := objectArg(request, "formatting")
	if res != nil {
		return format.RunOptions{}, res
	}
	opts, err := format.ParseRun(m)
	if err != nil {
		return opts, imcp.NewToolResultInvalidArgumentError(err.Error())
	}
	return opts, nil
}

type AddParagraphArguments struct {
	DocID string `zog:"doc_id"`
	Text  string `zog:"text"`
	Style string `zog:"style"`
}

var addParagraphArgumentsSchema = z.Struct(z.Shape{
	"docID": z.String().Test(DocIDTest()).Required(),
	"text":  z.String(),
	"style": z.String().Trim(),
})

func AddParagraphTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("add_paragraph",
		mcp.WithDescription("Append a paragraph to the end of a document"),
		withDocID(),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Paragraph text"),
		),
		mcp.WithString("style",
			mcp.Description("Paragraph style name, e.g. \"Quote\" or \"List Bullet\""),
		),
		imcp.WithObject("formatting",
			mcp.Description(paragraphFormattingHelp),
		),
	), env.handleAddParagraph)
}

func (e *Env) handleAddParagraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := AddParagraphArguments{}
	issues := addParagraphArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	opts, res := paragraphFormatting(request)
	if res != nil {
		return res, nil
	}
	return e.update(normalizeID(args.DocID), "adding paragraph", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		p := doc.AddParagraph(args.Text)
		msg := "Paragraph added successfully."
		if args.Style != "" {
			if err := style.Apply(doc, p, args.Style); errors.Is(err, docx.ErrStyleNotFound) {
				msg = fmt.Sprintf("Warning: Style '%s' not found. Added without style.", args.Style)
			} else if err != nil {
				return nil, err
			}
		}
		opts.Apply(p.Format())
		if strings.HasPrefix(msg, "Warning:") {
			return imcp.NewToolResultKind(imcp.Degraded, msg), nil
		}
		return mcp.NewToolResultText(msg), nil
	})
}

type AddFormattedTextArguments struct {
	DocID          string `zog:"doc_id"`
	ParagraphIndex int    `zog:"paragraph_index"`
	Text           string `zog:"text"`
}

var addFormattedTextArgumentsSchema = z.Struct(z.Shape{
	"docID":          z.String().Test(DocIDTest()).Required(),
	"paragraphIndex": z.Int().GTE(0),
	"text":           z.String(),
})

func AddFormattedTextTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("add_formatted_text",
		mcp.WithDescription("Append a run of formatted text to an existing paragraph"),
		withDocID(),
		withParagraphIndex(),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to append"),
		),
		imcp.WithObject("formatting",
			mcp.Description(runFormattingHelp),
		),
	), env.handleAddFormattedText)
}

func (e *Env) handleAddFormattedText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := AddFormattedTextArguments{}
	issues := addFormattedTextArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	opts, res := runFormatting(request)
	if res != nil {
		return res, nil
	}
	return e.update(normalizeID(args.DocID), "adding formatted text", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		p, ok := paragraphAt(doc, args.ParagraphIndex)
		if !ok {
			return mcp.NewToolResultError("Error: Paragraph index out of range."), nil
		}
		opts.Apply(p.AddRun(args.Text).Font())
		return mcp.NewToolResultText("Formatted text added successfully."), nil
	})
}

type AddHeadingArguments struct {
	DocID string `zog:"doc_id"`
	Text  string `zog:"text"`
	Level int    `zog:"level"`
}

var addHeadingArgumentsSchema = z.Struct(z.Shape{
	"docID": z.String().Test(DocIDTest()).Required(),
	"text":  z.String(),
	"level": z.Int().GTE(0).LTE(9),
})

func AddHeadingTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("add_heading",
		mcp.WithDescription("Append a heading to a document. Level 0 is the Title style, 1 to 9 are Heading 1 to Heading 9."),
		withDocID(),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Heading text"),
		),
		mcp.WithNumber("level",
			mcp.Required(),
			mcp.Description("Heading level from 0 to 9"),
			mcp.Min(0),
			mcp.Max(9),
		),
		imcp.WithObject("formatting",
			mcp.Description(paragraphFormattingHelp),
		),
	), env.handleAddHeading)
}

func (e *Env) handleAddHeading(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := AddHeadingArguments{}
	issues := addHeadingArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	opts, res := paragraphFormatting(request)
	if res != nil {
		return res, nil
	}
	return e.update(normalizeID(args.DocID), "adding heading", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		p, err := doc.AddHeading(args.Text, args.Level)
		if err != nil {
			return nil, err
		}
		opts.Apply(p.Format())
		return mcp.NewToolResultText("Heading added successfully."), nil
	})
}

func AddGetParagraphsTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("get_paragraphs",
		mcp.WithDescription("List every body paragraph with its index, style and text"),
		withDocID(),
	), env.handleGetParagraphs)
}

func (e *Env) handleGetParagraphs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := parseDocID(request)
	if res != nil {
		return res, nil
	}
	return e.view(id, "getting paragraphs", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		ps := doc.Paragraphs()
		if len(ps) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("Document '%s' has no paragraphs.", docName(id))), nil
		}
		lines := make([]string, len(ps))
		for i, p := range ps {
			lines[i] = fmt.Sprintf("Paragraph %d [%s]: %s", i, p.StyleName(), p.Text())
		}
		return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
	})
}

type SetParagraphTextArguments struct {
	DocID          string `zog:"doc_id"`
	ParagraphIndex int    `zog:"paragraph_index"`
	Text           string `zog:"text"`
}

var setParagraphTextArgumentsSchema = z.Struct(z.Shape{
	"docID":          z.String().Test(DocIDTest()).Required(),
	"paragraphIndex": z.Int().GTE(0),
	"text":           z.String(),
})

func AddSetParagraphTextTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("set_paragraph_text",
		mcp.WithDescription("Replace the text of a paragraph, keeping its style and paragraph formatting"),
		withDocID(),
		withParagraphIndex(),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("New paragraph text"),
		),
	), env.handleSetParagraphText)
}

func (e *Env) handleSetParagraphText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := SetParagraphTextArguments{}
	issues := setParagraphTextArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	return e.update(normalizeID(args.DocID), "setting paragraph text", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		p, ok := paragraphAt(doc, args.ParagraphIndex)
		if !ok {
			return mcp.NewToolResultError("Error: Paragraph index out of range."), nil
		}
		p.SetText(args.Text)
		return mcp.NewToolResultText(fmt.Sprintf("Paragraph %d text updated successfully.", args.ParagraphIndex)), nil
	})
}

type SetParagraphPropertiesArguments struct {
	DocID          string `zog:"doc_id"`
	ParagraphIndex int    `zog:"paragraph_index"`
}

var setParagraphPropertiesArgumentsSchema = z.Struct(z.Shape{
	"docID":          z.String().Test(DocIDTest()).Required(),
	"paragraphIndex": z.Int().GTE(0),
})

func AddSetParagraphPropertiesTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("set_paragraph_properties",
		mcp.WithDescription("Change the formatting of a paragraph. Only the given options change."),
		withDocID(),
		withParagraphIndex(),
		imcp.WithObject("formatting",
			mcp.Required(),
			mcp.Description(paragraphFormattingHelp),
		),
	), env.handleSetParagraphProperties)
}

func (e *Env) handleSetParagraphProperties(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := SetParagraphPropertiesArguments{}
	issues := setParagraphPropertiesArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	opts, res := paragraphFormatting(request)
	if res != nil {
		return res, nil
	}
	return e.update(normalizeID(args.DocID), "setting paragraph properties", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		p, ok := paragraphAt(doc, args.ParagraphIndex)
		if !ok {
			return mcp.NewToolResultError("Error: Paragraph index out of range."), nil
		}
		opts.Apply(p.Format())
		return mcp.NewToolResultText(fmt.Sprintf("Paragraph %d properties set successfully.", args.ParagraphIndex)), nil
	})
}

type SetTextPropertiesArguments struct {
	DocID          string `zog:"doc_id"`
	ParagraphIndex int    `zog:"paragraph_index"`
	RunIndex       int    `zog:"run_index"`
}

var setTextPropertiesArgumentsSchema = z.Struct(z.Shape{
	"docID":          z.String().Test(DocIDTest()).Required(),
	"paragraphIndex": z.Int().GTE(0),
	"runIndex":       z.Int(),
})

func AddSetTextPropertiesTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("set_text_properties",
		mcp.WithDescription("Change the character formatting of one run in a paragraph. Only the given options change."),
		withDocID(),
		withParagraphIndex(),
		mcp.WithNumber("run_index",
			mcp.Required(),
			mcp.Description("0-based run index within the paragraph"),
		),
		imcp.WithObject("formatting",
			mcp.Required(),
			mcp.Description(runFormattingHelp),
		),
	), env.handleSetTextProperties)
}

func (e *Env) handleSetTextProperties(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := SetTextPropertiesArguments{}
	issues := setTextPropertiesArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	opts, res := runFormatting(request)
	if res != nil {
		return res, nil
	}
	return e.update(normalizeID(args.DocID), "setting text properties", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		p, ok := paragraphAt(doc, args.ParagraphIndex)
		if !ok {
			return mcp.NewToolResultError("Error: Paragraph index out of range."), nil
		}
		runs := p.Runs()
		if args.RunIndex < 0 || args.RunIndex >= len(runs) {
			return mcp.NewToolResultError(fmt.Sprintf("Error: Run index %d is out of range. Paragraph has %d runs.", args.RunIndex, len(runs))), nil
		}
		opts.Apply(runs[args.RunIndex].Font())
		return mcp.NewToolResultText(fmt.Sprintf("Text properties set for run %d in paragraph %d.", args.RunIndex, args.ParagraphIndex)), nil
	})
}
