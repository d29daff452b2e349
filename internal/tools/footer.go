package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
	imcp "github.com/wxyzh/docx-mcp-server/internal/mcp"
	"github.com/wxyzh/docx-mcp-server/internal/style"
)

const defaultPageNumberFormat = "Page {0} of {1}"

func AddFooterTools(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("set_footer_page_numbers",
		mcp.WithDescription("Replace a section's footer with a centered page number line"),
		withDocID(),
		withSectionIndex(),
		mcp.WithString("format_string",
			mcp.Description("Footer text; {0} becomes the current page number and {1} the total page count"),
			mcp.DefaultString(defaultPageNumberFormat),
		),
	), env.handleSetFooterPageNumbers)

	server.AddTool(mcp.NewTool("set_different_first_page_footer",
		mcp.WithDescription("Turn the separate first-page header and footer of a section on or off"),
		withDocID(),
		withSectionIndex(),
		mcp.WithBoolean("enable",
			mcp.Description("Whether the first page uses its own header and footer"),
			mcp.DefaultBool(true),
		),
	), env.handleSetDifferentFirstPageFooter)

	server.AddTool(mcp.NewTool("add_footer_image",
		mcp.WithDescription("Add an image to the first paragraph of a section's footer. A linked footer is replaced by the section's own, empty one first."),
		withDocID(),
		withSectionIndex(),
		mcp.WithString("base64_image_data",
			mcp.Required(),
			mcp.Description("Base64 encoded image bytes. A data: URL prefix is accepted."),
		),
		mcp.WithString("image_name",
			mcp.Description("Image name, used as the picture's description"),
			mcp.DefaultString("footer image"),
		),
		mcp.WithNumber("width_inches",
			mcp.Description("Display width in inches; height keeps the aspect ratio. Omit to keep the image's own size."),
		),
	), env.handleAddFooterImage)
}

type SetFooterPageNumbersArguments struct {
	DocID        string `zog:"doc_id"`
	SectionIndex int    `zog:"section_index"`
	FormatString string `zog:"format_string"`
}

var setFooterPageNumbersArgumentsSchema = z.Struct(z.Shape{
	"docID":        z.String().Test(DocIDTest()).Required(),
	"sectionIndex": z.Int().GTE(0),
	"formatString": z.String().Default(defaultPageNumberFormat),
})

// pageNumberPart is literal text, or a field when instr is set.
type pageNumberPart struct {
	text  string
	instr string
}

// parsePageNumberFormat splits format around the {0} and {1} placeholders.
func parsePageNumberFormat(format string) ([]pageNumberPart, bool) {
	var parts []pageNumberPart
	hasField := false
	for format != "" {
		i0, i1 := strings.Index(format, "{0}"), strings.Index(format, "{1}")
		i, instr := i0, "PAGE"
		if i < 0 || (i1 >= 0 && i1 < i) {
			i, instr = i1, "NUMPAGES"
		}
		if i < 0 {
			parts = append(parts, pageNumberPart{text: format})
			break
		}
		if i > 0 {
			parts = append(parts, pageNumberPart{text: format[:i]})
		}
		parts = append(parts, pageNumberPart{instr: instr})
		hasField = true
		format = format[i+3:]
	}
	return parts, hasField
}

func (e *Env) handleSetFooterPageNumbers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := SetFooterPageNumbersArguments{}
	issues := setFooterPageNumbersArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	parts, ok := parsePageNumberFormat(args.FormatString)
	if !ok {
		return imcp.NewToolResultInvalidArgumentError(
			fmt.Sprintf("format_string must contain {0} or {1}, got %q", args.FormatString)), nil
	}
	return e.update(normalizeID(args.DocID), "adding page numbers", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		s, res := sectionAt(doc, args.SectionIndex)
		if res != nil {
			return res, nil
		}
		_, p, err := ownStory(footerStory, s)
		if err != nil {
			return nil, err
		}
		if err := style.Apply(doc, p, footerStory.title); err != nil {
			e.log().WithError(err).Debug("Footer style unavailable")
		}
		p.Format().SetAlignment(docx.AlignCenter)
		for _, part := range parts {
			if part.instr != "" {
				p.AddField(part.instr, "1")
			} else {
				p.AddRun(part.text)
			}
		}
		return mcp.NewToolResultText(fmt.Sprintf("Page numbers added to footer in section %d.", args.SectionIndex)), nil
	})
}

type SetDifferentFirstPageFooterArguments struct {
	DocID        string `zog:"doc_id"`
	SectionIndex int    `zog:"section_index"`
	Enable       bool   `zog:"enable"`
}

var setDifferentFirstPageFooterArgumentsSchema = z.Struct(z.Shape{
	"docID":        z.String().Test(DocIDTest()).Required(),
	"sectionIndex": z.Int().GTE(0),
	"enable":       z.Bool().Default(true),
})

func (e *Env) handleSetDifferentFirstPageFooter(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := SetDifferentFirstPageFooterArguments{}
	issues := setDifferentFirstPageFooterArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	state := "disabled"
	if args.Enable {
		state = "enabled"
	}
	return e.update(normalizeID(args.DocID), "setting different first page footer", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		s, res := sectionAt(doc, args.SectionIndex)
		if res != nil {
			return res, nil
		}
		s.SetDifferentFirstPage(args.Enable)
		return mcp.NewToolResultText(fmt.Sprintf("Different first page footer %s in section %d.", state, args.SectionIndex)), nil
	})
}

type AddFooterImageArguments struct {
	DocID           string `zog:"doc_id"`
	SectionIndex    int    `zog:"section_index"`
	Base64ImageData string `zog:"base64_image_data"`
	ImageData       string `zog:"image_data"`
	ImageName       string `zog:"image_name"`
}

var addFooterImageArgumentsSchema = z.Struct(z.Shape{
	"docID":           z.String().Test(DocIDTest()).Required(),
	"sectionIndex":    z.Int().GTE(0),
	"base64ImageData": z.String().Trim(),
	"imageData":       z.String().Trim(),
	"imageName":       z.String().Default("footer image"),
})

func (e *Env) handleAddFooterImage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := AddFooterImageArguments{}
	issues := addFooterImageArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	data, res := imagePayload(args.Base64ImageData, args.ImageData)
	if res != nil {
		return res, nil
	}
	// zero keeps the native size
	width := request.GetFloat("width_inches", 0)
	if !inchesInRange(width) {
		return imcp.NewToolResultInvalidArgumentError(fmt.Sprintf("width_inches must be between 0 and %d", maxInches)), nil
	}

	id := normalizeID(args.DocID)
	return e.update(id, "adding image to footer", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		s, res := sectionAt(doc, args.SectionIndex)
		if res != nil {
			return res, nil
		}
		ftr := s.Footer()
		if ftr.IsLinked() {
			if err := ftr.SetLinked(false); err != nil {
				return nil, err
			}
		}
		c, err := ftr.Content()
		if err != nil {
			return nil, err
		}
		var p *docx.Paragraph
		if ps := c.Paragraphs(); len(ps) > 0 {
			p = ps[0]
		} else {
			p = c.AddParagraph("")
		}
		info, err := p.AddPicture(data, args.ImageName, docx.Inches(width))
		if errors.Is(err, docx.ErrUnsupportedImage) {
			return mcp.NewToolResultError(fmt.Sprintf("Error adding image to footer: %v", err)), nil
		}
		if err != nil {
			return nil, err
		}
		e.log().WithFields(logrus.Fields{
			"doc_id":  id,
			"section": args.SectionIndex,
			"part":    info.Part,
		}).Debug("footer image embedded")
		return mcp.NewToolResultText(fmt.Sprintf("Image added to footer in section %d.", args.SectionIndex)), nil
	})
}
