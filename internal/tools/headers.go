package tools

import (
	"context"
	"fmt"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wxyzh/docx-mcp-server/internal/blocks"
	"github.com/wxyzh/docx-mcp-server/internal/docx"
	imcp "github.com/wxyzh/docx-mcp-server/internal/mcp"
	"github.com/wxyzh/docx-mcp-server/internal/style"
)

// storyKind is either the header or the footer side of a section.
type storyKind struct {
	title string // Header or Footer, also the paragraph style name
	get   func(*docx.Section) *docx.HeaderFooter
}

var (
	headerStory = storyKind{"Header", (*docx.Section).Header}
	footerStory = storyKind{"Footer", (*docx.Section).Footer}
)

func (k storyKind) lower() string { return strings.ToLower(k.title) }

// AddHeaderFooterTools registers the header and footer tools.
func AddHeaderFooterTools(server *server.MCPServer, env *Env) {
	for _, k := range []storyKind{headerStory, footerStory} {
		server.AddTool(mcp.NewTool("add_"+k.lower(),
			mcp.WithDescription(fmt.Sprintf("Give a section its own %s, replacing any content it had. Its first paragraph gets text; content items follow.", k.lower())),
			withDocID(),
			withSectionIndex(),
			mcp.WithString("text",
				mcp.Description(fmt.Sprintf("Text of the first %s paragraph", k.lower())),
			),
			withContent(false),
		), env.handleAddStory(k))

		server.AddTool(mcp.NewTool("add_zoned_"+k.lower(),
			mcp.WithDescription(fmt.Sprintf("Give a section a %s with left, center and right aligned text", k.lower())),
			withDocID(),
			withSectionIndex(),
			mcp.WithString("left_text", mcp.DefaultString("")),
			mcp.WithString("center_text", mcp.DefaultString("")),
			mcp.WithString("right_text", mcp.DefaultString("")),
		), env.handleAddZonedStory(k))

		server.AddTool(mcp.NewTool("remove_"+k.lower(),
			mcp.WithDescription(fmt.Sprintf("Drop a section's own %s so it shows the previous section's again", k.lower())),
			withDocID(),
			withSectionIndex(),
		), env.handleRemoveStory(k))

		server.AddTool(mcp.NewTool(fmt.Sprintf("get_%s_text", k.lower()),
			mcp.WithDescription(fmt.Sprintf("Read the %s text shown in a section, following links to previous sections", k.lower())),
			withDocID(),
			withSectionIndex(),
		), env.handleGetStoryText(k))
	}
}

type AddStoryArguments struct {
	DocID        string `zog:"doc_id"`
	SectionIndex int    `zog:"section_index"`
	Text         string `zog:"text"`
}

var addStoryArgumentsSchema = z.Struct(z.Shape{
	"docID":        z.String().Test(DocIDTest()).Required(),
	"sectionIndex": z.Int().GTE(0),
	"text":         z.String(),
})

// ownStory unlinks the section's header or footer and clears it down to
// one empty paragraph, which is returned.
func ownStory(k storyKind, s *docx.Section) (*docx.BlockContainer, *docx.Paragraph, error) {
	hf := k.get(s)
	if err := hf.SetLinked(false); err != nil {
		return nil, nil, err
	}
	c, err := hf.Content()
	if err != nil {
		return nil, nil, err
	}
	for _, t := range c.Tables() {
		t.Remove()
	}
	ps := c.Paragraphs()
	if len(ps) == 0 {
		return c, c.AddParagraph(""), nil
	}
	for _, p := range ps[1:] {
		p.Remove()
	}
	ps[0].SetText("")
	return c, ps[0], nil
}

func (e *Env) handleAddStory(k storyKind) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := AddStoryArguments{}
		issues := addStoryArgumentsSchema.Parse(request.Params.Arguments, &args)
		if len(issues) != 0 {
			return imcp.NewToolResultZogIssueMap(issues), nil
		}
		content, res := contentArg(request)
		if res != nil {
			return res, nil
		}
		return e.update(normalizeID(args.DocID), "adding "+k.lower(), func(doc *docx.Document) (*mcp.CallToolResult, error) {
			s, res := sectionAt(doc, args.SectionIndex)
			if res != nil {
				return res, nil
			}
			c, first, err := ownStory(k, s)
			if err != nil {
				return nil, err
			}
			first.SetText(args.Text)
			err = blocks.Expand(doc, c, content, blocks.Options{DefaultParagraphStyle: k.title})
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(fmt.Sprintf("%s added/modified for section %d.", k.title, args.SectionIndex)), nil
		})
	}
}

type AddZonedStoryArguments struct {
	DocID        string `zog:"doc_id"`
	SectionIndex int    `zog:"section_index"`
	LeftText     string `zog:"left_text"`
	CenterText   string `zog:"center_text"`
	RightText    string `zog:"right_text"`
}

var addZonedStoryArgumentsSchema = z.Struct(z.Shape{
	"docID":        z.String().Test(DocIDTest()).Required(),
	"sectionIndex": z.Int().GTE(0),
	"leftText":     z.String(),
	"centerText":   z.String(),
	"rightText":    z.String(),
})

// zonedText separates the zones with tabs; an empty center zone still
// takes a tab when there is right text.
func zonedText(left, center, right string) string {
	switch {
	case center != "" && right != "":
		return left + "\t" + center + "\t" + right
	case center != "":
		return left + "\t" + center
	case right != "":
		return left + "\t\t" + right
	}
	return left
}

func (e *Env) handleAddZonedStory(k storyKind) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := AddZonedStoryArguments{}
		issues := addZonedStoryArgumentsSchema.Parse(request.Params.Arguments, &args)
		if len(issues) != 0 {
			return imcp.NewToolResultZogIssueMap(issues), nil
		}
		return e.update(normalizeID(args.DocID), "adding zoned "+k.lower(), func(doc *docx.Document) (*mcp.CallToolResult, error) {
			s, res := sectionAt(doc, args.SectionIndex)
			if res != nil {
				return res, nil
			}
			_, p, err := ownStory(k, s)
			if err != nil {
				return nil, err
			}
			p.SetText(zonedText(args.LeftText, args.CenterText, args.RightText))
			if err := style.Apply(doc, p, k.title); err != nil {
				e.log().WithError(err).Debugf("%s style unavailable", k.title)
			}
			// center and right stops over the section's text area
			width := s.PageWidth() - s.LeftMargin() - s.RightMargin()
			if width > 0 {
				p.Format().SetTabStop(width/2, "center")
				p.Format().SetTabStop(width, "right")
			}
			return mcp.NewToolResultText(fmt.Sprintf("Zoned %s added for section %d.", k.lower(), args.SectionIndex)), nil
		})
	}
}

func (e *Env) handleRemoveStory(k storyKind) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := SectionArguments{}
		issues := sectionArgumentsSchema.Parse(request.Params.Arguments, &args)
		if len(issues) != 0 {
			return imcp.NewToolResultZogIssueMap(issues), nil
		}
		return e.update(normalizeID(args.DocID), "removing "+k.lower(), func(doc *docx.Document) (*mcp.CallToolResult, error) {
			s, res := sectionAt(doc, args.SectionIndex)
			if res != nil {
				return res, nil
			}
			if err := k.get(s).SetLinked(true); err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(fmt.Sprintf("%s removed from section %d.", k.title, args.SectionIndex)), nil
		})
	}
}

func (e *Env) handleGetStoryText(k storyKind) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := SectionArguments{}
		issues := sectionArgumentsSchema.Parse(request.Params.Arguments, &args)
		if len(issues) != 0 {
			return imcp.NewToolResultZogIssueMap(issues), nil
		}
		return e.view(normalizeID(args.DocID), fmt.Sprintf("getting %s text", k.lower()), func(doc *docx.Document) (*mcp.CallToolResult, error) {
			if _, res := sectionAt(doc, args.SectionIndex); res != nil {
				return res, nil
			}
			sections := doc.Sections()
			if !k.get(sections[args.SectionIndex]).IsLinked() {
				text, err := storyText(k, sections[args.SectionIndex])
				if err != nil {
					return nil, err
				}
				return mcp.NewToolResultText(text), nil
			}
			for i := args.SectionIndex - 1; i >= 0; i-- {
				if k.get(sections[i]).IsLinked() {
					continue
				}
				text, err := storyText(k, sections[i])
				if err != nil {
					return nil, err
				}
				return mcp.NewToolResultText(fmt.Sprintf("%s is linked to section %d. Content: %s", k.title, i, text)), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("No %s defined for this section (linked to previous, but no previous %s found).", k.lower(), k.lower())), nil
		})
	}
}

func storyText(k storyKind, s *docx.Section) (string, error) {
	c, err := k.get(s).Content()
	if err != nil {
		return "", err
	}
	ps := c.Paragraphs()
	if len(ps) == 0 {
		return fmt.Sprintf("%s is defined but contains no text.", k.title), nil
	}
	lines := make([]string, len(ps))
	for i, p := range ps {
		lines[i] = p.Text()
	}
	return strings.Join(lines, "\n"), nil
}
