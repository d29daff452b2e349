package tools

import (
	"context"
	"fmt"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
	imcp "github.com/wxyzh/docx-mcp-server/internal/mcp"
)

const validStartTypes = "NEW_PAGE, EVEN_PAGE, ODD_PAGE, CONTINUOUS"

func parseStartType(name string) (docx.StartType, *mcp.CallToolResult) {
	t, ok := docx.ParseStartType(name)
	if !ok || t == docx.StartNewColumn {
		return t, imcp.NewToolResultKind(imcp.InvalidArgument,
			fmt.Sprintf("Error: Invalid section start type '%s'. Valid values are: %s", name, validStartTypes))
	}
	return t, nil
}

func withSectionIndex() mcp.ToolOption {
	return mcp.WithNumber("section_index",
		mcp.Required(),
		mcp.Description("Index of the section (0-based)"),
		mcp.Min(0),
	)
}

type AddSectionArguments struct {
	DocID     string `zog:"doc_id"`
	StartType string `zog:"start_type"`
}

var addSectionArgumentsSchema = z.Struct(z.Shape{
	"docID":     z.String().Test(DocIDTest()).Required(),
	"startType": z.String().Trim().Default("NEW_PAGE"),
})

func AddSectionTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("add_section",
		mcp.WithDescription("Start a new section at the end of a document"),
		withDocID(),
		mcp.WithString("start_type",
			mcp.Description("Kind of section break"),
			mcp.Enum("NEW_PAGE", "EVEN_PAGE", "ODD_PAGE", "CONTINUOUS"),
			mcp.DefaultString("NEW_PAGE"),
		),
	), env.handleAddSection)
}

func (e *Env) handleAddSection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := AddSectionArguments{}
	issues := addSectionArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	start, res := parseStartType(args.StartType)
	if res != nil {
		return res, nil
	}
	return e.update(normalizeID(args.DocID), "adding section", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		doc.AddSection(start)
		return mcp.NewToolResultText(fmt.Sprintf("Section with start type '%s' added successfully.", args.StartType)), nil
	})
}

func AddListSectionsTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("list_sections",
		mcp.WithDescription("List the sections of a document with their page setup"),
		withDocID(),
	), env.handleListSections)
}

func (e *Env) handleListSections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := parseDocID(request)
	if res != nil {
		return res, nil
	}
	return e.view(id, "listing sections", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		sections := doc.Sections()
		if len(sections) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No sections found in document '%s'.", docName(id))), nil
		}
		infos := make([]string, 0, len(sections))
		for i, s := range sections {
			infos = append(infos, describeSection(i, s))
		}
		return mcp.NewToolResultText(strings.Join(infos, "\n\n")), nil
	})
}

func describeSection(i int, s *docx.Section) string {
	in := func(l docx.Length) string {
		return fmt.Sprintf("%.2f\"", l.Inches())
	}
	return strings.Join([]string{
		fmt.Sprintf("Section %d:", i),
		"  Start Type: " + s.StartType().String(),
		"  Orientation: " + s.Orientation().String(),
		fmt.Sprintf("  Page Size: %s x %s", in(s.PageWidth()), in(s.PageHeight())),
		"  Margins (inches):",
		"    Left: " + in(s.LeftMargin()),
		"    Right: " + in(s.RightMargin()),
		"    Top: " + in(s.TopMargin()),
		"    Bottom: " + in(s.BottomMargin()),
		"    Gutter: " + in(s.Gutter()),
		"    Header Distance: " + in(s.HeaderDistance()),
		"    Footer Distance: " + in(s.FooterDistance()),
	}, "\n")
}

// sectionChanges is a parsed set_section_properties properties object.
type sectionChanges struct {
	start       *docx.StartType
	orientation *docx.Orientation
	lengths     []sectionLength
	// explicitSize suppresses the width/height swap of an orientation change
	explicitSize bool
}

type sectionLength struct {
	set func(*docx.Section, docx.Length)
	l   docx.Length
}

// Keys are applied in this order; page size comes before the margins.
var sectionLengthKeys = []struct {
	key string
	set func(*docx.Section, docx.Length)
}{
	{"page_width", (*docx.Section).SetPageWidth},
	{"page_height", (*docx.Section).SetPageHeight},
	{"left_margin", (*docx.Section).SetLeftMargin},
	{"right_margin", (*docx.Section).SetRightMargin},
	{"top_margin", (*docx.Section).SetTopMargin},
	{"bottom_margin", (*docx.Section).SetBottomMargin},
	{"gutter", (*docx.Section).SetGutter},
	{"header_distance", (*docx.Section).SetHeaderDistance},
	{"footer_distance", (*docx.Section).SetFooterDistance},
}

func parseSectionChanges(props map[string]any) (sectionChanges, *mcp.CallToolResult) {
	var c sectionChanges
	if v, ok := props["start_type"]; ok && v != nil {
		name := strings.ToUpper(cast.ToString(v))
		t, res := parseStartType(name)
		if res != nil {
			return c, res
		}
		c.start = &t
	}
	if v, ok := props["orientation"]; ok && v != nil {
		var o docx.Orientation
		switch name := strings.ToUpper(cast.ToString(v)); name {
		case "PORTRAIT":
			o = docx.Portrait
		case "LANDSCAPE":
			o = docx.Landscape
		default:
			return c, imcp.NewToolResultKind(imcp.InvalidArgument,
				fmt.Sprintf("Error: Invalid orientation '%s'. Valid values are: PORTRAIT, LANDSCAPE", name))
		}
		c.orientation = &o
	}
	for _, k := range sectionLengthKeys {
		v, ok := props[k.key]
		if !ok || v == nil {
			continue
		}
		f, err := cast.ToFloat64E(v)
		if _, isBool := v.(bool); err != nil || isBool || !inchesInRange(f) {
			return c, imcp.NewToolResultInvalidArgumentError(fmt.Sprintf("%s must be a number of inches between 0 and %d, got %v", k.key, maxInches, v))
		}
		c.lengths = append(c.lengths, sectionLength{k.set, docx.Inches(f)})
		if k.key == "page_width" || k.key == "page_height" {
			c.explicitSize = true
		}
	}
	return c, nil
}

func (c sectionChanges) apply(s *docx.Section) {
	if c.start != nil {
		s.SetStartType(*c.start)
	}
	if c.orientation != nil {
		if s.Orientation() != *c.orientation && !c.explicitSize {
			w, h := s.PageWidth(), s.PageHeight()
			s.SetPageWidth(h)
			s.SetPageHeight(w)
		}
		s.SetOrientation(*c.orientation)
	}
	for _, l := range c.lengths {
		l.set(s, l.l)
	}
}

type SectionArguments struct {
	DocID        string `zog:"doc_id"`
	SectionIndex int    `zog:"section_index"`
}

var sectionArgumentsSchema = z.Struct(z.Shape{
	"docID":        z.String().Test(DocIDTest()).Required(),
	"sectionIndex": z.Int().GTE(0),
})

func AddSetSectionPropertiesTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("set_section_properties",
		mcp.WithDescription("Change the page setup of a section"),
		withDocID(),
		withSectionIndex(),
		imcp.WithObject("properties",
			mcp.Required(),
			mcp.Description("start_type, orientation (PORTRAIT or LANDSCAPE), page_width, page_height, left_margin, right_margin, top_margin, bottom_margin, gutter, header_distance, footer_distance. Lengths are in inches. Changing orientation swaps the page size unless page_width or page_height is also given."),
		),
	), env.handleSetSectionProperties)
}

func (e *Env) handleSetSectionProperties(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := SectionArguments{}
	issues := sectionArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	props, res := objectArg(request, "properties")
	if res != nil {
		return res, nil
	}
	return e.setSectionProperties(normalizeID(args.DocID), args.SectionIndex, props)
}

func (e *Env) setSectionProperties(id string, index int, props map[string]any) (*mcp.CallToolResult, error) {
	changes, res := parseSectionChanges(props)
	if res != nil {
		return res, nil
	}
	return e.update(id, "setting section properties", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		s, res := sectionAt(doc, index)
		if res != nil {
			return res, nil
		}
		changes.apply(s)
		return mcp.NewToolResultText(fmt.Sprintf("Properties for section %d updated successfully.", index)), nil
	})
}

type ChangePageOrientationArguments struct {
	DocID        string `zog:"doc_id"`
	SectionIndex int    `zog:"section_index"`
	Orientation  string `zog:"orientation"`
}

var changePageOrientationArgumentsSchema = z.Struct(z.Shape{
	"docID":        z.String().Test(DocIDTest()).Required(),
	"sectionIndex": z.Int().GTE(0),
	"orientation":  z.String().Trim().Required(),
})

func AddChangePageOrientationTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("change_page_orientation",
		mcp.WithDescription("Switch a section between portrait and landscape, swapping its page size"),
		withDocID(),
		withSectionIndex(),
		mcp.WithString("orientation",
			mcp.Required(),
			mcp.Enum("PORTRAIT", "LANDSCAPE"),
		),
	), env.handleChangePageOrientation)
}

func (e *Env) handleChangePageOrientation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := ChangePageOrientationArguments{}
	issues := changePageOrientationArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	return e.setSectionProperties(normalizeID(args.DocID), args.SectionIndex, map[string]any{"orientation": args.Orientation})
}

type CopySectionPropertiesArguments struct {
	DocID         string `zog:"doc_id"`
	SourceSection int    `zog:"source_section"`
	TargetSection int    `zog:"target_section"`
}

var copySectionPropertiesArgumentsSchema = z.Struct(z.Shape{
	"docID":         z.String().Test(DocIDTest()).Required(),
	"sourceSection": z.Int().GTE(0),
	"targetSection": z.Int().GTE(0),
})

func AddCopySectionPropertiesTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("copy_section_properties",
		mcp.WithDescription("Copy orientation, page size, margins and header/footer distances from one section to another"),
		withDocID(),
		mcp.WithNumber("source_section",
			mcp.Required(),
			mcp.Description("Index of the section to copy from (0-based)"),
			mcp.Min(0),
		),
		mcp.WithNumber("target_section",
			mcp.Required(),
			mcp.Description("Index of the section to copy to (0-based)"),
			mcp.Min(0),
		),
	), env.handleCopySectionProperties)
}

func (e *Env) handleCopySectionProperties(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := CopySectionPropertiesArguments{}
	issues := copySectionPropertiesArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	return e.update(normalizeID(args.DocID), "copying section properties", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		src, res := sectionAt(doc, args.SourceSection)
		if res != nil {
			return res, nil
		}
		dst, res := sectionAt(doc, args.TargetSection)
		if res != nil {
			return res, nil
		}
		dst.CopyPageSetup(src)
		return mcp.NewToolResultText(fmt.Sprintf("Section properties copied from section %d to section %d.", args.SourceSection, args.TargetSection)), nil
	})
}
