package tools

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
	"github.com/wxyzh/docx-mcp-server/internal/format"
	imcp "github.com/wxyzh/docx-mcp-server/internal/mcp"
	"github.com/wxyzh/docx-mcp-server/internal/style"
)

var styleTypeTitles = map[docx.StyleType]string{
	docx.StyleParagraph: "Paragraph",
	docx.StyleCharacter: "Character",
	docx.StyleTable:     "Table",
	docx.StyleNumbering: "List",
}

func styleTypeTitle(t docx.StyleType) string {
	if s, ok := styleTypeTitles[t]; ok {
		return s
	}
	return "Unknown"
}

func invalidStyleType(t string) *mcp.CallToolResult {
	return imcp.NewToolResultKind(imcp.InvalidArgument,
		fmt.Sprintf("Error: Invalid style type '%s'. Valid values are: %s", t, strings.Join(style.Kinds, ", ")))
}

func withStyleName() mcp.ToolOption {
	return mcp.WithString("style_name",
		mcp.Required(),
		mcp.Description("Style name as shown in Word, e.g. \"Heading 1\""),
	)
}

func withStyleType(desc string) mcp.ToolOption {
	return mcp.WithString("style_type",
		mcp.Description(desc),
		mcp.Enum(style.Kinds...),
	)
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

type EnsureStyleExistsArguments struct {
	DocID     string `zog:"doc_id"`
	StyleName string `zog:"style_name"`
	StyleType string `zog:"style_type"`
}

var ensureStyleExistsArgumentsSchema = z.Struct(z.Shape{
	"docID":     z.String().Test(DocIDTest()).Required(),
	"styleName": z.String().Trim().Required(),
	"styleType": z.String().Trim().Default("paragraph"),
})

func AddEnsureStyleExistsTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("ensure_style_exists",
		mcp.WithDescription("Make sure a built-in Word style is defined in a document so it can be applied"),
		withDocID(),
		withStyleName(),
		withStyleType("Style type (default paragraph)"),
	), env.handleEnsureStyleExists)
}

func (e *Env) handleEnsureStyleExists(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := EnsureStyleExistsArguments{}
	issues := ensureStyleExistsArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	kind, err := style.ParseKind(args.StyleType)
	if err != nil {
		return invalidStyleType(args.StyleType), nil
	}
	return e.update(normalizeID(args.DocID), "ensuring style exists", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		outcome, err := style.Ensure(doc, args.StyleName, kind)
		switch {
		case errors.Is(err, docx.ErrStyleNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("Error: Built-in style '%s' not found in Word. Check the style name.", args.StyleName)), nil
		case err != nil:
			return nil, err
		case outcome == style.Existing:
			return nil, unchanged{mcp.NewToolResultText(fmt.Sprintf("Style '%s' already exists in document.", args.StyleName))}
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s style '%s' successfully defined in document.", styleTypeTitle(kind), args.StyleName)), nil
	})
}

type CreateCustomStyleArguments struct {
	DocID     string `zog:"doc_id"`
	StyleName string `zog:"style_name"`
	StyleType string `zog:"style_type"`
	BaseStyle string `zog:"base_style"`
}

var createCustomStyleArgumentsSchema = z.Struct(z.Shape{
	"docID":     z.String().Test(DocIDTest()).Required(),
	"styleName": z.String().Trim().Required(),
	"styleType": z.String().Trim().Default("paragraph"),
	"baseStyle": z.String().Trim(),
})

func AddCreateCustomStyleTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("create_custom_style",
		mcp.WithDescription("Create a new named style, optionally based on an existing or built-in style. Use modify_style to give it formatting."),
		withDocID(),
		mcp.WithString("style_name",
			mcp.Required(),
			mcp.Description("Name of the new style"),
		),
		withStyleType("Style type (default paragraph)"),
		mcp.WithString("base_style",
			mcp.Description("Style the new one inherits from"),
		),
	), env.handleCreateCustomStyle)
}

func (e *Env) handleCreateCustomStyle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := CreateCustomStyleArguments{}
	issues := createCustomStyleArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	kind, err := style.ParseKind(args.StyleType)
	if err != nil {
		return invalidStyleType(args.StyleType), nil
	}
	return e.update(normalizeID(args.DocID), "creating custom style", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		styles, err := doc.Styles()
		if err != nil {
			return nil, err
		}
		exists := mcp.NewToolResultError(fmt.Sprintf("Error: Style '%s' already exists in document.", args.StyleName))
		if styles.ByName(args.StyleName) != nil {
			return exists, nil
		}
		var base *docx.Style
		if args.BaseStyle != "" {
			if _, err := style.Ensure(doc, args.BaseStyle, kind); err != nil {
				if errors.Is(err, docx.ErrStyleNotFound) {
					return mcp.NewToolResultError(fmt.Sprintf("Error: Base style '%s' does not exist and could not be defined.", args.BaseStyle)), nil
				}
				return nil, err
			}
			base = styles.Find(args.BaseStyle, kind)
		}
		st, err := styles.Add(args.StyleName, kind)
		if errors.Is(err, docx.ErrStyleExists) {
			return exists, nil
		} else if err != nil {
			return nil, err
		}
		if base != nil {
			st.SetBaseStyle(base)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Custom %s style '%s' created successfully.", kind, args.StyleName)), nil
	})
}

type ModifyStyleArguments struct {
	DocID     string `zog:"doc_id"`
	StyleName string `zog:"style_name"`
}

var modifyStyleArgumentsSchema = z.Struct(z.Shape{
	"docID":     z.String().Test(DocIDTest()).Required(),
	"styleName": z.String().Trim().Required(),
})

// styleChanges is a parsed modify_style properties object.
type styleChanges struct {
	font       *format.RunOptions
	paragraph  *format.ParagraphOptions
	quickStyle *bool
	hidden     *bool
	priority   *int
}

func parseStyleChanges(props map[string]any) (styleChanges, error) {
	var c styleChanges
	if m, ok := props["font"]; ok && m != nil {
		fm, ok := m.(map[string]any)
		if !ok {
			return c, &format.OptionError{Key: "font", Value: m, Reason: "must be an object"}
		}
		opts, err := format.ParseRun(fm)
		if err != nil {
			return c, err
		}
		c.font = &opts
	}
	if m, ok := props["paragraph"]; ok && m != nil {
		pm, ok := m.(map[string]any)
		if !ok {
			return c, &format.OptionError{Key: "paragraph", Value: m, Reason: "must be an object"}
		}
		opts, err := format.ParseParagraph(pm)
		if err != nil {
			return c, err
		}
		c.paragraph = &opts
	}
	for key, dst := range map[string]**bool{"quick_style": &c.quickStyle, "hidden": &c.hidden} {
		v, ok := props[key]
		if !ok || v == nil {
			continue
		}
		b, err := cast.ToBoolE(v)
		if err != nil {
			return c, &format.OptionError{Key: key, Value: v, Reason: "must be a boolean"}
		}
		*dst = &b
	}
	if v, ok := props["priority"]; ok && v != nil {
		n, err := cast.ToIntE(v)
		if err != nil || n < 0 {
			return c, &format.OptionError{Key: "priority", Value: v, Reason: "must be a non-negative integer"}
		}
		c.priority = &n
	}
	return c, nil
}

func (c styleChanges) apply(st *docx.Style) {
	if c.font != nil {
		c.font.Apply(st.Font())
	}
	// character styles carry no paragraph properties
	if c.paragraph != nil && st.Type() != docx.StyleCharacter {
		c.paragraph.Apply(st.ParagraphFormat())
	}
	if c.quickStyle != nil {
		st.SetQuickStyle(*c.quickStyle)
	}
	if c.hidden != nil {
		st.SetHidden(*c.hidden)
	}
	if c.priority != nil {
		st.SetPriority(*c.priority)
	}
}

func AddModifyStyleTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("modify_style",
		mcp.WithDescription("Change the formatting and behavior of a style defined in a document"),
		withDocID(),
		withStyleName(),
		imcp.WithObject("properties",
			mcp.Required(),
			mcp.Description("font (name, size, bold, italic, underline, color), paragraph (same options as set_paragraph_properties), quick_style, hidden, priority"),
		),
	), env.handleModifyStyle)
}

func (e *Env) handleModifyStyle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := ModifyStyleArguments{}
	issues := modifyStyleArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	props, res := objectArg(request, "properties")
	if res != nil {
		return res, nil
	}
	changes, err := parseStyleChanges(props)
	if err != nil {
		return imcp.NewToolResultInvalidArgumentError(err.Error()), nil
	}
	return e.update(normalizeID(args.DocID), "modifying style", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		styles, err := doc.Styles()
		if err != nil {
			return nil, err
		}
		st := styles.ByName(args.StyleName)
		if st == nil {
			return imcp.NewToolResultNotFoundError(fmt.Sprintf("Error: Style '%s' not found in document.", args.StyleName)), nil
		}
		changes.apply(st)
		return mcp.NewToolResultText(fmt.Sprintf("Style '%s' modified successfully.", args.StyleName)), nil
	})
}

type GetStylesDetailArguments struct {
	DocID     string `zog:"doc_id"`
	StyleType string `zog:"style_type"`
}

var getStylesDetailArgumentsSchema = z.Struct(z.Shape{
	"docID":     z.String().Test(DocIDTest()).Required(),
	"styleType": z.String().Trim(),
})

func AddGetStylesDetailTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("get_styles_detail",
		mcp.WithDescription("Describe the styles defined in a document: type, base style, behavior and direct formatting"),
		withDocID(),
		withStyleType("Only list styles of this type"),
	), env.handleGetStylesDetail)
}

func (e *Env) handleGetStylesDetail(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := GetStylesDetailArguments{}
	issues := getStylesDetailArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	var filter docx.StyleType
	if args.StyleType != "" {
		kind, err := style.ParseKind(args.StyleType)
		if err != nil {
			return invalidStyleType(args.StyleType), nil
		}
		filter = kind
	}
	return e.view(normalizeID(args.DocID), "getting styles detail", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		styles, err := doc.Styles()
		if err != nil {
			return nil, err
		}
		var details []string
		for _, st := range styles.All() {
			if filter != 0 && st.Type() != filter {
				continue
			}
			details = append(details, describeStyle(st))
		}
		if len(details) == 0 {
			suffix := ""
			if args.StyleType != "" {
				suffix = " with type " + args.StyleType
			}
			return mcp.NewToolResultText(fmt.Sprintf("No styles found in document%s.", suffix)), nil
		}
		return mcp.NewToolResultText(strings.Join(details, "\n\n")), nil
	})
}

func describeStyle(st *docx.Style) string {
	base := "None"
	if b := st.BaseStyle(); b != nil {
		base = b.Name()
	}
	priority := "None"
	if n, ok := st.Priority(); ok {
		priority = strconv.Itoa(n)
	}
	lines := []string{
		"Style: " + st.Name(),
		"  Type: " + styleTypeTitle(st.Type()),
		"  Base Style: " + base,
		"  Behavior:",
		"    Quick Style: " + pyBool(st.QuickStyle()),
		"    Priority: " + priority,
		"    Hidden: " + pyBool(st.Hidden()),
	}
	formatting := map[string]any{}
	if m := fontMap(st.Font()); len(m) > 0 {
		formatting["font"] = m
	}
	if st.Type() != docx.StyleCharacter {
		if m := paragraphMap(st.ParagraphFormat()); len(m) > 0 {
			formatting["paragraph"] = m
		}
	}
	if y := convertStyleMapToYAMLFlow(formatting); y != "" {
		lines = append(lines, "  Formatting: "+y)
	}
	return strings.Join(lines, "\n")
}

type CheckStyleUsageArguments struct {
	DocID     string `zog:"doc_id"`
	StyleName string `zog:"style_name"`
}

var checkStyleUsageArgumentsSchema = z.Struct(z.Shape{
	"docID":     z.String().Test(DocIDTest()).Required(),
	"styleName": z.String().Trim().Required(),
})

func AddCheckStyleUsageTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("check_style_usage",
		mcp.WithDescription("Find the paragraphs, runs or tables of the document body that use a style"),
		withDocID(),
		withStyleName(),
	), env.handleCheckStyleUsage)
}

func (e *Env) handleCheckStyleUsage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := CheckStyleUsageArguments{}
	issues := checkStyleUsageArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	return e.view(normalizeID(args.DocID), "checking style usage", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		styles, err := doc.Styles()
		if err != nil {
			return nil, err
		}
		st := styles.ByName(args.StyleName)
		if st == nil {
			return imcp.NewToolResultNotFoundError(fmt.Sprintf("Style '%s' not found in document.", args.StyleName)), nil
		}
		name := st.Name()
		var usage []string
		switch st.Type() {
		case docx.StyleParagraph:
			for i, p := range doc.Paragraphs() {
				if p.StyleName() == name {
					usage = append(usage, fmt.Sprintf("Paragraph %d: \"%s\"", i, truncate(p.Text(), 30)))
				}
			}
		case docx.StyleCharacter:
			for i, p := range doc.Paragraphs() {
				for j, r := range p.Runs() {
					if r.StyleName() == name {
						usage = append(usage, fmt.Sprintf("Paragraph %d, Run %d: \"%s\"", i, j, truncate(r.Text(), 30)))
					}
				}
			}
		case docx.StyleTable:
			for i, t := range doc.Tables() {
				if t.StyleName() == name {
					rows := t.Rows()
					cols := 0
					if len(rows) > 0 {
						cols = len(rows[0].Cells())
					}
					usage = append(usage, fmt.Sprintf("Table %d: %dx%d table", i, len(rows), cols))
				}
			}
		}
		kind := styleTypeTitle(st.Type())
		if kind == "List" {
			kind = "Unknown"
		}
		if len(usage) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("%s style '%s' exists in the document but is not currently used.", kind, args.StyleName)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s style '%s' is used in the following locations:\n%s", kind, args.StyleName, strings.Join(usage, "\n"))), nil
	})
}

func AddListStylesTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("list_styles",
		mcp.WithDescription("List the paragraph, character and table styles defined in a document"),
		withDocID(),
	), env.handleListStyles)
}

func (e *Env) handleListStyles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := parseDocID(request)
	if res != nil {
		return res, nil
	}
	return e.view(id, "listing styles", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		styles, err := doc.Styles()
		if err != nil {
			return nil, err
		}
		names := map[docx.StyleType][]string{}
		for _, st := range styles.All() {
			names[st.Type()] = append(names[st.Type()], st.Name())
		}
		var out []string
		for i, t := range []docx.StyleType{docx.StyleParagraph, docx.StyleCharacter, docx.StyleTable} {
			if len(names[t]) == 0 {
				continue
			}
			prefix := ""
			if i > 0 {
				prefix = "\n"
			}
			out = append(out, fmt.Sprintf("%s%s styles:\n%s", prefix, styleTypeTitle(t), strings.Join(names[t], ", ")))
		}
		return mcp.NewToolResultText(strings.Join(out, "\n")), nil
	})
}
