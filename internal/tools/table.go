package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wxyzh/docx-mcp-server/internal/blocks"
	"github.com/wxyzh/docx-mcp-server/internal/docx"
	"github.com/wxyzh/docx-mcp-server/internal/format"
	imcp "github.com/wxyzh/docx-mcp-server/internal/mcp"
	"github.com/wxyzh/docx-mcp-server/internal/style"
)

func withTableIndex() mcp.ToolOption {
	return mcp.WithNumber("table_index",
		mcp.Required(),
		mcp.Description("0-based table index in the document body"),
	)
}

type AddTableArguments struct {
	DocID string `zog:"doc_id"`
	Rows  int    `zog:"rows"`
	Cols  int    `zog:"cols"`
	Data  string `zog:"data"`
	Style string `zog:"style"`
}

var addTableArgumentsSchema = z.Struct(z.Shape{
	"docID": z.String().Test(DocIDTest()).Required(),
	"rows":  z.Int().GTE(1).LTE(blocks.MaxTableRows),
	"cols":  z.Int().GTE(1).LTE(blocks.MaxTableCols),
	"data":  z.String(),
	"style": z.String().Trim(),
})

func AddTableTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("add_table",
		mcp.WithDescription("Append a table to a document, optionally filled with data"),
		withDocID(),
		mcp.WithNumber("rows",
			mcp.Required(),
			mcp.Description("Number of rows"),
			mcp.Min(1),
			mcp.Max(blocks.MaxTableRows),
		),
		mcp.WithNumber("cols",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("Number of columns; rows*cols may not exceed %d", blocks.MaxTableCells)),
			mcp.Min(1),
			mcp.Max(blocks.MaxTableCols),
		),
		mcp.WithString("data",
			mcp.Description("Comma-separated cell values, row by row. Missing values are left empty."),
		),
		mcp.WithString("style",
			mcp.Description("Table style, e.g. \"Table Grid\" or \"Light Shading\""),
		),
	), env.handleAddTable)
}

func (e *Env) handleAddTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := AddTableArguments{}
	issues := addTableArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	cells, err := blocks.Cells(args.Data, args.Rows, args.Cols)
	switch {
	case errors.Is(err, blocks.ErrDimensionMismatch):
		n := len(strings.Split(args.Data, ","))
		return imcp.NewToolResultKind(imcp.InvalidArgument,
			fmt.Sprintf("Error: Number of data elements (%d) exceeds table dimensions (%dx%d).", n, args.Rows, args.Cols)), nil
	case err != nil:
		return imcp.NewToolResultInvalidArgumentError(err.Error()), nil
	}
	return e.update(normalizeID(args.DocID), "adding table", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		var warning string
		if args.Style != "" {
			if _, err := style.Ensure(doc, args.Style, docx.StyleTable); errors.Is(err, docx.ErrStyleNotFound) {
				warning = fmt.Sprintf("Warning: Table style '%s' not found. Table will be added with default style.", args.Style)
			} else if err != nil {
				return nil, err
			}
		}
		tbl := doc.AddTable(args.Rows, args.Cols)
		if args.Style != "" && warning == "" {
			if err := tbl.SetStyle(args.Style); err != nil {
				return nil, err
			}
		}
		if args.Data != "" {
			for i, text := range cells {
				cell, err := tbl.Cell(i/args.Cols, i%args.Cols)
				if err != nil {
					return nil, err
				}
				cell.SetText(text)
			}
		}
		if warning != "" {
			return imcp.NewToolResultKind(imcp.Degraded, warning), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Table with %d rows and %d columns added successfully.", args.Rows, args.Cols)), nil
	})
}

type MergeTableCellsArguments struct {
	DocID      string `zog:"doc_id"`
	TableIndex int    `zog:"table_index"`
	StartRow   int    `zog:"start_row"`
	StartCol   int    `zog:"start_col"`
	EndRow     int    `zog:"end_row"`
	EndCol     int    `zog:"end_col"`
}

var mergeTableCellsArgumentsSchema = z.Struct(z.Shape{
	"docID":      z.String().Test(DocIDTest()).Required(),
	"tableIndex": z.Int(),
	"startRow":   z.Int(),
	"startCol":   z.Int(),
	"endRow":     z.Int(),
	"endCol":     z.Int(),
})

func AddMergeTableCellsTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("merge_table_cells",
		mcp.WithDescription("Merge the rectangle of table cells between two corners into one cell. Text of the merged cells is kept in the result."),
		withDocID(),
		withTableIndex(),
		mcp.WithNumber("start_row", mcp.Required(), mcp.Description("0-based row of the first corner")),
		mcp.WithNumber("start_col", mcp.Required(), mcp.Description("0-based column of the first corner")),
		mcp.WithNumber("end_row", mcp.Required(), mcp.Description("0-based row of the opposite corner")),
		mcp.WithNumber("end_col", mcp.Required(), mcp.Description("0-based column of the opposite corner")),
	), env.handleMergeTableCells)
}

func (e *Env) handleMergeTableCells(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := MergeTableCellsArguments{}
	issues := mergeTableCellsArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	return e.update(normalizeID(args.DocID), "merging table cells", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		tbl, res := tableAt(doc, args.TableIndex)
		if res != nil {
			return res, nil
		}
		rows, cols := len(tbl.Rows()), tbl.ColumnCount()
		for _, rc := range [][2]int{{args.StartRow, args.StartCol}, {args.EndRow, args.EndCol}} {
			if rc[0] < 0 || rc[0] >= rows || rc[1] < 0 || rc[1] >= cols {
				return mcp.NewToolResultError("Error: Row or column index out of range."), nil
			}
		}
		if _, err := tbl.Merge(args.StartRow, args.StartCol, args.EndRow, args.EndCol); err != nil {
			if errors.Is(err, docx.ErrIndexOutOfRange) {
				return mcp.NewToolResultError("Error: Row or column index out of range."), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Error merging table cells: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Cells merged from (%d,%d) to (%d,%d) in table %d.",
			args.StartRow, args.StartCol, args.EndRow, args.EndCol, args.TableIndex)), nil
	})
}

type GetTableDataArguments struct {
	DocID      string `zog:"doc_id"`
	TableIndex int    `zog:"table_index"`
}

var getTableDataArgumentsSchema = z.Struct(z.Shape{
	"docID":      z.String().Test(DocIDTest()).Required(),
	"tableIndex": z.Int(),
})

func AddGetTableDataTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("get_table_data",
		mcp.WithDescription("Read a table as text, one row per line with cells separated by \" | \""),
		withDocID(),
		withTableIndex(),
		mcp.WithBoolean("include_empty_cells",
			mcp.Description("Keep empty paragraphs and skipped grid columns"),
			mcp.DefaultBool(true),
		),
	), env.handleGetTableData)
}

func (e *Env) handleGetTableData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := GetTableDataArguments{}
	issues := getTableDataArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	includeEmpty := request.GetBool("include_empty_cells", true)
	return e.view(normalizeID(args.DocID), "retrieving table data", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		tbl, res := tableAt(doc, args.TableIndex)
		if res != nil {
			return res, nil
		}
		return mcp.NewToolResultText(tableText(tbl, includeEmpty)), nil
	})
}

func tableText(tbl *docx.Table, includeEmpty bool) string {
	var lines []string
	for _, row := range tbl.Rows() {
		var values []string
		blanks := func(n int) {
			if includeEmpty {
				for range n {
					values = append(values, "")
				}
			}
		}
		blanks(row.GridBefore())
		for _, cell := range row.Cells() {
			var texts []string
			for _, p := range cell.Paragraphs() {
				if t := p.Text(); strings.TrimSpace(t) != "" || includeEmpty {
					texts = append(texts, t)
				}
			}
			if len(cell.Tables()) > 0 {
				texts = append(texts, "[Contains nested table]")
			}
			values = append(values, strings.Join(texts, "\n"))
		}
		blanks(row.GridAfter())
		lines = append(lines, strings.Join(values, " | "))
	}
	return strings.Join(lines, "\n")
}

func AddListTablesTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("list_tables",
		mcp.WithDescription("List the tables in a document with their size, style and first cell"),
		withDocID(),
	), env.handleListTables)
}

func (e *Env) handleListTables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := parseDocID(request)
	if res != nil {
		return res, nil
	}
	return e.view(id, "listing tables", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		tables := doc.Tables()
		if len(tables) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No tables found in document '%s'.", docName(id))), nil
		}
		lines := make([]string, len(tables))
		for i, t := range tables {
			rows := t.Rows()
			first := ""
			if len(rows) > 0 {
				if cells := rows[0].Cells(); len(cells) > 0 {
					first = truncate(cells[0].Text(), 30)
				}
			}
			lines[i] = fmt.Sprintf("Table %d: %d rows x %d columns. Style: '%s'. First cell: '%s'",
				i, len(rows), columnSpan(rows), t.StyleName(), first)
		}
		return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
	})
}

type SetTableColumnWidthArguments struct {
	DocID       string `zog:"doc_id"`
	TableIndex  int    `zog:"table_index"`
	ColumnIndex int    `zog:"column_index"`
}

var setTableColumnWidthArgumentsSchema = z.Struct(z.Shape{
	"docID":       z.String().Test(DocIDTest()).Required(),
	"tableIndex":  z.Int(),
	"columnIndex": z.Int(),
})

func AddSetTableColumnWidthTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("set_table_column_width",
		mcp.WithDescription("Set the width of one table column in inches"),
		withDocID(),
		withTableIndex(),
		mcp.WithNumber("column_index",
			mcp.Required(),
			mcp.Description("0-based column index"),
		),
		mcp.WithNumber("width",
			mcp.Required(),
			mcp.Description("Column width in inches"),
		),
	), env.handleSetTableColumnWidth)
}

func (e *Env) handleSetTableColumnWidth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := SetTableColumnWidthArguments{}
	issues := setTableColumnWidthArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	width := request.GetFloat("width", 0)
	if width <= 0 || !inchesInRange(width) {
		return imcp.NewToolResultInvalidArgumentError(fmt.Sprintf("width must be greater than 0 and at most %d inches", maxInches)), nil
	}
	return e.update(normalizeID(args.DocID), "setting column width", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		tbl, res := tableAt(doc, args.TableIndex)
		if res != nil {
			return res, nil
		}
		if err := tbl.SetColumnWidth(args.ColumnIndex, docx.Inches(width)); errors.Is(err, docx.ErrIndexOutOfRange) {
			return mcp.NewToolResultError(fmt.Sprintf("Error: Column index %d is out of range. Table has %d columns.", args.ColumnIndex, tbl.ColumnCount())), nil
		} else if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(fmt.Sprintf("Column %d of table %d set to %.2f inches.", args.ColumnIndex, args.TableIndex, width)), nil
	})
}

type SetTableCellPropertiesArguments struct {
	DocID      string `zog:"doc_id"`
	TableIndex int    `zog:"table_index"`
	RowIndex   int    `zog:"row_index"`
	ColIndex   int    `zog:"col_index"`
}

var setTableCellPropertiesArgumentsSchema = z.Struct(z.Shape{
	"docID":      z.String().Test(DocIDTest()).Required(),
	"tableIndex": z.Int(),
	"rowIndex":   z.Int(),
	"colIndex":   z.Int(),
})

var verticalAlignments = map[string]docx.VerticalAlignment{
	"TOP":    docx.VAlignTop,
	"CENTER": docx.VAlignCenter,
	"BOTTOM": docx.VAlignBottom,
}

func AddSetTableCellPropertiesTool(server *server.MCPServer, env *Env) {
	server.AddTool(mcp.NewTool("set_table_cell_properties",
		mcp.WithDescription("Set the text, background color or vertical alignment of one table cell"),
		withDocID(),
		withTableIndex(),
		mcp.WithNumber("row_index", mcp.Required(), mcp.Description("0-based row index")),
		mcp.WithNumber("col_index", mcp.Required(), mcp.Description("0-based column index")),
		imcp.WithObject("properties",
			mcp.Required(),
			mcp.Description("Any of text, background_color (#RRGGBB or rgb(r,g,b)), vertical_alignment (TOP, CENTER, BOTTOM)"),
		),
	), env.handleSetTableCellProperties)
}

func (e *Env) handleSetTableCellProperties(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := SetTableCellPropertiesArguments{}
	issues := setTableCellPropertiesArgumentsSchema.Parse(request.Params.Arguments, &args)
	if len(issues) != 0 {
		return imcp.NewToolResultZogIssueMap(issues), nil
	}
	props, res := objectArg(request, "properties")
	if res != nil {
		return res, nil
	}

	var (
		text    *string
		shading *docx.RGBColor
		valign  docx.VerticalAlignment
	)
	if v, ok := props["text"]; ok && v != nil {
		s := cast.ToString(v)
		text = &s
	}
	if v, ok := props["background_color"]; ok && v != nil {
		c, err := format.ParseColor(cast.ToString(v))
		if err != nil {
			return imcp.NewToolResultInvalidArgumentError(fmt.Sprintf("background_color: %v", err)), nil
		}
		shading = &c
	}
	if v, ok := props["vertical_alignment"]; ok && v != nil {
		a, ok := verticalAlignments[strings.ToUpper(cast.ToString(v))]
		if !ok {
			return imcp.NewToolResultInvalidArgumentError(fmt.Sprintf("vertical_alignment: '%v'. Valid values are: TOP, CENTER, BOTTOM", v)), nil
		}
		valign = a
	}

	return e.update(normalizeID(args.DocID), "setting cell properties", func(doc *docx.Document) (*mcp.CallToolResult, error) {
		tbl, res := tableAt(doc, args.TableIndex)
		if res != nil {
			return res, nil
		}
		if args.RowIndex < 0 || args.RowIndex >= len(tbl.Rows()) || args.ColIndex < 0 || args.ColIndex >= tbl.ColumnCount() {
			return mcp.NewToolResultError("Error: Row or column index out of range."), nil
		}
		cell, err := tbl.Cell(args.RowIndex, args.ColIndex)
		if errors.Is(err, docx.ErrIndexOutOfRange) {
			return mcp.NewToolResultError("Error: Row or column index out of range."), nil
		} else if err != nil {
			return nil, err
		}
		if text != nil {
			cell.SetText(*text)
		}
		if shading != nil {
			cell.SetShading(*shading)
		}
		if valign != "" {
			cell.SetVerticalAlignment(valign)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Cell (%d,%d) of table %d updated successfully.", args.RowIndex, args.ColIndex, args.TableIndex)), nil
	})
}
