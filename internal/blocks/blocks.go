// Package blocks appends ordered content descriptors (headings, paragraphs
// and tables) to a document story.
package blocks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
	"github.com/wxyzh/docx-mcp-server/internal/format"
	"github.com/wxyzh/docx-mcp-server/internal/style"
)

var (
	ErrDimensionMismatch = errors.New("number of data elements does not match table dimensions")
	ErrInvalidBlock      = errors.New("invalid content block")
	ErrTableTooLarge     = errors.New("table too large")
)

// Table size limits shared by add_table and table content blocks.
const (
	MaxTableRows  = 1000
	MaxTableCols  = 1000
	MaxTableCells = 100000
)

const (
	TypeHeading   = "heading"
	TypeParagraph = "paragraph"
	TypeTable     = "table"
)

// CellFormat is paragraph formatting for the first paragraph of one cell.
type CellFormat struct {
	Row        int
	Col        int
	Formatting map[string]any
}

// Block is one content descriptor. Fields not used by its Type are ignored.
type Block struct {
	Type  string
	Text  string
	Level int
	Style string

	Formatting    map[string]any
	RunFormatting map[string]any

	Rows           int
	Cols           int
	Data           string
	CellFormatting []CellFormat
}

// Parse converts decoded JSON content items into blocks. Items of unknown
// type are kept and skipped by Expand.
func Parse(items []any) ([]Block, error) {
	blocks := make([]Block, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is not an object", ErrInvalidBlock, i)
		}
		b, err := parseBlock(m)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrInvalidBlock, i, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func parseBlock(m map[string]any) (Block, error) {
	b := Block{
		Type:  strings.ToLower(cast.ToString(m["type"])),
		Text:  cast.ToString(m["text"]),
		Style: cast.ToString(m["style"]),
		Data:  cast.ToString(m["data"]),
	}
	var err error
	if b.Level, err = intField(m, "level", 1); err != nil {
		return b, err
	}
	if b.Rows, err = intField(m, "rows", 1); err != nil {
		return b, err
	}
	if b.Cols, err = intField(m, "cols", 1); err != nil {
		return b, err
	}
	if b.Type == TypeTable {
		if err := CheckTableSize(b.Rows, b.Cols); err != nil {
			return b, err
		}
	}
	if b.Formatting, err = mapField(m, "formatting"); err != nil {
		return b, err
	}
	if b.RunFormatting, err = mapField(m, "run_formatting"); err != nil {
		return b, err
	}
	if raw, ok := m["cell_formatting"]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return b, errors.New("cell_formatting must be a list")
		}
		for _, entry := range list {
			cm, ok := entry.(map[string]any)
			if !ok {
				return b, errors.New("cell_formatting entries must be objects")
			}
			var cf CellFormat
			if cf.Row, err = intField(cm, "row", 0); err != nil {
				return b, err
			}
			if cf.Col, err = intField(cm, "col", 0); err != nil {
				return b, err
			}
			if cf.Formatting, err = mapField(cm, "formatting"); err != nil {
				return b, err
			}
			b.CellFormatting = append(b.CellFormatting, cf)
		}
	}
	return b, nil
}

func intField(m map[string]any, key string, def int) (int, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return def, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func mapField(m map[string]any, key string) (map[string]any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	out, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an object", key)
	}
	return out, nil
}

// CheckTableSize rejects tables with fewer than one row or column or more
// than the limits allow. Each side is bounded before the product is taken.
func CheckTableSize(rows, cols int) error {
	switch {
	case rows < 1 || cols < 1:
		return fmt.Errorf("table needs at least one row and one column, got %dx%d", rows, cols)
	case rows > MaxTableRows || cols > MaxTableCols:
		return fmt.Errorf("%w: %dx%d exceeds %d rows or %d columns", ErrTableTooLarge, rows, cols, MaxTableRows, MaxTableCols)
	case rows*cols > MaxTableCells:
		return fmt.Errorf("%w: %dx%d exceeds %d cells", ErrTableTooLarge, rows, cols, MaxTableCells)
	}
	return nil
}

// Cells splits comma-separated table data into rows*cols trimmed values,
// padding with empty strings. More values than cells is an error.
func Cells(data string, rows, cols int) ([]string, error) {
	if err := CheckTableSize(rows, cols); err != nil {
		return nil, err
	}
	cells := make([]string, rows*cols)
	if data == "" {
		return cells, nil
	}
	values := strings.Split(data, ",")
	if len(values) > len(cells) {
		return nil, fmt.Errorf("%w: %d values for a %dx%d table", ErrDimensionMismatch, len(values), rows, cols)
	}
	for i, v := range values {
		cells[i] = strings.TrimSpace(v)
	}
	return cells, nil
}

// Options tune how blocks are placed into a story.
type Options struct {
	// DefaultParagraphStyle is applied to paragraphs that name no style.
	DefaultParagraphStyle string
	// Width is the table width; zero uses the document's text width.
	Width docx.Length
}

// Expand appends blocks to c in order. Table data is checked before the
// table is inserted, so a mismatch leaves nothing of that block behind and
// the caller can abort without saving.
func Expand(doc *docx.Document, c *docx.BlockContainer, blocks []Block, opts Options) error {
	for i, b := range blocks {
		var err error
		switch b.Type {
		case TypeHeading:
			err = addHeading(doc, c, b)
		case TypeParagraph:
			err = addParagraph(doc, c, b, opts)
		case TypeTable:
			err = addTable(doc, c, b, opts)
		}
		if err != nil {
			return fmt.Errorf("content item %d (%s): %w", i, b.Type, err)
		}
	}
	return nil
}

func addHeading(doc *docx.Document, c *docx.BlockContainer, b Block) error {
	if b.Level < 0 || b.Level > 9 {
		return docx.ErrInvalidHeadingLevel
	}
	name := "Title"
	if b.Level > 0 {
		name = fmt.Sprintf("Heading %d", b.Level)
	}
	p := c.AddParagraph(b.Text)
	if err := style.Apply(doc, p, name); err != nil {
		p.Remove()
		return err
	}
	return format.ApplyParagraph(p.Format(), b.Formatting)
}

func addParagraph(doc *docx.Document, c *docx.BlockContainer, b Block, opts Options) error {
	p := c.AddParagraph(b.Text)
	name := b.Style
	if name == "" {
		name = opts.DefaultParagraphStyle
	}
	if name != "" {
		if err := style.Apply(doc, p, name); err != nil && !errors.Is(err, docx.ErrStyleNotFound) {
			return err
		}
	}
	if err := format.ApplyParagraph(p.Format(), b.Formatting); err != nil {
		return err
	}
	if len(b.RunFormatting) > 0 {
		if runs := p.Runs(); len(runs) > 0 {
			return format.ApplyRun(runs[0].Font(), b.RunFormatting)
		}
	}
	return nil
}

func addTable(doc *docx.Document, c *docx.BlockContainer, b Block, opts Options) error {
	if err := CheckTableSize(b.Rows, b.Cols); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlock, err)
	}
	cells, err := Cells(b.Data, b.Rows, b.Cols)
	if err != nil {
		return err
	}
	width := opts.Width
	if width == 0 {
		width = doc.TextWidth()
	}
	tbl := c.AddTable(b.Rows, b.Cols, width)
	if b.Style != "" {
		if _, err := style.Ensure(doc, b.Style, docx.StyleTable); err == nil {
			if err := tbl.SetStyle(b.Style); err != nil {
				return err
			}
		} else if !errors.Is(err, docx.ErrStyleNotFound) {
			return err
		}
	}
	if b.Data != "" {
		for i, text := range cells {
			cell, err := tbl.Cell(i/b.Cols, i%b.Cols)
			if err != nil {
				return err
			}
			cell.SetText(text)
		}
	}
	for _, cf := range b.CellFormatting {
		if cf.Row < 0 || cf.Row >= b.Rows || cf.Col < 0 || cf.Col >= b.Cols {
			continue
		}
		cell, err := tbl.Cell(cf.Row, cf.Col)
		if err != nil {
			return err
		}
		if ps := cell.Paragraphs(); len(ps) > 0 {
			if err := format.ApplyParagraph(ps[0].Format(), cf.Formatting); err != nil {
				return err
			}
		}
	}
	return nil
}
