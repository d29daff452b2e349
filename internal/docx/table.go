package docx

import (
	"github.com/beevik/etree"
)

type Table struct {
	el   *etree.Element
	doc  *Document
	part string
}

type Row struct {
	el    *etree.Element
	table *Table
	index int
}

// Cell is one w:tc. Merged cells are shared: every grid position covered by
// a merge yields the cell at the merge origin.
type Cell struct {
	BlockContainer
	table *Table
}

type VerticalAlignment string

const (
	VAlignTop    VerticalAlignment = "top"
	VAlignCenter VerticalAlignment = "center"
	VAlignBottom VerticalAlignment = "bottom"
)

func (t *Table) newCell(tc *etree.Element) *Cell {
	return &Cell{BlockContainer: BlockContainer{el: tc, doc: t.doc, part: t.part}, table: t}
}

func (t *Table) tblPr() props {
	return props{parent: t.el, tag: "w:tblPr", first: true}
}

func (t *Table) Rows() []*Row {
	var rows []*Row
	for i, tr := range t.el.SelectElements("w:tr") {
		rows = append(rows, &Row{el: tr, table: t, index: i})
	}
	return rows
}

func (t *Table) gridCols() []*etree.Element {
	grid := t.el.SelectElement("w:tblGrid")
	if grid == nil {
		return nil
	}
	return grid.SelectElements("w:gridCol")
}

// ColumnCount is the number of grid columns.
func (t *Table) ColumnCount() int {
	if n := len(t.gridCols()); n > 0 {
		return n
	}
	n := 0
	for _, row := range t.layout() {
		n = max(n, len(row))
	}
	return n
}

// Cell returns the cell covering grid position (row, col).
func (t *Table) Cell(row, col int) (*Cell, error) {
	grid := t.layout()
	if row < 0 || row >= len(grid) || col < 0 {
		return nil, ErrIndexOutOfRange
	}
	s := at(grid, row, col)
	if s.tc == nil {
		return nil, ErrIndexOutOfRange
	}
	return t.newCell(origin(grid, row, col)), nil
}

func (t *Table) StyleName() string {
	return t.doc.styleName(childAttr(t.tblPr().get(), "w:tblStyle", "w:val"), StyleTable)
}

func (t *Table) SetStyle(name string) error {
	id, err := t.doc.styleID(name, StyleTable)
	if err != nil {
		return err
	}
	if id == "" {
		if tblPr := t.tblPr().get(); tblPr != nil {
			removeChildren(tblPr, "w:tblStyle")
		}
		return nil
	}
	getOrAdd(t.tblPr().ensure(), "w:tblStyle", tblPrOrder).CreateAttr("w:val", id)
	return nil
}

// SetColumnWidth sets the grid column width and the width of every
// unmerged cell in that column.
func (t *Table) SetColumnWidth(col int, width Length) error {
	cols := t.gridCols()
	if col < 0 || col >= len(cols) {
		return ErrIndexOutOfRange
	}
	cols[col].CreateAttr("w:w", formatTwips(width))
	for _, row := range t.layout() {
		s := at([][]slot{row}, 0, col)
		if s.tc != nil && s.span == 1 {
			t.newCell(s.tc).SetWidth(width)
		}
	}
	return nil
}

func (t *Table) Remove() {
	if parent := t.el.Parent(); parent != nil {
		parent.RemoveChild(t.el)
	}
}

// Merge joins the rectangle spanned by the two grid positions into one
// cell and returns it. Corners may be given in any order. Text of the
// merged cells is moved into the top-left cell. A rectangle that cuts
// through an existing merged cell is rejected with ErrInvalidSpan.
func (t *Table) Merge(row1, col1, row2, col2 int) (*Cell, error) {
	grid := t.layout()
	a, err := extent(grid, row1, col1)
	if err != nil {
		return nil, err
	}
	b, err := extent(grid, row2, col2)
	if err != nil {
		return nil, err
	}
	span := rect{
		top:    min(a.top, b.top),
		left:   min(a.left, b.left),
		bottom: max(a.bottom, b.bottom),
		right:  max(a.right, b.right),
	}
	for r := span.top; r <= span.bottom; r++ {
		for c := span.left; c <= span.right; c++ {
			e, err := extent(grid, r, c)
			if err != nil {
				return nil, ErrInvalidSpan
			}
			if !span.contains(e) {
				return nil, ErrInvalidSpan
			}
		}
	}

	var width Length
	cols := t.gridCols()
	for c := span.left; c <= span.right && c < len(cols); c++ {
		if l, ok := parseTwips(attr(cols[c], "w:w")); ok {
			width += l
		}
	}

	top := at(grid, span.top, span.left).tc
	for r := span.top; r <= span.bottom; r++ {
		var keeper *etree.Element
		seen := make(map[*etree.Element]bool)
		for c := span.left; c <= span.right; c++ {
			tc := at(grid, r, c).tc
			if seen[tc] {
				continue
			}
			seen[tc] = true
			if tc != top {
				moveCellContent(tc, top)
			}
			if keeper == nil {
				keeper = tc
				continue
			}
			if parent := tc.Parent(); parent != nil {
				parent.RemoveChild(tc)
			}
		}
		tcPr := props{parent: keeper, tag: "w:tcPr", first: true}.ensure()
		removeChildren(tcPr, "w:gridSpan")
		if n := span.right - span.left + 1; n > 1 {
			getOrAdd(tcPr, "w:gridSpan", tcPrOrder).CreateAttr("w:val", itoa(n))
		}
		if width > 0 {
			tcW := getOrAdd(tcPr, "w:tcW", tcPrOrder)
			tcW.CreateAttr("w:w", formatTwips(width))
			tcW.CreateAttr("w:type", "dxa")
		}
		removeChildren(tcPr, "w:vMerge")
		switch {
		case span.top == span.bottom:
		case r == span.top:
			getOrAdd(tcPr, "w:vMerge", tcPrOrder).CreateAttr("w:val", "restart")
		default:
			getOrAdd(tcPr, "w:vMerge", tcPrOrder)
		}
	}
	return t.newCell(top), nil
}

// Cells lists the cells of the row by grid column, skipping columns
// reserved by w:gridBefore.
func (r *Row) Cells() []*Cell {
	grid := r.table.layout()
	var cells []*Cell
	row := grid[r.index]
	for c := r.GridBefore(); c < len(row); c++ {
		if row[c].tc == nil {
			continue
		}
		cells = append(cells, r.table.newCell(origin(grid, r.index, c)))
	}
	return cells
}

func (r *Row) GridBefore() int { return atoi(childAttr(r.el.SelectElement("w:trPr"), "w:gridBefore", "w:val"), 0) }
func (r *Row) GridAfter() int  { return atoi(childAttr(r.el.SelectElement("w:trPr"), "w:gridAfter", "w:val"), 0) }

func (c *Cell) tcPr() props {
	return props{parent: c.el, tag: "w:tcPr", first: true}
}

// SetText replaces the cell content with a single paragraph.
func (c *Cell) SetText(text string) {
	for _, el := range c.el.ChildElements() {
		if el.FullTag() != "w:tcPr" {
			c.el.RemoveChild(el)
		}
	}
	c.AddParagraph(text)
}

func (c *Cell) SetWidth(l Length) {
	tcW := getOrAdd(c.tcPr().ensure(), "w:tcW", tcPrOrder)
	tcW.CreateAttr("w:w", formatTwips(l))
	tcW.CreateAttr("w:type", "dxa")
}

func (c *Cell) Shading() (RGBColor, bool) {
	col, err := ParseHexColor(childAttr(c.tcPr().get(), "w:shd", "w:fill"))
	return col, err == nil
}

func (c *Cell) SetShading(col RGBColor) {
	shd := getOrAdd(c.tcPr().ensure(), "w:shd", tcPrOrder)
	shd.CreateAttr("w:val", "clear")
	shd.CreateAttr("w:color", "auto")
	shd.CreateAttr("w:fill", col.String())
}

func (c *Cell) VerticalAlignment() (VerticalAlignment, bool) {
	v := childAttr(c.tcPr().get(), "w:vAlign", "w:val")
	return VerticalAlignment(v), v != ""
}

func (c *Cell) SetVerticalAlignment(v VerticalAlignment) {
	getOrAdd(c.tcPr().ensure(), "w:vAlign", tcPrOrder).CreateAttr("w:val", string(v))
}

// slot is one grid column of a row and the w:tc occupying it.
type slot struct {
	tc    *etree.Element
	start int
	span  int
}

type rect struct{ top, left, bottom, right int }

func (r rect) contains(o rect) bool {
	return o.top >= r.top && o.bottom <= r.bottom && o.left >= r.left && o.right <= r.right
}

func (t *Table) layout() [][]slot {
	var grid [][]slot
	for _, tr := range t.el.SelectElements("w:tr") {
		var row []slot
		for range atoi(childAttr(tr.SelectElement("w:trPr"), "w:gridBefore", "w:val"), 0) {
			row = append(row, slot{})
		}
		for _, tc := range tr.SelectElements("w:tc") {
			span := max(atoi(childAttr(tc.SelectElement("w:tcPr"), "w:gridSpan", "w:val"), 1), 1)
			start := len(row)
			for range span {
				row = append(row, slot{tc: tc, start: start, span: span})
			}
		}
		grid = append(grid, row)
	}
	return grid
}

func at(grid [][]slot, row, col int) slot {
	if row < 0 || row >= len(grid) || col < 0 || col >= len(grid[row]) {
		return slot{}
	}
	return grid[row][col]
}

func vMergeContinues(tc *etree.Element) bool {
	if tc == nil {
		return false
	}
	vm := tc.SelectElement("w:tcPr")
	if vm != nil {
		vm = vm.SelectElement("w:vMerge")
	}
	return vm != nil && vm.SelectAttrValue("w:val", "continue") == "continue"
}

// origin resolves a vertically merged grid position to the cell that
// starts the merge.
func origin(grid [][]slot, row, col int) *etree.Element {
	s := at(grid, row, col)
	for row > 0 && vMergeContinues(s.tc) {
		above := at(grid, row-1, col)
		if above.tc == nil || above.start != s.start {
			break
		}
		row--
		s = above
	}
	return s.tc
}

// extent is the grid rectangle covered by the cell at (row, col).
func extent(grid [][]slot, row, col int) (rect, error) {
	s := at(grid, row, col)
	if s.tc == nil {
		return rect{}, ErrIndexOutOfRange
	}
	top := row
	for cur := s; top > 0 && vMergeContinues(cur.tc); {
		above := at(grid, top-1, col)
		if above.tc == nil || above.start != s.start {
			break
		}
		top--
		cur = above
	}
	bottom := row
	for {
		below := at(grid, bottom+1, col)
		if below.tc == nil || below.start != s.start || !vMergeContinues(below.tc) {
			break
		}
		bottom++
	}
	return rect{top: top, left: s.start, bottom: bottom, right: s.start + s.span - 1}, nil
}

// moveCellContent appends the blocks of src to dst unless src holds only
// an empty paragraph, leaving src with one empty paragraph.
func moveCellContent(src, dst *etree.Element) {
	if cellIsEmpty(src) {
		return
	}
	blocks := cellBlocks(dst)
	if n := len(blocks); n > 0 && blocks[n-1].FullTag() == "w:p" && (&Paragraph{el: blocks[n-1]}).isEmpty() {
		dst.RemoveChild(blocks[n-1])
	}
	for _, b := range cellBlocks(src) {
		src.RemoveChild(b)
		dst.AddChild(b)
	}
	src.CreateElement("w:p")
}

func cellBlocks(tc *etree.Element) []*etree.Element {
	var blocks []*etree.Element
	for _, c := range tc.ChildElements() {
		if tag := c.FullTag(); tag == "w:p" || tag == "w:tbl" {
			blocks = append(blocks, c)
		}
	}
	return blocks
}

func cellIsEmpty(tc *etree.Element) bool {
	blocks := cellBlocks(tc)
	switch len(blocks) {
	case 0:
		return true
	case 1:
		return blocks[0].FullTag() == "w:p" && len(blocks[0].SelectElements("w:r")) == 0
	}
	return false
}
