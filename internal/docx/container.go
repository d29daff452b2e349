package docx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// BlockContainer is any story that holds paragraphs and tables: the
// document body, a table cell, a header or a footer.
type BlockContainer struct {
	el   *etree.Element
	doc  *Document
	part string
}

func (c *BlockContainer) Paragraphs() []*Paragraph {
	var ps []*Paragraph
	for _, el := range c.el.SelectElements("w:p") {
		ps = append(ps, &Paragraph{el: el, doc: c.doc, part: c.part})
	}
	return ps
}

func (c *BlockContainer) Tables() []*Table {
	var ts []*Table
	for _, el := range c.el.SelectElements("w:tbl") {
		ts = append(ts, &Table{el: el, doc: c.doc, part: c.part})
	}
	return ts
}

func (c *BlockContainer) AddParagraph(text string) *Paragraph {
	el := etree.NewElement("w:p")
	c.insert(el)
	p := &Paragraph{el: el, doc: c.doc, part: c.part}
	if text != "" {
		p.AddRun(text)
	}
	return p
}

// AddTable appends a rows x cols table whose columns split width evenly.
func (c *BlockContainer) AddTable(rows, cols int, width Length) *Table {
	tbl := etree.NewElement("w:tbl")
	tblPr := tbl.CreateElement("w:tblPr")
	tblW := tblPr.CreateElement("w:tblW")
	tblW.CreateAttr("w:w", "0")
	tblW.CreateAttr("w:type", "auto")
	look := tblPr.CreateElement("w:tblLook")
	look.CreateAttr("w:val", "04A0")
	look.CreateAttr("w:firstRow", "1")
	look.CreateAttr("w:lastRow", "0")
	look.CreateAttr("w:firstColumn", "1")
	look.CreateAttr("w:lastColumn", "0")
	look.CreateAttr("w:noHBand", "0")
	look.CreateAttr("w:noVBand", "1")

	w := formatTwips(width / Length(max(cols, 1)))
	grid := tbl.CreateElement("w:tblGrid")
	for range cols {
		grid.CreateElement("w:gridCol").CreateAttr("w:w", w)
	}
	for range rows {
		tr := tbl.CreateElement("w:tr")
		for range cols {
			tc := tr.CreateElement("w:tc")
			tcW := tc.CreateElement("w:tcPr").CreateElement("w:tcW")
			tcW.CreateAttr("w:w", w)
			tcW.CreateAttr("w:type", "dxa")
			tc.CreateElement("w:p")
		}
	}
	c.insert(tbl)
	return &Table{el: tbl, doc: c.doc, part: c.part}
}

// insert appends a block element, keeping a trailing sectPr last.
func (c *BlockContainer) insert(el *etree.Element) {
	children := c.el.ChildElements()
	if n := len(children); n > 0 && children[n-1].FullTag() == "w:sectPr" {
		c.el.InsertChildAt(children[n-1].Index(), el)
		return
	}
	c.el.AddChild(el)
}

// Text joins the text of the container's paragraphs with newlines.
func (c *BlockContainer) Text() string {
	var lines []string
	for _, p := range c.Paragraphs() {
		lines = append(lines, p.Text())
	}
	return strings.Join(lines, "\n")
}

func itoa(n int) string { return strconv.Itoa(n) }

func atoi(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
