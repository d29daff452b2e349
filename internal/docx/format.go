package docx

import (
	"math"
	"strconv"

	"github.com/beevik/etree"
)

type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "both"
)

// LineSpacing is either a multiple of single spacing or an exact height.
type LineSpacing struct {
	Multiple float64
	Exact    Length
}

func (l LineSpacing) IsExact() bool { return l.Multiple == 0 }

// ParagraphFormat reads and writes the w:pPr of a paragraph or style.
type ParagraphFormat struct {
	pPr props
}

func (f *ParagraphFormat) get(tag string) *etree.Element {
	pPr := f.pPr.get()
	if pPr == nil {
		return nil
	}
	return pPr.SelectElement(tag)
}

func (f *ParagraphFormat) ensure(tag string) *etree.Element {
	return getOrAdd(f.pPr.ensure(), tag, pPrOrder)
}

func (f *ParagraphFormat) Alignment() (Alignment, bool) {
	v := attr(f.get("w:jc"), "w:val")
	switch v {
	case "start":
		return AlignLeft, true
	case "end":
		return AlignRight, true
	case "":
		return "", false
	}
	return Alignment(v), true
}

func (f *ParagraphFormat) SetAlignment(a Alignment) {
	f.ensure("w:jc").CreateAttr("w:val", string(a))
}

func (f *ParagraphFormat) length(tag string, keys ...string) (Length, bool) {
	el := f.get(tag)
	for _, k := range keys {
		if l, ok := parseTwips(attr(el, k)); ok {
			return l, true
		}
	}
	return 0, false
}

func (f *ParagraphFormat) LeftIndent() (Length, bool) {
	return f.length("w:ind", "w:left", "w:start")
}

func (f *ParagraphFormat) SetLeftIndent(l Length) {
	f.ensure("w:ind").CreateAttr("w:left", formatTwips(l))
}

func (f *ParagraphFormat) RightIndent() (Length, bool) {
	return f.length("w:ind", "w:right", "w:end")
}

func (f *ParagraphFormat) SetRightIndent(l Length) {
	f.ensure("w:ind").CreateAttr("w:right", formatTwips(l))
}

// FirstLineIndent is negative for a hanging indent.
func (f *ParagraphFormat) FirstLineIndent() (Length, bool) {
	if l, ok := f.length("w:ind", "w:hanging"); ok {
		return -l, true
	}
	return f.length("w:ind", "w:firstLine")
}

func (f *ParagraphFormat) SetFirstLineIndent(l Length) {
	ind := f.ensure("w:ind")
	if l < 0 {
		ind.RemoveAttr("w:firstLine")
		ind.CreateAttr("w:hanging", formatTwips(-l))
		return
	}
	ind.RemoveAttr("w:hanging")
	ind.CreateAttr("w:firstLine", formatTwips(l))
}

func (f *ParagraphFormat) SpaceBefore() (Length, bool) {
	return f.length("w:spacing", "w:before")
}

func (f *ParagraphFormat) SetSpaceBefore(l Length) {
	f.ensure("w:spacing").CreateAttr("w:before", formatTwips(l))
}

func (f *ParagraphFormat) SpaceAfter() (Length, bool) {
	return f.length("w:spacing", "w:after")
}

func (f *ParagraphFormat) SetSpaceAfter(l Length) {
	f.ensure("w:spacing").CreateAttr("w:after", formatTwips(l))
}

func (f *ParagraphFormat) LineSpacing() (LineSpacing, bool) {
	spacing := f.get("w:spacing")
	line, err := strconv.ParseFloat(attr(spacing, "w:line"), 64)
	if err != nil {
		return LineSpacing{}, false
	}
	switch attr(spacing, "w:lineRule") {
	case "exact", "atLeast":
		return LineSpacing{Exact: Length(math.Round(line * emuPerTwip))}, true
	}
	return LineSpacing{Multiple: line / 240}, true
}

func (f *ParagraphFormat) SetLineSpacingMultiple(v float64) {
	spacing := f.ensure("w:spacing")
	spacing.CreateAttr("w:line", strconv.FormatInt(int64(math.Round(v*240)), 10))
	spacing.CreateAttr("w:lineRule", "auto")
}

func (f *ParagraphFormat) SetLineSpacingExact(l Length) {
	spacing := f.ensure("w:spacing")
	spacing.CreateAttr("w:line", formatTwips(l))
	spacing.CreateAttr("w:lineRule", "exact")
}

func (f *ParagraphFormat) KeepTogether() *bool       { return onOff(f.pPr.get(), "w:keepLines") }
func (f *ParagraphFormat) SetKeepTogether(v bool)    { setOnOff(f.pPr.ensure(), "w:keepLines", pPrOrder, v) }
func (f *ParagraphFormat) KeepWithNext() *bool       { return onOff(f.pPr.get(), "w:keepNext") }
func (f *ParagraphFormat) SetKeepWithNext(v bool)    { setOnOff(f.pPr.ensure(), "w:keepNext", pPrOrder, v) }
func (f *ParagraphFormat) PageBreakBefore() *bool    { return onOff(f.pPr.get(), "w:pageBreakBefore") }
func (f *ParagraphFormat) SetPageBreakBefore(v bool) { setOnOff(f.pPr.ensure(), "w:pageBreakBefore", pPrOrder, v) }
func (f *ParagraphFormat) WidowControl() *bool       { return onOff(f.pPr.get(), "w:widowControl") }
func (f *ParagraphFormat) SetWidowControl(v bool)    { setOnOff(f.pPr.ensure(), "w:widowControl", pPrOrder, v) }

// SetTabStop adds a tab stop at pos, replacing any stop already there.
func (f *ParagraphFormat) SetTabStop(pos Length, align string) {
	tabs := f.ensure("w:tabs")
	at := formatTwips(pos)
	for _, t := range tabs.SelectElements("w:tab") {
		if t.SelectAttrValue("w:pos", "") == at {
			tabs.RemoveChild(t)
		}
	}
	tab := tabs.CreateElement("w:tab")
	tab.CreateAttr("w:val", align)
	tab.CreateAttr("w:pos", at)
}

// Font reads and writes the character formatting of a run or style.
type Font struct {
	rPr props
}

func (f *Font) get(tag string) *etree.Element {
	rPr := f.rPr.get()
	if rPr == nil {
		return nil
	}
	return rPr.SelectElement(tag)
}

func (f *Font) ensure(tag string) *etree.Element {
	return getOrAdd(f.rPr.ensure(), tag, rPrOrder)
}

func (f *Font) Name() string {
	return attr(f.get("w:rFonts"), "w:ascii")
}

func (f *Font) SetName(name string) {
	fonts := f.ensure("w:rFonts")
	fonts.CreateAttr("w:ascii", name)
	fonts.CreateAttr("w:hAnsi", name)
}

func (f *Font) Size() (Length, bool) {
	n, err := strconv.ParseFloat(attr(f.get("w:sz"), "w:val"), 64)
	if err != nil {
		return 0, false
	}
	return Pt(n / 2), true
}

func (f *Font) SetSize(l Length) {
	f.ensure("w:sz").CreateAttr("w:val", strconv.FormatInt(l.HalfPoints(), 10))
}

func (f *Font) Bold() *bool      { return onOff(f.rPr.get(), "w:b") }
func (f *Font) SetBold(v bool)   { setOnOff(f.rPr.ensure(), "w:b", rPrOrder, v) }
func (f *Font) Italic() *bool    { return onOff(f.rPr.get(), "w:i") }
func (f *Font) SetItalic(v bool) { setOnOff(f.rPr.ensure(), "w:i", rPrOrder, v) }

// Underline reports single-or-better underlining as true and an explicit
// "none" as false.
func (f *Font) Underline() *bool {
	u := f.get("w:u")
	if u == nil {
		return nil
	}
	v := attr(u, "w:val") != "none"
	return &v
}

func (f *Font) SetUnderline(v bool) {
	val := "none"
	if v {
		val = "single"
	}
	f.ensure("w:u").CreateAttr("w:val", val)
}

func (f *Font) Color() (RGBColor, bool) {
	c, err := ParseHexColor(attr(f.get("w:color"), "w:val"))
	return c, err == nil
}

func (f *Font) SetColor(c RGBColor) {
	f.ensure("w:color").CreateAttr("w:val", c.String())
}
