package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// StartType is the kind of break that begins a section.
type StartType int

const (
	StartNewPage StartType = iota
	StartContinuous
	StartNewColumn
	StartEvenPage
	StartOddPage
)

var startTypes = []struct {
	t         StartType
	name, val string
}{
	{StartNewPage, "NEW_PAGE", "nextPage"},
	{StartContinuous, "CONTINUOUS", "continuous"},
	{StartNewColumn, "NEW_COLUMN", "nextColumn"},
	{StartEvenPage, "EVEN_PAGE", "evenPage"},
	{StartOddPage, "ODD_PAGE", "oddPage"},
}

func (t StartType) String() string {
	for _, s := range startTypes {
		if s.t == t {
			return s.name
		}
	}
	return "NEW_PAGE"
}

// ParseStartType accepts names such as "NEW_PAGE", case-insensitively.
func ParseStartType(name string) (StartType, bool) {
	for _, s := range startTypes {
		if strings.EqualFold(s.name, name) {
			return s.t, true
		}
	}
	return StartNewPage, false
}

type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

func (o Orientation) String() string {
	if o == Landscape {
		return "LANDSCAPE"
	}
	return "PORTRAIT"
}

// Section is a w:sectPr, either on a paragraph mark or at the end of the
// body.
type Section struct {
	el  *etree.Element
	doc *Document
}

func (s *Section) StartType() StartType {
	v := childAttr(s.el, "w:type", "w:val")
	for _, st := range startTypes {
		if st.val == v {
			return st.t
		}
	}
	return StartNewPage
}

func (s *Section) SetStartType(t StartType) {
	if t == StartNewPage {
		removeChildren(s.el, "w:type")
		return
	}
	for _, st := range startTypes {
		if st.t == t {
			getOrAdd(s.el, "w:type", sectPrOrder).CreateAttr("w:val", st.val)
		}
	}
}

func (s *Section) Orientation() Orientation {
	if childAttr(s.el, "w:pgSz", "w:orient") == "landscape" {
		return Landscape
	}
	return Portrait
}

func (s *Section) SetOrientation(o Orientation) {
	pgSz := getOrAdd(s.el, "w:pgSz", sectPrOrder)
	if o == Landscape {
		pgSz.CreateAttr("w:orient", "landscape")
		return
	}
	pgSz.RemoveAttr("w:orient")
}

func (s *Section) length(tag, key string) Length {
	l, _ := parseTwips(childAttr(s.el, tag, key))
	return l
}

func (s *Section) setLength(tag, key string, l Length) {
	getOrAdd(s.el, tag, sectPrOrder).CreateAttr(key, formatTwips(l))
}

func (s *Section) PageWidth() Length      { return s.length("w:pgSz", "w:w") }
func (s *Section) SetPageWidth(l Length)  { s.setLength("w:pgSz", "w:w", l) }
func (s *Section) PageHeight() Length     { return s.length("w:pgSz", "w:h") }
func (s *Section) SetPageHeight(l Length) { s.setLength("w:pgSz", "w:h", l) }

func (s *Section) LeftMargin() Length         { return s.length("w:pgMar", "w:left") }
func (s *Section) SetLeftMargin(l Length)     { s.setLength("w:pgMar", "w:left", l) }
func (s *Section) RightMargin() Length        { return s.length("w:pgMar", "w:right") }
func (s *Section) SetRightMargin(l Length)    { s.setLength("w:pgMar", "w:right", l) }
func (s *Section) TopMargin() Length          { return s.length("w:pgMar", "w:top") }
func (s *Section) SetTopMargin(l Length)      { s.setLength("w:pgMar", "w:top", l) }
func (s *Section) BottomMargin() Length       { return s.length("w:pgMar", "w:bottom") }
func (s *Section) SetBottomMargin(l Length)   { s.setLength("w:pgMar", "w:bottom", l) }
func (s *Section) Gutter() Length             { return s.length("w:pgMar", "w:gutter") }
func (s *Section) SetGutter(l Length)         { s.setLength("w:pgMar", "w:gutter", l) }
func (s *Section) HeaderDistance() Length     { return s.length("w:pgMar", "w:header") }
func (s *Section) SetHeaderDistance(l Length) { s.setLength("w:pgMar", "w:header", l) }
func (s *Section) FooterDistance() Length     { return s.length("w:pgMar", "w:footer") }
func (s *Section) SetFooterDistance(l Length) { s.setLength("w:pgMar", "w:footer", l) }

// Header is the section's default (odd page) header.
func (s *Section) Header() *HeaderFooter {
	return &HeaderFooter{section: s, kind: headerKind}
}

func (s *Section) Footer() *HeaderFooter {
	return &HeaderFooter{section: s, kind: footerKind}
}

// DifferentFirstPage reports whether the first page of the section uses its
// own header and footer (w:titlePg).
func (s *Section) DifferentFirstPage() bool {
	v := onOff(s.el, "w:titlePg")
	return v != nil && *v
}

func (s *Section) SetDifferentFirstPage(v bool) {
	if !v {
		removeChildren(s.el, "w:titlePg")
		return
	}
	setOnOff(s.el, "w:titlePg", sectPrOrder, true)
}

var pageSetupAttrs = []struct{ tag, key string }{
	{"w:pgSz", "w:w"},
	{"w:pgSz", "w:h"},
	{"w:pgSz", "w:orient"},
	{"w:pgMar", "w:top"},
	{"w:pgMar", "w:right"},
	{"w:pgMar", "w:bottom"},
	{"w:pgMar", "w:left"},
	{"w:pgMar", "w:header"},
	{"w:pgMar", "w:footer"},
	{"w:pgMar", "w:gutter"},
}

// CopyPageSetup gives s the orientation, page size, margins and header and
// footer distances of src. Values src leaves unset are cleared on s.
func (s *Section) CopyPageSetup(src *Section) {
	if src.el == s.el {
		return
	}
	for _, a := range pageSetupAttrs {
		v := childAttr(src.el, a.tag, a.key)
		if v == "" {
			if el := s.el.SelectElement(a.tag); el != nil {
				el.RemoveAttr(a.key)
			}
			continue
		}
		getOrAdd(s.el, a.tag, sectPrOrder).CreateAttr(a.key, v)
	}
}
