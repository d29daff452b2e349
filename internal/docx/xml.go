package docx

import (
	"slices"

	"github.com/beevik/etree"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeHeader         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relTypeFooter         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	relTypeImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"

	ctStyles    = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ctHeader    = "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"
	ctFooter    = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"
	ctCoreProps = "application/vnd.openxmlformats-package.core-properties+xml"
)

// Child element sequences from the WordprocessingML schema. Properties must
// be written in this order or Word refuses to open the file.
var (
	pPrOrder = []string{
		"w:pStyle", "w:keepNext", "w:keepLines", "w:pageBreakBefore", "w:framePr",
		"w:widowControl", "w:numPr", "w:suppressLineNumbers", "w:pBdr", "w:shd",
		"w:tabs", "w:suppressAutoHyphens", "w:kinsoku", "w:wordWrap",
		"w:overflowPunct", "w:topLinePunct", "w:autoSpaceDE", "w:autoSpaceDN",
		"w:bidi", "w:adjustRightInd", "w:snapToGrid", "w:spacing", "w:ind",
		"w:contextualSpacing", "w:mirrorIndents", "w:suppressOverlap", "w:jc",
		"w:textDirection", "w:textAlignment", "w:textboxTightWrap",
		"w:outlineLvl", "w:divId", "w:cnfStyle", "w:rPr", "w:sectPr", "w:pPrChange",
	}
	rPrOrder = []string{
		"w:rStyle", "w:rFonts", "w:b", "w:bCs", "w:i", "w:iCs", "w:caps",
		"w:smallCaps", "w:strike", "w:dstrike", "w:outline", "w:shadow",
		"w:emboss", "w:imprint", "w:noProof", "w:snapToGrid", "w:vanish",
		"w:webHidden", "w:color", "w:spacing", "w:w", "w:kern", "w:position",
		"w:sz", "w:szCs", "w:highlight", "w:u", "w:effect", "w:bdr", "w:shd",
		"w:fitText", "w:vertAlign", "w:rtl", "w:cs", "w:em", "w:lang",
		"w:eastAsianLayout", "w:specVanish", "w:oMath",
	}
	sectPrOrder = []string{
		"w:headerReference", "w:footerReference", "w:footnotePr", "w:endnotePr",
		"w:type", "w:pgSz", "w:pgMar", "w:paperSrc", "w:pgBorders",
		"w:lnNumType", "w:pgNumType", "w:cols", "w:formProt", "w:vAlign",
		"w:noEndnote", "w:titlePg", "w:textDirection", "w:bidi", "w:rtlGutter",
		"w:docGrid", "w:printerSettings", "w:sectPrChange",
	}
	tblPrOrder = []string{
		"w:tblStyle", "w:tblpPr", "w:tblOverlap", "w:bidiVisual",
		"w:tblStyleRowBandSize", "w:tblStyleColBandSize", "w:tblW", "w:jc",
		"w:tblCellSpacing", "w:tblInd", "w:tblBorders", "w:shd", "w:tblLayout",
		"w:tblCellMar", "w:tblLook",
	}
	tcPrOrder = []string{
		"w:cnfStyle", "w:tcW", "w:gridSpan", "w:hMerge", "w:vMerge",
		"w:tcBorders", "w:shd", "w:noWrap", "w:tcMar", "w:textDirection",
		"w:tcFitText", "w:vAlign", "w:hideMark",
	}
	styleOrder = []string{
		"w:name", "w:aliases", "w:basedOn", "w:next", "w:link", "w:autoRedefine",
		"w:hidden", "w:uiPriority", "w:semiHidden", "w:unhideWhenUsed",
		"w:qFormat", "w:locked", "w:personal", "w:personalCompose",
		"w:personalReply", "w:rsid", "w:pPr", "w:rPr", "w:tblPr", "w:trPr",
		"w:tcPr", "w:tblStylePr",
	}
	trPrOrder = []string{
		"w:cnfStyle", "w:divId", "w:gridBefore", "w:gridAfter", "w:wBefore",
		"w:wAfter", "w:cantSplit", "w:trHeight", "w:tblHeader",
		"w:tblCellSpacing", "w:jc", "w:hidden",
	}
)

// insertOrdered places el among parent's children so that the sequence in
// order is respected. Tags missing from order are appended.
func insertOrdered(parent, el *etree.Element, order []string) {
	rank := slices.Index(order, el.FullTag())
	if rank >= 0 {
		for _, c := range parent.ChildElements() {
			if slices.Index(order, c.FullTag()) > rank {
				parent.InsertChildAt(c.Index(), el)
				return
			}
		}
	}
	parent.AddChild(el)
}

func getOrAdd(parent *etree.Element, tag string, order []string) *etree.Element {
	if c := parent.SelectElement(tag); c != nil {
		return c
	}
	el := etree.NewElement(tag)
	insertOrdered(parent, el, order)
	return el
}

func removeChildren(parent *etree.Element, tag string) {
	for _, c := range parent.SelectElements(tag) {
		parent.RemoveChild(c)
	}
}

func attr(el *etree.Element, key string) string {
	if el == nil {
		return ""
	}
	return el.SelectAttrValue(key, "")
}

func childAttr(parent *etree.Element, tag, key string) string {
	if parent == nil {
		return ""
	}
	return attr(parent.SelectElement(tag), key)
}

// onOff reads a CT_OnOff property; nil means the property is not set.
func onOff(parent *etree.Element, tag string) *bool {
	if parent == nil {
		return nil
	}
	el := parent.SelectElement(tag)
	if el == nil {
		return nil
	}
	v := true
	switch el.SelectAttrValue("w:val", "") {
	case "0", "false", "off":
		v = false
	}
	return &v
}

func setOnOff(parent *etree.Element, tag string, order []string, v bool) {
	el := getOrAdd(parent, tag, order)
	if v {
		el.RemoveAttr("w:val")
	} else {
		el.CreateAttr("w:val", "0")
	}
}

func ensureNamespace(root *etree.Element, prefix, uri string) {
	if root.SelectAttr("xmlns:"+prefix) == nil {
		root.CreateAttr("xmlns:"+prefix, uri)
	}
}

// props lazily materializes a property container such as w:pPr or w:rPr.
type props struct {
	parent *etree.Element
	tag    string
	order  []string
	first  bool
}

func (p props) get() *etree.Element {
	return p.parent.SelectElement(p.tag)
}

func (p props) ensure() *etree.Element {
	if el := p.get(); el != nil {
		return el
	}
	el := etree.NewElement(p.tag)
	if p.first {
		p.parent.InsertChildAt(0, el)
	} else {
		insertOrdered(p.parent, el, p.order)
	}
	return el
}
