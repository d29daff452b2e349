package docx

import (
	"strings"

	"github.com/beevik/etree"
)

type Run struct {
	el  *etree.Element
	doc *Document
}

func (r *Run) rPr() props {
	return props{parent: r.el, tag: "w:rPr", first: true}
}

func (r *Run) Text() string {
	return runText(r.el)
}

func runText(r *etree.Element) string {
	var sb strings.Builder
	for _, c := range r.ChildElements() {
		switch c.FullTag() {
		case "w:t":
			sb.WriteString(c.Text())
		case "w:tab", "w:ptab":
			sb.WriteByte('\t')
		case "w:br", "w:cr":
			sb.WriteByte('\n')
		case "w:noBreakHyphen":
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// SetText replaces the run content. Tabs and line breaks become w:tab and
// w:br elements.
func (r *Run) SetText(text string) {
	for _, c := range r.el.ChildElements() {
		if c.FullTag() != "w:rPr" {
			r.el.RemoveChild(c)
		}
	}
	var pending strings.Builder
	flush := func() {
		if pending.Len() == 0 {
			return
		}
		s := pending.String()
		t := r.el.CreateElement("w:t")
		if strings.TrimSpace(s) != s {
			t.CreateAttr("xml:space", "preserve")
		}
		t.SetText(s)
		pending.Reset()
	}
	for _, ch := range text {
		switch ch {
		case '\t':
			flush()
			r.el.CreateElement("w:tab")
		case '\n', '\r':
			flush()
			r.el.CreateElement("w:br")
		default:
			pending.WriteRune(ch)
		}
	}
	flush()
}

// StyleName is the UI name of the character style, "Default Paragraph
// Font" when none is applied.
func (r *Run) StyleName() string {
	return r.doc.styleName(childAttr(r.rPr().get(), "w:rStyle", "w:val"), StyleCharacter)
}

func (r *Run) SetStyle(name string) error {
	id, err := r.doc.styleID(name, StyleCharacter)
	if err != nil {
		return err
	}
	if id == "" {
		if rPr := r.rPr().get(); rPr != nil {
			removeChildren(rPr, "w:rStyle")
		}
		return nil
	}
	getOrAdd(r.rPr().ensure(), "w:rStyle", rPrOrder).CreateAttr("w:val", id)
	return nil
}

func (r *Run) Font() *Font {
	return &Font{rPr: r.rPr()}
}
