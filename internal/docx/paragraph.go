package docx

import (
	"strings"

	"github.com/beevik/etree"
)

type Paragraph struct {
	el   *etree.Element
	doc  *Document
	part string
}

func (p *Paragraph) pPr() props {
	return props{parent: p.el, tag: "w:pPr", first: true}
}

// Text concatenates the paragraph's runs, including runs nested in
// hyperlinks and the cached results of simple fields.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, c := range p.el.ChildElements() {
		switch c.FullTag() {
		case "w:r":
			sb.WriteString(runText(c))
		case "w:hyperlink", "w:smartTag", "w:ins", "w:fldSimple":
			for _, r := range c.SelectElements("w:r") {
				sb.WriteString(runText(r))
			}
		}
	}
	return sb.String()
}

// Runs are the paragraph's direct w:r children.
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, el := range p.el.SelectElements("w:r") {
		runs = append(runs, &Run{el: el, doc: p.doc})
	}
	return runs
}

func (p *Paragraph) AddRun(text string) *Run {
	el := p.el.CreateElement("w:r")
	r := &Run{el: el, doc: p.doc}
	if text != "" {
		r.SetText(text)
	}
	return r
}

// AddField appends a simple field such as "PAGE" or "NUMPAGES". Word
// recomputes the field when the document is laid out; placeholder is shown
// until then.
func (p *Paragraph) AddField(instr, placeholder string) {
	fld := p.el.CreateElement("w:fldSimple")
	fld.CreateAttr("w:instr", " "+strings.TrimSpace(instr)+" ")
	r := &Run{el: fld.CreateElement("w:r"), doc: p.doc}
	if placeholder != "" {
		r.SetText(placeholder)
	}
}

// Fields lists the instructions of the paragraph's simple fields.
func (p *Paragraph) Fields() []string {
	var out []string
	for _, f := range p.el.SelectElements("w:fldSimple") {
		out = append(out, strings.TrimSpace(f.SelectAttrValue("w:instr", "")))
	}
	return out
}

// SetText replaces all content of the paragraph with a single run,
// keeping paragraph properties.
func (p *Paragraph) SetText(text string) {
	for _, c := range p.el.ChildElements() {
		if c.FullTag() != "w:pPr" {
			p.el.RemoveChild(c)
		}
	}
	p.AddRun(text)
}

// StyleName is the UI name of the paragraph style, the document's default
// paragraph style when none is applied.
func (p *Paragraph) StyleName() string {
	return p.doc.styleName(childAttr(p.pPr().get(), "w:pStyle", "w:val"), StyleParagraph)
}

// SetStyle applies the named paragraph style, materializing a built-in
// definition if needed. An empty name clears the style.
func (p *Paragraph) SetStyle(name string) error {
	id, err := p.doc.styleID(name, StyleParagraph)
	if err != nil {
		return err
	}
	if id == "" {
		if pPr := p.pPr().get(); pPr != nil {
			removeChildren(pPr, "w:pStyle")
		}
		return nil
	}
	getOrAdd(p.pPr().ensure(), "w:pStyle", pPrOrder).CreateAttr("w:val", id)
	return nil
}

func (p *Paragraph) Format() *ParagraphFormat {
	return &ParagraphFormat{pPr: p.pPr()}
}

// Remove detaches the paragraph from its container.
func (p *Paragraph) Remove() {
	if parent := p.el.Parent(); parent != nil {
		parent.RemoveChild(p.el)
	}
}

func (p *Paragraph) isEmpty() bool {
	for _, c := range p.el.ChildElements() {
		if c.FullTag() != "w:pPr" {
			return false
		}
	}
	return true
}
