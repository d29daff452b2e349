package docx

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

type StyleType int

const (
	StyleParagraph StyleType = iota + 1
	StyleCharacter
	StyleTable
	StyleNumbering
)

func (t StyleType) String() string {
	switch t {
	case StyleParagraph:
		return "paragraph"
	case StyleCharacter:
		return "character"
	case StyleTable:
		return "table"
	case StyleNumbering:
		return "numbering"
	}
	return "unknown"
}

func parseStyleType(s string) StyleType {
	switch s {
	case "character":
		return StyleCharacter
	case "table":
		return StyleTable
	case "numbering":
		return StyleNumbering
	}
	return StyleParagraph
}

// Names of the styles a blank document carries as type defaults.
var defaultStyleNames = map[StyleType]string{
	StyleParagraph: "Normal",
	StyleCharacter: "Default Paragraph Font",
	StyleTable:     "Normal Table",
	StyleNumbering: "No List",
}

// Styles is the w:styles part of a document.
type Styles struct {
	doc  *Document
	root *etree.Element
}

func (s *Styles) All() []*Style {
	var all []*Style
	for _, el := range s.root.SelectElements("w:style") {
		all = append(all, &Style{el: el, styles: s})
	}
	return all
}

func (s *Styles) ByID(id string) *Style {
	for _, st := range s.All() {
		if st.ID() == id {
			return st
		}
	}
	return nil
}

// ByName looks a style up by its UI name.
func (s *Styles) ByName(name string) *Style {
	internal := uiToInternal(name)
	for _, st := range s.All() {
		if attr(st.el.SelectElement("w:name"), "w:val") == internal {
			return st
		}
	}
	return nil
}

// Find returns the style with the given UI name and type, or nil.
func (s *Styles) Find(name string, t StyleType) *Style {
	internal := uiToInternal(name)
	for _, st := range s.All() {
		if st.Type() == t && attr(st.el.SelectElement("w:name"), "w:val") == internal {
			return st
		}
	}
	return nil
}

func (s *Styles) Default(t StyleType) *Style {
	for _, st := range s.All() {
		if st.Type() == t && st.IsDefault() {
			return st
		}
	}
	return nil
}

// Add defines a new custom style with no formatting of its own.
func (s *Styles) Add(name string, t StyleType) (*Style, error) {
	if s.ByName(name) != nil {
		return nil, fmt.Errorf("%w: %s", ErrStyleExists, name)
	}
	id := styleIDFromName(name)
	for i := 1; s.ByID(id) != nil; i++ {
		id = fmt.Sprintf("%s%d", styleIDFromName(name), i)
	}
	el := s.root.CreateElement("w:style")
	el.CreateAttr("w:type", t.String())
	el.CreateAttr("w:customStyle", "1")
	el.CreateAttr("w:styleId", id)
	el.CreateElement("w:name").CreateAttr("w:val", uiToInternal(name))
	return &Style{el: el, styles: s}, nil
}

// Resolve returns the style of type t named name. A built-in style missing
// from the document is defined from the catalog first, along with the
// styles it is based on.
func (s *Styles) Resolve(name string, t StyleType) (*Style, error) {
	if st := s.ByName(name); st != nil {
		if st.Type() != t {
			return nil, fmt.Errorf("%w: '%s' is a %s style, need %s", ErrStyleTypeMismatch, name, st.Type(), t)
		}
		return st, nil
	}
	b, ok := lookupBuiltin(name)
	if !ok {
		return nil, fmt.Errorf("%w: no style with name '%s'", ErrStyleNotFound, name)
	}
	if b.typ != t {
		return nil, fmt.Errorf("%w: '%s' is a %s style, need %s", ErrStyleTypeMismatch, name, b.typ, t)
	}
	return s.materialize(b)
}

func (s *Styles) materialize(b builtinStyle) (*Style, error) {
	if base := b.basedOnID(); base != "" && s.ByID(base) == nil {
		if parent, ok := builtinByID(base); ok {
			if _, err := s.materialize(parent); err != nil {
				return nil, err
			}
		}
	}
	el, err := b.element()
	if err != nil {
		return nil, err
	}
	s.root.AddChild(el)
	return &Style{el: el, styles: s}, nil
}

// Style is one w:style definition.
type Style struct {
	el     *etree.Element
	styles *Styles
}

func (st *Style) ID() string { return st.el.SelectAttrValue("w:styleId", "") }

// Name is the UI name, e.g. "Heading 1" for a style stored as "heading 1".
func (st *Style) Name() string {
	return internalToUI(attr(st.el.SelectElement("w:name"), "w:val"))
}

func (st *Style) Type() StyleType {
	return parseStyleType(st.el.SelectAttrValue("w:type", ""))
}

func (st *Style) IsDefault() bool {
	v := st.el.SelectAttrValue("w:default", "")
	return v == "1" || v == "true" || v == "on"
}

func (st *Style) Builtin() bool {
	v := st.el.SelectAttrValue("w:customStyle", "")
	return v != "1" && v != "true" && v != "on"
}

func (st *Style) BaseStyle() *Style {
	id := childAttr(st.el, "w:basedOn", "w:val")
	if id == "" {
		return nil
	}
	return st.styles.ByID(id)
}

func (st *Style) SetBaseStyle(base *Style) {
	if base == nil {
		removeChildren(st.el, "w:basedOn")
		return
	}
	getOrAdd(st.el, "w:basedOn", styleOrder).CreateAttr("w:val", base.ID())
}

// Hidden reports w:semiHidden.
func (st *Style) Hidden() bool { return st.el.SelectElement("w:semiHidden") != nil }

func (st *Style) SetHidden(v bool) { st.toggle("w:semiHidden", v) }

func (st *Style) QuickStyle() bool { return st.el.SelectElement("w:qFormat") != nil }

func (st *Style) SetQuickStyle(v bool) { st.toggle("w:qFormat", v) }

func (st *Style) toggle(tag string, v bool) {
	removeChildren(st.el, tag)
	if v {
		getOrAdd(st.el, tag, styleOrder)
	}
}

func (st *Style) Priority() (int, bool) {
	v := childAttr(st.el, "w:uiPriority", "w:val")
	if v == "" {
		return 0, false
	}
	return atoi(v, 0), true
}

func (st *Style) SetPriority(n int) {
	getOrAdd(st.el, "w:uiPriority", styleOrder).CreateAttr("w:val", itoa(n))
}

func (st *Style) ParagraphFormat() *ParagraphFormat {
	return &ParagraphFormat{pPr: props{parent: st.el, tag: "w:pPr", order: styleOrder}}
}

func (st *Style) Font() *Font {
	return &Font{rPr: props{parent: st.el, tag: "w:rPr", order: styleOrder}}
}

// styleName maps a style id referenced from content to a UI name, falling
// back to the default style of the type.
func (d *Document) styleName(id string, t StyleType) string {
	styles, err := d.Styles()
	if err != nil {
		return defaultStyleNames[t]
	}
	if id != "" {
		if st := styles.ByID(id); st != nil && st.Type() == t {
			return st.Name()
		}
	}
	if st := styles.Default(t); st != nil {
		return st.Name()
	}
	return defaultStyleNames[t]
}

// styleID resolves a UI name to the id content should reference. The
// default style of a type is referenced by omission, so it yields "".
func (d *Document) styleID(name string, t StyleType) (string, error) {
	if name == "" {
		return "", nil
	}
	styles, err := d.Styles()
	if err != nil {
		return "", err
	}
	st, err := styles.Resolve(name, t)
	if err != nil {
		return "", err
	}
	if st.IsDefault() {
		return "", nil
	}
	return st.ID(), nil
}

func styleIDFromName(name string) string {
	return strings.ReplaceAll(name, " ", "")
}
