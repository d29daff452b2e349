package docx

import (
	"fmt"

	"github.com/beevik/etree"
)

type hfKind struct {
	refTag      string
	relType     string
	contentType string
	rootTag     string
	partPrefix  string
}

var (
	headerKind = hfKind{"w:headerReference", relTypeHeader, ctHeader, "w:hdr", "word/header"}
	footerKind = hfKind{"w:footerReference", relTypeFooter, ctFooter, "w:ftr", "word/footer"}
)

// HeaderFooter is the default header or footer of a section. Without a
// definition of its own it is linked to the previous section's.
type HeaderFooter struct {
	section *Section
	kind    hfKind
}

func (h *HeaderFooter) reference() *etree.Element {
	for _, ref := range h.section.el.SelectElements(h.kind.refTag) {
		if ref.SelectAttrValue("w:type", "default") == "default" {
			return ref
		}
	}
	return nil
}

func (h *HeaderFooter) IsLinked() bool {
	return h.reference() == nil
}

// SetLinked toggles linkage. Unlinking creates an empty definition part;
// linking drops the definition, deleting its part once nothing else
// refers to it.
func (h *HeaderFooter) SetLinked(linked bool) error {
	d := h.section.doc
	ref := h.reference()
	if linked {
		if ref == nil {
			return nil
		}
		id := ref.SelectAttrValue("r:id", "")
		h.section.el.RemoveChild(ref)
		return d.dropRel(id)
	}
	if ref != nil {
		return nil
	}

	name := d.nextPartName(h.kind.partPrefix, ".xml")
	root := etree.NewElement(h.kind.rootTag)
	root.CreateAttr("xmlns:w", nsW)
	root.CreateAttr("xmlns:r", nsR)
	root.CreateElement("w:p")
	d.pkg.SetXML(name, newXMLDocument(root))

	ct, err := d.pkg.ContentTypes()
	if err != nil {
		return err
	}
	ct.AddOverride(name, h.kind.contentType)
	rels, err := d.pkg.Relationships(d.part)
	if err != nil {
		return err
	}
	id := rels.Add(h.kind.relType, relativeTarget(d.part, name))

	ensureNamespace(d.root, "r", nsR)
	ref = etree.NewElement(h.kind.refTag)
	ref.CreateAttr("w:type", "default")
	ref.CreateAttr("r:id", id)
	insertOrdered(h.section.el, ref, sectPrOrder)
	return nil
}

// Content returns the story of the section's own definition.
func (h *HeaderFooter) Content() (*BlockContainer, error) {
	ref := h.reference()
	if ref == nil {
		return nil, ErrLinkedToPrevious
	}
	d := h.section.doc
	rels, err := d.pkg.Relationships(d.part)
	if err != nil {
		return nil, err
	}
	rel, ok := rels.ByID(ref.SelectAttrValue("r:id", ""))
	if !ok {
		return nil, fmt.Errorf("%w: dangling %s", ErrInvalidPackage, h.kind.refTag)
	}
	name := rels.PartName(rel)
	x, err := d.pkg.XML(name)
	if err != nil {
		return nil, err
	}
	return &BlockContainer{el: x.Root(), doc: d, part: name}, nil
}

// dropRel removes a relationship of the main part once no element refers
// to it, and the target part once no relationship targets it.
func (d *Document) dropRel(id string) error {
	if id == "" || countRefs(d.root, id) > 0 {
		return nil
	}
	rels, err := d.pkg.Relationships(d.part)
	if err != nil {
		return err
	}
	rel, ok := rels.ByID(id)
	if !ok {
		return nil
	}
	rels.Remove(id)
	if rel.TargetMode == "External" {
		return nil
	}
	name := rels.PartName(rel)
	for _, other := range rels.All() {
		if other.TargetMode != "External" && rels.PartName(other) == name {
			return nil
		}
	}
	d.pkg.Remove(name)
	d.pkg.Remove(relsPartName(name))
	ct, err := d.pkg.ContentTypes()
	if err != nil {
		return err
	}
	ct.RemoveOverride(name)
	return nil
}

func countRefs(el *etree.Element, id string) int {
	n := 0
	for _, a := range el.Attr {
		if a.Space == "r" && a.Value == id {
			n++
		}
	}
	for _, c := range el.ChildElements() {
		n += countRefs(c, id)
	}
	return n
}
