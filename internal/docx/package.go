package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/beevik/etree"
)

const (
	contentTypesPart = "[Content_Types].xml"
	packageRelsPart  = "_rels/.rels"

	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// Package is an Open Packaging Conventions container: a zip of parts tied
// together by relationship parts and a content type map. XML parts are
// parsed on first access and serialized back from the tree on write.
type Package struct {
	order []string
	raw   map[string][]byte
	xml   map[string]*etree.Document
}

func newPackage() *Package {
	return &Package{
		raw: make(map[string][]byte),
		xml: make(map[string]*etree.Document),
	}
}

func readPackage(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPackage, err)
	}
	p := newPackage()
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPackage, f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPackage, f.Name, err)
		}
		p.SetPart(f.Name, data)
	}
	if !p.Has(contentTypesPart) {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidPackage, contentTypesPart)
	}
	return p, nil
}

func (p *Package) Has(name string) bool {
	if _, ok := p.xml[name]; ok {
		return true
	}
	_, ok := p.raw[name]
	return ok
}

func (p *Package) Names() []string {
	return slices.Clone(p.order)
}

// Part returns the bytes of a part as they would be written.
func (p *Package) Part(name string) ([]byte, bool) {
	if doc, ok := p.xml[name]; ok {
		b, err := doc.WriteToBytes()
		return b, err == nil
	}
	b, ok := p.raw[name]
	return b, ok
}

func (p *Package) SetPart(name string, data []byte) {
	if !p.Has(name) {
		p.order = append(p.order, name)
	}
	delete(p.xml, name)
	p.raw[name] = data
}

func (p *Package) SetXML(name string, doc *etree.Document) {
	if !p.Has(name) {
		p.order = append(p.order, name)
	}
	delete(p.raw, name)
	p.xml[name] = doc
}

func (p *Package) Remove(name string) {
	delete(p.raw, name)
	delete(p.xml, name)
	p.order = slices.DeleteFunc(p.order, func(n string) bool { return n == name })
}

// XML returns the parsed tree of an XML part.
func (p *Package) XML(name string) (*etree.Document, error) {
	if doc, ok := p.xml[name]; ok {
		return doc, nil
	}
	data, ok := p.raw[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing part %s", ErrInvalidPackage, name)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPackage, name, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: %s has no root element", ErrInvalidPackage, name)
	}
	delete(p.raw, name)
	p.xml[name] = doc
	return doc, nil
}

// Write serializes the package as a zip archive. The content type map and
// package relationships are written first, as Word expects.
func (p *Package) Write(w io.Writer) error {
	names := p.Names()
	slices.SortStableFunc(names, func(a, b string) int {
		return partRank(a) - partRank(b)
	})
	for _, name := range names {
		if x, ok := p.xml[name]; ok {
			if err := checkXMLText(x.Root()); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	zw := zip.NewWriter(w)
	for _, name := range names {
		data, ok := p.Part(name)
		if !ok {
			return fmt.Errorf("serialize part %s", name)
		}
		fw, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// checkXMLText walks el for text or attribute values holding characters
// outside the XML 1.0 Char production. etree would write U+FFFD for them.
func checkXMLText(el *etree.Element) error {
	for _, a := range el.Attr {
		if err := ValidText(a.Value); err != nil {
			return fmt.Errorf("attribute %s: %w", a.FullKey(), err)
		}
	}
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			if err := checkXMLText(t); err != nil {
				return err
			}
		case *etree.CharData:
			if err := ValidText(t.Data); err != nil {
				return fmt.Errorf("%s: %w", el.FullTag(), err)
			}
		}
	}
	return nil
}

// ValidText reports ErrInvalidXMLText for invalid UTF-8, NUL and control
// characters other than tab, newline and carriage return, U+FFFE and U+FFFF.
func ValidText(s string) error {
	for i, r := range s {
		if !isXMLChar(r) || (r == utf8.RuneError && isBadUTF8(s[i:])) {
			return fmt.Errorf("%w: %U at byte %d", ErrInvalidXMLText, r, i)
		}
	}
	return nil
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r < 0x20:
		return false
	case r >= 0xD800 && r <= 0xDFFF, r == 0xFFFE, r == 0xFFFF:
		return false
	}
	return r <= unicode.MaxRune
}

func isBadUTF8(s string) bool {
	_, size := utf8.DecodeRuneInString(s)
	return size <= 1
}

func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func partRank(name string) int {
	switch name {
	case contentTypesPart:
		return 0
	case packageRelsPart:
		return 1
	}
	return 2
}

func newXMLDocument(root *etree.Element) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	doc.SetRoot(root)
	return doc
}

// Relationship is one entry of a .rels part.
type Relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

// Relationships wraps the .rels part belonging to a source part.
type Relationships struct {
	source string
	root   *etree.Element
}

func relsPartName(source string) string {
	if source == "" {
		return packageRelsPart
	}
	dir, file := path.Split(source)
	return dir + "_rels/" + file + ".rels"
}

// Relationships returns the relationships of a source part ("" for the
// package itself), creating an empty .rels part when none exists.
func (p *Package) Relationships(source string) (*Relationships, error) {
	name := relsPartName(source)
	if !p.Has(name) {
		root := etree.NewElement("Relationships")
		root.CreateAttr("xmlns", nsRelationships)
		p.SetXML(name, newXMLDocument(root))
	}
	doc, err := p.XML(name)
	if err != nil {
		return nil, err
	}
	return &Relationships{source: source, root: doc.Root()}, nil
}

func (r *Relationships) All() []Relationship {
	var rels []Relationship
	for _, el := range r.root.SelectElements("Relationship") {
		rels = append(rels, Relationship{
			ID:         el.SelectAttrValue("Id", ""),
			Type:       el.SelectAttrValue("Type", ""),
			Target:     el.SelectAttrValue("Target", ""),
			TargetMode: el.SelectAttrValue("TargetMode", ""),
		})
	}
	return rels
}

func (r *Relationships) ByID(id string) (Relationship, bool) {
	for _, rel := range r.All() {
		if rel.ID == id {
			return rel, true
		}
	}
	return Relationship{}, false
}

func (r *Relationships) ByType(relType string) []Relationship {
	var rels []Relationship
	for _, rel := range r.All() {
		if rel.Type == relType {
			rels = append(rels, rel)
		}
	}
	return rels
}

// PartName resolves the target of an internal relationship to a part name.
func (r *Relationships) PartName(rel Relationship) string {
	if strings.HasPrefix(rel.Target, "/") {
		return rel.Target[1:]
	}
	return path.Join(path.Dir(r.source), rel.Target)
}

func (r *Relationships) Add(relType, target string) string {
	next := 1
	for _, rel := range r.All() {
		if n, err := strconv.Atoi(strings.TrimPrefix(rel.ID, "rId")); err == nil && n >= next {
			next = n + 1
		}
	}
	id := "rId" + strconv.Itoa(next)
	el := r.root.CreateElement("Relationship")
	el.CreateAttr("Id", id)
	el.CreateAttr("Type", relType)
	el.CreateAttr("Target", target)
	return id
}

func (r *Relationships) Remove(id string) {
	for _, el := range r.root.SelectElements("Relationship") {
		if el.SelectAttrValue("Id", "") == id {
			r.root.RemoveChild(el)
		}
	}
}

// ContentTypes wraps [Content_Types].xml.
type ContentTypes struct {
	root *etree.Element
}

func (p *Package) ContentTypes() (*ContentTypes, error) {
	doc, err := p.XML(contentTypesPart)
	if err != nil {
		return nil, err
	}
	return &ContentTypes{root: doc.Root()}, nil
}

func (c *ContentTypes) AddDefault(ext, contentType string) {
	for _, el := range c.root.SelectElements("Default") {
		if strings.EqualFold(el.SelectAttrValue("Extension", ""), ext) {
			return
		}
	}
	el := etree.NewElement("Default")
	el.CreateAttr("Extension", ext)
	el.CreateAttr("ContentType", contentType)
	// Defaults precede overrides by convention.
	if first := c.root.SelectElement("Override"); first != nil {
		c.root.InsertChildAt(first.Index(), el)
		return
	}
	c.root.AddChild(el)
}

func (c *ContentTypes) AddOverride(part, contentType string) {
	c.RemoveOverride(part)
	el := c.root.CreateElement("Override")
	el.CreateAttr("PartName", "/"+part)
	el.CreateAttr("ContentType", contentType)
}

func (c *ContentTypes) RemoveOverride(part string) {
	for _, el := range c.root.SelectElements("Override") {
		if el.SelectAttrValue("PartName", "") == "/"+part {
			c.root.RemoveChild(el)
		}
	}
}
