package docx

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/beevik/etree"
)

//go:embed template/*.xml
var templateFS embed.FS

// Parts of a blank document, in the order they are written.
var templateParts = []struct{ file, part string }{
	{"content_types.xml", contentTypesPart},
	{"package_rels.xml", packageRelsPart},
	{"document.xml", "word/document.xml"},
	{"document_rels.xml", "word/_rels/document.xml.rels"},
	{"styles.xml", "word/styles.xml"},
	{"settings.xml", "word/settings.xml"},
	{"core.xml", "docProps/core.xml"},
	{"app.xml", "docProps/app.xml"},
}

// Document is an in-memory WordprocessingML package.
type Document struct {
	pkg    *Package
	part   string
	root   *etree.Element
	body   *etree.Element
	styles *Styles
}

// New returns a blank letter-size document carrying only the default
// styles.
func New() (*Document, error) {
	pkg := newPackage()
	for _, t := range templateParts {
		data, err := templateFS.ReadFile("template/" + t.file)
		if err != nil {
			return nil, err
		}
		pkg.SetPart(t.part, data)
	}
	d, err := load(pkg)
	if err != nil {
		return nil, err
	}
	props, err := d.CoreProperties()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	props.SetCreated(now)
	props.SetModified(now)
	return d, nil
}

// Open reads a .docx file from disk.
func Open(name string) (*Document, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return Read(bytes.NewReader(data), int64(len(data)))
}

func Read(r io.ReaderAt, size int64) (*Document, error) {
	pkg, err := readPackage(r, size)
	if err != nil {
		return nil, err
	}
	return load(pkg)
}

func load(pkg *Package) (*Document, error) {
	rels, err := pkg.Relationships("")
	if err != nil {
		return nil, err
	}
	main := rels.ByType(relTypeOfficeDocument)
	if len(main) == 0 {
		return nil, fmt.Errorf("%w: no main document part", ErrInvalidPackage)
	}
	part := rels.PartName(main[0])
	x, err := pkg.XML(part)
	if err != nil {
		return nil, err
	}
	root := x.Root()
	if root.FullTag() != "w:document" {
		return nil, fmt.Errorf("%w: main part root is %s", ErrInvalidPackage, root.FullTag())
	}
	body := root.SelectElement("w:body")
	if body == nil {
		return nil, fmt.Errorf("%w: document has no body", ErrInvalidPackage)
	}
	return &Document{pkg: pkg, part: part, root: root, body: body}, nil
}

func (d *Document) Package() *Package { return d.pkg }

func (d *Document) Write(w io.Writer) error {
	return d.pkg.Write(w)
}

func (d *Document) Bytes() ([]byte, error) {
	return d.pkg.Bytes()
}

// Body is the main story of the document.
func (d *Document) Body() *BlockContainer {
	return &BlockContainer{el: d.body, doc: d, part: d.part}
}

func (d *Document) Paragraphs() []*Paragraph { return d.Body().Paragraphs() }
func (d *Document) Tables() []*Table         { return d.Body().Tables() }

func (d *Document) AddParagraph(text string) *Paragraph {
	return d.Body().AddParagraph(text)
}

// AddHeading appends a paragraph styled "Title" for level 0 and
// "Heading N" otherwise.
func (d *Document) AddHeading(text string, level int) (*Paragraph, error) {
	if level < 0 || level > 9 {
		return nil, ErrInvalidHeadingLevel
	}
	name := "Title"
	if level > 0 {
		name = fmt.Sprintf("Heading %d", level)
	}
	p := d.AddParagraph(text)
	if err := p.SetStyle(name); err != nil {
		p.Remove()
		return nil, err
	}
	return p, nil
}

// AddTable appends a rows x cols table whose columns share the text width
// of the last section evenly.
func (d *Document) AddTable(rows, cols int) *Table {
	return d.Body().AddTable(rows, cols, d.TextWidth())
}

// TextWidth is the width between the margins of the last section.
func (d *Document) TextWidth() Length {
	sections := d.Sections()
	if len(sections) == 0 {
		return Inches(6.5)
	}
	s := sections[len(sections)-1]
	w := s.PageWidth() - s.LeftMargin() - s.RightMargin()
	if w <= 0 {
		return Inches(6.5)
	}
	return w
}

// Sections lists section properties in document order: those carried by
// paragraph marks followed by the body's trailing sectPr.
func (d *Document) Sections() []*Section {
	var sections []*Section
	for _, p := range d.body.SelectElements("w:p") {
		if pPr := p.SelectElement("w:pPr"); pPr != nil {
			if s := pPr.SelectElement("w:sectPr"); s != nil {
				sections = append(sections, &Section{el: s, doc: d})
			}
		}
	}
	if s := d.body.SelectElement("w:sectPr"); s != nil {
		sections = append(sections, &Section{el: s, doc: d})
	}
	return sections
}

// AddSection ends the current last section with a section break and
// returns the new last section. The new section inherits page geometry but
// not header or footer definitions.
func (d *Document) AddSection(start StartType) *Section {
	sentinel := d.body.SelectElement("w:sectPr")
	if sentinel == nil {
		sentinel = d.body.CreateElement("w:sectPr")
	}
	p := d.Body().AddParagraph("")
	pPr := p.pPr().ensure()
	insertOrdered(pPr, sentinel.Copy(), pPrOrder)
	removeChildren(sentinel, "w:headerReference")
	removeChildren(sentinel, "w:footerReference")
	s := &Section{el: sentinel, doc: d}
	s.SetStartType(start)
	return s
}

// Text is the body's paragraph text, one paragraph per line.
func (d *Document) Text() string {
	return d.Body().Text()
}

// Styles returns the styles part, creating a default one if the package
// lacks it.
func (d *Document) Styles() (*Styles, error) {
	if d.styles != nil {
		return d.styles, nil
	}
	rels, err := d.pkg.Relationships(d.part)
	if err != nil {
		return nil, err
	}
	var name string
	if found := rels.ByType(relTypeStyles); len(found) > 0 {
		name = rels.PartName(found[0])
	} else {
		name = path.Join(path.Dir(d.part), "styles.xml")
		data, err := templateFS.ReadFile("template/styles.xml")
		if err != nil {
			return nil, err
		}
		d.pkg.SetPart(name, data)
		rels.Add(relTypeStyles, relativeTarget(d.part, name))
		ct, err := d.pkg.ContentTypes()
		if err != nil {
			return nil, err
		}
		ct.AddOverride(name, ctStyles)
	}
	x, err := d.pkg.XML(name)
	if err != nil {
		return nil, err
	}
	d.styles = &Styles{doc: d, root: x.Root()}
	return d.styles, nil
}

// relativeTarget expresses part as a relationship target relative to the
// directory of source.
func relativeTarget(source, part string) string {
	dir := path.Dir(source) + "/"
	if strings.HasPrefix(part, dir) {
		return strings.TrimPrefix(part, dir)
	}
	return "/" + part
}

// nextPartName returns the first unused name of the form prefix<N>suffix.
func (d *Document) nextPartName(prefix, suffix string) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s%d%s", prefix, i, suffix)
		if !d.pkg.Has(name) {
			return name
		}
	}
}
