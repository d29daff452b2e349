package docx

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
)

const (
	nsDCTerms = "http://purl.org/dc/terms/"
	nsXSI     = "http://www.w3.org/2001/XMLSchema-instance"
)

// CoreProperties is the docProps/core.xml part: title, author and the
// other Dublin Core metadata Word shows under File > Info.
type CoreProperties struct {
	root *etree.Element
}

func (d *Document) CoreProperties() (*CoreProperties, error) {
	rels, err := d.pkg.Relationships("")
	if err != nil {
		return nil, err
	}
	var name string
	if found := rels.ByType(relTypeCoreProps); len(found) > 0 {
		name = rels.PartName(found[0])
	} else {
		name = "docProps/core.xml"
		data, err := templateFS.ReadFile("template/core.xml")
		if err != nil {
			return nil, err
		}
		d.pkg.SetPart(name, data)
		rels.Add(relTypeCoreProps, name)
		ct, err := d.pkg.ContentTypes()
		if err != nil {
			return nil, err
		}
		ct.AddOverride(name, ctCoreProps)
	}
	x, err := d.pkg.XML(name)
	if err != nil {
		return nil, err
	}
	return &CoreProperties{root: x.Root()}, nil
}

func (c *CoreProperties) text(tag string) string {
	if el := c.root.SelectElement(tag); el != nil {
		return el.Text()
	}
	return ""
}

func (c *CoreProperties) setText(tag, v string) {
	el := c.root.SelectElement(tag)
	if el == nil {
		el = c.root.CreateElement(tag)
	}
	el.SetText(v)
}

func (c *CoreProperties) Title() string              { return c.text("dc:title") }
func (c *CoreProperties) SetTitle(v string)          { c.setText("dc:title", v) }
func (c *CoreProperties) Subject() string            { return c.text("dc:subject") }
func (c *CoreProperties) SetSubject(v string)        { c.setText("dc:subject", v) }
func (c *CoreProperties) Author() string             { return c.text("dc:creator") }
func (c *CoreProperties) SetAuthor(v string)         { c.setText("dc:creator", v) }
func (c *CoreProperties) Keywords() string           { return c.text("cp:keywords") }
func (c *CoreProperties) SetKeywords(v string)       { c.setText("cp:keywords", v) }
func (c *CoreProperties) Category() string           { return c.text("cp:category") }
func (c *CoreProperties) SetCategory(v string)       { c.setText("cp:category", v) }
func (c *CoreProperties) Comments() string           { return c.text("dc:description") }
func (c *CoreProperties) SetComments(v string)       { c.setText("dc:description", v) }
func (c *CoreProperties) LastModifiedBy() string     { return c.text("cp:lastModifiedBy") }
func (c *CoreProperties) SetLastModifiedBy(v string) { c.setText("cp:lastModifiedBy", v) }

func (c *CoreProperties) Revision() int {
	n, _ := strconv.Atoi(c.text("cp:revision"))
	return n
}

func (c *CoreProperties) SetRevision(n int) { c.setText("cp:revision", strconv.Itoa(n)) }

func (c *CoreProperties) date(tag string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, c.text(tag))
	return t, err == nil
}

func (c *CoreProperties) setDate(tag string, t time.Time) {
	ensureNamespace(c.root, "dcterms", nsDCTerms)
	ensureNamespace(c.root, "xsi", nsXSI)
	c.setText(tag, t.UTC().Format("2006-01-02T15:04:05Z"))
	c.root.SelectElement(tag).CreateAttr("xsi:type", "dcterms:W3CDTF")
}

func (c *CoreProperties) Created() (time.Time, bool)  { return c.date("dcterms:created") }
func (c *CoreProperties) SetCreated(t time.Time)      { c.setDate("dcterms:created", t) }
func (c *CoreProperties) Modified() (time.Time, bool) { return c.date("dcterms:modified") }
func (c *CoreProperties) SetModified(t time.Time)     { c.setDate("dcterms:modified", t) }
