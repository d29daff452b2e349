package docx

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// builtinStyle is a definition Word knows by name but that a document only
// carries once something uses it.
type builtinStyle struct {
	name     string
	id       string
	typ      StyleType
	basedOn  string
	next     string
	priority int
	quick    bool
	pPr      string
	rPr      string
	tblPr    string
}

func (b builtinStyle) styleID() string {
	if b.id != "" {
		return b.id
	}
	return styleIDFromName(b.name)
}

func (b builtinStyle) basedOnID() string { return b.basedOn }

func (b builtinStyle) xml() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<w:style w:type="%s" w:styleId="%s">`, b.typ, b.styleID())
	fmt.Fprintf(&sb, `<w:name w:val="%s"/>`, uiToInternal(b.name))
	if b.basedOn != "" {
		fmt.Fprintf(&sb, `<w:basedOn w:val="%s"/>`, b.basedOn)
	}
	if b.next != "" {
		fmt.Fprintf(&sb, `<w:next w:val="%s"/>`, b.next)
	}
	if b.priority > 0 {
		fmt.Fprintf(&sb, `<w:uiPriority w:val="%d"/>`, b.priority)
	}
	if b.quick {
		sb.WriteString(`<w:qFormat/>`)
	}
	for _, p := range []struct{ tag, inner string }{{"w:pPr", b.pPr}, {"w:rPr", b.rPr}, {"w:tblPr", b.tblPr}} {
		if p.inner != "" {
			fmt.Fprintf(&sb, "<%s>%s</%s>", p.tag, p.inner, p.tag)
		}
	}
	sb.WriteString(`</w:style>`)
	return sb.String()
}

func (b builtinStyle) element() (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(`<w:styles xmlns:w="` + nsW + `">` + b.xml() + `</w:styles>`); err != nil {
		return nil, fmt.Errorf("built-in style %s: %w", b.name, err)
	}
	el := doc.Root().SelectElement("w:style")
	doc.Root().RemoveChild(el)
	return el, nil
}

const (
	compactSpacing = `<w:spacing w:after="0" w:line="240" w:lineRule="auto"/>`
	headerTabs     = `<w:tabs><w:tab w:val="center" w:pos="4680"/><w:tab w:val="right" w:pos="9360"/></w:tabs>`
	lightFont      = `<w:rFonts w:ascii="Calibri Light" w:hAnsi="Calibri Light"/>`
)

func borders(sz int, color string, edges ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:tblBorders>")
	for _, e := range edges {
		fmt.Fprintf(&sb, `<w:%s w:val="single" w:sz="%d" w:space="0" w:color="%s"/>`, e, sz, color)
	}
	sb.WriteString("</w:tblBorders>")
	return sb.String()
}

const banding = `<w:tblStyleRowBandSize w:val="1"/><w:tblStyleColBandSize w:val="1"/>`

var (
	allEdges   = []string{"top", "left", "bottom", "right", "insideH", "insideV"}
	outerEdges = []string{"top", "left", "bottom", "right"}
)

var builtinStyles = func() []builtinStyle {
	styles := []builtinStyle{
		{name: "Title", typ: StyleParagraph, basedOn: "Normal", next: "Normal", priority: 10, quick: true,
			pPr: compactSpacing + `<w:contextualSpacing/>`,
			rPr: lightFont + `<w:spacing w:val="-10"/><w:kern w:val="28"/><w:sz w:val="56"/><w:szCs w:val="56"/>`},
		{name: "Subtitle", typ: StyleParagraph, basedOn: "Normal", next: "Normal", priority: 11, quick: true,
			pPr: `<w:spacing w:after="160"/>`,
			rPr: `<w:color w:val="5A5A5A"/><w:spacing w:val="15"/>`},
		{name: "Quote", typ: StyleParagraph, basedOn: "Normal", next: "Normal", priority: 29, quick: true,
			pPr: `<w:spacing w:before="200" w:after="160"/><w:ind w:left="864" w:right="864"/><w:jc w:val="center"/>`,
			rPr: `<w:i/><w:iCs/><w:color w:val="404040"/>`},
		{name: "Intense Quote", typ: StyleParagraph, basedOn: "Normal", next: "Normal", priority: 30, quick: true,
			pPr: `<w:pBdr><w:top w:val="single" w:sz="4" w:space="10" w:color="4472C4"/><w:bottom w:val="single" w:sz="4" w:space="10" w:color="4472C4"/></w:pBdr>` +
				`<w:spacing w:before="360" w:after="360"/><w:ind w:left="864" w:right="864"/><w:jc w:val="center"/>`,
			rPr: `<w:i/><w:iCs/><w:color w:val="4472C4"/>`},
		{name: "List Paragraph", typ: StyleParagraph, basedOn: "Normal", priority: 34, quick: true,
			pPr: `<w:ind w:left="720"/><w:contextualSpacing/>`},
		{name: "List Bullet", typ: StyleParagraph, basedOn: "Normal", priority: 99,
			pPr: `<w:ind w:left="360" w:hanging="360"/><w:contextualSpacing/>`},
		{name: "List Number", typ: StyleParagraph, basedOn: "Normal", priority: 99,
			pPr: `<w:ind w:left="360" w:hanging="360"/><w:contextualSpacing/>`},
		{name: "Caption", typ: StyleParagraph, basedOn: "Normal", next: "Normal", priority: 35, quick: true,
			pPr: `<w:spacing w:after="200" w:line="240" w:lineRule="auto"/>`,
			rPr: `<w:i/><w:iCs/><w:color w:val="44546A"/><w:sz w:val="18"/><w:szCs w:val="18"/>`},
		{name: "Header", typ: StyleParagraph, basedOn: "Normal", priority: 99,
			pPr: headerTabs + compactSpacing},
		{name: "Footer", typ: StyleParagraph, basedOn: "Normal", priority: 99,
			pPr: headerTabs + compactSpacing},
		{name: "No Spacing", typ: StyleParagraph, priority: 1, quick: true,
			pPr: compactSpacing},
		{name: "Body Text", typ: StyleParagraph, basedOn: "Normal", priority: 99,
			pPr: `<w:spacing w:after="120"/>`},
		{name: "TOC Heading", typ: StyleParagraph, basedOn: "Heading1", next: "Normal", priority: 39, quick: true,
			pPr: `<w:outlineLvl w:val="9"/>`},

		{name: "Strong", typ: StyleCharacter, basedOn: "DefaultParagraphFont", priority: 22, quick: true,
			rPr: `<w:b/><w:bCs/>`},
		{name: "Emphasis", typ: StyleCharacter, basedOn: "DefaultParagraphFont", priority: 20, quick: true,
			rPr: `<w:i/><w:iCs/>`},
		{name: "Intense Emphasis", typ: StyleCharacter, basedOn: "DefaultParagraphFont", priority: 21, quick: true,
			rPr: `<w:i/><w:iCs/><w:color w:val="4472C4"/>`},
		{name: "Subtle Emphasis", typ: StyleCharacter, basedOn: "DefaultParagraphFont", priority: 19, quick: true,
			rPr: `<w:i/><w:iCs/><w:color w:val="404040"/>`},
		{name: "Hyperlink", typ: StyleCharacter, basedOn: "DefaultParagraphFont", priority: 99,
			rPr: `<w:color w:val="0563C1"/><w:u w:val="single"/>`},
		{name: "Book Title", typ: StyleCharacter, basedOn: "DefaultParagraphFont", priority: 33, quick: true,
			rPr: `<w:b/><w:bCs/><w:i/><w:iCs/><w:spacing w:val="5"/>`},

		{name: "Table Grid", typ: StyleTable, basedOn: "TableNormal", priority: 39,
			pPr:   compactSpacing,
			tblPr: borders(4, "auto", allEdges...)},
		{name: "Light Shading", typ: StyleTable, basedOn: "TableNormal", priority: 60,
			pPr:   compactSpacing,
			rPr:   `<w:color w:val="000000"/>`,
			tblPr: banding + borders(8, "000000", "top", "bottom")},
		{name: "Light Shading Accent 1", typ: StyleTable, basedOn: "TableNormal", priority: 60,
			pPr:   compactSpacing,
			rPr:   `<w:color w:val="2F5496"/>`,
			tblPr: banding + borders(8, "4472C4", "top", "bottom")},
		{name: "Light List", typ: StyleTable, basedOn: "TableNormal", priority: 61,
			pPr:   compactSpacing,
			tblPr: banding + borders(8, "000000", outerEdges...)},
		{name: "Light Grid", typ: StyleTable, basedOn: "TableNormal", priority: 62,
			pPr:   compactSpacing,
			tblPr: banding + borders(8, "000000", allEdges...)},
		{name: "Light Grid Accent 1", typ: StyleTable, basedOn: "TableNormal", priority: 62,
			pPr:   compactSpacing,
			tblPr: banding + borders(8, "4472C4", allEdges...)},
		{name: "Medium Shading 1", typ: StyleTable, basedOn: "TableNormal", priority: 63,
			pPr:   compactSpacing,
			tblPr: banding + borders(8, "404040", "top", "left", "bottom", "right", "insideH")},
	}
	sizes := []int{0, 32, 26, 24, 22, 22, 22, 22, 22, 22}
	for level := 1; level <= 9; level++ {
		before := 40
		if level == 1 {
			before = 240
		}
		color := "2F5496"
		if level == 3 || level == 6 {
			color = "1F3763"
		}
		rPr := lightFont
		if level <= 4 {
			rPr += `<w:b/><w:bCs/>`
		}
		if level == 4 || level == 7 {
			rPr += `<w:i/><w:iCs/>`
		}
		rPr += fmt.Sprintf(`<w:color w:val="%s"/><w:sz w:val="%d"/><w:szCs w:val="%d"/>`, color, sizes[level], sizes[level])
		styles = append(styles, builtinStyle{
			name: fmt.Sprintf("Heading %d", level), typ: StyleParagraph,
			basedOn: "Normal", next: "Normal", priority: 9, quick: true,
			pPr: fmt.Sprintf(`<w:keepNext/><w:keepLines/><w:spacing w:before="%d" w:after="0"/><w:outlineLvl w:val="%d"/>`, before, level-1),
			rPr: rPr,
		})
	}
	return styles
}()

func lookupBuiltin(name string) (builtinStyle, bool) {
	ui := internalToUI(name)
	for _, b := range builtinStyles {
		if b.name == ui {
			return b, true
		}
	}
	return builtinStyle{}, false
}

func builtinByID(id string) (builtinStyle, bool) {
	for _, b := range builtinStyles {
		if b.styleID() == id {
			return b, true
		}
	}
	return builtinStyle{}, false
}

// BuiltinStyleNames lists the catalog in definition order.
func BuiltinStyleNames() []string {
	names := make([]string, 0, len(builtinStyles))
	for _, b := range builtinStyles {
		names = append(names, b.name)
	}
	return names
}
