package docx

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func newDoc(t *testing.T) *Document {
	t.Helper()
	d, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

// roundTrip serializes and re-reads a document.
func roundTrip(t *testing.T, d *Document) *Document {
	t.Helper()
	data, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	out, err := Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return out
}

func TestNewDocumentDefaults(t *testing.T) {
	d := newDoc(t)
	styles, err := d.Styles()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, s := range styles.All() {
		names = append(names, s.Name())
	}
	want := "Normal,Default Paragraph Font,Normal Table,No List"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("styles = %q, want %q", got, want)
	}
	sections := d.Sections()
	if len(sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(sections))
	}
	s := sections[0]
	if s.PageWidth() != Inches(8.5) || s.PageHeight() != Inches(11) {
		t.Errorf("page = %v x %v", s.PageWidth().Inches(), s.PageHeight().Inches())
	}
	if s.LeftMargin() != Inches(1) || s.HeaderDistance() != Inches(0.5) {
		t.Errorf("margins = %v / %v", s.LeftMargin().Inches(), s.HeaderDistance().Inches())
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	data := []byte("this is not a zip file")
	if _, err := Read(bytes.NewReader(data), int64(len(data))); !errors.Is(err, ErrInvalidPackage) {
		t.Errorf("err = %v, want ErrInvalidPackage", err)
	}
}

func TestHeadingMaterializesStyle(t *testing.T) {
	d := newDoc(t)
	p, err := d.AddHeading("Intro", 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.StyleName(); got != "Heading 1" {
		t.Errorf("style = %q", got)
	}
	if _, err := d.AddHeading("x", 10); !errors.Is(err, ErrInvalidHeadingLevel) {
		t.Errorf("level 10: err = %v", err)
	}
	d = roundTrip(t, d)
	styles, _ := d.Styles()
	st := styles.Find("Heading 1", StyleParagraph)
	if st == nil {
		t.Fatal("Heading 1 not stored")
	}
	if st.ID() != "Heading1" {
		t.Errorf("id = %q", st.ID())
	}
	if base := st.BaseStyle(); base == nil || base.Name() != "Normal" {
		t.Errorf("base style = %v", base)
	}
	if got := d.Paragraphs()[0].StyleName(); got != "Heading 1" {
		t.Errorf("after reload style = %q", got)
	}
}

func TestResolveUnknownAndMismatchedStyles(t *testing.T) {
	d := newDoc(t)
	p := d.AddParagraph("x")
	if err := p.SetStyle("No Such Style"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("unknown: err = %v", err)
	}
	if err := p.SetStyle("Table Grid"); !errors.Is(err, ErrStyleTypeMismatch) {
		t.Errorf("table style on paragraph: err = %v", err)
	}
	if err := p.SetStyle("Normal"); err != nil {
		t.Fatal(err)
	}
	if p.el.SelectElement("w:pPr") != nil && p.el.SelectElement("w:pPr").SelectElement("w:pStyle") != nil {
		t.Error("default style should be referenced by omission")
	}
}

func TestTOCHeadingPullsInBaseStyle(t *testing.T) {
	d := newDoc(t)
	if err := d.AddParagraph("Contents").SetStyle("TOC Heading"); err != nil {
		t.Fatal(err)
	}
	styles, _ := d.Styles()
	if styles.ByID("Heading1") == nil {
		t.Error("Heading1 should be defined as the base of TOC Heading")
	}
}

func TestAddStyle(t *testing.T) {
	d := newDoc(t)
	styles, _ := d.Styles()
	st, err := styles.Add("My Style", StyleParagraph)
	if err != nil {
		t.Fatal(err)
	}
	if st.ID() != "MyStyle" || st.Builtin() {
		t.Errorf("id = %q builtin = %v", st.ID(), st.Builtin())
	}
	if _, err := styles.Add("My Style", StyleCharacter); !errors.Is(err, ErrStyleExists) {
		t.Errorf("duplicate: err = %v", err)
	}
	st.SetBaseStyle(styles.ByName("Normal"))
	st.SetPriority(5)
	st.SetQuickStyle(true)
	st.Font().SetBold(true)
	if n, ok := st.Priority(); !ok || n != 5 {
		t.Errorf("priority = %d, %v", n, ok)
	}
	if b := st.Font().Bold(); b == nil || !*b {
		t.Error("bold not set")
	}
	if err := d.AddParagraph("custom").SetStyle("My Style"); err != nil {
		t.Fatal(err)
	}
}

func TestParagraphFormatIsSparse(t *testing.T) {
	d := newDoc(t)
	f := d.AddParagraph("x").Format()
	f.SetSpaceAfter(Pt(12))
	f.SetAlignment(AlignCenter)
	f.SetFirstLineIndent(-Inches(0.25))
	f.SetLineSpacingMultiple(1.5)
	f.SetKeepWithNext(true)

	d = roundTrip(t, d)
	f = d.Paragraphs()[0].Format()
	if l, ok := f.SpaceAfter(); !ok || l != Pt(12) {
		t.Errorf("space after = %v %v", l.Pt(), ok)
	}
	if a, _ := f.Alignment(); a != AlignCenter {
		t.Errorf("alignment = %q", a)
	}
	if l, _ := f.FirstLineIndent(); l != -Inches(0.25) {
		t.Errorf("first line = %v", l.Inches())
	}
	if ls, _ := f.LineSpacing(); ls.Multiple != 1.5 {
		t.Errorf("line spacing = %+v", ls)
	}
	if v := f.KeepWithNext(); v == nil || !*v {
		t.Error("keep with next lost")
	}
	if v := f.KeepTogether(); v != nil {
		t.Error("keep together should be unset")
	}

	// pStyle must stay first in pPr even when added after other properties.
	p := d.Paragraphs()[0]
	if err := p.SetStyle("Quote"); err != nil {
		t.Fatal(err)
	}
	if first := p.el.SelectElement("w:pPr").ChildElements()[0]; first.FullTag() != "w:pStyle" {
		t.Errorf("first pPr child = %s", first.FullTag())
	}
}

func TestRunTextAndFont(t *testing.T) {
	d := newDoc(t)
	p := d.AddParagraph("a")
	r := p.AddRun(" b\tc\nd")
	r.Font().SetName("Arial")
	r.Font().SetSize(Pt(14))
	r.Font().SetUnderline(true)
	r.Font().SetColor(RGBColor{0xFF, 0, 0x10})
	if got := p.Text(); got != "a b\tc\nd" {
		t.Errorf("text = %q", got)
	}
	d = roundTrip(t, d)
	runs := d.Paragraphs()[0].Runs()
	if len(runs) != 2 {
		t.Fatalf("runs = %d", len(runs))
	}
	font := runs[1].Font()
	if font.Name() != "Arial" {
		t.Errorf("name = %q", font.Name())
	}
	if s, _ := font.Size(); s != Pt(14) {
		t.Errorf("size = %v", s.Pt())
	}
	if c, _ := font.Color(); c.String() != "FF0010" {
		t.Errorf("color = %s", c)
	}
	if u := font.Underline(); u == nil || !*u {
		t.Error("underline lost")
	}
	if runs[1].StyleName() != "Default Paragraph Font" {
		t.Errorf("run style = %q", runs[1].StyleName())
	}
}

func fillTable(tbl *Table) {
	for r, row := range tbl.Rows() {
		for c, cell := range row.Cells() {
			cell.SetText(string(rune('a'+r*10+c)))
		}
	}
}

func TestTableMergeRectangle(t *testing.T) {
	d := newDoc(t)
	tbl := d.AddTable(3, 3)
	fillTable(tbl)
	cell, err := tbl.Merge(1, 1, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := cell.Text(); got != "a\nb\nk\nl" {
		t.Errorf("merged text = %q", got)
	}
	d = roundTrip(t, d)
	tbl = d.Tables()[0]
	if n := tbl.ColumnCount(); n != 3 {
		t.Errorf("columns = %d", n)
	}
	cells := tbl.Rows()[1].Cells()
	if len(cells) != 3 {
		t.Fatalf("row 1 cells = %d", len(cells))
	}
	if cells[0].el != cells[1].el {
		t.Error("merged grid positions should share a cell")
	}
	topLeft, _ := tbl.Cell(0, 0)
	if cells[0].el != topLeft.el {
		t.Error("continuation should resolve to the merge origin")
	}
	if got := cells[2].Text(); got != "m" {
		t.Errorf("unmerged cell = %q", got)
	}
}

func TestTableMergeRejectsPartialOverlap(t *testing.T) {
	d := newDoc(t)
	tbl := d.AddTable(3, 3)
	if _, err := tbl.Merge(0, 1, 0, 2); err != nil {
		t.Fatal(err)
	}
	// (0,1) spans two columns, so a 2x2 rectangle from the corner cuts it.
	if _, err := tbl.Merge(0, 0, 1, 1); !errors.Is(err, ErrInvalidSpan) {
		t.Errorf("err = %v, want ErrInvalidSpan", err)
	}
	if _, err := tbl.Merge(0, 0, 0, 5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("out of range column: err = %v", err)
	}
}

func TestTableStyleAndWidth(t *testing.T) {
	d := newDoc(t)
	tbl := d.AddTable(1, 2)
	if tbl.StyleName() != "Normal Table" {
		t.Errorf("default table style = %q", tbl.StyleName())
	}
	if err := tbl.SetStyle("Light Grid Accent 1"); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetColumnWidth(1, Inches(2)); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetColumnWidth(2, Inches(2)); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v", err)
	}
	cell, _ := tbl.Cell(0, 0)
	cell.SetShading(RGBColor{0xEE, 0xEE, 0xEE})
	cell.SetVerticalAlignment(VAlignCenter)

	d = roundTrip(t, d)
	tbl = d.Tables()[0]
	if tbl.StyleName() != "Light Grid Accent 1" {
		t.Errorf("style = %q", tbl.StyleName())
	}
	cell, _ = tbl.Cell(0, 0)
	if c, ok := cell.Shading(); !ok || c.String() != "EEEEEE" {
		t.Errorf("shading = %s %v", c, ok)
	}
	if v, _ := cell.VerticalAlignment(); v != VAlignCenter {
		t.Errorf("valign = %q", v)
	}
}

func TestAddSectionAndHeaderLinkage(t *testing.T) {
	d := newDoc(t)
	first := d.Sections()[0]
	if !first.Header().IsLinked() {
		t.Fatal("fresh section should be linked")
	}
	if err := first.Header().SetLinked(false); err != nil {
		t.Fatal(err)
	}
	content, err := first.Header().Content()
	if err != nil {
		t.Fatal(err)
	}
	content.Paragraphs()[0].SetText("Company")

	second := d.AddSection(StartOddPage)
	if got := len(d.Sections()); got != 2 {
		t.Fatalf("sections = %d", got)
	}
	if second.StartType() != StartOddPage {
		t.Errorf("start = %v", second.StartType())
	}
	if !second.Header().IsLinked() {
		t.Error("new section should inherit the header by linkage")
	}
	if d.Sections()[0].Header().IsLinked() {
		t.Error("first section lost its header definition")
	}

	d = roundTrip(t, d)
	hdr := d.Sections()[0].Header()
	content, err = hdr.Content()
	if err != nil {
		t.Fatal(err)
	}
	if got := content.Text(); got != "Company" {
		t.Errorf("header text = %q", got)
	}
	if _, err := d.Sections()[1].Header().Content(); !errors.Is(err, ErrLinkedToPrevious) {
		t.Errorf("linked content: err = %v", err)
	}

	if !d.pkg.Has("word/header1.xml") {
		t.Fatal("header part missing")
	}
	if err := hdr.SetLinked(true); err != nil {
		t.Fatal(err)
	}
	if d.pkg.Has("word/header1.xml") {
		t.Error("unreferenced header part should be dropped")
	}
}

func TestOrientationAndStartType(t *testing.T) {
	d := newDoc(t)
	s := d.Sections()[0]
	s.SetOrientation(Landscape)
	s.SetStartType(StartContinuous)
	if s.Orientation() != Landscape || s.StartType() != StartContinuous {
		t.Errorf("orientation=%v start=%v", s.Orientation(), s.StartType())
	}
	s.SetStartType(StartNewPage)
	if s.el.SelectElement("w:type") != nil {
		t.Error("NEW_PAGE should be stored by omission")
	}
	if st, ok := ParseStartType("even_page"); !ok || st != StartEvenPage {
		t.Errorf("parse = %v %v", st, ok)
	}
}

func TestDifferentFirstPage(t *testing.T) {
	d := newDoc(t)
	s := d.Sections()[0]
	if s.DifferentFirstPage() {
		t.Fatal("fresh section has a different first page")
	}
	s.SetDifferentFirstPage(true)
	d = roundTrip(t, d)
	s = d.Sections()[0]
	if !s.DifferentFirstPage() {
		t.Error("titlePg not kept")
	}
	// w:titlePg comes after w:pgMar and before w:docGrid
	var tags []string
	for _, c := range s.el.ChildElements() {
		tags = append(tags, c.FullTag())
	}
	order := strings.Join(tags, " ")
	if strings.Index(order, "w:pgMar") > strings.Index(order, "w:titlePg") {
		t.Errorf("sectPr order = %s", order)
	}
	s.SetDifferentFirstPage(false)
	if s.DifferentFirstPage() || s.el.SelectElement("w:titlePg") != nil {
		t.Error("titlePg not removed")
	}
}

func TestCopyPageSetup(t *testing.T) {
	d := newDoc(t)
	src := d.Sections()[0]
	src.SetOrientation(Landscape)
	src.SetPageWidth(Inches(14))
	src.SetPageHeight(Inches(8.5))
	src.SetLeftMargin(Inches(0.5))
	src.SetFooterDistance(Inches(0.3))
	d.AddSection(StartNewPage)

	secs := d.Sections()
	dst := secs[1]
	dst.SetOrientation(Portrait)
	dst.SetPageWidth(Inches(8.5))
	dst.SetTopMargin(Inches(2))
	dst.CopyPageSetup(secs[0])

	d = roundTrip(t, d)
	dst = d.Sections()[1]
	if dst.Orientation() != Landscape {
		t.Error("orientation not copied")
	}
	if dst.PageWidth() != Inches(14) || dst.PageHeight() != Inches(8.5) {
		t.Errorf("page = %.2f x %.2f", dst.PageWidth().Inches(), dst.PageHeight().Inches())
	}
	if dst.LeftMargin() != Inches(0.5) || dst.TopMargin() != Inches(1) || dst.FooterDistance() != Inches(0.3) {
		t.Errorf("margins left=%.2f top=%.2f footer=%.2f", dst.LeftMargin().Inches(), dst.TopMargin().Inches(), dst.FooterDistance().Inches())
	}

	// copying back the other way clears orientation again
	src = d.Sections()[0]
	src.SetOrientation(Portrait)
	dst.CopyPageSetup(src)
	if dst.el.SelectElement("w:pgSz").SelectAttr("w:orient") != nil {
		t.Error("orient attribute left behind")
	}
}

func TestSimpleFields(t *testing.T) {
	d := newDoc(t)
	p := d.AddParagraph("Page ")
	p.AddField("PAGE", "1")
	p.AddRun(" of ")
	p.AddField(" NUMPAGES ", "1")

	d = roundTrip(t, d)
	p = d.Paragraphs()[0]
	if got := p.Text(); got != "Page 1 of 1" {
		t.Errorf("text = %q", got)
	}
	fields := p.Fields()
	if len(fields) != 2 || fields[0] != "PAGE" || fields[1] != "NUMPAGES" {
		t.Errorf("fields = %q", fields)
	}
	if instr := p.el.SelectElement("w:fldSimple").SelectAttrValue("w:instr", ""); instr != " PAGE " {
		t.Errorf("instr = %q", instr)
	}
}

func TestFooterPicture(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	d := newDoc(t)
	ftr := d.Sections()[0].Footer()
	if err := ftr.SetLinked(false); err != nil {
		t.Fatal(err)
	}
	c, err := ftr.Content()
	if err != nil {
		t.Fatal(err)
	}
	info, err := c.Paragraphs()[0].AddPicture(buf.Bytes(), "logo", Inches(1))
	if err != nil {
		t.Fatal(err)
	}
	if info.Height != Inches(0.5) {
		t.Errorf("height = %.2f", info.Height.Inches())
	}

	d = roundTrip(t, d)
	c, err = d.Sections()[0].Footer().Content()
	if err != nil {
		t.Fatal(err)
	}
	if n := len(c.Paragraphs()); n != 1 {
		t.Errorf("footer paragraphs = %d, the picture belongs in the first one", n)
	}
	rels, err := d.pkg.Relationships(c.part)
	if err != nil {
		t.Fatal(err)
	}
	imgs := rels.ByType(relTypeImage)
	if len(imgs) != 1 || rels.PartName(imgs[0]) != info.Part {
		t.Errorf("footer image relationships = %+v", imgs)
	}
	if body, _ := d.pkg.Relationships(d.part); len(body.ByType(relTypeImage)) != 0 {
		t.Error("image related to the main document part")
	}
}

func TestAddPicture(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 144, 72))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	d := newDoc(t)
	_, info, err := d.AddPicture(buf.Bytes(), "logo.png", Inches(4))
	if err != nil {
		t.Fatal(err)
	}
	if info.Width != Inches(4) || info.Height != Inches(2) {
		t.Errorf("size = %v x %v", info.Width.Inches(), info.Height.Inches())
	}
	if !strings.HasPrefix(info.Part, "word/media/image-") || !strings.HasSuffix(info.Part, ".png") {
		t.Errorf("part = %q", info.Part)
	}
	d = roundTrip(t, d)
	if !d.pkg.Has(info.Part) {
		t.Error("media part not written")
	}
	if _, _, err := d.AddPicture([]byte("plain text"), "x", 0); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("err = %v", err)
	}
}

func TestCoreProperties(t *testing.T) {
	d := newDoc(t)
	props, err := d.CoreProperties()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := props.Created(); !ok {
		t.Error("created not stamped")
	}
	props.SetAuthor("Ada")
	props.SetKeywords("a, b")
	d = roundTrip(t, d)
	props, _ = d.CoreProperties()
	if props.Author() != "Ada" || props.Keywords() != "a, b" {
		t.Errorf("author=%q keywords=%q", props.Author(), props.Keywords())
	}
}

func TestUnits(t *testing.T) {
	if Inches(1).Twips() != 1440 {
		t.Errorf("1in = %d twips", Inches(1).Twips())
	}
	if Pt(11).HalfPoints() != 22 {
		t.Errorf("11pt = %d half-points", Pt(11).HalfPoints())
	}
	if _, err := ParseHexColor("#12345"); err == nil {
		t.Error("short hex accepted")
	}
	if c, err := ParseHexColor("#0a0B0c"); err != nil || c != (RGBColor{10, 11, 12}) {
		t.Errorf("parse = %v %v", c, err)
	}
}

func TestValidText(t *testing.T) {
	for _, s := range []string{"", "plain", "tab\tnewline\ncr\r", "Grüße ✓ \U0001F600", "\uFFFD"} {
		if err := ValidText(s); err != nil {
			t.Errorf("ValidText(%q) = %v", s, err)
		}
	}
	for _, s := range []string{"bad\x01text", "nul\x00", "\x1f", "\uFFFE", "\uFFFF", "broken \xff utf-8"} {
		if err := ValidText(s); !errors.Is(err, ErrInvalidXMLText) {
			t.Errorf("ValidText(%q) = %v, want ErrInvalidXMLText", s, err)
		}
	}
}

func TestWriteRejectsControlCharacters(t *testing.T) {
	d := newDoc(t)
	d.AddParagraph("bad\x01text")
	if _, err := d.Bytes(); !errors.Is(err, ErrInvalidXMLText) {
		t.Errorf("paragraph text: err = %v", err)
	}

	d = newDoc(t)
	props, err := d.CoreProperties()
	if err != nil {
		t.Fatal(err)
	}
	props.SetTitle("title\x02")
	if _, err := d.Bytes(); !errors.Is(err, ErrInvalidXMLText) {
		t.Errorf("core property: err = %v", err)
	}
}
