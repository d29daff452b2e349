package tools

import (
	"strings"
	"testing"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
)

func TestZonedText(t *testing.T) {
	tests := []struct {
		left, center, right string
		want                string
	}{
		{"L", "C", "R", "L\tC\tR"},
		{"L", "C", "", "L\tC"},
		{"L", "", "R", "L\t\tR"},
		{"", "", "R", "\t\tR"},
		{"L", "", "", "L"},
	}
	for _, tt := range tests {
		if got := zonedText(tt.left, tt.center, tt.right); got != tt.want {
			t.Errorf("zonedText(%q, %q, %q) = %q, want %q", tt.left, tt.center, tt.right, got, tt.want)
		}
	}
}

func TestHeaderLinkedThroughSections(t *testing.T) {
	e := newTestEnv(t)
	add := e.handleAddStory(headerStory)
	get := e.handleGetStoryText(headerStory)
	createDoc(t, e, "h", "Headers")

	out := ok(t, add, map[string]any{
		"doc_id":        "h",
		"section_index": float64(0),
		"text":          "ACME Corp",
		"content":       []any{map[string]any{"type": "paragraph", "text": "Confidential"}},
	})
	if out != "Header added/modified for section 0." {
		t.Errorf("add_header = %q", out)
	}
	if got := ok(t, get, map[string]any{"doc_id": "h", "section_index": float64(0)}); got != "ACME Corp\nConfidential" {
		t.Errorf("get_header_text = %q", got)
	}

	c, err := openDoc(t, e, "h").Sections()[0].Header().Content()
	if err != nil {
		t.Fatal(err)
	}
	if ps := c.Paragraphs(); len(ps) != 2 || ps[1].StyleName() != "Header" {
		t.Errorf("content paragraphs should default to the Header style")
	}

	ok(t, e.handleAddSection, map[string]any{"doc_id": "h"})
	got := ok(t, get, map[string]any{"doc_id": "h", "section_index": float64(1)})
	if got != "Header is linked to section 0. Content: ACME Corp\nConfidential" {
		t.Errorf("linked header = %q", got)
	}

	// replacing drops the old paragraphs
	ok(t, add, map[string]any{"doc_id": "h", "section_index": float64(0), "text": "New"})
	if got := ok(t, get, map[string]any{"doc_id": "h", "section_index": float64(0)}); got != "New" {
		t.Errorf("replaced header = %q", got)
	}

	out = ok(t, e.handleRemoveStory(headerStory), map[string]any{"doc_id": "h", "section_index": float64(0)})
	if out != "Header removed from section 0." {
		t.Errorf("remove_header = %q", out)
	}
	got = ok(t, get, map[string]any{"doc_id": "h", "section_index": float64(1)})
	if got != "No header defined for this section (linked to previous, but no previous header found)." {
		t.Errorf("after remove = %q", got)
	}
	if !openDoc(t, e, "h").Sections()[0].Header().IsLinked() {
		t.Error("section 0 header still defined")
	}
}

func TestZonedFooter(t *testing.T) {
	e := newTestEnv(t)
	createDoc(t, e, "f", "Footers")
	ok(t, e.handleAddSection, map[string]any{"doc_id": "f"})

	out := ok(t, e.handleAddZonedStory(footerStory), map[string]any{
		"doc_id":        "f",
		"section_index": float64(1),
		"left_text":     "Draft",
		"right_text":    "Page",
	})
	if out != "Zoned footer added for section 1." {
		t.Errorf("add_zoned_footer = %q", out)
	}
	get := e.handleGetStoryText(footerStory)
	if got := ok(t, get, map[string]any{"doc_id": "f", "section_index": float64(1)}); got != "Draft\t\tPage" {
		t.Errorf("get_footer_text = %q", got)
	}
	if got := ok(t, get, map[string]any{"doc_id": "f", "section_index": float64(0)}); got != "No footer defined for this section (linked to previous, but no previous footer found)." {
		t.Errorf("section 0 footer = %q", got)
	}

	c, err := openDoc(t, e, "f").Sections()[1].Footer().Content()
	if err != nil {
		t.Fatal(err)
	}
	if s := c.Paragraphs()[0].StyleName(); s != "Footer" {
		t.Errorf("zoned footer style = %q", s)
	}

	fails(t, e.handleAddZonedStory(footerStory), map[string]any{"doc_id": "f", "section_index": float64(4), "left_text": "x"})
}

func TestParsePageNumberFormat(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		fields bool
	}{
		{"Page {0} of {1}", "'Page '[PAGE]' of '[NUMPAGES]", true},
		{"{1} pages, this is {0}", "[NUMPAGES]' pages, this is '[PAGE]", true},
		{"{0}", "[PAGE]", true},
		{"-{0}-{0}-", "'-'[PAGE]'-'[PAGE]'-'", true},
		{"no numbers", "'no numbers'", false},
		{"{2}", "'{2}'", false},
	}
	for _, tt := range tests {
		parts, fields := parsePageNumberFormat(tt.in)
		var sb strings.Builder
		for _, p := range parts {
			if p.instr != "" {
				sb.WriteString("[" + p.instr + "]")
			} else {
				sb.WriteString("'" + p.text + "'")
			}
		}
		if sb.String() != tt.want || fields != tt.fields {
			t.Errorf("parsePageNumberFormat(%q) = %s, %v; want %s, %v", tt.in, sb.String(), fields, tt.want, tt.fields)
		}
	}
}

func TestSetFooterPageNumbers(t *testing.T) {
	e := newTestEnv(t)
	createDoc(t, e, "pn", "Numbers")
	ok(t, e.handleAddStory(footerStory), map[string]any{"doc_id": "pn", "section_index": float64(0), "text": "old footer"})

	out := ok(t, e.handleSetFooterPageNumbers, map[string]any{"doc_id": "pn", "section_index": float64(0)})
	if out != "Page numbers added to footer in section 0." {
		t.Errorf("set_footer_page_numbers = %q", out)
	}
	c, err := openDoc(t, e, "pn").Sections()[0].Footer().Content()
	if err != nil {
		t.Fatal(err)
	}
	ps := c.Paragraphs()
	if len(ps) != 1 {
		t.Fatalf("footer paragraphs = %d", len(ps))
	}
	if got := ps[0].Text(); got != "Page 1 of 1" {
		t.Errorf("footer text = %q", got)
	}
	if f := ps[0].Fields(); len(f) != 2 || f[0] != "PAGE" || f[1] != "NUMPAGES" {
		t.Errorf("fields = %q", f)
	}
	if a, _ := ps[0].Format().Alignment(); a != docx.AlignCenter {
		t.Errorf("alignment = %q", a)
	}

	assertContains(t, fails(t, e.handleSetFooterPageNumbers, map[string]any{"doc_id": "pn", "section_index": float64(0), "format_string": "Page"}),
		"format_string must contain {0} or {1}")
	fails(t, e.handleSetFooterPageNumbers, map[string]any{"doc_id": "pn", "section_index": float64(2)})
}

func TestSetDifferentFirstPageFooter(t *testing.T) {
	e := newTestEnv(t)
	createDoc(t, e, "fp", "First")

	out := ok(t, e.handleSetDifferentFirstPageFooter, map[string]any{"doc_id": "fp", "section_index": float64(0)})
	if out != "Different first page footer enabled in section 0." {
		t.Errorf("enable = %q", out)
	}
	if !openDoc(t, e, "fp").Sections()[0].DifferentFirstPage() {
		t.Error("titlePg not set")
	}
	out = ok(t, e.handleSetDifferentFirstPageFooter, map[string]any{"doc_id": "fp", "section_index": float64(0), "enable": false})
	if out != "Different first page footer disabled in section 0." {
		t.Errorf("disable = %q", out)
	}
	if openDoc(t, e, "fp").Sections()[0].DifferentFirstPage() {
		t.Error("titlePg still set")
	}
	fails(t, e.handleSetDifferentFirstPageFooter, map[string]any{"doc_id": "fp", "section_index": float64(1)})
}

func TestAddFooterImage(t *testing.T) {
	e := newTestEnv(t)
	createDoc(t, e, "fi", "Logo")
	ok(t, e.handleAddStory(footerStory), map[string]any{"doc_id": "fi", "section_index": float64(0), "text": "ACME"})

	out := ok(t, e.handleAddFooterImage, map[string]any{
		"doc_id":            "fi",
		"section_index":     float64(0),
		"base64_image_data": testPNG(t, 20, 10),
		"width_inches":      float64(1),
	})
	if out != "Image added to footer in section 0." {
		t.Errorf("add_footer_image = %q", out)
	}
	c, err := openDoc(t, e, "fi").Sections()[0].Footer().Content()
	if err != nil {
		t.Fatal(err)
	}
	ps := c.Paragraphs()
	if len(ps) != 1 || ps[0].Text() != "ACME" || len(ps[0].Runs()) != 2 {
		t.Errorf("footer = %d paragraphs, first %q", len(ps), ps[0].Text())
	}

	// a linked footer gets its own definition
	ok(t, e.handleAddSection, map[string]any{"doc_id": "fi"})
	ok(t, e.handleAddFooterImage, map[string]any{"doc_id": "fi", "section_index": float64(1), "image_data": testPNG(t, 2, 2)})
	if openDoc(t, e, "fi").Sections()[1].Footer().IsLinked() {
		t.Error("section 1 footer still linked")
	}

	fails(t, e.handleAddFooterImage, map[string]any{"doc_id": "fi", "section_index": float64(0)})
	fails(t, e.handleAddFooterImage, map[string]any{"doc_id": "fi", "section_index": float64(0), "base64_image_data": testPNG(t, 2, 2), "width_inches": float64(-1)})
	assertContains(t, fails(t, e.handleAddFooterImage, map[string]any{
		"doc_id":            "fi",
		"section_index":     float64(2),
		"base64_image_data": testPNG(t, 2, 2),
	}), "Section index 2 is out of range")
}
