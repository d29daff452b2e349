package tools

import (
	"strings"
	"testing"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
)

func TestEnsureStyleExists(t *testing.T) {
	e := newTestEnv(t)
	createDoc(t, e, "s", "Styles")

	out := ok(t, e.handleEnsureStyleExists, map[string]any{"doc_id": "s", "style_name": "Heading 1"})
	if out != "Paragraph style 'Heading 1' successfully defined in document." {
		t.Errorf("first call = %q", out)
	}
	out = ok(t, e.handleEnsureStyleExists, map[string]any{"doc_id": "s", "style_name": "Heading 1"})
	if out != "Style 'Heading 1' already exists in document." {
		t.Errorf("second call = %q", out)
	}
	out = ok(t, e.handleEnsureStyleExists, map[string]any{"doc_id": "s", "style_name": "Strong", "style_type": "character"})
	if out != "Character style 'Strong' successfully defined in document." {
		t.Errorf("character style = %q", out)
	}

	assertContains(t, fails(t, e.handleEnsureStyleExists, map[string]any{"doc_id": "s", "style_name": "Made Up"}),
		"Error: Built-in style 'Made Up' not found in Word.")
	assertContains(t, fails(t, e.handleEnsureStyleExists, map[string]any{"doc_id": "s", "style_name": "Heading 1", "style_type": "numbering"}),
		"Invalid style type 'numbering'")

	if n := len(openDoc(t, e, "s").Paragraphs()); n != 1 {
		t.Errorf("paragraphs = %d, ensuring a style must not add content", n)
	}
}

func TestCreateAndModifyCustomStyle(t *testing.T) {
	e := newTestEnv(t)
	createDoc(t, e, "c", "Custom")

	out := ok(t, e.handleCreateCustomStyle, map[string]any{"doc_id": "c", "style_name": "Callout", "base_style": "Quote"})
	if out != "Custom paragraph style 'Callout' created successfully." {
		t.Errorf("create_custom_style = %q", out)
	}
	assertContains(t, fails(t, e.handleCreateCustomStyle, map[string]any{"doc_id": "c", "style_name": "Callout"}),
		"Error: Style 'Callout' already exists in document.")
	assertContains(t, fails(t, e.handleCreateCustomStyle, map[string]any{"doc_id": "c", "style_name": "Other", "base_style": "Nope"}),
		"Error: Base style 'Nope' does not exist and could not be defined.")

	out = ok(t, e.handleModifyStyle, map[string]any{
		"doc_id":     "c",
		"style_name": "Callout",
		"properties": map[string]any{
			"font":        map[string]any{"bold": true, "size": float64(13)},
			"paragraph":   map[string]any{"alignment": "RIGHT"},
			"quick_style": true,
			"priority":    float64(5),
		},
	})
	if out != "Style 'Callout' modified successfully." {
		t.Errorf("modify_style = %q", out)
	}

	doc := openDoc(t, e, "c")
	styles, err := doc.Styles()
	if err != nil {
		t.Fatal(err)
	}
	st := styles.ByName("Callout")
	if st == nil {
		t.Fatal("Callout not saved")
	}
	if b := st.BaseStyle(); b == nil || b.Name() != "Quote" {
		t.Errorf("base style = %v", b)
	}
	if n, ok := st.Priority(); !ok || n != 5 {
		t.Errorf("priority = %d, %v", n, ok)
	}
	if a, _ := st.ParagraphFormat().Alignment(); a != docx.AlignRight {
		t.Errorf("alignment = %q", a)
	}

	detail := ok(t, e.handleGetStylesDetail, map[string]any{"doc_id": "c", "style_type": "paragraph"})
	for _, want := range []string{
		"Style: Callout\n  Type: Paragraph\n  Base Style: Quote\n  Behavior:\n    Quick Style: True\n    Priority: 5\n    Hidden: False",
		"bold: true",
		"alignment: RIGHT",
	} {
		assertContains(t, detail, want)
	}
	if strings.Contains(detail, "Type: Table") {
		t.Error("style_type filter not applied")
	}
}

func TestModifyCharacterStyleIgnoresParagraphOptions(t *testing.T) {
	e := newTestEnv(t)
	createDoc(t, e, "ch", "Chars")
	ok(t, e.handleCreateCustomStyle, map[string]any{"doc_id": "ch", "style_name": "Code", "style_type": "character"})
	ok(t, e.handleModifyStyle, map[string]any{
		"doc_id":     "ch",
		"style_name": "Code",
		"properties": map[string]any{
			"font":      map[string]any{"name": "Consolas"},
			"paragraph": map[string]any{"alignment": "CENTER"},
		},
	})
	detail := ok(t, e.handleGetStylesDetail, map[string]any{"doc_id": "ch", "style_type": "character"})
	assertContains(t, detail, "name: Consolas")
	if strings.Contains(detail, "alignment") {
		t.Errorf("character style got paragraph formatting:\n%s", detail)
	}
}

func TestModifyStyleErrors(t *testing.T) {
	e := newTestEnv(t)
	createDoc(t, e, "m", "Modify")

	assertContains(t, fails(t, e.handleModifyStyle, map[string]any{
		"doc_id": "m", "style_name": "Heading 3", "properties": map[string]any{"hidden": true},
	}), "Error: Style 'Heading 3' not found in document.")
	fails(t, e.handleModifyStyle, map[string]any{
		"doc_id": "m", "style_name": "Normal", "properties": map[string]any{"priority": float64(-1)},
	})
	fails(t, e.handleModifyStyle, map[string]any{
		"doc_id": "m", "style_name": "Normal", "properties": map[string]any{"font": "big"},
	})
	fails(t, e.handleGetStylesDetail, map[string]any{"doc_id": "m", "style_type": "list"})
}

func TestCheckStyleUsage(t *testing.T) {
	e := newTestEnv(t)
	createDoc(t, e, "u", "Report")
	ok(t, e.handleAddTable, map[string]any{"doc_id": "u", "rows": float64(2), "cols": float64(2), "style": "Table Grid"})
	ok(t, e.handleEnsureStyleExists, map[string]any{"doc_id": "u", "style_name": "Quote"})

	out := ok(t, e.handleCheckStyleUsage, map[string]any{"doc_id": "u", "style_name": "Title"})
	if out != "Paragraph style 'Title' is used in the following locations:\nParagraph 0: \"Report\"" {
		t.Errorf("Title usage = %q", out)
	}
	out = ok(t, e.handleCheckStyleUsage, map[string]any{"doc_id": "u", "style_name": "Table Grid"})
	if out != "Table style 'Table Grid' is used in the following locations:\nTable 0: 2x2 table" {
		t.Errorf("Table Grid usage = %q", out)
	}
	out = ok(t, e.handleCheckStyleUsage, map[string]any{"doc_id": "u", "style_name": "Quote"})
	if out != "Paragraph style 'Quote' exists in the document but is not currently used." {
		t.Errorf("Quote usage = %q", out)
	}
	fails(t, e.handleCheckStyleUsage, map[string]any{"doc_id": "u", "style_name": "Heading 4"})
}

func TestListStyles(t *testing.T) {
	e := newTestEnv(t)
	createDoc(t, e, "l", "List")
	out := ok(t, e.handleListStyles, map[string]any{"doc_id": "l"})
	for _, want := range []string{"Paragraph styles:\nNormal", "Title", "\n\nCharacter styles:\n", "\n\nTable styles:\nNormal Table"} {
		assertContains(t, out, want)
	}
}
