package tools

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
	"github.com/wxyzh/docx-mcp-server/internal/store"
)

func newTestEnv(t *testing.T) *Env {
	t.Helper()
	log, _ := test.NewNullLogger()
	st, err := store.New(t.TempDir(), log)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return &Env{Store: st, Log: log}
}

func callTool(t *testing.T, h server.ToolHandlerFunc, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if res == nil {
		t.Fatal("handler returned nil result")
	}
	return res
}

// ok calls h and fails the test on an error result.
func ok(t *testing.T, h server.ToolHandlerFunc, args map[string]any) string {
	t.Helper()
	res := callTool(t, h, args)
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(res))
	}
	return resultText(res)
}

// fails calls h and fails the test unless it returns an error result.
func fails(t *testing.T, h server.ToolHandlerFunc, args map[string]any) string {
	t.Helper()
	res := callTool(t, h, args)
	if !res.IsError {
		t.Fatalf("expected an error result, got: %s", resultText(res))
	}
	return resultText(res)
}

func openDoc(t *testing.T, e *Env, id string) *docx.Document {
	t.Helper()
	var doc *docx.Document
	err := e.Store.View(id, func(d *docx.Document) error {
		doc = d
		return nil
	})
	if err != nil {
		t.Fatalf("open %s: %v", id, err)
	}
	return doc
}

func createDoc(t *testing.T, e *Env, id, title string) {
	t.Helper()
	ok(t, e.handleCreateDocument, map[string]any{"doc_id": id, "title": title})
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("expected %q in:\n%s", want, got)
	}
}

func TestCreateAndReadDocument(t *testing.T) {
	e := newTestEnv(t)
	out := ok(t, e.handleCreateDocument, map[string]any{"doc_id": "report", "title": "Quarterly Report"})
	assertContains(t, out, "Document 'report.docx' created successfully at path: ")

	if got := ok(t, e.handleReadDocument, map[string]any{"doc_id": "report.docx"}); got != "Quarterly Report" {
		t.Errorf("read_document = %q", got)
	}
	doc := openDoc(t, e, "report")
	if got := doc.Paragraphs()[0].StyleName(); got != "Title" {
		t.Errorf("title style = %q", got)
	}
	assertContains(t, ok(t, e.handleGetDocumentMetadata, map[string]any{"doc_id": "report"}), "title: Quarterly Report")
}

func TestInvalidDocID(t *testing.T) {
	e := newTestEnv(t)
	for _, id := range []string{"../escape", "a/b", ""} {
		out := fails(t, e.handleCreateDocument, map[string]any{"doc_id": id})
		assertContains(t, out, "Invalid argument")
	}
}

func TestReadMissingDocument(t *testing.T) {
	e := newTestEnv(t)
	assertContains(t, fails(t, e.handleReadDocument, map[string]any{"doc_id": "ghost"}), "Document 'ghost.docx' not found.")
}

func TestCreateCompleteDocument(t *testing.T) {
	e := newTestEnv(t)
	out := ok(t, e.handleCreateCompleteDocument, map[string]any{
		"doc_id": "full",
		"title":  "Full",
		"content": []any{
			map[string]any{"type": "heading", "text": "Intro", "level": float64(1)},
			map[string]any{"type": "paragraph", "text": "Body text", "style": "Quote"},
			map[string]any{"type": "table", "rows": float64(2), "cols": float64(2), "data": "a,b,c,d", "style": "Table Grid"},
		},
	})
	assertContains(t, out, "created successfully with title and 3 content items")

	doc := openDoc(t, e, "full")
	ps := doc.Paragraphs()
	if len(ps) != 3 {
		t.Fatalf("paragraphs = %d", len(ps))
	}
	if ps[1].StyleName() != "Heading 1" || ps[2].StyleName() != "Quote" {
		t.Errorf("styles = %q, %q", ps[1].StyleName(), ps[2].StyleName())
	}
	if got := ok(t, e.handleGetTableData, map[string]any{"doc_id": "full", "table_index": float64(0)}); got != "a | b\nc | d" {
		t.Errorf("table data = %q", got)
	}
}

func TestCreateCompleteDocumentRejectsOversizedTable(t *testing.T) {
	e := newTestEnv(t)
	out := fails(t, e.handleCreateCompleteDocument, map[string]any{
		"doc_id": "bad",
		"content": []any{
			map[string]any{"type": "table", "rows": float64(1), "cols": float64(2), "data": "1,2,3"},
		},
	})
	assertContains(t, out, "Error in table data")
	assertContains(t, ok(t, e.handleCheckDocumentExists, map[string]any{"doc_id": "bad"}), "does not exist")
}

func TestHugeTableContentIsRejectedBeforeLoading(t *testing.T) {
	e := newTestEnv(t)
	out := fails(t, e.handleCreateCompleteDocument, map[string]any{
		"doc_id": "huge",
		"content": []any{
			map[string]any{"type": "table", "rows": float64(200000), "cols": float64(200000)},
		},
	})
	assertContains(t, out, "Invalid argument:")
	assertContains(t, out, "table too large")
	assertContains(t, ok(t, e.handleCheckDocumentExists, map[string]any{"doc_id": "huge"}), "does not exist")

	createDoc(t, e, "kept", "Kept")
	fails(t, e.handleAppendToDocument, map[string]any{
		"doc_id":  "kept",
		"content": []any{map[string]any{"type": "table", "rows": float64(400), "cols": float64(400)}},
	})
	if n := len(openDoc(t, e, "kept").Tables()); n != 0 {
		t.Errorf("tables = %d after a rejected append", n)
	}
}

func TestCreateCompleteDocumentContentShape(t *testing.T) {
	e := newTestEnv(t)
	ok(t, e.handleCreateCompleteDocument, map[string]any{
		"doc_id":  "skips",
		"title":   "T",
		"content": []any{map[string]any{"type": "video"}},
	})
	if got := ok(t, e.handleReadDocument, map[string]any{"doc_id": "skips"}); got != "T" {
		t.Errorf("unknown item was not skipped: %q", got)
	}

	fails(t, e.handleCreateCompleteDocument, map[string]any{"doc_id": "bad", "content": "not a list"})
	fails(t, e.handleCreateCompleteDocument, map[string]any{"doc_id": "bad", "content": []any{"text"}})
	fails(t, e.handleCreateCompleteDocument, map[string]any{
		"doc_id":  "bad",
		"content": []any{map[string]any{"type": "table", "rows": "many"}},
	})
}

func TestUpdateDocument(t *testing.T) {
	e := newTestEnv(t)

	out := fails(t, e.handleUpdateDocument, map[string]any{"doc_id": "later", "title": "x"})
	assertContains(t, out, "Document 'later.docx' does not exist and cannot be updated. Create it first.")

	// replace creates the document when it is missing
	out = ok(t, e.handleUpdateDocument, map[string]any{"doc_id": "later", "title": "First", "append": false})
	if out != "Document 'later.docx' replaced with new title successfully." {
		t.Errorf("replace = %q", out)
	}

	out = ok(t, e.handleAppendToDocument, map[string]any{
		"doc_id":  "later",
		"content": []any{map[string]any{"type": "paragraph", "text": "more"}},
	})
	if out != "Document 'later.docx' updated by appending and 1 content items successfully." {
		t.Errorf("append = %q", out)
	}

	ok(t, e.handleUpdateDocument, map[string]any{"doc_id": "later", "title": "Part Two"})
	doc := openDoc(t, e, "later")
	ps := doc.Paragraphs()
	if got := ps[len(ps)-1]; got.Text() != "Part Two" || got.StyleName() != "Heading 1" {
		t.Errorf("appended title = %q (%s)", got.Text(), got.StyleName())
	}

	ok(t, e.handleReplaceDocument, map[string]any{
		"doc_id":  "later",
		"title":   "Fresh",
		"content": []any{map[string]any{"type": "paragraph", "text": "only this"}},
	})
	if got := ok(t, e.handleReadDocument, map[string]any{"doc_id": "later"}); got != "Fresh\nonly this" {
		t.Errorf("after replace = %q", got)
	}
}

func TestCheckDocumentExists(t *testing.T) {
	e := newTestEnv(t)
	assertContains(t, ok(t, e.handleCheckDocumentExists, map[string]any{"doc_id": "x"}), "Document 'x.docx' does not exist at path:")

	createDoc(t, e, "x", "X")
	assertContains(t, ok(t, e.handleCheckDocumentExists, map[string]any{"doc_id": "x"}), "exists and is readable at path:")

	path, err := e.Store.Resolve("broken")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	assertContains(t, ok(t, e.handleCheckDocumentExists, map[string]any{"doc_id": "broken"}), "exists but cannot be read")
}

func TestListAvailableDocuments(t *testing.T) {
	e := newTestEnv(t)
	if got := ok(t, e.handleListAvailableDocuments, map[string]any{}); got != "No Word documents (.docx files) found in the server directory." {
		t.Errorf("empty list = %q", got)
	}
	createDoc(t, e, "alpha", "A")
	createDoc(t, e, "beta", "B")

	out := ok(t, e.handleListAvailableDocuments, map[string]any{})
	assertContains(t, out, "Available Word documents (without .docx extension):")
	assertContains(t, out, "- alpha")
	assertContains(t, out, "- beta")

	out = ok(t, e.handleListAvailableDocuments, map[string]any{"pattern": "a*"})
	if strings.Contains(out, "beta") {
		t.Errorf("pattern did not filter: %s", out)
	}
	assertContains(t, ok(t, e.handleListAvailableDocuments, map[string]any{"pattern": "z*"}), "matching 'z*'")
	assertContains(t, ok(t, e.handleListAvailableDocuments, map[string]any{"details": true}), "bytes, modified ")
	fails(t, e.handleListAvailableDocuments, map[string]any{"pattern": "[a"})
}

func TestSetDocumentMetadata(t *testing.T) {
	e := newTestEnv(t)
	createDoc(t, e, "meta", "Meta")
	out := ok(t, e.handleSetDocumentMetadata, map[string]any{
		"doc_id":   "meta",
		"metadata": map[string]any{"author": "Sam", "keywords": "a, b", "ignored": 1},
	})
	if out != "Metadata updated for meta.docx" {
		t.Errorf("set = %q", out)
	}
	got := ok(t, e.handleGetDocumentMetadata, map[string]any{"doc_id": "meta"})
	assertContains(t, got, "author: Sam")
	assertContains(t, got, "keywords: a, b")

	fails(t, e.handleSetDocumentMetadata, map[string]any{"doc_id": "meta", "metadata": map[string]any{"colour": "red"}})
}

func TestAnalyzeDocumentStructure(t *testing.T) {
	e := newTestEnv(t)
	ok(t, e.handleCreateCompleteDocument, map[string]any{
		"doc_id": "shape",
		"title":  "Shape",
		"content": []any{
			map[string]any{"type": "paragraph", "text": ""},
			map[string]any{"type": "table", "rows": float64(1), "cols": float64(2), "data": "x,y"},
		},
	})
	out := ok(t, e.handleAnalyzeDocumentStructure, map[string]any{"doc_id": "shape"})
	assertContains(t, out, "Document Structure Analysis for 'shape.docx':")
	assertContains(t, out, "Total paragraphs: 2")
	assertContains(t, out, "Total tables: 1")
	assertContains(t, out, "Paragraph 0: Style='Title', Runs=1")
	assertContains(t, out, "Paragraph 1: [Empty paragraph]")
	assertContains(t, out, "Table 0: 1 rows x 2 columns")
}

func TestConvertToPDFWithoutConverter(t *testing.T) {
	e := newTestEnv(t)
	createDoc(t, e, "doc", "Doc")
	assertContains(t, fails(t, e.handleConvertToPDF, map[string]any{"doc_id": "doc"}), "Error converting document to PDF")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a bit longer", 5, "a bit..."},
		{"日本語のテキスト", 3, "日本語..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
