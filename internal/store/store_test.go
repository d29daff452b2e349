package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	s, err := New(t.TempDir(), log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "report", want: "report"},
		{in: "  report  ", want: "report"},
		{in: "report.docx", want: "report"},
		{in: "Report.DOCX", want: "Report"},
		{in: "quarterly report 2024", want: "quarterly report 2024"},
		{in: "", wantErr: true},
		{in: ".docx", wantErr: true},
		{in: "../secret", wantErr: true},
		{in: "a/b", wantErr: true},
		{in: `a\b`, wantErr: true},
		{in: "C:report", wantErr: true},
		{in: "a\x00b", wantErr: true},
		{in: "a..b", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeID(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidID) {
					t.Errorf("NormalizeID(%q) error = %v, want ErrInvalidID", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeID(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveStaysUnderRoot(t *testing.T) {
	s := newTestStore(t)
	path, err := s.Resolve("notes")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != s.Root() {
		t.Errorf("path %s not directly under %s", path, s.Root())
	}
	if filepath.Base(path) != "notes.docx" {
		t.Errorf("base = %s", filepath.Base(path))
	}
	pdf, _ := s.PathFor("notes", ".pdf")
	if filepath.Base(pdf) != "notes.pdf" {
		t.Errorf("pdf base = %s", filepath.Base(pdf))
	}
}

func TestLoadErrors(t *testing.T) {
	s := newTestStore(t)
	path, _ := s.Resolve("missing")
	if _, err := s.Load(path); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file: got %v, want ErrNotFound", err)
	}

	bad, _ := s.Resolve("bad")
	if err := os.WriteFile(bad, []byte("this is not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(bad); !errors.Is(err, ErrCorrupt) {
		t.Errorf("garbage file: got %v, want ErrCorrupt", err)
	}
}

func TestPutViewUpdate(t *testing.T) {
	s := newTestStore(t)
	doc, err := docx.New()
	if err != nil {
		t.Fatal(err)
	}
	doc.AddParagraph("first")
	path, err := s.Put("doc", doc)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}

	if err := s.Update("doc", func(d *docx.Document) error {
		d.AddParagraph("second")
		return nil
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	var text string
	if err := s.View("doc", func(d *docx.Document) error {
		text = d.Text()
		d.AddParagraph("never saved")
		return nil
	}); err != nil {
		t.Fatalf("View: %v", err)
	}
	if text != "first\nsecond" {
		t.Errorf("text = %q", text)
	}

	again, _ := s.Load(path)
	if strings.Contains(again.Text(), "never saved") {
		t.Error("View must not persist changes")
	}
}

func TestUpdateFailureLeavesFileUntouched(t *testing.T) {
	s := newTestStore(t)
	doc, _ := docx.New()
	doc.AddParagraph("keep")
	path, _ := s.Put("doc", doc)
	before, _ := os.ReadFile(path)

	boom := errors.New("boom")
	err := s.Update("doc", func(d *docx.Document) error {
		d.AddParagraph("discard")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update error = %v", err)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("failed update rewrote the file")
	}

	entries, _ := os.ReadDir(s.Root())
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestUpdateMissingDocument(t *testing.T) {
	s := newTestStore(t)
	called := false
	err := s.Update("ghost", func(*docx.Document) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	if called {
		t.Error("fn ran on a missing document")
	}
	if ok, _ := s.Exists("ghost"); ok {
		t.Error("Update created the document")
	}
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	s := newTestStore(t)
	doc, _ := docx.New()
	if _, err := s.Put("doc", doc); err != nil {
		t.Fatal(err)
	}

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Update("doc", func(d *docx.Document) error {
				d.AddParagraph("p")
				return nil
			}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	var count int
	s.View("doc", func(d *docx.Document) error {
		count = len(d.Paragraphs())
		return nil
	})
	if count != n {
		t.Errorf("paragraphs = %d, want %d (lost update)", count, n)
	}
	if len(s.locks) != 0 {
		t.Errorf("lock table not drained: %d entries", len(s.locks))
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"b", "a"} {
		doc, _ := docx.New()
		if _, err := s.Put(id, doc); err != nil {
			t.Fatal(err)
		}
	}
	os.WriteFile(filepath.Join(s.Root(), "notes.txt"), []byte("x"), 0o644)

	infos, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 || infos[0].ID != "a" || infos[1].ID != "b" {
		t.Fatalf("List = %+v", infos)
	}
	if infos[0].Size == 0 || infos[0].Modified.IsZero() {
		t.Errorf("missing stat data: %+v", infos[0])
	}
}
