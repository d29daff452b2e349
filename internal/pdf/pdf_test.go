package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// minimalPDF builds a PDF with the given number of blank pages and a
// correct cross-reference table.
func minimalPDF(pages int) []byte {
	var objects []string
	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages),
	)
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

type fakeConverter struct {
	name   string
	output []byte
	err    error
	delay  time.Duration
	// silent reports success without writing dst
	silent bool

	calls   atomic.Int32
	running atomic.Int32
	peak    atomic.Int32
}

func (f *fakeConverter) Name() string { return f.name }

func (f *fakeConverter) Convert(ctx context.Context, src, dst string) error {
	f.calls.Add(1)
	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.err != nil {
		return f.err
	}
	if f.silent {
		return nil
	}
	return os.WriteFile(dst, f.output, 0o644)
}

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func TestCountPages(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.pdf")
	if err := os.WriteFile(good, minimalPDF(3), 0o644); err != nil {
		t.Fatal(err)
	}
	n, err := CountPages(good)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("pages = %d, want 3", n)
	}

	junk := filepath.Join(dir, "junk.pdf")
	os.WriteFile(junk, []byte("not a pdf"), 0o644)
	if _, err := CountPages(junk); !errors.Is(err, ErrEmptyOutput) {
		t.Errorf("junk: err = %v", err)
	}
	if _, err := CountPages(filepath.Join(dir, "missing.pdf")); !errors.Is(err, ErrEmptyOutput) {
		t.Errorf("missing: err = %v", err)
	}
}

func TestConvertFallsThrough(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.pdf")
	broken := &fakeConverter{name: "broken", err: errors.New("boom")}
	garbage := &fakeConverter{name: "garbage", output: []byte("%PDF-nonsense")}
	working := &fakeConverter{name: "working", output: minimalPDF(1)}

	svc := NewWithConverters([]Converter{broken, garbage, working}, 1, 0, quietLogger())
	res, err := svc.Convert(context.Background(), filepath.Join(dir, "in.docx"), dst)
	if err != nil {
		t.Fatal(err)
	}
	if res.Backend != "working" || res.Pages != 1 || res.Path != dst {
		t.Errorf("result = %+v", res)
	}
	if broken.calls.Load() != 1 || garbage.calls.Load() != 1 {
		t.Error("earlier converters were not tried")
	}
}

func TestConvertIgnoresStaleOutput(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.pdf")
	if err := os.WriteFile(dst, minimalPDF(3), 0o644); err != nil {
		t.Fatal(err)
	}
	silent := &fakeConverter{name: "silent", silent: true}

	svc := NewWithConverters([]Converter{silent}, 1, 0, quietLogger())
	_, err := svc.Convert(context.Background(), filepath.Join(dir, "in.docx"), dst)
	if !errors.Is(err, ErrEmptyOutput) {
		t.Fatalf("err = %v, want ErrEmptyOutput", err)
	}
	if _, err := os.Stat(dst); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale PDF still present: %v", err)
	}

	// a later converter in the chain still succeeds
	working := &fakeConverter{name: "working", output: minimalPDF(1)}
	res, err := NewWithConverters([]Converter{silent, working}, 1, 0, quietLogger()).
		Convert(context.Background(), filepath.Join(dir, "in.docx"), dst)
	if err != nil {
		t.Fatal(err)
	}
	if res.Backend != "working" || res.Pages != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestConvertReportsEveryFailure(t *testing.T) {
	dir := t.TempDir()
	a := &fakeConverter{name: "a", err: errors.New("first failure")}
	b := &fakeConverter{name: "b", err: errors.New("second failure")}
	svc := NewWithConverters([]Converter{a, b}, 1, 0, quietLogger())

	_, err := svc.Convert(context.Background(), "in.docx", filepath.Join(dir, "out.pdf"))
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"a: first failure", "b: second failure"} {
		if !bytes.Contains([]byte(err.Error()), []byte(want)) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}

	empty := NewWithConverters(nil, 1, 0, quietLogger())
	if _, err := empty.Convert(context.Background(), "in.docx", "out.pdf"); !errors.Is(err, ErrNoConverter) {
		t.Errorf("err = %v, want ErrNoConverter", err)
	}
}

func TestConvertTimeout(t *testing.T) {
	dir := t.TempDir()
	slow := &fakeConverter{name: "slow", delay: time.Second, output: minimalPDF(1)}
	next := &fakeConverter{name: "next", output: minimalPDF(1)}
	svc := NewWithConverters([]Converter{slow, next}, 1, 20*time.Millisecond, quietLogger())

	_, err := svc.Convert(context.Background(), "in.docx", filepath.Join(dir, "out.pdf"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if next.calls.Load() != 0 {
		t.Error("converter ran after the deadline")
	}
}

func TestConvertLimitsConcurrency(t *testing.T) {
	dir := t.TempDir()
	conv := &fakeConverter{name: "fake", delay: 20 * time.Millisecond, output: minimalPDF(1)}
	svc := NewWithConverters([]Converter{conv}, 2, 0, quietLogger())

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dst := filepath.Join(dir, fmt.Sprintf("out%d.pdf", i))
			if _, err := svc.Convert(context.Background(), "in.docx", dst); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
	if peak := conv.peak.Load(); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
	if conv.calls.Load() != 6 {
		t.Errorf("calls = %d", conv.calls.Load())
	}
}

func TestNewBackends(t *testing.T) {
	svc, err := New(Config{Backend: BackendLibreOffice, SofficePath: "/opt/soffice"}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(svc.converters) != 1 || svc.converters[0].Name() != "libreoffice" {
		t.Errorf("converters = %v", svc.converters)
	}
	if _, err := New(Config{Backend: "pandoc"}, quietLogger()); err == nil {
		t.Error("unknown backend accepted")
	}
}

func TestLibreOfficeMissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	err := (&LibreOfficeConverter{}).Convert(context.Background(), "in.docx", "out.pdf")
	if !errors.Is(err, ErrSofficeNotFound) {
		t.Errorf("err = %v, want ErrSofficeNotFound", err)
	}
	err = (&LibreOfficeConverter{Binary: "soffice"}).Convert(context.Background(), "in.docx", "out.pdf")
	if !errors.Is(err, ErrSofficeNotFound) {
		t.Errorf("explicit binary: err = %v, want ErrSofficeNotFound", err)
	}
}
