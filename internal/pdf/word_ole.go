package pdf

import (
	"context"
	"errors"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// wdFormatPDF is the WdSaveFormat value for PDF output.
const wdFormatPDF = 17

var ErrWordUnavailable = errors.New("Word automation is only available on Windows")

// WordConverter drives an installed Microsoft Word through OLE automation.
type WordConverter struct{}

func (w *WordConverter) Name() string { return "word" }

func (w *WordConverter) Convert(ctx context.Context, src, dst string) error {
	if runtime.GOOS != "windows" {
		return ErrWordUnavailable
	}
	done := make(chan error, 1)
	go func() {
		done <- saveAsPDF(src, dst)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// saveAsPDF opens src read-only in a private Word instance and saves it
// as dst. COM requires the calls to stay on one OS thread.
func saveAsPDF(src, dst string) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED)
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("Word.Application")
	if err != nil {
		return err
	}
	defer unknown.Release()
	word, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return err
	}
	defer word.Release()
	defer oleutil.CallMethod(word, "Quit", false)

	oleutil.PutProperty(word, "Visible", false)
	oleutil.PutProperty(word, "DisplayAlerts", 0)

	documents, err := oleutil.GetProperty(word, "Documents")
	if err != nil {
		return err
	}
	docs := documents.ToIDispatch()
	defer docs.Release()

	// Open(FileName, ConfirmConversions, ReadOnly, AddToRecentFiles)
	opened, err := oleutil.CallMethod(docs, "Open", src, false, true, false)
	if err != nil {
		return err
	}
	doc := opened.ToIDispatch()
	defer doc.Release()
	defer oleutil.CallMethod(doc, "Close", false)

	_, err = oleutil.CallMethod(doc, "SaveAs2", dst, wdFormatPDF)
	return err
}
