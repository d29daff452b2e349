package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var ErrSofficeNotFound = errors.New("LibreOffice (soffice) not found on PATH")

// LibreOfficeConverter shells out to a headless soffice. Each run gets its
// own user profile so conversions do not block on a shared instance lock.
type LibreOfficeConverter struct {
	// Binary overrides the soffice lookup when set.
	Binary string
}

func (l *LibreOfficeConverter) Name() string { return "libreoffice" }

func (l *LibreOfficeConverter) binary() (string, error) {
	if l.Binary != "" {
		path, err := exec.LookPath(l.Binary)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrSofficeNotFound, err)
		}
		return path, nil
	}
	for _, name := range []string{"soffice", "libreoffice"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrSofficeNotFound
}

func (l *LibreOfficeConverter) Convert(ctx context.Context, src, dst string) error {
	bin, err := l.binary()
	if err != nil {
		return err
	}
	work, err := os.MkdirTemp("", "docx-pdf-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(work)

	outDir := filepath.Join(work, "out")
	profile := (&url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(work, "profile"))}).String()
	cmd := exec.CommandContext(ctx, bin,
		"-env:UserInstallation="+profile,
		"--headless", "--norestore",
		"--convert-to", "pdf",
		"--outdir", outDir,
		src,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}

	produced := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))+".pdf")
	if _, err := os.Stat(produced); err != nil {
		return ErrEmptyOutput
	}
	return moveFile(produced, dst)
}

// moveFile renames src to dst, copying when they sit on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}
