// Package pdf renders stored documents to PDF through an external office
// suite and checks the output before reporting success.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

var (
	ErrNoConverter = errors.New("no PDF converter available")
	ErrEmptyOutput = errors.New("converter produced no readable PDF")
)

const (
	BackendAuto        = "auto"
	BackendWord        = "word"
	BackendLibreOffice = "libreoffice"
)

// Converter turns the .docx at src into a PDF at dst.
type Converter interface {
	Name() string
	Convert(ctx context.Context, src, dst string) error
}

type Config struct {
	Backend     string
	SofficePath string
	Concurrency int
	Timeout     time.Duration
}

// Result describes a finished conversion.
type Result struct {
	Path    string
	Backend string
	Pages   int
}

// Service runs conversions through the configured converters in order,
// with at most Concurrency running at once.
type Service struct {
	converters []Converter
	sem        *semaphore.Weighted
	timeout    time.Duration
	log        logrus.FieldLogger
}

func New(cfg Config, log logrus.FieldLogger) (*Service, error) {
	var converters []Converter
	switch cfg.Backend {
	case BackendWord:
		converters = []Converter{&WordConverter{}}
	case BackendLibreOffice:
		converters = []Converter{&LibreOfficeConverter{Binary: cfg.SofficePath}}
	case BackendAuto, "":
		if runtime.GOOS == "windows" {
			converters = append(converters, &WordConverter{})
		}
		converters = append(converters, &LibreOfficeConverter{Binary: cfg.SofficePath})
	default:
		return nil, fmt.Errorf("unknown PDF converter %q", cfg.Backend)
	}
	return NewWithConverters(converters, cfg.Concurrency, cfg.Timeout, log), nil
}

func NewWithConverters(converters []Converter, concurrency int, timeout time.Duration, log logrus.FieldLogger) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		converters: converters,
		sem:        semaphore.NewWeighted(int64(concurrency)),
		timeout:    timeout,
		log:        log,
	}
}

// Convert renders src to dst. Converters are tried in order until one
// produces a PDF with at least one page. src is only read.
func (s *Service) Convert(ctx context.Context, src, dst string) (Result, error) {
	if len(s.converters) == 0 {
		return Result{}, ErrNoConverter
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return Result{}, err
	}
	defer s.sem.Release(1)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var errs []error
	for _, c := range s.converters {
		log := s.log.WithFields(logrus.Fields{"backend": c.Name(), "path": src})
		started := time.Now()
		// a PDF left from an earlier run must not pass for this one
		if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("remove previous %s: %w", dst, err)
		}
		if err := c.Convert(ctx, src, dst); err != nil {
			log.WithError(err).Warn("PDF conversion failed")
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		pages, err := CountPages(dst)
		if err != nil {
			log.WithError(err).Warn("PDF output rejected")
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
			continue
		}
		log.WithFields(logrus.Fields{"pdf": dst, "pages": pages, "elapsed": time.Since(started)}).Info("document converted")
		return Result{Path: dst, Backend: c.Name(), Pages: pages}, nil
	}
	return Result{}, errors.Join(errs...)
}

// CountPages opens a PDF and returns its page count. Files that do not
// parse or have no pages are reported as ErrEmptyOutput.
func CountPages(path string) (pages int, err error) {
	if fi, statErr := os.Stat(path); statErr != nil || fi.Size() == 0 {
		return 0, ErrEmptyOutput
	}
	defer func() {
		// the reader panics on some malformed trailers
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("%w: %v", ErrEmptyOutput, r)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEmptyOutput, err)
	}
	defer f.Close()
	n := r.NumPage()
	if n == 0 {
		return 0, ErrEmptyOutput
	}
	return n, nil
}
