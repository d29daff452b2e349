package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/djherbis/times"
	"github.com/sirupsen/logrus"

	"github.com/wxyzh/docx-mcp-server/internal/docx"
)

const Ext = ".docx"

var (
	ErrInvalidID = errors.New("invalid document id")
	ErrNotFound  = errors.New("document not found")
	ErrCorrupt   = errors.New("document cannot be parsed")
)

// Store keeps one .docx file per document id under a root directory.
// Calls on the same document are serialized; calls on different documents
// run in parallel.
type Store struct {
	root  string
	log   logrus.FieldLogger
	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	sync.Mutex
	refs int
}

// Info describes a stored document.
type Info struct {
	ID         string
	Path       string
	Size       int64
	Modified   time.Time
	Accessed   time.Time
	Created    time.Time
	HasCreated bool
}

func New(root string, log logrus.FieldLogger) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create documents directory: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{root: abs, log: log, locks: make(map[string]*pathLock)}, nil
}

func (s *Store) Root() string { return s.root }

// NormalizeID trims id and strips a trailing .docx. Ids that could address
// anything outside the root are rejected.
func NormalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if strings.HasSuffix(strings.ToLower(id), Ext) {
		id = id[:len(id)-len(Ext)]
	}
	if id == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if strings.ContainsAny(id, "/\\:\x00") || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: '%s' must be a bare name", ErrInvalidID, id)
	}
	return id, nil
}

// Resolve maps a document id to <root>/<id>.docx.
func (s *Store) Resolve(id string) (string, error) {
	id, err := NormalizeID(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, id+Ext), nil
}

// PathFor returns the path of a sibling file of the document, such as its
// PDF rendering.
func (s *Store) PathFor(id, ext string) (string, error) {
	id, err := NormalizeID(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, id+ext), nil
}

func (s *Store) Exists(id string) (bool, error) {
	path, err := s.Resolve(id)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Load opens the document stored at path.
func (s *Store) Load(path string) (*docx.Document, error) {
	doc, err := docx.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	var pathErr *fs.PathError
	if err != nil && !errors.As(err, &pathErr) {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return doc, err
}

// Save writes doc to a temporary file next to path and renames it into
// place, so readers see either the old or the new document.
func (s *Store) Save(doc *docx.Document, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := doc.Write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	s.log.WithField("path", path).Info("document saved")
	return nil
}

func (s *Store) lock(path string) func() {
	s.mu.Lock()
	l, ok := s.locks[path]
	if !ok {
		l = &pathLock{}
		s.locks[path] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, path)
		}
		s.mu.Unlock()
	}
}

// WithLock runs fn holding the document's lock without loading it.
func (s *Store) WithLock(id string, fn func(path string) error) error {
	path, err := s.Resolve(id)
	if err != nil {
		return err
	}
	unlock := s.lock(path)
	defer unlock()
	return fn(path)
}

// View loads the document and passes it to fn. Changes are never saved.
func (s *Store) View(id string, fn func(doc *docx.Document) error) error {
	return s.WithLock(id, func(path string) error {
		doc, err := s.Load(path)
		if err != nil {
			return err
		}
		return fn(doc)
	})
}

// Update loads the document, applies fn and saves the result. Nothing is
// written when fn fails.
func (s *Store) Update(id string, fn func(doc *docx.Document) error) error {
	return s.WithLock(id, func(path string) error {
		doc, err := s.Load(path)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		if err := touch(doc); err != nil {
			return err
		}
		return s.Save(doc, path)
	})
}

// Put stores doc under id, creating or replacing the file.
func (s *Store) Put(id string, doc *docx.Document) (string, error) {
	var saved string
	err := s.WithLock(id, func(path string) error {
		if err := touch(doc); err != nil {
			return err
		}
		saved = path
		return s.Save(doc, path)
	})
	return saved, err
}

func touch(doc *docx.Document) error {
	props, err := doc.CoreProperties()
	if err != nil {
		return err
	}
	props.SetModified(time.Now())
	props.SetLastModifiedBy("docx-mcp-server")
	return nil
}

func (s *Store) Stat(id string) (Info, error) {
	path, err := s.Resolve(id)
	if err != nil {
		return Info{}, err
	}
	id, _ = NormalizeID(id)
	return stat(id, path)
}

func stat(id, path string) (Info, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Info{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return Info{}, err
	}
	info := Info{ID: id, Path: path, Size: fi.Size(), Modified: fi.ModTime()}
	ts, err := times.Stat(path)
	if err != nil {
		return info, nil
	}
	info.Modified = ts.ModTime()
	info.Accessed = ts.AccessTime()
	if ts.HasBirthTime() {
		info.Created = ts.BirthTime()
		info.HasCreated = true
	}
	return info, nil
}

// List returns the documents under the root, sorted by id.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	var infos []Info
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), Ext) {
			continue
		}
		info, err := stat(strings.TrimSuffix(name, filepath.Ext(name)), filepath.Join(s.root, name))
		if err != nil {
			s.log.WithError(err).WithField("file", name).Warn("skipping unreadable document")
			continue
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}
