package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/Makepad-fr/tada/internal/log"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// Every change reloads the file under an exclusive lock on <path>.lock,
// applies the change and renames a fresh copy into place, so several
// processes can share one data file.

const (
	dataFileName = "todos.json"
	lockSuffix   = ".lock"
	lockRetry    = 10 * time.Millisecond
)

// entry is the persisted shape of an item; position is its index + 1.
type entry struct {
	Text     string         `json:"text"`
	Priority model.Priority `json:"priority"`
}

type document struct {
	Lists map[model.ListID][]entry `json:"lists"`
}

// Store is a store.Store persisted to one JSON file.
type Store struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

var _ store.Store = (*Store)(nil)

// DefaultPath is todos.json in the working directory.
func DefaultPath() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	return filepath.Join(wd, dataFileName), nil
}

// Open checks that path is readable, or absent. An empty path means DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
	}
	s := &Store{path: path, lock: flock.New(path + lockSuffix)}

	var lists int
	err := s.read(context.Background(), func(doc document) error {
		lists = len(doc.Lists)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug(log.CatStore, "json store opened", "path", path, "lists", lists)
	return s, nil
}

func load(path string) (document, error) {
	doc := document{Lists: map[model.ListID][]entry{}}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("read file: %w", err)
	}
	if len(b) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return doc, fmt.Errorf("json unmarshal: %w", err)
	}
	if doc.Lists == nil {
		doc.Lists = map[model.ListID][]entry{}
	}
	for id, entries := range doc.Lists {
		for i, e := range entries {
			if !e.Priority.IsValid() {
				return doc, fmt.Errorf("list %s item %d: unknown priority %q", id, i+1, e.Priority)
			}
		}
	}
	return doc, nil
}

// save writes doc to a temp file next to path and renames it over path.
func save(path string, doc document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

// read runs fn on the current file contents under a shared lock.
func (s *Store) read(ctx context.Context, fn func(document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lock.TryRLockContext(ctx, lockRetry); err != nil {
		return fmt.Errorf("lock %s: %w", s.lock.Path(), err)
	}
	defer func() { _ = s.lock.Unlock() }()

	doc, err := load(s.path)
	if err != nil {
		return err
	}
	return fn(doc)
}

// update reloads the file under an exclusive lock, lets fn change it and
// writes it back. Nothing is written when fn fails.
func (s *Store) update(ctx context.Context, fn func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lock.TryLockContext(ctx, lockRetry); err != nil {
		return fmt.Errorf("lock %s: %w", s.lock.Path(), err)
	}
	defer func() { _ = s.lock.Unlock() }()

	doc, err := load(s.path)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return save(s.path, doc)
}

func (s *Store) Create(ctx context.Context, id model.ListID) error {
	return s.update(ctx, func(doc *document) error {
		if _, ok := doc.Lists[id]; ok {
			return store.ErrDuplicateID
		}
		doc.Lists[id] = []entry{}
		return nil
	})
}

func (s *Store) Append(ctx context.Context, id model.ListID, d model.Draft) (model.Item, error) {
	var it model.Item
	err := s.update(ctx, func(doc *document) error {
		entries, ok := doc.Lists[id]
		if !ok {
			return &model.NotFoundError{ID: id}
		}
		doc.Lists[id] = append(entries, entry{Text: d.Text, Priority: d.Priority})
		it = model.Item{Position: len(entries) + 1, Text: d.Text, Priority: d.Priority}
		return nil
	})
	if err != nil {
		return model.Item{}, err
	}
	return it, nil
}

func (s *Store) Get(ctx context.Context, id model.ListID) (model.List, error) {
	var l model.List
	err := s.read(ctx, func(doc document) error {
		entries, ok := doc.Lists[id]
		if !ok {
			return &model.NotFoundError{ID: id}
		}
		items := make([]model.Item, len(entries))
		for i, e := range entries {
			items[i] = model.Item{Position: i + 1, Text: e.Text, Priority: e.Priority}
		}
		l = model.List{ID: id, Items: items}
		return nil
	})
	if err != nil {
		return model.List{}, err
	}
	return l, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Close releases the lock file handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lock.Close()
}
