package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/data/parser"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

var logger = util.Component("store")

// FileStore persists events to a JSONL file, one record per line. Every
// write replaces the file atomically. Edits made by other processes are
// picked up through fsnotify.
type FileStore struct {
	path    string
	opts    options
	parser  *parser.Parser
	watcher *fsnotify.Watcher

	mu          sync.Mutex
	events      index
	lastInfo    *util.FileInfo
	fingerprint string
	closed      bool

	changes chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewFileStore opens or creates the store file at path and starts watching it.
func NewFileStore(path string, opts ...Option) (*FileStore, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &model.StoreUnavailableError{Op: "open", Err: err}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, nil, 0644); err != nil {
			return nil, &model.StoreUnavailableError{Op: "open", Err: err}
		}
	}

	s := &FileStore{
		path:    path,
		opts:    buildOptions(opts),
		parser:  parser.NewParser(1),
		events:  make(index),
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	if _, err := s.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &model.StoreUnavailableError{Op: "watch", Err: err}
	}
	// The directory is watched because writes replace the file by rename.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, &model.StoreUnavailableError{Op: "watch", Err: err}
	}
	s.watcher = watcher

	s.wg.Add(1)
	go s.processEvents()

	logger.Info("Opened intake store", util.F("path", path), util.F("events", len(s.events)))
	return s, nil
}

// Path returns the store file location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) processEvents() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			changed, err := s.reload()
			if err != nil {
				logger.Warn("Failed to reload intake store", util.F("path", s.path), util.F("error", err))
				continue
			}
			if changed {
				logger.Debug("Intake store changed on disk", util.F("op", event.Op.String()))
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.Errorf("File monitoring error: %v", err)
		}
	}
}

// reload re-reads the file when its identity or content changed since the
// last read or write. It reports whether the in-memory state was replaced.
func (s *FileStore) reload() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, nil
	}

	info, err := util.GetFileInfo(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// mid-replacement by another writer; the following create event reloads
			return false, nil
		}
		return false, &model.StoreUnavailableError{Op: "reload", Err: err}
	}
	if info.SameAs(s.lastInfo) {
		return false, nil
	}

	fingerprint, err := util.CalculateFileFingerprint(s.path)
	if err != nil {
		return false, &model.StoreUnavailableError{Op: "reload", Err: err}
	}
	if fingerprint == s.fingerprint {
		s.lastInfo = info
		return false, nil
	}

	// lastInfo only advances on success so a failed parse is retried
	events, skipped, err := s.parser.ParseFile(s.path)
	if err != nil {
		return false, &model.StoreUnavailableError{Op: "reload", Err: err}
	}
	s.lastInfo = info
	if skipped > 0 {
		logger.Warn("Skipped unreadable intake records", util.F("path", s.path), util.F("skipped", skipped))
	}

	next := make(index, len(events))
	for _, e := range events {
		next[e.ID] = e
	}
	s.events = next
	s.fingerprint = fingerprint
	notify(s.changes)
	return true, nil
}

// persist writes next to a temporary file and renames it over the store file.
// The in-memory state only changes when the write succeeded.
func (s *FileStore) persist(op string, next index) error {
	events := next.list()
	model.SortByTimestamp(events)

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return &model.StoreUnavailableError{Op: op, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &model.StoreUnavailableError{Op: op, Err: cause}
	}

	if err := parser.Encode(tmp, events); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &model.StoreUnavailableError{Op: op, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &model.StoreUnavailableError{Op: op, Err: err}
	}

	s.events = next
	if info, err := util.GetFileInfo(s.path); err == nil {
		s.lastInfo = info
	}
	if fingerprint, err := util.CalculateFileFingerprint(s.path); err == nil {
		s.fingerprint = fingerprint
	}
	notify(s.changes)
	return nil
}

func (s *FileStore) Insert(ctx context.Context, e model.IntakeEvent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", &model.StoreUnavailableError{Op: "insert", Err: ErrClosed}
	}

	next := s.events.clone()
	stored, err := next.insert(e, s.opts)
	if err != nil {
		return "", err
	}
	if err := s.persist("insert", next); err != nil {
		return "", err
	}
	logger.Debug("Inserted intake", util.F("id", stored.ID), util.F("subject", stored.Subject.String()))
	return stored.ID, nil
}

func (s *FileStore) Update(ctx context.Context, id string, patch model.IntakePatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &model.StoreUnavailableError{Op: "update", Err: ErrClosed}
	}

	next := s.events.clone()
	if err := next.update(id, patch, s.opts); err != nil {
		return err
	}
	return s.persist("update", next)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &model.StoreUnavailableError{Op: "delete", Err: ErrClosed}
	}

	next := s.events.clone()
	if err := next.remove(id); err != nil {
		return err
	}
	return s.persist("delete", next)
}

func (s *FileStore) Get(ctx context.Context, id string) (model.IntakeEvent, error) {
	if err := ctx.Err(); err != nil {
		return model.IntakeEvent{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.IntakeEvent{}, &model.StoreUnavailableError{Op: "get", Err: ErrClosed}
	}
	return s.events.get(id)
}

func (s *FileStore) List(ctx context.Context) ([]model.IntakeEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, &model.StoreUnavailableError{Op: "list", Err: ErrClosed}
	}
	return s.events.list(), nil
}

func (s *FileStore) Changes() <-chan struct{} {
	return s.changes
}

// Close stops watching the file and closes the change channel.
func (s *FileStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	err := s.watcher.Close()
	s.wg.Wait()

	s.mu.Lock()
	close(s.changes)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	return nil
}
