package store

import (
	"context"
	"sync"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
)

// MemoryStore keeps events in process memory only.
type MemoryStore struct {
	mu      sync.RWMutex
	events  index
	opts    options
	changes chan struct{}
	closed  bool
}

// NewMemoryStore creates an empty store
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		events:  make(index),
		opts:    buildOptions(opts),
		changes: make(chan struct{}, 1),
	}
}

func (s *MemoryStore) Insert(ctx context.Context, e model.IntakeEvent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", &model.StoreUnavailableError{Op: "insert", Err: ErrClosed}
	}
	stored, err := s.events.insert(e, s.opts)
	if err != nil {
		return "", err
	}
	notify(s.changes)
	return stored.ID, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, patch model.IntakePatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &model.StoreUnavailableError{Op: "update", Err: ErrClosed}
	}
	if err := s.events.update(id, patch, s.opts); err != nil {
		return err
	}
	notify(s.changes)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &model.StoreUnavailableError{Op: "delete", Err: ErrClosed}
	}
	if err := s.events.remove(id); err != nil {
		return err
	}
	notify(s.changes)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (model.IntakeEvent, error) {
	if err := ctx.Err(); err != nil {
		return model.IntakeEvent{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.IntakeEvent{}, &model.StoreUnavailableError{Op: "get", Err: ErrClosed}
	}
	return s.events.get(id)
}

func (s *MemoryStore) List(ctx context.Context) ([]model.IntakeEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, &model.StoreUnavailableError{Op: "list", Err: ErrClosed}
	}
	return s.events.list(), nil
}

func (s *MemoryStore) Changes() <-chan struct{} {
	return s.changes
}

// Close rejects further operations and closes the change channel.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.changes)
	return nil
}
