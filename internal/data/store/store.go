// Package store persists intake events and notifies listeners of changes.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

// ErrClosed is the cause of a StoreUnavailableError after Close.
var ErrClosed = errors.New("store is closed")

// Store is the event store collaborator. Writers race with last write wins.
type Store interface {
	// Insert stores e and returns its id. An empty id is generated.
	Insert(ctx context.Context, e model.IntakeEvent) (string, error)
	// Update applies patch to the event with the given id.
	Update(ctx context.Context, id string, patch model.IntakePatch) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (model.IntakeEvent, error)
	// List returns every event ordered by timestamp, most recent first.
	List(ctx context.Context) ([]model.IntakeEvent, error)
	// Changes signals after every change. Signals coalesce while nobody reads.
	Changes() <-chan struct{}
	Close() error
}

// Option configures a store
type Option func(*options)

type options struct {
	clock func() time.Time
	newID func() string
}

// WithClock overrides the time source used for createdAt and updatedAt.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		o.newID = newID
	}
}

func buildOptions(opts []Option) options {
	o := options{
		clock: func() time.Time { return util.GetTimeProvider().Now() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ListBySubject returns the events of one subject, most recent first.
func ListBySubject(ctx context.Context, s Store, subject model.Subject) ([]model.IntakeEvent, error) {
	events, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return model.FilterBySubject(events, subject), nil
}

// index is the in-memory state shared by the store implementations.
type index map[string]model.IntakeEvent

func (ix index) clone() index {
	out := make(index, len(ix))
	for k, v := range ix {
		out[k] = v
	}
	return out
}

func (ix index) insert(e model.IntakeEvent, o options) (model.IntakeEvent, error) {
	if e.ID == "" {
		e.ID = o.newID()
	}
	if _, exists := ix[e.ID]; exists {
		return e, &model.ValidationError{Field: "id", Reason: fmt.Sprintf("intake %s already exists", e.ID)}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = o.clock()
	}
	if err := e.Validate(); err != nil {
		return e, err
	}
	ix[e.ID] = e
	return e, nil
}

func (ix index) update(id string, patch model.IntakePatch, o options) error {
	if patch.IsEmpty() {
		return &model.ValidationError{Field: "patch", Reason: "no fields to update"}
	}
	current, ok := ix[id]
	if !ok {
		return fmt.Errorf("update %s: %w", id, model.ErrNotFound)
	}
	next := patch.Apply(current, o.clock())
	if err := next.Validate(); err != nil {
		return err
	}
	ix[id] = next
	return nil
}

func (ix index) remove(id string) error {
	if _, ok := ix[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, model.ErrNotFound)
	}
	delete(ix, id)
	return nil
}

func (ix index) get(id string) (model.IntakeEvent, error) {
	e, ok := ix[id]
	if !ok {
		return model.IntakeEvent{}, fmt.Errorf("get %s: %w", id, model.ErrNotFound)
	}
	return e, nil
}

func (ix index) list() []model.IntakeEvent {
	events := make([]model.IntakeEvent, 0, len(ix))
	for _, e := range ix {
		events = append(events, e)
	}
	model.SortByTimestampDesc(events)
	return events
}

// notify sends a change signal without blocking. A pending signal already
// covers the new change.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
