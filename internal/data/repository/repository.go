// Package repository holds the current snapshot of all intake events and
// pushes full replacement snapshots to subscribers.
package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

// Source is the part of the event store the repository reads from.
type Source interface {
	List(ctx context.Context) ([]model.IntakeEvent, error)
	Changes() <-chan struct{}
}

// Snapshot is an immutable view of every event at one point in time.
// Consumers must not modify Events and must not rely on its order.
type Snapshot struct {
	Events  []model.IntakeEvent
	Version uint64
	TakenAt time.Time
}

// Callback receives snapshots on the subscription's own goroutine.
type Callback func(Snapshot)

// Repository owns the canonical snapshot. The snapshot pointer is swapped
// atomically so readers never see a partial update.
type Repository struct {
	source  Source
	clock   func() time.Time
	current atomic.Pointer[Snapshot]

	mu      sync.Mutex
	subs    map[uint64]*Subscription
	nextID  uint64
	version uint64
	closed  bool
	wg      sync.WaitGroup
}

// New creates a repository reading from source. The snapshot is empty
// until Refresh or Start loads it.
func New(source Source) *Repository {
	r := &Repository{
		source: source,
		clock:  func() time.Time { return util.GetTimeProvider().Now() },
		subs:   make(map[uint64]*Subscription),
	}
	r.current.Store(&Snapshot{Events: []model.IntakeEvent{}})
	return r
}

// Snapshot returns the current snapshot
func (r *Repository) Snapshot() Snapshot {
	return *r.current.Load()
}

// Refresh reads the full event list from the source and publishes it.
// Store failures are returned unchanged and keep the previous snapshot.
func (r *Repository) Refresh(ctx context.Context) error {
	events, err := r.source.List(ctx)
	if err != nil {
		return err
	}
	r.publish(events)
	return nil
}

func (r *Repository) publish(events []model.IntakeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.version++
	snap := &Snapshot{
		Events:  model.CloneEvents(events),
		Version: r.version,
		TakenAt: r.clock(),
	}
	// replaced before any delivery
	r.current.Store(snap)
	for _, sub := range r.subs {
		sub.offer(*snap)
	}
	util.LogDebug("Published snapshot", util.F("version", snap.Version), util.F("events", len(snap.Events)))
}

// Start loads the initial snapshot and then follows the source's change
// notifications until ctx is cancelled or the source closes its channel.
func (r *Repository) Start(ctx context.Context) error {
	if err := r.Refresh(ctx); err != nil {
		util.LogWarn("Initial snapshot load failed", util.F("error", err))
	}

	changes := r.source.Changes()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				util.LogDebug("Event source closed its change channel")
				return nil
			}
			if err := r.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				util.LogWarn("Snapshot refresh failed", util.F("error", err))
			}
		}
	}
}

// Subscribe delivers the current snapshot right away and every later
// snapshot after it. Delivery never blocks the publisher: a subscriber that
// falls behind only receives the newest snapshot.
func (r *Repository) Subscribe(callback Callback) *Subscription {
	sub := &Subscription{
		repo:     r,
		callback: callback,
		mailbox:  make(chan Snapshot, 1),
		done:     make(chan struct{}),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		sub.stopped = true
		close(sub.done)
		return sub
	}

	r.nextID++
	sub.id = r.nextID
	r.subs[sub.id] = sub
	sub.offer(*r.current.Load())

	r.wg.Add(1)
	go sub.run(&r.wg)
	return sub
}

func (r *Repository) remove(id uint64) {
	r.mu.Lock()
	delete(r.subs, id)
	r.mu.Unlock()
}

// Subscribers returns the number of active subscriptions
func (r *Repository) Subscribers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Close cancels every subscription and waits for their goroutines to exit.
func (r *Repository) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	subs := make([]*Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		subs = append(subs, sub)
	}
	r.subs = map[uint64]*Subscription{}
	r.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
	r.wg.Wait()
}

// Subscription is a live registration returned by Subscribe.
type Subscription struct {
	id       uint64
	repo     *Repository
	callback Callback
	mailbox  chan Snapshot
	done     chan struct{}

	mu      sync.Mutex
	stopped bool
}

// offer replaces any undelivered snapshot with snap. Only the publisher
// calls it, under the repository lock.
func (s *Subscription) offer(snap Snapshot) {
	select {
	case s.mailbox <- snap:
		return
	default:
	}
	select {
	case <-s.mailbox:
	default:
	}
	select {
	case s.mailbox <- snap:
	default:
	}
}

func (s *Subscription) run(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-s.done:
			return
		case snap := <-s.mailbox:
			if !s.begin() {
				return
			}
			s.callback(snap)
		}
	}
}

// begin reports whether a delivery may start. Once Unsubscribe returned no
// new delivery starts.
func (s *Subscription) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped
}

func (s *Subscription) stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.stopped = true
	close(s.done)
	return true
}

// Unsubscribe stops further deliveries. A callback that is already running
// finishes; it is safe to call Unsubscribe from inside the callback.
func (s *Subscription) Unsubscribe() {
	if s.stop() && s.repo != nil {
		s.repo.remove(s.id)
	}
}
