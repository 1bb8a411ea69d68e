package monitor

import (
	"sync"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
	"github.com/penwyp/go-dose-monitor/internal/data/repository"
)

// Layout styles cycled with the 't' key
const (
	LayoutFull = iota
	LayoutMinimal
	layoutCount
)

// InteractionState is the user-controlled part of the watch screen
type InteractionState struct {
	IsPaused    bool
	ShowHelp    bool
	LayoutStyle int
	Window      aggregator.Window

	IsLoading      bool
	LoadingMessage string
	StatusMessage  string
}

// StateManager manages watch state in a thread-safe manner
type StateManager struct {
	mu sync.RWMutex

	// Latest snapshot delivered by the repository
	snapshot    repository.Snapshot
	hasSnapshot bool

	// Views
	view         *View
	previousView *View // kept while a recompute is in flight

	// Loading state
	isLoading      bool
	loadingMessage string
	lastError      error

	interactionState InteractionState

	lastUpdate time.Time
}

// NewStateManager creates a state manager starting with the given window
func NewStateManager(window aggregator.Window) *StateManager {
	return &StateManager{
		interactionState: InteractionState{Window: window},
	}
}

// SetSnapshot stores the latest snapshot
func (sm *StateManager) SetSnapshot(snap repository.Snapshot) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.snapshot = snap
	sm.hasSnapshot = true
}

// GetSnapshot returns the latest snapshot and whether one has arrived yet
func (sm *StateManager) GetSnapshot() (repository.Snapshot, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.snapshot, sm.hasSnapshot
}

// SetView replaces the current view and clears the last error
func (sm *StateManager) SetView(view *View) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.view != nil {
		sm.previousView = sm.view
	}
	sm.view = view
	sm.lastError = nil
	sm.lastUpdate = view.GeneratedAt
}

// GetView returns the current view, or nil before the first computation.
// Views are never mutated after SetView, so sharing the pointer is safe.
func (sm *StateManager) GetView() *View {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.view
}

// GetViewForDisplay falls back to the previous view while loading
func (sm *StateManager) GetViewForDisplay() *View {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if sm.isLoading && sm.view == nil {
		return sm.previousView
	}
	return sm.view
}

// SetError records a failed recomputation. The last good view is kept.
func (sm *StateManager) SetError(err error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.lastError = err
}

// GetError returns the error of the last recomputation, if it failed
func (sm *StateManager) GetError() error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.lastError
}

// GetLoadingState returns current loading state and message
func (sm *StateManager) GetLoadingState() (bool, string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.isLoading, sm.loadingMessage
}

// SetLoadingState updates loading state and message
func (sm *StateManager) SetLoadingState(isLoading bool, message string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.isLoading = isLoading
	sm.loadingMessage = message
}

// GetInteractionState returns a copy of the interaction state with the
// loading fields filled in
func (sm *StateManager) GetInteractionState() InteractionState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	state := sm.interactionState
	state.IsLoading = sm.isLoading
	state.LoadingMessage = sm.loadingMessage
	if sm.lastError != nil {
		state.StatusMessage = sm.lastError.Error()
	}
	return state
}

// UpdateInteractionState updates specific fields of interaction state
func (sm *StateManager) UpdateInteractionState(updateFunc func(*InteractionState)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	updateFunc(&sm.interactionState)
}

// GetLastUpdate returns the time of the last successful recomputation
func (sm *StateManager) GetLastUpdate() time.Time {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.lastUpdate
}
