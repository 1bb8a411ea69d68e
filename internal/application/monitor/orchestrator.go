package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
	"github.com/penwyp/go-dose-monitor/internal/data/repository"
	"github.com/penwyp/go-dose-monitor/internal/presentation/interaction"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

// Orchestrator drives the watch loop: it follows repository snapshots,
// recomputes the view on every snapshot and on every "now" tick, and hands
// the result to the renderer.
type Orchestrator struct {
	config *Config

	source       SnapshotSource
	refreshCtrl  *RefreshController
	stateManager *StateManager

	renderer Renderer
	input    InputHandler

	clock     func() time.Time
	location  *time.Location
	snapshots chan repository.Snapshot
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithClock overrides the time source used for "now"
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) {
		o.clock = clock
	}
}

// WithLocation sets the time zone days are bucketed in
func WithLocation(loc *time.Location) Option {
	return func(o *Orchestrator) {
		o.location = loc
	}
}

// WithInput attaches a keyboard
func WithInput(input InputHandler) Option {
	return func(o *Orchestrator) {
		o.input = input
	}
}

// NewOrchestrator creates a new Orchestrator instance
func NewOrchestrator(config *Config, source SnapshotSource, renderer Renderer, opts ...Option) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := &Orchestrator{
		config:    config,
		source:    source,
		renderer:  renderer,
		clock:     func() time.Time { return util.GetTimeProvider().Now() },
		snapshots: make(chan repository.Snapshot, 1),
	}
	for _, opt := range opts {
		opt(o)
	}

	refreshCtrl, err := NewRefreshController(config, o.location)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh controller: %w", err)
	}
	o.refreshCtrl = refreshCtrl
	o.stateManager = NewStateManager(config.Window)
	return o, nil
}

// StateManager exposes the watch state
func (o *Orchestrator) StateManager() *StateManager {
	return o.stateManager
}

// Run starts the main loop and blocks until ctx is cancelled or the user
// quits. On return the repository subscription and the ticker are stopped.
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting dose monitor watch",
		util.F("window", o.config.Window.String()),
		util.F("refresh", o.config.NowRefreshInterval.String()))

	if screen, ok := o.renderer.(ScreenController); ok {
		screen.EnterAlternateScreen()
		defer screen.ExitAlternateScreen()
	}
	if o.input != nil {
		defer o.input.Close()
	}

	o.stateManager.SetLoadingState(true, "Loading intakes...")
	o.updateDisplay()

	sub := o.source.Subscribe(o.offer)
	defer sub.Unsubscribe()

	ticker := time.NewTicker(o.config.NowRefreshInterval)
	defer ticker.Stop()

	var keys <-chan interaction.KeyEvent
	if o.input != nil {
		keys = o.input.Events()
	}

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down dose monitor watch")
			return nil

		case snap := <-o.snapshots:
			o.stateManager.SetSnapshot(snap)
			o.stateManager.SetLoadingState(false, "")
			if !o.stateManager.GetInteractionState().IsPaused {
				o.recompute()
			}
			o.updateDisplay()

		case <-ticker.C:
			if !o.stateManager.GetInteractionState().IsPaused {
				o.recompute()
				o.updateDisplay()
			}

		case event, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			if o.handleKeyboard(event) {
				return nil
			}
			o.updateDisplay()
		}
	}
}

// offer keeps only the newest undelivered snapshot. The repository calls it
// from a single delivery goroutine.
func (o *Orchestrator) offer(snap repository.Snapshot) {
	for {
		select {
		case o.snapshots <- snap:
			return
		default:
		}
		select {
		case <-o.snapshots:
		default:
		}
	}
}

// recompute rebuilds the view from the latest snapshot at the current time
func (o *Orchestrator) recompute() {
	snap, ok := o.stateManager.GetSnapshot()
	if !ok {
		return
	}
	window := o.stateManager.GetInteractionState().Window

	view, err := o.refreshCtrl.Compute(snap, window, o.clock())
	if err != nil {
		util.LogError("Failed to recompute view", util.F("error", err.Error()))
		o.stateManager.SetError(err)
		return
	}
	o.stateManager.SetView(view)
}

// updateDisplay renders the current view
func (o *Orchestrator) updateDisplay() {
	if o.renderer == nil {
		return
	}
	view := o.stateManager.GetViewForDisplay()
	state := o.stateManager.GetInteractionState()
	if err := o.renderer.Render(view, state); err != nil {
		util.LogError("Failed to render view", util.F("error", err.Error()))
	}
}

// handleKeyboard handles keyboard events and reports whether to exit
func (o *Orchestrator) handleKeyboard(event interaction.KeyEvent) bool {
	switch event.Type {
	case interaction.KeyChar:
		switch event.Key {
		case 'q', 'Q', 3: // 'q', 'Q', or Ctrl+C
			return true
		case 'r', 'R':
			o.recompute()
		case 'p', 'P':
			o.stateManager.UpdateInteractionState(func(s *InteractionState) {
				s.IsPaused = !s.IsPaused
			})
			if !o.stateManager.GetInteractionState().IsPaused {
				o.recompute()
			}
		case 'h', 'H', '?':
			o.stateManager.UpdateInteractionState(func(s *InteractionState) {
				s.ShowHelp = !s.ShowHelp
			})
		case 't', 'T':
			o.stateManager.UpdateInteractionState(func(s *InteractionState) {
				s.LayoutStyle = (s.LayoutStyle + 1) % layoutCount
			})
			if screen, ok := o.renderer.(ScreenController); ok {
				screen.ClearScreen()
			}
		case 'w', 'W':
			o.stateManager.UpdateInteractionState(func(s *InteractionState) {
				s.Window = nextWindow(s.Window)
			})
			o.recompute()
		}
	case interaction.KeyEscape:
		// If help is shown, close it; otherwise quit
		if o.stateManager.GetInteractionState().ShowHelp {
			o.stateManager.UpdateInteractionState(func(s *InteractionState) {
				s.ShowHelp = false
			})
		} else {
			return true
		}
	}
	return false
}

// nextWindow cycles through the supported windows
func nextWindow(current aggregator.Window) aggregator.Window {
	windows := aggregator.AllWindows()
	for i, w := range windows {
		if w == current {
			return windows[(i+1)%len(windows)]
		}
	}
	return aggregator.DefaultWindow
}
