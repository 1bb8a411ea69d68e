package monitor

import (
	"github.com/penwyp/go-dose-monitor/internal/data/repository"
	"github.com/penwyp/go-dose-monitor/internal/presentation/interaction"
)

// SnapshotSource is the part of the event repository the monitor reads from
type SnapshotSource interface {
	// Snapshot returns the current snapshot without waiting
	Snapshot() repository.Snapshot
	// Subscribe delivers the current snapshot and every later one
	Subscribe(callback repository.Callback) *repository.Subscription
}

// Renderer draws a computed view
type Renderer interface {
	Render(view *View, state InteractionState) error
}

// ScreenController is implemented by renderers that own a full terminal screen
type ScreenController interface {
	EnterAlternateScreen()
	ExitAlternateScreen()
	ClearScreen()
}

// InputHandler processes keyboard input
type InputHandler interface {
	// Events returns a channel of keyboard events
	Events() <-chan interaction.KeyEvent
	// Close cleans up input handler resources
	Close() error
}
