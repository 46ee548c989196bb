package ports

import (
	"context"
)

// MCPHandler serves the timer to AI assistants over the Model Context
// Protocol. While it runs it also drives the countdown, so the timer keeps
// ticking without a TUI attached.
type MCPHandler interface {
	// Start serves until ctx is cancelled or the client disconnects,
	// then saves the timer.
	Start(ctx context.Context) error

	// Stop ends the countdown driver.
	Stop() error

	// IsRunning reports whether Start is in progress.
	IsRunning() bool
}
