package ports

import (
	"context"

	"github.com/xvierd/pomo/internal/domain"
)

// TimerController is the command and query surface of the timer core.
// This is a driving port (called by the TUI and the MCP server).
type TimerController interface {
	// Start arms the current phase and opens a ledger session.
	Start()

	// Pause stops the countdown without closing the session.
	Pause()

	// Resume continues a paused countdown.
	Resume()

	// Reset restores the full duration of the current phase.
	Reset()

	// Tick advances the countdown by one second. It reports whether the
	// phase expired on this tick.
	Tick() bool

	// CompleteSession closes the current phase and moves to the next one.
	CompleteSession()

	// CompleteExpired completes the phase whose countdown expired with
	// sessionID armed. It does nothing and reports false if the timer moved
	// on since.
	CompleteExpired(sessionID *string) bool

	// SkipPhase abandons the current phase early and moves to the next one.
	SkipPhase()

	// SwitchPhase manually selects a phase while the timer is idle.
	SwitchPhase(phase domain.Phase) error

	// SelectTask attaches task and project references to future sessions.
	SelectTask(taskID, projectID *string)

	// Timer returns a snapshot of the countdown state.
	Timer() domain.Timer

	// Settings returns the active settings.
	Settings() domain.Settings

	// Sessions returns the ledger, most recent first.
	Sessions() []domain.Session

	// StatsFor rolls up completed sessions within r.
	StatsFor(r domain.DateRange) domain.Stats

	// StatsForPeriod rolls up completed sessions for a named period.
	StatsForPeriod(p domain.Period) domain.Stats

	// SessionsByDateRange returns sessions of any disposition within r.
	SessionsByDateRange(r domain.DateRange) []domain.Session

	// Save persists the restorable part of the state.
	Save(ctx context.Context) error

	// Sync picks up state other processes saved in the meantime.
	Sync(ctx context.Context) error
}

// TimerCommand represents a user action during timer operation.
type TimerCommand string

const (
	// CmdStart starts the countdown.
	CmdStart TimerCommand = "start"

	// CmdPause pauses the timer.
	CmdPause TimerCommand = "pause"

	// CmdResume resumes a paused timer.
	CmdResume TimerCommand = "resume"

	// CmdReset abandons the current countdown.
	CmdReset TimerCommand = "reset"

	// CmdSkip skips to the next phase.
	CmdSkip TimerCommand = "skip"

	// CmdComplete finishes the current phase.
	CmdComplete TimerCommand = "complete"
)

// Apply runs a command against the controller.
func (c TimerCommand) Apply(t TimerController) bool {
	switch c {
	case CmdStart:
		t.Start()
	case CmdPause:
		t.Pause()
	case CmdResume:
		t.Resume()
	case CmdReset:
		t.Reset()
	case CmdSkip:
		t.SkipPhase()
	case CmdComplete:
		t.CompleteSession()
	default:
		return false
	}
	return true
}

// TimerView runs an interactive driver over the controller.
// This is a driving port (implemented by the TUI adapter).
type TimerView interface {
	// Run blocks until the user quits or ctx is cancelled.
	Run(ctx context.Context) error
}
