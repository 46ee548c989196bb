package domain

import "fmt"

// RunState is the countdown state of the timer.
type RunState string

const (
	StateIdle    RunState = "idle"
	StateRunning RunState = "running"
	StatePaused  RunState = "paused"
)

// Label returns a human-readable label for the run state.
func (r RunState) Label() string {
	switch r {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Timer is the mutable countdown state owned by the timer service.
type Timer struct {
	Phase                    Phase
	RemainingSeconds         int
	TotalSeconds             int
	State                    RunState
	CurrentSessionID         *string
	SelectedTaskID           *string
	SelectedProjectID        *string
	CompletedSessionsInCycle int
}

// NewTimer returns an idle timer at the start of a work phase.
func NewTimer(s Settings) Timer {
	t := Timer{State: StateIdle}
	t.SetPhase(PhaseWork, s)
	return t
}

// SetPhase moves to p with a full countdown, idle and with no armed session.
// The cycle counter and selection are untouched.
func (t *Timer) SetPhase(p Phase, s Settings) {
	d := DurationSeconds(p, s)
	t.Phase = p
	t.RemainingSeconds = d
	t.TotalSeconds = d
	t.State = StateIdle
	t.CurrentSessionID = nil
}

// IsRunning returns true while the countdown is active.
func (t Timer) IsRunning() bool {
	return t.State == StateRunning
}

// IsPaused returns true when a started countdown was paused.
func (t Timer) IsPaused() bool {
	return t.State == StatePaused
}

// IsExpired returns true once the countdown hit zero and stopped,
// before the phase transition has been applied.
func (t Timer) IsExpired() bool {
	return t.RemainingSeconds == 0 && t.State == StateIdle
}

// Progress returns the elapsed share of the phase (0.0 to 1.0).
func (t Timer) Progress() float64 {
	if t.TotalSeconds <= 0 {
		return 0
	}
	return 1 - float64(t.RemainingSeconds)/float64(t.TotalSeconds)
}

// Transition is the outcome of finishing a phase.
type Transition struct {
	From                     Phase
	To                       Phase
	CompletedSessionsInCycle int
	AutoStart                bool
}

// NextPhase computes where the cycle goes after the current phase ends.
// Breaks auto-start only when leaving work with AutoStartBreaks on; work
// auto-starts only when leaving a break with AutoStartWork on.
func NextPhase(current Phase, completedInCycle int, s Settings) Transition {
	wasWork := current == PhaseWork
	count := completedInCycle
	if wasWork {
		count++
	}
	longBreak := wasWork && count >= s.SessionsBeforeLongBreak

	next := PhaseWork
	if wasWork {
		next = PhaseShortBreak
		if longBreak {
			next = PhaseLongBreak
		}
	}
	if longBreak {
		count = 0
	}

	autoStart := s.AutoStartWork
	if wasWork {
		autoStart = s.AutoStartBreaks
	}

	return Transition{
		From:                     current,
		To:                       next,
		CompletedSessionsInCycle: count,
		AutoStart:                autoStart,
	}
}

// FormatClock formats seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
