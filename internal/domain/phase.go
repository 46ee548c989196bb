package domain

import "fmt"

// Phase is the kind of interval the timer is counting down.
type Phase string

const (
	PhaseWork       Phase = "work"
	PhaseShortBreak Phase = "shortBreak"
	PhaseLongBreak  Phase = "longBreak"
)

// Phases lists every phase in cycle order.
var Phases = []Phase{PhaseWork, PhaseShortBreak, PhaseLongBreak}

// ParsePhase validates a phase name.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	for _, valid := range Phases {
		if p == valid {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w %q: must be one of work, shortBreak, longBreak", ErrInvalidPhase, s)
}

// Label returns a human-readable label.
func (p Phase) Label() string {
	switch p {
	case PhaseWork:
		return "Focus"
	case PhaseShortBreak:
		return "Short Break"
	case PhaseLongBreak:
		return "Long Break"
	default:
		return "Unknown"
	}
}

// IsBreak returns true for either break phase.
func (p Phase) IsBreak() bool {
	return p == PhaseShortBreak || p == PhaseLongBreak
}

// DurationSeconds maps a phase to its configured length in seconds.
// Unknown phases are timed as work.
func DurationSeconds(p Phase, s Settings) int {
	switch p {
	case PhaseShortBreak:
		return s.ShortBreakDuration * 60
	case PhaseLongBreak:
		return s.LongBreakDuration * 60
	default:
		return s.WorkDuration * 60
	}
}
