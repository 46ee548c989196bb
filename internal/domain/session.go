package domain

import (
	"math"
	"time"
)

// Disposition records how a ledger session ended.
type Disposition string

const (
	// DispositionOpen marks a session whose phase is still being timed.
	DispositionOpen      Disposition = "open"
	DispositionCompleted Disposition = "completed"
	DispositionSkipped   Disposition = "skipped"
	// DispositionAbandoned marks a session dropped by a reset or a restart.
	DispositionAbandoned Disposition = "abandoned"
)

// ValidDispositions lists every disposition.
var ValidDispositions = []Disposition{
	DispositionOpen,
	DispositionCompleted,
	DispositionSkipped,
	DispositionAbandoned,
}

// Label returns a human-readable label.
func (d Disposition) Label() string {
	switch d {
	case DispositionOpen:
		return "Open"
	case DispositionCompleted:
		return "Completed"
	case DispositionSkipped:
		return "Skipped"
	case DispositionAbandoned:
		return "Abandoned"
	default:
		return "Unknown"
	}
}

// Session is one timed interval attempt recorded in the ledger.
type Session struct {
	ID              string
	TaskID          *string
	ProjectID       *string
	Phase           Phase
	DurationMinutes int
	StartedAt       time.Time
	CompletedAt     *time.Time
	Disposition     Disposition
}

// NewSession opens a ledger session for a phase with remainingSeconds left on the clock.
// The intended length is rounded up to whole minutes.
func NewSession(phase Phase, remainingSeconds int, taskID, projectID *string, now time.Time) Session {
	return Session{
		ID:              generateID(),
		TaskID:          copyString(taskID),
		ProjectID:       copyString(projectID),
		Phase:           phase,
		DurationMinutes: int(math.Ceil(float64(remainingSeconds) / 60)),
		StartedAt:       now,
		Disposition:     DispositionOpen,
	}
}

// IsOpen returns true while the session has not been finished.
func (s Session) IsOpen() bool {
	return s.Disposition == DispositionOpen
}

// IsCompleted returns true only for sessions that ran to completion.
func (s Session) IsCompleted() bool {
	return s.Disposition == DispositionCompleted
}

// IsWork returns true if this session timed a work phase.
func (s Session) IsWork() bool {
	return s.Phase == PhaseWork
}

// Finish stamps the single end-of-life transition. Abandoned sessions carry
// no completion time. It reports false if the session was already finished.
func (s *Session) Finish(d Disposition, at time.Time) bool {
	if !s.IsOpen() || d == DispositionOpen {
		return false
	}
	s.Disposition = d
	if d != DispositionAbandoned {
		t := at
		s.CompletedAt = &t
	}
	return true
}

// DateKey returns the day the session started on.
func (s Session) DateKey() DateKey {
	return DateKeyOf(s.StartedAt)
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
