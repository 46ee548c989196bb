// Package ledger holds the append-only record of timed sessions.
package ledger

import (
	"time"

	"github.com/xvierd/pomo/internal/domain"
)

// Ledger keeps sessions most recent first. Entries are only ever appended,
// finished once, or dropped all together by Clear. It is not safe for
// concurrent use; the timer service serializes access.
type Ledger struct {
	sessions []domain.Session
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Append records a newly started session.
func (l *Ledger) Append(s domain.Session) {
	l.sessions = append([]domain.Session{s}, l.sessions...)
}

// Finish stamps the disposition of an open session. It returns
// domain.ErrSessionNotFound when no open session has that id.
func (l *Ledger) Finish(id string, d domain.Disposition, at time.Time) error {
	i := l.index(id)
	if i < 0 {
		return domain.ErrSessionNotFound
	}
	if !l.sessions[i].Finish(d, at) {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Get returns a copy of the session with the given id.
func (l *Ledger) Get(id string) (domain.Session, bool) {
	i := l.index(id)
	if i < 0 {
		return domain.Session{}, false
	}
	return l.sessions[i], true
}

// IsOpen reports whether id names a session that has not been finished.
func (l *Ledger) IsOpen(id string) bool {
	s, ok := l.Get(id)
	return ok && s.IsOpen()
}

// All returns a copy of every session, most recent first.
func (l *Ledger) All() []domain.Session {
	out := make([]domain.Session, len(l.sessions))
	copy(out, l.sessions)
	return out
}

// Len returns the number of recorded sessions.
func (l *Ledger) Len() int {
	return len(l.sessions)
}

// InRange returns sessions of any disposition that started within r.
func (l *Ledger) InRange(r domain.DateRange) []domain.Session {
	var out []domain.Session
	for _, s := range l.sessions {
		if r.Contains(s.DateKey()) {
			out = append(out, s)
		}
	}
	return out
}

// Clear drops every session.
func (l *Ledger) Clear() {
	l.sessions = nil
}

// Restore replaces the contents with previously persisted sessions.
func (l *Ledger) Restore(sessions []domain.Session) {
	l.sessions = make([]domain.Session, len(sessions))
	copy(l.sessions, sessions)
}

func (l *Ledger) index(id string) int {
	for i := range l.sessions {
		if l.sessions[i].ID == id {
			return i
		}
	}
	return -1
}
