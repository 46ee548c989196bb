// Package services implements the application layer: the timer state
// machine shared by the CLI, the TUI and the MCP server.
package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/xvierd/pomo/internal/domain"
	"github.com/xvierd/pomo/internal/ledger"
	"github.com/xvierd/pomo/internal/ports"
)

// TimerService owns the countdown, the session ledger and the settings.
// Every operation is applied atomically; none of the state-machine commands
// fail, invalid commands are ignored.
type TimerService struct {
	mu       sync.Mutex
	store    ports.StateStore
	now      func() time.Time
	logger   *log.Logger
	settings domain.Settings
	timer    domain.Timer
	ledger   *ledger.Ledger

	// What this process last read from or wrote to the store. Saves from
	// other processes are merged against it.
	revision     int64
	baseIDs      map[string]struct{}
	baseSettings domain.Settings
	baseTimer    domain.PersistedTimer
	dirty        map[string]struct{}
}

// NewTimerService creates a timer service seeded with settings.
// Invalid seed settings fall back to the defaults. store may be nil for a
// purely in-memory timer.
func NewTimerService(store ports.StateStore, settings domain.Settings) *TimerService {
	if settings.Validate() != nil {
		settings = domain.DefaultSettings()
	}
	s := &TimerService{
		store:    store,
		now:      time.Now,
		logger:   log.New(io.Discard, "", 0),
		settings: settings,
		timer:    domain.NewTimer(settings),
		ledger:   ledger.New(),
	}
	s.setBase(s.snapshot())
	return s
}

// SetClock replaces the time source used for session stamps and stats ranges.
func (s *TimerService) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetLogger sets where recoverable anomalies are reported.
func (s *TimerService) SetLogger(logger *log.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s.logger = logger
}

// Start arms the current phase. It is a no-op while running or once the
// countdown has already reached zero.
func (s *TimerService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start()
}

func (s *TimerService) start() {
	if s.timer.IsRunning() || s.timer.RemainingSeconds <= 0 {
		return
	}
	// A start from paused re-arms with a fresh session.
	s.finishCurrent(domain.DispositionAbandoned)

	session := domain.NewSession(
		s.timer.Phase,
		s.timer.RemainingSeconds,
		s.timer.SelectedTaskID,
		s.timer.SelectedProjectID,
		s.now(),
	)
	s.ledger.Append(session)
	s.dirty[session.ID] = struct{}{}

	id := session.ID
	s.timer.CurrentSessionID = &id
	s.timer.State = domain.StateRunning
}

// Pause stops a running countdown. The open session stays open.
func (s *TimerService) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer.IsRunning() {
		s.timer.State = domain.StatePaused
	}
}

// Resume continues a paused countdown without opening a new session.
// Resuming an idle timer behaves like Start.
func (s *TimerService) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.timer.State {
	case domain.StatePaused:
		s.timer.State = domain.StateRunning
	case domain.StateIdle:
		s.start()
	}
}

// Reset restores the full duration of the current phase and abandons the
// open session.
func (s *TimerService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishCurrent(domain.DispositionAbandoned)
	s.timer.SetPhase(s.timer.Phase, s.settings)
}

// Tick advances a running countdown by one second. At zero the timer stops
// and Tick reports true; the caller then completes the session.
func (s *TimerService) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.timer.IsRunning() || s.timer.RemainingSeconds <= 0 {
		return false
	}
	s.timer.RemainingSeconds--
	if s.timer.RemainingSeconds == 0 {
		s.timer.State = domain.StateIdle
		return true
	}
	return false
}

// CompleteSession marks the open session completed and moves to the next phase.
func (s *TimerService) CompleteSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishCurrent(domain.DispositionCompleted)
	s.advance()
}

// CompleteExpired completes a phase whose countdown ran out, but only while
// the timer still holds the expired session sessionID. A reset, skip, switch
// or completion that got in first wins, and CompleteExpired reports false.
func (s *TimerService) CompleteExpired(sessionID *string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.timer.IsExpired() || !sameID(s.timer.CurrentSessionID, sessionID) {
		return false
	}
	s.finishCurrent(domain.DispositionCompleted)
	s.advance()
	return true
}

// SkipPhase marks the open session skipped and moves to the next phase.
func (s *TimerService) SkipPhase() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishCurrent(domain.DispositionSkipped)
	s.advance()
}

// SwitchPhase selects a phase manually. It is refused while a countdown is
// running or paused, and never touches the cycle counter.
func (s *TimerService) SwitchPhase(phase domain.Phase) error {
	p, err := domain.ParsePhase(string(phase))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer.State != domain.StateIdle {
		return domain.ErrTimerActive
	}
	// An expired countdown may still hold its session.
	s.finishCurrent(domain.DispositionAbandoned)
	s.timer.SetPhase(p, s.settings)
	return nil
}

// SelectTask attaches references to sessions started from now on.
func (s *TimerService) SelectTask(taskID, projectID *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.SelectedTaskID = cloneString(taskID)
	s.timer.SelectedProjectID = cloneString(projectID)
}

// UpdateSettings validates and applies a partial settings change. The
// current phase's total is recomputed; the remaining time is too unless the
// countdown is running.
func (s *TimerService) UpdateSettings(patch domain.SettingsPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.settings.Apply(patch)
	if err := merged.Validate(); err != nil {
		return err
	}
	s.settings = merged
	s.resize()
	return nil
}

// resize recomputes the current phase's duration after a settings change.
func (s *TimerService) resize() {
	d := domain.DurationSeconds(s.timer.Phase, s.settings)
	s.timer.TotalSeconds = d
	if !s.timer.IsRunning() || s.timer.RemainingSeconds > d {
		s.timer.RemainingSeconds = d
	}
	s.timer.CompletedSessionsInCycle = clampCycle(s.timer.CompletedSessionsInCycle, s.settings)
}

// ClearSessions empties the ledger. A session armed by a live countdown is kept.
func (s *TimerService) ClearSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var armed *domain.Session
	if id := s.timer.CurrentSessionID; id != nil {
		if sess, ok := s.ledger.Get(*id); ok && sess.IsOpen() {
			armed = &sess
		}
	}
	s.ledger.Clear()
	if armed != nil {
		s.ledger.Append(*armed)
	}
}

// finishCurrent stamps the armed session, tolerating a ledger that lost it.
func (s *TimerService) finishCurrent(d domain.Disposition) {
	id := s.timer.CurrentSessionID
	if id == nil {
		return
	}
	s.timer.CurrentSessionID = nil
	if err := s.ledger.Finish(*id, d, s.now()); err != nil {
		s.logger.Printf("Warning: session %s: %v, continuing", *id, err)
		return
	}
	s.dirty[*id] = struct{}{}
}

// advance applies the phase transition.
func (s *TimerService) advance() {
	tr := domain.NextPhase(s.timer.Phase, s.timer.CompletedSessionsInCycle, s.settings)
	s.timer.SetPhase(tr.To, s.settings)
	s.timer.CompletedSessionsInCycle = tr.CompletedSessionsInCycle
	if tr.AutoStart {
		s.start()
	}
}

// Timer returns a snapshot of the countdown state.
func (s *TimerService) Timer() domain.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.timer
	t.CurrentSessionID = cloneString(t.CurrentSessionID)
	t.SelectedTaskID = cloneString(t.SelectedTaskID)
	t.SelectedProjectID = cloneString(t.SelectedProjectID)
	return t
}

// Settings returns the active settings.
func (s *TimerService) Settings() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Sessions returns the ledger, most recent first.
func (s *TimerService) Sessions() []domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.All()
}

// TodayStats rolls up today's completed sessions.
func (s *TimerService) TodayStats() domain.Stats {
	return s.StatsForPeriod(domain.PeriodToday)
}

// WeekStats rolls up the current Monday-to-Sunday week.
func (s *TimerService) WeekStats() domain.Stats {
	return s.StatsForPeriod(domain.PeriodWeek)
}

// MonthStats rolls up the current calendar month.
func (s *TimerService) MonthStats() domain.Stats {
	return s.StatsForPeriod(domain.PeriodMonth)
}

// StatsForPeriod rolls up a named period relative to the service clock.
func (s *TimerService) StatsForPeriod(p domain.Period) domain.Stats {
	s.mu.Lock()
	now := s.now()
	s.mu.Unlock()
	return s.StatsFor(p.Range(now))
}

// StatsFor rolls up completed sessions within r.
func (s *TimerService) StatsFor(r domain.DateRange) domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Aggregate(s.ledger.All(), r)
}

// SessionsByDateRange returns sessions of any disposition within r.
func (s *TimerService) SessionsByDateRange(r domain.DateRange) []domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.InRange(r)
}

// Summary describes the whole ledger.
func (s *TimerService) Summary() domain.LedgerSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Summarize(s.ledger.All())
}

// Load restores the persisted state. Durations are recomputed from the
// restored settings rather than read back, and the timer always comes back idle.
func (s *TimerService) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	state, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load timer state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.restore(state)
	base := s.snapshot()
	if state != nil {
		base.Revision = state.Revision
	}
	s.setBase(base)
	s.dirty = make(map[string]struct{})
	return nil
}

// Sync adopts what other processes saved since this one last loaded or
// saved. Long-lived drivers call it so one-shot commands run in between
// are not reverted by their next save.
func (s *TimerService) Sync(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	state, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to sync timer state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A read that raced one of our own saves is older, not newer.
	if state == nil || state.Revision <= s.revision {
		return nil
	}
	s.merge(state)
	s.setBase(state)
	return nil
}

func (s *TimerService) restore(state *domain.PersistedState) {
	if state == nil {
		return
	}

	settings := s.settings
	if state.Settings != nil {
		if err := state.Settings.Validate(); err != nil {
			s.logger.Printf("Warning: ignoring persisted settings: %v", err)
		} else {
			settings = *state.Settings
		}
	}

	phase := domain.PhaseWork
	cycle := 0
	if state.Timer != nil {
		if p, err := domain.ParsePhase(string(state.Timer.Phase)); err == nil {
			phase = p
		}
		cycle = clampCycle(state.Timer.CompletedSessionsInCycle, settings)
	}

	restoredAt := s.now()
	sessions := make([]domain.Session, len(state.Sessions))
	copy(sessions, state.Sessions)
	for i := range sessions {
		// Nothing is counting these down any more.
		sessions[i].Finish(domain.DispositionAbandoned, restoredAt)
	}

	s.settings = settings
	s.ledger.Restore(sessions)

	selectedTask, selectedProject := s.timer.SelectedTaskID, s.timer.SelectedProjectID
	s.timer = domain.NewTimer(settings)
	s.timer.SetPhase(phase, settings)
	s.timer.CompletedSessionsInCycle = cycle
	s.timer.SelectedTaskID = selectedTask
	s.timer.SelectedProjectID = selectedProject
}

// Snapshot returns the restorable part of the state.
func (s *TimerService) Snapshot() *domain.PersistedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *TimerService) snapshot() *domain.PersistedState {
	settings := s.settings
	return &domain.PersistedState{
		Settings: &settings,
		Sessions: s.ledger.All(),
		Timer: &domain.PersistedTimer{
			Phase:                    s.timer.Phase,
			CompletedSessionsInCycle: s.timer.CompletedSessionsInCycle,
		},
	}
}

// Save persists the restorable part of the state. When another process
// saved in the meantime, its changes are merged in first.
func (s *TimerService) Save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var written *domain.PersistedState
	err := s.store.Update(ctx, func(current *domain.PersistedState) (*domain.PersistedState, error) {
		if current != nil && current.Revision > s.revision {
			s.merge(current)
		}
		written = s.snapshot()
		return written, nil
	})
	if err != nil {
		return fmt.Errorf("failed to save timer state: %w", err)
	}
	s.setBase(written)
	s.dirty = make(map[string]struct{})
	return nil
}

// merge folds theirs, saved by another process, into the local state.
// Whichever side changed something since the shared base wins; on a true
// conflict the local countdown wins because it is the one running.
func (s *TimerService) merge(theirs *domain.PersistedState) {
	armed := ""
	if id := s.timer.CurrentSessionID; id != nil {
		armed = *id
	}
	keepOurs := func(id string) bool {
		_, changed := s.dirty[id]
		return changed || id == armed
	}
	s.ledger.Restore(mergeSessions(s.ledger.All(), theirs.Sessions, s.baseIDs, keepOurs))

	if st := theirs.Settings; st != nil && *st != s.baseSettings && s.settings == s.baseSettings {
		if err := st.Validate(); err != nil {
			s.logger.Printf("Warning: ignoring saved settings: %v", err)
		} else {
			s.settings = *st
			s.resize()
		}
	}

	local := domain.PersistedTimer{Phase: s.timer.Phase, CompletedSessionsInCycle: s.timer.CompletedSessionsInCycle}
	idle := s.timer.State == domain.StateIdle && s.timer.CurrentSessionID == nil
	if t := theirs.Timer; t != nil && *t != s.baseTimer && local == s.baseTimer && idle {
		if p, err := domain.ParsePhase(string(t.Phase)); err == nil {
			s.timer.SetPhase(p, s.settings)
			s.timer.CompletedSessionsInCycle = clampCycle(t.CompletedSessionsInCycle, s.settings)
		}
	}
}

// setBase records state as the last one shared with the store.
func (s *TimerService) setBase(state *domain.PersistedState) {
	s.revision = state.Revision
	s.baseIDs = make(map[string]struct{}, len(state.Sessions))
	for _, sess := range state.Sessions {
		s.baseIDs[sess.ID] = struct{}{}
	}
	if state.Settings != nil {
		s.baseSettings = *state.Settings
	}
	if state.Timer != nil {
		s.baseTimer = *state.Timer
	}
	if s.dirty == nil {
		s.dirty = make(map[string]struct{})
	}
}

// clampCycle keeps a restored counter below the long-break threshold.
func clampCycle(n int, s domain.Settings) int {
	if n < 0 {
		return 0
	}
	if n >= s.SessionsBeforeLongBreak {
		return s.SessionsBeforeLongBreak - 1
	}
	return n
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Ensure TimerService implements ports.TimerController.
var _ ports.TimerController = (*TimerService)(nil)
