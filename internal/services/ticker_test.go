package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xvierd/pomo/internal/domain"
)

type recordingNotifier struct {
	phases []domain.Phase
	err    error
}

func (n *recordingNotifier) NotifyPhaseComplete(phase domain.Phase, settings domain.Settings) error {
	n.phases = append(n.phases, phase)
	return n.err
}

func TestTicker_Step(t *testing.T) {
	s := domain.DefaultSettings()
	s.WorkDuration = 1
	store := &memStore{}
	svc := NewTimerService(store, s)
	notifier := &recordingNotifier{}
	ticker := NewTicker(svc, notifier, 0)

	if ticker.Interval() != time.Second {
		t.Errorf("Interval() = %v, want %v", ticker.Interval(), time.Second)
	}

	var expired []domain.Phase
	ticker.OnExpire(func(p domain.Phase) { expired = append(expired, p) })

	ctx := context.Background()
	if ticker.Step(ctx) {
		t.Error("Step() on idle timer should not expire")
	}

	svc.Start()
	steps := 0
	for !ticker.Step(ctx) {
		steps++
		if steps > 60 {
			t.Fatal("timer never expired")
		}
	}
	if steps != 59 {
		t.Errorf("expired after %d steps, want 59", steps+1)
	}

	if len(notifier.phases) != 1 || notifier.phases[0] != domain.PhaseWork {
		t.Errorf("notified phases = %v, want [work]", notifier.phases)
	}
	if len(expired) != 1 || expired[0] != domain.PhaseWork {
		t.Errorf("expired callback phases = %v, want [work]", expired)
	}
	if got := svc.Timer().Phase; got != domain.PhaseShortBreak {
		t.Errorf("phase after expiry = %v, want shortBreak", got)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
	if sessions := svc.Sessions(); len(sessions) != 1 || !sessions[0].IsCompleted() {
		t.Errorf("sessions = %+v, want one completed", sessions)
	}
}

func TestTicker_NotifierFailureStillCompletes(t *testing.T) {
	s := domain.DefaultSettings()
	s.WorkDuration = 1
	svc := NewTimerService(nil, s)
	ticker := NewTicker(svc, &recordingNotifier{err: errors.New("no display")}, time.Second)

	svc.Start()
	for i := 0; i < 60; i++ {
		ticker.Step(context.Background())
	}
	if got := svc.Timer().Phase; got != domain.PhaseShortBreak {
		t.Errorf("phase = %v, want shortBreak", got)
	}
}

func TestTicker_Run(t *testing.T) {
	svc := NewTimerService(nil, domain.DefaultSettings())
	svc.Start()
	ticker := NewTicker(svc, nil, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := ticker.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want deadline exceeded", err)
	}
	if got := svc.Timer().RemainingSeconds; got >= 1500 {
		t.Errorf("RemainingSeconds = %d, want fewer than 1500", got)
	}
}

// interleavedTimer runs a command right after the tick that expires the
// countdown, before the ticker completes the phase.
type interleavedTimer struct {
	*TimerService
	afterExpiry func()
}

func (i *interleavedTimer) Tick() bool {
	expired := i.TimerService.Tick()
	if expired && i.afterExpiry != nil {
		i.afterExpiry()
	}
	return expired
}

func TestTicker_StepYieldsToInterleavedCommands(t *testing.T) {
	tests := []struct {
		name        string
		command     func(*TimerService)
		wantPhase   domain.Phase
		wantCycle   int
		wantOutcome domain.Disposition
	}{
		{"reset", (*TimerService).Reset, domain.PhaseWork, 0, domain.DispositionAbandoned},
		{"complete", (*TimerService).CompleteSession, domain.PhaseShortBreak, 1, domain.DispositionCompleted},
		{"skip", (*TimerService).SkipPhase, domain.PhaseShortBreak, 1, domain.DispositionSkipped},
		{"switch", func(s *TimerService) { _ = s.SwitchPhase(domain.PhaseLongBreak) }, domain.PhaseLongBreak, 0, domain.DispositionAbandoned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.DefaultSettings()
			s.WorkDuration = 1
			svc := NewTimerService(nil, s)
			notifier := &recordingNotifier{}
			ticker := NewTicker(&interleavedTimer{
				TimerService: svc,
				afterExpiry:  func() { tt.command(svc) },
			}, notifier, time.Second)

			svc.Start()
			for i := 0; i < 60; i++ {
				if ticker.Step(context.Background()) {
					t.Fatal("Step() completed a phase another command already handled")
				}
			}

			tm := svc.Timer()
			if tm.Phase != tt.wantPhase || tm.CompletedSessionsInCycle != tt.wantCycle {
				t.Errorf("timer = %v cycle %d, want %v cycle %d", tm.Phase, tm.CompletedSessionsInCycle, tt.wantPhase, tt.wantCycle)
			}
			if tm.IsRunning() {
				t.Error("the next phase should not have been started")
			}
			sessions := svc.Sessions()
			if len(sessions) != 1 || sessions[0].Disposition != tt.wantOutcome {
				t.Errorf("sessions = %+v, want one %v", sessions, tt.wantOutcome)
			}
			if len(notifier.phases) != 0 {
				t.Errorf("notified %v, want no alert for a phase the ticker did not complete", notifier.phases)
			}
		})
	}
}

func TestTicker_StepPicksUpOtherProcessSaves(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	svc := NewTimerService(store, domain.DefaultSettings())
	require.NoError(t, svc.Save(ctx))

	other := NewTimerService(store, domain.DefaultSettings())
	require.NoError(t, other.Load(ctx))
	require.NoError(t, other.UpdateSettings(domain.SettingsPatch{WorkDuration: intPtr(40)}))
	require.NoError(t, other.Save(ctx))

	NewTicker(svc, nil, time.Second).Step(ctx)
	if got := svc.Timer().TotalSeconds; got != 2400 {
		t.Errorf("TotalSeconds = %d, want 2400 from the other process's settings", got)
	}
}
