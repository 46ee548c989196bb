package services

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/xvierd/pomo/internal/domain"
	"github.com/xvierd/pomo/internal/ports"
)

// Ticker drives a timer once per interval. When a countdown expires it
// completes the session, persists the result and then notifies.
type Ticker struct {
	timer    ports.TimerController
	notifier ports.PhaseNotifier
	interval time.Duration
	logger   *log.Logger
	onExpire func(domain.Phase)
}

// NewTicker creates a ticker. notifier may be nil.
func NewTicker(timer ports.TimerController, notifier ports.PhaseNotifier, interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{
		timer:    timer,
		notifier: notifier,
		interval: interval,
		logger:   log.New(io.Discard, "", 0),
	}
}

// SetLogger sets where notification and save failures are reported.
func (t *Ticker) SetLogger(logger *log.Logger) {
	if logger != nil {
		t.logger = logger
	}
}

// OnExpire registers a callback run after an expired phase was completed.
func (t *Ticker) OnExpire(fn func(domain.Phase)) {
	t.onExpire = fn
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Step advances the timer by one tick and reports whether a phase expired
// and was completed. Changes saved by other processes are picked up first.
func (t *Ticker) Step(ctx context.Context) bool {
	if err := t.timer.Sync(ctx); err != nil {
		t.logger.Printf("Warning: %v", err)
	}
	if !t.timer.Tick() {
		return false
	}

	// A command may land between the tick and the completion; then it wins.
	expired := t.timer.Timer()
	if !t.timer.CompleteExpired(expired.CurrentSessionID) {
		return false
	}
	if err := t.timer.Save(ctx); err != nil {
		t.logger.Printf("Warning: %v", err)
	}
	if t.notifier != nil {
		if err := t.notifier.NotifyPhaseComplete(expired.Phase, t.timer.Settings()); err != nil {
			t.logger.Printf("Warning: failed to notify: %v", err)
		}
	}
	if t.onExpire != nil {
		t.onExpire(expired.Phase)
	}
	return true
}

// Run steps the timer until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) error {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
			t.Step(ctx)
		}
	}
}
