// Package notification provides desktop notification utilities.
package notification

import (
	"errors"
	"fmt"

	"github.com/gen2brain/beeep"
	"github.com/xvierd/pomo/internal/config"
	"github.com/xvierd/pomo/internal/domain"
	"github.com/xvierd/pomo/internal/ports"
)

// Notifier alerts the user when a phase ends, honoring both the config file
// and the per-user timer settings.
type Notifier struct {
	cfg    *config.NotificationConfig
	notify func(title, message string) error
	beep   func() error
}

// Ensure Notifier implements ports.PhaseNotifier.
var _ ports.PhaseNotifier = (*Notifier)(nil)

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig) *Notifier {
	return &Notifier{
		cfg: cfg,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		beep: func() error {
			return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
		},
	}
}

// IsEnabled returns true if notifications are enabled in the config file.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}

// NotifyPhaseComplete beeps if sound is on and shows a desktop notification
// if notifications are on. Vibration has no desktop equivalent.
func (n *Notifier) NotifyPhaseComplete(phase domain.Phase, settings domain.Settings) error {
	if !n.IsEnabled() {
		return nil
	}

	var errs []error
	if settings.SoundEnabled && n.cfg.Sound {
		if err := n.beep(); err != nil {
			errs = append(errs, fmt.Errorf("failed to beep: %w", err))
		}
	}
	if settings.NotificationEnabled {
		title, message := phaseMessage(phase, settings)
		if err := n.notify(title, message); err != nil {
			errs = append(errs, fmt.Errorf("failed to notify: %w", err))
		}
	}
	return errors.Join(errs...)
}

// phaseMessage describes what just ended and what comes next.
func phaseMessage(phase domain.Phase, settings domain.Settings) (string, string) {
	switch phase {
	case domain.PhaseWork:
		return "🍅 Pomodoro Complete!",
			fmt.Sprintf("Great job! You completed a %d minute focus session. Time for a break.", settings.WorkDuration)
	case domain.PhaseLongBreak:
		return "☕ Long Break Over!", "Cycle complete. Ready to focus?"
	default:
		return "☕ Break Over!", "Your short break is complete. Ready to focus?"
	}
}
