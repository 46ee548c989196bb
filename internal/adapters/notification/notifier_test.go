package notification

import (
	"errors"
	"strings"
	"testing"

	"github.com/xvierd/pomo/internal/config"
	"github.com/xvierd/pomo/internal/domain"
)

type calls struct {
	beeps   int
	titles  []string
	bodies  []string
	failing bool
}

func newTestNotifier(cfg *config.NotificationConfig, c *calls) *Notifier {
	n := New(cfg)
	n.notify = func(title, message string) error {
		c.titles = append(c.titles, title)
		c.bodies = append(c.bodies, message)
		if c.failing {
			return errors.New("no notification daemon")
		}
		return nil
	}
	n.beep = func() error {
		c.beeps++
		return nil
	}
	return n
}

func TestNotifier_NotifyPhaseComplete(t *testing.T) {
	tests := []struct {
		name       string
		cfg        *config.NotificationConfig
		mutate     func(*domain.Settings)
		wantBeeps  int
		wantNotify int
	}{
		{"nil config", nil, func(*domain.Settings) {}, 0, 0},
		{"disabled", &config.NotificationConfig{Enabled: false, Sound: true}, func(*domain.Settings) {}, 0, 0},
		{"defaults", &config.NotificationConfig{Enabled: true, Sound: true}, func(*domain.Settings) {}, 1, 1},
		{"config mutes sound", &config.NotificationConfig{Enabled: true, Sound: false}, func(*domain.Settings) {}, 0, 1},
		{"settings mute sound", &config.NotificationConfig{Enabled: true, Sound: true}, func(s *domain.Settings) { s.SoundEnabled = false }, 0, 1},
		{"settings disable popups", &config.NotificationConfig{Enabled: true, Sound: true}, func(s *domain.Settings) { s.NotificationEnabled = false }, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &calls{}
			n := newTestNotifier(tt.cfg, c)
			s := domain.DefaultSettings()
			tt.mutate(&s)

			if err := n.NotifyPhaseComplete(domain.PhaseWork, s); err != nil {
				t.Fatalf("NotifyPhaseComplete() error = %v", err)
			}
			if c.beeps != tt.wantBeeps {
				t.Errorf("beeps = %d, want %d", c.beeps, tt.wantBeeps)
			}
			if len(c.titles) != tt.wantNotify {
				t.Errorf("notifications = %d, want %d", len(c.titles), tt.wantNotify)
			}
		})
	}
}

func TestNotifier_Messages(t *testing.T) {
	c := &calls{}
	n := newTestNotifier(&config.NotificationConfig{Enabled: true}, c)
	s := domain.DefaultSettings()

	for _, p := range domain.Phases {
		if err := n.NotifyPhaseComplete(p, s); err != nil {
			t.Fatalf("NotifyPhaseComplete(%v) error = %v", p, err)
		}
	}
	if !strings.Contains(c.bodies[0], "25 minute") {
		t.Errorf("work message = %q, want the focus length", c.bodies[0])
	}
	if !strings.Contains(c.titles[2], "Long Break") {
		t.Errorf("long break title = %q", c.titles[2])
	}
}

func TestNotifier_ErrorIsReported(t *testing.T) {
	c := &calls{failing: true}
	n := newTestNotifier(&config.NotificationConfig{Enabled: true, Sound: true}, c)

	err := n.NotifyPhaseComplete(domain.PhaseShortBreak, domain.DefaultSettings())
	if err == nil {
		t.Fatal("NotifyPhaseComplete() should report the failure")
	}
	if c.beeps != 1 {
		t.Errorf("beeps = %d, want 1 even when the popup fails", c.beeps)
	}
}

func TestNotifier_IsEnabled(t *testing.T) {
	if New(nil).IsEnabled() {
		t.Error("nil config should be disabled")
	}
	if !New(&config.NotificationConfig{Enabled: true}).IsEnabled() {
		t.Error("enabled config should be enabled")
	}
}
