// Package domain contains the core entities of the Pomodoro timer: phases,
// settings, the timer state, ledger sessions and the statistics derived from them.
// Nothing in here performs I/O.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors.
var (
	ErrInvalidSettings = errors.New("invalid settings")
	ErrInvalidPhase    = errors.New("invalid phase")
	ErrTimerActive     = errors.New("timer is running or paused")
	ErrSessionNotFound = errors.New("session not found")
)

// Settings bounds.
const (
	MinWorkDuration       = 1
	MaxWorkDuration       = 120
	MinShortBreakDuration = 1
	MaxShortBreakDuration = 30
	MinLongBreakDuration  = 5
	MaxLongBreakDuration  = 60
	MinSessionsBeforeLong = 2
	MaxSessionsBeforeLong = 10
)

// Settings holds the user-editable timer configuration. Durations are in minutes.
type Settings struct {
	WorkDuration            int
	ShortBreakDuration      int
	LongBreakDuration       int
	SessionsBeforeLongBreak int
	AutoStartBreaks         bool
	AutoStartWork           bool
	SoundEnabled            bool
	NotificationEnabled     bool
	VibrationEnabled        bool
	Volume                  float64
}

// DefaultSettings returns the classic 25/5/15 configuration.
func DefaultSettings() Settings {
	return Settings{
		WorkDuration:            25,
		ShortBreakDuration:      5,
		LongBreakDuration:       15,
		SessionsBeforeLongBreak: 4,
		SoundEnabled:            true,
		NotificationEnabled:     true,
		Volume:                  0.7,
	}
}

// Validate checks every field against its bounds.
func (s Settings) Validate() error {
	checks := []struct {
		name     string
		value    int
		min, max int
	}{
		{"workDuration", s.WorkDuration, MinWorkDuration, MaxWorkDuration},
		{"shortBreakDuration", s.ShortBreakDuration, MinShortBreakDuration, MaxShortBreakDuration},
		{"longBreakDuration", s.LongBreakDuration, MinLongBreakDuration, MaxLongBreakDuration},
		{"sessionsBeforeLongBreak", s.SessionsBeforeLongBreak, MinSessionsBeforeLong, MaxSessionsBeforeLong},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrInvalidSettings, c.name, c.min, c.max, c.value)
		}
	}
	if s.Volume < 0 || s.Volume > 1 {
		return fmt.Errorf("%w: volume must be between 0 and 1, got %v", ErrInvalidSettings, s.Volume)
	}
	return nil
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged.
type SettingsPatch struct {
	WorkDuration            *int
	ShortBreakDuration      *int
	LongBreakDuration       *int
	SessionsBeforeLongBreak *int
	AutoStartBreaks         *bool
	AutoStartWork           *bool
	SoundEnabled            *bool
	NotificationEnabled     *bool
	VibrationEnabled        *bool
	Volume                  *float64
}

// IsEmpty reports whether the patch changes nothing.
func (p SettingsPatch) IsEmpty() bool {
	return p == SettingsPatch{}
}

// Apply returns a copy of s with the patch merged in. The result is not validated.
func (s Settings) Apply(p SettingsPatch) Settings {
	if p.WorkDuration != nil {
		s.WorkDuration = *p.WorkDuration
	}
	if p.ShortBreakDuration != nil {
		s.ShortBreakDuration = *p.ShortBreakDuration
	}
	if p.LongBreakDuration != nil {
		s.LongBreakDuration = *p.LongBreakDuration
	}
	if p.SessionsBeforeLongBreak != nil {
		s.SessionsBeforeLongBreak = *p.SessionsBeforeLongBreak
	}
	if p.AutoStartBreaks != nil {
		s.AutoStartBreaks = *p.AutoStartBreaks
	}
	if p.AutoStartWork != nil {
		s.AutoStartWork = *p.AutoStartWork
	}
	if p.SoundEnabled != nil {
		s.SoundEnabled = *p.SoundEnabled
	}
	if p.NotificationEnabled != nil {
		s.NotificationEnabled = *p.NotificationEnabled
	}
	if p.VibrationEnabled != nil {
		s.VibrationEnabled = *p.VibrationEnabled
	}
	if p.Volume != nil {
		s.Volume = *p.Volume
	}
	return s
}
