package domain

import "fmt"

// Preset names a bundle of durations for a working style.
type Preset string

const (
	PresetClassic  Preset = "classic"
	PresetDeepWork Preset = "deepwork"
	PresetMakeTime Preset = "maketime"
)

// Presets lists all supported presets.
var Presets = []Preset{
	PresetClassic,
	PresetDeepWork,
	PresetMakeTime,
}

// ParsePreset checks if a string is a valid preset.
func ParsePreset(s string) (Preset, error) {
	p := Preset(s)
	for _, valid := range Presets {
		if p == valid {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid preset %q: must be one of classic, deepwork, maketime", s)
}

// Label returns a human-readable label.
func (p Preset) Label() string {
	switch p {
	case PresetClassic:
		return "Pomodoro"
	case PresetDeepWork:
		return "Deep Work"
	case PresetMakeTime:
		return "Make Time"
	default:
		return "Unknown"
	}
}

// Patch returns the duration changes the preset applies. Alert and
// auto-start preferences are left alone.
func (p Preset) Patch() SettingsPatch {
	work, short, long, sessions := 25, 5, 15, 4
	switch p {
	case PresetDeepWork:
		work, short, long, sessions = 90, 20, 30, 2
	case PresetMakeTime:
		work, short, long, sessions = 60, 10, 20, 3
	}
	return SettingsPatch{
		WorkDuration:            &work,
		ShortBreakDuration:      &short,
		LongBreakDuration:       &long,
		SessionsBeforeLongBreak: &sessions,
	}
}
