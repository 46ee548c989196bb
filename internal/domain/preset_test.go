package domain

import "testing"

func TestParsePreset(t *testing.T) {
	for _, p := range Presets {
		got, err := ParsePreset(string(p))
		if err != nil || got != p {
			t.Errorf("ParsePreset(%q) = %v, %v", p, got, err)
		}
	}
	if _, err := ParsePreset("pomodoro"); err == nil {
		t.Error("ParsePreset(pomodoro) should fail")
	}
}

func TestPreset_Patch(t *testing.T) {
	tests := []struct {
		preset               Preset
		work, short, long, n int
	}{
		{PresetClassic, 25, 5, 15, 4},
		{PresetDeepWork, 90, 20, 30, 2},
		{PresetMakeTime, 60, 10, 20, 3},
	}
	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			base := DefaultSettings()
			base.AutoStartBreaks = true
			s := base.Apply(tt.preset.Patch())
			if s.WorkDuration != tt.work || s.ShortBreakDuration != tt.short ||
				s.LongBreakDuration != tt.long || s.SessionsBeforeLongBreak != tt.n {
				t.Errorf("Apply(%s) = %+v", tt.preset, s)
			}
			if !s.AutoStartBreaks {
				t.Error("preset should not touch auto-start")
			}
			if err := s.Validate(); err != nil {
				t.Errorf("preset %s is out of bounds: %v", tt.preset, err)
			}
		})
	}
}

func TestPreset_Label(t *testing.T) {
	if got := PresetDeepWork.Label(); got != "Deep Work" {
		t.Errorf("Label() = %v, want %v", got, "Deep Work")
	}
	if got := Preset("x").Label(); got != "Unknown" {
		t.Errorf("Label() = %v, want %v", got, "Unknown")
	}
}
