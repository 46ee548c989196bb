package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomo/internal/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show timer settings",
	Long: `Show the timer settings stored with your sessions. The config file only
seeds these on first run; change them with 'pomo settings set'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printSettings(cmd, app.timer.Settings())
	},
}

var (
	setWork          int
	setShortBreak    int
	setLongBreak     int
	setSessions      int
	setAutoBreaks    bool
	setAutoWork      bool
	setSound         bool
	setNotifications bool
	setVibration     bool
	setVolume        float64
)

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change timer settings",
	Example: `  pomo settings set --work 50 --short-break 10
  pomo settings set --auto-start-breaks=true`,
	RunE: func(cmd *cobra.Command, args []string) error {
		patch := settingsPatchFromFlags(cmd)
		if patch.IsEmpty() {
			return fmt.Errorf("no settings given; see 'pomo settings set --help'")
		}
		if err := app.timer.UpdateSettings(patch); err != nil {
			return err
		}
		if err := saveTimer(cmd.Context()); err != nil {
			return err
		}
		return printSettings(cmd, app.timer.Settings())
	},
}

var settingsPresetCmd = &cobra.Command{
	Use:       "preset <classic|deepwork|maketime>",
	Short:     "Apply a bundle of durations",
	Long:      `Apply the durations of a working style. Alert and auto-start settings are kept.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(domain.PresetClassic), string(domain.PresetDeepWork), string(domain.PresetMakeTime)},
	RunE: func(cmd *cobra.Command, args []string) error {
		preset, err := domain.ParsePreset(args[0])
		if err != nil {
			return err
		}
		if err := app.timer.UpdateSettings(preset.Patch()); err != nil {
			return err
		}
		if err := saveTimer(cmd.Context()); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %s preset.\n", preset.Label())
		}
		return printSettings(cmd, app.timer.Settings())
	},
}

func init() {
	f := settingsSetCmd.Flags()
	f.IntVar(&setWork, "work", 0, "Focus duration in minutes (1-120)")
	f.IntVar(&setShortBreak, "short-break", 0, "Short break in minutes (1-30)")
	f.IntVar(&setLongBreak, "long-break", 0, "Long break in minutes (5-60)")
	f.IntVar(&setSessions, "sessions", 0, "Focus sessions before a long break (2-10)")
	f.BoolVar(&setAutoBreaks, "auto-start-breaks", false, "Start breaks automatically")
	f.BoolVar(&setAutoWork, "auto-start-work", false, "Start focus sessions automatically after breaks")
	f.BoolVar(&setSound, "sound", false, "Beep when a phase ends")
	f.BoolVar(&setNotifications, "notifications", false, "Show a desktop notification when a phase ends")
	f.BoolVar(&setVibration, "vibration", false, "Vibrate when a phase ends (kept for synced devices)")
	f.Float64Var(&setVolume, "volume", 0, "Alert volume (0-1)")

	settingsCmd.AddCommand(settingsSetCmd, settingsPresetCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingsPatchFromFlags includes only the flags the user passed.
func settingsPatchFromFlags(cmd *cobra.Command) domain.SettingsPatch {
	var p domain.SettingsPatch
	changed := cmd.Flags().Changed
	if changed("work") {
		p.WorkDuration = &setWork
	}
	if changed("short-break") {
		p.ShortBreakDuration = &setShortBreak
	}
	if changed("long-break") {
		p.LongBreakDuration = &setLongBreak
	}
	if changed("sessions") {
		p.SessionsBeforeLongBreak = &setSessions
	}
	if changed("auto-start-breaks") {
		p.AutoStartBreaks = &setAutoBreaks
	}
	if changed("auto-start-work") {
		p.AutoStartWork = &setAutoWork
	}
	if changed("sound") {
		p.SoundEnabled = &setSound
	}
	if changed("notifications") {
		p.NotificationEnabled = &setNotifications
	}
	if changed("vibration") {
		p.VibrationEnabled = &setVibration
	}
	if changed("volume") {
		p.Volume = &setVolume
	}
	return p
}

type settingsOutput struct {
	WorkDuration            int     `json:"workDuration"`
	ShortBreakDuration      int     `json:"shortBreakDuration"`
	LongBreakDuration       int     `json:"longBreakDuration"`
	SessionsBeforeLongBreak int     `json:"sessionsBeforeLongBreak"`
	AutoStartBreaks         bool    `json:"autoStartBreaks"`
	AutoStartWork           bool    `json:"autoStartWork"`
	SoundEnabled            bool    `json:"soundEnabled"`
	NotificationEnabled     bool    `json:"notificationEnabled"`
	VibrationEnabled        bool    `json:"vibrationEnabled"`
	Volume                  float64 `json:"volume"`
}

func printSettings(cmd *cobra.Command, s domain.Settings) error {
	if jsonOutput {
		return writeJSON(cmd, settingsOutput(s))
	}
	renderSettings(cmd.OutOrStdout(), s)
	return nil
}

func renderSettings(w io.Writer, s domain.Settings) {
	fmt.Fprintln(w, "⚙️  Timer settings")
	fmt.Fprintf(w, "   Focus:              %dm\n", s.WorkDuration)
	fmt.Fprintf(w, "   Short break:        %dm\n", s.ShortBreakDuration)
	fmt.Fprintf(w, "   Long break:         %dm\n", s.LongBreakDuration)
	fmt.Fprintf(w, "   Long break every:   %d sessions\n", s.SessionsBeforeLongBreak)
	fmt.Fprintf(w, "   Auto-start breaks:  %s\n", onOff(s.AutoStartBreaks))
	fmt.Fprintf(w, "   Auto-start focus:   %s\n", onOff(s.AutoStartWork))
	fmt.Fprintf(w, "   Sound:              %s\n", onOff(s.SoundEnabled))
	fmt.Fprintf(w, "   Notifications:      %s\n", onOff(s.NotificationEnabled))
	fmt.Fprintf(w, "   Vibration:          %s\n", onOff(s.VibrationEnabled))
	fmt.Fprintf(w, "   Volume:             %.0f%%\n", s.Volume*100)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
