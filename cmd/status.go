package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/pomo/internal/adapters/tui"
	"github.com/xvierd/pomo/internal/domain"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the timer state and today's stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusOutput struct {
	Phase                    domain.Phase `json:"phase"`
	State                    string       `json:"state"`
	RemainingSeconds         int          `json:"remaining_seconds"`
	TotalSeconds             int          `json:"total_seconds"`
	CompletedSessionsInCycle int          `json:"completed_sessions_in_cycle"`
	SessionsBeforeLongBreak  int          `json:"sessions_before_long_break"`
	Today                    statsOutput  `json:"today"`
}

func runStatus(cmd *cobra.Command) error {
	t := app.timer.Timer()
	settings := app.timer.Settings()
	today := app.timer.TodayStats()

	if jsonOutput {
		return writeJSON(cmd, statusOutput{
			Phase:                    t.Phase,
			State:                    string(t.State),
			RemainingSeconds:         t.RemainingSeconds,
			TotalSeconds:             t.TotalSeconds,
			CompletedSessionsInCycle: t.CompletedSessionsInCycle,
			SessionsBeforeLongBreak:  settings.SessionsBeforeLongBreak,
			Today:                    toStatsOutput(today),
		})
	}

	tui.ShowStatus(cmd.OutOrStdout(), t, settings, today)
	return nil
}

// writeJSON prints v as indented JSON.
func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
