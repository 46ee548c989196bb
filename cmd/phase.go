package cmd

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"github.com/xvierd/pomo/internal/domain"
)

var skipCmd = &cobra.Command{
	Use:   "skip",
	Short: "Skip to the next phase",
	Long:  "Skip the current phase. Skipped work does not count toward the long break.",
	RunE: func(cmd *cobra.Command, args []string) error {
		from := app.timer.Timer().Phase
		app.timer.SkipPhase()
		if err := saveTimer(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "⏭  Skipped %s. Next: %s\n", from.Label(), app.timer.Timer().Phase.Label())
		return nil
	},
}

var switchCmd = &cobra.Command{
	Use:   "switch <phase>",
	Short: "Switch to a phase (work, short, long)",
	Long: `Switch the idle timer to a phase. The name is fuzzy-matched, so "lb",
"long" and "longBreak" all select the long break.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		phase, err := matchPhase(args[0])
		if err != nil {
			return err
		}
		if err := app.timer.SwitchPhase(phase); err != nil {
			return fmt.Errorf("failed to switch phase: %w", err)
		}
		if err := saveTimer(cmd.Context()); err != nil {
			return err
		}
		t := app.timer.Timer()
		fmt.Fprintf(cmd.OutOrStdout(), "Switched to %s (%s)\n", t.Phase.Label(), domain.FormatClock(t.TotalSeconds))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(skipCmd)
	rootCmd.AddCommand(switchCmd)
}

// phaseAliases are the names matchPhase searches.
var phaseAliases = []struct {
	name  string
	phase domain.Phase
}{
	{"work", domain.PhaseWork},
	{"focus", domain.PhaseWork},
	{"shortBreak", domain.PhaseShortBreak},
	{"short break", domain.PhaseShortBreak},
	{"longBreak", domain.PhaseLongBreak},
	{"long break", domain.PhaseLongBreak},
}

// matchPhase resolves a phase name exactly, then by best fuzzy match.
func matchPhase(input string) (domain.Phase, error) {
	if p, err := domain.ParsePhase(input); err == nil {
		return p, nil
	}

	names := make([]string, len(phaseAliases))
	for i, a := range phaseAliases {
		names[i] = a.name
	}
	matches := fuzzy.Find(strings.TrimSpace(input), names)
	if len(matches) == 0 {
		return "", fmt.Errorf("%w %q: try work, short or long", domain.ErrInvalidPhase, input)
	}
	return phaseAliases[matches[0].Index].phase, nil
}
