package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"github.com/xvierd/pomo/internal/domain"
)

var (
	sessionsFrom  string
	sessionsTo    string
	sessionsTask  string
	sessionsLimit int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded sessions",
	Long: `List sessions of every outcome (completed, skipped, abandoned), most
recent first. --task fuzzy-matches task references.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sessionsLimit <= 0 {
			return errors.New("--limit must be positive")
		}

		var sessions []domain.Session
		if sessionsFrom == "" && sessionsTo == "" {
			sessions = app.timer.Sessions()
		} else {
			r, err := parseDateRange(sessionsFrom, sessionsTo)
			if err != nil {
				return err
			}
			sessions = app.timer.SessionsByDateRange(r)
		}
		if sessionsTask != "" {
			sessions = filterByTask(sessions, sessionsTask)
		}
		if len(sessions) > sessionsLimit {
			sessions = sessions[:sessionsLimit]
		}

		if jsonOutput {
			rows := make([]sessionOutput, 0, len(sessions))
			for _, s := range sessions {
				rows = append(rows, toSessionOutput(s))
			}
			return writeJSON(cmd, rows)
		}
		printSessions(cmd.OutOrStdout(), sessions)
		return nil
	},
}

func init() {
	sessionsCmd.Flags().StringVar(&sessionsFrom, "from", "", "Start date (YYYY-MM-DD)")
	sessionsCmd.Flags().StringVar(&sessionsTo, "to", "", "End date (YYYY-MM-DD)")
	sessionsCmd.Flags().StringVar(&sessionsTask, "task", "", "Fuzzy filter on the task reference")
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "Maximum number of sessions")
	rootCmd.AddCommand(sessionsCmd)
}

type sessionOutput struct {
	ID              string     `json:"id"`
	Phase           string     `json:"phase"`
	Disposition     string     `json:"disposition"`
	DurationMinutes int        `json:"duration_minutes"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	TaskID          *string    `json:"task_id,omitempty"`
	ProjectID       *string    `json:"project_id,omitempty"`
}

func toSessionOutput(s domain.Session) sessionOutput {
	return sessionOutput{
		ID:              s.ID,
		Phase:           string(s.Phase),
		Disposition:     string(s.Disposition),
		DurationMinutes: s.DurationMinutes,
		StartedAt:       s.StartedAt,
		CompletedAt:     s.CompletedAt,
		TaskID:          s.TaskID,
		ProjectID:       s.ProjectID,
	}
}

// filterByTask keeps sessions whose task reference fuzzy-matches query,
// preserving ledger order.
func filterByTask(sessions []domain.Session, query string) []domain.Session {
	var refs []string
	var idx []int
	for i, s := range sessions {
		if s.TaskID == nil {
			continue
		}
		refs = append(refs, *s.TaskID)
		idx = append(idx, i)
	}

	keep := make(map[int]bool)
	for _, m := range fuzzy.Find(query, refs) {
		keep[idx[m.Index]] = true
	}

	var out []domain.Session
	for i, s := range sessions {
		if keep[i] {
			out = append(out, s)
		}
	}
	return out
}

func printSessions(w io.Writer, sessions []domain.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return
	}
	for _, s := range sessions {
		task := ""
		if s.TaskID != nil {
			task = *s.TaskID
		}
		fmt.Fprintf(w, "%s  %-11s %4dm  %-9s  %s\n",
			s.StartedAt.Format("2006-01-02 15:04"),
			s.Phase.Label(),
			s.DurationMinutes,
			s.Disposition,
			task,
		)
	}
}
