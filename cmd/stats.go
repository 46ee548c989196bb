package cmd

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/xvierd/pomo/internal/domain"
)

var (
	statsPeriod string
	statsFrom   string
	statsTo     string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a dashboard of session statistics",
	Long: `Show completed pomodoros, focus minutes and break minutes for today,
this week (Monday to Sunday), this month, or an explicit date range.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, label, err := resolveStatsRange(time.Now())
		if err != nil {
			return err
		}
		stats := app.timer.StatsFor(r)

		if jsonOutput {
			out := toStatsOutput(stats)
			out.From = string(r.Start)
			out.To = string(r.End)
			out.Period = label
			return writeJSON(cmd, out)
		}

		renderDashboard(cmd.OutOrStdout(), label, stats, dailyStats(app.timer.SessionsByDateRange(r), r))
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsPeriod, "period", "p", "today", "Time period: today, week or month")
	statsCmd.Flags().StringVar(&statsFrom, "from", "", "Start date (YYYY-MM-DD); overrides --period")
	statsCmd.Flags().StringVar(&statsTo, "to", "", "End date (YYYY-MM-DD); defaults to --from")
	rootCmd.AddCommand(statsCmd)
}

type statsOutput struct {
	Period       string `json:"period,omitempty"`
	From         string `json:"from,omitempty"`
	To           string `json:"to,omitempty"`
	Completed    int    `json:"completed"`
	FocusMinutes int    `json:"focus_minutes"`
	BreakMinutes int    `json:"break_minutes"`
}

func toStatsOutput(s domain.Stats) statsOutput {
	return statsOutput{
		Completed:    s.Completed,
		FocusMinutes: s.FocusMinutes,
		BreakMinutes: s.BreakMinutes,
	}
}

// resolveStatsRange turns --from/--to or --period into a date range.
func resolveStatsRange(now time.Time) (domain.DateRange, string, error) {
	if statsFrom == "" && statsTo == "" {
		p, err := domain.ParsePeriod(statsPeriod)
		if err != nil {
			return domain.DateRange{}, "", err
		}
		return p.Range(now), periodLabel(p, now), nil
	}
	r, err := parseDateRange(statsFrom, statsTo)
	if err != nil {
		return domain.DateRange{}, "", err
	}
	return r, fmt.Sprintf("%s to %s", r.Start, r.End), nil
}

// parseDateRange validates an inclusive range. A missing bound copies the other.
func parseDateRange(from, to string) (domain.DateRange, error) {
	if from == "" {
		from = to
	}
	if to == "" {
		to = from
	}
	start, err := domain.ParseDateKey(from)
	if err != nil {
		return domain.DateRange{}, err
	}
	end, err := domain.ParseDateKey(to)
	if err != nil {
		return domain.DateRange{}, err
	}
	if end < start {
		return domain.DateRange{}, errors.New("--from must not be after --to")
	}
	return domain.DateRange{Start: start, End: end}, nil
}

func periodLabel(p domain.Period, now time.Time) string {
	switch p {
	case domain.PeriodWeek:
		start, _ := time.ParseInLocation("2006-01-02", string(domain.WeekRange(now).Start), now.Location())
		return fmt.Sprintf("Week of %s", start.Format("Jan 2"))
	case domain.PeriodMonth:
		return now.Format("January 2006")
	default:
		return "Today"
	}
}

type dayStats struct {
	day   domain.DateKey
	stats domain.Stats
}

// dailyStats splits a range into per-day rollups. Ranges over 31 days are
// not broken down.
func dailyStats(sessions []domain.Session, r domain.DateRange) []dayStats {
	start, err := time.Parse("2006-01-02", string(r.Start))
	if err != nil {
		return nil
	}
	var days []dayStats
	for d := start; domain.DateKeyOf(d) <= r.End; d = d.AddDate(0, 0, 1) {
		if len(days) == 31 {
			return nil
		}
		k := domain.DateKeyOf(d)
		days = append(days, dayStats{day: k, stats: domain.Aggregate(sessions, domain.DateRange{Start: k, End: k})})
	}
	return days
}

func renderDashboard(w io.Writer, label string, stats domain.Stats, days []dayStats) {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(app.config.Theme.ColorWork))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(app.config.Theme.ColorPaused))
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(app.config.Theme.WorkGradientEnd))
	barColor := lipgloss.NewStyle().Foreground(lipgloss.Color(app.config.Theme.ColorWork))

	fmt.Fprintf(w, "\n  %s %s\n", app.config.Theme.IconStats, titleStyle.Render(label))
	fmt.Fprintf(w, "  %s\n\n", dimStyle.Render(strings.Repeat("─", 40)))

	fmt.Fprintf(w, "  Pomodoros: %s   Focus: %s   Breaks: %s\n\n",
		valueStyle.Render(fmt.Sprintf("%d", stats.Completed)),
		valueStyle.Render(formatMinutes(stats.FocusMinutes)),
		valueStyle.Render(formatMinutes(stats.BreakMinutes)),
	)

	if stats.Completed == 0 && stats.BreakMinutes == 0 {
		fmt.Fprintf(w, "  %s\n\n", dimStyle.Render("No completed sessions in this period."))
		return
	}
	if len(days) < 2 {
		return
	}

	fmt.Fprintf(w, "  %s\n", dimStyle.Render("Focus by day"))
	maxMinutes := 0
	for _, d := range days {
		if d.stats.FocusMinutes > maxMinutes {
			maxMinutes = d.stats.FocusMinutes
		}
	}
	maxBarWidth := 30
	for _, d := range days {
		barWidth := 0
		if maxMinutes > 0 {
			barWidth = int(math.Round(float64(d.stats.FocusMinutes) / float64(maxMinutes) * float64(maxBarWidth)))
		}
		if barWidth < 1 && d.stats.FocusMinutes > 0 {
			barWidth = 1
		}
		fmt.Fprintf(w, "  %s %s %d\n",
			dimStyle.Render(string(d.day)),
			barColor.Render(strings.Repeat("█", barWidth)),
			d.stats.Completed,
		)
	}
	fmt.Fprintln(w)
}

// formatMinutes renders minutes as "1h 30m" or "45m".
func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}
