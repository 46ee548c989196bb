package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/pomo/internal/domain"
)

// glyphs is a three-column block font for the clock. Rows top to bottom.
var glyphs = map[rune][5]string{
	'0': {"▄▀▀▄", "█  █", "█  █", "█  █", "▀▄▄▀"},
	'1': {" ▄█ ", "  █ ", "  █ ", "  █ ", " ▄█▄"},
	'2': {"▄▀▀▄", "   █", " ▄▀ ", "▄▀  ", "█▄▄▄"},
	'3': {"▄▀▀▄", "   █", " ▀▀▄", "   █", "▀▄▄▀"},
	'4': {"█  █", "█  █", "▀▀▀█", "   █", "   █"},
	'5': {"█▀▀▀", "█   ", "▀▀▀▄", "   █", "▀▄▄▀"},
	'6': {"▄▀▀ ", "█   ", "█▀▀▄", "█  █", "▀▄▄▀"},
	'7': {"▀▀▀█", "   █", "  █ ", " █  ", " █  "},
	'8': {"▄▀▀▄", "█  █", "▄▀▀▄", "█  █", "▀▄▄▀"},
	'9': {"▄▀▀▄", "█  █", "▀▄▄█", "   █", " ▄▄▀"},
	':': {" ", "▪", " ", "▪", " "},
}

// renderClock draws seconds as MM:SS, in block glyphs when the terminal is
// wide enough.
func renderClock(seconds int, color lipgloss.Color, width int) string {
	text := domain.FormatClock(seconds)
	style := lipgloss.NewStyle().Bold(true).Foreground(color)
	if width > 0 && width < 40 {
		return style.Render(text)
	}

	var rows [5][]string
	for _, ch := range text {
		g, ok := glyphs[ch]
		if !ok {
			continue
		}
		for i := range rows {
			rows[i] = append(rows[i], g[i])
		}
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = style.Render(strings.Join(r, " "))
	}
	return strings.Join(out, "\n")
}

// phaseColor returns the accent color for the timer, accounting for pause state.
func (m Model) phaseColor(t domain.Timer) lipgloss.Color {
	switch {
	case t.IsPaused():
		return lipgloss.Color(m.theme.ColorPaused)
	case t.Phase.IsBreak():
		return lipgloss.Color(m.theme.ColorBreak)
	default:
		return lipgloss.Color(m.theme.ColorWork)
	}
}

// View renders the timer screen.
func (m Model) View() string {
	t := m.timer.Timer()
	settings := m.timer.Settings()
	accent := m.phaseColor(t)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle)).MarginBottom(1)
	statusStyle := lipgloss.NewStyle().Foreground(accent)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))

	var sections []string
	sections = append(sections, titleStyle.Render(fmt.Sprintf("%s %s", m.theme.IconApp, t.Phase.Label())))
	sections = append(sections, renderClock(t.RemainingSeconds, accent, m.width))
	sections = append(sections, m.progress.ViewAs(t.Progress()))

	state := t.State.Label()
	if t.IsPaused() && m.theme.IconPaused != "" {
		state = m.theme.IconPaused + " " + state
	}
	sections = append(sections, statusStyle.Render(fmt.Sprintf("%s · %s",
		state, cycleDots(t.CompletedSessionsInCycle, settings.SessionsBeforeLongBreak))))

	if task := selectionLabel(t); task != "" {
		sections = append(sections, helpStyle.Render(task))
	}

	today := m.timer.StatsForPeriod(domain.PeriodToday)
	sections = append(sections, helpStyle.Render(fmt.Sprintf("%s Today: %d pomodoros · %dm focus",
		m.theme.IconStats, today.Completed, today.FocusMinutes)))

	if m.flash != "" {
		sections = append(sections, statusStyle.Render(m.flash))
	}
	if m.lastError != nil {
		sections = append(sections, errStyle.Render("Error: "+m.lastError.Error()))
	}

	if m.taskMode {
		sections = append(sections, helpStyle.Render("Task: ")+m.taskInput.View())
		sections = append(sections, helpStyle.Render("enter save · esc cancel"))
	} else {
		sections = append(sections, helpStyle.Render(helpLine(t)))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// helpLine lists the keys that do something in the current state.
func helpLine(t domain.Timer) string {
	keys := []string{}
	switch {
	case t.IsRunning():
		keys = append(keys, "[space] pause", "[c]omplete")
	case t.IsPaused():
		keys = append(keys, "[space] resume", "[c]omplete")
	default:
		keys = append(keys, "[space] start", "[1/2/3] phase")
	}
	keys = append(keys, "[r]eset", "[s]kip", "[t]ask", "[q]uit")
	return strings.Join(keys, "  ")
}

// cycleDots shows progress toward the long break, e.g. "●●○○".
func cycleDots(done, total int) string {
	if total <= 0 {
		return ""
	}
	if done > total {
		done = total
	}
	return strings.Repeat("●", done) + strings.Repeat("○", total-done)
}

func selectionLabel(t domain.Timer) string {
	var parts []string
	if t.SelectedTaskID != nil {
		parts = append(parts, "Task: "+*t.SelectedTaskID)
	}
	if t.SelectedProjectID != nil {
		parts = append(parts, "Project: "+*t.SelectedProjectID)
	}
	return strings.Join(parts, "  ")
}
