// Package tui provides the terminal user interface implementation
// using the Bubbletea framework.
package tui

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/xvierd/pomo/internal/config"
	"github.com/xvierd/pomo/internal/domain"
	"github.com/xvierd/pomo/internal/ports"
)

// resolveTheme fills any empty string fields in the given ThemeConfig with defaults.
// If theme is nil, returns the full default theme.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	rv := reflect.ValueOf(&resolved).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
	return resolved
}

// tickMsg is sent once per second.
type tickMsg time.Time

// stepMsg carries the outcome of a tick run off the update loop.
type stepMsg struct {
	phase   domain.Phase
	expired bool
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the interactive timer screen.
type Model struct {
	ctx      context.Context
	timer    ports.TimerController
	step     func() bool
	progress progress.Model
	theme    config.ThemeConfig
	width    int
	height   int

	taskInput  textinput.Model
	taskMode   bool
	stepping   bool
	flash      string
	flashTicks int
	lastError  error
}

// NewModel creates a timer screen over ctl. step advances the countdown by
// one tick and reports expiry; when nil, expiry completes the session
// directly. Steps run as commands since they may block on alerts.
func NewModel(ctl ports.TimerController, step func() bool, theme *config.ThemeConfig) Model {
	ti := textinput.New()
	ti.Placeholder = "task id (empty clears)"
	ti.CharLimit = 120
	ti.Width = 40

	m := Model{
		ctx:       context.Background(),
		timer:     ctl,
		step:      step,
		theme:     resolveTheme(theme),
		taskInput: ti,
	}
	m.progress = m.newProgress(ctl.Timer())
	return m
}

// newProgress builds a progress bar with the gradient for the timer's state.
func (m Model) newProgress(t domain.Timer) progress.Model {
	start, end := m.theme.WorkGradientStart, m.theme.WorkGradientEnd
	switch {
	case t.IsPaused():
		start, end = m.theme.PausedGradientStart, m.theme.PausedGradientEnd
	case t.Phase.IsBreak():
		start, end = m.theme.BreakGradientStart, m.theme.BreakGradientEnd
	}
	p := progress.New(progress.WithGradient(start, end), progress.WithoutPercentage())
	if m.width > 4 {
		p.Width = m.width - 4
	}
	return p
}

// Init starts the one-second tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.taskMode {
		return m.updateTaskInput(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 4
		return m, nil

	case tickMsg:
		return m, m.onTick()

	case stepMsg:
		return m, m.onStep(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// onTick ages the flash and, while running, hands the tick to a command.
// The next tick is scheduled once that step has reported back.
func (m *Model) onTick() tea.Cmd {
	if m.flashTicks > 0 {
		m.flashTicks--
		if m.flashTicks == 0 {
			m.flash = ""
		}
	}

	if !m.timer.Timer().IsRunning() {
		m.syncPhase()
		return tickCmd()
	}

	m.stepping = true
	timer, step := m.timer, m.step
	return func() tea.Msg {
		phase := timer.Timer().Phase
		if step != nil {
			return stepMsg{phase: phase, expired: step()}
		}
		if !timer.Tick() {
			return stepMsg{phase: phase}
		}
		return stepMsg{phase: phase, expired: timer.CompleteExpired(timer.Timer().CurrentSessionID)}
	}
}

func (m *Model) onStep(msg stepMsg) tea.Cmd {
	m.stepping = false
	if msg.expired {
		m.setFlash(msg.phase.Label() + " complete")
	}
	m.syncPhase()
	return tickCmd()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.lastError = nil
	t := m.timer.Timer()

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case " ":
		switch {
		case t.IsRunning():
			m.timer.Pause()
		case t.IsPaused():
			m.timer.Resume()
		default:
			m.timer.Start()
		}
	case "r":
		m.timer.Reset()
	case "s":
		m.timer.SkipPhase()
		m.setFlash("Skipped " + t.Phase.Label())
	case "c":
		if t.IsRunning() || t.IsPaused() {
			m.timer.CompleteSession()
			m.setFlash(t.Phase.Label() + " complete")
		}
	case "1", "2", "3":
		phase := domain.Phases[msg.String()[0]-'1']
		if err := m.timer.SwitchPhase(phase); err != nil {
			m.lastError = err
		}
	case "t":
		m.taskMode = true
		if t.SelectedTaskID != nil {
			m.taskInput.SetValue(*t.SelectedTaskID)
		}
		m.taskInput.Focus()
		return m, textinput.Blink
	default:
		return m, nil
	}

	m.persist()
	m.syncPhase()
	return m, nil
}

func (m Model) updateTaskInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.closeTaskInput()
			return m, nil
		case "enter":
			var taskID *string
			if v := strings.TrimSpace(m.taskInput.Value()); v != "" {
				taskID = &v
			}
			m.timer.SelectTask(taskID, m.timer.Timer().SelectedProjectID)
			m.persist()
			m.closeTaskInput()
			return m, nil
		}
	}
	switch msg := msg.(type) {
	case tickMsg:
		return m, m.onTick()
	case stepMsg:
		return m, m.onStep(msg)
	}

	var cmd tea.Cmd
	m.taskInput, cmd = m.taskInput.Update(msg)
	return m, cmd
}

func (m *Model) closeTaskInput() {
	m.taskMode = false
	m.taskInput.Blur()
	m.taskInput.Reset()
}

func (m *Model) persist() {
	if err := m.timer.Save(m.ctx); err != nil {
		m.lastError = err
	}
}

// syncPhase picks the gradient for the current phase and pause state.
func (m *Model) syncPhase() {
	m.progress = m.newProgress(m.timer.Timer())
}

func (m *Model) setFlash(s string) {
	m.flash = s
	m.flashTicks = 3
}
