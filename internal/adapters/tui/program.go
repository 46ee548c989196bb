package tui

import (
	"context"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/xvierd/pomo/internal/config"
	"github.com/xvierd/pomo/internal/domain"
	"github.com/xvierd/pomo/internal/ports"
)

// Program implements the ports.TimerView interface using Bubbletea.
type Program struct {
	timer ports.TimerController
	step  func() bool
	theme *config.ThemeConfig
	opts  []tea.ProgramOption

	mu      sync.Mutex
	program *tea.Program
}

// Ensure Program implements ports.TimerView.
var _ ports.TimerView = (*Program)(nil)

// NewProgram creates a fullscreen timer view. step is called once per second
// while the countdown runs.
func NewProgram(ctl ports.TimerController, step func() bool, theme *config.ThemeConfig, opts ...tea.ProgramOption) *Program {
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &Program{timer: ctl, step: step, theme: theme, opts: opts}
}

// Run blocks until the user quits or ctx is cancelled, then saves the timer.
func (p *Program) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(p.timer, p.step, p.theme)
	model.ctx = ctx

	p.mu.Lock()
	p.program = tea.NewProgram(model, p.opts...)
	program := p.program
	p.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		program.Quit()
	}()

	_, err := program.Run()
	cancel()
	wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	if err := p.timer.Save(context.Background()); err != nil {
		return err
	}
	return nil
}

// Stop asks a running program to quit.
func (p *Program) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.program != nil {
		p.program.Quit()
	}
}

// ShowStatus prints the timer without starting interactive mode.
func ShowStatus(w io.Writer, t domain.Timer, s domain.Settings, today domain.Stats) {
	fmt.Fprintf(w, "🍅 %s\n", t.Phase.Label())
	fmt.Fprintf(w, "   Status: %s\n", t.State.Label())
	fmt.Fprintf(w, "   Remaining: %s of %s\n", domain.FormatClock(t.RemainingSeconds), domain.FormatClock(t.TotalSeconds))
	fmt.Fprintf(w, "   Progress: %.0f%%\n", t.Progress()*100)
	fmt.Fprintf(w, "   Cycle: %s (%d/%d)\n",
		cycleDots(t.CompletedSessionsInCycle, s.SessionsBeforeLongBreak),
		t.CompletedSessionsInCycle, s.SessionsBeforeLongBreak)
	if label := selectionLabel(t); label != "" {
		fmt.Fprintf(w, "   %s\n", label)
	}

	fmt.Fprintf(w, "\n📊 Today's Stats:\n")
	fmt.Fprintf(w, "   Pomodoros: %d\n", today.Completed)
	fmt.Fprintf(w, "   Focus Time: %dm\n", today.FocusMinutes)
	fmt.Fprintf(w, "   Break Time: %dm\n", today.BreakMinutes)
}
