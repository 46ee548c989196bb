// Package mcp provides the MCP (Model Context Protocol) server implementation.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xvierd/pomo/internal/domain"
	"github.com/xvierd/pomo/internal/ports"
)

// Runner is a background loop started alongside the server, such as the
// ticker that drives the countdown.
type Runner interface {
	Run(ctx context.Context) error
}

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server *server.MCPServer
	timer  ports.TimerController
	runner Runner
	logger *log.Logger
	now    func() time.Time

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new MCP server over timer. runner may be nil.
func NewServer(timer ports.TimerController, runner Runner) *Server {
	s := &Server{
		timer:  timer,
		runner: runner,
		logger: log.New(io.Discard, "", 0),
		now:    time.Now,
	}

	s.server = server.NewMCPServer(
		"pomo",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

// SetLogger sets where background failures are reported.
func (s *Server) SetLogger(logger *log.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// commandTools maps argument-free tools to timer commands.
var commandTools = []struct {
	name        string
	description string
	cmd         ports.TimerCommand
}{
	{"start_timer", "Start the countdown for the current phase", ports.CmdStart},
	{"pause_timer", "Pause the running countdown", ports.CmdPause},
	{"resume_timer", "Resume a paused countdown (starts it when idle)", ports.CmdResume},
	{"reset_timer", "Abandon the current countdown and restore the full phase duration", ports.CmdReset},
	{"skip_phase", "Skip the current phase and move to the next one", ports.CmdSkip},
	{"complete_session", "Complete the current phase now and move to the next one", ports.CmdComplete},
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	s.server.AddTool(
		mcp.NewTool(
			"get_timer_state",
			mcp.WithDescription("Get the pomodoro timer state: phase, countdown, cycle progress and selected task"),
		),
		s.handleGetTimerState,
	)

	for _, ct := range commandTools {
		s.server.AddTool(
			mcp.NewTool(ct.name, mcp.WithDescription(ct.description)),
			s.commandHandler(ct.cmd),
		)
	}

	switchTool := mcp.NewTool(
		"switch_phase",
		mcp.WithDescription("Select a phase manually. Only allowed while the timer is idle"),
		mcp.WithString(
			"phase",
			mcp.Required(),
			mcp.Description("The phase to switch to"),
			mcp.Enum(string(domain.PhaseWork), string(domain.PhaseShortBreak), string(domain.PhaseLongBreak)),
		),
	)
	s.server.AddTool(switchTool, s.handleSwitchPhase)

	selectTool := mcp.NewTool(
		"select_task",
		mcp.WithDescription("Attach task and project references to sessions started from now on. Omit both to clear"),
		mcp.WithString("task_id", mcp.Description("Optional task reference")),
		mcp.WithString("project_id", mcp.Description("Optional project reference")),
	)
	s.server.AddTool(selectTool, s.handleSelectTask)

	statsTool := mcp.NewTool(
		"get_stats",
		mcp.WithDescription("Get completed pomodoros, focus minutes and break minutes for a period or date range"),
		mcp.WithString(
			"period",
			mcp.Description("Predefined period (default: today)"),
			mcp.Enum(string(domain.PeriodToday), string(domain.PeriodWeek), string(domain.PeriodMonth)),
		),
		mcp.WithString("from", mcp.Description("Optional start date (YYYY-MM-DD); overrides period")),
		mcp.WithString("to", mcp.Description("Optional end date (YYYY-MM-DD); defaults to from")),
	)
	s.server.AddTool(statsTool, s.handleGetStats)

	sessionsTool := mcp.NewTool(
		"list_sessions",
		mcp.WithDescription("List recorded sessions of any outcome, most recent first"),
		mcp.WithString("from", mcp.Description("Optional start date (YYYY-MM-DD)")),
		mcp.WithString("to", mcp.Description("Optional end date (YYYY-MM-DD)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of sessions to return (default: 20)")),
	)
	s.server.AddTool(sessionsTool, s.handleListSessions)
}

// Start runs the background runner and serves MCP requests via stdio
// until ctx is cancelled or stdin closes.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	ctx = s.ctx
	s.mu.Unlock()

	var wg sync.WaitGroup
	if s.runner != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Printf("Warning: ticker stopped: %v", err)
			}
		}()
	}

	err := server.NewStdioServer(s.server).Listen(ctx, os.Stdin, os.Stdout)
	s.Stop()
	wg.Wait()

	if saveErr := s.timer.Save(context.Background()); saveErr != nil {
		s.logger.Printf("Warning: %v", saveErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve MCP: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// IsRunning returns true if the server is active.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return false
	}
	return s.ctx.Err() == nil
}

// Ensure Server implements ports.MCPHandler.
var _ ports.MCPHandler = (*Server)(nil)

// timerState is the wire form of the countdown.
type timerState struct {
	Phase                    string  `json:"phase"`
	PhaseLabel               string  `json:"phase_label"`
	State                    string  `json:"state"`
	RemainingSeconds         int     `json:"remaining_seconds"`
	TotalSeconds             int     `json:"total_seconds"`
	Remaining                string  `json:"remaining"`
	Progress                 float64 `json:"progress"`
	CompletedSessionsInCycle int     `json:"completed_sessions_in_cycle"`
	SessionsBeforeLongBreak  int     `json:"sessions_before_long_break"`
	CurrentSessionID         *string `json:"current_session_id"`
	SelectedTaskID           *string `json:"selected_task_id"`
	SelectedProjectID        *string `json:"selected_project_id"`
}

type sessionEntry struct {
	ID              string  `json:"id"`
	Phase           string  `json:"phase"`
	Disposition     string  `json:"disposition"`
	DurationMinutes int     `json:"duration_minutes"`
	StartedAt       string  `json:"started_at"`
	CompletedAt     *string `json:"completed_at,omitempty"`
	TaskID          *string `json:"task_id,omitempty"`
	ProjectID       *string `json:"project_id,omitempty"`
}

func (s *Server) currentState() timerState {
	t := s.timer.Timer()
	return timerState{
		Phase:                    string(t.Phase),
		PhaseLabel:               t.Phase.Label(),
		State:                    string(t.State),
		RemainingSeconds:         t.RemainingSeconds,
		TotalSeconds:             t.TotalSeconds,
		Remaining:                domain.FormatClock(t.RemainingSeconds),
		Progress:                 t.Progress(),
		CompletedSessionsInCycle: t.CompletedSessionsInCycle,
		SessionsBeforeLongBreak:  s.timer.Settings().SessionsBeforeLongBreak,
		CurrentSessionID:         t.CurrentSessionID,
		SelectedTaskID:           t.SelectedTaskID,
		SelectedProjectID:        t.SelectedProjectID,
	}
}

func jsonResult(v any, what string) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", what, err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// sync picks up what other pomo processes saved before a command applies.
func (s *Server) sync(ctx context.Context) {
	if err := s.timer.Sync(ctx); err != nil {
		s.logger.Printf("Warning: %v", err)
	}
}

// afterMutation persists the timer and reports the new state.
func (s *Server) afterMutation(ctx context.Context) (*mcp.CallToolResult, error) {
	if err := s.timer.Save(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.currentState(), "timer state")
}

// handleGetTimerState handles the get_timer_state tool.
func (s *Server) handleGetTimerState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.currentState(), "timer state")
}

// commandHandler returns a handler applying cmd to the timer.
func (s *Server) commandHandler(cmd ports.TimerCommand) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.sync(ctx)
		cmd.Apply(s.timer)
		return s.afterMutation(ctx)
	}
}

// handleSwitchPhase handles the switch_phase tool.
func (s *Server) handleSwitchPhase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("phase")
	if err != nil {
		return mcp.NewToolResultError("phase is required: " + err.Error()), nil
	}
	phase, err := domain.ParsePhase(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.sync(ctx)
	if err := s.timer.SwitchPhase(phase); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to switch phase: %v", err)), nil
	}
	return s.afterMutation(ctx)
}

// handleSelectTask handles the select_task tool.
func (s *Server) handleSelectTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.timer.SelectTask(optionalString(request, "task_id"), optionalString(request, "project_id"))
	return s.afterMutation(ctx)
}

// handleGetStats handles the get_stats tool.
func (s *Server) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, label, err := s.resolveRange(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st := s.timer.StatsFor(r)

	result := map[string]any{
		"period":        label,
		"from":          string(r.Start),
		"to":            string(r.End),
		"completed":     st.Completed,
		"focus_minutes": st.FocusMinutes,
		"break_minutes": st.BreakMinutes,
	}
	return jsonResult(result, "stats")
}

// handleListSessions handles the list_sessions tool.
func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)
	if limit <= 0 {
		return mcp.NewToolResultError("limit must be positive"), nil
	}

	var sessions []domain.Session
	if request.GetString("from", "") == "" && request.GetString("to", "") == "" {
		sessions = s.timer.Sessions()
	} else {
		r, _, err := s.resolveRange(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sessions = s.timer.SessionsByDateRange(r)
	}

	total := len(sessions)
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	entries := make([]sessionEntry, 0, len(sessions))
	for _, sess := range sessions {
		entries = append(entries, toEntry(sess))
	}

	result := map[string]any{
		"sessions":    entries,
		"total_count": total,
	}
	return jsonResult(result, "sessions")
}

// resolveRange reads from/to, falling back to the period argument.
func (s *Server) resolveRange(request mcp.CallToolRequest) (domain.DateRange, string, error) {
	from := request.GetString("from", "")
	to := request.GetString("to", "")
	if from == "" && to == "" {
		p, err := domain.ParsePeriod(request.GetString("period", string(domain.PeriodToday)))
		if err != nil {
			return domain.DateRange{}, "", err
		}
		return p.Range(s.now()), string(p), nil
	}

	if from == "" {
		from = to
	}
	if to == "" {
		to = from
	}
	start, err := domain.ParseDateKey(from)
	if err != nil {
		return domain.DateRange{}, "", err
	}
	end, err := domain.ParseDateKey(to)
	if err != nil {
		return domain.DateRange{}, "", err
	}
	if end < start {
		return domain.DateRange{}, "", fmt.Errorf("invalid range: %s is after %s", start, end)
	}
	return domain.DateRange{Start: start, End: end}, "custom", nil
}

func toEntry(sess domain.Session) sessionEntry {
	e := sessionEntry{
		ID:              sess.ID,
		Phase:           string(sess.Phase),
		Disposition:     string(sess.Disposition),
		DurationMinutes: sess.DurationMinutes,
		StartedAt:       sess.StartedAt.Format(time.RFC3339),
		TaskID:          sess.TaskID,
		ProjectID:       sess.ProjectID,
	}
	if sess.CompletedAt != nil {
		c := sess.CompletedAt.Format(time.RFC3339)
		e.CompletedAt = &c
	}
	return e
}

func optionalString(request mcp.CallToolRequest, key string) *string {
	v := request.GetString(key, "")
	if v == "" {
		return nil
	}
	return &v
}
