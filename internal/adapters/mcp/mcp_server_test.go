package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/pomo/internal/domain"
	"github.com/xvierd/pomo/internal/services"
)

// countingStore records saves.
type countingStore struct {
	saves int
	err   error
}

func (c *countingStore) Load(ctx context.Context) (*domain.PersistedState, error) { return nil, nil }
func (c *countingStore) Save(ctx context.Context, state *domain.PersistedState) error {
	c.saves++
	return c.err
}
func (c *countingStore) Update(ctx context.Context, fn func(*domain.PersistedState) (*domain.PersistedState, error)) error {
	c.saves++
	if c.err != nil {
		return c.err
	}
	_, err := fn(nil)
	return err
}
func (c *countingStore) Close() error { return nil }

type stubRunner struct{ ran chan struct{} }

func (r *stubRunner) Run(ctx context.Context) error {
	close(r.ran)
	<-ctx.Done()
	return ctx.Err()
}

var wednesday = time.Date(2026, 3, 11, 9, 0, 0, 0, time.Local)

func newTestServer(t *testing.T) (*Server, *services.TimerService, *countingStore) {
	t.Helper()
	store := &countingStore{}
	svc := services.NewTimerService(store, domain.DefaultSettings())
	svc.SetClock(func() time.Time { return wednesday })
	srv := NewServer(svc, nil)
	srv.now = func() time.Time { return wednesday }
	return srv, svc, store
}

func request(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

func decode(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	require.NotNil(t, result)
	require.False(t, result.IsError, "unexpected tool error")
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content should be text")
	require.NoError(t, json.Unmarshal([]byte(text.Text), v))
}

func TestNewServer(t *testing.T) {
	srv, svc, _ := newTestServer(t)

	require.NotNil(t, srv.server)
	assert.Same(t, svc, srv.timer)
	assert.False(t, srv.IsRunning(), "IsRunning() should return false before Start()")
	assert.NoError(t, srv.Stop(), "Stop before Start should not fail")
}

func TestServer_handleGetTimerState(t *testing.T) {
	srv, _, _ := newTestServer(t)

	result, err := srv.handleGetTimerState(context.Background(), request(nil))
	require.NoError(t, err)

	var state timerState
	decode(t, result, &state)
	assert.Equal(t, "work", state.Phase)
	assert.Equal(t, "idle", state.State)
	assert.Equal(t, 1500, state.RemainingSeconds)
	assert.Equal(t, "25:00", state.Remaining)
	assert.Equal(t, 4, state.SessionsBeforeLongBreak)
	assert.Nil(t, state.CurrentSessionID)
}

func TestServer_CommandTools(t *testing.T) {
	srv, svc, store := newTestServer(t)
	ctx := context.Background()

	var state timerState
	result, err := srv.commandHandler("start")(ctx, request(nil))
	require.NoError(t, err)
	decode(t, result, &state)
	assert.Equal(t, "running", state.State)
	assert.NotNil(t, state.CurrentSessionID)

	result, err = srv.commandHandler("pause")(ctx, request(nil))
	require.NoError(t, err)
	decode(t, result, &state)
	assert.Equal(t, "paused", state.State)

	result, err = srv.commandHandler("complete")(ctx, request(nil))
	require.NoError(t, err)
	decode(t, result, &state)
	assert.Equal(t, "shortBreak", state.Phase)
	assert.Equal(t, 1, state.CompletedSessionsInCycle)

	assert.Equal(t, 3, store.saves, "every mutation should persist")
	require.Len(t, svc.Sessions(), 1)
	assert.True(t, svc.Sessions()[0].IsCompleted())
}

func TestServer_SaveFailure(t *testing.T) {
	srv, _, store := newTestServer(t)
	store.err = errors.New("disk full")

	result, err := srv.commandHandler("start")(context.Background(), request(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_handleSwitchPhase(t *testing.T) {
	srv, svc, _ := newTestServer(t)
	ctx := context.Background()

	result, err := srv.handleSwitchPhase(ctx, request(map[string]any{"phase": "longBreak"}))
	require.NoError(t, err)
	var state timerState
	decode(t, result, &state)
	assert.Equal(t, "longBreak", state.Phase)
	assert.Equal(t, 900, state.TotalSeconds)

	result, err = srv.handleSwitchPhase(ctx, request(map[string]any{"phase": "nap"}))
	require.NoError(t, err)
	assert.True(t, result.IsError, "unknown phase should be a tool error")

	result, err = srv.handleSwitchPhase(ctx, request(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError, "missing phase should be a tool error")

	svc.Start()
	result, err = srv.handleSwitchPhase(ctx, request(map[string]any{"phase": "work"}))
	require.NoError(t, err)
	assert.True(t, result.IsError, "switching while running should be refused")
	assert.Equal(t, domain.PhaseLongBreak, svc.Timer().Phase)
}

func TestServer_handleSelectTask(t *testing.T) {
	srv, svc, _ := newTestServer(t)
	ctx := context.Background()

	_, err := srv.handleSelectTask(ctx, request(map[string]any{"task_id": "t-1", "project_id": "p-1"}))
	require.NoError(t, err)
	tm := svc.Timer()
	require.NotNil(t, tm.SelectedTaskID)
	require.NotNil(t, tm.SelectedProjectID)
	assert.Equal(t, "t-1", *tm.SelectedTaskID)
	assert.Equal(t, "p-1", *tm.SelectedProjectID)

	_, err = srv.handleSelectTask(ctx, request(map[string]any{}))
	require.NoError(t, err)
	assert.Nil(t, svc.Timer().SelectedTaskID)
}

func TestServer_handleGetStats(t *testing.T) {
	srv, svc, _ := newTestServer(t)
	ctx := context.Background()

	svc.Start()
	svc.CompleteSession()

	var stats map[string]any
	result, err := srv.handleGetStats(ctx, request(map[string]any{"period": "week"}))
	require.NoError(t, err)
	decode(t, result, &stats)
	assert.Equal(t, "week", stats["period"])
	assert.Equal(t, "2026-03-09", stats["from"])
	assert.Equal(t, "2026-03-15", stats["to"])
	assert.EqualValues(t, 1, stats["completed"])
	assert.EqualValues(t, 25, stats["focus_minutes"])

	result, err = srv.handleGetStats(ctx, request(map[string]any{"from": "2026-03-12"}))
	require.NoError(t, err)
	decode(t, result, &stats)
	assert.Equal(t, "custom", stats["period"])
	assert.EqualValues(t, 0, stats["completed"])

	result, err = srv.handleGetStats(ctx, request(map[string]any{"from": "2026-03-12", "to": "2026-03-01"}))
	require.NoError(t, err)
	assert.True(t, result.IsError, "inverted range should be rejected")

	result, err = srv.handleGetStats(ctx, request(map[string]any{"period": "year"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_handleListSessions(t *testing.T) {
	srv, svc, _ := newTestServer(t)
	ctx := context.Background()

	svc.Start()
	svc.SkipPhase()
	svc.Start()
	svc.Reset()

	var out struct {
		Sessions   []sessionEntry `json:"sessions"`
		TotalCount int            `json:"total_count"`
	}
	result, err := srv.handleListSessions(ctx, request(map[string]any{"limit": 1}))
	require.NoError(t, err)
	decode(t, result, &out)
	assert.Equal(t, 2, out.TotalCount)
	require.Len(t, out.Sessions, 1)
	assert.Equal(t, "abandoned", out.Sessions[0].Disposition)
	assert.Nil(t, out.Sessions[0].CompletedAt)

	result, err = srv.handleListSessions(ctx, request(map[string]any{"from": "2026-03-11", "to": "2026-03-11"}))
	require.NoError(t, err)
	decode(t, result, &out)
	assert.Equal(t, 2, out.TotalCount)

	result, err = srv.handleListSessions(ctx, request(map[string]any{"from": "2026-03-12"}))
	require.NoError(t, err)
	decode(t, result, &out)
	assert.Equal(t, 0, out.TotalCount)

	result, err = srv.handleListSessions(ctx, request(map[string]any{"limit": 0}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_StartRunsRunner(t *testing.T) {
	store := &countingStore{}
	svc := services.NewTimerService(store, domain.DefaultSettings())
	runner := &stubRunner{ran: make(chan struct{})}
	srv := NewServer(svc, runner)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	select {
	case <-runner.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("runner was not started")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
	assert.False(t, srv.IsRunning())
	assert.Equal(t, 1, store.saves, "shutdown should persist the timer")
}
