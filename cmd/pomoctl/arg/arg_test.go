package arg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/SoarinFerret/pomodoro/internal/ipc"
	"github.com/SoarinFerret/pomodoro/internal/session"
)

type fakeController struct {
	mu        sync.Mutex
	st        session.TimerState
	daily     session.DailyCompletions
	calls     []string
	started   [2]int
	settings  [2]int
	isWork    *bool
	err       error
	completed chan ipc.Completed
	closed    bool
}

func newFake() *fakeController {
	return &fakeController{
		st:        session.NewTimerState(1500, 300, time.Now()),
		daily:     session.DailyCompletions{session.DateKey(time.Now()): 3},
		completed: make(chan ipc.Completed, 1),
	}
}

func (f *fakeController) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeController) State(context.Context) (session.TimerState, error) {
	return f.st, f.record("State")
}

func (f *fakeController) History(context.Context) (session.DailyCompletions, error) {
	return f.daily, f.record("History")
}

func (f *fakeController) Start(_ context.Context, work, brk int) error {
	f.started = [2]int{work, brk}
	return f.record("Start")
}

func (f *fakeController) Pause(context.Context) error { return f.record("Pause") }
func (f *fakeController) Reset(context.Context) error { return f.record("Reset") }

func (f *fakeController) UpdateSettings(_ context.Context, work, brk int) error {
	f.settings = [2]int{work, brk}
	return f.record("UpdateSettings")
}

func (f *fakeController) ToggleSession(_ context.Context, isWork bool) error {
	f.isWork = &isWork
	return f.record("ToggleSession")
}

func (f *fakeController) ResetStats(context.Context) error { return f.record("ResetStats") }

func (f *fakeController) Subscribe(context.Context) (<-chan ipc.Completed, error) {
	return f.completed, f.record("Subscribe")
}

func (f *fakeController) Close() error {
	f.closed = true
	return nil
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, ctx context.Context, f *fakeController, args ...string) (string, error) {
	t.Helper()
	orig := dial
	dial = func(bool) (Controller, error) { return f, nil }
	t.Cleanup(func() { dial = orig })

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestStatus_Text(t *testing.T) {
	f := newFake()
	out, err := run(t, context.Background(), f, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "25:00")
	assert.Contains(t, out, "Today: 3")
	assert.True(t, f.closed)
}

func TestStatus_JSON(t *testing.T) {
	f := newFake()
	out, err := run(t, context.Background(), f, "status", "-o", "json")
	require.NoError(t, err)

	var view statusView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "Work", view.Session)
	assert.Equal(t, "25:00", view.Remaining)
	assert.Equal(t, 1500, view.RemainingSeconds)
	assert.Equal(t, 3, view.Today)
}

func TestStatus_YAML(t *testing.T) {
	f := newFake()
	out, err := run(t, context.Background(), f, "status", "--output", "yaml")
	require.NoError(t, err)

	var view statusView
	require.NoError(t, yaml.Unmarshal([]byte(out), &view))
	assert.Equal(t, 300, view.BreakDuration)
	assert.Contains(t, out, "remaining_seconds: 1500")
}

func TestStatus_UnknownFormat(t *testing.T) {
	_, err := run(t, context.Background(), newFake(), "status", "-o", "xml")
	assert.Error(t, err)
}

func TestStart(t *testing.T) {
	f := newFake()
	out, err := run(t, context.Background(), f, "start", "--work", "25m")
	require.NoError(t, err)
	assert.Equal(t, [2]int{1500, 0}, f.started)
	assert.Contains(t, out, "Timer started")

	_, err = run(t, context.Background(), f, "start", "--break", "500ms")
	assert.Error(t, err)
}

func TestPauseResetToggle(t *testing.T) {
	f := newFake()
	_, err := run(t, context.Background(), f, "pause")
	require.NoError(t, err)
	_, err = run(t, context.Background(), f, "reset")
	require.NoError(t, err)
	_, err = run(t, context.Background(), f, "toggle", "break")
	require.NoError(t, err)
	require.NotNil(t, f.isWork)
	assert.False(t, *f.isWork)

	_, err = run(t, context.Background(), f, "toggle", "lunch")
	assert.Error(t, err)
	assert.Equal(t, []string{"Pause", "Reset", "ToggleSession"}, f.calls)
}

func TestSettings(t *testing.T) {
	f := newFake()
	_, err := run(t, context.Background(), f, "settings", "--work", "30m", "--break", "10m")
	require.NoError(t, err)
	assert.Equal(t, [2]int{1800, 600}, f.settings)

	_, err = run(t, context.Background(), f, "settings")
	assert.Error(t, err)
}

func TestSettings_SingleFlag(t *testing.T) {
	f := newFake()
	out, err := run(t, context.Background(), f, "settings", "--break", "10m")
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 600}, f.settings)
	assert.Contains(t, out, "25m0s work")

	_, err = run(t, context.Background(), f, "settings", "--work", "30m")
	require.NoError(t, err)
	assert.Equal(t, [2]int{1800, 0}, f.settings)
}

func TestResetStats_RequiresConfirmation(t *testing.T) {
	f := newFake()
	_, err := run(t, context.Background(), f, "reset-stats")
	assert.Error(t, err)
	assert.Empty(t, f.calls)

	out, err := run(t, context.Background(), f, "reset-stats", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Statistics cleared")
	assert.Equal(t, []string{"ResetStats"}, f.calls)
}

func TestHistory(t *testing.T) {
	f := newFake()
	f.daily = session.DailyCompletions{"2024-03-05": 4}
	out, err := run(t, context.Background(), f, "history", "--month", "2024-03")
	require.NoError(t, err)
	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, " 5:4")

	_, err = run(t, context.Background(), f, "history", "--month", "March")
	assert.Error(t, err)
}

func TestDaemonErrorsSurface(t *testing.T) {
	f := newFake()
	f.err = errors.New("timer is stopped")
	_, err := run(t, context.Background(), f, "pause")
	assert.ErrorContains(t, err, "timer is stopped")
}

func TestWatch(t *testing.T) {
	f := newFake()
	f.completed <- ipc.Completed{Message: "Time for a break!", WasWorkSession: true, TotalToday: 4}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	out, err := run(t, ctx, f, "watch", "--interval", "20ms")
	require.NoError(t, err)

	assert.Contains(t, out, "25:00 paused")
	assert.Contains(t, out, "Time for a break! (4 today)")
	// unchanged state is printed once
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte("25:00")))
}
