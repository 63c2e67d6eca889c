package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/pomodoro/internal/session"
)

func tempStateFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "pomodoro", "state.json")
}

func newTestManager(t *testing.T, path string) *Manager {
	t.Helper()
	fs, err := OpenFileStore(path)
	require.NoError(t, err)
	return NewManager(fs, 0, 0)
}

func TestLoadTimerState_Defaults(t *testing.T) {
	m := newTestManager(t, tempStateFile(t))
	now := time.Now()

	s, err := m.LoadTimerState(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, session.NewTimerState(0, 0, now), s)

	daily, err := m.LoadDaily(context.Background())
	require.NoError(t, err)
	assert.Empty(t, daily)
}

func TestManager_SaveAndLoad(t *testing.T) {
	path := tempStateFile(t)
	ctx := context.Background()
	now := time.Now()

	m := newTestManager(t, path)
	s := session.NewTimerState(1500, 300, now)
	s.Start(0, 0, now)
	s.TimeRemaining = 77
	s.SessionsDone = 3
	require.NoError(t, m.SaveTimerState(ctx, s))
	require.NoError(t, m.SaveDaily(ctx, session.DailyCompletions{"2026-10-17": 3}))

	_, err := os.Stat(path)
	require.NoError(t, err, "state file not created")

	m2 := newTestManager(t, path)
	got, err := m2.LoadTimerState(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, s, got)

	daily, err := m2.LoadDaily(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.DailyCompletions{"2026-10-17": 3}, daily)
}

func TestLoadTimerState_MissingFieldsTakeDefaults(t *testing.T) {
	path := tempStateFile(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"timerState":{"sessionsDone":4,"isWorkSession":false}}`), 0o644))

	fs, err := OpenFileStore(path)
	require.NoError(t, err)
	m := NewManager(fs, 25*60, 10*60)

	s, err := m.LoadTimerState(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 4, s.SessionsDone)
	assert.False(t, s.IsWorkSession)
	assert.Equal(t, 25*60, s.WorkDuration)
	assert.Equal(t, 10*60, s.BreakDuration)
	assert.Equal(t, 10*60, s.TimeRemaining)
}

func TestOpenFileStore_Corrupt(t *testing.T) {
	path := tempStateFile(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := OpenFileStore(path)
	assert.Error(t, err)
}

type flakyStore struct {
	Store
	failures int
	sets     int
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	f.sets++
	if f.failures > 0 {
		f.failures--
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

func TestManager_RetriesOnce(t *testing.T) {
	fs, err := OpenFileStore(tempStateFile(t))
	require.NoError(t, err)

	flaky := &flakyStore{Store: fs, failures: 1}
	m := NewManager(flaky, 0, 0)
	require.NoError(t, m.SaveDaily(context.Background(), nil))
	assert.Equal(t, 2, flaky.sets)

	flaky.failures, flaky.sets = 2, 0
	err = m.SaveDaily(context.Background(), session.DailyCompletions{})
	assert.Error(t, err)
	assert.Equal(t, 2, flaky.sets)
}

func TestFileStore_GetMissing(t *testing.T) {
	fs, err := OpenFileStore(tempStateFile(t))
	require.NoError(t, err)
	_, err = fs.Get(context.Background(), TimerStateKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_RejectsInvalidJSON(t *testing.T) {
	fs, err := OpenFileStore(tempStateFile(t))
	require.NoError(t, err)
	assert.Error(t, fs.Set(context.Background(), DailyKey, []byte("nope")))
	_, err = fs.Get(context.Background(), DailyKey)
	assert.ErrorIs(t, err, ErrNotFound)
}
