package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SoarinFerret/pomodoro/internal/session"
)

// Manager reads and writes the timer records on top of a Store.
type Manager struct {
	store Store
	// defaults seed a fresh or incomplete timerState record.
	workDefault  int
	breakDefault int
}

// NewManager wraps store. Non-positive defaults fall back to the session
// package defaults.
func NewManager(store Store, workDefault, breakDefault int) *Manager {
	return &Manager{store: store, workDefault: workDefault, breakDefault: breakDefault}
}

// LoadTimerState returns the persisted timer, or a fresh idle one when the
// record does not exist. Missing fields take the configured defaults.
func (m *Manager) LoadTimerState(ctx context.Context, now time.Time) (session.TimerState, error) {
	fresh := session.NewTimerState(m.workDefault, m.breakDefault, now)

	data, err := m.store.Get(ctx, TimerStateKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fresh, nil
		}
		return fresh, fmt.Errorf("load timer state: %w", err)
	}

	// Unmarshal over the fresh state so absent fields keep their defaults.
	s := fresh
	if err := json.Unmarshal(data, &s); err != nil {
		return fresh, fmt.Errorf("decode timer state: %w", err)
	}
	s.Normalize(m.workDefault, m.breakDefault)
	return s, nil
}

// SaveTimerState checkpoints s.
func (m *Manager) SaveTimerState(ctx context.Context, s session.TimerState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode timer state: %w", err)
	}
	return m.set(ctx, TimerStateKey, data)
}

// LoadDaily returns the daily completion map, empty if never written.
func (m *Manager) LoadDaily(ctx context.Context) (session.DailyCompletions, error) {
	daily := session.DailyCompletions{}

	data, err := m.store.Get(ctx, DailyKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return daily, nil
		}
		return daily, fmt.Errorf("load daily completions: %w", err)
	}
	if err := json.Unmarshal(data, &daily); err != nil {
		return session.DailyCompletions{}, fmt.Errorf("decode daily completions: %w", err)
	}
	if daily == nil {
		daily = session.DailyCompletions{}
	}
	return daily, nil
}

// SaveDaily checkpoints the daily completion map.
func (m *Manager) SaveDaily(ctx context.Context, daily session.DailyCompletions) error {
	if daily == nil {
		daily = session.DailyCompletions{}
	}
	data, err := json.Marshal(daily)
	if err != nil {
		return fmt.Errorf("encode daily completions: %w", err)
	}
	return m.set(ctx, DailyKey, data)
}

// set writes a record, retrying once. A lost checkpoint only costs a
// bounded reconciliation error on the next start.
func (m *Manager) set(ctx context.Context, key string, data []byte) error {
	err := m.store.Set(ctx, key, data)
	if err == nil {
		return nil
	}
	slog.Warn("checkpoint failed, retrying", "record", key, "error", err)

	if err = m.store.Set(ctx, key, data); err != nil {
		slog.Error("checkpoint lost", "record", key, "error", err)
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
