package ipc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/SoarinFerret/pomodoro/internal/engine"
	"github.com/SoarinFerret/pomodoro/internal/session"
)

const (
	ObjectPath    = "/io/github/soarinferret/pomodoro"
	InterfaceName = "io.github.soarinferret.pomodoro.Timer"
	ServiceName   = "io.github.soarinferret.pomodoro"
	ErrorName     = "io.github.soarinferret.pomodoro.Error"

	SignalSessionCompleted = "SessionCompleted"
)

// callTimeout bounds how long a method call waits for the engine loop.
const callTimeout = 5 * time.Second

// Timer is the engine surface exposed over the bus.
type Timer interface {
	Start(ctx context.Context, work, brk int) error
	Pause(ctx context.Context) error
	Reset(ctx context.Context) error
	UpdateSettings(ctx context.Context, work, brk int) error
	ToggleSession(ctx context.Context, isWork bool) error
	ResetStats(ctx context.Context) error
	State(ctx context.Context) (session.TimerState, error)
	History(ctx context.Context) (session.DailyCompletions, error)
	Subscribe(buffer int) (<-chan engine.Event, func())
}

// TimerService is exported on the bus. Each method maps onto one engine
// operation and returns after the engine has applied and checkpointed it.
type TimerService struct {
	Timer Timer
}

func (s *TimerService) GetState() (string, *dbus.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	st, err := s.Timer.State(ctx)
	if err != nil {
		return "", busError(err)
	}
	return encode(st)
}

func (s *TimerService) GetHistory() (string, *dbus.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	daily, err := s.Timer.History(ctx)
	if err != nil {
		return "", busError(err)
	}
	return encode(daily)
}

// StartTimer takes optional durations in seconds; zero keeps the
// configured value.
func (s *TimerService) StartTimer(work, brk int32) *dbus.Error {
	return s.call(func(ctx context.Context) error {
		return s.Timer.Start(ctx, int(work), int(brk))
	})
}

func (s *TimerService) PauseTimer() *dbus.Error {
	return s.call(s.Timer.Pause)
}

func (s *TimerService) ResetTimer() *dbus.Error {
	return s.call(s.Timer.Reset)
}

func (s *TimerService) UpdateSettings(work, brk int32) *dbus.Error {
	return s.call(func(ctx context.Context) error {
		return s.Timer.UpdateSettings(ctx, int(work), int(brk))
	})
}

func (s *TimerService) ToggleSession(isWork bool) *dbus.Error {
	return s.call(func(ctx context.Context) error {
		return s.Timer.ToggleSession(ctx, isWork)
	})
}

func (s *TimerService) ResetStats() *dbus.Error {
	return s.call(s.Timer.ResetStats)
}

func (s *TimerService) call(fn func(context.Context) error) *dbus.Error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return busError(err)
	}
	return nil
}

func encode(v any) (string, *dbus.Error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", busError(err)
	}
	return string(data), nil
}

func busError(err error) *dbus.Error {
	return dbus.NewError(ErrorName, []interface{}{err.Error()})
}

// introspectNode describes TimerService for org.freedesktop.DBus.Introspectable.
var introspectNode = &introspect.Node{
	Name: ObjectPath,
	Interfaces: []introspect.Interface{
		introspect.IntrospectData,
		{
			Name: InterfaceName,
			Methods: []introspect.Method{
				{Name: "GetState", Args: []introspect.Arg{{Name: "state", Type: "s", Direction: "out"}}},
				{Name: "GetHistory", Args: []introspect.Arg{{Name: "history", Type: "s", Direction: "out"}}},
				{Name: "StartTimer", Args: []introspect.Arg{
					{Name: "workDuration", Type: "i", Direction: "in"},
					{Name: "breakDuration", Type: "i", Direction: "in"},
				}},
				{Name: "PauseTimer"},
				{Name: "ResetTimer"},
				{Name: "UpdateSettings", Args: []introspect.Arg{
					{Name: "workDuration", Type: "i", Direction: "in"},
					{Name: "breakDuration", Type: "i", Direction: "in"},
				}},
				{Name: "ToggleSession", Args: []introspect.Arg{{Name: "isWorkSession", Type: "b", Direction: "in"}}},
				{Name: "ResetStats"},
			},
			Signals: []introspect.Signal{
				{Name: SignalSessionCompleted, Args: []introspect.Arg{
					{Name: "message", Type: "s"},
					{Name: "wasWorkSession", Type: "b"},
					{Name: "totalToday", Type: "i"},
				}},
			},
		},
	},
}
