package ipc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/SoarinFerret/pomodoro/internal/session"
)

// Completed is a decoded SessionCompleted signal.
type Completed struct {
	Message        string
	WasWorkSession bool
	TotalToday     int
}

// Client talks to a running pomodorod.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// Dial connects to the bus the daemon serves on.
func Dial(system bool) (*Client, error) {
	conn, err := Connect(system)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, obj: conn.Object(ServiceName, dbus.ObjectPath(ObjectPath))}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) State(ctx context.Context) (session.TimerState, error) {
	var st session.TimerState
	err := c.getJSON(ctx, "GetState", &st)
	return st, err
}

func (c *Client) History(ctx context.Context) (session.DailyCompletions, error) {
	daily := session.DailyCompletions{}
	err := c.getJSON(ctx, "GetHistory", &daily)
	return daily, err
}

// Start starts the timer; zero durations keep the configured ones.
func (c *Client) Start(ctx context.Context, work, brk int) error {
	return c.call(ctx, "StartTimer", int32(work), int32(brk))
}

func (c *Client) Pause(ctx context.Context) error {
	return c.call(ctx, "PauseTimer")
}

func (c *Client) Reset(ctx context.Context) error {
	return c.call(ctx, "ResetTimer")
}

func (c *Client) UpdateSettings(ctx context.Context, work, brk int) error {
	return c.call(ctx, "UpdateSettings", int32(work), int32(brk))
}

func (c *Client) ToggleSession(ctx context.Context, isWork bool) error {
	return c.call(ctx, "ToggleSession", isWork)
}

func (c *Client) ResetStats(ctx context.Context) error {
	return c.call(ctx, "ResetStats")
}

// Subscribe delivers SessionCompleted signals until ctx is done. Signals
// sent while the client is not attached are simply missed.
func (c *Client) Subscribe(ctx context.Context) (<-chan Completed, error) {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(dbus.ObjectPath(ObjectPath)),
		dbus.WithMatchInterface(InterfaceName),
		dbus.WithMatchMember(SignalSessionCompleted),
	}
	if err := c.conn.AddMatchSignal(opts...); err != nil {
		return nil, fmt.Errorf("add match failed: %w", err)
	}

	signals := make(chan *dbus.Signal, 10)
	c.conn.Signal(signals)

	out := make(chan Completed, 10)
	go func() {
		defer close(out)
		defer c.conn.RemoveSignal(signals)
		defer c.conn.RemoveMatchSignal(opts...)
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				done, ok := parseCompleted(sig)
				if !ok {
					continue
				}
				select {
				case out <- done:
				default:
				}
			}
		}
	}()
	return out, nil
}

func parseCompleted(sig *dbus.Signal) (Completed, bool) {
	if sig == nil || sig.Name != InterfaceName+"."+SignalSessionCompleted || len(sig.Body) < 3 {
		return Completed{}, false
	}
	message, ok1 := sig.Body[0].(string)
	wasWork, ok2 := sig.Body[1].(bool)
	total, ok3 := sig.Body[2].(int32)
	if !ok1 || !ok2 || !ok3 {
		return Completed{}, false
	}
	return Completed{Message: message, WasWorkSession: wasWork, TotalToday: int(total)}, true
}

func (c *Client) call(ctx context.Context, method string, args ...interface{}) error {
	if err := c.obj.CallWithContext(ctx, InterfaceName+"."+method, 0, args...).Store(); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, method string, v any) error {
	var payload string
	if err := c.obj.CallWithContext(ctx, InterfaceName+"."+method, 0).Store(&payload); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("decode %s reply: %w", method, err)
	}
	return nil
}
