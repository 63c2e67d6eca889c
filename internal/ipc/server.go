package ipc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/SoarinFerret/pomodoro/internal/engine"
	"github.com/SoarinFerret/pomodoro/internal/notify"
)

// Emitter is satisfied by *dbus.Conn.
type Emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

// Connect opens a private connection to the system or session bus.
func Connect(system bool) (*dbus.Conn, error) {
	if system {
		conn, err := dbus.ConnectSystemBus()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to system bus: %w", err)
		}
		return conn, nil
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return conn, nil
}

// NameOwner is satisfied by *dbus.Conn.
type NameOwner interface {
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)
	ReleaseName(name string) (dbus.ReleaseNameReply, error)
}

// Claim takes sole ownership of the service name. The daemon must hold it
// before the engine loads state, so a second daemon exits without ticking
// or checkpointing. The returned func releases the name.
func Claim(owner NameOwner) (func(), error) {
	reply, err := owner.RequestName(ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, fmt.Errorf("failed to request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return nil, fmt.Errorf("name %s is already owned, is another pomodorod running?", ServiceName)
	}
	return func() {
		if _, err := owner.ReleaseName(ServiceName); err != nil {
			slog.Debug("Failed to release name", "name", ServiceName, "error", err)
		}
	}, nil
}

// Serve exports the timer on a connection that already owns the service
// name and forwards completion events as signals until ctx is cancelled.
func Serve(ctx context.Context, conn *dbus.Conn, timer Timer) error {
	svc := &TimerService{Timer: timer}
	if err := conn.Export(svc, dbus.ObjectPath(ObjectPath), InterfaceName); err != nil {
		return fmt.Errorf("failed to export interface: %w", err)
	}
	if err := conn.Export(introspect.NewIntrospectable(introspectNode), dbus.ObjectPath(ObjectPath), "org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspection: %w", err)
	}

	events, unsubscribe := timer.Subscribe(16)
	defer unsubscribe()

	slog.Info("Serving timer on D-Bus", "name", ServiceName, "path", ObjectPath)
	Forward(ctx, events, conn)
	return nil
}

// Forward turns engine events into SessionCompleted signals. It returns
// when ctx is done or events is closed. Emission errors are logged and
// dropped: clients that miss a signal catch up on their next poll.
func Forward(ctx context.Context, events <-chan engine.Event, emitter Emitter) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type != engine.EventSessionCompleted {
				continue
			}
			c := ev.Completion
			err := emitter.Emit(dbus.ObjectPath(ObjectPath), InterfaceName+"."+SignalSessionCompleted,
				notify.Message(c), c.WasWorkSession, int32(c.TotalToday))
			if err != nil {
				slog.Debug("Failed to emit signal", "signal", SignalSessionCompleted, "error", err)
			}
		}
	}
}
