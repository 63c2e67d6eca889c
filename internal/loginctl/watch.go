package loginctl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const prepareForSleep = "org.freedesktop.login1.Manager.PrepareForSleep"

// Reconciler catches up on time the process did not see pass.
type Reconciler interface {
	Reconcile(ctx context.Context) error
}

// Watch listens for logind suspend/resume on the system bus and asks r to
// reconcile after every resume. Tickers do not advance while the host is
// suspended, so without this a running countdown would lag wall-clock time.
func Watch(ctx context.Context, r Reconciler) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath("/org/freedesktop/login1"),
		dbus.WithMatchInterface("org.freedesktop.login1.Manager"),
		dbus.WithMatchMember("PrepareForSleep"),
	); err != nil {
		return fmt.Errorf("add match failed: %w", err)
	}

	c := make(chan *dbus.Signal, 10)
	conn.Signal(c)
	defer conn.RemoveSignal(c)

	handle(ctx, c, r)
	return nil
}

func handle(ctx context.Context, c <-chan *dbus.Signal, r Reconciler) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-c:
			if !ok {
				return
			}
			if sig.Name != prepareForSleep || len(sig.Body) == 0 {
				continue
			}
			sleeping, _ := sig.Body[0].(bool)
			if sleeping {
				slog.Info("System is going to sleep")
				continue
			}
			slog.Info("System has woken up")
			if err := r.Reconcile(ctx); err != nil {
				slog.Warn("Failed to reconcile timer after resume", "error", err)
			}
		}
	}
}
