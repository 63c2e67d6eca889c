package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/SoarinFerret/pomodoro/internal/config"
	"github.com/SoarinFerret/pomodoro/internal/engine"
	"github.com/SoarinFerret/pomodoro/internal/ipc"
	"github.com/SoarinFerret/pomodoro/internal/loginctl"
	"github.com/SoarinFerret/pomodoro/internal/notify"
	"github.com/SoarinFerret/pomodoro/internal/sqlite"
	"github.com/SoarinFerret/pomodoro/internal/state"
)

func main() {
	// check for argument to determine config location
	argPath := config.DefaultPath()
	if len(os.Args) > 1 {
		argPath = os.Args[1]
	}
	cfg, err := config.LoadConfigFromFile(argPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()})))
	slog.Info("Using config file", "path", argPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		slog.Info("Shutting down")
		cancel()
	}()

	// Own the bus name before touching state: a second daemon must exit
	// here, not after it has resumed and checkpointed the timer.
	conn, err := ipc.Connect(cfg.Bus.System)
	if err != nil {
		slog.Error("Failed to connect to D-Bus", "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	release, err := ipc.Claim(conn)
	if err != nil {
		slog.Error("Failed to claim D-Bus name", "error", err)
		conn.Close()
		os.Exit(1)
	}
	defer release()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open state store", "backend", cfg.Store.Backend, "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	stateMgr := state.NewManager(store, cfg.Timer.WorkDuration.Seconds(), cfg.Timer.BreakDuration.Seconds())
	defer stateMgr.Close()

	notifier, closeNotifier := buildNotifier(cfg)
	defer closeNotifier()

	timer := engine.New(stateMgr, notifier, engine.Options{
		AutoResume:    cfg.Timer.AutoResume,
		NotifyTimeout: cfg.Notify.Timeout.Duration,
	})

	var wg sync.WaitGroup

	// Start the timer engine
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := timer.Run(ctx); err != nil {
			slog.Error("Timer engine error", "error", err)
		}
		cancel()
	}()

	// Serve the timer on D-Bus
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ipc.Serve(ctx, conn, timer); err != nil {
			slog.Error("D-Bus service error", "error", err)
			cancel()
		}
	}()

	// Catch up after host suspend
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Debug("Monitoring logind for suspend and resume")
		if err := loginctl.Watch(ctx, timer); err != nil {
			slog.Warn("logind watcher error", "error", err)
		}
	}()

	wg.Wait()
	slog.Info("Shutdown complete")
}

func openStore(ctx context.Context, cfg *config.Config) (state.Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return sqlite.New(ctx, cfg.Store.Path)
	default:
		return state.OpenFileStore(cfg.Store.Path)
	}
}

// buildNotifier returns the configured notifiers and a func closing the
// session bus connection the desktop notifier holds.
func buildNotifier(cfg *config.Config) (*notify.Multi, func()) {
	m := &notify.Multi{}
	closeFn := func() {}
	if *cfg.Notify.Desktop {
		conn, err := ipc.Connect(false)
		if err != nil {
			slog.Warn("Desktop notifications disabled, no session bus", "error", err)
		} else {
			m.Add("desktop", notify.NewDesktop(conn, "Pomodoro"))
			closeFn = func() { conn.Close() }
		}
	}
	if *cfg.Notify.Sound {
		m.Add("sound", notify.NewSound(cfg.Notify.SoundFile, cfg.Notify.SoundCommand, cfg.Notify.BeepCommand))
	}
	if *cfg.Notify.Speech {
		m.Add("speech", notify.NewSpeech(cfg.Notify.SpeechCommand))
	}
	slog.Debug("Notifiers configured", "count", m.Len())
	return m, closeFn
}
