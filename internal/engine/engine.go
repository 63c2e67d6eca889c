package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SoarinFerret/pomodoro/internal/session"
	"github.com/SoarinFerret/pomodoro/internal/state"
)

// ErrStopped is returned by operations issued after Run has returned.
var ErrStopped = errors.New("engine stopped")

// Notifier receives session completions. Failures are logged and dropped.
type Notifier interface {
	Notify(ctx context.Context, c session.Completion) error
}

// Ticker delivers the one-second ticks while the timer runs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ *time.Ticker }

func (t realTicker) C() <-chan time.Time { return t.Ticker.C }

func newRealTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

// Options tune an Engine. Zero values select production behavior.
type Options struct {
	// AutoResume starts the next session as soon as one completes.
	AutoResume bool
	// NotifyTimeout bounds each Notifier call.
	NotifyTimeout time.Duration
	// TickInterval is one second in production.
	TickInterval time.Duration
	Now          func() time.Time
	NewTicker    func(time.Duration) Ticker
}

type command struct {
	fn   func()
	done chan struct{}
}

// Engine owns the timer state. Every operation is executed by the Run
// loop, so the state, the daily map and the ticker are never shared.
type Engine struct {
	mgr      *state.Manager
	notifier Notifier
	opts     Options

	cmds chan command
	done chan struct{}

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int

	// Owned by the Run goroutine.
	timer  session.TimerState
	daily  session.DailyCompletions
	ticker Ticker
}

// New creates an Engine backed by mgr. notifier may be nil.
func New(mgr *state.Manager, notifier Notifier, opts Options) *Engine {
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 10 * time.Second
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewTicker == nil {
		opts.NewTicker = newRealTicker
	}
	return &Engine{
		mgr:      mgr,
		notifier: notifier,
		opts:     opts,
		cmds:     make(chan command),
		done:     make(chan struct{}),
		subs:     make(map[int]chan Event),
	}
}

// Run loads the persisted state, catches up on time that passed while the
// daemon was not running, and serves operations until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	defer e.shutdown()

	now := e.opts.Now()
	timer, err := e.mgr.LoadTimerState(ctx, now)
	if err != nil {
		slog.Error("Failed to load timer state, starting fresh", "error", err)
	}
	daily, err := e.mgr.LoadDaily(ctx)
	if err != nil {
		slog.Error("Failed to load daily completions, starting empty", "error", err)
	}
	e.timer, e.daily = timer, daily

	if e.timer.IsRunning {
		e.resume(now)
	}

	slog.Info("Timer engine started",
		"running", e.timer.IsRunning,
		"work_session", e.timer.IsWorkSession,
		"remaining", e.timer.TimeRemaining)

	for {
		var tick <-chan time.Time
		if e.ticker != nil {
			tick = e.ticker.C()
		}

		select {
		case <-ctx.Done():
			slog.Info("Timer engine shutting down...")
			return nil
		case cmd := <-e.cmds:
			cmd.fn()
			close(cmd.done)
		case <-tick:
			e.tick()
		}
	}
}

// resume restarts a timer that was running when the daemon last stopped.
func (e *Engine) resume(now time.Time) {
	elapsed, exhausted := e.timer.Reconcile(now)
	slog.Info("Resuming running timer", "elapsed_seconds", elapsed, "remaining", e.timer.TimeRemaining)
	if exhausted {
		e.complete(now)
		return
	}
	e.startTicker()
	e.checkpoint()
}

func (e *Engine) shutdown() {
	e.stopTicker()
	close(e.done)

	e.subMu.Lock()
	defer e.subMu.Unlock()
	for id, ch := range e.subs {
		close(ch)
		delete(e.subs, id)
	}
}

// do runs fn on the Run goroutine and waits for it to finish.
func (e *Engine) do(ctx context.Context, fn func()) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case e.cmds <- cmd:
	case <-e.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-cmd.done
	return nil
}

// Start begins ticking. Positive durations replace the configured ones.
// Starting a running timer does nothing.
func (e *Engine) Start(ctx context.Context, work, brk int) error {
	return e.do(ctx, func() {
		if !e.timer.Start(work, brk, e.opts.Now()) {
			return
		}
		e.startTicker()
		e.checkpoint()
	})
}

// Pause stops a running timer.
func (e *Engine) Pause(ctx context.Context) error {
	return e.do(ctx, func() {
		if !e.timer.Pause(e.opts.Now()) {
			return
		}
		e.stopTicker()
		e.checkpoint()
	})
}

// Reset stops the timer and restores the current session's full duration.
func (e *Engine) Reset(ctx context.Context) error {
	return e.do(ctx, func() {
		e.stopTicker()
		e.timer.Reset(e.opts.Now())
		e.checkpoint()
	})
}

// UpdateSettings changes the configured durations. Only an idle timer is
// re-based onto the new duration.
func (e *Engine) UpdateSettings(ctx context.Context, work, brk int) error {
	return e.do(ctx, func() {
		e.timer.ApplySettings(work, brk, e.opts.Now())
		e.checkpoint()
	})
}

// ToggleSession switches between work and break while idle.
func (e *Engine) ToggleSession(ctx context.Context, isWork bool) error {
	return e.do(ctx, func() {
		if !e.timer.Toggle(isWork, e.opts.Now()) {
			slog.Debug("Ignoring session toggle while running")
		}
		e.checkpoint()
	})
}

// ResetStats clears the lifetime counters and the daily map.
func (e *Engine) ResetStats(ctx context.Context) error {
	return e.do(ctx, func() {
		e.timer.ResetStats(e.daily, e.opts.Now())
		e.checkpoint()
		e.checkpointDaily()
	})
}

// Reconcile charges a running timer for wall-clock time the ticker missed,
// for example while the host was suspended.
func (e *Engine) Reconcile(ctx context.Context) error {
	return e.do(ctx, func() {
		now := e.opts.Now()
		elapsed, exhausted := e.timer.Reconcile(now)
		if !e.timer.IsRunning {
			return
		}
		if elapsed > 1 {
			slog.Info("Caught up on missed time", "elapsed_seconds", elapsed, "remaining", e.timer.TimeRemaining)
		}
		if exhausted {
			e.complete(now)
			return
		}
		e.checkpoint()
	})
}

// State returns a snapshot of the timer.
func (e *Engine) State(ctx context.Context) (session.TimerState, error) {
	var snapshot session.TimerState
	err := e.do(ctx, func() { snapshot = e.timer })
	return snapshot, err
}

// History returns a copy of the daily completion map.
func (e *Engine) History(ctx context.Context) (session.DailyCompletions, error) {
	var snapshot session.DailyCompletions
	err := e.do(ctx, func() { snapshot = e.daily.Clone() })
	return snapshot, err
}

func (e *Engine) tick() {
	now := e.opts.Now()
	if e.timer.Tick(now) {
		e.complete(now)
		return
	}
	e.checkpoint()
}

func (e *Engine) complete(now time.Time) {
	e.stopTicker()
	c := e.timer.Complete(e.daily, now)
	e.checkpoint()
	if c.WasWorkSession {
		e.checkpointDaily()
	}

	slog.Info("Session completed",
		"work_session", c.WasWorkSession,
		"sessions_done", e.timer.SessionsDone,
		"today", c.TotalToday)

	e.publish(Event{Type: EventSessionCompleted, Completion: c, State: e.timer})
	e.notify(c)

	if e.opts.AutoResume && e.timer.Start(0, 0, now) {
		e.startTicker()
		e.checkpoint()
	}
}

// startTicker creates the ticker unless one already exists.
func (e *Engine) startTicker() {
	if e.ticker != nil {
		return
	}
	e.ticker = e.opts.NewTicker(e.opts.TickInterval)
}

func (e *Engine) stopTicker() {
	if e.ticker == nil {
		return
	}
	e.ticker.Stop()
	e.ticker = nil
}

func (e *Engine) checkpoint() {
	// Failures are logged by the manager; the in-memory state stays
	// authoritative and the next checkpoint supersedes this one.
	_ = e.mgr.SaveTimerState(context.Background(), e.timer)
}

func (e *Engine) checkpointDaily() {
	_ = e.mgr.SaveDaily(context.Background(), e.daily)
}

func (e *Engine) notify(c session.Completion) {
	if e.notifier == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Notifier panicked", "panic", fmt.Sprint(r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), e.opts.NotifyTimeout)
		defer cancel()
		if err := e.notifier.Notify(ctx, c); err != nil {
			slog.Warn("Failed to deliver completion notice", "error", err)
		}
	}()
}
