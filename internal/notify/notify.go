package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SoarinFerret/pomodoro/internal/session"
)

// Notifier announces a session completion.
type Notifier interface {
	Notify(ctx context.Context, c session.Completion) error
}

// Message is the short announcement for c, also used for speech.
func Message(c session.Completion) string {
	if c.WasWorkSession {
		return "Time for a break!"
	}
	return "Break is over, time to work!"
}

// Title is the headline of the desktop alert.
func Title(c session.Completion) string {
	if c.WasWorkSession {
		return "Break Time!"
	}
	return "Work Time!"
}

// Body is the desktop alert text: the message and today's count.
func Body(c session.Completion) string {
	return fmt.Sprintf("%s\nTotal Complete: %d", Message(c), c.TotalToday)
}

type entry struct {
	name     string
	notifier Notifier
}

// Multi fans a completion out to every registered notifier in order. A
// failing or panicking notifier is logged and skipped; Multi itself never
// returns an error.
type Multi struct {
	entries []entry
}

// Add registers n under name, used in log lines.
func (m *Multi) Add(name string, n Notifier) {
	m.entries = append(m.entries, entry{name: name, notifier: n})
}

// Len reports how many notifiers are registered.
func (m *Multi) Len() int { return len(m.entries) }

func (m *Multi) Notify(ctx context.Context, c session.Completion) error {
	for _, e := range m.entries {
		if err := safeNotify(ctx, e.notifier, c); err != nil {
			slog.Warn("Notifier failed", "notifier", e.name, "error", err)
			continue
		}
		slog.Debug("Notifier delivered", "notifier", e.name)
	}
	return nil
}

func safeNotify(ctx context.Context, n Notifier, c session.Completion) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return n.Notify(ctx, c)
}
