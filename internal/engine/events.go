package engine

import "github.com/SoarinFerret/pomodoro/internal/session"

// EventType defines the type of Engine event.
type EventType string

const (
	EventSessionCompleted EventType = "session_completed"
)

// Event is pushed to subscribers. State is the timer right after the event.
type Event struct {
	Type       EventType
	Completion session.Completion
	State      session.TimerState
}

// Subscribe registers an observer channel. Delivery is best-effort: when
// the buffer is full the event is dropped for that subscriber, which is
// expected to reconcile through State. The returned func unsubscribes and
// closes the channel; the channel is also closed when Run returns.
func (e *Engine) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	select {
	case <-e.done:
		close(ch)
	default:
		e.subs[id] = ch
	}
	e.subMu.Unlock()

	return ch, func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		if sub, ok := e.subs[id]; ok {
			close(sub)
			delete(e.subs, id)
		}
	}
}

func (e *Engine) publish(event Event) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
