package session

import "time"

const (
	DefaultWorkDuration  = 20 * 60
	DefaultBreakDuration = 5 * 60
)

// TimerState is the canonical state of the pomodoro timer. Durations and
// counters are in whole seconds.
type TimerState struct {
	IsRunning      bool      `json:"isRunning"`
	IsWorkSession  bool      `json:"isWorkSession"`
	TimeRemaining  int       `json:"timeRemaining"`
	WorkDuration   int       `json:"workDuration"`
	BreakDuration  int       `json:"breakDuration"`
	SessionsDone   int       `json:"sessionsDone"`
	TotalWorkTime  int       `json:"totalWorkTime"`
	TotalBreakTime int       `json:"totalBreakTime"`
	LastUpdateTime time.Time `json:"lastUpdateTime"`
}

// Completion describes a session that just ended.
type Completion struct {
	WasWorkSession bool
	// TotalToday is today's completed work sessions after accounting.
	TotalToday int
	At         time.Time
}

// NewTimerState returns an idle work session with the given durations.
// Non-positive durations fall back to the package defaults.
func NewTimerState(work, brk int, now time.Time) TimerState {
	if work <= 0 {
		work = DefaultWorkDuration
	}
	if brk <= 0 {
		brk = DefaultBreakDuration
	}
	return TimerState{
		IsWorkSession:  true,
		TimeRemaining:  work,
		WorkDuration:   work,
		BreakDuration:  brk,
		LastUpdateTime: stamp(now),
	}
}

// stamp drops the monotonic reading and location so persisted and live
// values compare equal.
func stamp(t time.Time) time.Time {
	return t.Round(0).UTC()
}
