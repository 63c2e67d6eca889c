package session

import "time"

// CurrentDuration returns the configured length of the active session kind.
func (s *TimerState) CurrentDuration() int {
	if s.IsWorkSession {
		return s.WorkDuration
	}
	return s.BreakDuration
}

// Normalize repairs a state read from storage: missing or non-positive
// durations take the given defaults, counters are clamped at zero and
// TimeRemaining is clamped into [0, CurrentDuration].
func (s *TimerState) Normalize(work, brk int) {
	if work <= 0 {
		work = DefaultWorkDuration
	}
	if brk <= 0 {
		brk = DefaultBreakDuration
	}
	if s.WorkDuration <= 0 {
		s.WorkDuration = work
	}
	if s.BreakDuration <= 0 {
		s.BreakDuration = brk
	}
	s.SessionsDone = max(s.SessionsDone, 0)
	s.TotalWorkTime = max(s.TotalWorkTime, 0)
	s.TotalBreakTime = max(s.TotalBreakTime, 0)
	s.TimeRemaining = min(max(s.TimeRemaining, 0), s.CurrentDuration())
	if !s.LastUpdateTime.IsZero() {
		s.LastUpdateTime = stamp(s.LastUpdateTime)
	}
}

// Start moves an idle timer to running. Positive overrides replace the
// configured durations: a session that has not counted down yet is re-based
// onto the new length, a partly elapsed one is clamped to it. It reports
// false when the timer was already running.
func (s *TimerState) Start(work, brk int, now time.Time) bool {
	if s.IsRunning {
		return false
	}
	fresh := s.TimeRemaining >= s.CurrentDuration()
	s.setDurations(work, brk)
	if fresh {
		s.TimeRemaining = s.CurrentDuration()
	} else {
		s.TimeRemaining = min(s.TimeRemaining, s.CurrentDuration())
	}
	s.IsRunning = true
	s.LastUpdateTime = stamp(now)
	return true
}

// Pause stops a running timer. It reports false when already idle.
func (s *TimerState) Pause(now time.Time) bool {
	if !s.IsRunning {
		return false
	}
	s.IsRunning = false
	s.LastUpdateTime = stamp(now)
	return true
}

// Reset stops the timer and restores the full duration of the current kind.
func (s *TimerState) Reset(now time.Time) {
	s.IsRunning = false
	s.TimeRemaining = s.CurrentDuration()
	s.LastUpdateTime = stamp(now)
}

// missedTickGap is the wall-clock gap since the last update above which a
// tick charges the whole gap instead of one second. Monotonic tickers stop
// while the host is suspended, so the first tick after resume can arrive
// long after the previous one.
const missedTickGap = 2 * time.Second

// Tick removes one second from a running timer, or the whole wall-clock gap
// when ticks were missed, and reports whether the session has run out.
func (s *TimerState) Tick(now time.Time) bool {
	if !s.IsRunning {
		return false
	}
	charge := 1
	if !s.LastUpdateTime.IsZero() {
		if gap := now.Sub(s.LastUpdateTime); gap >= missedTickGap {
			charge = int(gap / time.Second)
		}
	}
	s.TimeRemaining = max(s.TimeRemaining-charge, 0)
	s.LastUpdateTime = stamp(now)
	return s.TimeRemaining <= 0
}

// Complete ends the current session: the timer stops, totals and the
// daily map are credited, and the opposite session kind is loaded at its
// full duration.
func (s *TimerState) Complete(daily DailyCompletions, now time.Time) Completion {
	wasWork := s.IsWorkSession
	s.IsRunning = false

	c := Completion{WasWorkSession: wasWork, At: now}
	if wasWork {
		s.SessionsDone++
		s.TotalWorkTime += s.WorkDuration
		c.TotalToday = daily.Increment(now)
	} else {
		s.TotalBreakTime += s.BreakDuration
		c.TotalToday = daily.Today(now)
	}

	s.IsWorkSession = !wasWork
	s.TimeRemaining = s.CurrentDuration()
	s.LastUpdateTime = stamp(now)
	return c
}

// ApplySettings updates the configured durations, ignoring non-positive
// values. An idle timer is re-based onto the new duration; a running
// countdown is left alone.
func (s *TimerState) ApplySettings(work, brk int, now time.Time) {
	s.setDurations(work, brk)
	if !s.IsRunning {
		s.TimeRemaining = s.CurrentDuration()
	}
	s.LastUpdateTime = stamp(now)
}

// Toggle switches the session kind while idle and reports whether it did.
func (s *TimerState) Toggle(isWork bool, now time.Time) bool {
	if s.IsRunning {
		return false
	}
	s.IsWorkSession = isWork
	s.TimeRemaining = s.CurrentDuration()
	s.LastUpdateTime = stamp(now)
	return true
}

// ResetStats zeroes the lifetime counters and clears the daily map.
func (s *TimerState) ResetStats(daily DailyCompletions, now time.Time) {
	s.SessionsDone = 0
	s.TotalWorkTime = 0
	s.TotalBreakTime = 0
	daily.Clear()
	s.LastUpdateTime = stamp(now)
}

// Reconcile charges a running timer for the whole seconds that passed since
// LastUpdateTime, flooring TimeRemaining at zero. It returns the seconds
// charged and whether the session has run out. Idle timers are untouched.
func (s *TimerState) Reconcile(now time.Time) (int, bool) {
	if !s.IsRunning {
		return 0, false
	}
	elapsed := 0
	if !s.LastUpdateTime.IsZero() {
		elapsed = max(int(now.Sub(s.LastUpdateTime)/time.Second), 0)
	}
	s.TimeRemaining = max(s.TimeRemaining-elapsed, 0)
	s.LastUpdateTime = stamp(now)
	return elapsed, s.TimeRemaining == 0
}

// Progress returns the elapsed fraction of the current session in [0, 1].
func (s *TimerState) Progress() float64 {
	total := s.CurrentDuration()
	if total <= 0 {
		return 1
	}
	p := float64(total-s.TimeRemaining) / float64(total)
	return min(max(p, 0), 1)
}

func (s *TimerState) setDurations(work, brk int) {
	if work > 0 {
		s.WorkDuration = work
	}
	if brk > 0 {
		s.BreakDuration = brk
	}
}
