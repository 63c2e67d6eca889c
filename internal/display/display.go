// Package display renders timer snapshots and completion history for
// terminal clients.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/SoarinFerret/pomodoro/internal/session"
)

var (
	workColor  = lipgloss.Color("#FF7F50")
	breakColor = lipgloss.Color("#4CAF50")

	labelStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// Clock formats seconds as MM:SS. Minutes are not wrapped at an hour.
func Clock(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Total formats a cumulative duration as "Xh Ym".
func Total(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
}

// Label names the session kind.
func Label(isWork bool) string {
	if isWork {
		return "Work"
	}
	return "Break"
}

func sessionColor(isWork bool) lipgloss.Color {
	if isWork {
		return workColor
	}
	return breakColor
}

// Status renders a multi-line summary of s.
func Status(s session.TimerState) string {
	kind := lipgloss.NewStyle().Bold(true).Foreground(sessionColor(s.IsWorkSession))

	state := "paused"
	if s.IsRunning {
		state = "running"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s\n", kind.Render(Label(s.IsWorkSession)), Clock(s.TimeRemaining), dimStyle.Render(state))
	fmt.Fprintf(&b, "%s\n", ProgressBar(s.Progress(), 30))
	fmt.Fprintf(&b, "%s %d / %d min\n", labelStyle.Render("Durations:"), s.WorkDuration/60, s.BreakDuration/60)
	fmt.Fprintf(&b, "%s %d\n", labelStyle.Render("Pomodoros:"), s.SessionsDone)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Work time:"), Total(s.TotalWorkTime))
	fmt.Fprintf(&b, "%s %s", labelStyle.Render("Break time:"), Total(s.TotalBreakTime))
	return b.String()
}

// Line renders s on a single line, for watch output.
func Line(s session.TimerState) string {
	state := "paused"
	if s.IsRunning {
		state = "running"
	}
	kind := lipgloss.NewStyle().Foreground(sessionColor(s.IsWorkSession))
	return fmt.Sprintf("%s %s %s", kind.Render(fmt.Sprintf("%-5s", Label(s.IsWorkSession))), Clock(s.TimeRemaining), state)
}

// ProgressBar draws fraction (0..1) as a bar width cells wide.
func ProgressBar(fraction float64, width int) string {
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction*float64(width) + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// heat picks a style for a day's completion count.
func heat(n int) lipgloss.Style {
	switch {
	case n == 0:
		return dimStyle
	case n < 3:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB199"))
	case n < 5:
		return lipgloss.NewStyle().Foreground(workColor)
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(workColor)
	}
}

// Calendar renders a Sunday-first month grid. Each cell shows the day and,
// when non-zero, the number of pomodoros completed that day.
func Calendar(year int, month time.Month, daily session.DailyCompletions, today time.Time) string {
	counts := daily.Month(year, month)
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	todayKey := session.DateKey(today)

	cell := lipgloss.NewStyle().Width(6)

	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("%s %d", month, year)))
	b.WriteString("\n")
	for _, wd := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		b.WriteString(cell.Render(wd))
	}
	b.WriteString("\n")

	col := int(first.Weekday())
	b.WriteString(strings.Repeat(" ", col*6))

	total := 0
	for i, n := range counts {
		day := i + 1
		total += n

		text := fmt.Sprintf("%2d", day)
		if n > 0 {
			text += fmt.Sprintf(":%d", n)
		}
		style := heat(n)
		if session.DateKey(time.Date(year, month, day, 12, 0, 0, 0, time.Local)) == todayKey {
			style = style.Underline(true)
		}
		b.WriteString(cell.Render(style.Render(text)))

		col++
		if col == 7 && day != len(counts) {
			b.WriteString("\n")
			col = 0
		}
	}
	fmt.Fprintf(&b, "\n%s %d", labelStyle.Render("Month total:"), total)
	return b.String()
}
