package session

import (
	"fmt"
	"maps"
	"time"
)

// DateLayout is the key format of DailyCompletions.
const DateLayout = "2006-01-02"

// DailyCompletions counts completed work sessions per local calendar day.
type DailyCompletions map[string]int

// DateKey formats t in the host local time zone.
func DateKey(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// Today returns the count recorded for the day containing now.
func (d DailyCompletions) Today(now time.Time) int {
	return d[DateKey(now)]
}

// Increment adds one completion to the day containing now and returns the
// new count for that day.
func (d DailyCompletions) Increment(now time.Time) int {
	key := DateKey(now)
	d[key]++
	return d[key]
}

// Clear removes every entry.
func (d DailyCompletions) Clear() {
	clear(d)
}

// Clone returns an independent copy; a nil map clones to an empty one.
func (d DailyCompletions) Clone() DailyCompletions {
	out := make(DailyCompletions, len(d))
	maps.Copy(out, d)
	return out
}

// Month returns the counts for every day of the given month, indexed from
// day 1 at position 0.
func (d DailyCompletions) Month(year int, month time.Month) []int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	days := first.AddDate(0, 1, -1).Day()
	counts := make([]int, days)
	for i := range counts {
		counts[i] = d[fmt.Sprintf("%04d-%02d-%02d", year, int(month), i+1)]
	}
	return counts
}

// Total sums every entry.
func (d DailyCompletions) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}
