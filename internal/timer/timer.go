// Package timer computes countdown state for tasks with a configured
// duration. Everything here is derived display state: reaching zero never
// mutates a task or talks to the repository. Hosts re-evaluate once per
// second against a fresh "now".
package timer

import (
	"fmt"
	"time"

	"taskpad/internal/domain"
)

// Remaining returns the seconds left on the task's timer, floored at zero.
// ok is false when the task has no duration or no start instant.
func Remaining(t domain.Task, now time.Time) (int64, bool) {
	if t.TimerSeconds == nil || t.TimerStartedAt == nil {
		return 0, false
	}
	// floor, not truncate: a now before the start instant rounds down
	ms := now.UnixMilli() - *t.TimerStartedAt
	elapsed := ms / 1000
	if ms < 0 && ms%1000 != 0 {
		elapsed--
	}
	left := *t.TimerSeconds - elapsed
	if left < 0 {
		left = 0
	}
	return left, true
}

// IsExpired reports whether a configured timer has run out.
func IsExpired(t domain.Task, now time.Time) bool {
	left, ok := Remaining(t, now)
	return ok && left == 0
}

// Format renders seconds as zero-padded mm:ss. Minutes past 59 keep
// counting rather than rolling over to hours, so 3660 renders as "61:00".
func Format(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
