package domain

import (
	"errors"
	"strings"
)

var ErrEmptyTitle = errors.New("task title must not be empty")

type Status string

const (
	StatusOpen     Status = "open"
	StatusComplete Status = "complete"
)

func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusComplete
}

// Opposite returns the other status value. Used by toggle.
func (s Status) Opposite() Status {
	if s == StatusOpen {
		return StatusComplete
	}
	return StatusOpen
}

// Task is a single to-do item in one user's partition. The id is assigned
// by the repository on creation and never changes. TimerSeconds and
// TimerStartedAt are either both set or both absent: the start instant is
// stamped once, when a task with a duration is created.
type Task struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Status         Status `json:"status"`
	TimerSeconds   *int64 `json:"timer,omitempty"`       // duration in seconds
	TimerStartedAt *int64 `json:"timer_start,omitempty"` // epoch millis
}

// Validate checks the client-side creation rules.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Status.Valid() {
		return errors.New("invalid task status")
	}
	if t.TimerSeconds != nil && *t.TimerSeconds < 0 {
		return errors.New("timer duration must not be negative")
	}
	return nil
}

// TaskPatch is a partial update. Nil fields are left unchanged.
// ClearTimer removes both timer fields; setting TimerSeconds alone changes
// the duration but keeps the original start instant.
type TaskPatch struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Status       *Status `json:"status,omitempty"`
	TimerSeconds *int64  `json:"timer,omitempty"`
	ClearTimer   bool    `json:"clear_timer,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.TimerSeconds == nil && !p.ClearTimer
}
