package ws

import (
	"encoding/json"

	"taskpad/internal/domain"
)

// client → server
type ClientMessage struct {
	Type  string            `json:"type"`
	Task  *domain.Task      `json:"task,omitempty"`  // add
	ID    string            `json:"id,omitempty"`    // update/delete/toggle
	Patch *domain.TaskPatch `json:"patch,omitempty"` // update
	Mode  string            `json:"mode,omitempty"`  // filter
	Query string            `json:"query,omitempty"` // search
}

// server → client
type SnapshotPayload struct {
	Type  string        `json:"type"`
	Tasks []domain.Task `json:"tasks"`
}

type TimerEntry struct {
	ID        string `json:"id"`
	Remaining int64  `json:"remaining"`
	Display   string `json:"display"`
	Expired   bool   `json:"expired"`
}

type TickPayload struct {
	Type   string       `json:"type"`
	Timers []TimerEntry `json:"timers"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func marshalError(msg string) []byte {
	b, _ := json.Marshal(ErrorPayload{Type: MsgError, Message: msg})
	return b
}
