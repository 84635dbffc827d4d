package ws

const (
	// client → server
	MsgAdd    = "add"
	MsgUpdate = "update"
	MsgDelete = "delete"
	MsgToggle = "toggle"
	MsgFilter = "filter"
	MsgSearch = "search"

	// server → client
	MsgSnapshot = "snapshot"
	MsgTick     = "tick"
	MsgError    = "error"
)
