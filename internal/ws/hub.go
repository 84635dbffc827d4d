package ws

import (
	"sync"

	"taskpad/internal/logger"
)

// Hub tracks live sessions so shutdown can close them all.
type Hub struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[*Session]struct{})}
}

func (h *Hub) add(s *Session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	n := len(h.sessions)
	h.mu.Unlock()
	logger.Debug("ws session opened", "email", s.identity.Email, "sessions", n)
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s)
	n := len(h.sessions)
	h.mu.Unlock()
	logger.Debug("ws session closed", "email", s.identity.Email, "sessions", n)
}

// CloseAll force-closes every connection; read pumps then unwind and tear
// down their subscriptions.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		_ = s.conn.Close()
	}
}
