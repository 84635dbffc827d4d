package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"taskpad/internal/domain"
	"taskpad/internal/logger"
	"taskpad/internal/pipeline"
	"taskpad/internal/store"
	"taskpad/internal/timer"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	tickPeriod = time.Second
)

// Session serves one authenticated connection. It owns a task store
// subscription scoped to its identity and a one-second ticker that
// annotates visible timed tasks with their countdown state. Teardown of
// both is tied to the connection's lifetime.
type Session struct {
	identity domain.Identity
	conn     *websocket.Conn
	store    *store.Store
	hub      *Hub

	send chan []byte
	done chan struct{}

	mu    sync.RWMutex // guards mode and query
	mode  pipeline.FilterMode
	query string
}

func (s *Session) view() (pipeline.FilterMode, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode, s.query
}

func NewSession(identity domain.Identity, conn *websocket.Conn, st *store.Store, hub *Hub) *Session {
	return &Session{
		identity: identity,
		conn:     conn,
		store:    st,
		hub:      hub,
		send:     make(chan []byte, 64),
		done:     make(chan struct{}),
		mode:     pipeline.FilterAll,
	}
}

// Run drives the session until the connection drops or ctx is cancelled.
func (s *Session) Run(ctx context.Context) {
	s.hub.add(s)
	defer s.hub.remove(s)
	defer s.store.Close()

	unlisten := s.store.OnChange(func([]domain.Task) {
		s.pushSnapshot()
	})
	defer unlisten()

	if err := s.store.Subscribe(ctx, s.identity); err != nil {
		logger.Error("subscription failed", "email", s.identity.Email, "error", err)
		s.enqueue(marshalError("could not subscribe to task updates"))
	}

	go s.writePump()
	go s.tickLoop(ctx)

	s.readPump(ctx)
	close(s.done)
}

func (s *Session) enqueue(msg []byte) {
	select {
	case s.send <- msg:
	default:
		// slow consumer; drop rather than block the push path
		logger.Warn("ws send buffer full, dropping message", "email", s.identity.Email)
	}
}

// pushSnapshot sends the derived visible list: status filter first, then
// search within the filtered subset.
func (s *Session) pushSnapshot() {
	mode, query := s.view()
	visible := pipeline.Visible(s.store.Snapshot(), mode, query)
	if visible == nil {
		visible = []domain.Task{}
	}
	b, err := json.Marshal(SnapshotPayload{Type: MsgSnapshot, Tasks: visible})
	if err != nil {
		logger.Error("snapshot marshal failed", "error", err)
		return
	}
	s.enqueue(b)
}

// tickLoop re-evaluates countdowns for the visible tasks once per second.
// Ticks are derived display state only; nothing is written back.
func (s *Session) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			mode, query := s.view()
			visible := pipeline.Visible(s.store.Snapshot(), mode, query)

			var entries []TimerEntry
			for _, t := range visible {
				left, ok := timer.Remaining(t, now)
				if !ok {
					continue
				}
				entries = append(entries, TimerEntry{
					ID:        t.ID,
					Remaining: left,
					Display:   timer.Format(left),
					Expired:   timer.IsExpired(t, now),
				})
			}
			if len(entries) == 0 {
				continue
			}
			b, err := json.Marshal(TickPayload{Type: MsgTick, Timers: entries})
			if err != nil {
				continue
			}
			s.enqueue(b)
		}
	}
}

func (s *Session) readPump(ctx context.Context) {
	defer s.conn.Close()

	s.conn.SetReadLimit(8192)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		s.handleMessage(ctx, raw)
	}
}

func (s *Session) handleMessage(ctx context.Context, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.enqueue(marshalError("malformed message"))
		return
	}

	switch msg.Type {
	case MsgAdd:
		if msg.Task == nil {
			s.enqueue(marshalError("add requires a task"))
			return
		}
		if err := s.store.Add(ctx, *msg.Task); err != nil {
			s.enqueue(marshalError(err.Error()))
		}

	case MsgUpdate:
		if msg.ID == "" || msg.Patch == nil {
			s.enqueue(marshalError("update requires id and patch"))
			return
		}
		if err := s.store.Update(ctx, msg.ID, *msg.Patch); err != nil {
			s.enqueue(marshalError(err.Error()))
		}

	case MsgDelete:
		if msg.ID == "" {
			s.enqueue(marshalError("delete requires id"))
			return
		}
		if err := s.store.Delete(ctx, msg.ID); err != nil {
			s.enqueue(marshalError(err.Error()))
		}

	case MsgToggle:
		if msg.ID == "" {
			s.enqueue(marshalError("toggle requires id"))
			return
		}
		if err := s.store.ToggleStatus(ctx, msg.ID); err != nil {
			s.enqueue(marshalError(err.Error()))
		}

	case MsgFilter:
		mode, err := pipeline.ParseFilterMode(msg.Mode)
		if err != nil {
			s.enqueue(marshalError(err.Error()))
			return
		}
		s.mu.Lock()
		s.mode = mode
		s.mu.Unlock()
		s.pushSnapshot()

	case MsgSearch:
		s.mu.Lock()
		s.query = msg.Query
		s.mu.Unlock()
		s.pushSnapshot()

	default:
		s.enqueue(marshalError("unknown message type"))
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-s.done:
			return
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
