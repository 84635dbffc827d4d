// Package store holds the in-process task snapshot for one authenticated
// identity. It is a read-through cache: mutations are forwarded to the
// repository and the local state only changes when the subscription pushes
// the next full snapshot.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"taskpad/internal/domain"
)

var ErrNotAuthenticated = errors.New("no authenticated identity")

// Repository is the consumed contract of the remote task store. Watch
// pushes full replacement snapshots ordered by title ascending until ctx
// is cancelled; the first snapshot arrives shortly after the call.
type Repository interface {
	Watch(ctx context.Context, owner string) (<-chan []domain.Task, error)
	Create(ctx context.Context, owner string, t domain.Task) (string, error)
	Update(ctx context.Context, owner, id string, patch domain.TaskPatch) error
	Delete(ctx context.Context, owner, id string) error
}

// Listener receives every snapshot replacement, including the clear on
// logout. The slice must not be retained across calls.
type Listener func(tasks []domain.Task)

type Store struct {
	repo Repository
	now  func() time.Time

	mu        sync.RWMutex
	identity  domain.Identity
	snapshot  []domain.Task
	gen       uint64 // bumped on every (re)subscribe; stale watchers check it
	cancel    context.CancelFunc
	listeners map[int]Listener
	nextID    int
}

func New(repo Repository) *Store {
	return &Store{
		repo:      repo,
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
}

// OnChange registers a snapshot listener and returns its cancellation
// handle.
func (s *Store) OnChange(l Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Subscribe switches the store to the given identity. Any previous
// subscription is torn down first and the snapshot cleared, so a consumer
// never observes tasks across an identity change. An unauthenticated
// identity leaves the store empty with no subscription.
func (s *Store) Subscribe(ctx context.Context, identity domain.Identity) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	gen := s.gen
	s.identity = identity
	s.snapshot = nil

	if !identity.Authenticated() {
		s.mu.Unlock()
		s.notify(gen, nil)
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	ch, err := s.repo.Watch(watchCtx, identity.Email)
	if err != nil {
		cancel()
		s.mu.Unlock()
		return err
	}
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		for snap := range ch {
			s.replace(gen, snap)
		}
	}()
	return nil
}

// Close tears down the active subscription and clears the snapshot.
func (s *Store) Close() {
	s.Subscribe(context.Background(), domain.Identity{})
}

func (s *Store) replace(gen uint64, snap []domain.Task) {
	s.mu.Lock()
	if gen != s.gen {
		// push from a torn-down subscription
		s.mu.Unlock()
		return
	}
	s.snapshot = snap
	s.mu.Unlock()
	s.notify(gen, snap)
}

func (s *Store) notify(gen uint64, snap []domain.Task) {
	s.mu.RLock()
	if gen != s.gen {
		s.mu.RUnlock()
		return
	}
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.RUnlock()

	for _, l := range ls {
		l(snap)
	}
}

// Snapshot returns a copy of the latest pushed task list.
func (s *Store) Snapshot() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// Identity returns the identity of the active subscription.
func (s *Store) Identity() domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Add validates and forwards a new task to the repository. The start
// instant is stamped here, once, when a duration is supplied. The task is
// not appended locally; it appears with the next pushed snapshot.
func (s *Store) Add(ctx context.Context, t domain.Task) error {
	s.mu.RLock()
	identity := s.identity
	s.mu.RUnlock()

	if !identity.Authenticated() {
		return ErrNotAuthenticated
	}
	if t.Status == "" {
		t.Status = domain.StatusOpen
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if t.TimerSeconds != nil && t.TimerStartedAt == nil {
		start := s.now().UnixMilli()
		t.TimerStartedAt = &start
	}
	_, err := s.repo.Create(ctx, identity.Email, t)
	return err
}

// Update forwards a partial patch. There is no optimistic merge.
func (s *Store) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	s.mu.RLock()
	identity := s.identity
	s.mu.RUnlock()

	if !identity.Authenticated() {
		return ErrNotAuthenticated
	}
	if patch.Title != nil {
		if t := (domain.Task{Title: *patch.Title, Status: domain.StatusOpen}); t.Validate() != nil {
			return domain.ErrEmptyTitle
		}
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return errors.New("invalid task status")
	}
	return s.repo.Update(ctx, identity.Email, id, patch)
}

// Delete forwards a delete-by-id request.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.RLock()
	identity := s.identity
	s.mu.RUnlock()

	if !identity.Authenticated() {
		return ErrNotAuthenticated
	}
	return s.repo.Delete(ctx, identity.Email, id)
}

// ToggleStatus reads the task's status from the latest snapshot and issues
// a patch with the opposite value. An id missing from the snapshot is a
// silent no-op; the reference is stale.
func (s *Store) ToggleStatus(ctx context.Context, id string) error {
	s.mu.RLock()
	identity := s.identity
	var current domain.Status
	found := false
	for _, t := range s.snapshot {
		if t.ID == id {
			current = t.Status
			found = true
			break
		}
	}
	s.mu.RUnlock()

	if !identity.Authenticated() {
		return ErrNotAuthenticated
	}
	if !found {
		return nil
	}
	next := current.Opposite()
	return s.repo.Update(ctx, identity.Email, id, domain.TaskPatch{Status: &next})
}
