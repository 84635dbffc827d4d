package repository

import (
	"context"
	"sync"

	redis "github.com/redis/go-redis/v9"

	"taskpad/internal/logger"
)

const changeChannel = "taskpad:task_changes"

// Notifier fans change events out to the watchers of an owner's partition.
// Events are edge-triggered and coalesced: a watcher that is already
// flagged dirty does not queue a second wakeup. With a Redis client
// configured, events are also published cross-instance over pub/sub;
// without one, delivery is single-instance only.
type Notifier struct {
	mu   sync.Mutex
	subs map[string]map[int]chan struct{}
	next int
	rdb  *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{
		subs: make(map[string]map[int]chan struct{}),
		rdb:  rdb,
	}
}

// Run bridges remote change events from Redis into the local fan-out.
// It blocks until ctx is cancelled; without a Redis client it returns
// immediately.
func (n *Notifier) Run(ctx context.Context) {
	if n.rdb == nil {
		return
	}
	sub := n.rdb.Subscribe(ctx, changeChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			n.wake(msg.Payload)
		}
	}
}

// Notify marks owner's partition as changed. Local watchers wake up
// directly; remote instances get the event over pub/sub.
func (n *Notifier) Notify(ctx context.Context, owner string) {
	n.wake(owner)
	if n.rdb != nil {
		if err := n.rdb.Publish(ctx, changeChannel, owner).Err(); err != nil {
			logger.Warn("change publish failed", "owner", owner, "error", err)
		}
	}
}

func (n *Notifier) wake(owner string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs[owner] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscription is a handle to one watcher's wakeup channel.
type Subscription struct {
	C      <-chan struct{}
	cancel func()
}

func (s *Subscription) Cancel() { s.cancel() }

// Subscribe registers a wakeup channel for owner's partition.
func (n *Notifier) Subscribe(owner string) *Subscription {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	id := n.next
	n.next++
	if n.subs[owner] == nil {
		n.subs[owner] = make(map[int]chan struct{})
	}
	n.subs[owner][id] = ch
	n.mu.Unlock()

	return &Subscription{
		C: ch,
		cancel: func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs[owner], id)
			if len(n.subs[owner]) == 0 {
				delete(n.subs, owner)
			}
		},
	}
}
