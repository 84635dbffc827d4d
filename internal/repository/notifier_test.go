package repository

import (
	"context"
	"testing"
	"time"
)

func TestNotifierWakesSubscribers(t *testing.T) {
	n := NewNotifier(nil)

	a := n.Subscribe("a@example.com")
	defer a.Cancel()
	b := n.Subscribe("b@example.com")
	defer b.Cancel()

	n.Notify(context.Background(), "a@example.com")

	select {
	case <-a.C:
	case <-time.After(time.Second):
		t.Fatal("subscriber for a@ was not woken")
	}

	select {
	case <-b.C:
		t.Fatal("subscriber for b@ woken by a@'s change")
	default:
	}
}

func TestNotifierCoalescesBursts(t *testing.T) {
	n := NewNotifier(nil)

	sub := n.Subscribe("a@example.com")
	defer sub.Cancel()

	for i := 0; i < 10; i++ {
		n.Notify(context.Background(), "a@example.com")
	}

	<-sub.C
	select {
	case <-sub.C:
		// a second pending wakeup is fine, a third is not possible with
		// a one-slot buffer; drain and verify emptiness
		select {
		case <-sub.C:
			t.Fatal("burst was not coalesced")
		default:
		}
	default:
	}
}

func TestNotifierCancelStopsDelivery(t *testing.T) {
	n := NewNotifier(nil)

	sub := n.Subscribe("a@example.com")
	sub.Cancel()

	n.Notify(context.Background(), "a@example.com")

	select {
	case <-sub.C:
		t.Fatal("cancelled subscription still received a wakeup")
	default:
	}
}
