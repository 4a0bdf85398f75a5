package engine

import "testing"

func TestHubDeliversToEverySubscriber(t *testing.T) {
	h := NewHub(4)
	first, second := h.Subscribe(), h.Subscribe()

	if n := h.Publish(Outgoing{To: "a", Event: StartGameEvent{}}); n != 2 {
		t.Fatalf("delivered to %d subscribers, want 2", n)
	}
	for i, sub := range []*Subscription{first, second} {
		msg := <-sub.C
		if msg.To != "a" {
			t.Fatalf("subscriber %d got %+v", i, msg)
		}
	}
}

func TestHubDropsForFullSubscriber(t *testing.T) {
	h := NewHub(1)
	slow := h.Subscribe()

	h.Publish(Outgoing{To: "a", Event: StartGameEvent{}})
	if n := h.Publish(Outgoing{To: "a", Event: AuthenticatedEvent{}}); n != 0 {
		t.Fatalf("publish to a full buffer should not deliver, got %d", n)
	}
	if h.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", h.Dropped())
	}
	if msg := <-slow.C; msg.Event.EventType() != "StartGame" {
		t.Fatalf("expected the first message to survive, got %s", msg.Event.EventType())
	}
}

func TestHubCloseEndsSubscriptions(t *testing.T) {
	h := NewHub(4)
	sub := h.Subscribe()
	h.Close()
	h.Close()

	if _, ok := <-sub.C; ok {
		t.Fatalf("expected closed channel")
	}
	if h.Publish(Outgoing{To: "a", Event: StartGameEvent{}}) != 0 {
		t.Fatalf("publish after close delivered")
	}
	late := h.Subscribe()
	if _, ok := <-late.C; ok {
		t.Fatalf("subscription to a closed hub should be closed")
	}
	sub.Close()
}

func TestSubscriptionClose(t *testing.T) {
	h := NewHub(4)
	sub := h.Subscribe()
	sub.Close()
	sub.Close()
	if h.Subscribers() != 0 {
		t.Fatalf("subscribers = %d, want 0", h.Subscribers())
	}
	if _, ok := <-sub.C; ok {
		t.Fatalf("expected closed channel")
	}
}
