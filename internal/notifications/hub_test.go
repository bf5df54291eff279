package notifications

import (
	"testing"
	"time"
)

// TestHubPublishSubscribe проверяет доставку событий подписчику.
func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe("a@example.com")
	defer unsubscribe()

	hub.Publish("A@example.com", Event{Type: EventExpensesChanged})

	select {
	case event := <-ch:
		if event.Type != EventExpensesChanged {
			t.Fatalf("expected event type %s, got %s", EventExpensesChanged, event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be set")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
}

// TestHubIsolatesUsers проверяет, что события не уходят чужим подписчикам.
func TestHubIsolatesUsers(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe("a@example.com")
	defer unsubscribe()

	hub.Publish("b@example.com", Event{Type: EventBudgetsChanged})

	select {
	case event := <-ch:
		t.Fatalf("unexpected event %s", event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestHubUnsubscribe проверяет закрытие канала после отписки.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe("a@example.com")
	if got := hub.Subscribers("a@example.com"); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}
	unsubscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
	if got := hub.Subscribers("a@example.com"); got != 0 {
		t.Fatalf("expected 0 subscribers, got %d", got)
	}
}

// TestHubDropsWhenBufferFull проверяет, что Publish не блокируется на медленном подписчике.
func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()

	_, unsubscribe := hub.Subscribe("a@example.com")
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			hub.Publish("a@example.com", Event{Type: EventExpensesChanged})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on full buffer")
	}
}
