package listeners

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/mcdev12/quizrunner/go/internal/game/events"
)

func TestPublishInRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	var got []string
	for _, id := range []string{"c", "a", "b"} {
		r.Subscribe(id, func(events.Event) error {
			got = append(got, id)
			return nil
		})
	}

	r.Publish(events.Event{Type: events.TypeGameStarted})

	if want := []string{"c", "a", "b"}; !slices.Equal(got, want) {
		t.Errorf("delivery order = %v, want %v", got, want)
	}
}

func TestResubscribeKeepsPosition(t *testing.T) {
	r := NewRegistry()
	var got []string
	r.Subscribe("a", func(events.Event) error { got = append(got, "a1"); return nil })
	r.Subscribe("b", func(events.Event) error { got = append(got, "b"); return nil })
	r.Subscribe("a", func(events.Event) error { got = append(got, "a2"); return nil })

	r.Publish(events.Event{})

	if want := []string{"a2", "b"}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if r.Len() != 2 {
		t.Errorf("len = %d", r.Len())
	}
}

func TestUnsubscribe(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Subscribe("a", func(events.Event) error { calls++; return nil })

	if !r.Unsubscribe("a") {
		t.Fatal("expected a to be registered")
	}
	if r.Unsubscribe("a") {
		t.Error("second unsubscribe should report false")
	}
	r.Publish(events.Event{})
	if calls != 0 {
		t.Errorf("unsubscribed callback called %d times", calls)
	}
}

func TestGoneListenerIsRemoved(t *testing.T) {
	r := NewRegistry()
	gone, alive := 0, 0
	r.Subscribe("gone", func(events.Event) error {
		gone++
		return fmt.Errorf("write: %w", ErrListenerGone)
	})
	r.Subscribe("alive", func(events.Event) error {
		alive++
		return errors.New("transient")
	})

	r.Publish(events.Event{})
	r.Publish(events.Event{})

	if gone != 1 {
		t.Errorf("gone listener called %d times, want 1", gone)
	}
	if alive != 2 {
		t.Errorf("failing listener called %d times, want 2", alive)
	}
	if r.Len() != 1 {
		t.Errorf("len = %d, want 1", r.Len())
	}
}

func TestPanickingListenerDoesNotStopDelivery(t *testing.T) {
	r := NewRegistry()
	delivered := false
	r.Subscribe("boom", func(events.Event) error { panic("boom") })
	r.Subscribe("next", func(events.Event) error { delivered = true; return nil })

	r.Publish(events.Event{Type: events.TypeRoundChanged})

	if !delivered {
		t.Error("listener after the panicking one was not called")
	}
	if r.Len() != 2 {
		t.Errorf("panicking listener should stay subscribed, len = %d", r.Len())
	}
}

func TestCallbackMayUnsubscribeDuringPublish(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Subscribe("self", func(events.Event) error {
		calls++
		r.Unsubscribe("self")
		return nil
	})

	r.Publish(events.Event{})
	r.Publish(events.Event{})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
