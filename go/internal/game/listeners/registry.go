// Package listeners fans game events out to dynamically attached observers.
package listeners

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/quizrunner/go/internal/game/events"
)

// ErrListenerGone is returned by a callback whose underlying channel is
// closed. The registry drops that subscriber.
var ErrListenerGone = errors.New("listener gone")

// Callback handles a single event.
type Callback func(events.Event) error

type subscription struct {
	id       string
	callback Callback
}

// Registry maps subscriber ids to callbacks and invokes them in registration
// order. It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	subs []subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Subscribe registers callback under id. Subscribing an existing id replaces
// its callback without changing its position.
func (r *Registry) Subscribe(id string, callback Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.subs {
		if r.subs[i].id == id {
			r.subs[i].callback = callback
			return
		}
	}
	r.subs = append(r.subs, subscription{id: id, callback: callback})
	log.Debug().Str("listener_id", id).Int("listeners", len(r.subs)).Msg("listener subscribed")
}

// Unsubscribe removes id. It reports whether the id was registered.
func (r *Registry) Unsubscribe(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, sub := range r.subs {
		if sub.id == id {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			log.Debug().Str("listener_id", id).Int("listeners", len(r.subs)).Msg("listener unsubscribed")
			return true
		}
	}
	return false
}

// Len returns the number of subscribers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Publish delivers ev to every subscriber synchronously. Delivery is best
// effort: errors are logged, and subscribers reporting ErrListenerGone are
// removed.
func (r *Registry) Publish(ev events.Event) {
	r.mu.RLock()
	subs := make([]subscription, len(r.subs))
	copy(subs, r.subs)
	r.mu.RUnlock()

	for _, sub := range subs {
		err := safeCall(sub.callback, ev)
		switch {
		case err == nil:
		case errors.Is(err, ErrListenerGone):
			r.Unsubscribe(sub.id)
		default:
			log.Warn().Err(err).
				Str("listener_id", sub.id).
				Str("event_type", string(ev.Type)).
				Msg("listener failed")
		}
	}
}

func safeCall(callback Callback, ev events.Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("listener panicked: %v", rec)
			log.Error().
				Str("event_type", string(ev.Type)).
				Bytes("stack", debug.Stack()).
				Msgf("listener panicked: %v", rec)
		}
	}()
	return callback(ev)
}
