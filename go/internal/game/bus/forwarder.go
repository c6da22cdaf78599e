package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/quizrunner/go/internal/game/events"
	"github.com/mcdev12/quizrunner/go/internal/game/listeners"
)

const (
	DefaultQueueSize = 256
	publishTimeout   = 5 * time.Second
)

// EventPublisher sends a single event to the bus.
type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// Forwarder is a listener that hands events to a publisher on its own
// goroutine, so a slow broker never stalls the coordinator. When the queue is
// full the event is dropped.
type Forwarder struct {
	pub   EventPublisher
	queue chan events.Event
}

func NewForwarder(pub EventPublisher, queueSize int) *Forwarder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Forwarder{
		pub:   pub,
		queue: make(chan events.Event, queueSize),
	}
}

// Listener returns the callback to register with a listeners.Registry.
func (f *Forwarder) Listener() listeners.Callback {
	return func(ev events.Event) error {
		select {
		case f.queue <- ev:
			return nil
		default:
			return fmt.Errorf("bus queue full, dropped %s", ev.Type)
		}
	}
}

// Run publishes queued events until ctx is done. Publish errors are logged.
func (f *Forwarder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-f.queue:
			pctx, cancel := context.WithTimeout(ctx, publishTimeout)
			if err := f.pub.Publish(pctx, ev); err != nil {
				log.Warn().Err(err).
					Str("event_type", string(ev.Type)).
					Str("event_id", ev.ID).
					Msg("failed to forward event")
			}
			cancel()
		}
	}
}
