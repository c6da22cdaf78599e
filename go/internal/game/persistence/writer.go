package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/quizrunner/go/internal/models"
)

// Mirror receives a copy of every snapshot written. Mirror failures are
// logged and never stop the writer.
type Mirror interface {
	Mirror(ctx context.Context, data []byte) error
}

const mirrorTimeout = 2 * time.Second

// Writer serializes snapshots to a FileStore one at a time.
type Writer struct {
	store   *FileStore
	mirror  Mirror
	mailbox chan models.GameState
	written chan struct{}
}

func NewWriter(store *FileStore, mirror Mirror) *Writer {
	return &Writer{
		store:   store,
		mirror:  mirror,
		mailbox: make(chan models.GameState, 1),
		written: make(chan struct{}, 1),
	}
}

// Enqueue hands a snapshot to the writer without blocking. An older snapshot
// that has not been written yet is replaced. Enqueue expects a single caller
// and a state it no longer mutates.
func (w *Writer) Enqueue(state models.GameState) {
	for {
		select {
		case w.mailbox <- state:
			return
		default:
		}
		select {
		case <-w.mailbox:
		default:
		}
	}
}

// Written is signalled after each successful write. It is meant for tests
// and health reporting and may coalesce signals.
func (w *Writer) Written() <-chan struct{} {
	return w.written
}

// Run writes snapshots until ctx is done, flushing a pending snapshot before
// returning. A failed file write ends Run with that error.
func (w *Writer) Run(ctx context.Context) error {
	log.Info().Str("path", w.store.Path()).Msg("persistence writer started")
	for {
		select {
		case state := <-w.mailbox:
			if err := w.write(ctx, state); err != nil {
				log.Error().Err(err).Str("path", w.store.Path()).Msg("snapshot write failed")
				return err
			}
		case <-ctx.Done():
			select {
			case state := <-w.mailbox:
				if err := w.write(context.WithoutCancel(ctx), state); err != nil {
					return err
				}
			default:
			}
			log.Info().Str("path", w.store.Path()).Msg("persistence writer stopped")
			return nil
		}
	}
}

func (w *Writer) write(ctx context.Context, state models.GameState) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}
	if err := w.store.Write(data); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}

	log.Debug().
		Str("path", w.store.Path()).
		Str("status", string(state.Status)).
		Int("round", state.Round).
		Int("players", len(state.Players)).
		Msg("snapshot written")

	if w.mirror != nil {
		mctx, cancel := context.WithTimeout(ctx, mirrorTimeout)
		if err := w.mirror.Mirror(mctx, data); err != nil {
			log.Warn().Err(err).Msg("snapshot mirror failed")
		}
		cancel()
	}

	select {
	case w.written <- struct{}{}:
	default:
	}
	return nil
}
