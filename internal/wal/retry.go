// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package wal

import (
	"context"
	"time"

	"github.com/farescope/farescope/internal/config"
	"github.com/farescope/farescope/internal/logging"
)

// Sink replays one buffered entry into its target table.
type Sink func(ctx context.Context, entry *Entry) error

// Retrier periodically replays buffered entries. It runs as a
// supervised service; Serve blocks until ctx is canceled.
type Retrier struct {
	store *Store
	cfg   *config.WALConfig
	sink  Sink
}

// NewRetrier builds a retrier draining store into sink.
func NewRetrier(store *Store, cfg *config.WALConfig, sink Sink) *Retrier {
	return &Retrier{store: store, cfg: cfg, sink: sink}
}

// Serve drains the buffer once at startup, then on every retry
// interval.
func (r *Retrier) Serve(ctx context.Context) error {
	r.drain(ctx)

	ticker := time.NewTicker(r.cfg.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

func (r *Retrier) drain(ctx context.Context) {
	entries, err := r.store.Pending(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Reading buffered events failed")
		return
	}
	if len(entries) == 0 {
		return
	}

	replayed, failed, dropped := 0, 0, 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}

		if err := r.sink(ctx, entry); err != nil {
			attempts, recordErr := r.store.RecordFailure(ctx, entry.ID, err)
			if recordErr != nil {
				logging.Error().Err(recordErr).Str("entry_id", entry.ID).Msg("Recording replay failure failed")
				continue
			}
			if r.cfg.MaxRetries > 0 && attempts >= r.cfg.MaxRetries {
				logging.Error().
					Str("entry_id", entry.ID).
					Str("kind", entry.Kind).
					Int("attempts", attempts).
					Err(err).
					Msg("Dropping buffered event after exhausting retries")
				if dropErr := r.store.Drop(ctx, entry.ID); dropErr != nil {
					logging.Error().Err(dropErr).Str("entry_id", entry.ID).Msg("Dropping buffered event failed")
				}
				dropped++
			} else {
				failed++
			}
			continue
		}

		if err := r.store.Confirm(ctx, entry.ID); err != nil {
			logging.Error().Err(err).Str("entry_id", entry.ID).Msg("Confirming replayed event failed")
			continue
		}
		replayed++
	}

	logging.Info().
		Int("replayed", replayed).
		Int("failed", failed).
		Int("dropped", dropped).
		Msg("Event buffer drain pass complete")
}

// String names the service in supervisor logs.
func (r *Retrier) String() string {
	return "wal-retrier"
}
