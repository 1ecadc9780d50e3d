// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

// Package wal buffers analytics events whose database insert failed.
// Entries are persisted to BadgerDB with fsync, so a crashed process
// replays them on the next start instead of losing them.
package wal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/farescope/farescope/internal/logging"
	"github.com/farescope/farescope/internal/metrics"
)

// ErrClosed is returned for operations on a closed store.
var ErrClosed = errors.New("wal store closed")

const pendingPrefix = "pending:"

// Entry is one buffered event awaiting a successful insert.
type Entry struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"last_error,omitempty"`
}

// UnmarshalPayload decodes the buffered event into v.
func (e *Entry) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Stats holds store counters for the health endpoint.
type Stats struct {
	PendingCount  int64 `json:"pending_count"`
	TotalAppends  int64 `json:"total_appends"`
	TotalConfirms int64 `json:"total_confirms"`
	TotalDropped  int64 `json:"total_dropped"`
}

// Store is a BadgerDB-backed buffer of failed inserts.
type Store struct {
	db *badger.DB

	totalAppends  atomic.Int64
	totalConfirms atomic.Int64
	totalDropped  atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// Open creates or reopens the buffer at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.SyncWrites = true
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening wal store: %w", err)
	}

	store := &Store{db: db}
	pending, err := store.countPending()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	metrics.WALPendingEntries.Set(float64(pending))

	logging.Info().
		Str("dir", dir).
		Int64("pending", pending).
		Msg("Event buffer opened")
	return store, nil
}

// Append buffers an event of the given kind. kind names the target
// table ("search" or "clickout") so replay knows which insert to run.
func (s *Store) Append(_ context.Context, kind string, event any) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", ErrClosed
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshaling event: %w", err)
	}

	entry := &Entry{
		ID:        uuid.New().String(),
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshaling entry: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(pendingPrefix+entry.ID), data)
	})
	if err != nil {
		return "", fmt.Errorf("writing entry: %w", err)
	}

	s.totalAppends.Add(1)
	metrics.EventsBuffered.WithLabelValues(kind).Inc()
	metrics.WALPendingEntries.Inc()
	return entry.ID, nil
}

// Pending returns all buffered entries, oldest first.
func (s *Store) Pending(_ context.Context) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	var entries []*Entry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(pendingPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var entry Entry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return err
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading pending entries: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

// Confirm removes a successfully replayed entry.
func (s *Store) Confirm(_ context.Context, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(pendingPrefix + id))
	})
	if err != nil {
		return fmt.Errorf("confirming entry: %w", err)
	}

	s.totalConfirms.Add(1)
	metrics.WALPendingEntries.Dec()
	return nil
}

// RecordFailure increments the attempt counter on an entry and stores
// the error for inspection.
func (s *Store) RecordFailure(_ context.Context, id string, attemptErr error) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}

	attempts := 0
	key := []byte(pendingPrefix + id)
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var entry Entry
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		}); err != nil {
			return err
		}

		entry.Attempts++
		entry.LastError = attemptErr.Error()
		attempts = entry.Attempts

		data, err := json.Marshal(&entry)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return 0, fmt.Errorf("recording failure: %w", err)
	}
	return attempts, nil
}

// Drop removes an entry that exhausted its retries.
func (s *Store) Drop(ctx context.Context, id string) error {
	if err := s.Confirm(ctx, id); err != nil {
		return err
	}
	s.totalConfirms.Add(-1)
	s.totalDropped.Add(1)
	return nil
}

// Stats returns store counters.
func (s *Store) Stats() Stats {
	pending, _ := s.countPending()
	return Stats{
		PendingCount:  pending,
		TotalAppends:  s.totalAppends.Load(),
		TotalConfirms: s.totalConfirms.Load(),
		TotalDropped:  s.totalDropped.Load(),
	}
}

func (s *Store) countPending() (int64, error) {
	var count int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(pendingPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
