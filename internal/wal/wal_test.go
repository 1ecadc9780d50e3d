// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package wal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescope/farescope/internal/config"
	"github.com/farescope/farescope/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendPendingConfirm(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	event := &models.SearchEvent{ID: "e1", SessionID: "s1", Origin: "LAX", Destination: "JFK"}
	id, err := store.Append(ctx, "search", event)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entries, err := store.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "search", entries[0].Kind)

	var decoded models.SearchEvent
	require.NoError(t, entries[0].UnmarshalPayload(&decoded))
	assert.Equal(t, "LAX", decoded.Origin)

	require.NoError(t, store.Confirm(ctx, id))
	entries, err = store.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPendingSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	require.NoError(t, err)
	_, err = store.Append(ctx, "clickout", &models.ClickoutEvent{ID: "e2", SessionID: "s1"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	entries, err := reopened.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "clickout", entries[0].Kind)
}

func TestRecordFailureIncrementsAttempts(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	id, err := store.Append(ctx, "search", &models.SearchEvent{ID: "e3"})
	require.NoError(t, err)

	attempts, err := store.RecordFailure(ctx, id, errors.New("database locked"))
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)

	attempts, err = store.RecordFailure(ctx, id, errors.New("database locked"))
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	entries, err := store.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Attempts)
	assert.Equal(t, "database locked", entries[0].LastError)
}

func TestAppendAfterCloseFails(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Append(context.Background(), "search", &models.SearchEvent{ID: "e4"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRetrierReplaysAndDrops(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	okID, err := store.Append(ctx, "search", &models.SearchEvent{ID: "ok"})
	require.NoError(t, err)
	badID, err := store.Append(ctx, "search", &models.SearchEvent{ID: "bad"})
	require.NoError(t, err)

	sink := func(_ context.Context, entry *Entry) error {
		var event models.SearchEvent
		if err := entry.UnmarshalPayload(&event); err != nil {
			return err
		}
		if event.ID == "bad" {
			return errors.New("insert failed")
		}
		return nil
	}

	retrier := NewRetrier(store, &config.WALConfig{
		RetryInterval: time.Hour,
		MaxRetries:    2,
	}, sink)

	retrier.drain(ctx)
	entries, err := store.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Attempts)

	retrier.drain(ctx)
	entries, err = store.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries, "bad entry dropped after max retries")

	stats := store.Stats()
	assert.Equal(t, int64(2), stats.TotalAppends)
	assert.Equal(t, int64(1), stats.TotalDropped)
	_ = okID
	_ = badID
}

func TestRetrierServeStopsOnCancel(t *testing.T) {
	store := testStore(t)
	retrier := NewRetrier(store, &config.WALConfig{RetryInterval: 10 * time.Millisecond}, func(context.Context, *Entry) error {
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- retrier.Serve(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("retrier did not stop")
	}
}
