// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescope/farescope/internal/models"
)

type fakeStore struct {
	mu          sync.Mutex
	searches    []*models.SearchEvent
	clickouts   []*models.ClickoutEvent
	failInserts bool
}

func (s *fakeStore) InsertSearchEvent(_ context.Context, event *models.SearchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInserts {
		return errors.New("database unavailable")
	}
	s.searches = append(s.searches, event)
	return nil
}

func (s *fakeStore) InsertClickoutEvent(_ context.Context, event *models.ClickoutEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInserts {
		return errors.New("database unavailable")
	}
	s.clickouts = append(s.clickouts, event)
	return nil
}

func (s *fakeStore) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.searches), len(s.clickouts)
}

type fakeBuffer struct {
	mu    sync.Mutex
	kinds []string
}

func (b *fakeBuffer) Append(_ context.Context, kind string, _ any) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.kinds = append(b.kinds, kind)
	return "entry-id", nil
}

func (b *fakeBuffer) appended() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.kinds...)
}

func runConsumer(t *testing.T, store EventStore, buffer Buffer) (*Publisher, context.CancelFunc) {
	t.Helper()
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, NewWatermillLogger())
	consumer := NewConsumer(pubsub, store, buffer)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = consumer.Serve(ctx) }()
	time.Sleep(50 * time.Millisecond)

	t.Cleanup(func() {
		cancel()
		_ = pubsub.Close()
	})
	return NewPublisherWithBackend(pubsub), cancel
}

func TestConsumerPersistsEvents(t *testing.T) {
	store := &fakeStore{}
	publisher, _ := runConsumer(t, store, nil)

	err := publisher.PublishSearch(context.Background(), &models.SearchEvent{
		ID: "s1", SessionID: "sess", Origin: "LAX", Destination: "JFK", Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)
	err = publisher.PublishClickout(context.Background(), &models.ClickoutEvent{
		ID: "c1", SessionID: "sess", Origin: "LAX", Destination: "JFK", Price: 199.99,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		searches, clickouts := store.counts()
		return searches == 1 && clickouts == 1
	}, 2*time.Second, 10*time.Millisecond)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, "LAX", store.searches[0].Origin)
	assert.InDelta(t, 199.99, store.clickouts[0].Price, 0.001)
}

func TestConsumerBuffersFailedInserts(t *testing.T) {
	store := &fakeStore{failInserts: true}
	buffer := &fakeBuffer{}
	publisher, _ := runConsumer(t, store, buffer)

	err := publisher.PublishSearch(context.Background(), &models.SearchEvent{ID: "s2", SessionID: "sess"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(buffer.appended()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"search"}, buffer.appended())

	searches, _ := store.counts()
	assert.Zero(t, searches)
}

func TestPublishAfterClose(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, NewWatermillLogger())
	publisher := NewPublisherWithBackend(pubsub)
	require.NoError(t, publisher.Close())

	err := publisher.PublishSearch(context.Background(), &models.SearchEvent{ID: "s3"})
	assert.Error(t, err)
}
