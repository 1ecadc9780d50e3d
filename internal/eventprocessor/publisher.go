// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package eventprocessor

import (
	"context"
	"fmt"
	"sync"
	"time"

	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	json "github.com/goccy/go-json"

	"github.com/farescope/farescope/internal/logging"
	"github.com/farescope/farescope/internal/metrics"
	"github.com/farescope/farescope/internal/models"
)

// Topics carried on the events stream.
const (
	TopicSearch   = "events.search"
	TopicClickout = "events.clickout"
)

// Publisher sends analytics events onto the JetStream events stream.
// The event ID doubles as the NATS message ID, so a retried publish
// after an ambiguous failure deduplicates server-side.
type Publisher struct {
	publisher message.Publisher

	mu     sync.RWMutex
	closed bool
}

// NewPublisher connects a JetStream publisher to url.
func NewPublisher(url string) (*Publisher, error) {
	logger := NewWatermillLogger()

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS publisher disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS publisher reconnected")
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating publisher: %w", err)
	}

	return &Publisher{publisher: pub}, nil
}

// NewPublisherWithBackend wraps an existing Watermill publisher,
// used by tests with the in-memory pubsub.
func NewPublisherWithBackend(pub message.Publisher) *Publisher {
	return &Publisher{publisher: pub}
}

// PublishSearch enqueues a search event for persistence.
func (p *Publisher) PublishSearch(ctx context.Context, event *models.SearchEvent) error {
	return p.publish(ctx, TopicSearch, event.ID, event)
}

// PublishClickout enqueues a clickout event for persistence.
func (p *Publisher) PublishClickout(ctx context.Context, event *models.ClickoutEvent) error {
	return p.publish(ctx, TopicClickout, event.ID, event)
}

func (p *Publisher) publish(_ context.Context, topic, id string, event any) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.RUnlock()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	msg := message.NewMessage(id, payload)
	msg.Metadata.Set(natsgo.MsgIdHdr, id)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// Close shuts the publisher down. Safe to call twice.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}

func eventType(topic string) string {
	switch topic {
	case TopicSearch:
		return "search"
	case TopicClickout:
		return "clickout"
	default:
		return "unknown"
	}
}

// RecordIngested counts an event accepted at the HTTP edge.
func RecordIngested(topic string) {
	metrics.EventsIngested.WithLabelValues(eventType(topic)).Inc()
}
