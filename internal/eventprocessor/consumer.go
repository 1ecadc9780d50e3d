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

// EventStore is the database surface the consumer writes through.
type EventStore interface {
	InsertSearchEvent(ctx context.Context, event *models.SearchEvent) error
	InsertClickoutEvent(ctx context.Context, event *models.ClickoutEvent) error
}

// Buffer receives events whose insert failed, for later replay.
type Buffer interface {
	Append(ctx context.Context, kind string, event any) (string, error)
}

// Consumer drains the events stream into the database. It runs as a
// supervised service; Serve blocks until ctx is canceled.
//
// A failed insert is appended to the buffer and the message is still
// acked: replay responsibility moves to the buffer's retrier, and the
// stream never wedges on a poisoned message.
type Consumer struct {
	subscriber message.Subscriber
	store      EventStore
	buffer     Buffer
}

// NewConsumer builds a consumer over an existing subscriber. buffer
// may be nil, in which case failed inserts are logged and dropped.
func NewConsumer(subscriber message.Subscriber, store EventStore, buffer Buffer) *Consumer {
	return &Consumer{subscriber: subscriber, store: store, buffer: buffer}
}

// NewJetStreamSubscriber connects a durable JetStream subscriber to url.
func NewJetStreamSubscriber(url string) (message.Subscriber, error) {
	logger := NewWatermillLogger()

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS subscriber disconnected")
			}
		}),
	}

	subOpts := []natsgo.SubOpt{
		natsgo.MaxDeliver(5),
		natsgo.MaxAckPending(256),
		natsgo.AckWait(30 * time.Second),
		natsgo.DeliverNew(),
		natsgo.BindStream(StreamName),
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: "farescope-consumer",
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     10 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:         false,
			AutoProvision:    false,
			AckAsync:         false,
			SubscribeOptions: subOpts,
			DurablePrefix:    "farescope",
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating subscriber: %w", err)
	}
	return sub, nil
}

// Serve consumes both event topics until ctx is canceled.
func (c *Consumer) Serve(ctx context.Context) error {
	searchMsgs, err := c.subscriber.Subscribe(ctx, TopicSearch)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", TopicSearch, err)
	}
	clickoutMsgs, err := c.subscriber.Subscribe(ctx, TopicClickout)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", TopicClickout, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.consume(ctx, TopicSearch, searchMsgs)
	}()
	go func() {
		defer wg.Done()
		c.consume(ctx, TopicClickout, clickoutMsgs)
	}()
	wg.Wait()

	return ctx.Err()
}

func (c *Consumer) consume(ctx context.Context, topic string, msgs <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := c.handle(ctx, topic, msg.Payload); err != nil {
				logging.Error().
					Err(err).
					Str("topic", topic).
					Str("message_uuid", msg.UUID).
					Msg("Event processing failed")
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}
}

// handle decodes and persists one event. Decode failures are returned
// (the message redelivers up to MaxDeliver); insert failures divert to
// the buffer and count as handled.
func (c *Consumer) handle(ctx context.Context, topic string, payload []byte) error {
	kind := eventType(topic)

	var insertErr error
	var event any
	switch topic {
	case TopicSearch:
		var search models.SearchEvent
		if err := json.Unmarshal(payload, &search); err != nil {
			return fmt.Errorf("decoding search event: %w", err)
		}
		event = &search
		insertErr = c.store.InsertSearchEvent(ctx, &search)
	case TopicClickout:
		var clickout models.ClickoutEvent
		if err := json.Unmarshal(payload, &clickout); err != nil {
			return fmt.Errorf("decoding clickout event: %w", err)
		}
		event = &clickout
		insertErr = c.store.InsertClickoutEvent(ctx, &clickout)
	default:
		return fmt.Errorf("unknown topic %s", topic)
	}

	if insertErr == nil {
		metrics.EventsPersisted.WithLabelValues(kind).Inc()
		return nil
	}

	if c.buffer == nil {
		return insertErr
	}
	if _, err := c.buffer.Append(ctx, kind, event); err != nil {
		return fmt.Errorf("buffering after failed insert: %w (insert: %v)", err, insertErr)
	}
	logging.Warn().
		Err(insertErr).
		Str("event_type", kind).
		Msg("Insert failed, event buffered for replay")
	return nil
}

// String names the service in supervisor logs.
func (c *Consumer) String() string {
	return "event-consumer"
}
