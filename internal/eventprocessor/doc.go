// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

// Package eventprocessor moves analytics events from the tracking
// endpoints into the database through NATS JetStream.
//
// The tracking handlers publish search and clickout events to the
// events stream; a durable consumer drains the stream and inserts rows
// into DuckDB. Inserts that fail are routed to the write-ahead buffer
// and replayed later, so an unavailable database never loses events or
// blocks the HTTP path.
//
// For single-instance deployments the NATS server runs embedded in the
// process; pointing nats.url at an external cluster disables the
// embedded server.
package eventprocessor
