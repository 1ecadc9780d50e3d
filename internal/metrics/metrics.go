// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

// Package metrics registers the Prometheus instrumentation surface:
// HTTP request counts and latency, websocket connection gauges, event
// ingestion counters, and upstream client outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP surface
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farescope_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "farescope_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "farescope_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	// Realtime channel
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "farescope_websocket_connections",
			Help: "Current number of open websocket connections",
		},
	)

	// Event ingestion pipeline
	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farescope_events_ingested_total",
			Help: "Events accepted by the tracking endpoints",
		},
		[]string{"event_type"},
	)

	EventsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farescope_events_persisted_total",
			Help: "Events written to the database by the subscriber",
		},
		[]string{"event_type"},
	)

	EventsBuffered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farescope_events_buffered_total",
			Help: "Events routed to the write-ahead buffer after a failed insert",
		},
		[]string{"event_type"},
	)

	WALPendingEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "farescope_wal_pending_entries",
			Help: "Entries in the write-ahead buffer awaiting replay",
		},
	)

	// Upstream clients
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farescope_upstream_requests_total",
			Help: "Outbound third-party API calls",
		},
		[]string{"service", "outcome"},
	)
)

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordUpstream records one outbound call outcome ("ok" or "error").
func RecordUpstream(service string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequests.WithLabelValues(service, outcome).Inc()
}
