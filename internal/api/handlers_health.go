// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"context"
	"net/http"
	"time"
)

// Liveness answers as long as the process serves requests.
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// Readiness answers 200 only when the database responds.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		rw.ServiceUnavailable("Database is not reachable")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}

// Health reports component status for the ops dashboard. The endpoint
// stays 200 while the process is up; degraded components are reported
// in the body.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := h.db.Ping(ctx); err != nil {
		dbStatus = "unreachable"
	}

	status := map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"database":       dbStatus,
		"websocket": map[string]int{
			"online_users": h.hub.OnlineUserCount(),
			"connections":  h.hub.TotalConnectionCount(),
		},
	}
	if dbStatus != "ok" {
		status["status"] = "degraded"
	}

	if h.natsHealthy != nil {
		broker := "ok"
		if !h.natsHealthy() {
			broker = "down"
			status["status"] = "degraded"
		}
		status["broker"] = broker
	}

	if h.wal != nil {
		status["wal"] = h.wal.Stats()
	}

	rw.Success(status)
}
