// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"

	"github.com/farescope/farescope/internal/auth"
	"github.com/farescope/farescope/internal/logging"
	"github.com/farescope/farescope/internal/websocket"
)

// ServeWebSocket upgrades an authenticated request into a notification
// push connection and hands it to the hub.
func (h *Handler) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		NewResponseWriter(w, r).Unauthorized("Authentication required")
		return
	}

	upgrader := gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkWebSocketOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logging.Warn().Err(err).Str("user_id", identity.UserID).Msg("WebSocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, identity.UserID)
	h.hub.Register <- client
	client.Start()

	logging.Debug().Str("user_id", identity.UserID).Msg("WebSocket connected")
}

// checkWebSocketOrigin enforces the configured origin allowlist. A "*"
// entry or an absent Origin header (non-browser client) is accepted.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.WebSocket.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
