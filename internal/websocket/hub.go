// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

// Package websocket implements the realtime notification channel: a
// per-user registry of live connections with best-effort fan-out. A user
// appears in the registry exactly while it has at least one open
// connection; delivery to offline users is silently skipped and never
// queued.
package websocket

import (
	"context"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/farescope/farescope/internal/logging"
	"github.com/farescope/farescope/internal/metrics"
)

// Message is the wire envelope pushed to clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// FanoutResult tallies a multi-user send.
type FanoutResult struct {
	Sent    int `json:"sent"`
	Offline int `json:"offline"`
}

// Hub tracks which users have live connections and delivers payloads to
// them. All map access is guarded by mu; Register/Unregister channels
// feed the supervised run loop so connection lifecycle events serialize
// with shutdown.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}

	// Register accepts clients whose connection upgrade completed.
	Register chan *Client

	// Unregister accepts clients whose connection closed or errored.
	Unregister chan *Client
}

// NewHub creates an empty registry.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		Register:   make(chan *Client, 16),
		Unregister: make(chan *Client, 16),
	}
}

// RunWithContext processes lifecycle events until ctx is canceled, then
// closes every remaining connection. Runs under the supervisor tree.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()
		case client := <-h.Register:
			h.add(client)
		case client := <-h.Unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[client.userID] = set
	}
	set[client] = struct{}{}
	metrics.WebSocketConnections.Inc()

	logging.Debug().
		Str("user_id", client.userID).
		Int("connections", len(set)).
		Msg("WebSocket client registered")
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, present := set[client]; !present {
		return
	}
	delete(set, client)
	client.closeSend()
	metrics.WebSocketConnections.Dec()

	// Drop the user entry on last connection close so IsOnline stays
	// an exact membership test.
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, set := range h.clients {
		for client := range set {
			client.closeSend()
			metrics.WebSocketConnections.Dec()
		}
		delete(h.clients, userID)
	}
}

// SendToUser serializes payload once and writes it to every open
// connection for userID. Returns true when at least one connection
// accepted the write. Unknown users return false without error.
func (h *Hub) SendToUser(userID string, payload Message) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Str("type", payload.Type).Msg("Failed to marshal websocket payload")
		return false
	}
	return h.deliver(userID, data) > 0
}

// SendToUsers applies SendToUser per id, tallying online and offline
// recipients. Deliveries are independent; one offline user never aborts
// the rest.
func (h *Hub) SendToUsers(userIDs []string, payload Message) FanoutResult {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Str("type", payload.Type).Msg("Failed to marshal websocket payload")
		return FanoutResult{Offline: len(userIDs)}
	}

	var result FanoutResult
	for _, id := range userIDs {
		if h.deliver(id, data) > 0 {
			result.Sent++
		} else {
			result.Offline++
		}
	}
	return result
}

// Broadcast writes payload to every open connection across all users and
// returns the number of connections that accepted it.
func (h *Hub) Broadcast(payload Message) int {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Str("type", payload.Type).Msg("Failed to marshal websocket payload")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, set := range h.clients {
		for client := range set {
			if client.enqueue(data) {
				delivered++
			}
		}
	}
	return delivered
}

// deliver writes data to each of userID's connections and returns how
// many accepted it. A full or closed connection is skipped, not evicted;
// eviction happens only through the close/error path.
func (h *Hub) deliver(userID string, data []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.clients[userID] {
		if client.enqueue(data) {
			delivered++
		} else {
			logging.Warn().
				Str("user_id", userID).
				Msg("WebSocket send buffer full, dropping message")
		}
	}
	return delivered
}

// IsOnline reports whether userID has at least one open connection.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// OnlineUserCount returns the number of distinct users with open
// connections.
func (h *Hub) OnlineUserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConnectionCount returns the number of open connections across all
// users.
func (h *Hub) TotalConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, set := range h.clients {
		total += len(set)
	}
	return total
}
