// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/farescope/farescope/internal/auth"
	"github.com/farescope/farescope/internal/database"
	"github.com/farescope/farescope/internal/models"
	"github.com/farescope/farescope/internal/websocket"
)

// ListNotifications returns the caller's notifications, newest first.
// ?unread=true narrows to unread only.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		rw.Unauthorized("Authentication required")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	notifications, err := h.db.ListNotifications(r.Context(), identity.UserID, unreadOnly, limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(notifications)
}

// UnreadCount returns how many of the caller's notifications are unread.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		rw.Unauthorized("Authentication required")
		return
	}

	count, err := h.db.UnreadCount(r.Context(), identity.UserID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]int64{"unread": count})
}

// MarkNotificationRead marks one of the caller's notifications read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		rw.Unauthorized("Authentication required")
		return
	}

	err := h.db.MarkRead(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Notification not found")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]string{"status": "read"})
}

// MarkAllNotificationsRead marks every unread notification of the
// caller as read and reports how many changed.
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		rw.Unauthorized("Authentication required")
		return
	}

	updated, err := h.db.MarkAllRead(r.Context(), identity.UserID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]int64{"updated": updated})
}

// Notify stores a notification for one user and pushes it over any live
// websocket connections. The store is authoritative; a push to an
// offline user is not an error.
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.NotifyRequest
	if !decode(w, r, &req) {
		return
	}

	if _, err := h.db.GetUserByID(r.Context(), req.UserID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("User not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	notification, err := h.db.CreateNotification(r.Context(), req.UserID, req.Type, req.Title, req.Body)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	delivered := h.hub.SendToUser(req.UserID, websocket.Message{
		Type: "notification",
		Data: notification,
	})

	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		logAudit(r, identity, "notify.send", req.UserID)
	}
	rw.Created(map[string]any{
		"notification": notification,
		"delivered":    delivered,
	})
}

// Broadcast stores a notification per target user and fans it out over
// live connections. An empty user_ids list targets every account.
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.BroadcastRequest
	if !decode(w, r, &req) {
		return
	}

	targets := req.UserIDs
	if len(targets) == 0 {
		ids, err := h.db.ListUserIDs(r.Context())
		if err != nil {
			rw.DatabaseError(err)
			return
		}
		targets = ids
	}

	stored := 0
	for _, userID := range targets {
		if _, err := h.db.CreateNotification(r.Context(), userID, req.Type, req.Title, req.Body); err != nil {
			rw.DatabaseError(err)
			return
		}
		stored++
	}

	result := h.hub.SendToUsers(targets, websocket.Message{
		Type: "notification",
		Data: map[string]string{"type": req.Type, "title": req.Title, "body": req.Body},
	})

	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		logAudit(r, identity, "notify.broadcast", "")
	}
	rw.Success(map[string]any{
		"stored":  stored,
		"sent":    result.Sent,
		"offline": result.Offline,
	})
}
