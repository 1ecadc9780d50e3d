// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"net/http"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescope/farescope/internal/models"
)

func TestNotifyStoresAndReportsDelivery(t *testing.T) {
	ts := newTestServer(t)
	adminToken, _ := ts.createUser(t, "admin", models.RoleAdmin)
	userToken, user := ts.createUser(t, "bob", models.RoleViewer)

	w := ts.request(t, http.MethodPost, "/api/v1/notifications/send", adminToken, map[string]string{
		"user_id": user.ID,
		"type":    "price_alert",
		"title":   "Price drop",
		"body":    "FRA-JFK fell below your target.",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var data struct {
		Delivered bool `json:"delivered"`
	}
	raw, err := json.Marshal(decodeEnvelope(t, w).Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &data))
	// No live websocket connection in this test.
	assert.False(t, data.Delivered)

	// The recipient sees it in the inbox and the unread count.
	w = ts.request(t, http.MethodGet, "/api/v1/notifications/", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var inbox []models.Notification
	raw, err = json.Marshal(decodeEnvelope(t, w).Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &inbox))
	require.Len(t, inbox, 1)
	assert.Equal(t, "Price drop", inbox[0].Title)
	assert.False(t, inbox[0].Read)

	w = ts.request(t, http.MethodGet, "/api/v1/notifications/unread", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count struct {
		Unread int64 `json:"unread"`
	}
	raw, err = json.Marshal(decodeEnvelope(t, w).Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &count))
	assert.Equal(t, int64(1), count.Unread)

	// Mark it read.
	w = ts.request(t, http.MethodPost, "/api/v1/notifications/"+inbox[0].ID+"/read", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/notifications/?unread=true", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	raw, err = json.Marshal(decodeEnvelope(t, w).Data)
	require.NoError(t, err)
	var unread []models.Notification
	require.NoError(t, json.Unmarshal(raw, &unread))
	assert.Empty(t, unread)
}

func TestNotifyUnknownUser(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "admin", models.RoleAdmin)

	w := ts.request(t, http.MethodPost, "/api/v1/notifications/send", token, map[string]string{
		"user_id": "00000000-0000-0000-0000-000000000000",
		"type":    "system",
		"title":   "Hello",
		"body":    "World",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBroadcastToAllUsers(t *testing.T) {
	ts := newTestServer(t)
	adminToken, _ := ts.createUser(t, "admin", models.RoleAdmin)
	ts.createUser(t, "bob", models.RoleViewer)
	ts.createUser(t, "carol", models.RoleViewer)

	w := ts.request(t, http.MethodPost, "/api/v1/notifications/broadcast", adminToken, map[string]any{
		"type":  "maintenance",
		"title": "Planned downtime",
		"body":  "Saturday 02:00 UTC.",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Stored  int `json:"stored"`
		Sent    int `json:"sent"`
		Offline int `json:"offline"`
	}
	raw, err := json.Marshal(decodeEnvelope(t, w).Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, 3, data.Stored)
	assert.Equal(t, 0, data.Sent)
	assert.Equal(t, 3, data.Offline)
}

func TestBroadcastRequiresAdmin(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "editor", models.RoleEditor)

	w := ts.request(t, http.MethodPost, "/api/v1/notifications/broadcast", token, map[string]any{
		"type":  "maintenance",
		"title": "Nope",
		"body":  "Nope",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMarkAllRead(t *testing.T) {
	ts := newTestServer(t)
	adminToken, _ := ts.createUser(t, "admin", models.RoleAdmin)
	userToken, user := ts.createUser(t, "bob", models.RoleViewer)

	for i := 0; i < 3; i++ {
		w := ts.request(t, http.MethodPost, "/api/v1/notifications/send", adminToken, map[string]string{
			"user_id": user.ID,
			"type":    "system",
			"title":   "Hello",
			"body":    "World",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := ts.request(t, http.MethodPost, "/api/v1/notifications/read-all", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Updated int64 `json:"updated"`
	}
	raw, err := json.Marshal(decodeEnvelope(t, w).Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, int64(3), data.Updated)
}
