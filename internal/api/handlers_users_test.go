// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"fmt"
	"net/http"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescope/farescope/internal/models"
)

func TestUserCRUDAsAdmin(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "admin", models.RoleAdmin)

	w := ts.request(t, http.MethodPost, "/api/v1/users/", token, map[string]string{
		"username": "newbie",
		"email":    "newbie@example.com",
		"password": "a long enough password",
		"role":     "viewer",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.User
	raw, err := json.Marshal(decodeEnvelope(t, w).Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, models.RoleViewer, created.Role)
	assert.Empty(t, created.PasswordHash)

	w = ts.request(t, http.MethodGet, "/api/v1/users/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodPut, "/api/v1/users/"+created.ID, token, map[string]string{
		"role": "editor",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodDelete, "/api/v1/users/"+created.ID, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/users/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDuplicateUsernameConflicts(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "admin", models.RoleAdmin)

	body := map[string]string{
		"username": "dupe",
		"email":    "dupe@example.com",
		"password": "a long enough password",
		"role":     "viewer",
	}
	w := ts.request(t, http.MethodPost, "/api/v1/users/", token, body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.request(t, http.MethodPost, "/api/v1/users/", token, body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCannotDeleteOwnAccount(t *testing.T) {
	ts := newTestServer(t)
	token, user := ts.createUser(t, "admin", models.RoleAdmin)

	w := ts.request(t, http.MethodDelete, "/api/v1/users/"+user.ID, token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserEndpointsForbiddenForViewer(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "viewer", models.RoleViewer)

	w := ts.request(t, http.MethodGet, "/api/v1/users/", token, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	resp := decodeEnvelope(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeForbidden, resp.Error.Code)
}

func TestListUsersPagination(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "admin", models.RoleAdmin)
	for i := 0; i < 5; i++ {
		ts.createUser(t, fmt.Sprintf("user%d", i), models.RoleViewer)
	}

	w := ts.request(t, http.MethodGet, "/api/v1/users/?limit=3&offset=0", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeEnvelope(t, w)
	require.NotNil(t, resp.Meta)
	require.NotNil(t, resp.Meta.Pagination)
	assert.Equal(t, int64(6), resp.Meta.Pagination.Total)
	assert.Equal(t, 3, resp.Meta.Pagination.Count)
	assert.True(t, resp.Meta.Pagination.HasMore)
}
