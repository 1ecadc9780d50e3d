// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescope/farescope/internal/models"
)

func TestPageLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "editor", models.RoleEditor)

	w := ts.request(t, http.MethodPost, "/api/v1/cms/pages", token, map[string]string{
		"slug":    "about-us",
		"title":   "About Us",
		"content": "We compare flights.",
		"status":  "draft",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Drafts are invisible on the public route.
	w = ts.request(t, http.MethodGet, "/api/v1/pages/about-us", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// But visible through the admin route.
	w = ts.request(t, http.MethodGet, "/api/v1/cms/pages/about-us", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodPut, "/api/v1/cms/pages/about-us", token, map[string]string{
		"slug":    "about-us",
		"title":   "About Us",
		"content": "We compare flights.",
		"status":  "published",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/pages/about-us", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodDelete, "/api/v1/cms/pages/about-us", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/pages/about-us", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDuplicateSlugConflicts(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "editor", models.RoleEditor)

	body := map[string]string{
		"slug":    "faq",
		"title":   "FAQ",
		"content": "Questions.",
		"status":  "published",
	}
	w := ts.request(t, http.MethodPost, "/api/v1/cms/pages", token, body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.request(t, http.MethodPost, "/api/v1/cms/pages", token, body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestViewerCannotWritePages(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "viewer", models.RoleViewer)

	w := ts.request(t, http.MethodPost, "/api/v1/cms/pages", token, map[string]string{
		"slug":    "sneaky",
		"title":   "Sneaky",
		"content": "No.",
		"status":  "draft",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListPagesRejectsBadStatus(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "editor", models.RoleEditor)

	w := ts.request(t, http.MethodGet, "/api/v1/cms/pages?status=archived", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
