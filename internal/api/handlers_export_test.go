// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescope/farescope/internal/models"
)

func seedEvents(t *testing.T, ts *testServer, n int) {
	t.Helper()
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		require.NoError(t, ts.db.InsertSearchEvent(context.Background(), &models.SearchEvent{
			ID:          uuid.NewString(),
			Timestamp:   now.Add(-time.Duration(i) * time.Minute),
			Origin:      "FRA",
			Destination: "JFK",
			TripType:    models.TripRoundTrip,
			SessionID:   uuid.NewString(),
		}))
		require.NoError(t, ts.db.InsertClickoutEvent(context.Background(), &models.ClickoutEvent{
			ID:          uuid.NewString(),
			Timestamp:   now.Add(-time.Duration(i) * time.Minute),
			Origin:      "FRA",
			Destination: "JFK",
			TripType:    models.TripRoundTrip,
			Partner:     "partner-a",
			SessionID:   uuid.NewString(),
			Price:       120.50,
			Currency:    "EUR",
		}))
	}
}

func TestExportSearchesCSV(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "editor", models.RoleEditor)
	seedEvents(t, ts, 3)

	w := ts.request(t, http.MethodGet, "/api/v1/export/searches?format=csv", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "search_events.csv")

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header + 3 rows
	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, "FRA", records[1][2])
}

func TestExportClickoutsJSON(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "editor", models.RoleEditor)
	seedEvents(t, ts, 2)

	w := ts.request(t, http.MethodGet, "/api/v1/export/clickouts?format=json", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeEnvelope(t, w)
	assert.True(t, resp.Success)
}

func TestExportDefaultsToJSON(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "editor", models.RoleEditor)
	seedEvents(t, ts, 1)

	w := ts.request(t, http.MethodGet, "/api/v1/export/searches", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.True(t, decodeEnvelope(t, w).Success)
}

func TestExportWindowValidation(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "editor", models.RoleEditor)

	w := ts.request(t, http.MethodGet, "/api/v1/export/searches?from=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.request(t, http.MethodGet,
		"/api/v1/export/searches?from=2026-02-01T00:00:00Z&to=2026-01-01T00:00:00Z", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/export/searches?format=xml", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportForbiddenForViewer(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "viewer", models.RoleViewer)

	w := ts.request(t, http.MethodGet, "/api/v1/export/searches", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
