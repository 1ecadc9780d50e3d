// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescope/farescope/internal/models"
)

func TestAnalyticsEndpointsSmoke(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "viewer", models.RoleViewer)
	seedEvents(t, ts, 5)

	paths := []string{
		"/api/v1/analytics/dashboard",
		"/api/v1/analytics/hourly",
		"/api/v1/analytics/breakdown?dimension=device",
		"/api/v1/analytics/routes/top?range=7d",
		"/api/v1/analytics/routes/trending",
		"/api/v1/analytics/engagement?range=30d",
		"/api/v1/analytics/monthly?months=6",
		"/api/v1/analytics/geo/countries",
		"/api/v1/analytics/geo/regions?range=7d",
	}
	for _, path := range paths {
		w := ts.request(t, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.True(t, decodeEnvelope(t, w).Success, path)
	}
}

func TestAnalyticsCSVVariant(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "viewer", models.RoleViewer)
	seedEvents(t, ts, 5)

	cases := []struct {
		path     string
		filename string
		header   string
	}{
		{"/api/v1/analytics/dashboard", "dashboard.csv", "window"},
		{"/api/v1/analytics/hourly", "hourly.csv", "start"},
		{"/api/v1/analytics/breakdown", "breakdown.csv", "value"},
		{"/api/v1/analytics/routes/top", "top_routes.csv", "origin"},
		{"/api/v1/analytics/routes/trending", "trending_routes.csv", "origin"},
		{"/api/v1/analytics/engagement", "engagement.csv", "start"},
		{"/api/v1/analytics/monthly", "monthly_trend.csv", "month"},
		{"/api/v1/analytics/geo/countries", "country_rollup.csv", "key"},
		{"/api/v1/analytics/geo/regions", "region_rollup.csv", "key"},
	}
	for _, tc := range cases {
		w := ts.request(t, http.MethodGet, tc.path+"?format=csv", token, nil)
		require.Equal(t, http.StatusOK, w.Code, tc.path)
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"), tc.path)
		assert.Contains(t, w.Header().Get("Content-Disposition"), tc.filename, tc.path)

		records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
		require.NoError(t, err, tc.path)
		require.NotEmpty(t, records, tc.path)
		assert.Equal(t, tc.header, records[0][0], tc.path)
	}
}

func TestTopRoutesCSVMatchesJSON(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "viewer", models.RoleViewer)
	seedEvents(t, ts, 4)

	w := ts.request(t, http.MethodGet, "/api/v1/analytics/routes/top?range=7d", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []models.TopRoute `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data)

	w = ts.request(t, http.MethodGet, "/api/v1/analytics/routes/top?range=7d&format=csv", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(resp.Data)+1)

	for i, want := range resp.Data {
		row := records[i+1]
		assert.Equal(t, want.Origin, row[0])
		assert.Equal(t, want.Destination, row[1])
		assert.Equal(t, strconv.FormatInt(want.Searches, 10), row[2])
		assert.Equal(t, strconv.FormatInt(want.Clickouts, 10), row[3])

		avgPrice, err := strconv.ParseFloat(row[4], 64)
		require.NoError(t, err)
		assert.InDelta(t, want.AvgPrice, avgPrice, 1e-9)
		conversion, err := strconv.ParseFloat(row[5], 64)
		require.NoError(t, err)
		assert.InDelta(t, want.Conversion, conversion, 1e-9)
	}
}

func TestReportFormatValidation(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "viewer", models.RoleViewer)

	w := ts.request(t, http.MethodGet, "/api/v1/analytics/dashboard?format=xml", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyticsRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodGet, "/api/v1/analytics/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBreakdownRejectsUnknownDimension(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "viewer", models.RoleViewer)

	w := ts.request(t, http.MethodGet, "/api/v1/analytics/breakdown?dimension=shoe_size", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRangeValidation(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.createUser(t, "viewer", models.RoleViewer)

	w := ts.request(t, http.MethodGet, "/api/v1/analytics/routes/top?range=90d", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodGet, "/api/v1/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/health/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)
}
