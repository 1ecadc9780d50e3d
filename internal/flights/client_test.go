// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package flights

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescope/farescope/internal/config"
	"github.com/farescope/farescope/internal/models"
)

func testServer(t *testing.T, tokenCalls *atomic.Int64, offersJSON string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","expires_in":1800}`))
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(offersJSON))
	})
	mux.HandleFunc("/v1/reference-data/locations", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"subType":"AIRPORT","name":"LOS ANGELES INTL","iataCode":"LAX","address":{"cityName":"LOS ANGELES","countryCode":"US"}},
			{"subType":"CITY","name":"LOS ANGELES","iataCode":"LAX","address":{"cityName":"LOS ANGELES","countryCode":"US"}}
		]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testClient(server *httptest.Server) *Client {
	return NewClient(&config.FlightsConfig{
		BaseURL:      server.URL,
		ClientID:     "id",
		ClientSecret: "secret",
		Timeout:      5 * time.Second,
		RateLimit:    100,
		RateBurst:    100,
	})
}

const offersFixture = `{"data":[{
	"id":"1",
	"price":{"grandTotal":"412.50","currency":"USD"},
	"validatingAirlineCodes":["AA"],
	"itineraries":[{"duration":"PT6H15M","segments":[
		{"departure":{"at":"2026-09-10T08:00:00"},"arrival":{"at":"2026-09-10T11:30:00"}},
		{"departure":{"at":"2026-09-10T12:30:00"},"arrival":{"at":"2026-09-10T14:15:00"}}
	]}]
}]}`

func TestSearchOffers(t *testing.T) {
	var tokenCalls atomic.Int64
	server := testServer(t, &tokenCalls, offersFixture)
	c := testClient(server)

	offers, err := c.SearchOffers(context.Background(), &models.FlightSearchRequest{
		Origin: "LAX", Destination: "JFK", DepartDate: "2026-09-10", Adults: 1,
	})
	require.NoError(t, err)
	require.Len(t, offers, 1)

	assert.Equal(t, 412.50, offers[0].Price)
	assert.Equal(t, "USD", offers[0].Currency)
	assert.Equal(t, "AA", offers[0].Carrier)
	assert.Equal(t, 1, offers[0].Stops)
	assert.Equal(t, "PT6H15M", offers[0].Duration)
}

func TestTokenReuse(t *testing.T) {
	var tokenCalls atomic.Int64
	server := testServer(t, &tokenCalls, offersFixture)
	c := testClient(server)

	req := &models.FlightSearchRequest{Origin: "LAX", Destination: "JFK", DepartDate: "2026-09-10", Adults: 1}
	_, err := c.SearchOffers(context.Background(), req)
	require.NoError(t, err)
	_, err = c.SearchOffers(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(1), tokenCalls.Load())
}

func TestSearchLocations(t *testing.T) {
	var tokenCalls atomic.Int64
	server := testServer(t, &tokenCalls, offersFixture)
	c := testClient(server)

	locations, err := c.SearchLocations(context.Background(), "los angeles", 10)
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "LAX", locations[0].Code)
	assert.Equal(t, "airport", locations[0].Type)
	assert.Equal(t, "city", locations[1].Type)
}

func TestUpstreamFailureIsErrUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	c := testClient(server)

	_, err := c.SearchOffers(context.Background(), &models.FlightSearchRequest{
		Origin: "LAX", Destination: "JFK", DepartDate: "2026-09-10", Adults: 1,
	})
	assert.ErrorIs(t, err, ErrUpstream)
}
