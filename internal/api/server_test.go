// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/farescope/farescope/internal/auth"
	"github.com/farescope/farescope/internal/authz"
	"github.com/farescope/farescope/internal/config"
	"github.com/farescope/farescope/internal/database"
	"github.com/farescope/farescope/internal/eventprocessor"
	"github.com/farescope/farescope/internal/models"
	"github.com/farescope/farescope/internal/websocket"
)

// testServer bundles everything an endpoint test needs.
type testServer struct {
	router http.Handler
	db     *database.DB
	hub    *websocket.Hub
	jwt    *auth.JWTManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Defaults()
	cfg.Database.Path = ":memory:"
	cfg.Database.Threads = 1
	cfg.Database.MaxMemory = "256MB"
	cfg.Auth.JWTSecret = "test-secret-test-secret-test-secret!"

	db, err := database.New(&cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	jwt, err := auth.NewJWTManager(cfg.Auth.JWTSecret, time.Hour)
	require.NoError(t, err)

	enforcer, err := authz.NewEnforcer()
	require.NoError(t, err)

	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.RunWithContext(ctx) }()

	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubsub.Close() })
	publisher := eventprocessor.NewPublisherWithBackend(pubsub)

	handler := NewHandler(HandlerParams{
		Config:    cfg,
		DB:        db,
		Hub:       hub,
		JWT:       jwt,
		Publisher: publisher,
	})

	mw := NewChiMiddleware([]string{"*"}, true)
	router := NewRouter(handler, mw, jwt, enforcer).Setup()

	return &testServer{router: router, db: db, hub: hub, jwt: jwt}
}

// createUser inserts an account and returns a bearer token for it.
func (ts *testServer) createUser(t *testing.T, username string, role models.Role) (string, *models.User) {
	t.Helper()

	hash, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	user, err := ts.db.CreateUser(context.Background(), username, username+"@example.com", hash, role)
	require.NoError(t, err)

	token, _, err := ts.jwt.GenerateToken(user.ID, user.Username, user.Role)
	require.NoError(t, err)
	return token, user
}

// request performs one in-process API call.
func (ts *testServer) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// decodeEnvelope unmarshals the response envelope.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
