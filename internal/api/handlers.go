// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/farescope/farescope/internal/auth"
	"github.com/farescope/farescope/internal/config"
	"github.com/farescope/farescope/internal/currency"
	"github.com/farescope/farescope/internal/database"
	"github.com/farescope/farescope/internal/eventprocessor"
	"github.com/farescope/farescope/internal/flights"
	"github.com/farescope/farescope/internal/geoip"
	"github.com/farescope/farescope/internal/logging"
	"github.com/farescope/farescope/internal/mailer"
	"github.com/farescope/farescope/internal/validation"
	"github.com/farescope/farescope/internal/wal"
	"github.com/farescope/farescope/internal/websocket"
)

// Handler holds every dependency the endpoint handlers need.
type Handler struct {
	cfg       *config.Config
	db        *database.DB
	hub       *websocket.Hub
	jwt       *auth.JWTManager
	flights   *flights.Client
	geoip     *geoip.Client
	currency  *currency.Client
	mailer    *mailer.Mailer
	publisher *eventprocessor.Publisher
	wal       *wal.Store
	startTime time.Time

	// natsHealthy reports embedded broker state for the ops surface;
	// nil when running against an external broker.
	natsHealthy func() bool
}

// HandlerParams bundles the constructor arguments.
type HandlerParams struct {
	Config      *config.Config
	DB          *database.DB
	Hub         *websocket.Hub
	JWT         *auth.JWTManager
	Flights     *flights.Client
	GeoIP       *geoip.Client
	Currency    *currency.Client
	Mailer      *mailer.Mailer
	Publisher   *eventprocessor.Publisher
	WAL         *wal.Store
	NATSHealthy func() bool
}

// NewHandler creates the handler set.
func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		cfg:         p.Config,
		db:          p.DB,
		hub:         p.Hub,
		jwt:         p.JWT,
		flights:     p.Flights,
		geoip:       p.GeoIP,
		currency:    p.Currency,
		mailer:      p.Mailer,
		publisher:   p.Publisher,
		wal:         p.WAL,
		natsHealthy: p.NATSHealthy,
		startTime:   time.Now(),
	}
}

// decode reads the JSON body into v and runs tag validation. A false
// return means the response has already been written.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	rw := NewResponseWriter(w, r)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		rw.BadRequest("Invalid JSON body")
		return false
	}

	if err := validation.ValidateStruct(v); err != nil {
		var verr *validation.RequestValidationError
		if errors.As(err, &verr) {
			rw.ValidationError("Request validation failed", verr.Fields)
			return false
		}
		rw.BadRequest(err.Error())
		return false
	}
	return true
}

// logAudit emits one structured audit line for a mutating admin action.
func logAudit(r *http.Request, identity *auth.Identity, action, target string) {
	logging.Info().
		Str("audit_action", action).
		Str("actor_id", identity.UserID).
		Str("actor", identity.Username).
		Str("target", target).
		Str("remote_addr", r.RemoteAddr).
		Msg("Admin action")
}

// queryInt parses an integer query parameter, falling back to def when
// absent or malformed.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// queryRange returns the validated range key, defaulting to last24h.
func queryRange(w http.ResponseWriter, r *http.Request) (string, bool) {
	rangeKey := r.URL.Query().Get("range")
	if rangeKey == "" {
		return "last24h", true
	}
	switch rangeKey {
	case "last24h", "7d", "30d":
		return rangeKey, true
	}
	NewResponseWriter(w, r).BadRequest("range must be one of: last24h, 7d, 30d")
	return "", false
}
