// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/farescope/farescope/internal/auth"
	"github.com/farescope/farescope/internal/authz"
	"github.com/farescope/farescope/internal/logging"
)

// RateLimitConfig defines one endpoint group's rate limit.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Per-group rate limits, tuned to endpoint cost.
var (
	rateLimitAuth      = RateLimitConfig{Requests: 5, Window: time.Minute}
	rateLimitAnalytics = RateLimitConfig{Requests: 1000, Window: time.Minute}
	rateLimitExport    = RateLimitConfig{Requests: 10, Window: time.Minute}
	rateLimitWrite     = RateLimitConfig{Requests: 30, Window: time.Minute}
	rateLimitTrack     = RateLimitConfig{Requests: 300, Window: time.Minute}
	rateLimitAPI       = RateLimitConfig{Requests: 100, Window: time.Minute}
	rateLimitHealth    = RateLimitConfig{Requests: 1000, Window: time.Minute}
)

// ChiMiddleware builds the router's middleware from configuration.
type ChiMiddleware struct {
	allowedOrigins    []string
	rateLimitDisabled bool
}

// NewChiMiddleware creates the middleware factory. Empty origins deny
// all cross-origin requests.
func NewChiMiddleware(allowedOrigins []string, rateLimitDisabled bool) *ChiMiddleware {
	return &ChiMiddleware{
		allowedOrigins:    allowedOrigins,
		rateLimitDisabled: rateLimitDisabled,
	}
}

// CORS returns the CORS handler for all routes.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   m.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	})
}

func (m *ChiMiddleware) limit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if m.rateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(cfg.Requests, cfg.Window)
}

// RateLimit is the default API limiter.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limit(rateLimitAPI)
}

// RateLimitAuth limits login attempts to slow brute forcing.
func (m *ChiMiddleware) RateLimitAuth() func(http.Handler) http.Handler {
	return m.limit(rateLimitAuth)
}

// RateLimitAnalytics is permissive for read-heavy dashboard loads.
func (m *ChiMiddleware) RateLimitAnalytics() func(http.Handler) http.Handler {
	return m.limit(rateLimitAnalytics)
}

// RateLimitExport is strict for resource-intensive exports.
func (m *ChiMiddleware) RateLimitExport() func(http.Handler) http.Handler {
	return m.limit(rateLimitExport)
}

// RateLimitWrite limits mutating admin operations.
func (m *ChiMiddleware) RateLimitWrite() func(http.Handler) http.Handler {
	return m.limit(rateLimitWrite)
}

// RateLimitTrack accommodates high-volume public event ingestion.
func (m *ChiMiddleware) RateLimitTrack() func(http.Handler) http.Handler {
	return m.limit(rateLimitTrack)
}

// RateLimitHealth allows frequent monitoring probes.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.limit(rateLimitHealth)
}

// SecurityHeaders adds baseline security headers to API responses.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate wraps auth.Middleware with the API's 401 envelope.
func Authenticate(manager *auth.JWTManager) func(http.Handler) http.Handler {
	return auth.Middleware(manager, func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Unauthorized("Authentication required")
	})
}

// Require returns a middleware enforcing a permission on the
// authenticated identity. Apply after Authenticate.
func Require(enforcer *authz.Enforcer, resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				NewResponseWriter(w, r).Unauthorized("Authentication required")
				return
			}
			if !enforcer.Allowed(identity.Role, resource, action) {
				logging.Warn().
					Str("user_id", identity.UserID).
					Str("role", string(identity.Role)).
					Str("resource", resource).
					Str("action", action).
					Str("path", r.URL.Path).
					Msg("Access denied")
				NewResponseWriter(w, r).Forbidden("Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
