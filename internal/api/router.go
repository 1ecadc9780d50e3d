// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/farescope/farescope/internal/auth"
	"github.com/farescope/farescope/internal/authz"
	"github.com/farescope/farescope/internal/middleware"
)

// Router wires handlers, middleware and the permission enforcer into a
// chi mux.
type Router struct {
	handler  *Handler
	mw       *ChiMiddleware
	jwt      *auth.JWTManager
	enforcer *authz.Enforcer
}

// NewRouter creates the router.
func NewRouter(handler *Handler, mw *ChiMiddleware, jwt *auth.JWTManager, enforcer *authz.Enforcer) *Router {
	return &Router{
		handler:  handler,
		mw:       mw,
		jwt:      jwt,
		enforcer: enforcer,
	}
}

// Setup builds the full route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	// Global middleware, applied to every route. CORS is global so
	// OPTIONS preflights resolve before any group-level guard.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.mw.CORS())
	r.Use(SecurityHeaders())

	authn := Authenticate(router.jwt)

	// Health and metrics. Permissive limits so monitoring can poll.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.mw.RateLimitHealth())
		r.Get("/live", h.Liveness)
		r.Get("/ready", h.Readiness)
		r.Get("/", h.Health)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Authentication. Login is strictly limited to slow brute forcing.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(router.mw.RateLimitAuth()).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(authn).Get("/me", h.Me)
	})

	// Public tracking ingestion. No auth; events carry no identity
	// beyond the anonymized IP.
	r.Route("/api/v1/track", func(r chi.Router) {
		r.Use(router.mw.RateLimitTrack())
		r.Use(middleware.PrometheusMetrics)
		r.Post("/search", h.TrackSearch)
		r.Post("/clickout", h.TrackClickout)
	})

	// Public content and lookups.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.mw.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/pages/{slug}", h.GetPublishedPage)
		r.Get("/locations", h.SearchLocations)
		r.Get("/airlines", h.ListAirlines)
		r.Get("/countries", h.GetCountry)
		r.Get("/geo/ip", h.LookupIP)
		r.Get("/currency/rates", h.GetExchangeRates)
		r.Get("/currency/convert", h.ConvertCurrency)
		r.Post("/flights/search", h.SearchFlights)

		// Realtime notification channel.
		r.With(authn).Get("/ws", h.ServeWebSocket)
	})

	// Analytics dashboards. Read permission required; limits are
	// permissive for dashboard polling.
	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Use(router.mw.RateLimitAnalytics())
		r.Use(middleware.PrometheusMetrics)
		r.Use(authn)
		r.Use(Require(router.enforcer, authz.ResourceAnalytics, authz.ActionRead))

		r.Get("/dashboard", h.GetDashboard)
		r.Get("/hourly", h.GetHourlySeries)
		r.Get("/breakdown", h.GetBreakdown)
		r.Get("/routes/top", h.GetTopRoutes)
		r.Get("/routes/trending", h.GetTrendingRoutes)
		r.Get("/engagement", h.GetEngagement)
		r.Get("/monthly", h.GetMonthlyTrend)
		r.Get("/geo/countries", h.GetCountryRollup)
		r.Get("/geo/regions", h.GetRegionRollup)
	})

	// Exports. Strict limits; export permission required.
	r.Route("/api/v1/export", func(r chi.Router) {
		r.Use(router.mw.RateLimitExport())
		r.Use(middleware.PrometheusMetrics)
		r.Use(authn)
		r.Use(Require(router.enforcer, authz.ResourceAnalytics, authz.ActionExport))

		r.Get("/searches", h.ExportSearches)
		r.Get("/clickouts", h.ExportClickouts)
	})

	// CMS administration. Public reads go through /pages/{slug} above.
	r.Route("/api/v1/cms", func(r chi.Router) {
		r.Use(router.mw.RateLimitWrite())
		r.Use(middleware.PrometheusMetrics)
		r.Use(authn)

		r.With(Require(router.enforcer, authz.ResourceCMS, authz.ActionRead)).Get("/pages", h.ListPages)
		r.With(Require(router.enforcer, authz.ResourceCMS, authz.ActionRead)).Get("/pages/{slug}", h.GetPage)

		r.Group(func(r chi.Router) {
			r.Use(Require(router.enforcer, authz.ResourceCMS, authz.ActionWrite))
			r.Post("/pages", h.CreatePage)
			r.Put("/pages/{slug}", h.UpdatePage)
			r.Delete("/pages/{slug}", h.DeletePage)
		})
	})

	// User administration.
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(router.mw.RateLimitWrite())
		r.Use(middleware.PrometheusMetrics)
		r.Use(authn)

		r.With(Require(router.enforcer, authz.ResourceUsers, authz.ActionRead)).Get("/", h.ListUsers)
		r.With(Require(router.enforcer, authz.ResourceUsers, authz.ActionRead)).Get("/{id}", h.GetUser)

		r.Group(func(r chi.Router) {
			r.Use(Require(router.enforcer, authz.ResourceUsers, authz.ActionWrite))
			r.Post("/", h.CreateUser)
			r.Put("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
		})
	})

	// Notifications: the caller's own inbox plus admin push.
	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(router.mw.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(authn)

		r.Get("/", h.ListNotifications)
		r.Get("/unread", h.UnreadCount)
		r.Post("/{id}/read", h.MarkNotificationRead)
		r.Post("/read-all", h.MarkAllNotificationsRead)

		r.With(
			router.mw.RateLimitWrite(),
			Require(router.enforcer, authz.ResourceNotifications, authz.ActionWrite),
		).Post("/send", h.Notify)
		r.With(
			router.mw.RateLimitWrite(),
			Require(router.enforcer, authz.ResourceNotifications, authz.ActionBroadcast),
		).Post("/broadcast", h.Broadcast)
	})

	// Email campaigns.
	r.Route("/api/v1/campaigns", func(r chi.Router) {
		r.Use(router.mw.RateLimitWrite())
		r.Use(middleware.PrometheusMetrics)
		r.Use(authn)

		r.With(Require(router.enforcer, authz.ResourceCampaigns, authz.ActionRead)).Get("/", h.ListCampaigns)
		r.With(Require(router.enforcer, authz.ResourceCampaigns, authz.ActionRead)).Get("/{id}", h.GetCampaign)

		r.Group(func(r chi.Router) {
			r.Use(Require(router.enforcer, authz.ResourceCampaigns, authz.ActionWrite))
			r.Post("/", h.CreateCampaign)
			r.Post("/{id}/send", h.SendCampaign)
		})
	})

	return r
}
