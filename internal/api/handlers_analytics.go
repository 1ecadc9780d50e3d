// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"net/http"
	"strings"
	"time"
)

// Reporting endpoints answer JSON by default; ?format=csv downloads the
// same values as CSV with a fixed per-endpoint filename.

// GetDashboard returns the headline metric windows plus week growth.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	format, ok := reportFormat(w, r)
	if !ok {
		return
	}
	metrics, err := h.db.GetDashboardMetrics(r.Context(), time.Now().UTC())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if format == "csv" {
		writeReportCSV(w, "dashboard.csv", dashboardCSV(metrics))
		return
	}
	rw.Success(metrics)
}

// GetHourlySeries returns the last-24-hour per-hour search and clickout
// counts, zero-filled.
func (h *Handler) GetHourlySeries(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	format, ok := reportFormat(w, r)
	if !ok {
		return
	}
	series, err := h.db.GetHourlySeries(r.Context(), time.Now().UTC())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if format == "csv" {
		writeReportCSV(w, "hourly.csv", hourlyCSV(series))
		return
	}
	rw.Success(series)
}

// GetBreakdown groups searches in the range by one dimension
// (?dimension=device|browser|os|country|class).
func (h *Handler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	rangeKey, ok := queryRange(w, r)
	if !ok {
		return
	}
	format, ok := reportFormat(w, r)
	if !ok {
		return
	}
	dimension := r.URL.Query().Get("dimension")
	if dimension == "" {
		dimension = "device"
	}

	entries, err := h.db.GetBreakdown(r.Context(), dimension, rangeKey, time.Now().UTC())
	if err != nil {
		if strings.Contains(err.Error(), "unknown breakdown dimension") {
			rw.BadRequest("dimension must be one of: device, browser, os, country, class")
			return
		}
		rw.DatabaseError(err)
		return
	}
	if format == "csv" {
		writeReportCSV(w, "breakdown.csv", breakdownCSV(entries))
		return
	}
	rw.Success(entries)
}

// GetTopRoutes returns the most-searched routes in the range with
// clickout rates.
func (h *Handler) GetTopRoutes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	rangeKey, ok := queryRange(w, r)
	if !ok {
		return
	}
	format, ok := reportFormat(w, r)
	if !ok {
		return
	}
	limit := queryInt(r, "limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	routes, err := h.db.GetTopRoutes(r.Context(), rangeKey, limit, time.Now().UTC())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if format == "csv" {
		writeReportCSV(w, "top_routes.csv", topRoutesCSV(routes))
		return
	}
	rw.Success(routes)
}

// GetTrendingRoutes returns routes whose search volume over the last
// seven days grew most against the seven days before.
func (h *Handler) GetTrendingRoutes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	format, ok := reportFormat(w, r)
	if !ok {
		return
	}
	limit := queryInt(r, "limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	routes, err := h.db.GetTrendingRoutes(r.Context(), limit, time.Now().UTC())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if format == "csv" {
		writeReportCSV(w, "trending_routes.csv", trendingRoutesCSV(routes))
		return
	}
	rw.Success(routes)
}

// GetEngagement returns the per-bucket conversion series for the range.
func (h *Handler) GetEngagement(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	rangeKey, ok := queryRange(w, r)
	if !ok {
		return
	}
	format, ok := reportFormat(w, r)
	if !ok {
		return
	}

	series, err := h.db.GetEngagementSeries(r.Context(), rangeKey, time.Now().UTC())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if format == "csv" {
		writeReportCSV(w, "engagement.csv", engagementCSV(series))
		return
	}
	rw.Success(series)
}

// GetMonthlyTrend returns per-month totals, ?months= 1..24, default 12.
func (h *Handler) GetMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	format, ok := reportFormat(w, r)
	if !ok {
		return
	}
	months := queryInt(r, "months", 12)
	if months < 1 || months > 24 {
		months = 12
	}

	trend, err := h.db.GetMonthlyTrend(r.Context(), months, time.Now().UTC())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if format == "csv" {
		writeReportCSV(w, "monthly_trend.csv", monthlyCSV(trend))
		return
	}
	rw.Success(trend)
}

// GetCountryRollup returns search counts per country in the range.
func (h *Handler) GetCountryRollup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	rangeKey, ok := queryRange(w, r)
	if !ok {
		return
	}
	format, ok := reportFormat(w, r)
	if !ok {
		return
	}
	limit := queryInt(r, "limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	entries, err := h.db.GetCountryRollup(r.Context(), rangeKey, limit, time.Now().UTC())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if format == "csv" {
		writeReportCSV(w, "country_rollup.csv", geoCSV(entries))
		return
	}
	rw.Success(entries)
}

// GetRegionRollup returns search counts per region in the range.
func (h *Handler) GetRegionRollup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	rangeKey, ok := queryRange(w, r)
	if !ok {
		return
	}
	format, ok := reportFormat(w, r)
	if !ok {
		return
	}

	entries, err := h.db.GetRegionRollup(r.Context(), rangeKey, time.Now().UTC())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if format == "csv" {
		writeReportCSV(w, "region_rollup.csv", geoCSV(entries))
		return
	}
	rw.Success(entries)
}
