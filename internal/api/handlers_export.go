// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/farescope/farescope/internal/auth"
	"github.com/farescope/farescope/internal/logging"
	"github.com/farescope/farescope/internal/models"
)

// exportWindow parses from/to query parameters (RFC3339), defaulting to
// the trailing 7 days. A reply of false means the error is written.
func exportWindow(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	rw := NewResponseWriter(w, r)
	now := time.Now().UTC()
	from := now.Add(-7 * 24 * time.Hour)
	to := now

	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			rw.BadRequest("from must be RFC3339")
			return time.Time{}, time.Time{}, false
		}
		from = t.UTC()
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			rw.BadRequest("to must be RFC3339")
			return time.Time{}, time.Time{}, false
		}
		to = t.UTC()
	}
	if !from.Before(to) {
		rw.BadRequest("from must be earlier than to")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// ExportSearches downloads search events in the window as CSV or JSON.
func (h *Handler) ExportSearches(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	from, to, ok := exportWindow(w, r)
	if !ok {
		return
	}
	format, ok := reportFormat(w, r)
	if !ok {
		return
	}

	events, err := h.db.ExportSearchEvents(r.Context(), from, to)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		logAudit(r, identity, "export.searches", format)
	}

	if format == "json" {
		rw.Success(events)
		return
	}
	writeSearchCSV(w, events)
}

// ExportClickouts downloads clickout events in the window as CSV or JSON.
func (h *Handler) ExportClickouts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	from, to, ok := exportWindow(w, r)
	if !ok {
		return
	}
	format, ok := reportFormat(w, r)
	if !ok {
		return
	}

	events, err := h.db.ExportClickoutEvents(r.Context(), from, to)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		logAudit(r, identity, "export.clickouts", format)
	}

	if format == "json" {
		rw.Success(events)
		return
	}
	writeClickoutCSV(w, events)
}

func writeSearchCSV(w http.ResponseWriter, events []models.SearchEvent) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=search_events.csv")

	cw := csv.NewWriter(w)
	header := []string{
		"id", "timestamp", "origin", "destination", "trip_type", "travel_class",
		"adults", "children", "device_type", "browser", "os", "masked_ip",
		"country_code", "region", "session_id", "referrer",
		"utm_source", "utm_medium", "utm_campaign",
	}
	if err := cw.Write(header); err != nil {
		logging.Error().Err(err).Msg("Failed to write CSV header")
		return
	}
	for i := range events {
		e := &events[i]
		record := []string{
			e.ID, e.Timestamp.Format(time.RFC3339), e.Origin, e.Destination,
			e.TripType, e.TravelClass,
			strconv.Itoa(e.Adults), strconv.Itoa(e.Children),
			e.DeviceType, e.Browser, e.OS, e.MaskedIP,
			e.CountryCode, e.Region, e.SessionID, e.Referrer,
			e.UTMSource, e.UTMMedium, e.UTMCampaign,
		}
		if err := cw.Write(record); err != nil {
			logging.Error().Err(err).Msg("Failed to write CSV row")
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logging.Error().Err(err).Msg("Failed to flush CSV export")
	}
}

func writeClickoutCSV(w http.ResponseWriter, events []models.ClickoutEvent) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=clickout_events.csv")

	cw := csv.NewWriter(w)
	header := []string{
		"id", "timestamp", "origin", "destination", "trip_type", "partner",
		"masked_ip", "session_id", "utm_source", "utm_medium", "utm_campaign",
		"price", "currency", "deep_link",
	}
	if err := cw.Write(header); err != nil {
		logging.Error().Err(err).Msg("Failed to write CSV header")
		return
	}
	for i := range events {
		e := &events[i]
		record := []string{
			e.ID, e.Timestamp.Format(time.RFC3339), e.Origin, e.Destination,
			e.TripType, e.Partner, e.MaskedIP, e.SessionID,
			e.UTMSource, e.UTMMedium, e.UTMCampaign,
			fmt.Sprintf("%.2f", e.Price), e.Currency, e.DeepLink,
		}
		if err := cw.Write(record); err != nil {
			logging.Error().Err(err).Msg("Failed to write CSV row")
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logging.Error().Err(err).Msg("Failed to flush CSV export")
	}
}
