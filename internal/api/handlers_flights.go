// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"errors"
	"net/http"

	"github.com/farescope/farescope/internal/flights"
	"github.com/farescope/farescope/internal/models"
)

// SearchFlights proxies an offer search to the flight provider.
func (h *Handler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.FlightSearchRequest
	if !decode(w, r, &req) {
		return
	}

	offers, err := h.flights.SearchOffers(r.Context(), &req)
	if err != nil {
		if errors.Is(err, flights.ErrUpstream) {
			rw.ExternalServiceError("flight-api", err)
			return
		}
		rw.InternalError("Flight search failed")
		return
	}
	rw.Success(offers)
}

// SearchLocations answers airport and city typeahead. Local reference
// data answers first; the provider is consulted when the local index
// has no match.
func (h *Handler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	keyword := r.URL.Query().Get("q")
	if len(keyword) < 2 {
		rw.BadRequest("q must be at least 2 characters")
		return
	}
	limit := queryInt(r, "limit", 10)
	if limit < 1 || limit > 50 {
		limit = 10
	}

	airports, err := h.db.SearchAirports(r.Context(), keyword, limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if len(airports) > 0 {
		results := make([]flights.Location, 0, len(airports))
		for _, a := range airports {
			results = append(results, flights.Location{
				Code:        a.Code,
				Name:        a.Name,
				CityName:    a.City,
				CountryCode: a.CountryCode,
				Type:        "airport",
			})
		}
		rw.Success(results)
		return
	}

	locations, err := h.flights.SearchLocations(r.Context(), keyword, limit)
	if err != nil {
		if errors.Is(err, flights.ErrUpstream) {
			rw.ExternalServiceError("flight-api", err)
			return
		}
		rw.InternalError("Location search failed")
		return
	}
	rw.Success(locations)
}

// ListAirlines returns the airline reference table.
func (h *Handler) ListAirlines(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	airlines, err := h.db.ListAirlines(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(airlines)
}
