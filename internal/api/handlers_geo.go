// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/farescope/farescope/internal/currency"
	"github.com/farescope/farescope/internal/database"
	"github.com/farescope/farescope/internal/geoip"
)

// LookupIP geolocates ?ip=, or the caller's own address when absent.
func (h *Handler) LookupIP(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ip := r.URL.Query().Get("ip")
	if ip == "" {
		ip = clientIP(r)
	}
	if net.ParseIP(ip) == nil {
		rw.BadRequest("ip must be a valid IPv4 or IPv6 address")
		return
	}

	location, err := h.geoip.Lookup(r.Context(), ip)
	if err != nil {
		if errors.Is(err, geoip.ErrUpstream) {
			rw.ExternalServiceError("geoip", err)
			return
		}
		rw.InternalError("Geo lookup failed")
		return
	}
	rw.Success(location)
}

// GetCountry returns ISO reference data for one country code.
func (h *Handler) GetCountry(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	code := strings.ToUpper(r.URL.Query().Get("code"))
	if len(code) != 2 {
		rw.BadRequest("code must be a 2-letter country code")
		return
	}

	country, err := h.db.GetCountry(r.Context(), code)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Unknown country code")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(country)
}

// GetExchangeRates returns the cached exchange-rate table.
func (h *Handler) GetExchangeRates(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	rates, err := h.currency.LatestRates(r.Context())
	if err != nil {
		if errors.Is(err, currency.ErrUpstream) {
			rw.ExternalServiceError("currency", err)
			return
		}
		rw.InternalError("Rate lookup failed")
		return
	}
	rw.Success(rates)
}

// ConvertCurrency converts ?amount= from ?from= to ?to= using the
// cached rate table.
func (h *Handler) ConvertCurrency(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil || amount < 0 {
		rw.BadRequest("amount must be a non-negative number")
		return
	}
	from := strings.ToUpper(r.URL.Query().Get("from"))
	to := strings.ToUpper(r.URL.Query().Get("to"))
	if len(from) != 3 || len(to) != 3 {
		rw.BadRequest("from and to must be 3-letter currency codes")
		return
	}

	converted, err := h.currency.Convert(r.Context(), amount, from, to)
	if err != nil {
		if errors.Is(err, currency.ErrUnknownCurrency) {
			rw.BadRequest("Unknown currency code")
			return
		}
		if errors.Is(err, currency.ErrUpstream) {
			rw.ExternalServiceError("currency", err)
			return
		}
		rw.InternalError("Conversion failed")
		return
	}

	rw.Success(map[string]any{
		"amount":    amount,
		"from":      from,
		"to":        to,
		"converted": converted,
	})
}
