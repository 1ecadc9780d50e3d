// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/farescope/farescope/internal/eventprocessor"
	"github.com/farescope/farescope/internal/logging"
	"github.com/farescope/farescope/internal/models"
)

// TrackSearch ingests one search event. The event is published to the
// broker and acknowledged immediately; persistence happens downstream.
func (h *Handler) TrackSearch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.TrackSearchRequest
	if !decode(w, r, &req) {
		return
	}

	event := &models.SearchEvent{
		ID:          uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		Origin:      strings.ToUpper(req.Origin),
		Destination: strings.ToUpper(req.Destination),
		TripType:    req.TripType,
		TravelClass: req.TravelClass,
		Adults:      req.Adults,
		Children:    req.Children,
		DeviceType:  req.DeviceType,
		Browser:     req.Browser,
		OS:          req.OS,
		MaskedIP:    maskIP(clientIP(r)),
		CountryCode: strings.ToUpper(req.CountryCode),
		Region:      req.Region,
		SessionID:   req.SessionID,
		Referrer:    req.Referrer,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
	}

	if event.CountryCode == "" && h.geoip != nil {
		event.CountryCode, event.Region = h.resolveGeo(r.Context(), clientIP(r), event.Region)
	}

	if err := h.publisher.PublishSearch(r.Context(), event); err != nil {
		logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to publish search event")
		rw.ServiceUnavailable("Event ingestion is temporarily unavailable")
		return
	}
	eventprocessor.RecordIngested(eventprocessor.TopicSearch)

	rw.Accepted(map[string]string{"id": event.ID})
}

// TrackClickout ingests one clickout event.
func (h *Handler) TrackClickout(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.TrackClickoutRequest
	if !decode(w, r, &req) {
		return
	}

	event := &models.ClickoutEvent{
		ID:          uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		Origin:      strings.ToUpper(req.Origin),
		Destination: strings.ToUpper(req.Destination),
		TripType:    req.TripType,
		Partner:     req.Partner,
		MaskedIP:    maskIP(clientIP(r)),
		SessionID:   req.SessionID,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		Price:       req.Price,
		Currency:    strings.ToUpper(req.Currency),
		DeepLink:    req.DeepLink,
	}

	if err := h.publisher.PublishClickout(r.Context(), event); err != nil {
		logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to publish clickout event")
		rw.ServiceUnavailable("Event ingestion is temporarily unavailable")
		return
	}
	eventprocessor.RecordIngested(eventprocessor.TopicClickout)

	rw.Accepted(map[string]string{"id": event.ID})
}

// resolveGeo best-effort fills country and region from the IP. Tracking
// never fails on a geo lookup; a miss leaves the fields empty.
func (h *Handler) resolveGeo(ctx context.Context, ip, region string) (string, string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	loc, err := h.geoip.Lookup(ctx, ip)
	if err != nil {
		return "", region
	}
	if region == "" {
		region = loc.Region
	}
	return strings.ToUpper(loc.CountryCode), region
}

// clientIP extracts the remote IP. The router's RealIP middleware has
// already folded proxy headers into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// maskIP anonymizes an address before storage: IPv4 keeps the /24,
// IPv6 keeps the /48. Unparseable input becomes empty, never stored raw.
func maskIP(raw string) string {
	ip := net.ParseIP(raw)
	if ip == nil {
		return ""
	}
	if v4 := ip.To4(); v4 != nil {
		return v4.Mask(net.CIDRMask(24, 32)).String()
	}
	return ip.Mask(net.CIDRMask(48, 128)).String()
}
