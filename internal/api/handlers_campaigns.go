// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/farescope/farescope/internal/auth"
	"github.com/farescope/farescope/internal/database"
	"github.com/farescope/farescope/internal/logging"
	"github.com/farescope/farescope/internal/models"
)

// CreateCampaign stores a draft campaign.
func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.CampaignRequest
	if !decode(w, r, &req) {
		return
	}

	campaign, err := h.db.CreateCampaign(r.Context(), &req)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		logAudit(r, identity, "campaign.create", campaign.ID)
	}
	rw.Created(campaign)
}

// ListCampaigns returns every campaign, newest first.
func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	campaigns, err := h.db.ListCampaigns(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(campaigns)
}

// GetCampaign returns one campaign with its delivery tallies.
func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	campaign, err := h.db.GetCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Campaign not found")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(campaign)
}

// SendCampaign starts delivery of a draft campaign. Delivery runs in
// the background; the response reports that sending began, and the
// campaign record tracks per-recipient outcomes as they land.
func (h *Handler) SendCampaign(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	campaign, err := h.db.GetCampaign(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Campaign not found")
			return
		}
		rw.DatabaseError(err)
		return
	}
	if campaign.Status != models.CampaignStatusDraft {
		rw.Conflict("Campaign has already been sent")
		return
	}

	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		logAudit(r, identity, "campaign.send", id)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := h.mailer.SendCampaign(ctx, campaign); err != nil {
			logging.Error().Err(err).Str("campaign_id", id).Msg("Campaign delivery failed")
		}
	}()

	rw.Accepted(map[string]string{
		"id":     id,
		"status": models.CampaignStatusSending,
	})
}
