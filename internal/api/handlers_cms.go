// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/farescope/farescope/internal/auth"
	"github.com/farescope/farescope/internal/database"
	"github.com/farescope/farescope/internal/models"
)

// GetPublishedPage serves one published page by slug. Drafts are only
// visible to authenticated editors through the admin listing.
func (h *Handler) GetPublishedPage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	page, err := h.db.GetPageBySlug(r.Context(), chi.URLParam(r, "slug"), true)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Page not found")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(page)
}

// ListPages returns pages, optionally filtered by ?status=.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := r.URL.Query().Get("status")
	if status != "" && status != models.PageStatusDraft && status != models.PageStatusPublished {
		rw.BadRequest("status must be draft or published")
		return
	}

	pages, err := h.db.ListPages(r.Context(), status)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(pages)
}

// GetPage returns one page by slug regardless of status.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	page, err := h.db.GetPageBySlug(r.Context(), chi.URLParam(r, "slug"), false)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Page not found")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(page)
}

// CreatePage creates a page.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.PageRequest
	if !decode(w, r, &req) {
		return
	}

	identity, _ := auth.IdentityFromContext(r.Context())
	page, err := h.db.CreatePage(r.Context(), &req)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate") || strings.Contains(err.Error(), "unique") {
			rw.Conflict("A page with this slug already exists")
			return
		}
		rw.DatabaseError(err)
		return
	}

	if identity != nil {
		logAudit(r, identity, "cms.create", page.Slug)
	}
	rw.Created(page)
}

// UpdatePage replaces a page's content by slug.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.PageRequest
	if !decode(w, r, &req) {
		return
	}

	page, err := h.db.UpdatePage(r.Context(), chi.URLParam(r, "slug"), &req)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Page not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		logAudit(r, identity, "cms.update", page.Slug)
	}
	rw.Success(page)
}

// DeletePage removes a page by slug.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	slug := chi.URLParam(r, "slug")
	if err := h.db.DeletePage(r.Context(), slug); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Page not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		logAudit(r, identity, "cms.delete", slug)
	}
	rw.NoContent()
}
