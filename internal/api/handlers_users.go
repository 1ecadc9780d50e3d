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

// ListUsers returns a page of accounts.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	users, total, err := h.db.ListUsers(r.Context(), limit, offset)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithPagination(users, &PaginationMeta{
		Total:   int64(total),
		Count:   len(users),
		Offset:  offset,
		Limit:   limit,
		HasMore: offset+len(users) < total,
	})
}

// CreateUser creates an account.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		rw.InternalError("Could not hash password")
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Username, req.Email, hash, models.Role(req.Role))
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate") || strings.Contains(err.Error(), "unique") {
			rw.Conflict("Username or email already in use")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Created(user)
}

// GetUser returns one account by id.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	user, err := h.db.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("User not found")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(user)
}

// UpdateUser patches role, email or active state.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.UpdateUserRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.db.UpdateUser(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("User not found")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(user)
}

// DeleteUser removes an account. Deleting your own account is refused.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	if identity, ok := auth.IdentityFromContext(r.Context()); ok && identity.UserID == id {
		rw.BadRequest("Cannot delete your own account")
		return
	}

	if err := h.db.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("User not found")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.NoContent()
}
