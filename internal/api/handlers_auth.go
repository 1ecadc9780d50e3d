// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/farescope/farescope/internal/auth"
	"github.com/farescope/farescope/internal/database"
	"github.com/farescope/farescope/internal/logging"
	"github.com/farescope/farescope/internal/models"
)

// Login authenticates username and password, sets the session cookie
// and returns the token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.db.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.Unauthorized("Invalid credentials")
			return
		}
		rw.DatabaseError(err)
		return
	}
	if !user.Active {
		rw.Unauthorized("Invalid credentials")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		logging.Warn().Str("username", req.Username).Msg("Failed login attempt")
		rw.Unauthorized("Invalid credentials")
		return
	}

	token, expiresAt, err := h.jwt.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		rw.InternalError("Could not issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	rw.Success(map[string]any{
		"token":      token,
		"expires_at": expiresAt.UTC(),
		"user":       user,
	})
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	NewResponseWriter(w, r).Success(map[string]string{"status": "logged out"})
}

// Me returns the authenticated user's account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		rw.Unauthorized("Authentication required")
		return
	}

	user, err := h.db.GetUserByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.Unauthorized("Account no longer exists")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(user)
}
