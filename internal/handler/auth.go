// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/service"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/web"
)

// SessionKeyUserID is the session key for storing the authenticated user ID.
const SessionKeyUserID = middleware.SessionKeyUserID

// AuthHandler handles the login form and session lifecycle.
type AuthHandler struct {
	queries         *store.Queries
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
	loginTmpl       *template.Template
	siteTitle       string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, sm *scs.SessionManager, lp *middleware.LoginProtection, siteTitle string) *AuthHandler {
	queries := store.New(db)
	return &AuthHandler{
		queries:         queries,
		sessionManager:  sm,
		eventService:    service.NewEventService(queries),
		loginProtection: lp,
		loginTmpl:       template.Must(template.ParseFS(web.Templates, "templates/login.html")),
		siteTitle:       siteTitle,
	}
}

// loginPageData is the template payload for the login form.
type loginPageData struct {
	Title string
	Error string
}

// LoginForm renders the login page. An `error` query parameter, set by
// failed submissions, is echoed into the form.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	// Already-authenticated users go straight to the homepage.
	if userID := h.sessionManager.GetInt64(r.Context(), SessionKeyUserID); userID > 0 {
		http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
		return
	}

	data := loginPageData{
		Title: h.siteTitle,
		Error: r.URL.Query().Get("error"),
	}
	if err := h.loginTmpl.Execute(w, data); err != nil {
		slog.Error("rendering login page", "error", err)
	}
}

// Login handles the login form submission. Success redirects to the
// homepage; any failure redirects back to the form with a generic error
// so username enumeration stays impossible.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithError(w, r, errInvalidCredentials)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	clientIP := middleware.GetClientIP(r)

	if username == "" || password == "" {
		h.redirectWithError(w, r, errInvalidCredentials)
		return
	}

	// Check if account is locked
	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(username); locked {
			_ = h.eventService.Record(r.Context(), model.EventLevelWarning, model.EventCategoryAuth,
				"Login attempt on locked account", 0, clientIP, map[string]any{"username": username})
			h.redirectWithError(w, r, "Account temporarily locked, try again in "+formatDuration(remaining))
			return
		}
	}

	user, err := h.queries.GetUserByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = h.eventService.Record(r.Context(), model.EventLevelWarning, model.EventCategoryAuth,
				"Login failed: user not found", 0, clientIP, map[string]any{"username": username})
		} else {
			slog.Error("database error during login", "error", err)
		}
		// Record failed attempt even for non-existent users to prevent enumeration
		h.recordFailure(username)
		h.redirectWithError(w, r, errInvalidCredentials)
		return
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err)
		h.redirectWithError(w, r, errInvalidCredentials)
		return
	}
	if !valid {
		_ = h.eventService.Record(r.Context(), model.EventLevelWarning, model.EventCategoryAuth,
			"Login failed: invalid password", user.ID, clientIP, map[string]any{"username": username})
		h.recordFailure(username)
		h.redirectWithError(w, r, errInvalidCredentials)
		return
	}

	// Clear failed attempts on successful login
	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(username)
	}

	// Re-hash password if it uses old parameters
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				UpdatedAt:    time.Now(),
				ID:           user.ID,
			}); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			}
		}
	}

	if err := h.queries.UpdateUserLastLogin(r.Context(), user.ID, time.Now()); err != nil {
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
		// Don't block login on this error
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("session renewal error", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.sessionManager.Put(r.Context(), SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	_ = h.eventService.Record(r.Context(), model.EventLevelInfo, model.EventCategoryAuth,
		"User logged in", user.ID, clientIP, map[string]any{"username": user.Username})

	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}

// Logout destroys the session and returns to the homepage.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), SessionKeyUserID)

	if userID > 0 {
		_ = h.eventService.Record(r.Context(), model.EventLevelInfo, model.EventCategoryAuth,
			"User logged out", userID, middleware.GetClientIP(r), nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
}

// recordFailure feeds the lockout tracker after a failed attempt.
func (h *AuthHandler) recordFailure(username string) {
	if h.loginProtection == nil {
		return
	}
	h.loginProtection.RecordFailedAttempt(username)
}

// redirectWithError sends the browser back to the login form with the
// message in the error query parameter.
func (h *AuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, message string) {
	q := url.Values{"error": {message}}
	http.Redirect(w, r, RouteLogin+"?"+q.Encode(), http.StatusSeeOther)
}

// formatDuration formats a duration into a short human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return "less than a minute"
	}
	mins := int(d.Minutes())
	if mins == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", mins)
}
