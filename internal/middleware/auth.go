// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// security headers, request timeouts and login protection.
package middleware

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
)

// Session keys for storing user data.
const (
	SessionKeyUserID = "user_id"
)

// RequireSession creates middleware that rejects unauthenticated API
// requests with a JSON 401. No downstream handler runs without a valid
// session, so store access never happens for anonymous writes.
func RequireSession(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"success":false,"error":"Unauthorized"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Auth creates middleware that requires authentication for page routes.
// Unauthenticated requests are redirected to the login form.
func Auth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserID returns the authenticated user's ID from the session, or 0
// if the request carries no session.
func GetUserID(sm *scs.SessionManager, r *http.Request) int64 {
	return sm.GetInt64(r.Context(), SessionKeyUserID)
}

// GetClientIP extracts the client IP from the request, preferring
// reverse-proxy headers over the socket address.
func GetClientIP(r *http.Request) string {
	// Check X-Real-IP header (set by reverse proxies)
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	// Check X-Forwarded-For header
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// X-Forwarded-For can contain multiple IPs; take the first one
		return ip
	}

	// Fall back to RemoteAddr
	return r.RemoteAddr
}
