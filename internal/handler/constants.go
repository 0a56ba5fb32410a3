// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the HTTP handlers: the public portfolio
// page, the login flow and the content editing API.
package handler

// Route paths.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"

	// RouteLogin is the login form and submission path.
	RouteLogin = "/auth/login"

	// RouteLogout is the logout path.
	RouteLogout = "/auth/logout"

	// API routes.
	RouteAPICheckAuth     = "/api/check-auth"
	RouteAPIGetContent    = "/api/get-content"
	RouteAPIUpdateContent = "/api/update-content"
	RouteAPIUploadImage   = "/api/upload-image"
)

// errInvalidCredentials is the generic login failure message. It never
// distinguishes a wrong username from a wrong password.
const errInvalidCredentials = "Invalid credentials"
