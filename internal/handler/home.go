// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/folio-go/web"
)

// HomeHandler renders the public portfolio page. The page ships with
// static fallback markup; the content loader script replaces it with
// stored values after load.
type HomeHandler struct {
	sessionManager *scs.SessionManager
	indexTmpl      *template.Template
	siteTitle      string
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(sm *scs.SessionManager, siteTitle string) *HomeHandler {
	return &HomeHandler{
		sessionManager: sm,
		indexTmpl:      template.Must(template.ParseFS(web.Templates, "templates/index.html")),
		siteTitle:      siteTitle,
	}
}

// homePageData is the template payload for the portfolio page.
type homePageData struct {
	Title      string
	IsLoggedIn bool
}

// Home renders the portfolio page.
// GET /
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != RouteRoot {
		http.NotFound(w, r)
		return
	}

	data := homePageData{
		Title:      h.siteTitle,
		IsLoggedIn: h.sessionManager.GetInt64(r.Context(), SessionKeyUserID) > 0,
	}
	if err := h.indexTmpl.Execute(w, data); err != nil {
		slog.Error("rendering home page", "error", err)
	}
}
