// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/service"
	"github.com/olegiv/folio-go/internal/store"
)

// ContentHandler serves the content editing API.
type ContentHandler struct {
	content        *service.ContentService
	uploads        *service.UploadService
	eventService   *service.EventService
	sessionManager *scs.SessionManager
}

// NewContentHandler creates a new ContentHandler. The content service
// must be the same instance the upload service writes through, so that
// an upload invalidates the listing cache this handler reads from.
func NewContentHandler(db *sql.DB, content *service.ContentService, uploads *service.UploadService, sm *scs.SessionManager) *ContentHandler {
	return &ContentHandler{
		content:        content,
		uploads:        uploads,
		eventService:   service.NewEventService(store.New(db)),
		sessionManager: sm,
	}
}

// CheckAuth reports the session state.
// GET /api/check-auth
func (h *ContentHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), SessionKeyUserID)

	resp := map[string]any{
		"isLoggedIn": userID > 0,
		"userId":     nil,
	}
	if userID > 0 {
		resp["userId"] = userID
	}
	writeJSON(w, resp)
}

// GetContent returns all visible content entries. No auth required.
// GET /api/get-content
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	entries, err := h.content.VisibleEntries(r.Context())
	if err != nil {
		slog.Error("loading content", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to load content")
		return
	}

	// An empty table serializes as [], not null.
	if entries == nil {
		entries = []model.Section{}
	}
	writeJSON(w, entries)
}

// updateContentRequest is the JSON body of an update-content call.
type updateContentRequest struct {
	SectionName string  `json:"section_name"`
	FieldName   string  `json:"field_name"`
	Content     *string `json:"content"`
}

// UpdateContent writes one content entry. Session required.
// POST /api/update-content
func (h *ContentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	var req updateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.SectionName == "" || req.FieldName == "" || req.Content == nil {
		writeJSONError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	entry, err := h.content.Update(r.Context(), req.SectionName, req.FieldName, *req.Content)
	if err != nil {
		if errors.Is(err, service.ErrBadRequest) {
			writeJSONError(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		slog.Error("updating content", "error", err,
			"section", req.SectionName, "field", req.FieldName)
		writeJSONError(w, http.StatusInternalServerError, "Failed to update content")
		return
	}

	userID := middleware.GetUserID(h.sessionManager, r)
	_ = h.eventService.Record(r.Context(), model.EventLevelInfo, model.EventCategoryContent,
		"Content updated", userID, middleware.GetClientIP(r), map[string]any{
			"section": entry.SectionName,
			"field":   entry.FieldName,
		})

	writeJSONSuccess(w, map[string]any{
		"message": "Content updated successfully",
	})
}

// UploadImage stores an uploaded image and binds it to a content entry.
// Session required.
// POST /api/upload-image
func (h *ContentHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	// Cap the multipart parse at the upload limit plus form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, service.ErrFileTooLarge.Error())
			return
		}
		// Malformed multipart, not an oversize body.
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer func() { _ = file.Close() }()

	sectionName := r.FormValue("section")
	fieldName := r.FormValue("field")

	result, err := h.uploads.SaveImage(r.Context(), file, sectionName, fieldName, header.Size)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrBadRequest):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrInvalidFileType):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrFileTooLarge):
			status = http.StatusRequestEntityTooLarge
		case errors.Is(err, service.ErrUploadFailed):
			slog.Error("upload failed", "error", err, "section", sectionName, "field", fieldName)
		default:
			slog.Error("upload error", "error", err, "section", sectionName, "field", fieldName)
		}
		writeJSONError(w, status, userFacingUploadError(err))
		return
	}

	userID := middleware.GetUserID(h.sessionManager, r)
	_ = h.eventService.Record(r.Context(), model.EventLevelInfo, model.EventCategoryUpload,
		"Image uploaded", userID, middleware.GetClientIP(r), map[string]any{
			"section": sectionName,
			"field":   fieldName,
			"path":    result.Path,
			"size":    result.Size,
		})

	writeJSONSuccess(w, map[string]any{
		"path":     result.Path,
		"full_url": fullURL(r, result.Path),
	})
}

// userFacingUploadError maps upload failures to stable client messages,
// hiding internal detail from non-validation errors.
func userFacingUploadError(err error) string {
	switch {
	case errors.Is(err, service.ErrBadRequest):
		return "Missing required fields"
	case errors.Is(err, service.ErrInvalidFileType):
		return service.ErrInvalidFileType.Error()
	case errors.Is(err, service.ErrFileTooLarge):
		return service.ErrFileTooLarge.Error()
	default:
		return service.ErrUploadFailed.Error()
	}
}

// fullURL resolves a site-relative path against the request's scheme
// and host.
func fullURL(r *http.Request, relPath string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/" + relPath
}
