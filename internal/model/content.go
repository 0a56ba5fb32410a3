// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including User, Section, and Event structures.
package model

import "time"

// Supported MIME types for image uploads.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// IsSupportedMimeType reports whether a MIME type is accepted for upload.
func IsSupportedMimeType(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// ExtensionForMimeType returns the canonical file extension for a
// supported MIME type, or "" for anything else. The stored filename's
// extension always comes from the detected type, never from the
// client-supplied name.
func ExtensionForMimeType(mimeType string) string {
	switch mimeType {
	case MimeTypeJPEG:
		return ".jpg"
	case MimeTypePNG:
		return ".png"
	case MimeTypeGIF:
		return ".gif"
	case MimeTypeWebP:
		return ".webp"
	default:
		return ""
	}
}

// AssetRoot is the path prefix under which uploaded files are served.
const AssetRoot = "uploads"

// PlaceholderImage is the content value a field is reset to when its
// image is removed.
const PlaceholderImage = "/static/img/placeholder.jpg"

// Section represents one editable content slot, keyed by
// (section_name, field_name). Content holds raw text, a JSON-encoded
// structured value, or a relative file path for image fields.
type Section struct {
	ID           int64     `json:"-"`
	SectionName  string    `json:"section_name"`
	FieldName    string    `json:"field_name"`
	Content      string    `json:"content"`
	IsVisible    bool      `json:"-"`
	DisplayOrder int64     `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}
