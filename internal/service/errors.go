// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the application logic between the HTTP
// handlers and the store: content reads and writes, image uploads and
// the event log.
package service

import "errors"

// Sentinel errors returned by the services. Handlers map these to
// HTTP status codes and JSON error payloads.
var (
	// ErrInvalidFileType means the uploaded file's sniffed content type
	// is not an allowed image format.
	ErrInvalidFileType = errors.New("invalid file type: only JPEG, PNG, GIF and WebP images are allowed")

	// ErrFileTooLarge means the uploaded file exceeds MaxUploadSize.
	ErrFileTooLarge = errors.New("file too large: maximum size is 5 MB")

	// ErrUploadFailed means the file passed validation but could not be
	// written to disk.
	ErrUploadFailed = errors.New("upload failed: could not save file")

	// ErrBadRequest means a required field was missing or invalid.
	ErrBadRequest = errors.New("missing required fields")
)
