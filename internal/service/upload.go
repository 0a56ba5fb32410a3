// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/olegiv/folio-go/internal/imaging"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/util"
)

// MaxUploadSize is the maximum accepted upload size in bytes (5 MiB).
const MaxUploadSize = 5 << 20

// UploadResult describes a stored upload.
type UploadResult struct {
	// Path is the site-relative path stored as content, e.g.
	// "uploads/hero_image_1700000000_1a2b3c4d.jpg".
	Path string
	// FilePath is the absolute location on disk.
	FilePath string
	// ThumbPath is the on-disk thumbnail location, empty if thumbnail
	// generation failed.
	ThumbPath string
	Width     int
	Height    int
	Size      int64
}

// UploadService validates and stores image uploads, binding each stored
// file to a content entry.
type UploadService struct {
	content   *ContentService
	processor *imaging.Processor
	logger    *slog.Logger
}

// NewUploadService creates an UploadService writing through processor
// and recording paths via content.
func NewUploadService(content *ContentService, processor *imaging.Processor, logger *slog.Logger) *UploadService {
	return &UploadService{
		content:   content,
		processor: processor,
		logger:    logger,
	}
}

// SaveImage validates an uploaded image, writes it (and a thumbnail) to
// the upload directory and upserts the resulting relative path as the
// content of the given section/field pair. Validation failures leave
// both disk and store untouched.
func (s *UploadService) SaveImage(ctx context.Context, r io.Reader, sectionName, fieldName string, declaredSize int64) (*UploadResult, error) {
	sectionName = strings.TrimSpace(sectionName)
	fieldName = strings.TrimSpace(fieldName)
	if sectionName == "" || fieldName == "" {
		return nil, ErrBadRequest
	}
	if err := util.ValidateKey(sectionName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if err := util.ValidateKey(fieldName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	if declaredSize > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	// Read one byte past the limit to catch liars about size.
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	// Sniff the real content type; the client-supplied name and
	// Content-Type header are not trusted.
	mtype := mimetype.Detect(data)
	if !model.IsSupportedMimeType(mtype.String()) {
		return nil, fmt.Errorf("%w (got %s)", ErrInvalidFileType, mtype.String())
	}

	filename := buildFilename(sectionName, fieldName, mtype.String())

	result, err := s.processor.Process(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	// Thumbnail generation is best-effort; the original is already safe
	// on disk.
	thumbPath, err := s.processor.CreateThumbnail(result.FilePath, filename)
	if err != nil {
		s.logger.Warn("thumbnail generation failed",
			"category", model.EventCategoryUpload,
			"file", filename,
			"error", err,
		)
		thumbPath = ""
	}

	relPath := path.Join(model.AssetRoot, filename)
	if _, err := s.content.Update(ctx, sectionName, fieldName, relPath); err != nil {
		return nil, fmt.Errorf("recording upload path: %w", err)
	}

	return &UploadResult{
		Path:      relPath,
		FilePath:  result.FilePath,
		ThumbPath: thumbPath,
		Width:     result.Width,
		Height:    result.Height,
		Size:      result.Size,
	}, nil
}

// buildFilename derives a unique stored filename from the target slot,
// the current time and a random token. The extension comes from the
// sniffed MIME type, never from the client-supplied name.
func buildFilename(sectionName, fieldName, mimeType string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	ext := model.ExtensionForMimeType(mimeType)
	return fmt.Sprintf("%s_%s_%d_%s%s", sectionName, fieldName, time.Now().Unix(), token, ext)
}
