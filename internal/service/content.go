// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/util"
)

// listingTTL bounds staleness for readers on other instances; writes on
// this instance invalidate immediately.
const listingTTL = time.Minute

// ContentService provides read and write access to the editable
// portfolio content. The visible listing is cached since every page
// view requests it and it only changes on admin edits.
type ContentService struct {
	queries *store.Queries
	listing *cache.Value[[]model.Section]
}

// NewContentService creates a ContentService backed by queries.
func NewContentService(queries *store.Queries) *ContentService {
	return &ContentService{
		queries: queries,
		listing: cache.NewValue[[]model.Section](listingTTL),
	}
}

// VisibleEntries returns all publicly visible content entries in
// display order.
func (s *ContentService) VisibleEntries(ctx context.Context) ([]model.Section, error) {
	if entries, ok := s.listing.Get(); ok {
		return entries, nil
	}

	entries, err := s.queries.ListVisibleSections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}
	s.listing.Set(entries)
	return entries, nil
}

// Update writes a content value for a section/field pair, creating the
// entry if it does not exist. Section and field names are validated;
// content may be any string, including empty.
func (s *ContentService) Update(ctx context.Context, sectionName, fieldName, content string) (model.Section, error) {
	sectionName = strings.TrimSpace(sectionName)
	fieldName = strings.TrimSpace(fieldName)

	if sectionName == "" || fieldName == "" {
		return model.Section{}, ErrBadRequest
	}
	if err := util.ValidateKey(sectionName); err != nil {
		return model.Section{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if err := util.ValidateKey(fieldName); err != nil {
		return model.Section{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	entry, err := s.queries.UpsertSection(ctx, store.UpsertSectionParams{
		SectionName: sectionName,
		FieldName:   fieldName,
		Content:     content,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		return model.Section{}, fmt.Errorf("upserting section %s.%s: %w", sectionName, fieldName, err)
	}

	s.listing.Invalidate()
	return entry, nil
}
